package handler

// In-memory stores implementing the handler interfaces. They reproduce the
// repository semantics the handlers rely on: lowercased unique emails,
// ErrNotFound for ownership-scoped misses, hashed passwords and refresh
// tokens kept only as hashes.

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jwozniak/car-workshop/internal/repository"
	"github.com/jwozniak/car-workshop/internal/utils"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]repository.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]repository.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *repository.User, password string, cost int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, ex := range s.users {
		if ex.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.nextID++
	nu := *u
	nu.ID = s.nextID
	nu.Email = email
	nu.PasswordHash = hash
	s.users[nu.ID] = nu
	return nu.ID, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, id uint64, name, surname, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name, u.Surname, u.Email = name, surname, strings.ToLower(strings.TrimSpace(email))
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) UpdateAddress(_ context.Context, id uint64, a repository.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Street, u.City, u.BuildingNo, u.LocalNo, u.PostCode = a.Street, a.City, a.BuildingNo, a.LocalNo, a.PostCode
	s.users[id] = u
	return nil
}

type fakeTokenRow struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type fakeTokenStore struct {
	mu   sync.Mutex
	rows map[string]fakeTokenRow
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: map[string]fakeTokenRow{}}
}

func (s *fakeTokenStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tokenHash] = fakeTokenRow{userID: userID, exp: exp}
	return nil
}

func (s *fakeTokenStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[tokenHash]
	if !ok || row.revoked || time.Now().UTC().After(row.exp) {
		return 0, repository.ErrNotFound
	}
	return row.userID, nil
}

func (s *fakeTokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[tokenHash]; ok {
		row.revoked = true
		s.rows[tokenHash] = row
	}
	return nil
}

type fakeCarStore struct {
	mu     sync.Mutex
	nextID uint64
	cars   map[uint64]repository.Car
	brands []repository.Brand
	models []repository.Model
}

func newFakeCarStore() *fakeCarStore {
	return &fakeCarStore{
		cars: map[uint64]repository.Car{},
		brands: []repository.Brand{
			{ID: 1, Name: "Audi"},
			{ID: 2, Name: "BMW"},
		},
		models: []repository.Model{
			{ID: 1, BrandID: 1, Name: "A3"},
			{ID: 2, BrandID: 1, Name: "A4"},
			{ID: 3, BrandID: 2, Name: "X3"},
		},
	}
}

func (s *fakeCarStore) Create(_ context.Context, c *repository.Car) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	nc := *c
	nc.ID = s.nextID
	s.cars[nc.ID] = nc
	return nc.ID, nil
}

func (s *fakeCarStore) Update(_ context.Context, c *repository.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.cars[c.ID]
	if !ok || row.UserID != c.UserID {
		return repository.ErrNotFound
	}
	s.cars[c.ID] = *c
	return nil
}

func (s *fakeCarStore) Delete(_ context.Context, id, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.cars[id]
	if !ok || row.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.cars, id)
	return nil
}

func (s *fakeCarStore) ListByOwner(_ context.Context, userID uint64) ([]repository.CarRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.CarRow
	for id := uint64(1); id <= s.nextID; id++ {
		c, ok := s.cars[id]
		if !ok || c.UserID != userID {
			continue
		}
		out = append(out, repository.CarRow{
			ID:                    c.ID,
			Brand:                 s.brandName(c.BrandID),
			Model:                 s.modelName(c.ModelID),
			RegistrationNumber:    c.RegistrationNumber,
			FirstRegistrationDate: c.FirstRegistrationDate,
			Icon:                  c.Icon,
		})
	}
	return out, nil
}

func (s *fakeCarStore) ListBrands(_ context.Context) ([]repository.Brand, error) {
	return s.brands, nil
}

func (s *fakeCarStore) ListModelsByBrand(_ context.Context, brandID uint64) ([]repository.Model, error) {
	var out []repository.Model
	for _, m := range s.models {
		if m.BrandID == brandID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeCarStore) brandName(id uint64) string {
	for _, b := range s.brands {
		if b.ID == id {
			return b.Name
		}
	}
	return ""
}

func (s *fakeCarStore) modelName(id uint64) string {
	for _, m := range s.models {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}

type fakeWorkshopStore struct {
	rows []repository.Workshop
}

func (s *fakeWorkshopStore) ListAll(_ context.Context) ([]repository.Workshop, error) {
	return s.rows, nil
}
