package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jwozniak/car-workshop/internal/utils"
)

// User mirrors the 'users' table. LocalNo is nullable: flats without a
// separate local number leave it empty.
type User struct {
	ID           uint64
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	Street       string
	City         string
	BuildingNo   string
	LocalNo      sql.NullString
	PostCode     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Address groups the address columns of a user row for reads and updates.
type Address struct {
	Street     string
	City       string
	BuildingNo string
	LocalNo    sql.NullString
	PostCode   string
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts the user, returning the new ID.
// A duplicate email surfaces as ErrEmailExists (MySQL error 1062 from the
// unique index) so registration failures are explicit, not driver noise.
func (r *UserRepo) Create(ctx context.Context, u *User, password string, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (name, surname, email, password, street, city, buildingNo, localNo, postCode)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		u.Name, u.Surname, email, hash, u.Street, u.City, u.BuildingNo, u.LocalNo, u.PostCode)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, surname, email, password, street, city, buildingNo, localNo, postCode, created_at, updated_at
		 FROM users WHERE email=? LIMIT 1`, email).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash,
			&u.Street, &u.City, &u.BuildingNo, &u.LocalNo, &u.PostCode, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, surname, email, password, street, city, buildingNo, localNo, postCode, created_at, updated_at
		 FROM users WHERE id=? LIMIT 1`, id).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash,
			&u.Street, &u.City, &u.BuildingNo, &u.LocalNo, &u.PostCode, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// UpdateProfile writes name, surname and email keyed by the user id.
// Zero affected rows means the user does not exist.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, surname, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name=?, surname=?, email=? WHERE id=?`,
		name, surname, email, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return checkAffected(res)
}

// UpdateAddress writes the address columns keyed by the user id.
func (r *UserRepo) UpdateAddress(ctx context.Context, id uint64, a Address) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET street=?, city=?, buildingNo=?, localNo=?, postCode=? WHERE id=?`,
		a.Street, a.City, a.BuildingNo, a.LocalNo, a.PostCode, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// checkAffected maps "no rows matched" to ErrNotFound. The DSN sets
// clientFoundRows=true, so an UPDATE that writes identical values still
// counts the matched row and re-saving an unchanged profile stays a 200.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
