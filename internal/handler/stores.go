package handler

import (
	"context"
	"time"

	"github.com/jwozniak/car-workshop/internal/queue"
	"github.com/jwozniak/car-workshop/internal/repository"
)

// The handler layer depends on narrow store interfaces rather than the
// concrete repositories so tests can substitute in-memory fakes. The
// repository types satisfy them.

type UserStore interface {
	Create(ctx context.Context, u *repository.User, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
	UpdateProfile(ctx context.Context, id uint64, name, surname, email string) error
	UpdateAddress(ctx context.Context, id uint64, a repository.Address) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
}

type CarStore interface {
	Create(ctx context.Context, c *repository.Car) (uint64, error)
	Update(ctx context.Context, c *repository.Car) error
	Delete(ctx context.Context, id, userID uint64) error
	ListByOwner(ctx context.Context, userID uint64) ([]repository.CarRow, error)
	ListBrands(ctx context.Context) ([]repository.Brand, error)
	ListModelsByBrand(ctx context.Context, brandID uint64) ([]repository.Model, error)
}

type WorkshopStore interface {
	ListAll(ctx context.Context) ([]repository.Workshop, error)
}

// EventPublisher delivers domain events to the broker. Publishing is
// best-effort; handlers never fail a request because of it. A nil publisher
// disables events.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
	PublishCarAdded(ctx context.Context, ev queue.CarAddedEvent) error
}

var (
	_ UserStore     = (*repository.UserRepo)(nil)
	_ TokenStore    = (*repository.TokenRepo)(nil)
	_ CarStore      = (*repository.CarRepo)(nil)
	_ WorkshopStore = (*repository.WorkshopRepo)(nil)
)
