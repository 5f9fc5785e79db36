// Package storage defines the backend-agnostic persistence contract of the
// funnel and the error taxonomy shared by every backend.
package storage

import (
	"context"

	"rentfunnel/internal/domain"
)

// VehicleStore is the read-only catalog
type VehicleStore interface {
	GetAll(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Vehicle, error)
	// GetFeatured returns up to limit featured vehicles, limit <= 0 means 8
	GetFeatured(ctx context.Context, limit int) ([]domain.Vehicle, error)
	Search(ctx context.Context, params domain.VehicleSearchParams) (*domain.VehicleSearchResult, error)
	Brands(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]domain.VehicleCategory, error)
}

type UserStore interface {
	Create(ctx context.Context, data domain.CreateUserData) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	// Authenticate fails with CodeUnauthorized on unknown email or wrong password
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

type FavoriteStore interface {
	// Add is idempotent: adding an existing pair returns the stored favorite
	Add(ctx context.Context, userID, vehicleID string) (*domain.Favorite, error)
	Remove(ctx context.Context, userID, vehicleID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error)
	Exists(ctx context.Context, userID, vehicleID string) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
}

type QuoteStore interface {
	Create(ctx context.Context, q *domain.Quote) (*domain.Quote, error)
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Quote, error)
	// Update only touches status and owner
	Update(ctx context.Context, id string, upd domain.QuoteUpdate) (*domain.Quote, error)
	Delete(ctx context.Context, id string) error
}

type LeadStore interface {
	// Create inserts l. When a lead with the same idempotency key already
	// exists the stored lead is returned instead and nothing is written.
	Create(ctx context.Context, l *domain.Lead) (*domain.Lead, error)
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Lead, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Lead, error)
	// List returns every lead, newest first
	List(ctx context.Context) ([]domain.Lead, error)
	UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Lead, error)
}

// Provider bundles the collections of one backend
type Provider interface {
	Name() string
	Ready(ctx context.Context) error
	// Clear drops every mutable record and restores the seed catalogue
	Clear(ctx context.Context) error

	Vehicles() VehicleStore
	Users() UserStore
	Favorites() FavoriteStore
	Quotes() QuoteStore
	Leads() LeadStore
}
