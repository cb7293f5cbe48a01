package repository

import (
	"context"
	"errors"
	"time"

	"property_portal/internal/model"
)

// Finder methods return (nil, nil) when no row matches; the service layer
// decides whether that is an error.

// PropertyRepository defines operations for property data
type PropertyRepository interface {
	Create(ctx context.Context, p *model.Property) error
	FindByID(ctx context.Context, id int) (*model.Property, error)
	FindAll(ctx context.Context) ([]model.Property, error)
	Update(ctx context.Context, p *model.Property) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// UserRepository defines operations for the admin account
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
}

// SessionRepository is the server-side session store
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	// FindActive returns the session only if it has not expired at now.
	FindActive(ctx context.Context, id string, now time.Time) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ErrNotFound is returned by Update and Delete when no row matched the id.
var ErrNotFound = errors.New("record not found")
