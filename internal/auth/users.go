package auth

import (
	"context"

	"github.com/solarplan/rooftop-backend/internal/users"
)

// Users is the slice of the identity store the auth layer needs. *users.Repo
// implements it; tests substitute an in-memory fake.
type Users interface {
	Create(ctx context.Context, nu users.NewUser) (*users.User, error)
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetRegisteredByUsername(ctx context.Context, username string) (*users.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	TouchActivity(ctx context.Context, id string) error
	CreateGuest(ctx context.Context, passwordHash string, expiryDays int) (*users.User, error)
	Promote(ctx context.Context, id, username, email, passwordHash string) (*users.User, error)
}
