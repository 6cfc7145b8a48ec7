package repository

import (
	"context"

	"zuru/internal/domain"
)

// UserRepository defines the persistence operations for user accounts.
type UserRepository interface {
	// Create adds a new user. Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateDisplayName changes the user's display name.
	UpdateDisplayName(ctx context.Context, id, displayName string) error

	// UpdateEmail changes the user's email. Returns ErrDuplicate if the email is taken.
	UpdateEmail(ctx context.Context, id, email string) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// Delete removes the user.
	Delete(ctx context.Context, id string) error
}
