package repository

import (
	"context"
	"time"

	"zuru/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
// Payments are append-only.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByIdempotencyKey retrieves a payment by its idempotency key.
	// Returns nil if no payment exists with the given key.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)

	// ListByEmail returns a user's payments, newest first, at most limit.
	ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Payment, error)

	// ListTravellingFrom returns a user's payments whose travel date is at or
	// after from, soonest first, at most limit.
	ListTravellingFrom(ctx context.Context, email string, from time.Time, limit int) ([]*domain.Payment, error)
}
