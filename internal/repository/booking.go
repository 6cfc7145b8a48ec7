package repository

import (
	"context"

	"zuru/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
// Bookings are append-only.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListByEmail returns a user's bookings, newest first, at most limit.
	ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Booking, error)
}
