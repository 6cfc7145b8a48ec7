package repository

import (
	"context"

	"zuru/internal/domain"
)

// DestinationRepository reads the destination catalogue.
type DestinationRepository interface {
	// GetAll returns every destination ordered by name.
	GetAll(ctx context.Context) ([]*domain.Destination, error)

	// GetByID retrieves a destination by ID.
	GetByID(ctx context.Context, id string) (*domain.Destination, error)
}
