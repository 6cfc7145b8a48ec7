package postgres

import (
	"context"
	"database/sql"
	"errors"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

// DestinationRepository is a PostgreSQL implementation of repository.DestinationRepository.
type DestinationRepository struct {
	q Querier
}

// NewDestinationRepository creates a new PostgreSQL destination repository.
func NewDestinationRepository(db *sql.DB) *DestinationRepository {
	return &DestinationRepository{q: db}
}

const destinationColumns = `id, name, location, description, price, image_url, lat, lng`

// GetAll returns every destination ordered by name.
func (r *DestinationRepository) GetAll(ctx context.Context) ([]*domain.Destination, error) {
	query := `SELECT ` + destinationColumns + ` FROM destinations ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var destinations []*domain.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		destinations = append(destinations, d)
	}
	return destinations, rows.Err()
}

// GetByID retrieves a destination by ID.
func (r *DestinationRepository) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	query := `SELECT ` + destinationColumns + ` FROM destinations WHERE id = $1`

	d, err := scanDestination(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func scanDestination(s scanner) (*domain.Destination, error) {
	var d domain.Destination
	err := s.Scan(&d.ID, &d.Name, &d.Location, &d.Description, &d.Price, &d.ImageURL,
		&d.Coordinate.Lat, &d.Coordinate.Lng)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
