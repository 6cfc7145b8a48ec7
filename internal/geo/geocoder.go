// Package geo resolves coordinates to place names and back.
package geo

import (
	"context"
	"errors"

	"zuru/internal/domain"
)

// ErrNoResult is returned when the geocoder has no match for the query.
var ErrNoResult = errors.New("no geocoding result")

// Geocoder converts between coordinates and human-readable place names.
type Geocoder interface {
	Reverse(ctx context.Context, coord domain.Coordinate) (string, error)
	Forward(ctx context.Context, name string) (domain.Coordinate, error)
}
