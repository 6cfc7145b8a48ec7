package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"zuru/internal/domain"
)

const userLocationKey = "users:locations"

// LocationStore keeps each user's last-known device location in a Redis geo set.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a user's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, userID string, coord domain.Coordinate) error {
	return s.client.GeoAdd(ctx, userLocationKey, &redis.GeoLocation{
		Name:      userID,
		Longitude: coord.Lng,
		Latitude:  coord.Lat,
	}).Err()
}

// LastKnown returns the stored location for userID. The boolean is false when
// no location has been recorded.
func (s *LocationStore) LastKnown(ctx context.Context, userID string) (domain.Coordinate, bool, error) {
	positions, err := s.client.GeoPos(ctx, userLocationKey, userID).Result()
	if err != nil {
		return domain.Coordinate{}, false, err
	}

	if len(positions) == 0 || positions[0] == nil {
		return domain.Coordinate{}, false, nil
	}

	return domain.Coordinate{Lat: positions[0].Latitude, Lng: positions[0].Longitude}, true, nil
}

// RemoveLocation removes a user's location from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, userID string) error {
	return s.client.ZRem(ctx, userLocationKey, userID).Err()
}
