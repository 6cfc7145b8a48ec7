package geo

import (
	"context"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"
	"go.uber.org/zap"

	"zuru/internal/domain"
)

// reverseCachePrecision groups coordinates into cells of roughly 150m.
const reverseCachePrecision = 7

// Cache is the subset of the Redis cache store used for geocoding results.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedGeocoder fronts a Geocoder with a cache. Cache failures are logged and
// fall through to the underlying geocoder.
type CachedGeocoder struct {
	next   Geocoder
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedGeocoder wraps next with cache.
func NewCachedGeocoder(next Geocoder, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{next: next, cache: cache, ttl: ttl, logger: logger}
}

// ReverseKey is the cache key of a reverse lookup at coord.
func ReverseKey(coord domain.Coordinate) string {
	return "geocode:rev:" + geohash.EncodeWithPrecision(coord.Lat, coord.Lng, reverseCachePrecision)
}

// ForwardKey is the cache key of a forward lookup of name.
func ForwardKey(name string) string {
	return "geocode:fwd:" + strings.ToLower(strings.TrimSpace(name))
}

// Reverse implements Geocoder.
func (g *CachedGeocoder) Reverse(ctx context.Context, coord domain.Coordinate) (string, error) {
	key := ReverseKey(coord)

	var name string
	if ok, err := g.cache.GetJSON(ctx, key, &name); err != nil {
		g.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return name, nil
	}

	name, err := g.next.Reverse(ctx, coord)
	if err != nil {
		return "", err
	}

	if err := g.cache.SetJSON(ctx, key, name, g.ttl); err != nil {
		g.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
	return name, nil
}

// Forward implements Geocoder.
func (g *CachedGeocoder) Forward(ctx context.Context, name string) (domain.Coordinate, error) {
	key := ForwardKey(name)

	var coord domain.Coordinate
	if ok, err := g.cache.GetJSON(ctx, key, &coord); err != nil {
		g.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return coord, nil
	}

	coord, err := g.next.Forward(ctx, name)
	if err != nil {
		return domain.Coordinate{}, err
	}

	if err := g.cache.SetJSON(ctx, key, coord, g.ttl); err != nil {
		g.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
	return coord, nil
}
