package redis

import (
	"context"
	"time"

	"zuru/internal/domain"
)

// LocationStoreInterface defines the interface for last-known user locations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, userID string, coord domain.Coordinate) error
	LastKnown(ctx context.Context, userID string) (domain.Coordinate, bool, error)
	RemoveLocation(ctx context.Context, userID string) error
}

// LockStoreInterface defines the interface for short-lived submission locks.
type LockStoreInterface interface {
	AcquirePaymentLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, key string) error
}

// CacheStoreInterface defines the interface for JSON value caching.
type CacheStoreInterface interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RevocationStoreInterface defines the interface for signed-out session tokens.
type RevocationStoreInterface interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface   = (*LocationStore)(nil)
	_ LockStoreInterface       = (*LockStore)(nil)
	_ CacheStoreInterface      = (*CacheStore)(nil)
	_ RevocationStoreInterface = (*RevocationStore)(nil)
)
