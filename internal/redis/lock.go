package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquirePaymentLock attempts to lock a payment submission key so that two
// concurrent submissions cannot both charge the user.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquirePaymentLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, paymentLockKey(key), "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleasePaymentLock releases the lock for the given submission key.
func (s *LockStore) ReleasePaymentLock(ctx context.Context, key string) error {
	return s.client.Del(ctx, paymentLockKey(key)).Err()
}

func paymentLockKey(key string) string {
	return fmt.Sprintf("lock:payment:%s", key)
}
