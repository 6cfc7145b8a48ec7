package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"zuru/internal/config"
	internalRedis "zuru/internal/redis"
	"zuru/internal/repository/memory"
)

// Stores bundles the key-value stores: last-known locations, the JSON cache
// (geocodes, catalogue, idempotent responses), token revocations and payment
// locks.
type Stores struct {
	Locations   internalRedis.LocationStoreInterface
	Cache       internalRedis.CacheStoreInterface
	Revocations internalRedis.RevocationStoreInterface
	Locks       internalRedis.LockStoreInterface

	client *redis.Client
}

// Close closes the Redis client, if any.
func (s *Stores) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// NewStores connects to Redis, or keeps everything in process for the
// memory driver.
func NewStores(ctx context.Context, cfg *config.Config, nrApp *newrelic.Application) (*Stores, error) {
	if cfg.Store.Driver == DriverMemory {
		store := memory.NewStore()
		return &Stores{Locations: store, Cache: store, Revocations: store, Locks: store}, nil
	}

	client, err := NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Locations:   internalRedis.NewLocationStore(client),
		Cache:       internalRedis.NewCacheStore(client),
		Revocations: internalRedis.NewRevocationStore(client),
		Locks:       internalRedis.NewLockStore(client),
		client:      client,
	}, nil
}

// NewRedisClient creates a new Redis client with optional New Relic instrumentation.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, nrApp *newrelic.Application) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if nrApp != nil {
		client.AddHook(&nrRedisHook{})
	}

	// Verify connection.
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// nrRedisHook records Redis commands as datastore segments of the request's
// New Relic transaction.
type nrRedisHook struct{}

func (h *nrRedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *nrRedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			segment := newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  cmd.Name(),
				Collection: keyspace(cmd),
			}
			defer segment.End()
		}
		return next(ctx, cmd)
	}
}

func (h *nrRedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			segment := newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  "pipeline",
				Collection: "redis",
			}
			defer segment.End()
		}
		return next(ctx, cmds)
	}
}

// keyspace names a command's collection after the first segment of its key,
// e.g. "geocode" for "geocode:rev:u4pruyd".
func keyspace(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return "redis"
	}
	key, ok := args[1].(string)
	if !ok || key == "" {
		return "redis"
	}
	prefix, _, _ := strings.Cut(key, ":")
	return prefix
}
