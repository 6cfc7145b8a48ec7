package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

// DestinationCache stores catalogue reads.
type DestinationCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

const destinationListKey = "destinations:all"

// DestinationService reads the destination catalogue.
type DestinationService struct {
	destinations repository.DestinationRepository
	cache        DestinationCache
	ttl          time.Duration
	logger       *zap.Logger
}

// NewDestinationService creates a new DestinationService. cache may be nil.
func NewDestinationService(destinations repository.DestinationRepository, cache DestinationCache, ttl time.Duration, logger *zap.Logger) *DestinationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DestinationService{destinations: destinations, cache: cache, ttl: ttl, logger: logger}
}

// List returns the whole catalogue.
func (s *DestinationService) List(ctx context.Context) ([]*domain.Destination, error) {
	if s.cache != nil {
		var cached []*domain.Destination
		ok, err := s.cache.GetJSON(ctx, destinationListKey, &cached)
		if err != nil {
			s.logger.Warn("destination cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	list, err := s.destinations.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, destinationListKey, list, s.ttl); err != nil {
			s.logger.Warn("destination cache write failed", zap.Error(err))
		}
	}
	return list, nil
}

// Get returns a single destination.
func (s *DestinationService) Get(ctx context.Context, id string) (*domain.Destination, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	return s.destinations.GetByID(ctx, id)
}
