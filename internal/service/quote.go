package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"zuru/internal/domain"
	"zuru/internal/fare"
	"zuru/internal/geo"
)

// UnknownLocation names a destination the geocoder could not resolve.
// Such destinations cannot be booked.
const UnknownLocation = "Unknown Location"

// LocationReader returns a user's last-known device location.
type LocationReader interface {
	LastKnown(ctx context.Context, userID string) (domain.Coordinate, bool, error)
}

// QuoteRequest describes a trip to price. Origin defaults to the caller's
// last-known location. The destination is given by coordinates or by name.
type QuoteRequest struct {
	Origin          *domain.Coordinate
	Destination     *domain.Coordinate
	DestinationName string
	TripType        string
}

// QuoteResult is a priced trip.
type QuoteResult struct {
	Origin          domain.Coordinate
	Destination     domain.Coordinate
	DestinationName string
	TripType        domain.TripType
	Quote           fare.Quote // one-way
	Total           int        // doubled for round trips
}

// QuoteService prices trips between two points.
type QuoteService struct {
	locations LocationReader
	geocoder  geo.Geocoder
	rate      float64
	logger    *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(locations LocationReader, geocoder geo.Geocoder, ratePerKm float64, logger *zap.Logger) *QuoteService {
	if ratePerKm <= 0 {
		ratePerKm = fare.DefaultRatePerKm
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{
		locations: locations,
		geocoder:  geocoder,
		rate:      ratePerKm,
		logger:    logger,
	}
}

// Quote resolves both ends of the trip and estimates the fare.
func (s *QuoteService) Quote(ctx context.Context, session *domain.Session, req QuoteRequest) (*QuoteResult, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}

	tripType, err := parseTripType(req.TripType)
	if err != nil {
		return nil, err
	}

	origin, err := s.resolveOrigin(ctx, session, req.Origin)
	if err != nil {
		return nil, err
	}

	target, name, err := s.resolveDestination(ctx, req)
	if err != nil {
		return nil, err
	}

	quote := fare.Estimate(origin, target, s.rate)
	return &QuoteResult{
		Origin:          origin,
		Destination:     target,
		DestinationName: name,
		TripType:        tripType,
		Quote:           quote,
		Total:           fare.ApplyTripType(quote.Amount, tripType),
	}, nil
}

func (s *QuoteService) resolveOrigin(ctx context.Context, session *domain.Session, origin *domain.Coordinate) (domain.Coordinate, error) {
	if origin != nil {
		if !origin.Valid() {
			return domain.Coordinate{}, invalid("origin", "origin coordinates out of range")
		}
		return *origin, nil
	}

	coord, ok, err := s.locations.LastKnown(ctx, session.UserID)
	if err != nil {
		return domain.Coordinate{}, err
	}
	if !ok {
		return domain.Coordinate{}, invalid("origin", "no origin given and no last-known location")
	}
	return coord, nil
}

func (s *QuoteService) resolveDestination(ctx context.Context, req QuoteRequest) (domain.Coordinate, string, error) {
	name := strings.TrimSpace(req.DestinationName)

	if req.Destination != nil {
		if !req.Destination.Valid() {
			return domain.Coordinate{}, "", invalid("destination", "destination coordinates out of range")
		}
		if name == "" {
			name = s.placeName(ctx, *req.Destination)
		}
		return *req.Destination, name, nil
	}

	if name == "" {
		return domain.Coordinate{}, "", invalid("destination", "destination is required")
	}

	coord, err := s.geocoder.Forward(ctx, name)
	if err != nil {
		if errors.Is(err, geo.ErrNoResult) {
			return domain.Coordinate{}, "", invalid("destination", "no place found for "+name)
		}
		return domain.Coordinate{}, "", remoteFailure("geocode "+name, err)
	}
	return coord, name, nil
}

// placeName looks up the name at coord, falling back to UnknownLocation.
func (s *QuoteService) placeName(ctx context.Context, coord domain.Coordinate) string {
	name, err := s.geocoder.Reverse(ctx, coord)
	if err != nil {
		if !errors.Is(err, geo.ErrNoResult) {
			s.logger.Warn("reverse geocode failed", zap.Float64("lat", coord.Lat), zap.Float64("lng", coord.Lng), zap.Error(err))
		}
		return UnknownLocation
	}
	return name
}
