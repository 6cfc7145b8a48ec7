package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"zuru/internal/domain"
	"zuru/internal/navigation"
	"zuru/internal/repository"
)

// DefaultHistoryLimit caps history listings when the caller gives no limit.
const DefaultHistoryLimit = 50

// BookingResult is a stored booking and the screen to continue with.
type BookingResult struct {
	Booking *domain.Booking
	Next    navigation.Route
}

// BookingService handles booking operations.
type BookingService struct {
	bookings repository.BookingRepository
	quotes   *QuoteService
	notifier *NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(bookings repository.BookingRepository, quotes *QuoteService, notifier *NotificationService, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings: bookings,
		quotes:   quotes,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create prices the trip, stores the booking and points the caller at the
// payment screen with the one-way fare.
func (s *BookingService) Create(ctx context.Context, session *domain.Session, req QuoteRequest) (*BookingResult, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}

	quoted, err := s.quotes.Quote(ctx, session, req)
	if err != nil {
		return nil, err
	}

	booking, err := BuildBookingRecord(BookingForm{
		Destination: quoted.DestinationName,
		UserEmail:   session.Email,
		Origin:      quoted.Origin,
		Target:      quoted.Destination,
		TripType:    string(quoted.TripType),
	}, quoted.Quote, s.now().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("destination", booking.DestinationName),
		zap.Int("amount", booking.FareAmount))

	if s.notifier != nil {
		_ = s.notifier.NotifyBookingCreated(ctx, booking)
	}

	return &BookingResult{
		Booking: booking,
		Next:    navigation.Payments{Destination: booking.DestinationName, Amount: quoted.Quote.Amount},
	}, nil
}

// List returns the caller's bookings, newest first.
func (s *BookingService) List(ctx context.Context, session *domain.Session, limit int) ([]*domain.Booking, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	return s.bookings.ListByEmail(ctx, session.Email, clampLimit(limit))
}

// Get returns one of the caller's bookings. Other users' bookings are
// reported as not found.
func (s *BookingService) Get(ctx context.Context, session *domain.Session, id string) (*domain.Booking, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	if id == "" {
		return nil, repository.ErrNotFound
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserEmail != session.Email {
		return nil, repository.ErrNotFound
	}
	return booking, nil
}

// oneWayFare returns the base fare of a booking before round-trip doubling.
func oneWayFare(b *domain.Booking) int {
	if b.TripType == domain.TripTypeRoundTrip {
		return b.FareAmount / 2
	}
	return b.FareAmount
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultHistoryLimit {
		return DefaultHistoryLimit
	}
	return limit
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
