package service

import (
	"context"
	"time"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

const (
	// ReminderWindow is how far ahead a trip triggers a reminder.
	ReminderWindow = 24 * time.Hour

	reminderCandidates = 10
)

// Reminder is a trip starting within the reminder window.
type Reminder struct {
	Payment  *domain.Payment
	StartsAt time.Time
	StartsIn time.Duration
}

// TripService answers questions about a user's paid trips.
type TripService struct {
	payments repository.PaymentRepository
	loc      *time.Location
}

// NewTripService creates a new TripService. Travel dates are calendar days in loc.
func NewTripService(payments repository.PaymentRepository, loc *time.Location) *TripService {
	if loc == nil {
		loc = time.UTC
	}
	return &TripService{payments: payments, loc: loc}
}

// Upcoming lists paid trips travelling today or later, soonest first.
func (s *TripService) Upcoming(ctx context.Context, session *domain.Session, now time.Time) ([]*domain.Payment, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	trips, err := s.payments.ListTravellingFrom(ctx, session.Email, s.midnight(now), DefaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	return localize(trips, s.loc), nil
}

// NextReminder returns the soonest trip starting in [now, now+24h). A trip
// starts at 00:00 of its travel date. Returns repository.ErrNotFound when no
// trip is due.
func (s *TripService) NextReminder(ctx context.Context, session *domain.Session, now time.Time) (*Reminder, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}

	candidates, err := s.payments.ListTravellingFrom(ctx, session.Email, now, reminderCandidates)
	if err != nil {
		return nil, err
	}

	deadline := now.Add(ReminderWindow)
	for _, p := range candidates {
		start := s.midnight(p.TravelDate)
		if start.Before(now) || !start.Before(deadline) {
			continue
		}
		return &Reminder{Payment: p.In(s.loc), StartsAt: start, StartsIn: start.Sub(now)}, nil
	}
	return nil, repository.ErrNotFound
}

func (s *TripService) midnight(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}
