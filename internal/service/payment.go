package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"zuru/internal/domain"
	"zuru/internal/navigation"
	"zuru/internal/repository"
)

// ErrPaymentInProgress is returned when the same submission is already being charged.
var ErrPaymentInProgress = errors.New("payment already in progress")

const paymentLockTTL = 30 * time.Second

// PaymentLocker guards a submission while it is being charged.
type PaymentLocker interface {
	AcquirePaymentLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, key string) error
}

// PaymentResult is a stored payment and the screen to continue with.
type PaymentResult struct {
	Payment  *domain.Payment
	Replayed bool // true when an earlier submission with the same key was returned
	Next     navigation.Route
}

// PaymentService handles payment operations.
type PaymentService struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
	psps     map[domain.PaymentMethod]PSP
	locks    PaymentLocker
	notifier *NotificationService
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewPaymentService creates a new PaymentService. psps maps each accepted
// method to its provider; locks may be nil.
func NewPaymentService(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	psps map[domain.PaymentMethod]PSP,
	locks PaymentLocker,
	notifier *NotificationService,
	loc *time.Location,
	logger *zap.Logger,
) *PaymentService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		psps:     psps,
		locks:    locks,
		notifier: notifier,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Pay validates the form, charges the provider for the method and stores the
// payment. Nothing is stored when the charge fails. A repeated idempotency
// key returns the payment stored by the first submission.
func (s *PaymentService) Pay(ctx context.Context, session *domain.Session, form PaymentForm, idempotencyKey string) (*PaymentResult, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	form.UserEmail = session.Email

	key := ""
	if idempotencyKey = strings.TrimSpace(idempotencyKey); idempotencyKey != "" {
		key = fmt.Sprintf("payment:%s:%s", session.UserID, idempotencyKey)

		existing, err := s.payments.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.result(existing, true), nil
		}
	}

	baseFare := form.Amount
	if form.BookingID != "" {
		booking, err := s.bookings.GetByID(ctx, form.BookingID)
		if err != nil {
			if isNotFound(err) {
				return nil, invalid("bookingId", "booking not found")
			}
			return nil, err
		}
		if booking.UserEmail != session.Email {
			return nil, invalid("bookingId", "booking not found")
		}
		baseFare = oneWayFare(booking)
		if strings.TrimSpace(form.Destination) == "" {
			form.Destination = booking.DestinationName
		}
	}

	payment, err := BuildPaymentRecord(form, baseFare, s.now().Truncate(time.Millisecond), s.loc)
	if err != nil {
		return nil, err
	}
	payment.IdempotencyKey = key

	psp, ok := s.psps[payment.Method]
	if !ok {
		return nil, invalid("method", fmt.Sprintf("%s is not accepted", payment.Method))
	}
	if payment.Method == domain.PaymentMethodCard && strings.TrimSpace(form.CardToken) == "" {
		return nil, invalid("cardToken", "card token is required for card payments")
	}

	if key != "" && s.locks != nil {
		acquired, err := s.locks.AcquirePaymentLock(ctx, key, paymentLockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrPaymentInProgress
		}
		defer func() {
			if err := s.locks.ReleasePaymentLock(context.WithoutCancel(ctx), key); err != nil {
				s.logger.Warn("release payment lock", zap.String("key", key), zap.Error(err))
			}
		}()

		// The first submission may have finished between the lookup and the lock.
		existing, err := s.payments.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.result(existing, true), nil
		}
	}

	// A zero fare has nothing to charge.
	if payment.Amount > 0 {
		charge, err := psp.Charge(ctx, ChargeRequest{
			Amount:         payment.Amount,
			Method:         payment.Method,
			UserEmail:      payment.UserEmail,
			Description:    "Trip to " + payment.Destination,
			CardToken:      form.CardToken,
			IdempotencyKey: key,
		})
		if err != nil {
			s.logger.Warn("charge failed",
				zap.String("method", string(payment.Method)),
				zap.Int("amount", payment.Amount),
				zap.Error(err))
			return nil, remoteFailure("charge "+string(payment.Method), err)
		}
		payment.Reference = charge.Reference
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && key != "" {
			existing, getErr := s.payments.GetByIdempotencyKey(ctx, key)
			if getErr == nil && existing != nil {
				return s.result(existing, true), nil
			}
		}
		s.logger.Error("charged payment not stored",
			zap.String("reference", payment.Reference),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("payment confirmed",
		zap.String("payment_id", payment.ID),
		zap.String("method", string(payment.Method)),
		zap.Int("amount", payment.Amount))

	if s.notifier != nil {
		_ = s.notifier.NotifyPaymentConfirmed(ctx, payment)
	}

	return s.result(payment, false), nil
}

// List returns the caller's payments, newest first.
func (s *PaymentService) List(ctx context.Context, session *domain.Session, limit int) ([]*domain.Payment, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	payments, err := s.payments.ListByEmail(ctx, session.Email, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return localize(payments, s.loc), nil
}

// Get retrieves one of the caller's payments.
func (s *PaymentService) Get(ctx context.Context, session *domain.Session, paymentID string) (*domain.Payment, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	if paymentID == "" {
		return nil, repository.ErrNotFound
	}

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserEmail != session.Email {
		return nil, repository.ErrNotFound
	}
	return payment.In(s.loc), nil
}

func (s *PaymentService) result(p *domain.Payment, replayed bool) *PaymentResult {
	return &PaymentResult{
		Payment:  p.In(s.loc),
		Replayed: replayed,
		Next:     navigation.Receipt{PaymentID: p.ID},
	}
}

func localize(payments []*domain.Payment, loc *time.Location) []*domain.Payment {
	for i, p := range payments {
		payments[i] = p.In(loc)
	}
	return payments
}
