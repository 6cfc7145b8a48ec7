package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zuru/internal/domain"
	"zuru/internal/messaging"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = messaging.EventBookingCreated
	NotificationPaymentConfirmed NotificationType = messaging.EventPaymentConfirmed
	NotificationReceiptReady     NotificationType = messaging.EventReceiptReady
	NotificationAccountDeleted   NotificationType = messaging.EventAccountDeleted
)

// Notification represents a notification to be sent.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Recipient string           `json:"recipient"` // user email
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, eventType string, data any) error {
	p.logger.Info("event", zap.String("type", eventType), zap.Any("data", data))
	return nil
}

// NotificationService turns domain changes into user notifications.
type NotificationService struct {
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(publisher Publisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{publisher: publisher, logger: logger, now: time.Now}
}

// NotifyBookingCreated tells the user their booking was saved.
func (s *NotificationService) NotifyBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return s.send(ctx, Notification{
		Type:      NotificationBookingCreated,
		Recipient: booking.UserEmail,
		Title:     "Booking Saved",
		Message:   fmt.Sprintf("Your trip to %s is booked. Fare: KES %d", booking.DestinationName, booking.FareAmount),
		Data: map[string]any{
			"booking_id":  booking.ID,
			"destination": booking.DestinationName,
			"amount":      booking.FareAmount,
			"trip_type":   booking.TripType,
		},
	})
}

// NotifyPaymentConfirmed tells the user their payment went through.
func (s *NotificationService) NotifyPaymentConfirmed(ctx context.Context, payment *domain.Payment) error {
	return s.send(ctx, Notification{
		Type:      NotificationPaymentConfirmed,
		Recipient: payment.UserEmail,
		Title:     "Payment Confirmed",
		Message:   fmt.Sprintf("KES %d paid via %s for %s", payment.Amount, payment.Method, payment.Destination),
		Data: map[string]any{
			"payment_id":  payment.ID,
			"destination": payment.Destination,
			"amount":      payment.Amount,
			"method":      payment.Method,
			"travel_date": payment.TravelDate.Format(DateLayout),
		},
	})
}

// NotifyReceiptReady tells the user a receipt can be downloaded.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *domain.Receipt) error {
	return s.send(ctx, Notification{
		Type:      NotificationReceiptReady,
		Recipient: receipt.UserEmail,
		Title:     "Receipt Ready",
		Message:   fmt.Sprintf("Your receipt for KES %d is ready", receipt.Amount),
		Data: map[string]any{
			"payment_id": receipt.PaymentID,
			"route":      receipt.Route,
		},
	})
}

// NotifyAccountDeleted confirms the removal of an account.
func (s *NotificationService) NotifyAccountDeleted(ctx context.Context, user *domain.User) error {
	return s.send(ctx, Notification{
		Type:      NotificationAccountDeleted,
		Recipient: user.Email,
		Title:     "Account Deleted",
		Message:   "Your Zuru account has been deleted",
		Data: map[string]any{
			"user_id": user.ID,
		},
	})
}

func (s *NotificationService) send(ctx context.Context, n Notification) error {
	if n.Recipient == "" {
		return nil // No one to notify
	}
	n.ID = uuid.New().String()
	n.CreatedAt = s.now()

	if err := s.publisher.Publish(ctx, string(n.Type), n); err != nil {
		s.logger.Warn("notification not delivered",
			zap.String("type", string(n.Type)),
			zap.String("recipient", n.Recipient),
			zap.Error(err))
		return remoteFailure("publish "+string(n.Type), err)
	}
	return nil
}
