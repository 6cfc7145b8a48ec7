package messaging

import (
	"encoding/json"
	"time"
)

// Routing keys of the domain events published on the exchange.
const (
	EventBookingCreated   = "booking.created"
	EventPaymentConfirmed = "payment.confirmed"
	EventReceiptReady     = "receipt.ready"
	EventAccountDeleted   = "account.deleted"
)

// NotificationsQueue receives every event for the notification worker.
const NotificationsQueue = "zuru.notifications"

// Envelope is the wire body of every published event.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope encodes data into an envelope for eventType.
func NewEnvelope(eventType string, data any, now time.Time) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, OccurredAt: now.UTC(), Data: raw}, nil
}
