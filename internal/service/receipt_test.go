package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuru/internal/domain"
	"zuru/internal/service"
)

func roundTripPayment() *domain.Payment {
	ret := time.Date(2025, 5, 19, 0, 0, 0, 0, eat)
	bus := domain.VehicleTypeBus
	return &domain.Payment{
		ID:          "p-1",
		UserEmail:   "traveller@example.com",
		Destination: "Mombasa",
		Method:      domain.PaymentMethodMpesa,
		Amount:      3942,
		TravelDate:  time.Date(2025, 5, 12, 0, 0, 0, 0, eat),
		TripType:    domain.TripTypeRoundTrip,
		ReturnDate:  &ret,
		TravelMode:  domain.TravelModeRoad,
		VehicleType: &bus,
		Reference:   "MPABC123",
		CreatedAt:   time.Date(2025, 5, 1, 9, 30, 0, 0, eat),
	}
}

func TestReceipt_Build(t *testing.T) {
	t.Parallel()

	r := service.NewReceiptService(nil).Build(roundTripPayment())

	assert.Equal(t, 1971, r.BaseFare)
	assert.Equal(t, 2, r.Multiplier)
	assert.Equal(t, 3942, r.Amount)
	assert.Equal(t, "receipt/p-1", r.Route)
}

func TestReceipt_FormatShowsOptionalsAsNA(t *testing.T) {
	t.Parallel()

	p := roundTripPayment()
	p.TripType = domain.TripTypeOneWay
	p.ReturnDate = nil
	p.TravelMode = domain.TravelModeFlight
	p.VehicleType = nil
	p.Amount = 1971

	svc := service.NewReceiptService(nil)
	text := svc.FormatReceipt(svc.Build(p))

	assert.Contains(t, text, "Destination: Mombasa")
	assert.Contains(t, text, "Travel Date: 12/05/2025")
	assert.Contains(t, text, "Return Date: N/A")
	assert.Contains(t, text, "Vehicle:     N/A")
	assert.Contains(t, text, "TOTAL:            KES 1971")
}

func TestReceipt_FormatRoundTrip(t *testing.T) {
	t.Parallel()

	svc := service.NewReceiptService(nil)
	text := svc.FormatReceipt(svc.Build(roundTripPayment()))

	assert.Contains(t, text, "Return Date: 19/05/2025")
	assert.Contains(t, text, "Vehicle:     Bus")
	assert.Contains(t, text, "Base Fare:        KES 1971")
	assert.Contains(t, text, "Return Leg:       KES 1971")
	assert.True(t, strings.Contains(text, "Reference:  MPABC123"))
}

func TestReceipt_RenderPDF(t *testing.T) {
	t.Parallel()

	svc := service.NewReceiptService(nil)
	data, err := svc.RenderPDF(svc.Build(roundTripPayment()))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestReceipt_AnnounceNotifies(t *testing.T) {
	t.Parallel()

	publisher := &MockPublisher{}
	svc := service.NewReceiptService(service.NewNotificationService(publisher, nil))

	r := svc.Announce(context.Background(), roundTripPayment())
	assert.Equal(t, "p-1", r.PaymentID)
	assert.Equal(t, []string{"receipt.ready"}, publisher.Events())
}
