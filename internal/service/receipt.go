package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"zuru/internal/domain"
	"zuru/internal/fare"
	"zuru/internal/navigation"
)

// ReceiptService handles receipt generation.
type ReceiptService struct {
	notificationService *NotificationService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(notificationService *NotificationService) *ReceiptService {
	return &ReceiptService{
		notificationService: notificationService,
	}
}

// Build derives the receipt of a stored payment.
func (s *ReceiptService) Build(payment *domain.Payment) *domain.Receipt {
	multiplier := fare.Multiplier(payment.TripType)

	return &domain.Receipt{
		PaymentID:   payment.ID,
		UserEmail:   payment.UserEmail,
		Destination: payment.Destination,
		Method:      payment.Method,
		BaseFare:    payment.Amount / multiplier,
		Multiplier:  multiplier,
		Amount:      payment.Amount,
		TravelDate:  payment.TravelDate,
		TripType:    payment.TripType,
		ReturnDate:  payment.ReturnDate,
		TravelMode:  payment.TravelMode,
		VehicleType: payment.VehicleType,
		Reference:   payment.Reference,
		PaidAt:      payment.CreatedAt,
		Route:       navigation.Receipt{PaymentID: payment.ID}.Path(),
	}
}

// Announce builds the receipt and notifies the user that it is ready.
func (s *ReceiptService) Announce(ctx context.Context, payment *domain.Payment) *domain.Receipt {
	receipt := s.Build(payment)
	if s.notificationService != nil {
		_ = s.notificationService.NotifyReceiptReady(ctx, receipt)
	}
	return receipt
}

// FormatReceipt formats the receipt as a string (for email/print).
func (s *ReceiptService) FormatReceipt(receipt *domain.Receipt) string {
	return `
=====================================
        ZURU TRAVEL RECEIPT
=====================================
Receipt ID: ` + receipt.PaymentID + `
Reference:  ` + orDash(receipt.Reference) + `
Paid:       ` + receipt.PaidAt.Format("Jan 02, 2006 3:04 PM") + `

TRIP DETAILS
-------------------------------------
Destination: ` + receipt.Destination + `
Trip Type:   ` + string(receipt.TripType) + `
Travel Date: ` + receipt.TravelDate.Format(DateLayout) + `
Return Date: ` + formatOptionalDate(receipt.ReturnDate) + `
Travel Mode: ` + string(receipt.TravelMode) + `
Vehicle:     ` + formatVehicle(receipt.VehicleType) + `

FARE BREAKDOWN
-------------------------------------
Base Fare:        ` + formatKES(receipt.BaseFare) + `
Return Leg:       ` + formatKES(receipt.Amount-receipt.BaseFare) + `
-------------------------------------
TOTAL:            ` + formatKES(receipt.Amount) + `

PAYMENT
-------------------------------------
Method: ` + string(receipt.Method) + `
Paid by: ` + receipt.UserEmail + `

=====================================
   Thank you for travelling with us!
=====================================
`
}

// RenderPDF renders the receipt as a single-page A4 PDF.
func (s *ReceiptService) RenderPDF(receipt *domain.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Zuru Receipt "+receipt.PaymentID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ZURU TRAVEL RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.Cell(45, 7, label)
		pdf.Cell(0, 7, value)
		pdf.Ln(7)
	}

	line("Receipt ID:", receipt.PaymentID)
	line("Reference:", orDash(receipt.Reference))
	line("Paid:", receipt.PaidAt.Format("Jan 02, 2006 3:04 PM"))
	line("Paid by:", receipt.UserEmail)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trip")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	line("Destination:", receipt.Destination)
	line("Trip type:", string(receipt.TripType))
	line("Travel date:", receipt.TravelDate.Format(DateLayout))
	line("Return date:", formatOptionalDate(receipt.ReturnDate))
	line("Travel mode:", string(receipt.TravelMode))
	line("Vehicle:", formatVehicle(receipt.VehicleType))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Fare")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	line("Base fare:", formatKES(receipt.BaseFare))
	line("Trips:", fmt.Sprintf("%dx", receipt.Multiplier))
	line("Method:", string(receipt.Method))
	pdf.SetFont("Helvetica", "B", 12)
	line("Total:", formatKES(receipt.Amount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatKES(amount int) string {
	return fmt.Sprintf("KES %d", amount)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(DateLayout)
}

func formatVehicle(v *domain.VehicleType) string {
	if v == nil {
		return "N/A"
	}
	return string(*v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
