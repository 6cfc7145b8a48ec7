package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zuru/internal/domain"
	"zuru/internal/middleware"
	"zuru/internal/service"
)

// PaymentHandler handles HTTP requests for payments and receipts.
type PaymentHandler struct {
	paymentService *service.PaymentService
	receiptService *service.ReceiptService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService, receiptService *service.ReceiptService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, receiptService: receiptService}
}

// ProcessPaymentRequest is the HTTP request body for processing a payment.
// Dates use dd/MM/yyyy.
type ProcessPaymentRequest struct {
	BookingID   string `json:"booking_id"`
	Destination string `json:"destination"`
	Amount      int    `json:"amount"`
	Method      string `json:"method"`
	TravelDate  string `json:"travel_date"`
	TripType    string `json:"trip_type"`
	ReturnDate  string `json:"return_date"`
	TravelMode  string `json:"travel_mode"`
	VehicleType string `json:"vehicle_type"`
	CardToken   string `json:"card_token"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"user_email"`
	Destination string    `json:"destination"`
	BookingID   string    `json:"booking_id,omitempty"`
	Method      string    `json:"method"`
	Amount      int       `json:"amount"`
	TravelDate  string    `json:"travel_date"`
	TripType    string    `json:"trip_type"`
	ReturnDate  *string   `json:"return_date"`
	TravelMode  string    `json:"travel_mode"`
	VehicleType *string   `json:"vehicle_type"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
	Next        string    `json:"next,omitempty"`
}

// ReceiptResponse is the JSON rendering of a receipt.
type ReceiptResponse struct {
	PaymentResponse
	BaseFare   int    `json:"base_fare"`
	Multiplier int    `json:"multiplier"`
	Route      string `json:"route"`
}

func toPaymentResponse(p *domain.Payment, next string) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID,
		UserEmail:   p.UserEmail,
		Destination: p.Destination,
		BookingID:   p.BookingID,
		Method:      string(p.Method),
		Amount:      p.Amount,
		TravelDate:  p.TravelDate.Format(service.DateLayout),
		TripType:    string(p.TripType),
		TravelMode:  string(p.TravelMode),
		Reference:   p.Reference,
		CreatedAt:   p.CreatedAt,
		Next:        next,
	}
	if p.ReturnDate != nil {
		s := p.ReturnDate.Format(service.DateLayout)
		resp.ReturnDate = &s
	}
	if p.VehicleType != nil {
		s := string(*p.VehicleType)
		resp.VehicleType = &s
	}
	return resp
}

// ProcessPayment handles POST /v1/payments
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.paymentService.Pay(c.Request.Context(), session, service.PaymentForm{
		Destination: req.Destination,
		BookingID:   req.BookingID,
		Method:      req.Method,
		Amount:      req.Amount,
		TravelDate:  req.TravelDate,
		TripType:    req.TripType,
		ReturnDate:  req.ReturnDate,
		TravelMode:  req.TravelMode,
		VehicleType: req.VehicleType,
		CardToken:   req.CardToken,
	}, middleware.IdempotencyKey(c))
	if err != nil {
		respondError(c, err)
		return
	}

	code := http.StatusCreated
	if res.Replayed {
		code = http.StatusOK
	} else {
		h.receiptService.Announce(c.Request.Context(), res.Payment)
	}

	respondJSON(c, code, toPaymentResponse(res.Payment, nextPath(res.Next)))
}

// GetAll handles GET /v1/payments
func (h *PaymentHandler) GetAll(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.List(c.Request.Context(), session, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, toPaymentResponse(p, ""))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment, ""))
}

// GetReceipt handles GET /v1/payments/:id/receipt?format=json|text|pdf
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	receipt := h.receiptService.Build(payment)

	switch c.DefaultQuery("format", "json") {
	case "text":
		c.String(http.StatusOK, h.receiptService.FormatReceipt(receipt))
	case "pdf":
		data, err := h.receiptService.RenderPDF(receipt)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="receipt-`+receipt.PaymentID+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)
	case "json":
		respondJSON(c, http.StatusOK, ReceiptResponse{
			PaymentResponse: toPaymentResponse(payment, ""),
			BaseFare:        receipt.BaseFare,
			Multiplier:      receipt.Multiplier,
			Route:           receipt.Route,
		})
	default:
		badRequest(c, "format must be json, text or pdf")
	}
}
