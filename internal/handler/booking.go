package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"zuru/internal/domain"
	"zuru/internal/navigation"
	"zuru/internal/service"
)

// BookingHandler handles fare quotes and bookings.
type BookingHandler struct {
	quoteService   *service.QuoteService
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(quoteService *service.QuoteService, bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{quoteService: quoteService, bookingService: bookingService}
}

// PointRequest is a coordinate in a request body.
type PointRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TripRequest is the HTTP request body for quotes and bookings. Origin
// defaults to the last-known location; the destination may be a point, a
// name or both.
type TripRequest struct {
	Origin          *PointRequest `json:"origin"`
	Destination     *PointRequest `json:"destination"`
	DestinationName string        `json:"destination_name"`
	TripType        string        `json:"trip_type"`
}

// QuoteResponse is the HTTP response for fare quotes.
type QuoteResponse struct {
	Origin          PointRequest `json:"origin"`
	Destination     PointRequest `json:"destination"`
	DestinationName string       `json:"destination_name"`
	TripType        string       `json:"trip_type"`
	DistanceKm      float64      `json:"distance_km"`
	Amount          int          `json:"amount_kes"`
	Total           int          `json:"total_kes"`
}

// BookingResponse is the HTTP response for booking operations.
type BookingResponse struct {
	ID              string       `json:"id"`
	DestinationName string       `json:"destination_name"`
	UserEmail       string       `json:"user_email"`
	Origin          PointRequest `json:"origin"`
	Destination     PointRequest `json:"destination"`
	DistanceKm      float64      `json:"distance_km"`
	TripType        string       `json:"trip_type"`
	FareAmount      int          `json:"fare_amount"`
	CreatedAt       time.Time    `json:"created_at"`
	Next            string       `json:"next,omitempty"`
}

func (r TripRequest) toQuoteRequest() service.QuoteRequest {
	q := service.QuoteRequest{DestinationName: r.DestinationName, TripType: r.TripType}
	if r.Origin != nil {
		q.Origin = &domain.Coordinate{Lat: r.Origin.Lat, Lng: r.Origin.Lng}
	}
	if r.Destination != nil {
		q.Destination = &domain.Coordinate{Lat: r.Destination.Lat, Lng: r.Destination.Lng}
	}
	return q
}

func point(c domain.Coordinate) PointRequest {
	return PointRequest{Lat: c.Lat, Lng: c.Lng}
}

func toBookingResponse(b *domain.Booking, next navigation.Route) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		DestinationName: b.DestinationName,
		UserEmail:       b.UserEmail,
		Origin:          point(b.Origin),
		Destination:     point(b.Destination),
		DistanceKm:      b.DistanceKm,
		TripType:        string(b.TripType),
		FareAmount:      b.FareAmount,
		CreatedAt:       b.CreatedAt,
		Next:            nextPath(next),
	}
}

// Quote handles POST /v1/fares/quote
func (h *BookingHandler) Quote(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.quoteService.Quote(c.Request.Context(), session, req.toQuoteRequest())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		Origin:          point(res.Origin),
		Destination:     point(res.Destination),
		DestinationName: res.DestinationName,
		TripType:        string(res.TripType),
		DistanceKm:      res.Quote.DistanceKm,
		Amount:          res.Quote.Amount,
		Total:           res.Total,
	})
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.bookingService.Create(c.Request.Context(), session, req.toQuoteRequest())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(res.Booking, res.Next))
}

// GetAll handles GET /v1/bookings
func (h *BookingHandler) GetAll(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.List(c.Request.Context(), session, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b, nil))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	b, err := h.bookingService.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(b, navigation.BookingConfirmation{Destination: b.DestinationName}))
}

// queryLimit reads ?limit=, returning 0 (service default) when absent or malformed.
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
