package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zuru/internal/navigation"
	"zuru/internal/service"
)

// TripHandler handles HTTP requests for upcoming trips.
type TripHandler struct {
	tripService *service.TripService
	now         func() time.Time
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService, now: time.Now}
}

// ReminderResponse is the HTTP response for the trip reminder.
type ReminderResponse struct {
	Trip          PaymentResponse `json:"trip"`
	StartsAt      time.Time       `json:"starts_at"`
	StartsInHours float64         `json:"starts_in_hours"`
	Title         string          `json:"title"`
	Message       string          `json:"message"`
	Next          string          `json:"next"`
}

// Upcoming handles GET /v1/trips/upcoming
func (h *TripHandler) Upcoming(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	trips, err := h.tripService.Upcoming(c.Request.Context(), session, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentResponse, 0, len(trips))
	for _, p := range trips {
		response = append(response, toPaymentResponse(p, ""))
	}

	respondJSON(c, http.StatusOK, response)
}

// Reminder handles GET /v1/trips/reminder
func (h *TripHandler) Reminder(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	reminder, err := h.tripService.NextReminder(c.Request.Context(), session, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	message := fmt.Sprintf("Your trip to %s on %s is within the next 24 hours!",
		reminder.Payment.Destination, reminder.Payment.TravelDate.Format(service.DateLayout))

	respondJSON(c, http.StatusOK, ReminderResponse{
		Trip:          toPaymentResponse(reminder.Payment, ""),
		StartsAt:      reminder.StartsAt,
		StartsInHours: reminder.StartsIn.Hours(),
		Title:         "Upcoming Trip Reminder!",
		Message:       message,
		Next:          navigation.UpcomingTrips{}.Path(),
	})
}
