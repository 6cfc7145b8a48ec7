package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"zuru/internal/domain"
	"zuru/internal/geo"
	"zuru/internal/repository"
	"zuru/internal/service"
)

// LocationStore records the device location of users.
type LocationStore interface {
	UpdateLocation(ctx context.Context, userID string, coord domain.Coordinate) error
	LastKnown(ctx context.Context, userID string) (domain.Coordinate, bool, error)
}

// LocationHandler handles device location and geocoding requests.
type LocationHandler struct {
	locations LocationStore
	geocoder  geo.Geocoder
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(locations LocationStore, geocoder geo.Geocoder) *LocationHandler {
	return &LocationHandler{locations: locations, geocoder: geocoder}
}

// LocationRequest is the HTTP request body for location updates.
type LocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// LocationResponse is the HTTP response for location reads.
type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceResponse is a geocoded place.
type PlaceResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// UpdateLocation handles PUT /v1/me/location
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if req.Lat == nil || req.Lng == nil {
		badRequest(c, "lat and lng are required")
		return
	}

	coord := domain.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	if !coord.Valid() {
		respondError(c, &service.ValidationError{Field: "location", Message: "coordinates out of range"})
		return
	}

	if err := h.locations.UpdateLocation(c.Request.Context(), session.UserID, coord); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, LocationResponse{Lat: coord.Lat, Lng: coord.Lng})
}

// GetLocation handles GET /v1/me/location
func (h *LocationHandler) GetLocation(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	coord, found, err := h.locations.LastKnown(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, repository.ErrNotFound)
		return
	}

	respondJSON(c, http.StatusOK, LocationResponse{Lat: coord.Lat, Lng: coord.Lng})
}

// Reverse handles GET /v1/geocode/reverse?lat=&lng=
func (h *LocationHandler) Reverse(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		badRequest(c, "lat and lng query parameters are required")
		return
	}

	coord := domain.Coordinate{Lat: lat, Lng: lng}
	if !coord.Valid() {
		respondError(c, &service.ValidationError{Field: "location", Message: "coordinates out of range"})
		return
	}

	name, err := h.geocoder.Reverse(c.Request.Context(), coord)
	if err != nil {
		respondError(c, geocodeError("reverse geocode", err))
		return
	}

	respondJSON(c, http.StatusOK, PlaceResponse{Name: name, Lat: lat, Lng: lng})
}

// Forward handles GET /v1/geocode/forward?q=
func (h *LocationHandler) Forward(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		badRequest(c, "q query parameter is required")
		return
	}

	coord, err := h.geocoder.Forward(c.Request.Context(), q)
	if err != nil {
		respondError(c, geocodeError("geocode "+q, err))
		return
	}

	respondJSON(c, http.StatusOK, PlaceResponse{Name: q, Lat: coord.Lat, Lng: coord.Lng})
}

func geocodeError(op string, err error) error {
	if errors.Is(err, geo.ErrNoResult) {
		return repository.ErrNotFound
	}
	return &service.RemoteCallError{Op: op, Err: err}
}
