package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"zuru/internal/domain"
	"zuru/internal/middleware"
	"zuru/internal/navigation"
	"zuru/internal/repository"
	"zuru/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error(), Field: service.FieldOf(err)})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// badRequest reports an unreadable request body.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var validation *service.ValidationError
	var remote *service.RemoteCallError

	switch {
	// Validation errors - Bad Request
	case errors.As(err, &validation):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Authentication errors
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrRecentLoginRequired):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrPaymentInProgress):
		return http.StatusConflict

	// Collaborator failures
	case errors.As(err, &remote):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// sessionOf returns the caller's session, answering 401 when there is none.
func sessionOf(c *gin.Context) (*domain.Session, bool) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return nil, false
	}
	return session, true
}

// nextPath renders a route for the "next" field of responses.
func nextPath(r navigation.Route) string {
	if r == nil {
		return ""
	}
	return r.Path()
}
