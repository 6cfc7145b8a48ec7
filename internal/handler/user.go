package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zuru/internal/navigation"
	"zuru/internal/service"
)

// UserHandler handles HTTP requests for the signed-in user's account.
type UserHandler struct {
	authService *service.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// UpdateProfileRequest is the HTTP request body for profile edits.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

// UpdateEmailRequest is the HTTP request body for email changes.
type UpdateEmailRequest struct {
	Email string `json:"email"`
}

// UpdatePasswordRequest is the HTTP request body for password changes.
type UpdatePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Me handles GET /v1/me
func (h *UserHandler) Me(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PATCH /v1/me/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.authService.UpdateProfile(c.Request.Context(), session, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(res, navigation.Profile{}))
}

// UpdateEmail handles PUT /v1/me/email
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.authService.UpdateEmail(c.Request.Context(), session, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(res, navigation.Profile{}))
}

// UpdatePassword handles PUT /v1/me/password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := h.authService.UpdatePassword(c.Request.Context(), session, req.Password, req.ConfirmPassword); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "password updated", "next": navigation.Settings{}.Path()})
}

// Delete handles DELETE /v1/me
func (h *UserHandler) Delete(c *gin.Context) {
	session, ok := sessionOf(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), session); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "account deleted", "next": navigation.Auth{}.Path()})
}
