package handler

import (
	"net/http"

	"github.com/Thobbytosin/flowva-server/internal/container"
	"github.com/Thobbytosin/flowva-server/internal/domain"
	"github.com/Thobbytosin/flowva-server/internal/middleware"
	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
)

// UserHandler handles user account requests behind a session
type UserHandler struct {
	container *container.Container
}

// NewUserHandler creates a new user handler
func NewUserHandler(container *container.Container) *UserHandler {
	return &UserHandler{container: container}
}

// ForgotPassword handles POST /api/v1/user/forgot-password
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	var req domain.ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, log, err)
		return
	}

	if err := h.container.GetAuthService().ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Password reset instructions has been sent to your email.",
	})
}

// Me handles GET /api/v1/user/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	sessionUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, log, apperrors.NewAuthenticationError("You are not logged in"))
		return
	}

	user, err := h.container.GetAuthService().GetUser(r.Context(), sessionUser.ID)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.Response{Success: true, User: user})
}

// UpdatePreferences handles PUT /api/v1/user/update-user-preference. The
// submitted fields replace the stored preferences object entirely.
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	sessionUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, log, apperrors.NewAuthenticationError("You are not logged in"))
		return
	}

	var req domain.UpdatePreferencesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, log, err)
		return
	}

	if err := h.container.GetAuthService().UpdatePreferences(r.Context(), sessionUser.ID, &req); err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Your preferences has been updated",
	})
}
