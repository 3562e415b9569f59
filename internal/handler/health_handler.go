package handler

import (
	"net/http"

	"github.com/Thobbytosin/flowva-server/internal/container"
)

// HealthHandler answers the liveness probe
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{container: container}
}

// Check handles GET /test
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API IS WORKING"})
}
