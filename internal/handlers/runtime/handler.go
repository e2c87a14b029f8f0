package runtime

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/services/bridgesvc"
	"gitlab.com/interp-bridge.net/internal/handlers/response"
)

// RuntimeHandler exposes interpreter health and status
type RuntimeHandler struct {
	service bridgesvc.IBridgeService
	logger  primary.Logger
}

// NewHandler creates a new runtime handler
func NewHandler(service bridgesvc.IBridgeService, logger primary.Logger) *RuntimeHandler {
	return &RuntimeHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the API routes for RuntimeHandler
func (h *RuntimeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/runtime/status", h.GetStatus).Methods("GET")
	router.HandleFunc("/healthz", h.Healthz).Methods("GET")
}

// GetStatus returns the supervisor's current status record
func (h *RuntimeHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response.WriteSuccess(w, h.service.RuntimeStatus())
}

// Healthz reads only the atomic running flag, never the bridge lock
func (h *RuntimeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	running := h.service.IsRunning()
	status := http.StatusOK
	if !running {
		status = http.StatusServiceUnavailable
	}
	response.WriteStatus(w, status, map[string]bool{"running": running})
}
