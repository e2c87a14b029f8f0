package execute

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/services/bridgesvc"
	"gitlab.com/interp-bridge.net/internal/domain"
	"gitlab.com/interp-bridge.net/internal/handlers/response"
	"gitlab.com/interp-bridge.net/internal/static/errs"
)

const defaultWaitTimeout = 60 * time.Second

// ExecuteHandler handles code execution API requests
type ExecuteHandler struct {
	service bridgesvc.IBridgeService
	logger  primary.Logger
}

// NewHandler creates a new execute handler
func NewHandler(service bridgesvc.IBridgeService, logger primary.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the API routes for ExecuteHandler
func (h *ExecuteHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/execute", h.Execute).Methods("POST")
}

// Execute submits code and waits for its result
func (h *ExecuteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	if req.Source == "" {
		response.WriteError(w, response.ErrorMessage{Message: "source is required", StatusCode: http.StatusBadRequest})
		return
	}

	fut, err := h.service.SubmitCode(r.Context(), domain.Code{Source: req.Source, Seq: req.Seq}, nil)
	if err != nil {
		if errors.Is(err, errs.NotRunning) {
			response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusServiceUnavailable})
			return
		}
		h.logger.Error("Failed to submit code", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to submit code", StatusCode: http.StatusInternalServerError})
		return
	}

	timeout := defaultWaitTimeout
	if req.TimeoutSec > 0 {
		timeout = time.Duration(req.TimeoutSec) * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	result, err := fut.Wait(ctx)
	if err != nil {
		// The submission keeps its queue position; only this wait gave up
		response.WriteError(w, response.ErrorMessage{Message: "Timed out waiting for result", StatusCode: http.StatusGatewayTimeout})
		return
	}

	resp := ExecuteResponse{
		SubmissionID: result.SubmissionID.String(),
		Status:       string(result.Status),
		Output:       result.Output,
		ErrorKind:    string(result.Kind),
		Error:        result.Message,
	}
	response.WriteSuccess(w, resp)
}
