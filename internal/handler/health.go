package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/storefront/internal/model"
	"github.com/vyrodovalexey/storefront/internal/store"
)

// readyTimeout bounds each dependency ping.
const readyTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checks  map[string]store.Pinger
	respond *responder
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. Each named check must pass for /ready to succeed.
func NewHealthHandler(checks map[string]store.Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		respond: newResponder(ResponseStatus, logger),
		logger:  logger,
	}
}

// RegisterRoutes registers the probe routes with the router.
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
}

// HealthCheck handles GET /health requests.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.respond.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ReadyCheck handles GET /ready requests.
func (h *HealthHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	response := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	for name, pinger := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		err := pinger.Ping(ctx)
		cancel()

		if err != nil {
			h.logger.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			response.Checks[name] = "unavailable"
			response.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}

	h.respond.writeJSON(w, status, model.APIResponse[ReadyResponse]{
		Success: status == http.StatusOK,
		Data:    response,
	})
}
