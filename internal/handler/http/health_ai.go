package http

import (
	"context"
	"net/http"
	"time"

	"recipebox/internal/handler/http/respond"
	"recipebox/internal/usecase/ai"
)

// aiHealthTimeout bounds the probe against the embedding backend so a
// hung provider cannot stall the health endpoint.
const aiHealthTimeout = 5 * time.Second

// AIHealthHandler reports the embedding backend behind similarity
// search. Health and Ready answer different questions: Health is "is
// the backend answering", Ready is "would a request be attempted". A
// backend can be unhealthy yet ready while its circuit is still closed.
type AIHealthHandler struct {
	provider ai.HealthChecker
}

func NewAIHealthHandler(provider ai.HealthChecker) *AIHealthHandler {
	return &AIHealthHandler{provider: provider}
}

// AIHealthResponse is the body for both /health/ai and /ready/ai.
type AIHealthResponse struct {
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	Latency     string `json:"latency,omitempty"`
	CircuitOpen bool   `json:"circuit_open,omitempty"`
	Ready       *bool  `json:"ready,omitempty"`
}

// Health probes the backend. 200 when the probe succeeds, 503 otherwise.
func (h *AIHealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), aiHealthTimeout)
	defer cancel()

	status, err := h.provider.Health(ctx)
	switch {
	case err != nil:
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{
			Status:  "unhealthy",
			Message: err.Error(),
		})
	case status == nil:
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{
			Status: "unhealthy",
		})
	case !status.Healthy:
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{
			Status:      "unhealthy",
			Message:     status.Message,
			CircuitOpen: status.CircuitOpen,
		})
	default:
		respond.JSON(w, http.StatusOK, AIHealthResponse{
			Status:  "healthy",
			Latency: status.Latency.String(),
		})
	}
}

// Ready reports whether embedding requests would currently be attempted.
// Only an open circuit makes the backend not ready.
func (h *AIHealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), aiHealthTimeout)
	defer cancel()

	status, err := h.provider.Health(ctx)
	notReady, ready := new(bool), new(bool)
	*ready = true

	switch {
	case status == nil:
		msg := "health check failed"
		if err != nil {
			msg = err.Error()
		}
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{
			Ready:   notReady,
			Message: msg,
		})
	case status.CircuitOpen:
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{
			Ready:   notReady,
			Message: "circuit breaker open",
		})
	default:
		respond.JSON(w, http.StatusOK, AIHealthResponse{Ready: ready})
	}
}
