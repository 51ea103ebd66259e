// Package api provides the HTTP surface of the bot: health, stats and
// the Telegram webhook ingress.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/ipoteka-bot/internal/store"
)

const healthCheckTimeout = 5 * time.Second

// Handler serves the operational endpoints.
type Handler struct {
	sessions *store.SessionStore
	history  store.HistoryRepository
	botName  string
}

// NewHandler creates a new Handler with common dependencies. botName is
// informational and may be empty when the bot runs without a Telegram
// token.
func NewHandler(sessions *store.SessionStore, history store.HistoryRepository, botName string) *Handler {
	return &Handler{sessions: sessions, history: history, botName: botName}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Health returns the health status of the bot and its dependencies.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := map[string]interface{}{
		"status": "healthy",
		"checks": map[string]string{"api": "ok"},
	}
	statusCode := http.StatusOK

	if err := h.history.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		status["checks"].(map[string]string)["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		status["checks"].(map[string]string)["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// Stats reports live conversation and calculation counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	total, err := h.history.Count(ctx)
	if err != nil {
		slog.Error("Failed to count calculations", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	last24h, err := h.history.CountSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		slog.Error("Failed to count recent calculations", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"bot":                h.botName,
		"active_sessions":    h.sessions.Len(),
		"calculations_total": total,
		"calculations_24h":   last24h,
	})
}

// RegisterRoutes registers the operational endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
}
