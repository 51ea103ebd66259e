package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxUpdateBody caps webhook reads. Telegram updates are a few KB;
// anything bigger is not a real delivery.
const maxUpdateBody = 1 << 20

// UpdateSink receives decoded Telegram updates for processing.
type UpdateSink interface {
	Enqueue(update tgbotapi.Update)
}

// WebhookHandler turns Telegram webhook deliveries into updates on the
// sink. Telegram retries deliveries that do not get a 2xx answer, so
// the handler acknowledges as soon as the update is queued.
type WebhookHandler struct {
	sink UpdateSink
}

// NewWebhookHandler creates a webhook handler feeding the given sink.
func NewWebhookHandler(sink UpdateSink) *WebhookHandler {
	return &WebhookHandler{sink: sink}
}

// ServeHTTP implements http.Handler.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateBody)).Decode(&update); err != nil {
		slog.Warn("Malformed webhook delivery", "error", err, "ip", r.RemoteAddr)
		Error(w, http.StatusBadRequest, "malformed update")
		return
	}

	h.sink.Enqueue(update)
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
