// Package devchat exposes the dialog engine over a WebSocket so
// conversations can be exercised locally without a Telegram bot.
package devchat

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/coder/websocket"

	"github.com/ashureev/ipoteka-bot/internal/dialog"
)

// chatIDBase puts dev conversations far below any real Telegram chat
// ID, so they can never collide with live sessions in the shared store.
const chatIDBase = int64(-1) << 55

// Handler upgrades requests to WebSocket conversations. Each connection
// is one conversation under its own synthetic chat ID; one message in,
// one reply out.
type Handler struct {
	engine *dialog.Engine
	nextID atomic.Int64
}

// NewHandler creates a dev chat handler on the given engine.
func NewHandler(engine *dialog.Engine) *Handler {
	return &Handler{engine: engine}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "conversation ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	chatID := chatIDBase + h.nextID.Add(1)
	slog.Info("Dev chat connected", "chat_id", chatID, "ip", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The conversation must not outlive the socket. The request context
	// is already gone when this runs.
	defer h.engine.HandleTurn(context.Background(), dialog.Turn{
		ChatID:  chatID,
		Text:    "/cancel",
		Command: dialog.CommandCancel,
	})

	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("Dev chat closed by client", "chat_id", chatID)
			} else {
				slog.Warn("Dev chat read error", "error", err, "chat_id", chatID)
			}
			return
		}

		reply := h.engine.HandleTurn(ctx, turnFromText(chatID, string(message)))

		if err := ws.Write(ctx, websocket.MessageText, []byte(reply)); err != nil {
			slog.Warn("Dev chat write error", "error", err, "chat_id", chatID)
			return
		}
	}
}

// turnFromText mirrors the command classification Telegram does with
// message entities, using a plain prefix check.
func turnFromText(chatID int64, text string) dialog.Turn {
	turn := dialog.Turn{ChatID: chatID, Text: text}
	if !strings.HasPrefix(text, "/") {
		return turn
	}

	cmd, _, _ := strings.Cut(text[1:], " ")
	switch cmd {
	case "start":
		turn.Command = dialog.CommandStart
	case "cancel":
		turn.Command = dialog.CommandCancel
	case "help":
		turn.Command = dialog.CommandHelp
	default:
		turn.Command = dialog.CommandUnknown
	}
	return turn
}
