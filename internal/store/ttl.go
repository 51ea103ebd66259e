package store

import (
	"context"
	"log/slog"
	"time"
)

const ttlWorkerInterval = 5 * time.Minute

// StartTTLWorker runs a background goroutine that periodically sweeps
// sessions idle for longer than ttl. Abandoned conversations hold user
// figures in memory; the sweep is what makes "data is stored only
// during this session" true for users who simply walk away.
func StartTTLWorker(ctx context.Context, sessions *SessionStore, ttl time.Duration) {
	ticker := time.NewTicker(ttlWorkerInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session TTL worker started", "interval", ttlWorkerInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepIdleSessions(sessions, ttl)
			case <-ctx.Done():
				slog.Info("Session TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepIdleSessions(sessions *SessionStore, ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	expired := sessions.DeleteIdle(cutoff)
	if len(expired) == 0 {
		return
	}

	slog.Info("Session TTL worker removed idle sessions",
		"count", len(expired),
		"remaining", sessions.Len())
	for _, chatID := range expired {
		slog.Debug("Idle session removed", "chat_id", chatID)
	}
}
