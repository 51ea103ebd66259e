// Ipoteka Bot - mortgage calculator conversation service
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/ipoteka-bot/internal/api"
	"github.com/ashureev/ipoteka-bot/internal/config"
	"github.com/ashureev/ipoteka-bot/internal/devchat"
	"github.com/ashureev/ipoteka-bot/internal/dialog"
	"github.com/ashureev/ipoteka-bot/internal/mortgage"
	"github.com/ashureev/ipoteka-bot/internal/store"
	"github.com/ashureev/ipoteka-bot/internal/telegram"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting bot", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	history, err := store.NewSQLiteHistory(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := history.Close(); closeErr != nil {
			slog.Error("Failed to close history store", "error", closeErr)
		}
	}()

	if err := history.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Result cache (optional). Redis when configured and reachable,
	// otherwise an in-process map.
	var cache store.Cache = store.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redisCache, err := store.NewRedisCache(context.Background(), cfg.RedisAddr)
		if err != nil {
			slog.Warn("Redis unreachable, falling back to in-process cache", "error", err, "addr", cfg.RedisAddr)
		} else {
			defer func() {
				if closeErr := redisCache.Close(); closeErr != nil {
					slog.Error("Failed to close redis client", "error", closeErr)
				}
			}()
			cache = redisCache
			slog.Info("Redis cache connected", "addr", cfg.RedisAddr)
		}
	}

	transcript, err := dialog.NewTranscript(dialog.TranscriptConfig{
		Enabled:   cfg.Transcript.Enabled,
		Dir:       cfg.Transcript.Dir,
		QueueSize: cfg.Transcript.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize transcript", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := transcript.Close(); closeErr != nil {
			slog.Error("Failed to close transcript", "error", closeErr)
		}
	}()

	// Initialize services.
	sessions := store.NewSessionStore()
	calc := mortgage.NewCalculator(cache, history)
	engine := dialog.NewEngine(sessions, calc, dialog.Limits{
		MinTermYears: cfg.Loan.MinTermYears,
		MaxTermYears: cfg.Loan.MaxTermYears,
		MinRate:      cfg.Loan.MinRate,
		MaxRate:      cfg.Loan.MaxRate,
	}, transcript)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telegram channel (optional in development, required otherwise).
	var channel *telegram.Channel
	botName := ""
	if cfg.TelegramToken != "" {
		channel, err = telegram.NewChannel(ctx, cfg.TelegramToken, engine)
		if err != nil {
			slog.Error("Failed to connect to Telegram", "error", err)
			os.Exit(1)
		}
		botName = channel.Username()
		slog.Info("Telegram authorized", "bot", botName)
	} else if cfg.IsDevelopment() {
		slog.Warn("TELEGRAM_BOT_TOKEN not set, serving /dev/chat only")
	} else {
		slog.Error("TELEGRAM_BOT_TOKEN is required outside development")
		os.Exit(1)
	}

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	apiHandler := api.NewHandler(sessions, history, botName)
	apiHandler.RegisterRoutes(r)

	if channel != nil {
		if cfg.WebhookURL != "" {
			r.Post(channel.WebhookPath(), api.NewWebhookHandler(channel).ServeHTTP)
		}
		go func() {
			if err := channel.Start(ctx, cfg.WebhookURL); err != nil {
				slog.Error("Telegram channel failed", "error", err)
				stop()
			}
		}()
	}

	if cfg.IsDevelopment() {
		devHandler := devchat.NewHandler(engine)
		r.Get("/dev/chat", devHandler.ServeHTTP)
		slog.Info("Dev chat enabled", "path", "/dev/chat")
	}

	// Start TTL worker.
	store.StartTTLWorker(ctx, sessions, cfg.SessionTTL)
	slog.Info("TTL worker started", "session_ttl", cfg.SessionTTL)

	// Create server.
	// Note: the dev chat WebSocket holds connections open (no WriteTimeout).
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
