// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Env           string
	Port          string
	TelegramToken string
	WebhookURL    string // public base URL for webhook mode; "" = long polling
	DBPath        string
	RedisAddr     string // "" = in-process cache
	SessionTTL    time.Duration
	Loan          LoanLimitsConfig
	Transcript    TranscriptConfig
}

// LoanLimitsConfig bounds the answers the conversation accepts.
type LoanLimitsConfig struct {
	MinTermYears int
	MaxTermYears int
	MinRate      float64
	MaxRate      float64
}

// TranscriptConfig controls NDJSON conversation transcripts.
type TranscriptConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("TRANSCRIPT_QUEUE_SIZE", 256)
	if queueSize <= 0 {
		queueSize = 256
	}

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		DBPath:        getEnv("DB_PATH", "./data/ipoteka.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		Loan: LoanLimitsConfig{
			MinTermYears: getEnvInt("MIN_LOAN_TERM_YEARS", 1),
			MaxTermYears: getEnvInt("MAX_LOAN_TERM_YEARS", 30),
			MinRate:      getEnvFloat("MIN_INTEREST_RATE", 0.1),
			MaxRate:      getEnvFloat("MAX_INTEREST_RATE", 30.0),
		},
		Transcript: TranscriptConfig{
			Enabled:   getEnvBool("TRANSCRIPT_ENABLED", false),
			Dir:       getEnv("TRANSCRIPT_DIR", "./data/transcripts"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Loan.MinTermYears < 1 {
		return fmt.Errorf("MIN_LOAN_TERM_YEARS must be >= 1")
	}
	if c.Loan.MaxTermYears < c.Loan.MinTermYears {
		return fmt.Errorf("MAX_LOAN_TERM_YEARS must be >= MIN_LOAN_TERM_YEARS")
	}
	if c.Loan.MinRate < 0 {
		return fmt.Errorf("MIN_INTEREST_RATE must be >= 0")
	}
	if c.Loan.MaxRate < c.Loan.MinRate {
		return fmt.Errorf("MAX_INTEREST_RATE must be >= MIN_INTEREST_RATE")
	}
	if c.Transcript.Enabled && c.Transcript.Dir == "" {
		return fmt.Errorf("TRANSCRIPT_DIR cannot be empty when TRANSCRIPT_ENABLED is set")
	}
	if c.Transcript.QueueSize <= 0 {
		return fmt.Errorf("TRANSCRIPT_QUEUE_SIZE must be > 0")
	}
	if c.WebhookURL != "" && c.TelegramToken == "" {
		return fmt.Errorf("WEBHOOK_URL requires TELEGRAM_BOT_TOKEN")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
