package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// unsetEnv removes keys for the duration of the test. t.Setenv is called
// first so the original values come back afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

var allEnvKeys = []string{
	"APP_ENV", "PORT", "TELEGRAM_BOT_TOKEN", "WEBHOOK_URL", "DB_PATH",
	"REDIS_ADDR", "SESSION_TTL", "MIN_LOAN_TERM_YEARS", "MAX_LOAN_TERM_YEARS",
	"MIN_INTEREST_RATE", "MAX_INTEREST_RATE", "TRANSCRIPT_ENABLED",
	"TRANSCRIPT_DIR", "TRANSCRIPT_QUEUE_SIZE",
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, allEnvKeys...)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TelegramToken != "" {
		t.Errorf("TelegramToken = %q, want empty", cfg.TelegramToken)
	}
	if cfg.WebhookURL != "" {
		t.Errorf("WebhookURL = %q, want empty", cfg.WebhookURL)
	}
	if cfg.DBPath != "./data/ipoteka.db" {
		t.Errorf("DBPath = %q, want ./data/ipoteka.db", cfg.DBPath)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.Loan.MinTermYears != 1 || cfg.Loan.MaxTermYears != 30 {
		t.Errorf("term years = %d..%d, want 1..30", cfg.Loan.MinTermYears, cfg.Loan.MaxTermYears)
	}
	if cfg.Loan.MinRate != 0.1 || cfg.Loan.MaxRate != 30.0 {
		t.Errorf("rate = %v..%v, want 0.1..30", cfg.Loan.MinRate, cfg.Loan.MaxRate)
	}
	if cfg.Transcript.Enabled {
		t.Error("Transcript.Enabled = true, want false")
	}
	if cfg.Transcript.QueueSize != 256 {
		t.Errorf("Transcript.QueueSize = %d, want 256", cfg.Transcript.QueueSize)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	unsetEnv(t, allEnvKeys...)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	t.Setenv("DB_PATH", "/var/lib/bot/history.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("MIN_LOAN_TERM_YEARS", "2")
	t.Setenv("MAX_LOAN_TERM_YEARS", "25")
	t.Setenv("MIN_INTEREST_RATE", "0.5")
	t.Setenv("MAX_INTEREST_RATE", "20")
	t.Setenv("TRANSCRIPT_ENABLED", "true")
	t.Setenv("TRANSCRIPT_DIR", "/var/lib/bot/transcripts")
	t.Setenv("TRANSCRIPT_QUEUE_SIZE", "512")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "production" || cfg.IsDevelopment() {
		t.Errorf("Env = %q with IsDevelopment() = %v, want production/false", cfg.Env, cfg.IsDevelopment())
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.TelegramToken != "123:abc" {
		t.Errorf("TelegramToken = %q, want 123:abc", cfg.TelegramToken)
	}
	if cfg.WebhookURL != "https://bot.example.com" {
		t.Errorf("WebhookURL = %q", cfg.WebhookURL)
	}
	if cfg.DBPath != "/var/lib/bot/history.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 90*time.Minute {
		t.Errorf("SessionTTL = %v, want 90m", cfg.SessionTTL)
	}
	if cfg.Loan.MinTermYears != 2 || cfg.Loan.MaxTermYears != 25 {
		t.Errorf("term years = %d..%d, want 2..25", cfg.Loan.MinTermYears, cfg.Loan.MaxTermYears)
	}
	if cfg.Loan.MinRate != 0.5 || cfg.Loan.MaxRate != 20 {
		t.Errorf("rate = %v..%v, want 0.5..20", cfg.Loan.MinRate, cfg.Loan.MaxRate)
	}
	if !cfg.Transcript.Enabled || cfg.Transcript.Dir != "/var/lib/bot/transcripts" || cfg.Transcript.QueueSize != 512 {
		t.Errorf("Transcript = %+v", cfg.Transcript)
	}
}

func TestLoadClampsQueueSize(t *testing.T) {
	unsetEnv(t, allEnvKeys...)
	t.Setenv("TRANSCRIPT_QUEUE_SIZE", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Transcript.QueueSize != 256 {
		t.Errorf("Transcript.QueueSize = %d, want default 256", cfg.Transcript.QueueSize)
	}
}

func TestLoadRejectsWebhookWithoutToken(t *testing.T) {
	unsetEnv(t, allEnvKeys...)
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want invalid configuration")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:        "production",
			Port:       "8080",
			DBPath:     "./data/test.db",
			SessionTTL: 24 * time.Hour,
			Loan:       LoanLimitsConfig{MinTermYears: 1, MaxTermYears: 30, MinRate: 0.1, MaxRate: 30},
			Transcript: TranscriptConfig{QueueSize: 256},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() on valid config: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty port", func(c *Config) { c.Port = "" }, "PORT"},
		{"empty db path", func(c *Config) { c.DBPath = "" }, "DB_PATH"},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, "SESSION_TTL"},
		{"zero min term", func(c *Config) { c.Loan.MinTermYears = 0 }, "MIN_LOAN_TERM_YEARS"},
		{"inverted term range", func(c *Config) { c.Loan.MaxTermYears = 0 }, "MAX_LOAN_TERM_YEARS"},
		{"negative min rate", func(c *Config) { c.Loan.MinRate = -1 }, "MIN_INTEREST_RATE"},
		{"inverted rate range", func(c *Config) { c.Loan.MaxRate = 0.05 }, "MAX_INTEREST_RATE"},
		{"transcript without dir", func(c *Config) { c.Transcript.Enabled = true }, "TRANSCRIPT_DIR"},
		{"zero queue size", func(c *Config) { c.Transcript.QueueSize = 0 }, "TRANSCRIPT_QUEUE_SIZE"},
		{"webhook without token", func(c *Config) { c.WebhookURL = "https://x" }, "TELEGRAM_BOT_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"garbage", true}, // falls back
		{" true ", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VALUE", tt.value)
			if got := getEnvBool("TEST_BOOL_VALUE", true); got != tt.want {
				t.Errorf("getEnvBool(%q, true) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_VALUE", "45m")
	if got := getEnvDuration("TEST_DURATION_VALUE", time.Hour); got != 45*time.Minute {
		t.Errorf("getEnvDuration = %v, want 45m", got)
	}

	t.Setenv("TEST_DURATION_VALUE", "not-a-duration")
	if got := getEnvDuration("TEST_DURATION_VALUE", time.Hour); got != time.Hour {
		t.Errorf("getEnvDuration with bad value = %v, want fallback 1h", got)
	}
}
