package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashureev/ipoteka-bot/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteHistory implements HistoryRepository using SQLite.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory creates a SQLite-backed calculation history at dbPath.
func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	h := &SQLiteHistory{db: db}
	if err := h.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return h, nil
}

func (h *SQLiteHistory) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS calculations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		loan_amount REAL NOT NULL,
		down_payment REAL NOT NULL,
		term_years INTEGER NOT NULL,
		rate_percent REAL NOT NULL,
		principal REAL NOT NULL,
		monthly_payment REAL NOT NULL,
		total_payment REAL NOT NULL,
		total_interest REAL NOT NULL,
		months INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_calculations_created ON calculations(created_at);
	`
	if _, err := h.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save records one completed calculation.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY errors.
func (h *SQLiteHistory) Save(ctx context.Context, rec domain.CalculationRecord) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := h.saveOnce(ctx, rec)
		if err == nil {
			return nil
		}

		if isSQLiteConflict(err) {
			if i < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
				slog.Debug("Save failed with SQLITE_BUSY, retrying",
					"chat_id", rec.ChatID,
					"attempt", i+1,
					"delay", delay)
				time.Sleep(delay)
				continue
			}
		}

		// Non-retryable error or max retries exceeded
		return fmt.Errorf("save calculation for chat %d after %d attempts: %w", rec.ChatID, i+1, err)
	}

	return nil
}

func (h *SQLiteHistory) saveOnce(ctx context.Context, rec domain.CalculationRecord) error {
	query := `
	INSERT INTO calculations (
		chat_id, loan_amount, down_payment, term_years, rate_percent,
		principal, monthly_payment, total_payment, total_interest, months, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := h.db.ExecContext(ctx, query,
		rec.ChatID,
		rec.Input.LoanAmount, rec.Input.DownPayment, rec.Input.TermYears, rec.Input.AnnualRatePercent,
		rec.Result.Principal, rec.Result.MonthlyPayment, rec.Result.TotalPayment, rec.Result.TotalInterest,
		rec.Result.Months, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// Count returns the total number of recorded calculations.
func (h *SQLiteHistory) Count(ctx context.Context) (int64, error) {
	var n int64
	row := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calculations`)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count calculations: %w", err)
	}
	return n, nil
}

// CountSince returns the number of calculations recorded at or after t.
func (h *SQLiteHistory) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	row := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calculations WHERE created_at >= ?`, t.Unix())
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count calculations since: %w", err)
	}
	return n, nil
}

// Ping verifies database connectivity.
func (h *SQLiteHistory) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

// Close closes the database connection.
func (h *SQLiteHistory) Close() error {
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// isSQLiteConflict reports whether err is a SQLITE_BUSY or
// "database is locked" error, both of which warrant a retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY") ||
		strings.Contains(err.Error(), "database is locked")
}
