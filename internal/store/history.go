package store

import (
	"context"
	"sync"
	"time"

	"github.com/ashureev/ipoteka-bot/internal/domain"
)

// HistoryRepository persists completed calculations. Conversation
// answers never reach it; only the final inputs and results of a
// finished calculation are recorded.
type HistoryRepository interface {
	// Save records one completed calculation.
	Save(ctx context.Context, rec domain.CalculationRecord) error

	// Count returns the total number of recorded calculations.
	Count(ctx context.Context) (int64, error)

	// CountSince returns the number of calculations recorded at or after t.
	CountSince(ctx context.Context, t time.Time) (int64, error)

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing storage.
	Close() error
}

// MemoryHistory is an in-memory HistoryRepository. It backs tests and
// deployments that run without a database file.
type MemoryHistory struct {
	mu      sync.Mutex
	records []domain.CalculationRecord
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Save records one completed calculation.
func (m *MemoryHistory) Save(_ context.Context, rec domain.CalculationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Count returns the total number of recorded calculations.
func (m *MemoryHistory) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

// CountSince returns the number of calculations recorded at or after t.
func (m *MemoryHistory) CountSince(_ context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, rec := range m.records {
		if !rec.CreatedAt.Before(t) {
			n++
		}
	}
	return n, nil
}

// Ping always succeeds for the in-memory history.
func (m *MemoryHistory) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory history.
func (m *MemoryHistory) Close() error { return nil }
