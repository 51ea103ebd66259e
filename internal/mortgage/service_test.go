package mortgage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ashureev/ipoteka-bot/internal/domain"
	"github.com/ashureev/ipoteka-bot/internal/store"
)

// failingHistory rejects every save so tests can prove a broken
// history never keeps the user from getting a result.
type failingHistory struct{}

func (failingHistory) Save(context.Context, domain.CalculationRecord) error {
	return errors.New("disk full")
}
func (failingHistory) Count(context.Context) (int64, error)                 { return 0, nil }
func (failingHistory) CountSince(context.Context, time.Time) (int64, error) { return 0, nil }
func (failingHistory) Ping(context.Context) error                           { return nil }
func (failingHistory) Close() error                                         { return nil }

func TestCalculatorComputesAndRecords(t *testing.T) {
	cache := store.NewMemoryCache()
	history := store.NewMemoryHistory()
	calc := NewCalculator(cache, history)

	in := domain.AmortizationInput{
		LoanAmount:        5_000_000,
		DownPayment:       1_000_000,
		TermYears:         15,
		AnnualRatePercent: 12.0,
	}
	got := calc.Run(context.Background(), 42, in)

	if want := Calculate(in); got != want {
		t.Errorf("Run result = %+v, want %+v", got, want)
	}

	n, err := history.Count(context.Background())
	if err != nil {
		t.Fatalf("history count: %v", err)
	}
	if n != 1 {
		t.Errorf("history count = %d, want 1", n)
	}

	raw, ok := cache.Get(context.Background(), cacheKey(in))
	if !ok {
		t.Fatal("expected result to be cached after a miss")
	}
	var cached domain.AmortizationResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("decode cached result: %v", err)
	}
	if cached != got {
		t.Errorf("cached result = %+v, want %+v", cached, got)
	}
}

func TestCalculatorServesCachedResult(t *testing.T) {
	cache := store.NewMemoryCache()
	history := store.NewMemoryHistory()
	calc := NewCalculator(cache, history)

	in := domain.AmortizationInput{
		LoanAmount:        2_000_000,
		DownPayment:       500_000,
		TermYears:         10,
		AnnualRatePercent: 8.0,
	}

	// Seed a sentinel under the canonical key. If Run returns it, the
	// result came from the cache rather than a fresh computation.
	sentinel := domain.AmortizationResult{
		Principal:      1,
		MonthlyPayment: 2,
		TotalPayment:   3,
		TotalInterest:  4,
		Months:         5,
	}
	raw, err := json.Marshal(sentinel)
	if err != nil {
		t.Fatalf("marshal sentinel: %v", err)
	}
	if err := cache.Set(context.Background(), cacheKey(in), string(raw)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	got := calc.Run(context.Background(), 7, in)
	if got != sentinel {
		t.Errorf("Run result = %+v, want cached sentinel %+v", got, sentinel)
	}

	// Cache hits still count as completed calculations.
	n, err := history.Count(context.Background())
	if err != nil {
		t.Fatalf("history count: %v", err)
	}
	if n != 1 {
		t.Errorf("history count = %d, want 1", n)
	}
}

func TestCalculatorRecomputesUndecodableCacheEntry(t *testing.T) {
	cache := store.NewMemoryCache()
	calc := NewCalculator(cache, store.NewMemoryHistory())

	in := domain.AmortizationInput{
		LoanAmount:        1_000_000,
		DownPayment:       0,
		TermYears:         5,
		AnnualRatePercent: 10.0,
	}
	if err := cache.Set(context.Background(), cacheKey(in), "not json"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	got := calc.Run(context.Background(), 7, in)
	if want := Calculate(in); got != want {
		t.Errorf("Run result = %+v, want recomputed %+v", got, want)
	}
}

func TestCalculatorSurvivesHistoryFailure(t *testing.T) {
	calc := NewCalculator(store.NewMemoryCache(), failingHistory{})

	in := domain.AmortizationInput{
		LoanAmount:        3_000_000,
		DownPayment:       300_000,
		TermYears:         20,
		AnnualRatePercent: 9.5,
	}
	got := calc.Run(context.Background(), 99, in)

	if want := Calculate(in); got != want {
		t.Errorf("Run result = %+v, want %+v", got, want)
	}
}

func TestCacheKeyDistinguishesInputs(t *testing.T) {
	base := domain.AmortizationInput{
		LoanAmount:        5_000_000,
		DownPayment:       1_000_000,
		TermYears:         15,
		AnnualRatePercent: 12.0,
	}

	variants := []domain.AmortizationInput{
		{LoanAmount: 5_000_001, DownPayment: 1_000_000, TermYears: 15, AnnualRatePercent: 12.0},
		{LoanAmount: 5_000_000, DownPayment: 1_000_001, TermYears: 15, AnnualRatePercent: 12.0},
		{LoanAmount: 5_000_000, DownPayment: 1_000_000, TermYears: 16, AnnualRatePercent: 12.0},
		{LoanAmount: 5_000_000, DownPayment: 1_000_000, TermYears: 15, AnnualRatePercent: 12.1},
	}

	baseKey := cacheKey(base)
	for _, v := range variants {
		if cacheKey(v) == baseKey {
			t.Errorf("cacheKey(%+v) collides with base input", v)
		}
	}

	if cacheKey(base) != baseKey {
		t.Error("cacheKey is not deterministic for identical input")
	}
}
