package mortgage

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/ashureev/ipoteka-bot/internal/domain"
	"github.com/ashureev/ipoteka-bot/internal/store"
)

// Calculator computes amortization results, memoizing them in a cache
// and recording each completed calculation in history. Cache and
// history failures are logged and swallowed: the user always gets a
// report, computed fresh if need be.
type Calculator struct {
	cache   store.Cache
	history store.HistoryRepository
}

// NewCalculator creates a Calculator on the given cache and history.
func NewCalculator(cache store.Cache, history store.HistoryRepository) *Calculator {
	return &Calculator{cache: cache, history: history}
}

// Run returns the amortization result for in, serving it from cache
// when an identical calculation has been done before.
func (c *Calculator) Run(ctx context.Context, chatID int64, in domain.AmortizationInput) domain.AmortizationResult {
	key := cacheKey(in)

	if raw, ok := c.cache.Get(ctx, key); ok {
		var result domain.AmortizationResult
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			c.record(ctx, chatID, in, result)
			return result
		}
		slog.Warn("Discarding undecodable cached calculation", "key", key)
	}

	result := Calculate(in)

	if raw, err := json.Marshal(result); err == nil {
		if err := c.cache.Set(ctx, key, string(raw)); err != nil {
			slog.Warn("Failed to cache calculation", "key", key, "error", err)
		}
	}

	c.record(ctx, chatID, in, result)
	return result
}

// record saves the completed calculation. Failures must not keep the
// report from the user, so they are only logged.
func (c *Calculator) record(ctx context.Context, chatID int64, in domain.AmortizationInput, result domain.AmortizationResult) {
	rec := domain.CalculationRecord{
		ChatID:    chatID,
		Input:     in,
		Result:    result,
		CreatedAt: time.Now(),
	}
	if err := c.history.Save(ctx, rec); err != nil {
		slog.Warn("Failed to save calculation history", "chat_id", chatID, "error", err)
	}
}

// cacheKey derives a canonical cache key from the calculation input.
// FormatFloat with -1 precision keeps the key exact for any float the
// parser can produce.
func cacheKey(in domain.AmortizationInput) string {
	return "calc:" +
		strconv.FormatFloat(in.LoanAmount, 'f', -1, 64) + ":" +
		strconv.FormatFloat(in.DownPayment, 'f', -1, 64) + ":" +
		strconv.Itoa(in.TermYears) + ":" +
		strconv.FormatFloat(in.AnnualRatePercent, 'f', -1, 64)
}
