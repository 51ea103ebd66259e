// Package mortgage implements the amortization math and the number helpers
// shared by every conversation step.
package mortgage

import (
	"math"

	"github.com/ashureev/ipoteka-bot/internal/domain"
)

// Calculate computes the payment summary for a fully collected conversation
// using the standard annuity formula. A zero annual rate degrades to a
// straight-line split of the principal over the term.
//
// The function is pure and applies no rounding; display rounding is the
// caller's concern. Callers guarantee loanAmount > downPayment >= 0 and
// termYears >= 1, so months >= 12 and the annuity denominator is non-zero
// for any positive rate.
func Calculate(in domain.AmortizationInput) domain.AmortizationResult {
	principal := in.LoanAmount - in.DownPayment
	months := in.TermYears * 12

	var monthly float64
	if in.AnnualRatePercent == 0 {
		monthly = principal / float64(months)
	} else {
		monthlyRate := in.AnnualRatePercent / 12 / 100
		factor := math.Pow(1+monthlyRate, float64(months))
		monthly = principal * monthlyRate * factor / (factor - 1)
	}

	total := monthly * float64(months)

	return domain.AmortizationResult{
		Principal:      principal,
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - principal,
		Months:         months,
	}
}
