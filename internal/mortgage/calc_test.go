package mortgage

import (
	"math"
	"testing"

	"github.com/ashureev/ipoteka-bot/internal/domain"
)

func TestCalculateStandardMortgage(t *testing.T) {
	result := Calculate(domain.AmortizationInput{
		LoanAmount:        5_000_000,
		DownPayment:       1_000_000,
		TermYears:         15,
		AnnualRatePercent: 12.0,
	})

	if result.Principal != 4_000_000 {
		t.Errorf("principal = %v, want 4000000", result.Principal)
	}
	if result.Months != 180 {
		t.Errorf("months = %v, want 180", result.Months)
	}
	if math.Abs(result.MonthlyPayment-48007) > 1 {
		t.Errorf("monthly payment = %v, want 48007 within 1", result.MonthlyPayment)
	}
	if math.Abs(result.TotalPayment-result.MonthlyPayment*float64(result.Months)) > 1 {
		t.Errorf("total payment = %v, want monthly*months = %v",
			result.TotalPayment, result.MonthlyPayment*float64(result.Months))
	}
	if math.Abs(result.TotalInterest-(result.TotalPayment-result.Principal)) > 1 {
		t.Errorf("total interest = %v, want total-principal = %v",
			result.TotalInterest, result.TotalPayment-result.Principal)
	}
}

func TestCalculateZeroInterest(t *testing.T) {
	result := Calculate(domain.AmortizationInput{
		LoanAmount:        1_200_000,
		DownPayment:       0,
		TermYears:         10,
		AnnualRatePercent: 0,
	})

	if want := 1_200_000.0 / 120; result.MonthlyPayment != want {
		t.Errorf("monthly payment = %v, want %v", result.MonthlyPayment, want)
	}
	if result.TotalInterest != 0 {
		t.Errorf("total interest = %v, want 0", result.TotalInterest)
	}
}

func TestCalculateNoDownPayment(t *testing.T) {
	result := Calculate(domain.AmortizationInput{
		LoanAmount:        3_000_000,
		DownPayment:       0,
		TermYears:         20,
		AnnualRatePercent: 10.0,
	})

	if result.Principal != 3_000_000 {
		t.Errorf("principal = %v, want 3000000", result.Principal)
	}
	if result.MonthlyPayment <= 0 {
		t.Errorf("monthly payment = %v, want > 0", result.MonthlyPayment)
	}
	if result.TotalInterest <= 0 {
		t.Errorf("total interest = %v, want > 0", result.TotalInterest)
	}
}

func TestCalculateShortTerm(t *testing.T) {
	result := Calculate(domain.AmortizationInput{
		LoanAmount:        1_000_000,
		DownPayment:       500_000,
		TermYears:         1,
		AnnualRatePercent: 15.0,
	})

	if result.Principal != 500_000 {
		t.Errorf("principal = %v, want 500000", result.Principal)
	}
	if result.Months != 12 {
		t.Errorf("months = %v, want 12", result.Months)
	}
}
