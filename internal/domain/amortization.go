package domain

import (
	"time"
)

// AmortizationInput carries the four collected answers into the calculator.
type AmortizationInput struct {
	LoanAmount        float64 `json:"loan_amount"`
	DownPayment       float64 `json:"down_payment"`
	TermYears         int     `json:"term_years"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
}

// AmortizationResult is the transient outcome of one completed conversation.
// Values are unrounded; rounding happens only when a report is rendered.
type AmortizationResult struct {
	Principal      float64 `json:"principal"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
	Months         int     `json:"months"`
}

// CalculationRecord is one completed calculation as retained in history.
type CalculationRecord struct {
	ChatID    int64              `json:"chat_id"`
	Input     AmortizationInput  `json:"input"`
	Result    AmortizationResult `json:"result"`
	CreatedAt time.Time          `json:"created_at"`
}
