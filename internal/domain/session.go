// Package domain contains core domain types for the mortgage bot.
package domain

import (
	"time"
)

// Step identifies the question a conversation is currently waiting on.
type Step int

const (
	// StepNone marks a session that exists but has not been started yet.
	// Completed and cancelled sessions are deleted rather than parked here.
	StepNone Step = iota
	// StepLoanAmount waits for the total loan amount in rubles.
	StepLoanAmount
	// StepDownPayment waits for the down payment, which must stay below the
	// loan amount collected one step earlier.
	StepDownPayment
	// StepTerm waits for the loan term in years.
	StepTerm
	// StepRate waits for the annual interest rate; a valid answer completes
	// the conversation.
	StepRate
)

// String returns a stable name for logging and transcripts.
func (s Step) String() string {
	switch s {
	case StepLoanAmount:
		return "loan_amount"
	case StepDownPayment:
		return "down_payment"
	case StepTerm:
		return "term"
	case StepRate:
		return "rate"
	default:
		return "none"
	}
}

// Session holds the state of one in-flight conversation, keyed by chat ID.
// Answer fields are populated strictly in step order: a field is set if and
// only if the session has advanced past the step that collects it. The dialog
// engine is the only writer.
type Session struct {
	ChatID      int64
	Step        Step
	LoanAmount  float64
	DownPayment float64
	TermYears   int
	RatePercent float64
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// IdleSince reports whether the session has seen no accepted answer since
// the cutoff. Used by the TTL sweep.
func (s *Session) IdleSince(cutoff time.Time) bool {
	return s.UpdatedAt.Before(cutoff)
}
