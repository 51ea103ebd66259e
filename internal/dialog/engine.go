package dialog

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/ipoteka-bot/internal/domain"
	"github.com/ashureev/ipoteka-bot/internal/mortgage"
	"github.com/ashureev/ipoteka-bot/internal/store"
)

// Limits bound the term and rate answers. The hosting environment
// supplies them; the engine only checks against whatever it is given.
type Limits struct {
	MinTermYears int
	MaxTermYears int
	MinRate      float64
	MaxRate      float64
}

// Engine advances one conversation per turn. Every inbound turn yields
// exactly one reply; invalid answers re-prompt the same step and never
// surface as errors. All session mutation for a turn completes before
// the reply is returned, so a reply the channel fails to deliver can
// cost the user at most one repeated answer.
type Engine struct {
	sessions   *store.SessionStore
	calc       *mortgage.Calculator
	limits     Limits
	transcript *Transcript
}

// NewEngine creates an Engine on the given session store and calculator.
func NewEngine(sessions *store.SessionStore, calc *mortgage.Calculator, limits Limits, transcript *Transcript) *Engine {
	return &Engine{
		sessions:   sessions,
		calc:       calc,
		limits:     limits,
		transcript: transcript,
	}
}

// HandleTurn processes one inbound turn and returns the reply text.
// Turns for the same chat are serialized; the channel may call this
// concurrently for different chats.
func (e *Engine) HandleTurn(ctx context.Context, turn Turn) string {
	unlock := e.sessions.LockTurn(turn.ChatID)
	defer unlock()

	e.transcript.Log(TranscriptEvent{
		Time:      time.Now(),
		ChatID:    turn.ChatID,
		Direction: "inbound",
		Step:      e.stepOf(turn.ChatID).String(),
		Command:   turn.Command.String(),
		Text:      turn.Text,
	})

	reply := e.dispatch(ctx, turn)

	e.transcript.Log(TranscriptEvent{
		Time:      time.Now(),
		ChatID:    turn.ChatID,
		Direction: "outbound",
		Step:      e.stepOf(turn.ChatID).String(),
		Text:      reply,
	})
	return reply
}

func (e *Engine) dispatch(ctx context.Context, turn Turn) string {
	switch turn.Command {
	case CommandStart:
		return e.startSession(turn.ChatID)
	case CommandCancel:
		return e.cancelSession(turn.ChatID)
	case CommandHelp:
		return msgHelp
	case CommandUnknown:
		return msgGreeting
	default:
		return e.collectAnswer(ctx, turn)
	}
}

// startSession discards any prior answers and puts the chat at the
// first question. StartedAt survives a restart of the same record.
func (e *Engine) startSession(chatID int64) string {
	prior := e.sessions.GetOrCreate(chatID)
	e.sessions.Set(domain.Session{
		ChatID:    chatID,
		Step:      domain.StepLoanAmount,
		StartedAt: prior.StartedAt,
	})
	slog.Info("Conversation started", "chat_id", chatID)
	return msgWelcome
}

// cancelSession deletes the chat's session. Cancelling when nothing is
// in flight confirms all the same.
func (e *Engine) cancelSession(chatID int64) string {
	e.sessions.Delete(chatID)
	slog.Info("Conversation cancelled", "chat_id", chatID)
	return msgCancelled
}

// collectAnswer treats the turn text as the answer to the session's
// current question.
func (e *Engine) collectAnswer(ctx context.Context, turn Turn) string {
	sess, ok := e.sessions.Get(turn.ChatID)
	if !ok || sess.Step == domain.StepNone {
		return msgGreeting
	}

	switch sess.Step {
	case domain.StepLoanAmount:
		return e.collectLoanAmount(sess, turn.Text)
	case domain.StepDownPayment:
		return e.collectDownPayment(sess, turn.Text)
	case domain.StepTerm:
		return e.collectTerm(sess, turn.Text)
	case domain.StepRate:
		return e.collectRate(ctx, sess, turn.Text)
	default:
		return msgGreeting
	}
}

func (e *Engine) collectLoanAmount(sess domain.Session, text string) string {
	amount, ok := mortgage.ParseNumber(text)
	if !ok || amount <= 0 {
		return errLoanAmount
	}

	sess.LoanAmount = amount
	sess.Step = domain.StepDownPayment
	e.sessions.Set(sess)

	slog.Debug("Answer accepted", "chat_id", sess.ChatID, "step", domain.StepLoanAmount)
	return ackLoanAmount(amount)
}

func (e *Engine) collectDownPayment(sess domain.Session, text string) string {
	amount, ok := mortgage.ParseNumber(text)
	if !ok || amount < 0 {
		return errDownPayment
	}
	if amount >= sess.LoanAmount {
		return errDownPaymentTooLarge(amount, sess.LoanAmount)
	}

	sess.DownPayment = amount
	sess.Step = domain.StepTerm
	e.sessions.Set(sess)

	slog.Debug("Answer accepted", "chat_id", sess.ChatID, "step", domain.StepDownPayment)
	return ackDownPayment(amount, e.limits.MinTermYears, e.limits.MaxTermYears)
}

func (e *Engine) collectTerm(sess domain.Session, text string) string {
	years, ok := mortgage.ParseNumber(text)
	if !ok || years < float64(e.limits.MinTermYears) || years > float64(e.limits.MaxTermYears) {
		return errTerm(e.limits.MinTermYears, e.limits.MaxTermYears)
	}

	// The range is checked on the parsed value; only whole years are kept.
	sess.TermYears = int(years)
	sess.Step = domain.StepRate
	e.sessions.Set(sess)

	slog.Debug("Answer accepted", "chat_id", sess.ChatID, "step", domain.StepTerm)
	return ackTerm(sess.TermYears)
}

func (e *Engine) collectRate(ctx context.Context, sess domain.Session, text string) string {
	rate, ok := mortgage.ParseNumber(text)
	if !ok || rate < e.limits.MinRate || rate > e.limits.MaxRate {
		return errRate(e.limits.MinRate, e.limits.MaxRate)
	}

	sess.RatePercent = rate
	e.sessions.Set(sess)

	in := domain.AmortizationInput{
		LoanAmount:        sess.LoanAmount,
		DownPayment:       sess.DownPayment,
		TermYears:         sess.TermYears,
		AnnualRatePercent: sess.RatePercent,
	}
	result := e.calc.Run(ctx, sess.ChatID, in)

	// Tear down before the reply leaves the engine; a failed delivery
	// must not leave answers behind.
	e.sessions.Delete(sess.ChatID)

	slog.Info("Calculation completed",
		"chat_id", sess.ChatID,
		"months", result.Months,
		"monthly_payment", result.MonthlyPayment)
	return report(in, result)
}

func (e *Engine) stepOf(chatID int64) domain.Step {
	sess, ok := e.sessions.Get(chatID)
	if !ok {
		return domain.StepNone
	}
	return sess.Step
}
