package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/ipoteka-bot/internal/domain"
	"github.com/ashureev/ipoteka-bot/internal/mortgage"
)

// Every outbound text lives here. Telegram renders the *bold* and
// _italic_ markers; interpolated values are digits and spaces only, so
// user input can never change how a template parses.

const msgWelcome = "🏠 *Mortgage Calculator 2026 (Russia)*\n\n" +
	"I will help you calculate your monthly mortgage payment.\n" +
	"All data is stored only during this session and will be deleted afterwards.\n\n" +
	"*Step 1:* Enter the loan amount you want (in RUB):"

const msgHelp = "🏠 *Mortgage Calculator Bot*\n\n" +
	"This bot helps you calculate monthly mortgage payments.\n\n" +
	"*Commands:*\n" +
	"/start - Begin new calculation\n" +
	"/cancel - Cancel current calculation\n" +
	"/help - Show this help message\n\n" +
	"*How to use:*\n" +
	"1. Send /start to begin\n" +
	"2. Enter the loan amount\n" +
	"3. Enter your down payment\n" +
	"4. Enter loan term in years\n" +
	"5. Enter interest rate\n" +
	"6. Get your calculation results!\n\n" +
	"⚠️ All data is deleted after calculation is complete."

const msgCancelled = "❌ Calculation cancelled. All data has been deleted.\n\n" +
	"Type /start to begin a new calculation."

const msgGreeting = "👋 Hello! I'm a Mortgage Calculator Bot.\n\n" +
	"Type /start to begin calculating your mortgage payment,\n" +
	"or /help for more information."

const errLoanAmount = "⚠️ Invalid input. Please enter a valid positive number.\n\n" +
	"Example: 5000000"

const errDownPayment = "⚠️ Invalid input. Please enter a valid positive number (or 0 for no down payment).\n\n" +
	"Example: 1000000"

func errDownPaymentTooLarge(down, loan float64) string {
	return fmt.Sprintf("⚠️ Down payment (%s) cannot exceed or equal loan amount (%s).\n"+
		"Please enter a smaller amount:",
		mortgage.FormatRUB(down), mortgage.FormatRUB(loan))
}

func errTerm(minYears, maxYears int) string {
	return fmt.Sprintf("⚠️ Please enter a number between %d and %d years.\n\n"+
		"Example: 15", minYears, maxYears)
}

func errRate(minRate, maxRate float64) string {
	return fmt.Sprintf("⚠️ Please enter a rate between %s%% and %s%%.\n\n"+
		"Example: 12.5", formatRate(minRate), formatRate(maxRate))
}

func ackLoanAmount(amount float64) string {
	return fmt.Sprintf("✅ Loan amount: %s\n\n"+
		"*Step 2:* Enter your down payment/savings (in RUB):",
		mortgage.FormatRUB(amount))
}

func ackDownPayment(amount float64, minYears, maxYears int) string {
	return fmt.Sprintf("✅ Down payment: %s\n\n"+
		"*Step 3:* Enter loan term in years (%d-%d):",
		mortgage.FormatRUB(amount), minYears, maxYears)
}

func ackTerm(years int) string {
	return fmt.Sprintf("✅ Loan term: %d years\n\n"+
		"*Step 4:* Enter annual interest rate %% (e.g., 12.5):", years)
}

func report(in domain.AmortizationInput, r domain.AmortizationResult) string {
	return fmt.Sprintf("📊 *CALCULATION RESULTS:*\n\n"+
		"• Loan Amount: %s\n"+
		"• Down Payment: %s\n"+
		"• Loan Principal: %s\n"+
		"• Loan Term: %d years (%d months)\n"+
		"• Interest Rate: %.1f%% per year\n\n"+
		"💸 *Monthly Payment:* ~%s\n"+
		"💰 *Total Payment:* ~%s\n"+
		"💎 *Total Interest:* ~%s\n\n"+
		"⚠️ _Note: This is an estimate. Actual terms may vary._\n"+
		"_All your data has been deleted from memory._\n\n"+
		"Type /start for new calculation.",
		mortgage.FormatRUB(in.LoanAmount),
		mortgage.FormatRUB(in.DownPayment),
		mortgage.FormatRUB(r.Principal),
		in.TermYears, r.Months,
		in.AnnualRatePercent,
		mortgage.FormatRUB(r.MonthlyPayment),
		mortgage.FormatRUB(r.TotalPayment),
		mortgage.FormatRUB(r.TotalInterest),
	)
}

// formatRate renders a rate bound with at least one decimal digit, so
// whole-number bounds read as "30.0", not "30".
func formatRate(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
