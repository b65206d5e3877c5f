// Package analytics derives dashboard figures from a user's transactions.
//
// Every function is pure: callers pass the transaction slice and the day they
// consider "today", so results are reproducible in tests and across time zones.
package analytics

import (
	"time"

	"forefunds/internal/core"
)

// Totals aggregates income and expenses over a set of transactions.
type Totals struct {
	Income   core.Money
	Expenses core.Money
	Count    int
}

// Balance is income minus expenses. It may be negative.
func (t Totals) Balance() core.Money {
	return core.Money{Cents: t.Income.Cents - t.Expenses.Cents}
}

func (t *Totals) add(tx core.Transaction) {
	t.Count++
	switch tx.Type {
	case core.Income:
		t.Income.Cents += tx.Amount.Cents
	case core.Expense:
		t.Expenses.Cents += tx.Amount.Cents
	}
}

// MonthTotals sums the transactions dated in the given month.
func MonthTotals(txs []core.Transaction, year int, month time.Month) Totals {
	var t Totals
	for _, tx := range txs {
		if tx.Date.SameMonth(year, month) {
			t.add(tx)
		}
	}
	return t
}

// AllTimeTotals sums every transaction.
func AllTimeTotals(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		t.add(tx)
	}
	return t
}

// DayExpenses sums the expenses dated on day.
func DayExpenses(txs []core.Transaction, day core.Date) core.Money {
	var sum int64
	for _, tx := range txs {
		if tx.Type == core.Expense && tx.Date.SameDay(day) {
			sum += tx.Amount.Cents
		}
	}
	return core.Money{Cents: sum}
}

// HasIncomeAtLeast reports whether any single income transaction reaches min.
func HasIncomeAtLeast(txs []core.Transaction, min core.Money) bool {
	for _, tx := range txs {
		if tx.Type == core.Income && tx.Amount.Cents >= min.Cents {
			return true
		}
	}
	return false
}

// ProjectSpending extrapolates month-to-date expenses linearly to the end of
// today's month. No spending projects to zero.
func ProjectSpending(expenses core.Money, today core.Date) core.Money {
	if expenses.Cents <= 0 {
		return core.Money{}
	}
	day := int64(today.Day())
	days := int64(core.DaysInMonth(today.Year(), today.Month()))
	// rounded integer division: expenses / day * days
	num := expenses.Cents * days
	return core.Money{Cents: (2*num + day) / (2 * day)}
}

// GoalProgress reports how far the balance has come towards the goal amount,
// as a percentage capped at 100, and whether the goal is reached.
func GoalProgress(balance core.Money, goal core.Money) (percent float64, achieved bool) {
	if goal.Cents <= 0 {
		return 0, false
	}
	achieved = balance.Cents >= goal.Cents
	if balance.Cents <= 0 {
		return 0, achieved
	}
	percent = float64(balance.Cents) / float64(goal.Cents) * 100
	if percent > 100 {
		percent = 100
	}
	return percent, achieved
}
