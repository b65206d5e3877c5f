package rewards

import (
	"forefunds/internal/analytics"
	"forefunds/internal/core"
)

// Facts is the snapshot of a user's data the unlock rules look at.
type Facts struct {
	TransactionCount int
	HasBigIncome     bool
	HasGoal          bool
	GoalAmount       core.Money
	AllTimeBalance   core.Money
	MonthBalance     core.Money
}

// CollectFacts derives Facts from the full history, the current goal (nil when
// none) and the day used as "this month".
func CollectFacts(txs []core.Transaction, goal *core.Goal, today core.Date) Facts {
	f := Facts{
		TransactionCount: len(txs),
		HasBigIncome:     analytics.HasIncomeAtLeast(txs, bigEarnerIncome),
		AllTimeBalance:   analytics.AllTimeTotals(txs).Balance(),
		MonthBalance:     analytics.MonthTotals(txs, today.Year(), today.Month()).Balance(),
	}
	if goal != nil {
		f.HasGoal = true
		f.GoalAmount = goal.Amount
	}
	return f
}

// Evaluate lists every achievement the facts qualify for, in catalog order.
// first_scan is not data driven and is never returned here.
func Evaluate(f Facts) []string {
	var ids []string
	if f.TransactionCount >= 1 {
		ids = append(ids, FirstTransaction)
	}
	if f.TransactionCount >= 10 {
		ids = append(ids, TenTransactions)
	}
	if f.TransactionCount >= 50 {
		ids = append(ids, FiftyTransactions)
	}
	if f.HasGoal {
		ids = append(ids, FirstGoal)
	}
	if f.HasGoal && f.GoalAmount.Cents > 0 && f.MonthBalance.Cents >= f.GoalAmount.Cents {
		ids = append(ids, GoalAchieved)
	}
	if f.AllTimeBalance.Cents >= powerSaverBalance.Cents {
		ids = append(ids, PowerSaver)
	}
	if f.HasBigIncome {
		ids = append(ids, BigEarner)
	}
	return ids
}

// Pending filters ids down to those the profile does not hold yet.
func Pending(p core.Profile, ids []string) []string {
	var out []string
	for _, id := range ids {
		if !p.HasAchievement(id) {
			out = append(out, id)
		}
	}
	return out
}
