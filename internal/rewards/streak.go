package rewards

import (
	"fmt"

	"forefunds/internal/core"
)

// StreakOutcome is the result of the once-a-day streak check.
type StreakOutcome struct {
	Checked   bool // false when the check was skipped
	Count     int
	LastCheck core.Date
	Message   string // empty when there is nothing to tell the user
}

// IsStreakDue reports whether today's check has not run yet.
func IsStreakDue(p core.Profile, today core.Date) bool {
	return !p.LastStreakCheck.SameDay(today)
}

// CheckStreak compares yesterday's spending with the daily goal.
//
// Users without transactions are skipped so a new account does not burn its
// first check. A met goal extends the streak, anything else resets it.
func CheckStreak(p core.Profile, hasTransactions bool, yesterdayExpenses core.Money, today core.Date) StreakOutcome {
	if !IsStreakDue(p, today) || !hasTransactions {
		return StreakOutcome{Count: p.StreakCount, LastCheck: p.LastStreakCheck}
	}
	out := StreakOutcome{Checked: true, LastCheck: today}
	if p.DailyGoal.Cents > 0 && yesterdayExpenses.Cents <= p.DailyGoal.Cents {
		out.Count = p.StreakCount + 1
		out.Message = fmt.Sprintf("Goal met! Streak: %d 🔥", out.Count)
		return out
	}
	if p.StreakCount > 0 {
		out.Message = "Streak reset. Keep trying!"
	}
	return out
}
