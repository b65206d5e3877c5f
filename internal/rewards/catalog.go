// Package rewards holds the achievement catalog, the rules that unlock each
// achievement and the daily spending streak.
package rewards

import (
	"fmt"

	"forefunds/internal/core"
)

const (
	FirstTransaction  = "first_transaction"
	TenTransactions   = "ten_transactions"
	FiftyTransactions = "fifty_transactions"
	FirstScan         = "first_scan"
	FirstGoal         = "first_goal"
	GoalAchieved      = "goal_achieved"
	PowerSaver        = "power_saver"
	BigEarner         = "big_earner"
)

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int64  `json:"points"`
}

// Catalog is ordered the way the profile page lists achievements.
var Catalog = []Achievement{
	{FirstTransaction, "Getting Started", "Add your very first transaction.", 10},
	{TenTransactions, "Budget Beginner", "Add 10 transactions to your history.", 50},
	{FiftyTransactions, "Record Keeper", "Add 50 transactions to your history.", 150},
	{FirstScan, "Scanner Pro", "Scan your first document.", 75},
	{FirstGoal, "Goal Setter", "Set your first financial goal.", 100},
	{GoalAchieved, "Goal Achiever", "Successfully complete a financial goal.", 250},
	{PowerSaver, "Power Saver", "Reach a net balance of over ₹10,000.", 200},
	{BigEarner, "Big Earner", "Log a single income transaction over ₹20,000.", 150},
}

var (
	powerSaverBalance = core.Money{Cents: 10_000_00}
	bigEarnerIncome   = core.Money{Cents: 20_000_00}
)

// Lookup returns the catalog entry for id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// UnlockMessage is the notification shown for a fresh award.
func (a Achievement) UnlockMessage() string {
	return fmt.Sprintf("Achievement Unlocked: %s! +%d Points", a.Title, a.Points)
}
