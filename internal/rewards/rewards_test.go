package rewards

import (
	"reflect"
	"testing"

	"forefunds/internal/core"
)

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCatalog(t *testing.T) {
	if len(Catalog) != 8 {
		t.Fatalf("expected 8 achievements, got %d", len(Catalog))
	}
	a, ok := Lookup(GoalAchieved)
	if !ok || a.Points != 250 {
		t.Fatalf("unexpected lookup %+v %v", a, ok)
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatal("unknown id should not resolve")
	}
	if got := a.UnlockMessage(); got != "Achievement Unlocked: Goal Achiever! +250 Points" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name  string
		facts Facts
		want  []string
	}{
		{"nothing", Facts{}, nil},
		{"first", Facts{TransactionCount: 1}, []string{FirstTransaction}},
		{
			"ten with goal not reached",
			Facts{TransactionCount: 10, HasGoal: true, GoalAmount: core.Money{Cents: 500}, MonthBalance: core.Money{Cents: 499}},
			[]string{FirstTransaction, TenTransactions, FirstGoal},
		},
		{
			"goal reached exactly",
			Facts{TransactionCount: 2, HasGoal: true, GoalAmount: core.Money{Cents: 500}, MonthBalance: core.Money{Cents: 500}},
			[]string{FirstTransaction, FirstGoal, GoalAchieved},
		},
		{
			"power saver and big earner",
			Facts{TransactionCount: 50, AllTimeBalance: core.Money{Cents: 1_000_000}, HasBigIncome: true},
			[]string{FirstTransaction, TenTransactions, FiftyTransactions, PowerSaver, BigEarner},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.facts); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCollectFacts(t *testing.T) {
	today := mustDate(t, "2025-09-15")
	txs := []core.Transaction{
		{Amount: core.Money{Cents: 2_500_000}, Date: mustDate(t, "2025-08-01"), Type: core.Income},
		{Amount: core.Money{Cents: 100_000}, Date: mustDate(t, "2025-09-02"), Type: core.Expense},
		{Amount: core.Money{Cents: 300_000}, Date: mustDate(t, "2025-09-03"), Type: core.Income},
	}
	goal := &core.Goal{Amount: core.Money{Cents: 150_000}}
	f := CollectFacts(txs, goal, today)
	if f.TransactionCount != 3 || !f.HasBigIncome || !f.HasGoal {
		t.Fatalf("unexpected facts %+v", f)
	}
	if f.AllTimeBalance.Cents != 2_700_000 || f.MonthBalance.Cents != 200_000 {
		t.Fatalf("unexpected balances %+v", f)
	}
	ids := Evaluate(f)
	want := []string{FirstTransaction, FirstGoal, GoalAchieved, PowerSaver, BigEarner}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
}

func TestPending(t *testing.T) {
	p := core.Profile{Achievements: []core.AwardedAchievement{{ID: FirstTransaction}}}
	got := Pending(p, []string{FirstTransaction, FirstGoal})
	if !reflect.DeepEqual(got, []string{FirstGoal}) {
		t.Fatalf("got %v", got)
	}
}

func TestCheckStreak(t *testing.T) {
	today := mustDate(t, "2025-09-15")
	goal := core.Money{Cents: 50_000}
	cases := []struct {
		name      string
		profile   core.Profile
		hasTx     bool
		yesterday int64
		checked   bool
		count     int
		message   string
	}{
		{
			name:    "already checked today",
			profile: core.Profile{StreakCount: 3, DailyGoal: goal, LastStreakCheck: today},
			hasTx:   true, checked: false, count: 3,
		},
		{
			name:    "no transactions",
			profile: core.Profile{StreakCount: 3, DailyGoal: goal},
			hasTx:   false, checked: false, count: 3,
		},
		{
			name:    "goal met",
			profile: core.Profile{StreakCount: 3, DailyGoal: goal},
			hasTx:   true, yesterday: 50_000, checked: true, count: 4, message: "Goal met! Streak: 4 🔥",
		},
		{
			name:    "goal missed",
			profile: core.Profile{StreakCount: 3, DailyGoal: goal},
			hasTx:   true, yesterday: 50_001, checked: true, count: 0, message: "Streak reset. Keep trying!",
		},
		{
			name:    "no goal and no streak",
			profile: core.Profile{},
			hasTx:   true, checked: true, count: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := CheckStreak(tc.profile, tc.hasTx, core.Money{Cents: tc.yesterday}, today)
			if out.Checked != tc.checked || out.Count != tc.count || out.Message != tc.message {
				t.Fatalf("got %+v", out)
			}
			if out.Checked && !out.LastCheck.SameDay(today) {
				t.Fatalf("last check not moved to today: %s", out.LastCheck)
			}
		})
	}
}
