package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func validTx() Transaction {
	return Transaction{
		UserID:      "u1",
		Amount:      Money{Cents: 15075},
		Description: "Zomato",
		Date:        NewDate(2025, time.September, 24),
		Type:        Expense,
		Category:    Food,
	}
}

func TestTransactionValidate(t *testing.T) {
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"ok", func(*Transaction) {}, nil},
		{"no user", func(tx *Transaction) { tx.UserID = " " }, ErrMissingUser},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"blank description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = string(long) }, ErrDescriptionTooLong},
		{"hindi within limit", func(tx *Transaction) { tx.Description = strings.Repeat("चाय", 66) }, nil},
		{"hindi over limit", func(tx *Transaction) { tx.Description = strings.Repeat("चाय", 67) }, ErrDescriptionTooLong},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"bad category", func(tx *Transaction) { tx.Category = "Rent" }, ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTx()
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGoalValidate(t *testing.T) {
	g := Goal{UserID: "u1", Description: "New phone", Amount: Money{Cents: 5000000}, Reward: "Pizza"}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	g.Reward = strings.Repeat("₹", 200)
	if err := g.Validate(); err != nil {
		t.Fatalf("200 rupee signs should fit, got %v", err)
	}
	g.Reward = strings.Repeat("₹", 201)
	if err := g.Validate(); !errors.Is(err, ErrRewardTooLong) {
		t.Fatalf("expected ErrRewardTooLong, got %v", err)
	}
	g.Reward = "Pizza"
	g.Amount = Money{}
	if err := g.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	g.Amount = Money{Cents: 1}
	g.Description = ""
	if err := g.Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}

func TestParseTxType(t *testing.T) {
	cases := map[string]TxType{
		"income":  Income,
		"Expense": Expense,
		"CREDIT":  Income,
		" debit ": Expense,
	}
	for in, want := range cases {
		got, err := ParseTxType(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q err=%v", in, got, err)
		}
	}
	if _, err := ParseTxType("refund"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	if got := ParseCategory("food"); got != Food {
		t.Fatalf("got %q", got)
	}
	if got := ParseCategory("Groceries"); got != Other {
		t.Fatalf("unknown category should map to Other, got %q", got)
	}
}

func TestDateHelpers(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("unexpected %s", d)
	}
	if got := d.AddDays(1).String(); got != "2024-03-01" {
		t.Fatalf("AddDays: %s", got)
	}
	if DaysInMonth(2024, time.February) != 29 || DaysInMonth(2025, time.February) != 28 {
		t.Fatal("DaysInMonth wrong for February")
	}
	if _, err := ParseDate("24-09-2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	local := time.Date(2025, 1, 5, 23, 30, 0, 0, time.FixedZone("IST", 19800))
	if DateOf(local).String() != "2025-01-05" {
		t.Fatalf("DateOf should keep the local calendar day, got %s", DateOf(local))
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2025-09-24"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"d":"2025-09-24"}` {
		t.Fatalf("unexpected %s", out)
	}
}

func TestProfileHasAchievement(t *testing.T) {
	p := Profile{Achievements: []AwardedAchievement{{ID: "first_scan"}}}
	if !p.HasAchievement("first_scan") || p.HasAchievement("first_goal") {
		t.Fatal("HasAchievement mismatch")
	}
}
