package memory

import (
	"context"
	"testing"

	"forefunds/internal/core"
)

func TestStore_Append(t *testing.T) {
	s := New()
	tx := core.Transaction{
		ID:          "t1",
		UserID:      "u1",
		Amount:      core.Money{Cents: 500},
		Description: "Tea",
		Date:        core.NewDate(2024, 6, 1),
		Type:        core.Expense,
		Category:    core.Food,
	}
	ref, err := s.Append(context.Background(), []core.Transaction{tx, tx})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if ref != "mem!A1:H2" {
		t.Errorf("ref = %q", ref)
	}
	if ref, _ = s.Append(context.Background(), []core.Transaction{tx}); ref != "mem!A3:H3" {
		t.Errorf("second ref = %q", ref)
	}

	tx.Description = ""
	if _, err := s.Append(context.Background(), []core.Transaction{tx}); err == nil {
		t.Fatal("expected validation error")
	}
	rows := s.Rows()
	if len(rows) != 3 || rows[0][1] != "Tea" || rows[0][2] != 5.0 {
		t.Fatalf("unexpected rows %v", rows)
	}
}
