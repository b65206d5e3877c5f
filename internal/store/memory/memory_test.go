package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"forefunds/internal/core"
	"forefunds/internal/store"
)

func TestStoreTransactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	d1, _ := core.ParseDate("2025-09-01")
	d2, _ := core.ParseDate("2025-09-05")

	saved, err := s.AddTransactions(ctx, []core.Transaction{
		{UserID: "u1", Amount: core.Money{Cents: 100}, Description: "tea", Date: d1, Type: core.Expense, Category: core.Food},
		{UserID: "u1", Amount: core.Money{Cents: 900}, Description: "cab", Date: d2, Type: core.Expense, Category: core.Transport},
	})
	if err != nil || len(saved) != 2 || saved[0].ID == "" {
		t.Fatalf("add: %+v err=%v", saved, err)
	}
	list, _ := s.ListTransactions(ctx, "u1")
	if list[0].Description != "cab" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if err := s.DeleteTransaction(ctx, "u1", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u1", saved[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := s.GetTransactions(ctx, "u1", []string{saved[0].ID, saved[1].ID})
	if len(got) != 1 || got[0].ID != saved[1].ID {
		t.Fatalf("unexpected %+v", got)
	}

	if _, err := s.AddTransactions(ctx, []core.Transaction{{UserID: "u1"}}); err == nil {
		t.Fatal("invalid transaction should be rejected")
	}
}

func TestStoreAwardIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, created, _ := s.UpsertProfile(ctx, core.Profile{ID: "u1"}); !created {
		t.Fatal("expected creation")
	}
	for i, want := range []bool{true, false} {
		ok, err := s.AwardAchievement(ctx, "u1", "first_scan", 75, time.Now())
		if err != nil || ok != want {
			t.Fatalf("award #%d: ok=%v err=%v", i, ok, err)
		}
	}
	p, _ := s.GetProfile(ctx, "u1")
	if p.Points != 75 {
		t.Fatalf("expected 75 points, got %d", p.Points)
	}
	p.Achievements[0].ID = "mutated"
	again, _ := s.GetProfile(ctx, "u1")
	if !again.HasAchievement("first_scan") {
		t.Fatal("returned profiles must be copies")
	}
}
