// Package store declares the persistence ports shared by every backend.
package store

import (
	"context"
	"errors"
	"time"

	"forefunds/internal/core"
)

var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	TransactionStore interface {
		// AddTransactions stores txs in one unit of work, assigning ids and
		// creation times, and returns the stored copies.
		AddTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
		// ListTransactions returns a user's history, newest date first.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		GetTransactions(ctx context.Context, userID string, ids []string) ([]core.Transaction, error)
		// DeleteTransaction returns ErrNotFound when id does not belong to userID.
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	GoalStore interface {
		// GetGoal returns ErrNotFound when the user has no goal.
		GetGoal(ctx context.Context, userID string) (core.Goal, error)
		SetGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, userID string) error
	}

	ProfileStore interface {
		// UpsertProfile creates the profile on first sign-in or refreshes the
		// identity fields afterwards. created reports which one happened.
		UpsertProfile(ctx context.Context, p core.Profile) (saved core.Profile, created bool, err error)
		GetProfile(ctx context.Context, id string) (core.Profile, error)
		ListProfileIDs(ctx context.Context) ([]string, error)
		UpdateStreak(ctx context.Context, id string, count int, lastCheck core.Date) error
		SetDailyGoal(ctx context.Context, id string, goal core.Money) error
		// AwardAchievement records the achievement and adds its points in one
		// step. It reports false, and changes nothing, when already held.
		AwardAchievement(ctx context.Context, id, achievementID string, points int64, at time.Time) (bool, error)
		// Leaderboard lists profiles by points, highest first.
		Leaderboard(ctx context.Context, limit int) ([]core.Profile, error)
	}

	Store interface {
		TransactionStore
		GoalStore
		ProfileStore
		Ping(ctx context.Context) error
		Close() error
	}
)
