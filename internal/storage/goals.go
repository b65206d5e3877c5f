package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"forefunds/internal/core"
	"forefunds/internal/store"
)

func (r *Repository) GetGoal(ctx context.Context, userID string) (core.Goal, error) {
	var (
		g     core.Goal
		setAt int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, description, amount_cents, reward, set_at FROM goals WHERE user_id = $1", userID).
		Scan(&g.UserID, &g.Description, &g.Amount.Cents, &g.Reward, &setAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, store.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal (user=%s): %w", userID, err)
	}
	g.SetAt = time.UnixMilli(setAt)
	return g, nil
}

// SetGoal replaces any existing goal of the user.
func (r *Repository) SetGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.SetAt.IsZero() {
		g.SetAt = r.now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (user_id, description, amount_cents, reward, set_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			description = excluded.description,
			amount_cents = excluded.amount_cents,
			reward = excluded.reward,
			set_at = excluded.set_at`,
		g.UserID, g.Description, g.Amount.Cents, g.Reward, g.SetAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("set goal (user=%s): %w", g.UserID, err)
	}
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM goals WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("delete goal (user=%s): %w", userID, err)
	}
	return nil
}
