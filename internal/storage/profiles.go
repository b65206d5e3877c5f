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

const profileColumns = "id, email, name, photo_url, points, streak_count, last_streak_check, daily_goal_cents, created_at"

func (r *Repository) UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, bool, error) {
	if p.ID == "" {
		return core.Profile{}, false, core.ErrMissingUser
	}
	now := r.now().UnixMilli()
	created := false
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles WHERE id = $1", p.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check profile: %w", err)
		}
		created = exists == 0
		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (id, email, name, photo_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				email = excluded.email,
				name = excluded.name,
				photo_url = excluded.photo_url,
				updated_at = excluded.updated_at`,
			p.ID, p.Email, p.Name, p.PhotoURL, now, now)
		if err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Profile{}, false, err
	}
	saved, err := r.GetProfile(ctx, p.ID)
	return saved, created, err
}

func (r *Repository) GetProfile(ctx context.Context, id string) (core.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, store.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT achievement_id, awarded_at FROM profile_achievements WHERE profile_id = $1 ORDER BY awarded_at, achievement_id", id)
	if err != nil {
		return core.Profile{}, fmt.Errorf("list achievements of %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a  core.AwardedAchievement
			at int64
		)
		if err := rows.Scan(&a.ID, &at); err != nil {
			return core.Profile{}, fmt.Errorf("scan achievement: %w", err)
		}
		a.AwardedAt = time.UnixMilli(at)
		p.Achievements = append(p.Achievements, a)
	}
	if err := rows.Err(); err != nil {
		return core.Profile{}, fmt.Errorf("iterate achievements: %w", err)
	}
	return p, nil
}

func (r *Repository) ListProfileIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM profiles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan profile id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) UpdateStreak(ctx context.Context, id string, count int, lastCheck core.Date) error {
	return r.updateProfile(ctx, id,
		"UPDATE profiles SET streak_count = $1, last_streak_check = $2, updated_at = $3 WHERE id = $4",
		count, lastCheck.String(), r.now().UnixMilli(), id)
}

func (r *Repository) SetDailyGoal(ctx context.Context, id string, goal core.Money) error {
	return r.updateProfile(ctx, id,
		"UPDATE profiles SET daily_goal_cents = $1, updated_at = $2 WHERE id = $3",
		goal.Cents, r.now().UnixMilli(), id)
}

func (r *Repository) updateProfile(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile %s: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AwardAchievement relies on the (profile_id, achievement_id) key: a second
// award inserts nothing and therefore adds no points.
func (r *Repository) AwardAchievement(ctx context.Context, id, achievementID string, points int64, at time.Time) (bool, error) {
	awarded := false
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles WHERE id = $1", id).Scan(&exists); err != nil {
			return fmt.Errorf("check profile: %w", err)
		}
		if exists == 0 {
			return store.ErrNotFound
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO profile_achievements (profile_id, achievement_id, awarded_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (profile_id, achievement_id) DO NOTHING`,
			id, achievementID, at.UnixMilli())
		if err != nil {
			return fmt.Errorf("insert achievement: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert achievement: %w", err)
		}
		if n == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE profiles SET points = points + $1, updated_at = $2 WHERE id = $3",
			points, at.UnixMilli(), id); err != nil {
			return fmt.Errorf("add points: %w", err)
		}
		awarded = true
		return nil
	})
	return awarded, err
}

func (r *Repository) Leaderboard(ctx context.Context, limit int) ([]core.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles ORDER BY points DESC, created_at ASC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()
	var out []core.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (core.Profile, error) {
	var (
		p                    core.Profile
		lastCheck            string
		dailyGoal, createdAt int64
	)
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &p.PhotoURL, &p.Points, &p.StreakCount,
		&lastCheck, &dailyGoal, &createdAt); err != nil {
		return core.Profile{}, err
	}
	if lastCheck != "" {
		d, err := core.ParseDate(lastCheck)
		if err != nil {
			return core.Profile{}, err
		}
		p.LastStreakCheck = d
	}
	p.DailyGoal = core.Money{Cents: dailyGoal}
	p.CreatedAt = time.UnixMilli(createdAt)
	return p, nil
}
