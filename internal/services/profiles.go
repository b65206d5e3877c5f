package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"forefunds/internal/analytics"
	"forefunds/internal/core"
	"forefunds/internal/log"
	"forefunds/internal/rewards"
	"forefunds/internal/store"
)

// LeaderboardSize is how many profiles the leaderboard shows.
const LeaderboardSize = 10

type ProfileService struct {
	store  store.ProfileStore
	ledger *Ledger
	clock  Clock
	logger *log.Logger
}

func NewProfileService(s store.ProfileStore, ledger *Ledger, clock Clock, logger *log.Logger) *ProfileService {
	return &ProfileService{store: s, ledger: ledger, clock: clock, logger: logger.WithComponent(log.ComponentRewards)}
}

// SignIn creates the profile on first sign-in and refreshes the identity
// fields afterwards.
func (s *ProfileService) SignIn(ctx context.Context, id, email, name, photoURL string) (core.Profile, bool, error) {
	if strings.TrimSpace(id) == "" {
		return core.Profile{}, false, core.ErrMissingUser
	}
	p, created, err := s.store.UpsertProfile(ctx, core.Profile{
		ID:        id,
		Email:     email,
		Name:      name,
		PhotoURL:  photoURL,
		CreatedAt: s.clock.now().UTC(),
	})
	if err != nil {
		return core.Profile{}, false, fmt.Errorf("upsert profile: %w", err)
	}
	if created {
		s.logger.InfoContext(ctx, "Profile created", log.FieldUserID, id, log.FieldOperation, log.OpSignIn)
	}
	return p, created, nil
}

// Get loads the profile and runs the daily streak check when it is due.
// The returned notice is empty unless the streak changed in a way worth
// telling the user about.
func (s *ProfileService) Get(ctx context.Context, userID string) (core.Profile, string, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return core.Profile{}, "", err
	}
	outcome, err := s.checkStreak(ctx, p)
	if err != nil {
		return core.Profile{}, "", err
	}
	p.StreakCount = outcome.Count
	p.LastStreakCheck = outcome.LastCheck
	return p, outcome.Message, nil
}

func (s *ProfileService) checkStreak(ctx context.Context, p core.Profile) (rewards.StreakOutcome, error) {
	today := s.clock.Today()
	if !rewards.IsStreakDue(p, today) {
		return rewards.StreakOutcome{Count: p.StreakCount, LastCheck: p.LastStreakCheck}, nil
	}
	txs, err := s.ledger.History(ctx, p.ID)
	if err != nil {
		return rewards.StreakOutcome{}, fmt.Errorf("load transactions: %w", err)
	}
	yesterday := analytics.DayExpenses(txs, today.AddDays(-1))
	outcome := rewards.CheckStreak(p, len(txs) > 0, yesterday, today)
	if !outcome.Checked {
		return outcome, nil
	}
	if err := s.store.UpdateStreak(ctx, p.ID, outcome.Count, outcome.LastCheck); err != nil {
		return rewards.StreakOutcome{}, fmt.Errorf("update streak: %w", err)
	}
	s.logger.DebugContext(ctx, "Streak checked",
		log.FieldUserID, p.ID,
		log.FieldStreak, outcome.Count,
		log.FieldOperation, log.OpStreak)
	return outcome, nil
}

// SweepStreaks runs the streak check for every profile and returns how many
// were updated. One failing profile does not stop the sweep.
func (s *ProfileService) SweepStreaks(ctx context.Context) (int, error) {
	ids, err := s.store.ListProfileIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profiles: %w", err)
	}
	checked := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return checked, err
		}
		p, err := s.store.GetProfile(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("profile %s: %w", id, err))
			continue
		}
		outcome, err := s.checkStreak(ctx, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("profile %s: %w", id, err))
			continue
		}
		if outcome.Checked {
			checked++
		}
	}
	return checked, errors.Join(errs...)
}

// SetDailyGoal parses and stores the daily spending goal.
func (s *ProfileService) SetDailyGoal(ctx context.Context, userID, amount string) (core.Money, error) {
	m, err := core.ParseAmount(amount)
	if err != nil {
		return core.Money{}, core.ErrInvalidDailyGoal
	}
	if err := s.store.SetDailyGoal(ctx, userID, m); err != nil {
		return core.Money{}, fmt.Errorf("set daily goal: %w", err)
	}
	return m, nil
}

func (s *ProfileService) Leaderboard(ctx context.Context) ([]core.Profile, error) {
	return s.store.Leaderboard(ctx, LeaderboardSize)
}
