package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forefunds/internal/core"
	"forefunds/internal/log"
	"forefunds/internal/rewards"
	"forefunds/internal/store"
)

// RewardService evaluates achievement rules and records awards.
type RewardService struct {
	profiles store.ProfileStore
	goals    store.GoalStore
	ledger   *Ledger
	clock    Clock
	logger   *log.StructuredLogger
}

func NewRewardService(profiles store.ProfileStore, goals store.GoalStore, ledger *Ledger, clock Clock, logger *log.Logger) *RewardService {
	return &RewardService{
		profiles: profiles,
		goals:    goals,
		ledger:   ledger,
		clock:    clock,
		logger:   log.NewStructuredLogger(logger.WithComponent(log.ComponentRewards)),
	}
}

// Evaluate awards every data driven achievement the user now qualifies for
// and returns one unlock message per fresh award.
func (s *RewardService) Evaluate(ctx context.Context, userID string) ([]string, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	txs, err := s.ledger.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	var goal *core.Goal
	g, err := s.goals.GetGoal(ctx, userID)
	switch {
	case err == nil:
		goal = &g
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("load goal: %w", err)
	}

	facts := rewards.CollectFacts(txs, goal, s.clock.Today())
	var notices []string
	for _, id := range rewards.Pending(profile, rewards.Evaluate(facts)) {
		msg, _, err := s.Award(ctx, userID, id)
		if err != nil {
			return notices, err
		}
		if msg != "" {
			notices = append(notices, msg)
		}
	}
	return notices, nil
}

// Award grants one achievement. It returns the unlock message and true only
// when the achievement was not held before.
func (s *RewardService) Award(ctx context.Context, userID, achievementID string) (string, bool, error) {
	a, ok := rewards.Lookup(achievementID)
	if !ok {
		return "", false, fmt.Errorf("unknown achievement %q", achievementID)
	}
	awarded, err := s.profiles.AwardAchievement(ctx, userID, a.ID, a.Points, s.clock.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return "", false, fmt.Errorf("award %s: %w", a.ID, err)
	}
	if !awarded {
		return "", false, nil
	}
	s.logger.LogAchievementAwarded(ctx, userID, a.ID, a.Points)
	return a.UnlockMessage(), true, nil
}
