package services

import (
	"context"
	"fmt"
	"strings"

	"forefunds/internal/amqp"
	"forefunds/internal/core"
	"forefunds/internal/store"
)

type GoalInput struct {
	Description string
	Amount      string
	Reward      string
}

type GoalService struct {
	store  store.GoalStore
	events *Events
	clock  Clock
}

func NewGoalService(s store.GoalStore, events *Events, clock Clock) *GoalService {
	return &GoalService{store: s, events: events, clock: clock}
}

// Get returns store.ErrNotFound when the user has no goal.
func (s *GoalService) Get(ctx context.Context, userID string) (core.Goal, error) {
	return s.store.GetGoal(ctx, userID)
}

// Set replaces the user's goal.
func (s *GoalService) Set(ctx context.Context, userID string, in GoalInput) (core.Goal, []string, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Goal{}, nil, err
	}
	g := core.Goal{
		UserID:      userID,
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Reward:      strings.TrimSpace(in.Reward),
		SetAt:       s.clock.now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, nil, err
	}
	if err := s.store.SetGoal(ctx, g); err != nil {
		return core.Goal{}, nil, fmt.Errorf("set goal: %w", err)
	}
	notices := s.events.Emit(ctx, amqp.NewEvent(amqp.EventGoalSet, userID, nil))
	return g, notices, nil
}

func (s *GoalService) Remove(ctx context.Context, userID string) error {
	return s.store.DeleteGoal(ctx, userID)
}
