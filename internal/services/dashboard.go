package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forefunds/internal/analytics"
	"forefunds/internal/core"
	"forefunds/internal/store"
)

// Dashboard is the month overview.
type Dashboard struct {
	Today        core.Date
	Month        analytics.Totals
	AllTime      analytics.Totals
	Projected    core.Money
	Goal         *core.Goal
	GoalPercent  float64
	GoalAchieved bool
	Recent       []core.Transaction
}

const recentCount = 5

type DashboardService struct {
	ledger *Ledger
	goals  store.GoalStore
	clock  Clock
}

func NewDashboardService(ledger *Ledger, goals store.GoalStore, clock Clock) *DashboardService {
	return &DashboardService{ledger: ledger, goals: goals, clock: clock}
}

func (s *DashboardService) goal(ctx context.Context, userID string) (*core.Goal, error) {
	g, err := s.goals.GetGoal(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load goal: %w", err)
	}
	return &g, nil
}

func (s *DashboardService) Overview(ctx context.Context, userID string) (Dashboard, error) {
	txs, err := s.ledger.History(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	goal, err := s.goal(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	today := s.clock.Today()
	d := Dashboard{
		Today:   today,
		Month:   analytics.MonthTotals(txs, today.Year(), today.Month()),
		AllTime: analytics.AllTimeTotals(txs),
		Goal:    goal,
	}
	d.Projected = analytics.ProjectSpending(d.Month.Expenses, today)
	if goal != nil {
		d.GoalPercent, d.GoalAchieved = analytics.GoalProgress(d.Month.Balance(), goal.Amount)
	}
	if len(txs) > recentCount {
		d.Recent = txs[:recentCount]
	} else {
		d.Recent = txs
	}
	return d, nil
}

func (s *DashboardService) Trend(ctx context.Context, userID string) ([]analytics.TrendPoint, error) {
	txs, err := s.ledger.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analytics.Trend(txs, s.clock.Today()), nil
}

// Heatmap defaults to the current month when year or month is zero.
func (s *DashboardService) Heatmap(ctx context.Context, userID string, year int, month time.Month) (analytics.Heatmap, error) {
	txs, err := s.ledger.History(ctx, userID)
	if err != nil {
		return analytics.Heatmap{}, err
	}
	if year == 0 || month == 0 {
		today := s.clock.Today()
		year, month = today.Year(), today.Month()
	}
	return analytics.BuildHeatmap(txs, year, month), nil
}

func (s *DashboardService) ForeScore(ctx context.Context, userID string) (analytics.ForeScore, error) {
	txs, err := s.ledger.History(ctx, userID)
	if err != nil {
		return analytics.ForeScore{}, err
	}
	goal, err := s.goal(ctx, userID)
	if err != nil {
		return analytics.ForeScore{}, err
	}
	today := s.clock.Today()
	var goalCents int64
	if goal != nil {
		goalCents = goal.Amount.Cents
	}
	return analytics.ScoreMonth(analytics.MonthTotals(txs, today.Year(), today.Month()), goalCents), nil
}

// MonthTransactions lists the user's transactions dated in today's month.
func (s *DashboardService) MonthTransactions(ctx context.Context, userID string) ([]core.Transaction, analytics.Totals, error) {
	txs, err := s.ledger.History(ctx, userID)
	if err != nil {
		return nil, analytics.Totals{}, err
	}
	today := s.clock.Today()
	var month []core.Transaction
	for _, t := range txs {
		if t.Date.SameMonth(today.Year(), today.Month()) {
			month = append(month, t)
		}
	}
	return month, analytics.MonthTotals(txs, today.Year(), today.Month()), nil
}
