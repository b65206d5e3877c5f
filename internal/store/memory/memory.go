// Package memory is a process-local store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"forefunds/internal/core"
	"forefunds/internal/store"
)

type Store struct {
	mu       sync.Mutex
	txs      map[string][]core.Transaction // by user
	goals    map[string]core.Goal
	profiles map[string]*core.Profile
	now      func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		txs:      map[string][]core.Transaction{},
		goals:    map[string]core.Goal{},
		profiles: map[string]*core.Profile{},
		now:      time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error              { return nil }

func (s *Store) AddTransactions(_ context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.Source == "" {
			tx.Source = core.SourceManual
		}
		tx.CreatedAt = now
		s.txs[tx.UserID] = append(s.txs[tx.UserID], tx)
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction(nil), s.txs[userID]...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetTransactions(_ context.Context, userID string, ids []string) ([]core.Transaction, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs[userID] {
		if _, ok := want[tx.ID]; ok {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.txs[userID]
	for i, tx := range list {
		if tx.ID == id {
			s.txs[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) GetGoal(_ context.Context, userID string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[userID]
	if !ok {
		return core.Goal{}, store.ErrNotFound
	}
	return g, nil
}

func (s *Store) SetGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.SetAt.IsZero() {
		g.SetAt = s.now()
	}
	s.goals[g.UserID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.goals, userID)
	return nil
}

func (s *Store) UpsertProfile(_ context.Context, p core.Profile) (core.Profile, bool, error) {
	if p.ID == "" {
		return core.Profile{}, false, core.ErrMissingUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.profiles[p.ID]; ok {
		cur.Email, cur.Name, cur.PhotoURL = p.Email, p.Name, p.PhotoURL
		return clone(cur), false, nil
	}
	fresh := core.Profile{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		PhotoURL:  p.PhotoURL,
		CreatedAt: s.now(),
	}
	s.profiles[p.ID] = &fresh
	return clone(&fresh), true, nil
}

func (s *Store) GetProfile(_ context.Context, id string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return core.Profile{}, store.ErrNotFound
	}
	return clone(p), nil
}

func (s *Store) ListProfileIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) UpdateStreak(_ context.Context, id string, count int, lastCheck core.Date) error {
	return s.withProfile(id, func(p *core.Profile) {
		p.StreakCount = count
		p.LastStreakCheck = lastCheck
	})
}

func (s *Store) SetDailyGoal(_ context.Context, id string, goal core.Money) error {
	return s.withProfile(id, func(p *core.Profile) { p.DailyGoal = goal })
}

func (s *Store) AwardAchievement(_ context.Context, id, achievementID string, points int64, at time.Time) (bool, error) {
	awarded := false
	err := s.withProfile(id, func(p *core.Profile) {
		if p.HasAchievement(achievementID) {
			return
		}
		p.Achievements = append(p.Achievements, core.AwardedAchievement{ID: achievementID, AwardedAt: at})
		p.Points += points
		awarded = true
	})
	return awarded, err
}

func (s *Store) Leaderboard(_ context.Context, limit int) ([]core.Profile, error) {
	s.mu.Lock()
	out := make([]core.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, clone(p))
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) withProfile(id string, fn func(*core.Profile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(p)
	return nil
}

func clone(p *core.Profile) core.Profile {
	c := *p
	c.Achievements = append([]core.AwardedAchievement(nil), p.Achievements...)
	return c
}
