package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"forefunds/internal/log"
)

// StreakSweep is what the sweeper runs on every tick.
type StreakSweep func(ctx context.Context) (checked int, err error)

// StreakSweeper runs the daily streak check for every profile on an
// interval, so streaks advance for users who do not open the app.
type StreakSweeper struct {
	sweep    StreakSweep
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewStreakSweeper(sweep StreakSweep, interval time.Duration, logger *log.Logger) *StreakSweeper {
	return &StreakSweeper{
		sweep:    sweep,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (s *StreakSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("streak sweeper is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.runLoop(ctx, stopCh, doneCh)

	s.logger.InfoContext(ctx, "Streak sweeper started", "interval", s.interval)
	return nil
}

// Stop signals the loop and waits for the current sweep to finish.
func (s *StreakSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Streak sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Streak sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *StreakSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *StreakSweeper) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *StreakSweeper) runOnce(ctx context.Context) {
	start := time.Now()
	checked, err := s.sweep(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Streak sweep failed",
			log.FieldError, err,
			log.FieldOperation, log.OpStreak,
			log.FieldCount, checked)
		return
	}
	s.logger.DebugContext(ctx, "Streak sweep completed",
		log.FieldCount, checked,
		log.FieldDuration, time.Since(start).Milliseconds())
}
