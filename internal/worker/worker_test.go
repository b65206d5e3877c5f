package worker

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"forefunds/internal/amqp"
	"forefunds/internal/cache"
	"forefunds/internal/core"
	"forefunds/internal/log"
	"forefunds/internal/rewards"
	"forefunds/internal/services"
	sheetsmem "forefunds/internal/sheets/memory"
	"forefunds/internal/store/memory"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

type env struct {
	store  *memory.Store
	mirror *sheetsmem.Store
	worker *EventWorker
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithCache(t, nil)
}

func newEnvWithCache(t *testing.T, c cache.Cache[[]core.Transaction]) *env {
	t.Helper()
	st := memory.New()
	clock := services.Clock{Loc: time.UTC, Now: func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }}
	ledger := services.NewLedger(st, c)
	rs := services.NewRewardService(st, st, ledger, clock, testLogger())
	mirror := sheetsmem.New()
	if _, _, err := st.UpsertProfile(context.Background(), core.Profile{ID: "u1"}); err != nil {
		t.Fatal(err)
	}
	return &env{
		store:  st,
		mirror: mirror,
		worker: NewEventWorker(services.NewEventHandler(rs), st, mirror, testLogger()),
	}
}

func (e *env) addTx(t *testing.T) string {
	t.Helper()
	saved, err := e.store.AddTransactions(context.Background(), []core.Transaction{{
		UserID:      "u1",
		Amount:      core.Money{Cents: 1000},
		Description: "Tea",
		Date:        core.NewDate(2024, 6, 14),
		Type:        core.Expense,
		Category:    core.Food,
	}})
	if err != nil {
		t.Fatal(err)
	}
	return saved[0].ID
}

func TestEventWorker_Handle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.addTx(t)

	if err := e.worker.Handle(ctx, amqp.NewEvent(amqp.EventTransactionCreated, "u1", []string{id})); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	p, _ := e.store.GetProfile(ctx, "u1")
	if !p.HasAchievement(rewards.FirstTransaction) || p.Points != 10 {
		t.Fatalf("unexpected profile %+v", p)
	}
	rows := e.mirror.Rows()
	if len(rows) != 1 || rows[0][7] != id {
		t.Fatalf("unexpected mirror rows %v", rows)
	}

	// Redelivery repeats the mirror write but never the award.
	if err := e.worker.Handle(ctx, amqp.NewEvent(amqp.EventTransactionCreated, "u1", []string{id})); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if p, _ = e.store.GetProfile(ctx, "u1"); p.Points != 10 {
		t.Fatalf("points = %d after redelivery", p.Points)
	}
}

func TestEventWorker_CachedLedgerSeesExternalWrites(t *testing.T) {
	e := newEnvWithCache(t, cache.NewLRUCache[[]core.Transaction](10, time.Minute))
	ctx := context.Background()

	// Rows arrive through another process, so only the event tells the
	// worker its view is stale.
	for i := 0; i < 10; i++ {
		id := e.addTx(t)
		if err := e.worker.Handle(ctx, amqp.NewEvent(amqp.EventTransactionCreated, "u1", []string{id})); err != nil {
			t.Fatalf("Handle() #%d error: %v", i+1, err)
		}
	}
	p, _ := e.store.GetProfile(ctx, "u1")
	if !p.HasAchievement(rewards.TenTransactions) {
		t.Fatalf("ten_transactions not awarded, profile %+v", p)
	}
}

func TestEventWorker_HandleScanAndGoal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.addTx(t)

	if err := e.worker.Handle(ctx, amqp.NewEvent(amqp.EventDocumentScanned, "u1", []string{id})); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	p, _ := e.store.GetProfile(ctx, "u1")
	if !p.HasAchievement(rewards.FirstScan) {
		t.Fatal("first_scan not awarded")
	}

	if err := e.worker.Handle(ctx, amqp.NewEvent(amqp.EventGoalSet, "u1", nil)); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(e.mirror.Rows()) != 1 {
		t.Fatalf("goal events must not be mirrored, rows %v", e.mirror.Rows())
	}
}

func TestEventWorker_HandleDeleted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addTx(t)

	if err := e.worker.Handle(ctx, amqp.NewEvent(amqp.EventTransactionDeleted, "u1", []string{"removed"})); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(e.mirror.Rows()) != 0 {
		t.Fatalf("deletions must not be mirrored, rows %v", e.mirror.Rows())
	}
	// Rewards are still re-evaluated against what remains.
	p, _ := e.store.GetProfile(ctx, "u1")
	if !p.HasAchievement(rewards.FirstTransaction) {
		t.Fatalf("expected first_transaction, profile %+v", p)
	}
}

func TestEventWorker_HandleErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if err := e.worker.Handle(ctx, amqp.NewEvent(amqp.EventTransactionCreated, "ghost", nil)); err == nil {
		t.Fatal("expected error for unknown profile")
	}

	// A transaction deleted before consumption is skipped.
	if err := e.worker.Handle(ctx, amqp.NewEvent(amqp.EventTransactionCreated, "u1", []string{"gone"})); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(e.mirror.Rows()) != 0 {
		t.Fatal("nothing should be mirrored")
	}
}

func TestStreakSweeper_Lifecycle(t *testing.T) {
	var calls atomic.Int32
	ran := make(chan struct{}, 10)
	sweep := func(context.Context) (int, error) {
		calls.Add(1)
		ran <- struct{}{}
		return 1, nil
	}
	s := NewStreakSweeper(sweep, time.Hour, testLogger())
	ctx := context.Background()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("expected running")
	}
	if err := s.Start(ctx); err == nil {
		t.Fatal("expected error on double start")
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not run on start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if s.IsRunning() {
		t.Fatal("expected stopped")
	}
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("second Stop() error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestStreakSweeper_ErrorKeepsRunning(t *testing.T) {
	ran := make(chan struct{}, 10)
	s := NewStreakSweeper(func(context.Context) (int, error) {
		ran <- struct{}{}
		return 0, errors.New("db down")
	}, 10*time.Millisecond, testLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("sweep %d did not run", i)
		}
	}
	_ = s.Stop(context.Background())
}

type fakeConsumer struct {
	events []*amqp.Event
	err    error
}

func (f *fakeConsumer) Consume(ctx context.Context, handler amqp.Handler) error {
	for _, ev := range f.events {
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRun(t *testing.T) {
	e := newEnv(t)
	id := e.addTx(t)
	swept := make(chan struct{}, 1)
	sweeper := NewStreakSweeper(func(context.Context) (int, error) {
		select {
		case swept <- struct{}{}:
		default:
		}
		return 0, nil
	}, time.Hour, testLogger())
	consumer := &fakeConsumer{events: []*amqp.Event{amqp.NewEvent(amqp.EventTransactionCreated, "u1", []string{id})}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, consumer, e.worker, sweeper) }()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not run")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return")
	}
	if len(e.mirror.Rows()) != 1 {
		t.Fatalf("expected consumed event to be mirrored, rows %v", e.mirror.Rows())
	}
	if sweeper.IsRunning() {
		t.Fatal("sweeper still running")
	}
}

func TestRun_ConsumerFailure(t *testing.T) {
	e := newEnv(t)
	sweeper := NewStreakSweeper(func(context.Context) (int, error) { return 0, nil }, time.Hour, testLogger())
	boom := errors.New("broker gone")

	err := Run(context.Background(), &fakeConsumer{err: boom}, e.worker, sweeper)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
}
