// Package services orchestrates the ForeFunds use cases over the store,
// the analyzer and the event bus.
package services

import (
	"context"
	"errors"
	"time"

	"forefunds/internal/amqp"
	"forefunds/internal/cache"
	"forefunds/internal/core"
	"forefunds/internal/log"
	"forefunds/internal/rewards"
	"forefunds/internal/store"
)

var (
	ErrAnalyzerDisabled = errors.New("document analysis is not configured")
	ErrExtractionFailed = errors.New("no transactions could be extracted")
)

// User facing notices.
const (
	MsgExtractionFailed  = "Could not extract details. Please try another file."
	MsgInvalidDailyGoal  = "Please enter a valid goal amount."
	MsgDailyGoalUpdated  = "Daily goal updated!"
	MsgNeedTransactions  = "Add a transaction for analysis."
	msgTransactionsAdded = "%d transaction(s) added successfully!"
)

// Clock yields the current instant and the calendar day it falls on in the
// configured time zone.
type Clock struct {
	Loc *time.Location
	Now func() time.Time
}

func (c Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Clock) Today() core.Date {
	loc := c.Loc
	if loc == nil {
		loc = time.UTC
	}
	return core.DateOf(c.now().In(loc))
}

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.Event) error
}

// Ledger serves a user's transaction history through a read-through cache
// that every write invalidates.
type Ledger struct {
	store  store.TransactionStore
	loader *cache.Loader[[]core.Transaction]
}

// NewLedger caches histories in c; a nil c disables caching.
func NewLedger(s store.TransactionStore, c cache.Cache[[]core.Transaction]) *Ledger {
	l := &Ledger{store: s}
	if c != nil {
		l.loader = cache.NewLoader(c)
	}
	return l
}

// History returns the user's transactions, newest date first. The slice is
// shared with the cache and must not be modified.
func (l *Ledger) History(ctx context.Context, userID string) ([]core.Transaction, error) {
	if l.loader == nil {
		return l.store.ListTransactions(ctx, userID)
	}
	return l.loader.Get(ctx, userID, func(ctx context.Context) ([]core.Transaction, error) {
		return l.store.ListTransactions(ctx, userID)
	})
}

func (l *Ledger) Invalidate(userID string) {
	if l.loader != nil {
		l.loader.Invalidate(userID)
	}
}

// Events routes domain events to the broker when one is configured and
// handles them in-process otherwise, or when publishing fails.
type Events struct {
	publisher EventPublisher
	handler   *EventHandler
	logger    *log.Logger
}

func NewEvents(publisher EventPublisher, handler *EventHandler, logger *log.Logger) *Events {
	return &Events{publisher: publisher, handler: handler, logger: logger}
}

// Emit returns the notices produced when the event was handled in-process.
func (e *Events) Emit(ctx context.Context, ev *amqp.Event) []string {
	if e.publisher != nil {
		err := e.publisher.Publish(ctx, ev)
		if err == nil {
			return nil
		}
		e.logger.WarnContext(ctx, "Publishing event failed, handling in-process",
			log.FieldEvent, string(ev.Kind),
			log.FieldUserID, ev.UserID,
			log.FieldError, err)
	}
	notices, err := e.handler.Handle(ctx, ev)
	if err != nil {
		e.logger.ErrorContext(ctx, "Handling event failed",
			log.FieldEvent, string(ev.Kind),
			log.FieldUserID, ev.UserID,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeInternal)
	}
	return notices
}

// EventHandler applies the reward side effects of an event. The worker
// calls it for events consumed from the broker.
type EventHandler struct {
	rewards *RewardService
}

func NewEventHandler(rs *RewardService) *EventHandler {
	return &EventHandler{rewards: rs}
}

func (h *EventHandler) Handle(ctx context.Context, ev *amqp.Event) ([]string, error) {
	// The write behind ev may come from another process.
	h.rewards.ledger.Invalidate(ev.UserID)

	var notices []string
	if ev.Kind == amqp.EventDocumentScanned {
		msg, _, err := h.rewards.Award(ctx, ev.UserID, rewards.FirstScan)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			notices = append(notices, msg)
		}
	}
	more, err := h.rewards.Evaluate(ctx, ev.UserID)
	return append(notices, more...), err
}
