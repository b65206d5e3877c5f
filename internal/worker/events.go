// Package worker runs the background side of ForeFunds: reward evaluation
// for events consumed from the broker, the spreadsheet mirror and the
// periodic streak sweep.
package worker

import (
	"context"
	"fmt"

	"forefunds/internal/amqp"
	"forefunds/internal/log"
	"forefunds/internal/services"
	"forefunds/internal/sheets"
	"forefunds/internal/store"
)

// EventWorker handles one broker event at a time.
type EventWorker struct {
	handler *services.EventHandler
	txs     store.TransactionStore
	mirror  sheets.TransactionWriter
	logger  *log.StructuredLogger
	plain   *log.Logger
}

// NewEventWorker accepts a nil mirror, which disables the spreadsheet copy.
func NewEventWorker(handler *services.EventHandler, txs store.TransactionStore, mirror sheets.TransactionWriter, logger *log.Logger) *EventWorker {
	l := logger.WithComponent(log.ComponentWorker)
	return &EventWorker{
		handler: handler,
		txs:     txs,
		mirror:  mirror,
		logger:  log.NewStructuredLogger(l),
		plain:   l,
	}
}

// Handle satisfies amqp.Handler. Reward evaluation is idempotent, so a
// redelivered event only repeats the mirror write.
func (w *EventWorker) Handle(ctx context.Context, ev *amqp.Event) error {
	w.plain.DebugContext(ctx, "Processing event",
		log.FieldEvent, string(ev.Kind),
		log.FieldUserID, ev.UserID,
		log.FieldCount, len(ev.TransactionIDs))

	notices, err := w.handler.Handle(ctx, ev)
	if err != nil {
		w.logger.LogError(ctx, "Reward evaluation failed", err, log.ErrorTypeInternal, log.OpAward,
			log.NewFields().WithUser(ev.UserID))
		return fmt.Errorf("handle %s: %w", ev.Kind, err)
	}
	for _, n := range notices {
		w.plain.InfoContext(ctx, "Reward notice", log.FieldUserID, ev.UserID, "notice", n)
	}

	if err := w.mirrorTransactions(ctx, ev); err != nil {
		w.logger.LogError(ctx, "Sheets mirror failed", err, log.ErrorTypeUpstream, log.OpMirror,
			log.NewFields().WithUser(ev.UserID))
		return err
	}
	return nil
}

func (w *EventWorker) mirrorTransactions(ctx context.Context, ev *amqp.Event) error {
	if w.mirror == nil || len(ev.TransactionIDs) == 0 {
		return nil
	}
	if ev.Kind != amqp.EventTransactionCreated && ev.Kind != amqp.EventDocumentScanned {
		return nil
	}
	txs, err := w.txs.GetTransactions(ctx, ev.UserID, ev.TransactionIDs)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	// Deleted before the event was consumed.
	if len(txs) == 0 {
		return nil
	}
	ref, err := w.mirror.Append(ctx, txs)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}
	w.plain.InfoContext(ctx, "Mirrored transactions",
		log.FieldUserID, ev.UserID,
		log.FieldCount, len(txs),
		"sheets_ref", ref)
	return nil
}
