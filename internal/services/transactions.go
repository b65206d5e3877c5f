package services

import (
	"context"
	"fmt"
	"strings"

	"forefunds/internal/amqp"
	"forefunds/internal/core"
	"forefunds/internal/log"
	"forefunds/internal/store"
)

// TransactionInput is a manually entered transaction before validation.
type TransactionInput struct {
	Amount      string
	Description string
	Date        string
	Type        string
	Category    string
}

type TransactionService struct {
	store  store.TransactionStore
	ledger *Ledger
	events *Events
	clock  Clock
	logger *log.StructuredLogger
}

func NewTransactionService(s store.TransactionStore, ledger *Ledger, events *Events, clock Clock, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:  s,
		ledger: ledger,
		events: events,
		clock:  clock,
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentLedger)),
	}
}

// Parse validates in for userID. An empty date means today.
func (s *TransactionService) Parse(userID string, in TransactionInput) (core.Transaction, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date := s.clock.Today()
	if strings.TrimSpace(in.Date) != "" {
		if date, err = core.ParseDate(in.Date); err != nil {
			return core.Transaction{}, err
		}
	}
	typ, err := core.ParseTxType(in.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	category := core.ParseCategory(in.Category)
	if typ == core.Income && strings.TrimSpace(in.Category) == "" {
		category = core.IncomeCat
	}

	tx := core.Transaction{
		UserID:      userID,
		Amount:      amount,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		Type:        typ,
		Category:    category,
		Source:      core.SourceManual,
	}
	return tx, tx.Validate()
}

// Add stores a manual transaction and returns it with any unlock notices.
func (s *TransactionService) Add(ctx context.Context, userID string, in TransactionInput) (core.Transaction, []string, error) {
	tx, err := s.Parse(userID, in)
	if err != nil {
		return core.Transaction{}, nil, err
	}
	saved, err := s.store.AddTransactions(ctx, []core.Transaction{tx})
	if err != nil {
		return core.Transaction{}, nil, fmt.Errorf("add transaction: %w", err)
	}
	s.ledger.Invalidate(userID)
	s.logger.LogTransactionsAdded(ctx, userID, 1, string(core.SourceManual))

	notices := s.events.Emit(ctx, amqp.NewEvent(amqp.EventTransactionCreated, userID, []string{saved[0].ID}))
	return saved[0], notices, nil
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.ledger.History(ctx, userID)
}

// Delete removes one of the user's transactions. Achievements already
// earned are kept, but a smaller history can still unlock new ones, such
// as goal_achieved once an expense is gone.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) ([]string, error) {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return nil, err
	}
	s.ledger.Invalidate(userID)
	return s.events.Emit(ctx, amqp.NewEvent(amqp.EventTransactionDeleted, userID, []string{id})), nil
}
