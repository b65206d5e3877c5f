package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"forefunds/internal/amqp"
	"forefunds/internal/analyzer"
	"forefunds/internal/core"
	"forefunds/internal/log"
	"forefunds/internal/store"
)

const scannedFallbackDescription = "Scanned transaction"

// ScanResult is the outcome of a successful document analysis.
type ScanResult struct {
	Transactions []core.Transaction
	Skipped      int
	Message      string
	Notices      []string
}

type DocumentService struct {
	analyzer analyzer.Analyzer
	store    store.TransactionStore
	ledger   *Ledger
	events   *Events
	clock    Clock
	logger   *log.StructuredLogger
}

// NewDocumentService accepts a nil analyzer; Analyze then reports
// ErrAnalyzerDisabled.
func NewDocumentService(a analyzer.Analyzer, s store.TransactionStore, ledger *Ledger, events *Events, clock Clock, logger *log.Logger) *DocumentService {
	return &DocumentService{
		analyzer: a,
		store:    s,
		ledger:   ledger,
		events:   events,
		clock:    clock,
		logger:   log.NewStructuredLogger(logger.WithComponent(log.ComponentAnalyzer)),
	}
}

// Analyze extracts transactions from doc and stores every usable row in one
// batch. Rows the model got wrong beyond repair are skipped; when none are
// left the call fails with ErrExtractionFailed.
func (s *DocumentService) Analyze(ctx context.Context, userID string, doc analyzer.Document) (ScanResult, error) {
	if s.analyzer == nil {
		return ScanResult{}, ErrAnalyzerDisabled
	}
	today := s.clock.Today()
	rows, err := s.analyzer.Extract(ctx, doc, today)
	if err != nil {
		if errors.Is(err, analyzer.ErrNoTransactions) || errors.Is(err, analyzer.ErrEmptyReply) {
			return ScanResult{}, ErrExtractionFailed
		}
		return ScanResult{}, err
	}

	var txs []core.Transaction
	skipped := 0
	for _, row := range rows {
		tx, ok := normalizeRow(userID, row, today)
		if !ok {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	if len(txs) == 0 {
		return ScanResult{}, ErrExtractionFailed
	}

	saved, err := s.store.AddTransactions(ctx, txs)
	if err != nil {
		return ScanResult{}, fmt.Errorf("store scanned transactions: %w", err)
	}
	s.ledger.Invalidate(userID)
	s.logger.LogTransactionsAdded(ctx, userID, len(saved), string(core.SourceScan))

	ids := make([]string, len(saved))
	for i, t := range saved {
		ids[i] = t.ID
	}
	return ScanResult{
		Transactions: saved,
		Skipped:      skipped,
		Message:      fmt.Sprintf(msgTransactionsAdded, len(saved)),
		Notices:      s.events.Emit(ctx, amqp.NewEvent(amqp.EventDocumentScanned, userID, ids)),
	}, nil
}

// normalizeRow repairs what it safely can: signs on amounts, missing or
// malformed dates (today), unknown types (expense) and categories (Other).
func normalizeRow(userID string, row analyzer.Extracted, today core.Date) (core.Transaction, bool) {
	raw := strings.TrimLeft(strings.TrimSpace(string(row.Amount)), "+-")
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return core.Transaction{}, false
	}

	typ, err := core.ParseTxType(row.Type)
	if err != nil {
		typ = core.Expense
	}

	date, err := core.ParseDate(strings.TrimSpace(row.Date))
	if err != nil {
		date = today
	}

	category := core.ParseCategory(row.Category)
	if typ == core.Income && strings.TrimSpace(row.Category) == "" {
		category = core.IncomeCat
	}

	desc := strings.Join(strings.Fields(row.Description), " ")
	if desc == "" {
		desc = scannedFallbackDescription
	}

	tx := core.Transaction{
		UserID:      userID,
		Amount:      amount,
		Description: truncate(desc, 200),
		Date:        date,
		Type:        typ,
		Category:    category,
		Source:      core.SourceScan,
	}
	return tx, tx.Validate() == nil
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
