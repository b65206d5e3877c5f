package memory

import (
	"context"
	"fmt"
	"sync"

	"forefunds/internal/core"
	"forefunds/internal/sheets"
)

// Store keeps mirrored rows in memory for tests.
type Store struct {
	mu   sync.Mutex
	rows [][]any
}

var _ sheets.TransactionWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the rows and returns a synthetic range reference.
func (s *Store) Append(_ context.Context, txs []core.Transaction) (string, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.rows) + 1
	for _, tx := range txs {
		s.rows = append(s.rows, sheets.Row(tx))
	}
	return fmt.Sprintf("mem!A%d:H%d", first, len(s.rows)), nil
}

// Rows returns a copy of every row appended so far.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}
