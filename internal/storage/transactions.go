package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"forefunds/internal/core"
	"forefunds/internal/store"
)

const txColumns = "id, user_id, amount_cents, description, tx_date, tx_type, category, source, created_at"

// AddTransactions inserts every row or none.
func (r *Repository) AddTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	now := r.now()
	out := make([]core.Transaction, 0, len(txs))
	err := r.inTx(ctx, func(sqlTx *sql.Tx) error {
		stmt, err := sqlTx.PrepareContext(ctx,
			"INSERT INTO transactions ("+txColumns+") VALUES ("+placeholders(1, 9)+")")
		if err != nil {
			return fmt.Errorf("prepare insert transaction: %w", err)
		}
		defer stmt.Close()

		for _, tx := range txs {
			if tx.ID == "" {
				tx.ID = uuid.NewString()
			}
			if tx.Source == "" {
				tx.Source = core.SourceManual
			}
			tx.CreatedAt = now
			if _, err := stmt.ExecContext(ctx,
				tx.ID, tx.UserID, tx.Amount.Cents, tx.Description, tx.Date.String(),
				string(tx.Type), string(tx.Category), string(tx.Source), now.UnixMilli()); err != nil {
				return fmt.Errorf("insert transaction: %w", err)
			}
			out = append(out, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Transactions saved", "count", len(out), "dialect", r.dialect)
	return out, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE user_id = $1 ORDER BY tx_date DESC, created_at DESC, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions (user=%s): %w", userID, err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) GetTransactions(ctx context.Context, userID string, ids []string) ([]core.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE user_id = $1 AND id IN ("+placeholders(2, len(ids))+") ORDER BY tx_date, created_at",
		args...)
	if err != nil {
		return nil, fmt.Errorf("get transactions (user=%s): %w", userID, err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			tx                     core.Transaction
			date, typ, cat, source string
			createdAt              int64
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount.Cents, &tx.Description,
			&date, &typ, &cat, &source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		tx.Date = d
		tx.Type = core.TxType(typ)
		tx.Category = core.Category(cat)
		tx.Source = core.Source(source)
		tx.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
