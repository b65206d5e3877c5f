// Package sheets mirrors stored transactions into a spreadsheet.
package sheets

import (
	"context"

	"forefunds/internal/core"
)

// Header is the column layout of a mirror sheet.
var Header = []string{"Date", "Description", "Amount", "Type", "Category", "Source", "User", "ID"}

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		// Append adds one row per transaction and returns the updated range.
		Append(ctx context.Context, txs []core.Transaction) (rowRef string, err error)
	}
)

// Row renders tx in Header order. Amounts are plain rupee numbers so the
// sheet can sum them.
func Row(tx core.Transaction) []any {
	return []any{
		tx.Date.String(),
		tx.Description,
		tx.Amount.Rupees(),
		string(tx.Type),
		string(tx.Category),
		string(tx.Source),
		tx.UserID,
		tx.ID,
	}
}
