// Package sheets defines the outbound ports for spreadsheet exports.
package sheets

import (
	"context"
	"strconv"

	"budgetwise/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerWriter appends recorded transactions to an external ledger.
	// Appending a transaction that is already present returns the existing
	// row reference.
	LedgerWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)

// Header is the first row of a ledger sheet. Columns follow the order
// produced by Row.
var Header = []any{"Date", "Description", "Category", "Amount", "Period start", "Period end", "ID"}

// Row converts a transaction to ledger columns.
func Row(t core.Transaction) []any {
	return []any{
		t.Date.String(),
		t.Description,
		t.Category.Label(),
		t.Amount.StringFixed(2),
		t.PayPeriodStart.String(),
		t.PayPeriodEnd.String(),
		RowID(t.ID),
	}
}

// RowID is the value stored in the ID column for a transaction.
func RowID(id int64) string {
	return strconv.FormatInt(id, 10)
}
