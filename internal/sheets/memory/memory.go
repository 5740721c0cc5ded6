// Package memory is an in-process ledger used by tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetwise/internal/core"
	ports "budgetwise/internal/sheets"
)

type Ledger struct {
	mu    sync.Mutex
	rows  [][]any
	index map[int64]int
}

var _ ports.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{index: map[int64]int{}}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (l *Ledger) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if t.ID <= 0 {
		return "", fmt.Errorf("%w: transaction without id", core.ErrInvalidInput)
	}
	if err := t.Validate(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if n, ok := l.index[t.ID]; ok {
		return ref(n), nil
	}
	l.rows = append(l.rows, ports.Row(t))
	n := len(l.rows)
	l.index[t.ID] = n
	return ref(n), nil
}

// Rows returns a copy of the exported rows in insertion order.
func (l *Ledger) Rows() [][]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]any, len(l.rows))
	copy(out, l.rows)
	return out
}

func ref(n int) string { return fmt.Sprintf("mem:%d", n) }
