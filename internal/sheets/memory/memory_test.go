package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

func TestLedger_AppendTransaction(t *testing.T) {
	l := New()
	tx := core.Transaction{
		ID:          3,
		UserID:      1,
		Description: "Rent",
		Amount:      decimal.NewFromInt(-1200),
		Category:    core.FixedCosts,
		Date:        core.NewDate(2025, 2, 1),
	}

	ref, err := l.AppendTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	again, err := l.AppendTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != ref {
		t.Errorf("repeat ref = %q, want %q", again, ref)
	}
	if n := len(l.Rows()); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}

	tx.ID = 0
	if _, err := l.AppendTransaction(context.Background(), tx); err == nil {
		t.Error("expected error for transaction without id")
	}
}
