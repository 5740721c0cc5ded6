package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

type createTransactionRequest struct {
	UserID         int64           `json:"userId"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Category       core.Category   `json:"category"`
	Date           core.Date       `json:"date"`
	PayPeriodStart core.Date       `json:"payPeriodStart"`
	PayPeriodEnd   core.Date       `json:"payPeriodEnd"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.svcs.Budget.ListTransactions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(nonNil(txs)).Write(w)
}

func (s *Server) handleListTransactionsByPeriod(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := QueryDate(r, "start")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := QueryDate(r, "end")
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.svcs.Budget.ListTransactionsByPayPeriod(r.Context(), userID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(nonNil(txs)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svcs.Budget.RecordTransaction(r.Context(), core.Transaction{
		UserID:         req.UserID,
		Description:    sanitizeInput(req.Description),
		Amount:         req.Amount,
		Category:       req.Category,
		Date:           req.Date,
		PayPeriodStart: req.PayPeriodStart,
		PayPeriodEnd:   req.PayPeriodEnd,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.TransactionPatch
	if err := DecodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Description != nil {
		d := sanitizeInput(*patch.Description)
		patch.Description = &d
	}
	t, err := s.svcs.Budget.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svcs.Budget.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
