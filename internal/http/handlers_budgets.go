package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

type createBudgetRequest struct {
	UserID                   int64           `json:"userId"`
	FixedCostsPercent        decimal.Decimal `json:"fixedCostsPercent"`
	InvestmentsPercent       decimal.Decimal `json:"investmentsPercent"`
	SavingsPercent           decimal.Decimal `json:"savingsPercent"`
	GuiltFreeSpendingPercent decimal.Decimal `json:"guiltFreeSpendingPercent"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svcs.Budget.GetBudget(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svcs.Budget.CreateBudget(r.Context(), core.Budget{
		UserID:                   req.UserID,
		FixedCostsPercent:        req.FixedCostsPercent,
		InvestmentsPercent:       req.InvestmentsPercent,
		SavingsPercent:           req.SavingsPercent,
		GuiltFreeSpendingPercent: req.GuiltFreeSpendingPercent,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(b).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.BudgetPatch
	if err := DecodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svcs.Budget.UpdateBudget(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}
