package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

type createGoalRequest struct {
	UserID        int64             `json:"userId"`
	Name          string            `json:"name"`
	TargetAmount  decimal.Decimal   `json:"targetAmount"`
	CurrentAmount decimal.Decimal   `json:"currentAmount"`
	Category      core.GoalCategory `json:"category"`
	IsActive      *bool             `json:"isActive"`
}

type contributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	goals, err := s.svcs.Budget.ListGoals(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(nonNil(goals)).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svcs.Budget.CreateGoal(r.Context(), core.Goal{
		UserID:        req.UserID,
		Name:          sanitizeInput(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Category:      req.Category,
		IsActive:      boolOr(req.IsActive, true),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(g).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.GoalPatch
	if err := DecodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svcs.Budget.UpdateGoal(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svcs.Budget.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req contributionRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svcs.Budget.Contribute(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}
