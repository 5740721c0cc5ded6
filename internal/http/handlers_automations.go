package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

type createAutomationRequest struct {
	UserID    int64                    `json:"userId"`
	Name      string                   `json:"name"`
	Amount    decimal.Decimal          `json:"amount"`
	Category  core.Category            `json:"category"`
	Frequency core.AutomationFrequency `json:"frequency"`
	IsActive  *bool                    `json:"isActive"`
}

func (s *Server) handleListAutomations(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	autos, err := s.svcs.Budget.ListAutomations(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(nonNil(autos)).Write(w)
}

func (s *Server) handleCreateAutomation(w http.ResponseWriter, r *http.Request) {
	var req createAutomationRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.svcs.Budget.CreateAutomation(r.Context(), core.Automation{
		UserID:    req.UserID,
		Name:      sanitizeInput(req.Name),
		Amount:    req.Amount,
		Category:  req.Category,
		Frequency: req.Frequency,
		IsActive:  boolOr(req.IsActive, true),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(a).Write(w)
}

func (s *Server) handleUpdateAutomation(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.AutomationPatch
	if err := DecodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.svcs.Budget.UpdateAutomation(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(a).Write(w)
}

func (s *Server) handleDeleteAutomation(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svcs.Budget.DeleteAutomation(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
