package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

type createUserRequest struct {
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Email          string           `json:"email"`
	PaySchedule    core.PaySchedule `json:"paySchedule"`
	PayDay         *int             `json:"payDay"`
	LastPayDate    *core.Date       `json:"lastPayDate"`
	AfterTaxIncome decimal.Decimal  `json:"afterTaxIncome"`
	IsOnboarded    bool             `json:"isOnboarded"`
}

func (req createUserRequest) user() core.User {
	return core.User{
		FirstName:      sanitizeInput(req.FirstName),
		LastName:       sanitizeInput(req.LastName),
		Email:          req.Email,
		PaySchedule:    req.PaySchedule,
		PayDay:         req.PayDay,
		LastPayDate:    req.LastPayDate,
		AfterTaxIncome: req.AfterTaxIncome,
		IsOnboarded:    req.IsOnboarded,
	}
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svcs.Budget.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(u).Write(w)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svcs.Budget.CreateUser(r.Context(), req.user())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(u).Write(w)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.UserPatch
	if err := DecodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svcs.Budget.UpdateUser(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(u).Write(w)
}
