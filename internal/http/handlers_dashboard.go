package http

import (
	"net/http"

	"budgetwise/internal/core"
	"budgetwise/internal/format"
	"budgetwise/internal/payperiod"
)

// PayPeriodResponse is the result of the pay period calculator.
type PayPeriodResponse struct {
	payperiod.Period
	Label       string    `json:"label"`
	Days        int       `json:"days"`
	NextPayDate core.Date `json:"nextPayDate"`
	Anchored    bool      `json:"anchored"`
	Policy      string    `json:"policy"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := PathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := QueryDate(r, "date")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.svcs.Dashboards.Get(r.Context(), userID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(d).Write(w)
}

// handlePayPeriod computes a period from query parameters alone. The anchor
// is used only when both payDay and lastPayDate are given. policy overrides
// the server's pay day policy.
func (s *Server) handlePayPeriod(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	schedule, err := core.ParsePaySchedule(q.Get("schedule"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := QueryDate(r, "date")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if date.IsZero() {
		date = core.Today()
	}
	payDay, err := QueryInt(r, "payDay")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if payDay != nil {
		if err := core.ValidatePayDay(schedule, *payDay); err != nil {
			writeError(w, r, err)
			return
		}
	}
	lastPayDate, err := QueryDate(r, "lastPayDate")
	if err != nil {
		writeError(w, r, err)
		return
	}

	policy := s.svcs.Budget.Policy()
	if raw := q.Get("policy"); raw != "" {
		if policy, err = payperiod.ParsePayDayPolicy(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	var anchor *payperiod.Anchor
	if payDay != nil && !lastPayDate.IsZero() {
		anchor = &payperiod.Anchor{PayDay: *payDay, LastPayDate: lastPayDate}
	}

	period, err := payperiod.Compute(schedule, date, anchor, payperiod.WithPayDayPolicy(policy))
	if err != nil {
		writeError(w, r, err)
		return
	}

	NewJSONResponse().Body(PayPeriodResponse{
		Period:      period,
		Label:       format.DateRange(period.Start, period.End),
		Days:        period.Days(),
		NextPayDate: period.NextPayDate(),
		Anchored:    period.Anchored(),
		Policy:      policy.String(),
	}).Write(w)
}
