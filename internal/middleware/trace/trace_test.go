package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"budgetwise/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	m := NewMiddleware(func(*http.Request) string { return "10.0.0.1" }, log.Discard())

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/insights", nil))

	got := rec.Header().Get(HeaderRequestID)
	if !strings.HasPrefix(got, "req_") {
		t.Fatalf("request id = %q, want req_ prefix", got)
	}
	if seen != got {
		t.Errorf("handler saw %q, response carries %q", seen, got)
	}
}

func TestMiddleware_KeepsIncomingRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"well formed", "abc-123", true},
		{"blank", "   ", false},
		{"control characters", "abc\x01def", false},
		{"too long", strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMiddleware(nil, nil)
			h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderRequestID, tt.header)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if tt.keep && got != tt.header {
				t.Errorf("request id = %q, want %q", got, tt.header)
			}
			if !tt.keep && !strings.HasPrefix(got, "req_") {
				t.Errorf("request id = %q, want a generated one", got)
			}
		})
	}
}

func TestMiddleware_Metrics(t *testing.T) {
	m := NewMiddleware(nil, nil)
	status := http.StatusOK
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	for _, s := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		status = s
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	got := m.GetMetrics()
	if got.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", got.TotalRequests)
	}
	if got.ServerErrors != 1 {
		t.Errorf("ServerErrors = %d, want 1", got.ServerErrors)
	}
	if got.AverageResponseTime < 0 {
		t.Errorf("AverageResponseTime = %d, want >= 0", got.AverageResponseTime)
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
