package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPolicy_IsAllowed(t *testing.T) {
	p := NewPolicy([]string{"https://budget.example.com/", " http://localhost:5173 ", ""})

	testCases := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"Allowed origin with trailing slash in config", "https://budget.example.com", true},
		{"Allowed origin with spaces in config", "http://localhost:5173", true},
		{"Disallowed origin", "https://evil.com", false},
		{"Empty origin", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.IsAllowed(tc.origin); got != tc.expected {
				t.Errorf("IsAllowed(%q) = %v, want %v", tc.origin, got, tc.expected)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	testCases := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
		wantCreds  string
	}{
		{"allowed origin", []string{"http://localhost:5173"}, http.MethodGet, "http://localhost:5173", false, http.StatusTeapot, "http://localhost:5173", "true"},
		{"unknown origin", []string{"http://localhost:5173"}, http.MethodGet, "https://evil.com", false, http.StatusTeapot, "", ""},
		{"preflight", []string{"http://localhost:5173"}, http.MethodOptions, "http://localhost:5173", true, http.StatusNoContent, "http://localhost:5173", "true"},
		{"plain options reaches handler", []string{"http://localhost:5173"}, http.MethodOptions, "http://localhost:5173", false, http.StatusTeapot, "http://localhost:5173", "true"},
		{"wildcard", []string{"*"}, http.MethodGet, "https://anywhere.test", false, http.StatusTeapot, "*", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/insights", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()

			NewPolicy(tc.origins).Middleware(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tc.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tc.wantCreds {
				t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, tc.wantCreds)
			}
		})
	}
}
