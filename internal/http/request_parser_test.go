package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"budgetwise/internal/core"
)

func TestPathID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{"valid id", "42", 42, false},
		{"zero", "0", 0, true},
		{"not a number", "abc", 0, true},
		{"overflow", "99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": tt.value})
			got, err := PathID(req, "id")
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidInput) {
					t.Errorf("PathID() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PathID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PathID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQueryDate(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    string
		wantErr bool
	}{
		{"missing", "/", "", false},
		{"date", "/?date=2025-01-20", "2025-01-20", false},
		{"padded", "/?date=%202025-01-20%20", "2025-01-20", false},
		{"garbage", "/?date=yesterday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QueryDate(httptest.NewRequest(http.MethodGet, tt.target, nil), "date")
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidDate) {
					t.Errorf("QueryDate() error = %v, want ErrInvalidDate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("QueryDate() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("QueryDate() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	got, err := QueryInt(httptest.NewRequest(http.MethodGet, "/?payDay=15", nil), "payDay")
	if err != nil || got == nil || *got != 15 {
		t.Errorf("QueryInt() = %v, %v, want 15", got, err)
	}

	got, err = QueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "payDay")
	if err != nil || got != nil {
		t.Errorf("QueryInt() missing = %v, %v, want nil, nil", got, err)
	}

	if _, err := QueryInt(httptest.NewRequest(http.MethodGet, "/?payDay=x", nil), "payDay"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("QueryInt() error = %v, want ErrInvalidInput", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string    `json:"name"`
		Date core.Date `json:"date"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid", `{"name":"Rent","date":"2025-01-20"}`, nil},
		{"empty body", ``, core.ErrInvalidInput},
		{"not json", `name=Rent`, core.ErrInvalidInput},
		{"unknown field", `{"name":"Rent","color":"red"}`, core.ErrInvalidInput},
		{"trailing object", `{"name":"Rent"}{"name":"Food"}`, core.ErrInvalidInput},
		{"bad date keeps its error", `{"date":"20/01/2025"}`, core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(req, &p)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v", err)
				}
				if p.Name != "Rent" || p.Date.String() != "2025-01-20" {
					t.Errorf("DecodeJSON() = %+v", p)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeJSON() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Groceries  ", "Groceries"},
		{"Rent\x00\x07", "Rent"},
		{"line\tone\nline two", "line\tone\nline two"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
