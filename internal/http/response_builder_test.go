package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"budgetwise/internal/core"
	"budgetwise/internal/finance"
	"budgetwise/internal/storage"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "yes").
		Body(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Test") != "yes" {
		t.Error("custom header not set")
	}
	if w.Body.String() != "{\"id\":7}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().Status(http.StatusNoContent).Body("ignored").Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid amount", fmt.Errorf("record: %w", core.ErrInvalidAmount), http.StatusBadRequest},
		{"percentages", finance.ErrPercentagesSum, http.StatusBadRequest},
		{"ambiguous pay day", fmt.Errorf("%w: 31st", core.ErrAmbiguousConfiguration), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("get user 9: %w", storage.ErrNotFound), http.StatusNotFound},
		{"duplicate email", storage.ErrDuplicateEmail, http.StatusConflict},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("client error carries details", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := errors.Join(core.ErrEmptyName, core.ErrInvalidEmail)

		writeError(w, httptest.NewRequest(http.MethodPost, "/api/users", nil), err)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Status code = %d, want %d", w.Code, http.StatusBadRequest)
		}
		var body ErrorBody
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Message != "invalid request" {
			t.Errorf("Message = %q", body.Message)
		}
		if len(body.Errors) != 2 {
			t.Errorf("Errors = %v, want 2 entries", body.Errors)
		}
	})

	t.Run("server error hides its cause", func(t *testing.T) {
		w := httptest.NewRecorder()

		writeError(w, httptest.NewRequest(http.MethodGet, "/api/insights", nil), errors.New("sqlite: disk I/O error"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("Status code = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		var body ErrorBody
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Message != "internal server error" || len(body.Errors) != 0 {
			t.Errorf("body = %+v", body)
		}
	})
}
