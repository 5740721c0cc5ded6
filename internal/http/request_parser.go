// This file implements helpers for reading path variables, query parameters
// and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"budgetwise/internal/core"
)

const maxBodyBytes = 1 << 20

// errMalformedBody wraps JSON decoding failures so they map to 400.
var errMalformedBody = fmt.Errorf("%w: malformed request body", core.ErrInvalidInput)

// PathID parses the named mux variable as a positive integer id.
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q is not a valid id", core.ErrInvalidInput, name, raw)
	}
	return id, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter. A missing value
// yields the zero Date.
func QueryDate(r *http.Request, name string) (core.Date, error) {
	raw := sanitizeInput(r.URL.Query().Get(name))
	if raw == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// QueryInt parses an optional integer query parameter.
func QueryInt(r *http.Request, name string) (*int, error) {
	raw := sanitizeInput(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", core.ErrInvalidInput, name, raw)
	}
	return &n, nil
}

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// boolOr returns *p, or def when p is nil.
func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
