// Package cors answers cross-origin requests from the configured frontends.
package cors

import (
	"net/http"
	"strings"
)

const (
	allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowedHeaders = "Content-Type, Authorization, X-Requested-With, X-Request-ID, Accept, Origin"
	exposedHeaders = "X-Request-ID, Retry-After"
	maxAge         = "3600"
)

// Policy holds the set of origins allowed to call the API. A "*" entry
// allows any origin without credentials.
type Policy struct {
	origins  map[string]bool
	wildcard bool
}

func NewPolicy(origins []string) *Policy {
	p := &Policy{origins: make(map[string]bool, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			p.wildcard = true
		default:
			p.origins[o] = true
		}
	}
	return p
}

// IsAllowed reports whether origin may read responses.
func (p *Policy) IsAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	return p.wildcard || p.origins[origin]
}

// Middleware sets the CORS headers and answers preflight requests itself.
// Requests from origins outside the policy get no CORS headers, so browsers
// refuse to expose the response.
func (p *Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		h := w.Header()
		h.Add("Vary", "Origin")

		if p.IsAllowed(origin) {
			if p.origins[origin] {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			h.Set("Access-Control-Allow-Headers", allowedHeaders)
			h.Set("Access-Control-Expose-Headers", exposedHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
