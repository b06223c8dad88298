package server

import (
	"net/http"
	"strings"
)

// DefaultCORSHeaders are the request headers the campus map client sends.
var DefaultCORSHeaders = []string{
	"Content-Type", "Authorization", "ngrok-skip-browser-warning", "token",
	"lat", "long", "start", "end", "is_group",
}

// CORSPolicy lists the browser origins allowed to call the API. "*" admits
// any origin. Empty Headers means DefaultCORSHeaders.
type CORSPolicy struct {
	Origins     []string
	Headers     []string
	Credentials bool
}

// Enabled reports whether any origin is allowed.
func (p CORSPolicy) Enabled() bool {
	for _, o := range p.Origins {
		if strings.TrimSpace(o) != "" {
			return true
		}
	}
	return false
}

// Wrap answers preflights itself and decorates cross-origin responses.
// Requests without an allowed Origin pass through untouched, except
// preflights, which are refused with 403.
func (p CORSPolicy) Wrap(next http.Handler) http.Handler {
	anyOrigin := false
	origins := make(map[string]bool, len(p.Origins))
	for _, o := range p.Origins {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			anyOrigin = true
		default:
			origins[o] = true
		}
	}

	headers := p.Headers
	if len(headers) == 0 {
		headers = DefaultCORSHeaders
	}
	allowHeaders := strings.Join(headers, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		preflight := r.Method == http.MethodOptions

		if origin == "" || !(anyOrigin || origins[origin]) {
			if preflight {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Expose-Headers", "Content-Type, Authorization")
		if p.Credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if preflight {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
