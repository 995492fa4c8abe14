package http

import (
	"net/http"
	"strings"

	"spesedash/internal/middleware/trace"
)

// sanitizeInput removes control characters (tabs and newlines survive) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// isHTMX reports whether r was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func requestID(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}
