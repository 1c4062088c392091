// Package requesttime provides middleware for request-scoped time. All
// operations within a single HTTP request share one "now" timestamp so the
// TraceRecord timestamp and audit logs never disagree within a request.
package requesttime

import (
	"net/http"
	"time"

	"leadgate/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context for consistent time references downstream.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
