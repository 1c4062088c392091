// Package requestid assigns each request a unique identifier for log
// correlation. This is distinct from the lead trace id, which is a domain
// value assigned by the intake service and returned to callers.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"leadgate/pkg/requestcontext"
)

// Header is echoed back so clients and proxies can correlate logs.
const Header = "X-Request-Id"

// Middleware injects a request ID into the context, honoring an inbound
// header when a trusted proxy already assigned one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
