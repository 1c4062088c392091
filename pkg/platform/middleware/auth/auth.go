// Package auth guards operator-facing routes with bearer tokens.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "leadgate/pkg/domain-errors"
	"leadgate/pkg/platform/httputil"
	"leadgate/pkg/requestcontext"
)

// OpsClaims represents the claims we expect from the token validator.
type OpsClaims struct {
	Role string
	JTI  string
}

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*OpsClaims, error)
}

// RequireOps rejects requests that do not carry a valid ops bearer token.
func RequireOps(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing bearer token",
					"request_id", requestID,
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			if _, err := validator.ValidateToken(token); err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
