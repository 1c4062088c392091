// Package throttle enforces the per-client intake budget ahead of lead
// capture. Throttling is advisory protection for the delivery channel,
// not billing: checks fail open when the backing store is unavailable.
package throttle

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"leadgate/internal/tenant/models"
	"leadgate/internal/throttle/bucket"
	"leadgate/pkg/platform/httputil"
	"leadgate/pkg/requestcontext"
)

// window is the budget period for intake throttling.
const window = time.Minute

// TierResolver reports the tier for a client id so premium tenants get
// a larger budget. Unknown clients resolve to the standard budget.
type TierResolver interface {
	Resolve(ctx context.Context, clientID string) (*models.TenantConfig, error)
}

// ThrottleMetrics counts rejected requests.
type ThrottleMetrics interface {
	IncrementThrottled()
}

type Limiter struct {
	store     bucket.Store
	tiers     TierResolver
	perMinute int
	logger    *slog.Logger
	metrics   ThrottleMetrics
}

// Option configures the Limiter.
type Option func(*Limiter)

// WithMetrics wires rejection counting.
func WithMetrics(m ThrottleMetrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// New builds a Limiter. A perMinute of zero disables throttling.
func New(store bucket.Store, tiers TierResolver, perMinute int, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:     store,
		tiers:     tiers,
		perMinute: perMinute,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.perMinute <= 0 {
		logger.Info("intake throttling disabled")
	}
	return l
}

// budgetFor returns the per-window limit for a client. Premium tenants
// get double the base budget.
func (l *Limiter) budgetFor(ctx context.Context, clientID string) int {
	tenant, err := l.tiers.Resolve(ctx, clientID)
	if err != nil {
		return l.perMinute
	}
	if tenant.Tier == models.TierPremium {
		return l.perMinute * 2
	}
	return l.perMinute
}

// Middleware rejects requests over the client's intake budget with 429.
// Requests without a client id are keyed by source IP so anonymous
// traffic cannot exhaust a shared bucket.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.perMinute <= 0 || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := r.Header.Get("x-client-id")
			limit := l.perMinute
			if key != "" {
				limit = l.budgetFor(ctx, key)
			} else {
				key = "ip:" + requestcontext.ClientIP(ctx)
			}

			result, err := l.store.Allow(ctx, key, limit, window)
			if err != nil {
				l.logger.ErrorContext(ctx, "throttle check failed",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				if l.metrics != nil {
					l.metrics.IncrementThrottled()
				}
				l.logger.WarnContext(ctx, "intake request throttled",
					"request_id", requestcontext.RequestID(ctx),
					"key", key,
					"limit", result.Limit,
				)
				retryAfter := result.RetryAfter()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "Too many intake requests. Please try again later.",
					"retry_after": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
