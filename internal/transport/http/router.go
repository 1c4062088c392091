// Package httptransport assembles the public router. Handlers register
// their own routes; this package only decides ordering and which
// middleware wraps which surface.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	claimhandler "leadgate/internal/claim/handler"
	leadhandler "leadgate/internal/lead/handler"
	opshandler "leadgate/internal/ops/handler"
	"leadgate/internal/throttle"
	"leadgate/pkg/platform/httputil"
	"leadgate/pkg/platform/middleware/auth"
	"leadgate/pkg/platform/middleware/metadata"
	"leadgate/pkg/platform/middleware/recovery"
	"leadgate/pkg/platform/middleware/requestid"
	"leadgate/pkg/platform/middleware/requesttime"
)

// ReadyCheck reports one backing dependency's availability for the
// readiness probe.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Lead      *leadhandler.Handler
	Claim     *claimhandler.Handler
	Ops       *opshandler.Handler
	Throttle  *throttle.Limiter
	Validator auth.TokenValidator
	Ready     []ReadyCheck
	Logger    *slog.Logger
}

// New builds the full route tree. The intake surface carries the
// throttle; analytics routes sit behind the ops bearer token; the claim
// webhook and health stay open because the provider cannot authenticate.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(recovery.Middleware(deps.Logger))
	r.Use(requesttime.Middleware)
	r.Use(requestid.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Group(func(r chi.Router) {
		if deps.Throttle != nil {
			r.Use(deps.Throttle.Middleware())
		}
		deps.Lead.Register(r)
	})

	deps.Claim.Register(r)
	deps.Ops.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireOps(deps.Validator, deps.Logger))
		deps.Lead.RegisterAnalytics(r)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/readyz", readiness(deps.Ready, deps.Logger))

	return r
}

// readiness pings each backing dependency with a short deadline. The
// intake health endpoint keeps its fixed wire contract; this probe is
// for orchestrators.
func readiness(checks []ReadyCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var failed []string
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed",
					"dependency", c.Name,
					"error", err,
				)
				failed = append(failed, c.Name)
			}
		}
		if len(failed) > 0 {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"failed": failed,
			})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}
