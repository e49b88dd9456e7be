// Package httpapi assembles the HTTP surface: one middleware chain in front
// of the catalog and session handlers plus the operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"baias/internal/platform/metrics"
	"baias/internal/platform/middleware"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/platform/httputil"
	authmw "baias/pkg/platform/middleware/auth"
	"baias/pkg/platform/middleware/metadata"
	"baias/pkg/platform/middleware/requesttime"
)

// DefaultTimeout bounds every request context.
const DefaultTimeout = 30 * time.Second

// Registrar is implemented by the feature handlers.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether the catalog backend is readable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Checks runs every checker in order and fails on the first error. Errors
// without a domain code are reported as storage_unavailable.
type Checks []HealthChecker

func (c Checks) Health(ctx context.Context) error {
	for _, hc := range c {
		if err := hc.Health(ctx); err != nil {
			if dErrors.CodeOf(err) == dErrors.CodeInternal {
				return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "dependency unavailable")
			}
			return err
		}
	}
	return nil
}

// Deps are the pieces NewRouter wires together.
type Deps struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Sessions   authmw.SessionResolver
	CookieName string
	Health     HealthChecker
	Handlers   []Registrar
	Timeout    time.Duration
}

// NewRouter builds the chi router. Middleware order: Recovery, RequestID,
// RequestTime, ClientMetadata, Logger, Timeout, then for JSON routes
// ContentTypeJSON, Latency and Sessions.
func NewRouter(d Deps) http.Handler {
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(d.Timeout))

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(d.Metrics))
		r.Get("/healthz", healthz(d.Health, d.Logger))

		r.Group(func(r chi.Router) {
			r.Use(authmw.Sessions(d.Sessions, d.CookieName, d.Logger))
			for _, h := range d.Handlers {
				h.Register(r)
			}
		})
	})
	return r
}

func healthz(hc HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if hc != nil {
			if err := hc.Health(ctx); err != nil {
				logger.ErrorContext(ctx, "health check failed", "error", err, "request_id", middleware.GetRequestID(ctx))
				httputil.WriteError(w, err)
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
