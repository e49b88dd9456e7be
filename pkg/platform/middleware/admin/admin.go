// Package admin guards mutating routes behind an admin session.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"baias/pkg/platform/httputil"
	"baias/pkg/requestcontext"
)

// Guard decides whether the request's session may mutate.
type Guard interface {
	RequireAdmin(ctx context.Context) error
}

// RequireAdmin rejects the request with the guard's error (401 for an
// anonymous session) before it reaches next.
func RequireAdmin(guard Guard, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if err := guard.RequireAdmin(ctx); err != nil {
				logger.WarnContext(ctx, "admin session required",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
