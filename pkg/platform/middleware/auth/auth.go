// Package auth resolves the session cookie into request context.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"baias/internal/auth/models"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/requestcontext"
)

// SessionResolver looks up a live session by ID.
type SessionResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*models.Session, error)
}

// Sessions reads the session cookie and marks the request context with the
// session ID and admin flag. A missing, malformed, unknown or expired cookie
// leaves the request Anonymous; the request is never rejected here.
func Sessions(resolver SessionResolver, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			id, err := uuid.Parse(cookie.Value)
			if err != nil {
				logger.DebugContext(ctx, "malformed session cookie", "request_id", requestcontext.RequestID(ctx))
				next.ServeHTTP(w, r)
				return
			}
			session, err := resolver.Resolve(ctx, id)
			if err != nil {
				if !dErrors.HasCode(err, dErrors.CodeNotFound) {
					logger.ErrorContext(ctx, "failed to resolve session",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx = requestcontext.WithSessionID(ctx, session.ID)
			ctx = requestcontext.WithAdmin(ctx, session.IsAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
