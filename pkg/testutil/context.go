package testutil

import (
	"net/http"

	"github.com/google/uuid"

	"baias/pkg/requestcontext"
)

// WithSessionID adds a session ID to the request context.
// If the sessionID is not a valid UUID, it will not be added to the context.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	if parsed, err := uuid.Parse(sessionID); err == nil {
		return req.WithContext(requestcontext.WithSessionID(req.Context(), parsed))
	}
	return req
}

// WithAdmin marks the request as coming from an admin session.
// This simulates what the session middleware does after a successful login.
func WithAdmin(req *http.Request) *http.Request {
	ctx := requestcontext.WithSessionID(req.Context(), uuid.New())
	return req.WithContext(requestcontext.WithAdmin(ctx, true))
}
