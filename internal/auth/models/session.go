package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one browser's admin state. There is no per-user identity: a
// session is either Anonymous (IsAdmin false) or Admin.
type Session struct {
	ID         uuid.UUID `json:"id"`
	IsAdmin    bool      `json:"is_admin"`
	ClientIP   string    `json:"client_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewSession starts an anonymous session that lives for ttl.
func NewSession(now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:         uuid.New(),
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Status is the GET /status body.
type Status struct {
	IsAdmin bool `json:"isAdmin"`
}

// LoginRequest is the POST /login body.
type LoginRequest struct {
	Password string `json:"password"`
}
