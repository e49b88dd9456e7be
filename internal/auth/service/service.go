package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"baias/internal/auth/metrics"
	"baias/internal/auth/models"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/platform/sentinel"
	"baias/pkg/requestcontext"
)

// DefaultSessionTTL bounds how long an admin stays logged in without
// logging in again.
const DefaultSessionTTL = 12 * time.Hour

// touchInterval throttles LastSeenAt writes so reads do not hit the store
// on every request.
const touchInterval = time.Minute

// Login outcomes for metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service is the admin guard. It checks the shared admin password and tracks
// which sessions are admin. The password is compared as plaintext; anyone
// holding it is admin.
type Service struct {
	sessions SessionStore
	password []byte
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(sessions SessionStore, password string, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		password: []byte(password),
		ttl:      DefaultSessionTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// TTL is the lifetime of sessions created by Login.
func (s *Service) TTL() time.Duration { return s.ttl }

// Login makes the caller admin when password matches. On success the previous
// session (if any) is discarded and a fresh admin session is returned, so a
// session ID seen before login is useless afterwards.
//
// On mismatch the current session, if any, drops back to Anonymous and
// CodeUnauthorized is returned.
func (s *Service) Login(ctx context.Context, current uuid.UUID, password string) (*models.Session, error) {
	requestID := requestcontext.RequestID(ctx)
	if subtle.ConstantTimeCompare([]byte(password), s.password) != 1 {
		s.metrics.IncrementLogin(OutcomeRejected)
		s.logger.WarnContext(ctx, "admin login rejected",
			"client_ip", requestcontext.ClientIP(ctx),
			"request_id", requestID,
		)
		if err := s.demote(ctx, current); err != nil {
			s.logger.ErrorContext(ctx, "failed to demote session", "error", err, "request_id", requestID)
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "incorrect password")
	}

	now := requestcontext.Now(ctx)
	session := models.NewSession(now, s.ttl)
	session.IsAdmin = true
	session.ClientIP = requestcontext.ClientIP(ctx)
	session.UserAgent = requestcontext.UserAgent(ctx)
	if err := s.sessions.Save(ctx, session); err != nil {
		s.metrics.IncrementLogin(OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to save session")
	}
	if current != uuid.Nil {
		if err := s.sessions.Delete(ctx, current); err != nil {
			s.logger.WarnContext(ctx, "failed to discard previous session", "error", err, "request_id", requestID)
		}
	}
	s.metrics.IncrementLogin(OutcomeSuccess)
	s.logger.InfoContext(ctx, "admin logged in", "session_id", session.ID.String(), "request_id", requestID)
	return session, nil
}

func (s *Service) demote(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	session, err := s.sessions.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !session.IsAdmin {
		return nil
	}
	session.IsAdmin = false
	return s.sessions.Save(ctx, session)
}

// Logout ends the session. It succeeds whether or not the session existed.
func (s *Service) Logout(ctx context.Context, id uuid.UUID) error {
	s.metrics.IncrementLogout()
	if id == uuid.Nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to delete session")
	}
	return nil
}

// Resolve returns the live session for id, refreshing LastSeenAt at most once
// per minute. Unknown or expired IDs yield CodeNotFound.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "session not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load session")
	}
	now := requestcontext.Now(ctx)
	if now.Sub(session.LastSeenAt) >= touchInterval {
		session.LastSeenAt = now
		if err := s.sessions.Save(ctx, session); err != nil {
			s.logger.WarnContext(ctx, "failed to touch session", "error", err,
				"request_id", requestcontext.RequestID(ctx))
		}
	}
	return session, nil
}

// Status reports the admin flag of the request's session.
func (s *Service) Status(ctx context.Context) models.Status {
	return models.Status{IsAdmin: requestcontext.IsAdmin(ctx)}
}

// RequireAdmin fails with CodeUnauthorized unless the request's session is admin.
func (s *Service) RequireAdmin(ctx context.Context) error {
	if requestcontext.IsAdmin(ctx) {
		return nil
	}
	s.metrics.IncrementDenied()
	return dErrors.New(dErrors.CodeUnauthorized, "admin session required")
}
