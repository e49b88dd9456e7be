package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"baias/internal/auth/models"
	"baias/internal/platform/middleware"
	"baias/pkg/platform/httputil"
	"baias/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the admin guard.
type Service interface {
	Login(ctx context.Context, current uuid.UUID, password string) (*models.Session, error)
	Logout(ctx context.Context, id uuid.UUID) error
	Status(ctx context.Context) models.Status
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler serves login, logout and status.
type Handler struct {
	svc    Service
	cookie CookieConfig
	logger *slog.Logger
}

func New(svc Service, cookie CookieConfig, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, cookie: cookie, logger: logger}
}

// Register registers the session routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/status", h.handleStatus)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	session, err := h.svc.Login(ctx, requestcontext.SessionID(ctx), req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	http.SetCookie(w, h.sessionCookie(session.ID.String(), session.ExpiresAt))
	httputil.WriteSuccess(w)
}

// handleLogout always ends Anonymous: the cookie is cleared even when the
// stored session could not be deleted.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.Logout(ctx, requestcontext.SessionID(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete session on logout",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
	}
	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	httputil.WriteSuccess(w)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.svc.Status(r.Context()))
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
