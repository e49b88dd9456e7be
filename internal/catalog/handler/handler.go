package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"baias/internal/catalog/gateway"
	"baias/internal/catalog/models"
	"baias/internal/platform/middleware"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/platform/httputil"
	"baias/pkg/platform/middleware/admin"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the server-side catalog owner.
type Service interface {
	Document() *models.Catalog
	Replace(ctx context.Context, doc *models.Catalog) error
}

// Handler serves the catalog document.
type Handler struct {
	svc    Service
	guard  admin.Guard
	logger *slog.Logger
}

// New creates a catalog Handler. guard protects POST /update.
func New(svc Service, guard admin.Guard, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, guard: guard, logger: logger}
}

// Register registers the catalog routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/data", h.handleGetData)
	r.With(admin.RequireAdmin(h.guard, h.logger)).Post("/update", h.handleUpdate)
}

// handleGetData returns the whole catalog. No session required.
func (h *Handler) handleGetData(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.svc.Document())
}

// handleUpdate replaces the whole catalog with the request body.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "catalog document too large"))
			return
		}
		h.logger.WarnContext(ctx, "failed to read update body", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "unreadable request body"))
		return
	}

	doc, err := gateway.Decode(body)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected update body", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "body is not a catalog document"))
		return
	}

	if err := h.svc.Replace(ctx, doc); err != nil {
		h.logger.ErrorContext(ctx, "failed to save catalog", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w)
}
