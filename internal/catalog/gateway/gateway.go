// Package gateway loads and saves the whole catalog document through a
// storage backend. There is no versioning and no compare-and-swap: the last
// save wins.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"baias/internal/catalog/metrics"
	"baias/internal/catalog/models"
	"baias/internal/catalog/store/core"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/platform/sentinel"
)

// Gateway converts between the catalog tree and its stored JSON document.
type Gateway struct {
	backend core.Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used for storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics enables load/save instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// New wraps backend.
func New(backend core.Backend, opts ...Option) *Gateway {
	g := &Gateway{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Driver names the backend in use.
func (g *Gateway) Driver() core.Driver { return g.backend.Driver() }

// Load reads and decodes the stored document.
//
// Errors:
//   - CodeNotFound when the backend holds no document yet
//   - CodeStorageUnavailable when the backend cannot be read
//   - CodeCorruptDocument when the bytes are not a well-formed catalog
func (g *Gateway) Load(ctx context.Context) (*models.Catalog, error) {
	start := time.Now()
	driver := string(g.backend.Driver())

	raw, err := g.backend.Read(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		g.metrics.ObserveLoad(driver, metrics.OutcomeNotFound, 0, start)
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "catalog document not found")
	}
	if err != nil {
		g.metrics.ObserveLoad(driver, metrics.OutcomeUnavailable, 0, start)
		g.logger.ErrorContext(ctx, "catalog load failed", "driver", driver, "error", err)
		return nil, dErrors.Wrap(unavailable(err), dErrors.CodeStorageUnavailable, "storage unavailable")
	}

	c, err := Decode(raw)
	if err != nil {
		g.metrics.ObserveLoad(driver, metrics.OutcomeCorrupt, len(raw), start)
		g.logger.ErrorContext(ctx, "catalog document is corrupt", "driver", driver, "bytes", len(raw), "error", err)
		return nil, err
	}
	g.metrics.ObserveLoad(driver, metrics.OutcomeOK, len(raw), start)
	return c, nil
}

// Save encodes the whole tree and hands it to the backend, which replaces
// the stored document atomically.
func (g *Gateway) Save(ctx context.Context, c *models.Catalog) error {
	start := time.Now()
	driver := string(g.backend.Driver())

	doc, err := Encode(c)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode catalog")
	}
	if err := g.backend.Write(ctx, doc); err != nil {
		g.metrics.ObserveSave(driver, metrics.OutcomeUnavailable, len(doc), start)
		g.logger.ErrorContext(ctx, "catalog save failed", "driver", driver, "bytes", len(doc), "error", err)
		return dErrors.Wrap(unavailable(err), dErrors.CodeStorageUnavailable, "storage unavailable")
	}
	g.metrics.ObserveSave(driver, metrics.OutcomeOK, len(doc), start)
	return nil
}

// Health reports whether the backend can be read. An empty backend is healthy.
func (g *Gateway) Health(ctx context.Context) error {
	_, err := g.backend.Read(ctx)
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	return dErrors.Wrap(unavailable(err), dErrors.CodeStorageUnavailable, "storage unavailable")
}

// Encode renders the canonical form: two-space indentation, document member
// order, no HTML escaping, trailing newline. Re-encoding a decoded canonical
// document reproduces it byte for byte.
func Encode(c *models.Catalog) ([]byte, error) {
	if c == nil {
		c = models.NewCatalog()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a stored or submitted document. Any shape violation is
// reported as CodeCorruptDocument wrapping sentinel.ErrCorrupt.
func Decode(raw []byte) (*models.Catalog, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, corrupt(errors.New("empty document"))
	}
	c := models.NewCatalog()
	if err := json.Unmarshal(trimmed, c); err != nil {
		return nil, corrupt(err)
	}
	return c, nil
}

func corrupt(err error) error {
	return dErrors.Wrap(fmt.Errorf("%w: %w", sentinel.ErrCorrupt, err), dErrors.CodeCorruptDocument, "catalog document is corrupt")
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
}
