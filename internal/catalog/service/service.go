package service

import (
	"context"
	"log/slog"
	"sync"

	"baias/internal/catalog/metrics"
	"baias/internal/catalog/models"
	dErrors "baias/pkg/domain-errors"
)

// Store is the persistence gateway the service writes through.
type Store interface {
	Load(ctx context.Context) (*models.Catalog, error)
	Save(ctx context.Context, c *models.Catalog) error
	Health(ctx context.Context) error
}

// Service owns the server's copy of the catalog. Replace is a blind
// whole-document overwrite: two admins who loaded the same version will
// clobber each other and the last save wins.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	current *models.Catalog
}

// Option configures a Service.
type Option func(*Service)

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

// New builds a service around an already loaded snapshot.
func New(store Store, initial *models.Catalog, opts ...Option) *Service {
	if initial == nil {
		initial = models.NewCatalog()
	}
	s := &Service{
		store:   store,
		logger:  slog.Default(),
		current: initial,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open loads the stored document and builds the service around it. Any load
// error, including a corrupt document, is returned unchanged so startup can
// abort.
func Open(ctx context.Context, store Store, opts ...Option) (*Service, error) {
	c, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(store, c, opts...), nil
}

// Document returns a deep copy of the current snapshot.
func (s *Service) Document() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Replace persists doc as the whole catalog. The in-memory snapshot only
// changes after the save succeeded.
func (s *Service) Replace(ctx context.Context, doc *models.Catalog) error {
	if doc == nil {
		return dErrors.New(dErrors.CodeBadRequest, "catalog document required")
	}
	next := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, next); err != nil {
		return err
	}
	s.current = next
	s.metrics.IncrementReplaced()
	s.logger.InfoContext(ctx, "catalog replaced", "sectors", next.Sectors.Len())
	return nil
}

// Reload re-reads the stored document, picking up writes made by other
// processes sharing the backend.
func (s *Service) Reload(ctx context.Context) error {
	c, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
	return nil
}

// Health reports whether the backing store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}
