package testutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	authHandler "baias/internal/auth/handler"
	authService "baias/internal/auth/service"
	sessionStore "baias/internal/auth/store/session"
	"baias/internal/catalog/gateway"
	catalogHandler "baias/internal/catalog/handler"
	catalogService "baias/internal/catalog/service"
	"baias/internal/catalog/store/memory"
	httpapi "baias/internal/http"
	"baias/internal/platform/logger"
	"baias/internal/platform/metrics"
)

// CatalogServer is a full baias server on a loopback listener, backed by a
// memory document.
type CatalogServer struct {
	*httptest.Server
	Backend *memory.Backend
}

// NewCatalogServer starts a server holding doc and accepting password. It is
// closed when the test ends.
func NewCatalogServer(t *testing.T, doc, password string) *CatalogServer {
	t.Helper()
	log := logger.Discard()
	backend := memory.NewWithDocument([]byte(doc))
	catalog, err := catalogService.Open(context.Background(), gateway.New(backend, gateway.WithLogger(log)),
		catalogService.WithLogger(log))
	require.NoError(t, err)
	guard := authService.New(sessionStore.New(), password, authService.WithLogger(log))

	reg := prometheus.NewRegistry()
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:     log,
		Metrics:    metrics.NewWithRegistry(reg),
		Gatherer:   reg,
		Sessions:   guard,
		CookieName: "baias_session",
		Health:     catalog,
		Handlers: []httpapi.Registrar{
			catalogHandler.New(catalog, guard, log),
			authHandler.New(guard, authHandler.CookieConfig{Name: "baias_session"}, log),
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &CatalogServer{Server: srv, Backend: backend}
}
