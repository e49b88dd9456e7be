package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	authHandler "baias/internal/auth/handler"
	authMetrics "baias/internal/auth/metrics"
	authService "baias/internal/auth/service"
	sessionStore "baias/internal/auth/store/session"
	"baias/internal/catalog/gateway"
	catalogHandler "baias/internal/catalog/handler"
	catalogMetrics "baias/internal/catalog/metrics"
	"baias/internal/catalog/seed"
	catalogService "baias/internal/catalog/service"
	"baias/internal/catalog/store"
	"baias/internal/catalog/store/core"
	httpapi "baias/internal/http"
	"baias/internal/platform/config"
	"baias/internal/platform/httpserver"
	"baias/internal/platform/logger"
	"baias/internal/platform/metrics"
	redisclient "baias/internal/platform/redis"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func newServeCmd() *cobra.Command {
	var seedFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
			}
			return serve(cmd.Context(), cfg, ln, seedFirst, logger.New(cfg.LogLevel))
		},
	}
	cmd.Flags().BoolVar(&seedFirst, "seed", false, "write the starter catalog if the backend is empty")
	return cmd
}

// openStore opens the configured document backend, handing it the shared
// redis client when one is configured.
func openStore(ctx context.Context, cfg config.Server, rdb *redisclient.Client) (core.Backend, error) {
	var client goredis.UniversalClient
	if rdb != nil {
		client = rdb.Client
	}
	backend, err := store.Open(ctx, cfg.Store, client)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	return backend, nil
}

// serve runs the server on ln until ctx is cancelled, then drains requests.
func serve(ctx context.Context, cfg config.Server, ln net.Listener, seedFirst bool, log *slog.Logger) error {
	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	backend, err := openStore(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(backend); err != nil {
			log.Warn("failed to close store", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	catMetrics := catalogMetrics.NewWithRegistry(reg)
	gw := gateway.New(backend,
		gateway.WithLogger(log),
		gateway.WithMetrics(catMetrics),
	)
	if seedFirst {
		wrote, err := seed.Apply(ctx, gw, false)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if wrote {
			log.Info("wrote starter catalog", "driver", string(gw.Driver()))
		}
	}
	catalog, err := catalogService.Open(ctx, gw,
		catalogService.WithLogger(log),
		catalogService.WithMetrics(catMetrics),
	)
	if err != nil {
		return fmt.Errorf("load catalog from %s store: %w", gw.Driver(), err)
	}

	g, gctx := errgroup.WithContext(ctx)

	var sessions authService.SessionStore
	switch cfg.Auth.SessionStore {
	case "redis":
		if rdb == nil {
			return errors.New("redis session store requires BAIAS_REDIS_URL")
		}
		sessions = sessionStore.NewRedis(rdb.Client)
	default:
		mem := sessionStore.New()
		g.Go(func() error { return mem.StartCleanup(gctx, sweepInterval) })
		sessions = mem
	}
	guard := authService.New(sessions, cfg.Auth.AdminPassword,
		authService.WithSessionTTL(cfg.Auth.SessionTTL),
		authService.WithLogger(log),
		authService.WithMetrics(authMetrics.NewWithRegistry(reg)),
	)

	health := httpapi.Checks{catalog}
	if rdb != nil {
		health = append(health, rdb)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:     log,
		Metrics:    metrics.NewWithRegistry(reg),
		Gatherer:   reg,
		Sessions:   guard,
		CookieName: cfg.Auth.CookieName,
		Health:     health,
		Handlers: []httpapi.Registrar{
			catalogHandler.New(catalog, guard, log),
			authHandler.New(guard, authHandler.CookieConfig{
				Name:   cfg.Auth.CookieName,
				Secure: cfg.Auth.CookieSecure,
			}, log),
		},
	})
	srv := httpserver.New(ln.Addr().String(), router)

	g.Go(func() error {
		log.Info("starting baias", "addr", ln.Addr().String(), "store", string(gw.Driver()), "sessions", cfg.Auth.SessionStore)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
