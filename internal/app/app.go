// Package app wires the configured stores, middleware, session manager and
// observability into one value shared by the CLI and the HTTP server.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/domino/internal/adapters/file"
	httpAdapter "github.com/aretw0/domino/internal/adapters/http"
	"github.com/aretw0/domino/internal/config"
	"github.com/aretw0/domino/pkg/adapters/memory"
	"github.com/aretw0/domino/pkg/adapters/redis"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/eventbus"
	"github.com/aretw0/domino/pkg/observability"
	"github.com/aretw0/domino/pkg/persistence/middleware"
	"github.com/aretw0/domino/pkg/ports"
	"github.com/aretw0/domino/pkg/session"
	"github.com/aretw0/domino/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// cacheNamespace scopes the server's cache entries in the storage backend.
const cacheNamespace = "domino:cache"

// App is a fully wired runtime.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    ports.SnapshotStore
	Manager  *session.Manager
	Events   *eventbus.Bus[string, domain.CommitEvent]
	Registry *prometheus.Registry
	Cache    storage.Backend

	closers []func() error
}

// New builds an App from cfg.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Events:   eventbus.New[string, domain.CommitEvent](),
		Registry: prometheus.NewRegistry(),
	}

	var (
		base   ports.SnapshotStore
		locker ports.DistributedLocker
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		base = memory.NewStore()
		a.Cache = storage.NewMemoryBackend()
	case config.BackendFile:
		base = file.New(cfg.Store.Dir)
		a.Cache = storage.NewMemoryBackend()
	case config.BackendRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		a.closers = append(a.closers, rs.Close)
		base = rs
		locker = redis.NewLocker(rs.Client(), cfg.Redis.LockPrefix)
		a.Cache = redis.NewBackend(rs.Client())
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalid, cfg.Store.Backend)
	}

	mws, err := buildMiddleware(cfg.Security)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = middleware.Chain(base, mws...)

	metrics, err := observability.NewMetrics(a.Registry)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Registry.MustRegister(collectors.NewGoCollector())

	hooks := observability.Chain(
		metrics.Hooks(),
		observability.Logging(logger),
		domain.LifecycleHooks{OnCommit: func(e *domain.CommitEvent) {
			a.Events.Broadcast(e.ID, *e)
		}},
	)

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithHooks(hooks),
		session.WithLockTTL(cfg.Store.LockTTL),
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	a.Manager = session.NewManager(a.Store, opts...)

	logger.Debug("app ready", "backend", cfg.Store.Backend, "middleware", len(mws))
	return a, nil
}

// buildMiddleware returns PII masking first, so values are masked before
// they are encrypted.
func buildMiddleware(sec config.SecurityConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(sec.PIIPatterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(sec.PIIPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}

	active, fallback, err := sec.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

// Handler returns the HTTP API, metrics included.
func (a *App) Handler() (http.Handler, error) {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(a.Logger),
		httpAdapter.WithEvents(a.Events),
		httpAdapter.WithMetrics(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})),
	}
	if ttl := a.Config.HTTP.ListCacheTTL; ttl > 0 {
		w, err := storage.New(cacheNamespace, a.Cache, storage.WithLogger(a.Logger))
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpAdapter.WithListCache(storage.NewKeyCache(w, "ids", storage.MaxAge[[]string](ttl))))
	}
	return httpAdapter.NewHandler(a.Manager, opts...), nil
}

// Close releases the backend connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
