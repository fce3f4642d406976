package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"awqat-hq/gateway/pkg/cache"
	"awqat-hq/gateway/pkg/config"
	"awqat-hq/gateway/pkg/proxy/handlers"
	"awqat-hq/gateway/pkg/server"
	"awqat-hq/gateway/pkg/session"
	"awqat-hq/gateway/pkg/telemetry/health"
	"awqat-hq/gateway/pkg/telemetry/metrics"
	"awqat-hq/gateway/pkg/upstream"
)

// janitorInterval is how often expired cache entries are swept.
const janitorInterval = 5 * time.Minute

// gateway is the fully wired service.
type gateway struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	store     cache.Store
	cache     *cache.Cache
	session   *session.Manager
	keeper    *session.Keeper
	awqat     *handlers.AwqatHandler
	checker   *health.Checker
	server    *server.Server
}

// newGateway builds every component from cfg. Nothing is started and no
// network call is made.
func newGateway(cfg *config.Config, logger *slog.Logger) (*gateway, error) {
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	c := cache.New(store, cache.WithLogger(logger), cache.WithObserver(collector))

	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}

	authority := session.NewHTTPAuthority(cfg.Upstream.BaseURL, session.Credentials{
		Email:    cfg.Upstream.Email,
		Password: cfg.Upstream.Password,
	}, httpClient)

	manager := session.NewManager(authority,
		session.WithExpiryMargin(cfg.Session.ExpiryMargin),
		session.WithLogger(logger),
		session.WithObserver(collector),
	)

	client := upstream.NewClient(cfg.Upstream.BaseURL, manager, httpClient,
		upstream.WithLogger(logger),
		upstream.WithObserver(collector),
	)

	awqat := handlers.NewAwqatHandler(client, c, cache.PolicyFromConfig(cfg.Cache),
		handlers.WithLogger(logger),
		handlers.WithRecorder(collector),
	)
	info := handlers.NewInfoHandler(cfg.Upstream.Email, cfg.Upstream.Password, cfg.Server.AllowedOrigin)

	checker := health.New(0)
	checker.Register("cache", health.StoreCheck(store))
	checker.Register("session", health.SessionCheck(manager, nil))

	routes := server.Routes{
		Awqat: awqat,
		Info:  info,
		Ready: checker.Handler(),
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		routes.Metrics = collector.Handler()
		routes.MetricsPath = cfg.Telemetry.Metrics.Path
		routes.Recorder = collector
	}

	return &gateway{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		store:     store,
		cache:     c,
		session:   manager,
		keeper:    session.NewKeeper(manager, cfg.Session.KeepaliveSchedule, logger),
		awqat:     awqat,
		checker:   checker,
		server:    server.New(cfg.Server, routes, logger),
	}, nil
}

// applyConfig installs the hot-reloadable parts of a reloaded configuration.
// Credentials, listen address and cache backend need a restart.
func (g *gateway) applyConfig(cfg *config.Config) {
	policy := cache.PolicyFromConfig(cfg.Cache)
	g.awqat.SetPolicy(policy)
	g.logger.Info("cache policy updated",
		"daily_ttl", policy.Daily.String(),
		"monthly_ttl", policy.Monthly.String(),
		"lookup_ttl", policy.Lookup.String(),
		"timezone", cfg.Cache.Timezone,
	)
}

// serve runs the background workers and the HTTP server until ctx is
// cancelled.
func (g *gateway) serve(ctx context.Context) error {
	go g.cache.RunJanitor(ctx, janitorInterval)

	if err := g.keeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session keeper: %w", err)
	}
	defer g.keeper.Stop()

	return g.server.Start(ctx)
}

// close releases the cache store.
func (g *gateway) close() error {
	return g.store.Close()
}
