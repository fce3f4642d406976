package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"awqat-hq/gateway/pkg/config"
	"awqat-hq/gateway/pkg/proxy/handlers"
	"awqat-hq/gateway/pkg/proxy/middleware"
	"awqat-hq/gateway/pkg/ratelimit"
	"awqat-hq/gateway/pkg/telemetry/tracing"
)

// Routes holds the handlers the server mounts. Nil handlers are skipped.
type Routes struct {
	// Awqat serves /api/awqat/*.
	Awqat *handlers.AwqatHandler

	// Info serves "/" and /api/debug/env.
	Info *handlers.InfoHandler

	// Ready serves the readiness report at /ready.
	Ready http.Handler

	// Metrics serves the Prometheus exposition at MetricsPath.
	Metrics     http.Handler
	MetricsPath string

	// Recorder receives one observation per request.
	Recorder middleware.RequestRecorder
}

// Server is the gateway's HTTP server.
type Server struct {
	config       config.ServerConfig
	routes       Routes
	logger       *slog.Logger
	limiter      *ratelimit.Limiter
	inFlight     *ratelimit.ConcurrentLimiter
	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. It does not bind until Start.
func New(cfg config.ServerConfig, routes Routes, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: cfg,
		routes: routes,
		logger: logger,
	}
	if cfg.RateLimit.Enabled() {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		})
	}
	if cfg.RateLimit.MaxInFlight > 0 {
		s.inFlight = ratelimit.NewConcurrentLimiter(cfg.RateLimit.MaxInFlight)
	}
	return s
}

// limiterSweepInterval is how often idle client buckets are dropped.
const limiterSweepInterval = time.Minute

// Start binds the listen address and serves until ctx is cancelled or the
// server fails. Cancellation triggers a graceful shutdown bounded by
// ShutdownTimeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress(), err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.isRunning = true
	s.mu.Unlock()

	if s.limiter != nil {
		go middleware.RunLimiterSweeper(ctx, s.limiter, limiterSweepInterval)
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("awqat gateway listening", "address", ln.Addr().String())

		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		s.markStopped()
		return err
	}
}

// Shutdown gracefully stops the server, waiting for in-flight requests up
// to ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		httpServer := s.httpServer
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.markStopped()
		s.logger.Info("awqat gateway stopped")
	})

	return shutdownErr
}

func (s *Server) markStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning returns true if the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	if s.routes.Info != nil {
		s.routes.Info.Register(mux)
	}
	if s.routes.Awqat != nil {
		s.routes.Awqat.Register(mux)
	}
	if s.routes.Ready != nil {
		mux.Handle("GET /ready", s.routes.Ready)
	}
	if s.routes.Metrics != nil {
		mux.Handle("GET "+s.metricsPath(), s.routes.Metrics)
	}

	var handler http.Handler = mux

	// CORS and rate limiting sit inside logging so rejections are logged.
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig(s.config.AllowedOrigin))(handler)
	if s.limiter != nil || s.inFlight != nil {
		exempt := []string{"/ready"}
		if s.routes.Metrics != nil {
			exempt = append(exempt, s.metricsPath())
		}
		handler = middleware.RateLimitMiddleware(middleware.RateLimitConfig{
			Limiter:  s.limiter,
			InFlight: s.inFlight,
			Exempt:   exempt,
		})(handler)
	}
	handler = middleware.LoggingMiddleware(s.logger, s.routes.Recorder)(handler)
	handler = tracing.Middleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

func (s *Server) metricsPath() string {
	if s.routes.MetricsPath == "" {
		return "/metrics"
	}
	return s.routes.MetricsPath
}
