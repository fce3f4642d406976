package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"awqat-hq/gateway/pkg/cache"
	"awqat-hq/gateway/pkg/proxy"
	"awqat-hq/gateway/pkg/proxy/middleware"
	"awqat-hq/gateway/pkg/telemetry/tracing"
	"awqat-hq/gateway/pkg/upstream"
)

// Fetcher performs authenticated upstream GETs. *upstream.Client satisfies it.
type Fetcher interface {
	FetchAuthenticated(ctx context.Context, path string) (json.RawMessage, error)
}

// CacheRecorder records whether a cached route answered from cache.
// *metrics.Collector satisfies it.
type CacheRecorder interface {
	RecordCacheResponse(route string, hit bool)
}

// AwqatHandler serves the /api/awqat routes.
type AwqatHandler struct {
	upstream Fetcher
	cache    *cache.Cache
	policy   atomic.Pointer[cache.Policy]
	recorder CacheRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// AwqatOption configures an AwqatHandler.
type AwqatOption func(*AwqatHandler)

// WithRecorder sets the cache response recorder.
func WithRecorder(r CacheRecorder) AwqatOption {
	return func(h *AwqatHandler) {
		h.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AwqatOption {
	return func(h *AwqatHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock overrides the time source used for calendar keys.
func WithClock(now func() time.Time) AwqatOption {
	return func(h *AwqatHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewAwqatHandler creates the route handler.
func NewAwqatHandler(fetcher Fetcher, c *cache.Cache, policy *cache.Policy, opts ...AwqatOption) *AwqatHandler {
	h := &AwqatHandler{
		upstream: fetcher,
		cache:    c,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.SetPolicy(policy)
	return h
}

// SetPolicy replaces the TTL policy. Requests already running keep the one
// they started with.
func (h *AwqatHandler) SetPolicy(p *cache.Policy) {
	if p == nil {
		p = &cache.Policy{}
	}
	h.policy.Store(p)
}

// Policy returns the active TTL policy.
func (h *AwqatHandler) Policy() *cache.Policy {
	return h.policy.Load()
}

// Register adds the /api/awqat routes to mux.
func (h *AwqatHandler) Register(mux *http.ServeMux) {
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern(), h.serve(rt))
	}
}

func (h *AwqatHandler) serve(rt route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var id string
		if rt.param != "" {
			var err error
			if id, err = proxy.RequireQueryParam(r, rt.param); err != nil {
				h.fail(w, r, rt, err)
				return
			}
		}

		path := rt.upstreamPath(id)
		key, ttl := rt.cacheKey(h.Policy(), id, h.now())

		if ttl <= 0 || h.cache == nil {
			body, err := h.upstream.FetchAuthenticated(ctx, path)
			if err != nil {
				h.fail(w, r, rt, err)
				return
			}
			h.write(w, r, body)
			return
		}

		body, hit, err := h.cache.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (json.RawMessage, error) {
			return h.upstream.FetchAuthenticated(ctx, path)
		})
		tracing.SetCacheAttributes(trace.SpanFromContext(ctx), key, hit)
		if err != nil {
			h.fail(w, r, rt, err)
			return
		}

		if h.recorder != nil {
			h.recorder.RecordCacheResponse(rt.name, hit)
		}
		if hit {
			w.Header().Set(middleware.CacheHeader, "HIT")
		} else {
			w.Header().Set(middleware.CacheHeader, "MISS")
		}
		h.write(w, r, body)
	}
}

func (h *AwqatHandler) write(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	if err := proxy.WriteRawJSON(w, http.StatusOK, body); err != nil {
		h.logger.DebugContext(r.Context(), "failed to write response", "error", err)
	}
}

func (h *AwqatHandler) fail(w http.ResponseWriter, r *http.Request, rt route, err error) {
	status, resp := proxy.HandleError(err, rt.message)

	attrs := []any{
		"route", rt.name,
		"kind", proxy.Classify(err),
		"error", err,
	}
	if upstreamStatus := upstream.StatusOf(err); upstreamStatus != 0 {
		attrs = append(attrs, "upstream_status", upstreamStatus)
	}

	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), rt.message, attrs...)
	} else {
		h.logger.DebugContext(r.Context(), "rejected request", attrs...)
	}

	if err := proxy.WriteErrorResponse(w, status, resp); err != nil {
		h.logger.DebugContext(r.Context(), "failed to write error response", "error", err)
	}
}
