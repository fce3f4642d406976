package metrics

import (
	"sync"
	"time"

	"awqat-hq/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// requestDurationBuckets covers a cache hit (~1ms) up to a slow login plus
// two upstream calls.
var requestDurationBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Collector is the single entry point for recording gateway metrics. It
// satisfies the observer interfaces of the session, upstream and cache
// packages. A disabled or nil Collector drops every event.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
	cacheMetrics    *CacheMetrics

	// Bounds the number of distinct upstream endpoint labels.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector. If registry is nil a new
// registry is created. Go runtime and process collectors are registered
// alongside the gateway metrics.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.IsEnabled()
}

// RecordHTTPRequest records a completed inbound request. route is the mux
// pattern, not the raw path, so query strings and IDs never become labels.
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordRequest(method, route, status, duration)
}

// RecordCacheResponse records whether a cached route answered from cache.
func (c *Collector) RecordCacheResponse(route string, hit bool) {
	if !c.enabled() {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.requestMetrics.RecordCacheResponse(route, result)
}

// RecordUpstreamRequest records one upstream response.
func (c *Collector) RecordUpstreamRequest(endpoint, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.upstreamMetrics.RecordRequest(c.endpoint(endpoint), status, duration)
}

// RecordUpstreamError records one upstream failure.
func (c *Collector) RecordUpstreamError(endpoint, kind string) {
	if !c.enabled() {
		return
	}
	c.upstreamMetrics.RecordError(c.endpoint(endpoint), kind)
}

// RecordAuth records one login or refresh call.
func (c *Collector) RecordAuth(op, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.upstreamMetrics.RecordAuth(op, outcome, duration)
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheEviction records an expired entry being removed.
func (c *Collector) RecordCacheEviction(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordEviction(cacheName)
}

// UpdateCacheSize updates the current number of cache entries.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.UpdateSize(cacheName, size)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) endpoint(endpoint string) string {
	if !c.cardinalityLimiter.Allow(endpoint) {
		return "other"
	}
	return endpoint
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
