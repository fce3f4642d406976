// Package metrics provides Prometheus metrics for the Awqat gateway.
//
// # Metrics Categories
//
//   - Request Metrics: inbound HTTP request count and duration per route,
//     and cache hit/miss per cached route
//   - Upstream Metrics: provider response status and latency per endpoint,
//     failures by kind, and login/refresh outcomes
//   - Cache Metrics: hits, misses, evictions and stored entries
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	mgr := session.NewManager(authority, session.WithObserver(collector))
//	client := upstream.NewClient(baseURL, mgr, httpClient, upstream.WithObserver(collector))
//	c := cache.New(store, cache.WithObserver(collector))
//
//	mux.Handle("/metrics", collector.Handler())
//
// Upstream endpoint labels drop the trailing ID ("/api/PrayerTime/Daily"),
// and a cardinality limiter folds anything beyond the limit into "other".
package metrics
