// Package config provides configuration management for the Awqat gateway.
//
// Configuration comes from three layers, later layers overriding earlier ones:
//
//  1. Default values (defined in defaults.go)
//  2. An optional YAML file (passed with --config)
//  3. Environment variables
//
// The environment variables are the ones the gateway has always been deployed
// with:
//
//   - AWQAT_BASE_URL overrides upstream.base_url
//   - AWQAT_EMAIL and AWQAT_PASSWORD set the upstream credentials (required)
//   - ALLOWED_ORIGIN sets server.allowed_origin (required)
//   - DAILY_TTL_MIN and MONTHLY_TTL_HOURS set the prayer-time cache TTLs
//   - PORT sets server.port
//
// Operational knobs use the AWQAT_ prefix (AWQAT_LOG_LEVEL, AWQAT_CACHE_BACKEND, ...).
//
// # Loading
//
//	cfg, err := config.Load(path) // path may be empty
//	if err != nil {
//	    // missing credentials or origin: refuse to start
//	}
//
// Validation collects every problem into a ValidationError so operators can
// fix a deployment in one pass.
//
// # TTL Clamping
//
// The daily and monthly TTLs are stored as configured and clamped when read:
//
//	cfg.Cache.DailyTTL()   // [10m, 30m]
//	cfg.Cache.MonthlyTTL() // [6h, 24h]
//
// # Hot Reload
//
// Watcher re-reads the file on change. Only settings that are safe to swap at
// runtime (the cache TTL policy) are applied by the server; credentials and the
// listen address need a restart.
package config
