// Package health implements the gateway's readiness endpoint.
//
// A Checker runs named checks concurrently, each with its own timeout, and
// aggregates them into a Report. Two checks cover the gateway's
// dependencies:
//
//   - StoreCheck pings the cache store (memory, sqlite or redis).
//   - SessionCheck fails while the upstream session cannot be renewed and
//     no unexpired token is held.
//
// Liveness is served by the root route, which never touches a dependency.
//
//	checker := health.New(2 * time.Second)
//	checker.Register("cache", health.StoreCheck(store))
//	checker.Register("session", health.SessionCheck(manager, nil))
//	mux.Handle("GET /ready", checker.Handler())
package health
