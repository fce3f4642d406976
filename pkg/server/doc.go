// Package server runs the gateway's HTTP listener.
//
// It mounts the route handlers on a net/http ServeMux and wraps them, from
// the outside in, with panic recovery, request IDs, tracing, access logging,
// optional rate limiting and CORS:
//
//	srv := server.New(cfg.Server, server.Routes{
//	    Awqat:   awqat,
//	    Info:    info,
//	    Ready:   checker.Handler(),
//	    Metrics: collector.Handler(),
//	}, logger)
//	err := srv.Start(ctx) // returns after ctx is cancelled and requests drain
package server
