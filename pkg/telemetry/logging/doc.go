// Package logging builds the gateway's slog logger.
//
// Records are written as JSON (default) or text and pass through a redacting
// handler first, so the upstream password, bearer and refresh tokens, and
// e-mail addresses never reach the output even when they appear inside an
// error message:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	logger.InfoContext(ctx, "upstream returned error status", "status", 502)
//
// When the context carries a request ID (see WithRequestID) it is added to
// every record as "request_id".
package logging
