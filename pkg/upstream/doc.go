// Package upstream is the HTTP client for the prayer-times provider.
//
// Client.FetchAuthenticated attaches a bearer token from a TokenSource,
// retries once with a fresh login when the provider answers 401, and returns
// the raw JSON body. Failures are typed so the route layer can tell an
// upstream status (StatusError) from an unreachable upstream (TransportError)
// and a malformed body (DecodeError).
package upstream
