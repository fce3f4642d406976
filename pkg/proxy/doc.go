// Package proxy holds the request and response plumbing shared by the
// gateway's HTTP handlers.
//
// RequireQueryParam validates route input. HandleError maps a failure to its
// status and body:
//
//   - a missing query parameter is 400 {"error": "Missing query param: cityId"}
//   - an upstream error status is 502 with upstreamStatus and upstreamError
//   - transport, decode and session failures are 502 with the route's
//     generic message only
//
// Classify names the failure kind for logs. Successful upstream bodies are
// written back verbatim with WriteRawJSON.
package proxy
