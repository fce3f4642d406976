// Package types defines the JSON bodies the gateway writes itself.
//
// Successful awqat routes pass the upstream JSON through untouched, so the
// only gateway-owned shapes are the liveness and debug bodies and the error
// body:
//
//	{"error": "Failed to fetch daily prayer times", "upstreamStatus": 500, "upstreamError": {"message": "..."}}
package types
