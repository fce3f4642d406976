// Package handlers implements the gateway's HTTP routes.
//
// AwqatHandler serves /api/awqat/{countries,states,cities,daily,monthly}.
// Each route checks its required query parameter before touching the cache
// or the upstream, then answers from the response cache or through an
// authenticated upstream fetch:
//
//	GET /api/awqat/daily?cityId=9541  -> cache key daily:9541:<date>
//	GET /api/awqat/monthly?cityId=9541 -> cache key monthly:9541:<month>
//
// Cached routes set X-Cache to HIT or MISS. Country, state and city lookups
// are fetched on every request unless a lookup TTL is configured.
//
// InfoHandler serves the root liveness route and /api/debug/env, which
// reports only whether the credentials and allowed origin are set.
package handlers
