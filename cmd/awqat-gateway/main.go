// Awqat Gateway is the backend proxy between the Awqat mobile app and the
// upstream prayer-times provider.
//
// It holds the single provider account session, refreshing or logging in
// again as tokens near expiry, and caches daily and monthly prayer times so
// that many app users share few upstream calls.
//
// Usage:
//
//	# Start with configuration from the environment (and ./.env)
//	awqat-gateway run
//
//	# Start with a configuration file; TTL changes are picked up live
//	awqat-gateway run --config /etc/awqat/gateway.yaml
//
//	# Check a configuration without starting
//	awqat-gateway validate --config gateway.yaml
//
//	# Show version information
//	awqat-gateway version
package main

func main() {
	Execute()
}
