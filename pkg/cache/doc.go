// Package cache stores upstream prayer-time responses with per-route TTLs.
//
// Keys are aligned to calendar boundaries so that a new day or month always
// misses:
//
//	daily:<cityId>:<YYYY-MM-DD>
//	monthly:<cityId>:<YYYY-MM>
//
// Entries live in a Store: MemoryStore (default), SQLiteStore for a cache
// that survives restarts, or RedisStore for one shared by several replicas.
package cache
