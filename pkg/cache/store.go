package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is a cached upstream response.
type Entry struct {
	// Value is the upstream JSON body, stored verbatim.
	Value json.RawMessage `json:"value"`

	// ExpiresAt is the instant from which the entry is no longer served.
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry is no longer servable at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store persists cache entries. Implementations must be safe for concurrent
// use. Stores do not interpret ExpiresAt on Get; the Cache decides freshness.
type Store interface {
	// Get returns the entry for key. found is false when no entry exists.
	Get(ctx context.Context, key string) (entry Entry, found bool, err error)

	// Set stores entry under key, replacing any previous entry.
	Set(ctx context.Context, key string, entry Entry) error

	// Delete removes key. No-op if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes key only if the stored entry is expired at now,
	// so a fresh entry written concurrently survives. It reports whether an
	// entry was removed.
	DeleteExpired(ctx context.Context, key string, now time.Time) (bool, error)

	// Cleanup removes entries that expired at or before now and returns how
	// many were removed.
	Cleanup(ctx context.Context, now time.Time) (int, error)

	// Len returns the number of stored entries, expired or not.
	Len(ctx context.Context) (int, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
