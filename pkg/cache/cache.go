package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"awqat-hq/gateway/pkg/config"
)

// Fetcher produces the value for a cache miss.
type Fetcher func(ctx context.Context) (json.RawMessage, error)

// Observer receives cache events labelled by cache name (the key prefix,
// e.g. "daily"). *metrics.Collector satisfies it.
type Observer interface {
	RecordCacheHit(cacheName string)
	RecordCacheMiss(cacheName string)
	RecordCacheEviction(cacheName string)
	UpdateCacheSize(cacheName string, size int)
}

// Cache serves upstream responses from a Store with per-call TTLs.
//
// Expired entries are never served and are removed when they are next read.
// Failed fetches are not cached. Concurrent misses on the same key share one
// fetch.
type Cache struct {
	store    Store
	group    singleflight.Group
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		c.observer = o
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a cache on store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "cache")
	return c
}

// Open creates the store selected by cfg.Backend.
func Open(cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(SQLiteStoreConfig{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	case "redis":
		return NewRedisStore(RedisStoreConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Store returns the underlying store.
func (c *Cache) Store() Store {
	return c.store
}

// Get returns the unexpired value for key. An expired entry is deleted unless
// a fresh one replaced it in the meantime.
// A store read failure is logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	entry, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	if now := c.now(); entry.Expired(now) {
		removed, err := c.store.DeleteExpired(ctx, key, now)
		if err != nil {
			c.logger.Warn("cache eviction failed", "key", key, "error", err)
		} else if removed && c.observer != nil {
			c.observer.RecordCacheEviction(name(key))
		}
		return nil, false
	}

	return entry.Value, true
}

// Set stores value under key until now+ttl. A store failure is logged, not
// returned: the response has already been fetched and can still be served.
func (c *Cache) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) {
	entry := Entry{Value: value, ExpiresAt: c.now().Add(ttl)}
	if err := c.store.Set(ctx, key, entry); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// GetOrFetch returns the cached value for key, or calls fetch, stores its
// result for ttl and returns it. hit reports whether the value came from
// the store.
//
// A fetch error is returned unchanged and nothing is stored. Callers that
// miss on a key while a fetch for it is running wait for that fetch.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch Fetcher) (value json.RawMessage, hit bool, err error) {
	if v, ok := c.Get(ctx, key); ok {
		c.recordHit(key)
		return v, true, nil
	}
	c.recordMiss(key)

	// The fetch outlives the first caller so that joined callers still get
	// a result if it disconnects.
	fetchCtx := context.WithoutCancel(ctx)

	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.Set(fetchCtx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}

	return res.(json.RawMessage), false, nil
}

// Cleanup removes expired entries from the store and refreshes the size gauge.
func (c *Cache) Cleanup(ctx context.Context) (int, error) {
	removed, err := c.store.Cleanup(ctx, c.now())
	if err != nil {
		return 0, err
	}
	if c.observer != nil {
		if n, err := c.store.Len(ctx); err == nil {
			c.observer.UpdateCacheSize("all", n)
		}
	}
	return removed, nil
}

// RunJanitor calls Cleanup every interval until ctx is cancelled.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := c.Cleanup(ctx)
			if err != nil {
				c.logger.Warn("cache cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				c.logger.Debug("cache cleanup completed", "removed", removed)
			}
		}
	}
}

func (c *Cache) recordHit(key string) {
	if c.observer != nil {
		c.observer.RecordCacheHit(name(key))
	}
}

func (c *Cache) recordMiss(key string) {
	if c.observer != nil {
		c.observer.RecordCacheMiss(name(key))
	}
}
