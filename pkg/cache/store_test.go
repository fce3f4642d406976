package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"awqat-hq/gateway/pkg/config"
)

// testStore exercises the Store contract against one implementation.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	t.Run("get missing", func(t *testing.T) {
		if _, found, err := s.Get(ctx, "missing"); err != nil || found {
			t.Errorf("expected not found, got found=%v err=%v", found, err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		entry := Entry{Value: json.RawMessage(`{"data":[1,2,3]}`), ExpiresAt: now.Add(time.Hour)}
		if err := s.Set(ctx, "daily:1:2024-03-01", entry); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		got, found, err := s.Get(ctx, "daily:1:2024-03-01")
		if err != nil || !found {
			t.Fatalf("expected found, got found=%v err=%v", found, err)
		}
		if string(got.Value) != string(entry.Value) {
			t.Errorf("expected value %s, got %s", entry.Value, got.Value)
		}
		if !got.ExpiresAt.Equal(entry.ExpiresAt) {
			t.Errorf("expected expiry %v, got %v", entry.ExpiresAt, got.ExpiresAt)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		entry := Entry{Value: json.RawMessage(`{"v":2}`), ExpiresAt: now.Add(2 * time.Hour)}
		if err := s.Set(ctx, "daily:1:2024-03-01", entry); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		got, _, _ := s.Get(ctx, "daily:1:2024-03-01")
		if string(got.Value) != `{"v":2}` {
			t.Errorf("expected overwritten value, got %s", got.Value)
		}
	})

	t.Run("len and delete", func(t *testing.T) {
		n, err := s.Len(ctx)
		if err != nil || n != 1 {
			t.Fatalf("expected 1 entry, got %d (err=%v)", n, err)
		}
		if err := s.Delete(ctx, "daily:1:2024-03-01"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := s.Delete(ctx, "daily:1:2024-03-01"); err != nil {
			t.Errorf("expected deleting a missing key to be a no-op, got %v", err)
		}
		if n, _ := s.Len(ctx); n != 0 {
			t.Errorf("expected 0 entries, got %d", n)
		}
	})

	t.Run("delete expired keeps fresh entry", func(t *testing.T) {
		fresh := Entry{Value: json.RawMessage(`{"v":3}`), ExpiresAt: now.Add(time.Hour)}
		if err := s.Set(ctx, "monthly:1:2024-03", fresh); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		removed, err := s.DeleteExpired(ctx, "monthly:1:2024-03", now)
		if err != nil {
			t.Fatalf("delete expired failed: %v", err)
		}
		if removed {
			t.Error("expected fresh entry to be kept")
		}
		if _, found, _ := s.Get(ctx, "monthly:1:2024-03"); !found {
			t.Error("expected fresh entry still stored")
		}

		removed, err = s.DeleteExpired(ctx, "monthly:1:2024-03", now.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("delete expired failed: %v", err)
		}
		if !removed {
			t.Error("expected expired entry to be removed")
		}
		if removed, _ := s.DeleteExpired(ctx, "monthly:1:2024-03", now); removed {
			t.Error("expected missing key to report nothing removed")
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Errorf("ping failed: %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(SQLiteStoreConfig{Path: filepath.Join(t.TempDir(), "cache", "test.db")})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	testStore(t, s)
}

func TestSQLiteStore_Cleanup(t *testing.T) {
	s, err := NewSQLiteStore(SQLiteStoreConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now()
	s.Set(ctx, "old", Entry{Value: json.RawMessage(`1`), ExpiresAt: now.Add(-time.Minute)})
	s.Set(ctx, "edge", Entry{Value: json.RawMessage(`2`), ExpiresAt: now})
	s.Set(ctx, "new", Entry{Value: json.RawMessage(`3`), ExpiresAt: now.Add(time.Minute)})

	removed, err := s.Cleanup(ctx, now)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if _, found, _ := s.Get(ctx, "new"); !found {
		t.Error("expected unexpired entry kept")
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(SQLiteStoreConfig{Path: path})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	s.Set(ctx, "monthly:1:2024-03", Entry{Value: json.RawMessage(`{"x":1}`), ExpiresAt: time.Now().Add(time.Hour)})
	s.Close()

	s, err = NewSQLiteStore(SQLiteStoreConfig{Path: path})
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	if _, found, err := s.Get(ctx, "monthly:1:2024-03"); err != nil || !found {
		t.Errorf("expected entry after reopen, got found=%v err=%v", found, err)
	}
}

func TestSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore(SQLiteStoreConfig{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

// TestRedisStore runs against a live server when AWQAT_TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("AWQAT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AWQAT_TEST_REDIS_ADDR not set")
	}

	s := NewRedisStore(RedisStoreConfig{Addr: addr, KeyPrefix: "awqat-test:" + t.Name() + ":"})
	defer s.Close()

	testStore(t, s)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CacheConfig
		want    string
		wantErr bool
	}{
		{"default", config.CacheConfig{}, "*cache.MemoryStore", false},
		{"memory", config.CacheConfig{Backend: "memory"}, "*cache.MemoryStore", false},
		{"sqlite", config.CacheConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "c.db")}}, "*cache.SQLiteStore", false},
		{"redis", config.CacheConfig{Backend: "redis", Redis: config.RedisConfig{Addr: "127.0.0.1:0"}}, "*cache.RedisStore", false},
		{"unknown", config.CacheConfig{Backend: "memcached"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer s.Close()

			var got string
			switch s.(type) {
			case *MemoryStore:
				got = "*cache.MemoryStore"
			case *SQLiteStore:
				got = "*cache.SQLiteStore"
			case *RedisStore:
				got = "*cache.RedisStore"
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
