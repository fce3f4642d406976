package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"awqat-hq/gateway/pkg/session"
)

var errCheckTimeout = errors.New("health check timeout")

// Pinger is satisfied by every cache store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreCheck reports the cache store unhealthy when it cannot be reached.
func StoreCheck(store Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("cache store unreachable: %w", err)
		}
		return nil
	}
}

// SessionSource exposes the upstream session without its tokens.
type SessionSource interface {
	Status() session.Status
}

// SessionCheck reports the upstream session unhealthy only when the last
// renewal failed and no usable token is held. A gateway that has not logged
// in yet is ready; the first request logs in.
func SessionCheck(src SessionSource, now func() time.Time) CheckFunc {
	if now == nil {
		now = time.Now
	}
	return func(context.Context) error {
		st := src.Status()
		if st.LastError == "" {
			return nil
		}
		if st.Authenticated && now().Before(st.ExpiresAt) {
			return nil
		}
		return fmt.Errorf("upstream session unavailable: %s", st.LastError)
	}
}
