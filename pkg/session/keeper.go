package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Keeper renews the session on a cron schedule so that user requests rarely
// pay for a login. It only calls AcquireAccessToken, so a token that is still
// outside the expiry margin is left alone and a renewal already in flight is
// joined.
type Keeper struct {
	manager  *Manager
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewKeeper creates a keeper for the given standard cron expression.
func NewKeeper(manager *Manager, schedule string, logger *slog.Logger) *Keeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keeper{
		manager:  manager,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "session.keeper"),
	}
}

// Start schedules renewals until ctx is cancelled. An empty schedule is a no-op.
//
// Common expressions:
//   - "*/5 * * * *" - every five minutes
//   - "@every 90s"  - every 90 seconds
func (k *Keeper) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.schedule == "" {
		k.logger.Info("keepalive schedule not configured, skipping keeper")
		return nil
	}
	if k.running {
		return fmt.Errorf("keeper already running")
	}

	if _, err := cron.ParseStandard(k.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", k.schedule, err)
	}

	if _, err := k.cron.AddFunc(k.schedule, func() { k.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule keepalive: %w", err)
	}

	k.cron.Start()
	k.running = true
	k.logger.Info("session keeper started", "schedule", k.schedule)

	go func() {
		<-ctx.Done()
		k.Stop()
	}()

	return nil
}

func (k *Keeper) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := k.manager.AcquireAccessToken(ctx); err != nil {
		k.logger.Warn("scheduled session renewal failed", "error", err)
		return
	}
	k.logger.Debug("scheduled session check completed")
}

// Stop stops the schedule and waits for a running renewal to return.
func (k *Keeper) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.running {
		<-k.cron.Stop().Done()
		k.running = false
		k.logger.Info("session keeper stopped")
	}
}

// IsRunning reports whether the keeper is scheduled.
func (k *Keeper) IsRunning() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running
}

// NextRun returns the next scheduled renewal, or nil when not running.
func (k *Keeper) NextRun() *time.Time {
	k.mu.Lock()
	defer k.mu.Unlock()

	entries := k.cron.Entries()
	if !k.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
