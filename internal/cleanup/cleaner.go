package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// RetentionStore is the slice of the solution store the cleaner needs
type RetentionStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// Cleaner periodically evicts stored solutions older than the retention
// window. Only the in-memory store needs this; the Redis store expires
// solutions through its own TTLs.
type Cleaner struct {
	store     RetentionStore
	retention time.Duration
	interval  time.Duration
}

// NewCleaner creates a new retention worker
func NewCleaner(store RetentionStore, retention, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		store:     store,
		retention: retention,
		interval:  interval,
	}
}

// Start begins the retention worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the retention worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("retention worker started", "retention", c.retention, "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention worker stopped")
			return
		case <-ticker.C:
			c.evict(ctx)
		}
	}
}

// evict removes solutions past the retention window
func (c *Cleaner) evict(ctx context.Context) {
	cutoff := time.Now().Add(-c.retention)

	removed, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("failed to evict expired solutions", "error", err)
		return
	}

	if len(removed) == 0 {
		slog.Debug("no expired solutions found")
		return
	}

	slog.Info("evicted expired solutions", "count", len(removed), "cutoff", cutoff)
}
