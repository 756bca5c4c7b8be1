package app

import (
	"context"
	"log"
	"time"
)

const (
	defaultExecutionTTL   = 30 * time.Minute
	defaultReaperInterval = 5 * time.Minute
)

// Reaper removes abandoned exploration executions. An execution that never
// reached a terminal phase is deleted once it has been idle past the TTL.
type Reaper struct {
	stores   Stores
	ttl      time.Duration
	interval time.Duration
	clock    func() time.Time
}

// NewReaper creates a Reaper. Non-positive durations fall back to defaults.
func NewReaper(stores Stores, ttl, interval time.Duration) *Reaper {
	if ttl <= 0 {
		ttl = defaultExecutionTTL
	}
	if interval <= 0 {
		interval = defaultReaperInterval
	}
	return &Reaper{stores: stores, ttl: ttl, interval: interval, clock: time.Now}
}

// Run sweeps on the configured interval until the context is canceled.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed, err := r.Sweep(ctx); err != nil {
				log.Printf("execution reaper sweep: %v", err)
			} else if removed > 0 {
				log.Printf("execution reaper removed %d abandoned executions", removed)
			}
		}
	}
}

// Sweep runs one reap pass and reports how many executions were removed.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	if r == nil || r.stores.Executions == nil {
		return 0, nil
	}
	cutoff := r.clock().UTC().Add(-r.ttl)
	return r.stores.Executions.DeleteExpired(ctx, cutoff)
}
