// Package scheduler wires up the cron job that periodically syncs the jobs
// table with the upstream scraper API.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"jobpulse/board-service/internal/cache"
	"jobpulse/board-service/internal/scraper"
)

// Scheduler wraps robfig/cron and manages the sync loop.
type Scheduler struct {
	cron   *cron.Cron
	mirror *scraper.Mirror
	cache  cache.Cache
	spec   string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(mirror *scraper.Mirror, c cache.Cache, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		mirror: mirror,
		cache:  c,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sync
// immediately so the board is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runSync(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runSync executes one sync cycle and drops the cached dataset so the next
// analytics request sees the new rows.
func (s *Scheduler) runSync(ctx context.Context) {
	if err := s.mirror.Run(ctx); err != nil {
		log.Printf("[scheduler] Sync error: %v", err)
		return
	}

	if err := s.cache.Invalidate(ctx, cache.DatasetKey); err != nil {
		log.Printf("[scheduler] Cache invalidation error: %v", err)
	}
}
