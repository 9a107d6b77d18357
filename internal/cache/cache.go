// Package cache is an explicit key/value cache for assembled pages and the
// analytics dataset. Entries carry their own expiry; there is no eviction
// beyond expiry-driven replacement and no cross-key invariants.
package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	// PageTTL is how long an assembled jobs page stays fresh.
	PageTTL = 15 * time.Minute
	// DatasetTTL is how long the full analytics dataset stays fresh.
	DatasetTTL = 24 * time.Hour

	// DatasetKey addresses the cached full collection.
	DatasetKey = "jobs_data"
)

// PageKey addresses the cached page with the given 1-based number.
func PageKey(page int) string {
	return fmt.Sprintf("jobs_page_%d", page)
}

// Cache stores serialized values with per-entry expiry. Get reports a miss
// for absent and for expired entries alike.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}
