package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"jobpulse/board-service/internal/jobstore"
)

// CursorStore persists the cursor reached at the end of each page so that
// sequential access can resume without re-scanning earlier pages. Entries
// are advisory: a miss just triggers rediscovery.
type CursorStore interface {
	Get(ctx context.Context, page int) (jobstore.Cursor, bool, error)
	Put(ctx context.Context, page int, cur jobstore.Cursor) error
}

// MemoryCursorStore keeps cursors in process memory. Fine for a single
// instance and for tests; multi-instance deployments should use
// RedisCursorStore so every replica shares the discovered chain.
type MemoryCursorStore struct {
	mu      sync.Mutex
	cursors map[int]jobstore.Cursor
}

// NewMemoryCursorStore returns an empty in-memory cursor store.
func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{cursors: make(map[int]jobstore.Cursor)}
}

func (m *MemoryCursorStore) Get(_ context.Context, page int) (jobstore.Cursor, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.cursors[page]
	return cur, ok, nil
}

func (m *MemoryCursorStore) Put(_ context.Context, page int, cur jobstore.Cursor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[page] = cur
	return nil
}

// RedisCursorStore shares page cursors across service instances. Entries
// expire so a refreshed collection does not serve stale chains forever.
type RedisCursorStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCursorStore returns a cursor store keyed {prefix}:{page}.
func NewRedisCursorStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCursorStore {
	if prefix == "" {
		prefix = "jobs_cursor"
	}
	return &RedisCursorStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisCursorStore) key(page int) string {
	return fmt.Sprintf("%s:%d", r.prefix, page)
}

func (r *RedisCursorStore) Get(ctx context.Context, page int) (jobstore.Cursor, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(page)).Result()
	if err == redis.Nil {
		return jobstore.Cursor{}, false, nil
	}
	if err != nil {
		return jobstore.Cursor{}, false, fmt.Errorf("redis get cursor: %w", err)
	}

	var cur jobstore.Cursor
	if err := json.Unmarshal([]byte(raw), &cur); err != nil {
		return jobstore.Cursor{}, false, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return cur, true, nil
}

func (r *RedisCursorStore) Put(ctx context.Context, page int, cur jobstore.Cursor) error {
	data, err := json.Marshal(cur)
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(page), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cursor: %w", err)
	}
	return nil
}
