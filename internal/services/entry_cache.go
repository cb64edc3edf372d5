package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/observability"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

// EntryCache keeps the full entry set in memory. Every change notification
// triggers a full refetch. Concurrent refreshes collapse into one store call,
// but a refresh never returns data fetched before it was requested.
type EntryCache interface {
	Start(ctx context.Context) error
	Entries(ctx context.Context) ([]*types.DrinkEvent, error)
	Refresh(ctx context.Context) ([]*types.DrinkEvent, error)
	Version() uint64
}

type entryCache struct {
	log   *logger.Logger
	store EntryStore
	group singleflight.Group

	// requested counts Refresh calls. A fetch is tagged with the count seen
	// when it started.
	requested atomic.Uint64

	mu        sync.RWMutex
	entries   []*types.DrinkEvent
	loaded    bool
	version   uint64
	refreshed time.Time

	refreshTimeout time.Duration
}

func NewEntryCache(log *logger.Logger, store EntryStore) EntryCache {
	return &entryCache{
		log:            log.With("service", "EntryCache"),
		store:          store,
		refreshTimeout: 10 * time.Second,
	}
}

// Start subscribes to change notifications until ctx ends and performs the
// initial load. A failed initial load is logged; Entries retries on demand.
func (c *entryCache) Start(ctx context.Context) error {
	unsubscribe := c.store.SubscribeToEntryChanges(func(msg realtime.SSEMessage) {
		go func() {
			rctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
			defer cancel()
			if _, err := c.Refresh(rctx); err != nil {
				c.log.Warn("entry cache refresh failed", "event", msg.Event, "error", err)
			}
		}()
	})
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	if _, err := c.Refresh(ctx); err != nil {
		c.log.Warn("initial entry cache load failed", "error", err)
	}
	return nil
}

func (c *entryCache) Entries(ctx context.Context) ([]*types.DrinkEvent, error) {
	c.mu.RLock()
	if c.loaded {
		out := c.entries
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()
	return c.Refresh(ctx)
}

type fetched struct {
	entries []*types.DrinkEvent
	gen     uint64
}

func (c *entryCache) Refresh(ctx context.Context) ([]*types.DrinkEvent, error) {
	want := c.requested.Add(1)
	for {
		v, err, _ := c.group.Do("entries", func() (any, error) {
			return c.fetch(ctx)
		})
		if err != nil {
			return nil, err
		}
		f := v.(fetched)
		if f.gen >= want {
			return f.entries, nil
		}
		// Joined a fetch that started before this change was requested.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (c *entryCache) fetch(ctx context.Context) (fetched, error) {
	gen := c.requested.Load()
	start := time.Now()
	entries, err := c.store.ListEntries(ctx)
	observability.Current().ObserveCacheRefresh(len(entries), err, time.Since(start))
	if err != nil {
		return fetched{}, err
	}
	c.mu.Lock()
	c.entries = entries
	c.loaded = true
	c.version++
	c.refreshed = time.Now()
	c.mu.Unlock()
	c.log.Debug("entry cache refreshed", "entries", len(entries), "generation", gen)
	return fetched{entries: entries, gen: gen}, nil
}

func (c *entryCache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
