// Package cache provides the numbering template cache with PostgreSQL
// LISTEN/NOTIFY invalidation.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	corenum "logistix/internal/core/numbering"
	"logistix/pkg/logger"
)

// Channel is the NOTIFY channel written by the numbering_templates trigger.
// Payload format: "<tenant_id>:<kind>".
const Channel = "numbering_template_changed"

var _ corenum.TemplateStore = (*TemplateCache)(nil)

type entry struct {
	template corenum.Template
	missing  bool
}

// TemplateCache is a read-through cache in front of a TemplateStore.
// Absence is cached too, so tenants on the default template cost no query.
// Entries are dropped when another instance saves a template and the
// database sends NOTIFY; there is no TTL.
type TemplateCache struct {
	store corenum.TemplateStore
	pool  *pgxpool.Pool

	mu      sync.RWMutex
	entries map[string]entry
	// epoch is bumped by every invalidation. A miss stores its result only
	// if the epoch did not move while it was loading.
	epoch uint64

	warmup func(ctx context.Context) error

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTemplateCache wraps store. pool is used for LISTEN; it may be nil when
// Run is never called (single instance or tests).
func NewTemplateCache(store corenum.TemplateStore, pool *pgxpool.Pool) *TemplateCache {
	return &TemplateCache{store: store, pool: pool, entries: make(map[string]entry)}
}

// WithWarmup sets fn to run after every flush that follows a successful
// LISTEN, typically a Prewarm of the active tenants.
func (c *TemplateCache) WithWarmup(fn func(ctx context.Context) error) *TemplateCache {
	c.warmup = fn
	return c
}

func cacheKey(tenantID string, kind corenum.Kind) string {
	return tenantID + ":" + string(kind)
}

// GetTemplate implements corenum.TemplateStore.
func (c *TemplateCache) GetTemplate(ctx context.Context, tenantID string, kind corenum.Kind) (corenum.Template, error) {
	key := cacheKey(tenantID, kind)

	c.mu.RLock()
	e, ok := c.entries[key]
	epoch := c.epoch
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		if e.missing {
			return corenum.Template{}, corenum.ErrConfigurationMissing
		}
		return e.template, nil
	}

	c.misses.Add(1)
	t, err := c.store.GetTemplate(ctx, tenantID, kind)
	switch {
	case errors.Is(err, corenum.ErrConfigurationMissing):
		c.put(key, entry{missing: true}, epoch)
	case err == nil:
		c.put(key, entry{template: t}, epoch)
	}
	return t, err
}

// SaveTemplate writes through and drops the local entry. Other instances
// learn about the change from NOTIFY.
func (c *TemplateCache) SaveTemplate(ctx context.Context, tenantID string, kind corenum.Kind, t corenum.Template) error {
	if err := c.store.SaveTemplate(ctx, tenantID, kind, t); err != nil {
		return err
	}
	c.Invalidate(tenantID, kind)
	return nil
}

// Invalidate drops one entry.
func (c *TemplateCache) Invalidate(tenantID string, kind corenum.Kind) {
	c.mu.Lock()
	delete(c.entries, cacheKey(tenantID, kind))
	c.epoch++
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *TemplateCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.epoch++
	c.mu.Unlock()
}

// put stores e unless an invalidation happened after epoch was read.
func (c *TemplateCache) put(key string, e entry, epoch uint64) {
	c.mu.Lock()
	if c.epoch == epoch {
		c.entries[key] = e
	}
	c.mu.Unlock()
}

// Prewarm loads every kind for tenantIDs, at most limit lookups at a time.
func (c *TemplateCache) Prewarm(ctx context.Context, tenantIDs []string, limit int) error {
	if limit <= 0 {
		limit = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, tenantID := range tenantIDs {
		for _, kind := range []corenum.Kind{corenum.KindInvoice, corenum.KindTrip} {
			g.Go(func() error {
				_, err := c.GetTemplate(ctx, tenantID, kind)
				if errors.Is(err, corenum.ErrConfigurationMissing) {
					return nil
				}
				return err
			})
		}
	}
	return g.Wait()
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// Stats returns current cache statistics.
func (c *TemplateCache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Run listens for template changes until ctx is cancelled.
// The cache is flushed after every (re)connect because notifications sent
// while disconnected are lost.
func (c *TemplateCache) Run(ctx context.Context) error {
	logger.Info(ctx, "template cache listener started")
	for {
		if err := c.listenOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Error(ctx, "template cache listener failed", "error", err)
		}
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "template cache listener stopped")
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (c *TemplateCache) listenOnce(ctx context.Context) error {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}
	c.resync(ctx)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		logger.Debug(ctx, "received notification", "channel", n.Channel, "payload", n.Payload)
		c.handleNotification(n.Channel, n.Payload)
	}
}

// resync drops everything cached before LISTEN took effect and reloads
// through the warmup hook.
func (c *TemplateCache) resync(ctx context.Context) {
	c.InvalidateAll()
	if c.warmup == nil {
		return
	}
	if err := c.warmup(ctx); err != nil {
		logger.Warn(ctx, "template cache warmup incomplete", "error", err)
		return
	}
	logger.Debug(ctx, "template cache warmed", "entries", c.Stats().Entries)
}

// handleNotification processes one NOTIFY event.
func (c *TemplateCache) handleNotification(channel, payload string) {
	if channel != Channel {
		return
	}
	tenantID, kind, ok := strings.Cut(strings.TrimSpace(payload), ":")
	if !ok || tenantID == "" || kind == "" {
		// Unknown payload shape; drop everything rather than serve stale data.
		c.InvalidateAll()
		return
	}
	c.Invalidate(tenantID, corenum.Kind(kind))
}
