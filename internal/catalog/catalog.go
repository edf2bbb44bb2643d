package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/clock"
	obsmetrics "github.com/hireloop/hireloop/internal/observability/metrics"
	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
)

// Cache holds the full plan catalog as an immutable map swapped atomically.
// Readers never block on a refresh; they see either the old or the new map,
// never a mixture.
type Cache struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    plandomain.Repository
	metrics *obsmetrics.Metrics

	entries     atomic.Value // map[int64]plandomain.Entitlement
	refreshedAt atomic.Value // time.Time

	mu sync.Mutex // serializes writers only
}

func New(db *gorm.DB, log *zap.Logger, clk clock.Clock, repo plandomain.Repository, m *obsmetrics.Metrics) *Cache {
	c := &Cache{
		db:      db,
		log:     log.Named("catalog.cache"),
		clock:   clk,
		repo:    repo,
		metrics: m,
	}
	c.entries.Store(map[int64]plandomain.Entitlement{})
	c.refreshedAt.Store(time.Time{})
	return c
}

// Refresh bulk-loads the whole catalog and replaces the published map.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	plans, err := c.repo.FindAll(ctx, c.db)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordCatalogRefresh(ctx, "error")
		}
		return err
	}

	next := make(map[int64]plandomain.Entitlement, len(plans))
	for i := range plans {
		next[plans[i].ID] = plans[i].Entitlement()
	}

	c.entries.Store(next)
	c.refreshedAt.Store(c.clock.Now())
	if c.metrics != nil {
		c.metrics.RecordCatalogRefresh(ctx, "ok")
	}
	c.log.Info("plan catalog refreshed", zap.Int("plans", len(next)))
	return nil
}

// Lookup returns the cached entitlement for a plan id. A miss means the plan
// is unknown to the cache, not that it has no entitlements.
func (c *Cache) Lookup(planID int64) (plandomain.Entitlement, bool) {
	entries := c.entries.Load().(map[int64]plandomain.Entitlement)
	ent, ok := entries[planID]
	return ent, ok
}

// Resolve returns the cached entitlement, falling back to the store on a miss
// and publishing the loaded plan so later lookups hit.
func (c *Cache) Resolve(ctx context.Context, planID int64) (plandomain.Entitlement, bool, error) {
	if ent, ok := c.Lookup(planID); ok {
		return ent, true, nil
	}

	plan, err := c.repo.FindByID(ctx, c.db, planID)
	if err != nil {
		return plandomain.Entitlement{}, false, err
	}
	if plan == nil {
		return plandomain.Entitlement{}, false, nil
	}

	ent := plan.Entitlement()
	c.populate(planID, ent)
	return ent, true, nil
}

// LastRefreshedAt is diagnostic only.
func (c *Cache) LastRefreshedAt() time.Time {
	return c.refreshedAt.Load().(time.Time)
}

// populate copies the published map plus the new entry and swaps it in.
func (c *Cache) populate(planID int64, ent plandomain.Entitlement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.entries.Load().(map[int64]plandomain.Entitlement)
	next := make(map[int64]plandomain.Entitlement, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[planID] = ent
	c.entries.Store(next)
}
