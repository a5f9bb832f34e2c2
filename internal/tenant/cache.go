// internal/tenant/cache.go
//
// Process-wide tenant cache.
//
// Context
// -------
// Tenant resolution runs on every request, so resolved tenants are kept
// in a sync.Map keyed by tenant code.  Misses fall through to a control
// store lookup collapsed per code through singleflight, so a burst of
// first requests for one tenant produces a single query.
//
// The cache is authoritative until process restart or explicit eviction;
// no TTL applies.  Evict is called by administrative mutations that
// change a tenant row.
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/stocklot/stocklot/internal/metrics"
)

// ErrNotFound is returned when a code is not present in the tenants
// table.
var ErrNotFound = errors.New("tenant not found")

// Cache lazily loads tenants by code and keeps them until evicted.
type Cache struct {
	controlDB *sqlx.DB
	sfg       singleflight.Group
	m         sync.Map // code → *Tenant
}

// NewCache constructs a Cache over the control store.
func NewCache(control *sqlx.DB) *Cache {
	return &Cache{controlDB: control}
}

// Get returns the Tenant for code, loading it on demand.
func (c *Cache) Get(ctx context.Context, code string) (*Tenant, error) {
	if v, ok := c.m.Load(code); ok {
		return v.(*Tenant), nil
	}

	v, err, _ := c.sfg.Do(code, func() (any, error) {
		// Double-check after the singleflight barrier.
		if v, ok := c.m.Load(code); ok {
			return v.(*Tenant), nil
		}
		t, err := ByCode(ctx, c.controlDB, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			metrics.TenantLoadErrorsTotal.Inc()
			return nil, err
		}
		c.m.Store(code, t)
		metrics.TenantLoadTotal.Inc()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tenant), nil
}

// Evict drops a code from the cache.
func (c *Cache) Evict(code string) { c.m.Delete(code) }
