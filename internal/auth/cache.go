// internal/auth/cache.go
//
// Decoded-identity cache.
//
// Context
// -------
// The bearer authenticator decodes a credential to a user id on every
// request; this cache short-circuits the store lookup that follows.
// Entries are keyed (tenant id, user id) so tenants never see each
// other's snapshots, and are invalidated only by explicit eviction from
// login and logout.  No TTL applies — a role or password change does not
// reach cached entries until eviction or restart, a documented gap in
// the current contract.
package auth

import (
	"sync"

	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/metrics"
)

// IdentityCache is safe for concurrent use.
type IdentityCache struct {
	m sync.Map // cacheKey → *identity.User
}

type cacheKey struct {
	tenantID string
	userID   string
}

// NewIdentityCache returns an empty cache.
func NewIdentityCache() *IdentityCache { return &IdentityCache{} }

// Get returns the cached identity snapshot for (tenantID, userID).
func (c *IdentityCache) Get(tenantID, userID string) (*identity.User, bool) {
	v, ok := c.m.Load(cacheKey{tenantID, userID})
	if !ok {
		metrics.IdentityCacheMissesTotal.Inc()
		return nil, false
	}
	metrics.IdentityCacheHitsTotal.Inc()
	return v.(*identity.User), true
}

// Set stores an identity snapshot.
func (c *IdentityCache) Set(tenantID string, u *identity.User) {
	c.m.Store(cacheKey{tenantID, u.ID}, u)
}

// Evict drops the entry for (tenantID, userID).
func (c *IdentityCache) Evict(tenantID, userID string) {
	c.m.Delete(cacheKey{tenantID, userID})
}
