// internal/authz/loader.go
//
// Copies the registry into a tenant's persisted permission catalog.
//
// Runs when a tenant's configuration is created and may be re-run at
// any time, for example after a deploy that registers new endpoints.
// Upserts match on (module, action, tenant), so repeat runs rewrite
// display names and add exactly the rows that are new.
package authz

import (
	"context"

	"go.uber.org/zap"

	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Loader provisions tenant permission catalogs from the registry.
type Loader struct {
	stores *tenant.Stores
}

// NewLoader wires a Loader to the store router.
func NewLoader(stores *tenant.Stores) *Loader {
	return &Loader{stores: stores}
}

// LoadForTenant writes every registered (module, action, name) tuple
// into the tenant's resolved store.  Idempotent.
func (l *Loader) LoadForTenant(ctx context.Context, tenantID string) error {
	name, err := l.stores.ResolveID(ctx, tenantID)
	if err != nil {
		return err
	}
	db, err := l.stores.DB(name)
	if err != nil {
		return err
	}

	count := 0
	for module, actions := range Catalog() {
		for _, a := range actions {
			p := &identity.Permission{
				Name:     a.Name,
				Module:   module,
				Action:   a.Action,
				TenantID: &tenantID,
			}
			if err := identity.UpsertPermission(ctx, db, p); err != nil {
				return err
			}
			count++
		}
	}
	zap.S().Infow("permission catalog loaded",
		"tenant_id", tenantID, "store", name, "entries", count)
	return nil
}
