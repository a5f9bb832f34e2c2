// internal/tenant/stores.go
//
// Data-source router and tenant provisioner.
//
// Context
// -------
// `Stores.Resolve` answers the per-request question "which store does
// this tenant's data live in":
//
//  1. If a store already exists under the tenant's code, use it — tenants
//     migrated in place keep their code as store name.
//  2. Otherwise fetch the configuration from the control store; absence
//     is a configuration error, surfaced as such.
//  3. SHARED ⇒ the default control store.
//  4. SEPARATE ⇒ delegate to the provisioning registration step, which is
//     idempotent by name presence in the registry.
//
// `Provision` is the one-shot setup invoked at configuration-creation
// time: derive the physical store name (configured name, else tenant
// code), persist it back onto the configuration, create the physical
// backend, migrate it, and register it.  Registration is the last state
// change, so a failed creation or migration leaves nothing behind in the
// store table.  Concurrent provisioning of the same name is collapsed by
// the registry's singleflight; engine-level "already exists" degrades to
// success via CREATE IF NOT EXISTS semantics.
package tenant

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/stocklot/stocklot/internal/database"
	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/store"
)

// Stores routes tenants to their physical data stores.
type Stores struct {
	registry *store.Registry
	control  *sqlx.DB
}

// NewStores constructs the router over the global store registry.  The
// registry must already hold the control store.
func NewStores(reg *store.Registry) *Stores {
	return &Stores{registry: reg, control: reg.Default().DB}
}

// DB returns the live pool for a resolved store name.
func (s *Stores) DB(name string) (*sqlx.DB, error) {
	st, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("tenant: store %q is not registered", name)
	}
	return st.DB, nil
}

// Resolve returns the store name for a tenant.
func (s *Stores) Resolve(ctx context.Context, t *Tenant) (string, error) {
	// Fast path: the tenant's code is already a registered store.
	if s.registry.Has(t.Code) {
		return t.Code, nil
	}

	cfg, err := ConfigByTenant(ctx, s.control, t.ID)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		return "", respond.ErrConfigurationMissing
	}

	if cfg.DatabaseStrategy == StrategyShared {
		return store.DefaultName, nil
	}
	return s.Provision(ctx, t, cfg)
}

// ResolveID normalizes a tenant id to a Tenant and resolves its store.
// The request context's resolved tenant is preferred; otherwise the row
// is fetched from the control store.
func (s *Stores) ResolveID(ctx context.Context, tenantID string) (string, error) {
	if t := FromContext(ctx); t != nil && t.ID == tenantID {
		return s.Resolve(ctx, t)
	}
	t, err := ByID(ctx, s.control, tenantID)
	if err != nil {
		return "", respond.ErrTenantInvalid
	}
	return s.Resolve(ctx, t)
}

// ResolveRequest resolves the store for the current request: the context
// tenant when aware, the control store otherwise.
func (s *Stores) ResolveRequest(ctx context.Context) (string, error) {
	t := FromContext(ctx)
	if !IsAware(ctx) || t == nil {
		return store.DefaultName, nil
	}
	return s.Resolve(ctx, t)
}

// RequestDB resolves the current request straight to a live pool, plus
// the tenant id scoping reads in shared stores ("" when not aware).
func (s *Stores) RequestDB(ctx context.Context) (*sqlx.DB, string, error) {
	name, err := s.ResolveRequest(ctx)
	if err != nil {
		return nil, "", err
	}
	db, err := s.DB(name)
	if err != nil {
		return nil, "", err
	}
	tenantID := ""
	if t := FromContext(ctx); t != nil && IsAware(ctx) {
		tenantID = t.ID
	}
	return db, tenantID, nil
}

// Provision implements the one-shot setup for a tenant configuration.
// Re-running for an already registered store is a safe no-op returning
// the same name.
func (s *Stores) Provision(ctx context.Context, t *Tenant, cfg *Configuration) (string, error) {
	if cfg.DatabaseStrategy == StrategyShared {
		return store.DefaultName, nil
	}

	// Derive the physical store name and persist it back onto the
	// configuration so the resolver fast path works thereafter.
	name := cfg.DatabaseConfig.DatabaseName
	if name == "" {
		name = t.Code
		dc := cfg.DatabaseConfig
		dc.DatabaseName = name
		updated := NewDatabaseConfig(dc.ConnectionConfig)
		if err := UpdateConfigDatabase(ctx, s.control, cfg.ID, updated); err != nil {
			return "", fmt.Errorf("tenant: persist store name: %w", err)
		}
		cfg.DatabaseConfig = updated
	}

	_, err := s.registry.Ensure(name, func() (*store.Store, error) {
		return s.openAndMigrate(ctx, name, cfg)
	})
	if err != nil {
		zap.S().Errorw("tenant provision", "tenant", t.Code, "store", name, "err", err)
		return "", respond.ErrProvisioningFailed
	}
	return name, nil
}

// openAndMigrate creates the physical backend for a dedicated store and
// runs the tenant-scope migrations.  Called at most once per name via the
// registry's singleflight.
func (s *Stores) openAndMigrate(ctx context.Context, name string, cfg *Configuration) (*store.Store, error) {
	var db *sqlx.DB
	var err error

	switch cfg.DatabaseServer {
	case store.EngineSQLite:
		// Registering the embedded engine is pure metadata; the file is
		// created lazily on first write.
		db, err = database.OpenWithOptions(database.DriverSQLite,
			database.SQLiteDSN(s.registry.SQLitePath(name)), 1, 1)
	case store.EngineMySQL:
		cc := cfg.DatabaseConfig.ConnectionConfig
		// Database creation cannot run inside a transaction; the admin
		// helper uses IF NOT EXISTS so a lost race is still a success.
		if err = store.EnsureMySQLDatabase(ctx, cc); err != nil {
			return nil, err
		}
		db, err = database.OpenWithOptions(database.DriverMySQL,
			database.MySQLDSN(cc.Username, cc.Password, cc.Host, cc.Port, name), 5, 2)
	default:
		return nil, fmt.Errorf("tenant: unknown database server %q", cfg.DatabaseServer)
	}
	if err != nil {
		return nil, err
	}

	if err := store.MigrateTenant(ctx, db, cfg.DatabaseServer); err != nil {
		db.Close()
		return nil, err
	}
	return &store.Store{Engine: cfg.DatabaseServer, DB: db}, nil
}
