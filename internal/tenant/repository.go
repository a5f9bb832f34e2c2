// internal/tenant/repository.go
//
// Control-store query helpers for tenants and their configurations.
//
// Context
// -------
// These helpers accept a *sqlx.DB scoped to the control store and perform
// simple parameterised queries.  They are thin; the resolver cache wraps
// `ByCode` and everything else runs on administrative paths.
//
// Notes
// -----
// • Soft-deleted rows are excluded at SQL level so callers stay simple.
// • sql.ErrNoRows is translated to taxonomy errors at the call sites that
//   know which error applies, not here.
package tenant

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const tenantCols = `tenant_id, tenant_code, tenant_name, is_active, is_deleted,
       created_by, updated_by, created_dtm, updated_dtm`

const configCols = `tenant_configuration_id, tenant_id, authentication_type,
       database_strategy, database_server, database_config, is_active,
       is_deleted, created_by, updated_by, created_dtm, updated_dtm`

// ByCode fetches an active tenant row by its code.
func ByCode(ctx context.Context, db *sqlx.DB, code string) (*Tenant, error) {
	const q = `
        SELECT ` + tenantCols + `
        FROM   tenants
        WHERE  tenant_code = ?
          AND  is_deleted = 0
          AND  is_active  = 1
        LIMIT  1`
	var t Tenant
	if err := db.GetContext(ctx, &t, q, code); err != nil {
		return nil, err
	}
	return &t, nil
}

// ByID fetches an active tenant row by primary key.
func ByID(ctx context.Context, db *sqlx.DB, id string) (*Tenant, error) {
	const q = `
        SELECT ` + tenantCols + `
        FROM   tenants
        WHERE  tenant_id = ?
          AND  is_deleted = 0
          AND  is_active  = 1
        LIMIT  1`
	var t Tenant
	if err := db.GetContext(ctx, &t, q, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns every active tenant.  Admin tooling only.
func List(ctx context.Context, db *sqlx.DB) ([]Tenant, error) {
	const q = `
        SELECT ` + tenantCols + `
        FROM   tenants
        WHERE  is_deleted = 0
        ORDER BY created_dtm`
	var rows []Tenant
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a tenant row.  The id is generated here.
func Create(ctx context.Context, db *sqlx.DB, t *Tenant) error {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	const q = `
        INSERT INTO tenants (tenant_id, tenant_code, tenant_name,
                             created_by, updated_by, created_dtm, updated_dtm)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q,
		t.ID, t.Code, t.Name, t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt)
	return err
}

// ConfigByTenant fetches the one-to-one configuration for a tenant id.
// Returns (nil, nil) when absent so callers can raise the correct
// taxonomy error.
func ConfigByTenant(ctx context.Context, db *sqlx.DB, tenantID string) (*Configuration, error) {
	const q = `
        SELECT ` + configCols + `
        FROM   tenant_configurations
        WHERE  tenant_id = ?
          AND  is_deleted = 0
        LIMIT  1`
	var c Configuration
	if err := db.GetContext(ctx, &c, q, tenantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// CreateConfig inserts a configuration row.
func CreateConfig(ctx context.Context, db *sqlx.DB, c *Configuration) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	const q = `
        INSERT INTO tenant_configurations
               (tenant_configuration_id, tenant_id, authentication_type,
                database_strategy, database_server, database_config,
                created_by, updated_by, created_dtm, updated_dtm)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q,
		c.ID, c.TenantID, c.AuthenticationType, c.DatabaseStrategy,
		c.DatabaseServer, c.DatabaseConfig, c.CreatedBy, c.UpdatedBy,
		c.CreatedAt, c.UpdatedAt)
	return err
}

// UpdateConfigDatabase persists the derived database_config back onto the
// configuration, so later requests take the resolver fast path.
func UpdateConfigDatabase(ctx context.Context, db *sqlx.DB, configID string, cfg DatabaseConfig) error {
	const q = `
        UPDATE tenant_configurations
        SET    database_config = ?, updated_dtm = ?
        WHERE  tenant_configuration_id = ?`
	_, err := db.ExecContext(ctx, q, cfg, time.Now(), configID)
	return err
}
