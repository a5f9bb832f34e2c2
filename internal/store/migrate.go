// internal/store/migrate.go
//
// Schema migrations (goose, embedded).
//
// Context
// -------
// All SQL lives under migrations/ and ships inside the binary via
// go:embed.  Two scopes exist:
//
//   - control — tenancy bookkeeping tables; applied only to the control
//     store, always the SQLite dialect.
//   - tenant  — identity, permission, audit, and inventory tables;
//     applied to every store a tenant can resolve to, in the dialect of
//     its engine.  The control store receives this scope too, because
//     SHARED-strategy tenants live inside it.
//
// The two scopes track their versions in separate goose tables so they
// can be applied independently to the same database.
//
// Notes
// -----
// • Migration runs are synchronous; tenant-configuration creation blocks
//   until the new store is usable.
package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	goosedb "github.com/pressly/goose/v3/database"
)

//go:embed migrations
var migrationsFS embed.FS

const (
	controlVersionTable = "goose_control_version"
	tenantVersionTable  = "goose_tenant_version"
)

// MigrateControl applies the control-scope migrations to the control
// store.  Called once at bootstrap.
func MigrateControl(ctx context.Context, db *sqlx.DB) error {
	return migrate(ctx, db, goosedb.DialectSQLite3, "migrations/control", controlVersionTable)
}

// MigrateTenant applies the tenant-scope migrations to a store in the
// dialect of its engine.
func MigrateTenant(ctx context.Context, db *sqlx.DB, engine Engine) error {
	switch engine {
	case EngineSQLite:
		return migrate(ctx, db, goosedb.DialectSQLite3, "migrations/tenant/sqlite", tenantVersionTable)
	case EngineMySQL:
		return migrate(ctx, db, goosedb.DialectMySQL, "migrations/tenant/mysql", tenantVersionTable)
	default:
		return fmt.Errorf("store: no migrations for engine %q", engine)
	}
}

func migrate(ctx context.Context, db *sqlx.DB, dialect goosedb.Dialect, dir, table string) error {
	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("store: migrations fs %s: %w", dir, err)
	}

	st, err := goosedb.NewStore(dialect, table)
	if err != nil {
		return fmt.Errorf("store: goose store: %w", err)
	}

	p, err := goose.NewProvider("", db.DB, sub, goose.WithStore(st))
	if err != nil {
		return fmt.Errorf("store: goose provider: %w", err)
	}

	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("store: migrate %s: %w", dir, err)
	}
	return nil
}
