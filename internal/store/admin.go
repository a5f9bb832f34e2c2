// internal/store/admin.go
//
// Administrative database creation for the client-server engine.
//
// Context
// -------
// Provisioning a SEPARATE-strategy MySQL tenant needs the physical
// database to exist before migrations can run.  `CREATE DATABASE` cannot
// run inside a transaction, so this helper opens a short-lived
// administrative connection with the tenant-supplied credentials, pointed
// at the server rather than a schema, and relies on the engine's own
// IF NOT EXISTS semantics — a concurrent creation race degrades to the
// idempotent success path.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/stocklot/stocklot/internal/database"
)

// EnsureMySQLDatabase creates cfg.DatabaseName on the target server when
// absent.  The admin connection is closed before returning.
func EnsureMySQLDatabase(ctx context.Context, cfg ConnectionConfig) error {
	if err := validIdentifier(cfg.DatabaseName); err != nil {
		return err
	}

	adminDSN := fmt.Sprintf("%s:%s@tcp(%s:%d)/", cfg.Username, cfg.Password, cfg.Host, cfg.Port)
	admin, err := database.Open(database.DriverMySQL, adminDSN)
	if err != nil {
		return fmt.Errorf("store: admin connect %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	defer admin.Close()

	// Identifiers cannot be bound as parameters; validIdentifier above
	// restricts the name to a safe character set.
	q := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.DatabaseName)
	if _, err := admin.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("store: create database %q: %w", cfg.DatabaseName, err)
	}
	return nil
}

// validIdentifier rejects database names outside [a-z0-9_-], matching the
// tenant-code character set.
func validIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("store: empty database name")
	}
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Errorf("store: invalid database name %q", name)
		}
	}
	return nil
}
