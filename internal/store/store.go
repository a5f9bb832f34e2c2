// internal/store/store.go
//
// Store engines and connection configuration.
//
// Context
// -------
// A "store" is a named, connectable physical data backend.  Two engine
// kinds exist: the embedded file engine (SQLite) and the client-server
// engine (MySQL).  The control store — the process default — is always
// embedded, which is also what keeps the SHARED-strategy invariant true:
// shared tenants live in the default embedded store.
//
// ConnectionConfig mirrors the `database_config` JSON blob persisted on a
// tenant configuration.  It is only meaningful for the client-server
// engine; embedded stores derive everything from the store name.
package store

import "github.com/jmoiron/sqlx"

// Engine identifies a backend kind.  The values are persisted on tenant
// configurations, so they must not change.
type Engine string

const (
	EngineSQLite Engine = "SQLITE"
	EngineMySQL  Engine = "MYSQL"
)

// Valid reports whether e is a known engine.
func (e Engine) Valid() bool { return e == EngineSQLite || e == EngineMySQL }

// DefaultName is the logical name of the control store.
const DefaultName = "default"

// ConnectionConfig holds client-server connection parameters supplied by
// the tenant at configuration time.
type ConnectionConfig struct {
	Host         string            `json:"host"`
	Port         int               `json:"port"`
	Username     string            `json:"username"`
	Password     string            `json:"password"`
	DatabaseName string            `json:"database_name"`
	Options      map[string]string `json:"options,omitempty"`
}

// Store couples a logical name with its engine and live connection pool.
type Store struct {
	Name   string
	Engine Engine
	DB     *sqlx.DB
}

// Close releases the underlying pool.
func (s *Store) Close() error { return s.DB.Close() }
