// internal/tenant/model.go
//
// Tenant and tenant-configuration row models.
//
// Context
// -------
// Both tables live only in the control store.  A Tenant is immutable once
// a store has been provisioned against it; its `tenant_code` doubles as
// the subdomain label and the default store name.  The one-to-one
// TenantConfiguration decides the authentication scheme and the database
// strategy, and is mutated only by provisioning (to persist the derived
// store name) and by explicit reconfiguration.
//
// Invariant: strategy SHARED ⇒ server SQLITE.  A shared store is always
// the default embedded store; `Configuration.Validate` rejects anything
// else at creation time.
package tenant

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/store"
)

// AuthenticationType selects the scheme applied to tenant-aware requests.
type AuthenticationType string

const (
	AuthToken AuthenticationType = "TOKEN"
	AuthJWT   AuthenticationType = "JWT_TOKEN"
)

// Strategy selects where a tenant's data lives.
type Strategy string

const (
	StrategyShared   Strategy = "SHARED"
	StrategySeparate Strategy = "SEPARATE"
)

// Tenant mirrors one row in `tenants`.
type Tenant struct {
	ID        string    `db:"tenant_id"   json:"tenant_id"`
	Code      string    `db:"tenant_code" json:"tenant_code"`
	Name      string    `db:"tenant_name" json:"tenant_name"`
	IsActive  bool      `db:"is_active"   json:"-"`
	IsDeleted bool      `db:"is_deleted"  json:"-"`
	CreatedBy *string   `db:"created_by"  json:"-"`
	UpdatedBy *string   `db:"updated_by"  json:"-"`
	CreatedAt time.Time `db:"created_dtm" json:"-"`
	UpdatedAt time.Time `db:"updated_dtm" json:"-"`
}

// DatabaseConfig wraps store.ConnectionConfig so sqlx can move it in and
// out of the TEXT/JSON column.
type DatabaseConfig struct {
	store.ConnectionConfig
	set bool
}

// Set reports whether a config blob was present in the row.
func (c DatabaseConfig) Set() bool { return c.set }

func (c *DatabaseConfig) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = DatabaseConfig{}
		return nil
	case []byte:
		if len(v) == 0 {
			*c = DatabaseConfig{}
			return nil
		}
		c.set = true
		return json.Unmarshal(v, &c.ConnectionConfig)
	case string:
		if v == "" {
			*c = DatabaseConfig{}
			return nil
		}
		c.set = true
		return json.Unmarshal([]byte(v), &c.ConnectionConfig)
	default:
		return fmt.Errorf("tenant: cannot scan %T into DatabaseConfig", src)
	}
}

func (c DatabaseConfig) Value() (driver.Value, error) {
	if !c.set {
		return nil, nil
	}
	b, err := json.Marshal(c.ConnectionConfig)
	return string(b), err
}

// NewDatabaseConfig marks cc as present for persistence.
func NewDatabaseConfig(cc store.ConnectionConfig) DatabaseConfig {
	return DatabaseConfig{ConnectionConfig: cc, set: true}
}

// Configuration mirrors one row in `tenant_configurations`.
type Configuration struct {
	ID                 string             `db:"tenant_configuration_id" json:"tenant_configuration_id"`
	TenantID           string             `db:"tenant_id"               json:"tenant_id"`
	AuthenticationType AuthenticationType `db:"authentication_type"     json:"authentication_type"`
	DatabaseStrategy   Strategy           `db:"database_strategy"       json:"database_strategy"`
	DatabaseServer     store.Engine       `db:"database_server"         json:"database_server"`
	DatabaseConfig     DatabaseConfig     `db:"database_config"         json:"database_config"`
	IsActive           bool               `db:"is_active"               json:"-"`
	IsDeleted          bool               `db:"is_deleted"              json:"-"`
	CreatedBy          *string            `db:"created_by"              json:"-"`
	UpdatedBy          *string            `db:"updated_by"              json:"-"`
	CreatedAt          time.Time          `db:"created_dtm"             json:"-"`
	UpdatedAt          time.Time          `db:"updated_dtm"             json:"-"`
}

// Validate enforces the construction-time invariants.
func (c *Configuration) Validate() error {
	switch c.AuthenticationType {
	case AuthToken, AuthJWT:
	default:
		return respond.ErrBadRequest.WithMessage("unknown authentication_type %q", c.AuthenticationType)
	}

	switch c.DatabaseStrategy {
	case StrategyShared:
		// A shared store is always the default embedded store.
		if c.DatabaseServer != store.EngineSQLite {
			return respond.ErrBadRequest.WithMessage(
				"shared database strategy requires the embedded engine")
		}
	case StrategySeparate:
		if !c.DatabaseServer.Valid() {
			return respond.ErrBadRequest.WithMessage("unknown database_server %q", c.DatabaseServer)
		}
		if c.DatabaseServer == store.EngineMySQL && !c.DatabaseConfig.Set() {
			return respond.ErrBadRequest.WithMessage(
				"database_config is required for a separate client-server store")
		}
	default:
		return respond.ErrBadRequest.WithMessage("unknown database_strategy %q", c.DatabaseStrategy)
	}
	return nil
}
