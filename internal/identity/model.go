// internal/identity/model.go
//
// Row models for users, tokens, permissions, and role-permission
// mappings.  All four tables are tenant-scope: they exist in every store
// a tenant can resolve to, and in the control store for SUPER_ADMIN and
// shared tenants.
package identity

import "time"

// User mirrors one row in `auth_users`.  Password carries the bcrypt
// hash and is never serialised.
type User struct {
	ID          string    `db:"user_id"      json:"user_id"`
	Email       string    `db:"email"        json:"email"`
	FirstName   *string   `db:"first_name"   json:"first_name"`
	LastName    *string   `db:"last_name"    json:"last_name"`
	PhoneNumber *string   `db:"phone_number" json:"phone_number"`
	Password    *string   `db:"password"     json:"-"`
	Role        Role      `db:"role_id"      json:"role_id"`
	TenantID    *string   `db:"tenant_id"    json:"-"`
	IsActive    bool      `db:"is_active"    json:"-"`
	IsDeleted   bool      `db:"is_deleted"   json:"-"`
	CreatedBy   *string   `db:"created_by"   json:"-"`
	UpdatedBy   *string   `db:"updated_by"   json:"-"`
	CreatedAt   time.Time `db:"created_dtm"  json:"-"`
	UpdatedAt   time.Time `db:"updated_dtm"  json:"-"`
}

// Token mirrors one row in `tokens` — an opaque login-session credential.
type Token struct {
	Token     string    `db:"token"       json:"token"`
	UserID    string    `db:"user_id"     json:"-"`
	TenantID  *string   `db:"tenant_id"   json:"-"`
	CreatedAt time.Time `db:"created_dtm" json:"created_dtm"`
}

// Permission mirrors one row in `permissions` — a (module, action) pair
// with a human-readable name, unique per tenant.
type Permission struct {
	ID        string    `db:"permission_id" json:"permission_id"`
	Name      string    `db:"name"          json:"name"`
	Module    string    `db:"module"        json:"module"`
	Action    string    `db:"action"        json:"action"`
	TenantID  *string   `db:"tenant_id"     json:"-"`
	IsActive  bool      `db:"is_active"     json:"-"`
	IsDeleted bool      `db:"is_deleted"    json:"-"`
	CreatedAt time.Time `db:"created_dtm"   json:"-"`
	UpdatedAt time.Time `db:"updated_dtm"   json:"-"`
}

// RolePermissionMapping grants a role the right to invoke a permission.
type RolePermissionMapping struct {
	ID           string    `db:"role_permission_mapping_id" json:"role_permission_mapping_id"`
	Role         Role      `db:"role_id"                    json:"role_id"`
	PermissionID string    `db:"permission_id"              json:"permission_id"`
	TenantID     *string   `db:"tenant_id"                  json:"-"`
	CreatedAt    time.Time `db:"created_dtm"                json:"-"`
}
