// internal/identity/role.go
//
// Closed role enumeration.
//
// SUPER_ADMIN exists outside any tenant; the other three are scoped to a
// tenant.  SUPER_ADMIN and COMPANY_ADMIN are bypass roles: the permission
// enforcer grants them without a mapping row.
package identity

// Role is the closed set of user roles.  The string values are persisted
// on user rows; they must not change.
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
	RoleManager      Role = "MANAGER"
	RoleOperator     Role = "OPERATOR"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleManager, RoleOperator:
		return true
	}
	return false
}

// TenantScoped reports whether the role only exists inside a tenant.
func (r Role) TenantScoped() bool { return r != RoleSuperAdmin }
