// internal/identity/repository.go
//
// Query helpers for the identity tables.
//
// Context
// -------
// These helpers accept a *sqlx.DB already scoped to the resolved store —
// the store name is decided upstream by the data-source router, never
// here.  They are thin parameterised queries in the same shape as the
// tenant repository.
package identity

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userCols = `user_id, email, first_name, last_name, phone_number, password,
       role_id, tenant_id, is_active, is_deleted, created_by, updated_by,
       created_dtm, updated_dtm`

//
// users
//

// UserByID fetches an active user row, or (nil, nil) when absent.
func UserByID(ctx context.Context, db *sqlx.DB, id string) (*User, error) {
	const q = `
        SELECT ` + userCols + `
        FROM   auth_users
        WHERE  user_id = ? AND is_deleted = 0 AND is_active = 1
        LIMIT  1`
	var u User
	if err := db.GetContext(ctx, &u, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UserByEmail fetches an active user row by email, or (nil, nil).
func UserByEmail(ctx context.Context, db *sqlx.DB, email string) (*User, error) {
	const q = `
        SELECT ` + userCols + `
        FROM   auth_users
        WHERE  email = ? AND is_deleted = 0 AND is_active = 1
        LIMIT  1`
	var u User
	if err := db.GetContext(ctx, &u, q, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every active user in the store.
func ListUsers(ctx context.Context, db *sqlx.DB) ([]User, error) {
	const q = `
        SELECT ` + userCols + `
        FROM   auth_users
        WHERE  is_deleted = 0
        ORDER BY created_dtm`
	var rows []User
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUsersByRole returns every active user holding a role.
func ListUsersByRole(ctx context.Context, db *sqlx.DB, role Role) ([]User, error) {
	const q = `
        SELECT ` + userCols + `
        FROM   auth_users
        WHERE  role_id = ? AND is_deleted = 0
        ORDER BY created_dtm`
	var rows []User
	if err := db.SelectContext(ctx, &rows, q, role); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateUser inserts a user row; the id is generated here.
func CreateUser(ctx context.Context, db *sqlx.DB, u *User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	const q = `
        INSERT INTO auth_users (user_id, email, first_name, last_name,
                                phone_number, password, role_id, tenant_id,
                                created_by, updated_by, created_dtm, updated_dtm)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q,
		u.ID, u.Email, u.FirstName, u.LastName, u.PhoneNumber, u.Password,
		u.Role, u.TenantID, u.CreatedBy, u.UpdatedBy, u.CreatedAt, u.UpdatedAt)
	return err
}

//
// tokens
//

// UserByToken resolves an opaque token to its user, or (nil, nil).
func UserByToken(ctx context.Context, db *sqlx.DB, token string) (*User, error) {
	const q = `
        SELECT u.user_id, u.email, u.first_name, u.last_name, u.phone_number,
               u.password, u.role_id, u.tenant_id, u.is_active, u.is_deleted,
               u.created_by, u.updated_by, u.created_dtm, u.updated_dtm
        FROM   auth_users u
        JOIN   tokens t ON t.user_id = u.user_id
        WHERE  t.token = ? AND u.is_deleted = 0 AND u.is_active = 1
        LIMIT  1`
	var u User
	if err := db.GetContext(ctx, &u, q, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateToken persists a login-session token.
func CreateToken(ctx context.Context, db *sqlx.DB, t *Token) error {
	t.CreatedAt = time.Now()
	const q = `INSERT INTO tokens (token, user_id, tenant_id, created_dtm) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q, t.Token, t.UserID, t.TenantID, t.CreatedAt)
	return err
}

// DeleteToken removes a login-session token.
func DeleteToken(ctx context.Context, db *sqlx.DB, token string) error {
	const q = `DELETE FROM tokens WHERE token = ?`
	_, err := db.ExecContext(ctx, q, token)
	return err
}

//
// permissions
//

// PermissionByModuleAction fetches a tenant's permission row for a
// (module, action) pair, or (nil, nil).
func PermissionByModuleAction(ctx context.Context, db *sqlx.DB, module, action, tenantID string) (*Permission, error) {
	const q = `
        SELECT permission_id, name, module, action, tenant_id,
               is_active, is_deleted, created_dtm, updated_dtm
        FROM   permissions
        WHERE  module = ? AND action = ? AND tenant_id = ? AND is_deleted = 0
        LIMIT  1`
	var p Permission
	if err := db.GetContext(ctx, &p, q, module, action, tenantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListPermissions returns a tenant's full permission catalog.
func ListPermissions(ctx context.Context, db *sqlx.DB, tenantID string) ([]Permission, error) {
	const q = `
        SELECT permission_id, name, module, action, tenant_id,
               is_active, is_deleted, created_dtm, updated_dtm
        FROM   permissions
        WHERE  tenant_id = ? AND is_deleted = 0
        ORDER BY module, action`
	var rows []Permission
	if err := db.SelectContext(ctx, &rows, q, tenantID); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertPermission writes a catalog row, matching on (module, tenant,
// action) and overwriting name.  Safe to re-run.
func UpsertPermission(ctx context.Context, db *sqlx.DB, p *Permission) error {
	const upd = `
        UPDATE permissions
        SET    name = ?, updated_dtm = ?
        WHERE  module = ? AND action = ? AND tenant_id = ?`
	now := time.Now()
	res, err := db.ExecContext(ctx, upd, p.Name, now, p.Module, p.Action, p.TenantID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	p.ID = uuid.NewString()
	const ins = `
        INSERT INTO permissions (permission_id, name, module, action, tenant_id,
                                 created_dtm, updated_dtm)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = db.ExecContext(ctx, ins, p.ID, p.Name, p.Module, p.Action, p.TenantID, now, now)
	return err
}

//
// role-permission mappings
//

// MappingExists reports whether a (role, permission) grant exists.
func MappingExists(ctx context.Context, db *sqlx.DB, role Role, permissionID string) (bool, error) {
	const q = `
        SELECT 1
        FROM   role_permission_mappings
        WHERE  role_id = ? AND permission_id = ?
        LIMIT  1`
	var dummy int
	err := db.QueryRowxContext(ctx, q, role, permissionID).Scan(&dummy)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateMapping grants a role a permission.
func CreateMapping(ctx context.Context, db *sqlx.DB, m *RolePermissionMapping) error {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	const q = `
        INSERT INTO role_permission_mappings
               (role_permission_mapping_id, role_id, permission_id, tenant_id, created_dtm)
        VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q, m.ID, m.Role, m.PermissionID, m.TenantID, m.CreatedAt)
	return err
}

// DeleteMapping revokes a grant.
func DeleteMapping(ctx context.Context, db *sqlx.DB, role Role, permissionID string) error {
	const q = `DELETE FROM role_permission_mappings WHERE role_id = ? AND permission_id = ?`
	_, err := db.ExecContext(ctx, q, role, permissionID)
	return err
}
