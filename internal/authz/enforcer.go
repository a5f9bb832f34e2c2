// internal/authz/enforcer.go
//
// Per-request permission enforcement.
//
// Context
// -------
// Each protected route is wrapped in one of three middlewares built
// here.  All three write an audit entry before anything else, so the
// trail records denied attempts too.  The decision order after that is
// fixed:
//
//  1. Audit-only routes invoke the handler directly.
//  2. SUPER_ADMIN is derived from the caller's role.  Administrative
//     routes (no catalog entry) require it outright.
//  3. The persisted permission row is looked up by (module, action,
//     tenant).  A missing row is a deployment bug, and surfaces as
//     its own error code rather than a denial.
//  4. SUPER_ADMIN and, when tenant-aware, COMPANY_ADMIN are granted
//     without a mapping row.  Everyone else needs a persisted
//     role-permission mapping.
package authz

import (
	"net/http"

	"github.com/stocklot/stocklot/internal/audit"
	"github.com/stocklot/stocklot/internal/auth"
	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/metrics"
	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Enforcer builds the authorization middlewares for protected routes.
type Enforcer struct {
	stores *tenant.Stores
	audit  *audit.Recorder
}

// NewEnforcer wires an Enforcer to the store router and audit trail.
func NewEnforcer(stores *tenant.Stores, rec *audit.Recorder) *Enforcer {
	return &Enforcer{stores: stores, audit: rec}
}

// Require registers (module, action, name) in the catalog and returns
// the middleware enforcing it.
func (e *Enforcer) Require(module, action, name string) func(http.Handler) http.Handler {
	register(module, action, name)
	return e.middleware(rule{module: module, action: action, check: true, catalog: true})
}

// Enforce returns the middleware for a (module, action) pair another
// route already registered, so several routes can share one catalog
// entry.
func (e *Enforcer) Enforce(module, action string) func(http.Handler) http.Handler {
	return e.middleware(rule{module: module, action: action, check: true, catalog: true})
}

// AdminOnly returns a middleware for administrative routes that have no
// catalog entry; only SUPER_ADMIN passes.
func (e *Enforcer) AdminOnly(module, action string) func(http.Handler) http.Handler {
	return e.middleware(rule{module: module, action: action, check: true, catalog: false})
}

// AuditOnly returns a middleware that records the call and skips the
// authorization decision.
func (e *Enforcer) AuditOnly(module string) func(http.Handler) http.Handler {
	return e.middleware(rule{module: module, check: false})
}

type rule struct {
	module  string
	action  string
	check   bool
	catalog bool
}

func (e *Enforcer) middleware(ru rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			u := auth.UserFromContext(ctx)

			actorID := ""
			if u != nil {
				actorID = u.ID
			}
			e.audit.Record(r, actorID, ru.module)

			if !ru.check {
				next.ServeHTTP(w, r)
				return
			}
			if u == nil {
				respond.Error(w, respond.ErrUnauthorized)
				return
			}

			isSuperAdmin := u.Role == identity.RoleSuperAdmin

			if !ru.catalog {
				if isSuperAdmin {
					next.ServeHTTP(w, r)
					return
				}
				e.deny(w)
				return
			}

			db, tenantID, err := e.stores.RequestDB(ctx)
			if err != nil {
				respond.Error(w, err)
				return
			}

			perm, err := identity.PermissionByModuleAction(ctx, db, ru.module, ru.action, tenantID)
			if err != nil {
				respond.Error(w, err)
				return
			}
			if perm == nil {
				respond.Error(w, respond.ErrPermissionNotRegistered)
				return
			}

			isCompanyAdmin := tenant.IsAware(ctx) && u.Role == identity.RoleCompanyAdmin
			if isSuperAdmin || isCompanyAdmin {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := identity.MappingExists(ctx, db, u.Role, perm.ID)
			if err != nil {
				respond.Error(w, err)
				return
			}
			if !ok {
				e.deny(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (e *Enforcer) deny(w http.ResponseWriter) {
	metrics.PermissionDeniedTotal.Inc()
	respond.Error(w, respond.ErrPermissionDenied)
}
