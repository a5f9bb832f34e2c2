// cmd/web/routes.go
//
// Route table.
//
// Grouping rules:
//
//   - Open routes skip authentication entirely: health, metrics, and
//     the two login endpoints.
//   - tenant.Exclude marks a pattern as exempt from subdomain
//     resolution; excluded requests run against the control store no
//     matter which host they arrive on.
//   - Tenant administration and the monitor endpoint are SUPER_ADMIN
//     only and carry no catalog entry.  Everything else is enforced
//     against the tenant's persisted permission catalog.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stocklot/stocklot/internal/audit"
	"github.com/stocklot/stocklot/internal/auth"
	"github.com/stocklot/stocklot/internal/authz"
	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/inventory"
	"github.com/stocklot/stocklot/internal/middleware"
	"github.com/stocklot/stocklot/internal/monitor"
	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

type deps struct {
	control  *sqlx.DB
	stores   *tenant.Stores
	cache    *tenant.Cache
	resolver *tenant.Resolver
	selector *auth.Selector
	idCache  *auth.IdentityCache
	enforcer *authz.Enforcer
	recorder *audit.Recorder
	loader   *authz.Loader
	secret   string
}

func buildRouter(d deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recover)
	r.Use(d.resolver.Middleware)

	authH := &auth.Handlers{Stores: d.stores, Cache: d.idCache, Secret: d.secret}
	tenantH := &tenant.Handlers{
		Control:         d.control,
		Stores:          d.stores,
		Cache:           d.cache,
		LoadPermissions: d.loader.LoadForTenant,
	}
	identityH := &identity.Handlers{Stores: d.stores}
	auditH := &audit.Handlers{Stores: d.stores}

	//
	// Open routes.
	//
	r.Get(tenant.Exclude("/healthz", http.MethodGet), healthz)
	r.Method(http.MethodGet, tenant.Exclude("/metrics", http.MethodGet), promhttp.Handler())
	r.Post("/api/auth/login", authH.Login)
	r.Post(tenant.Exclude("/api/auth/admin/login", http.MethodPost), authH.Login)

	//
	// Authenticated routes.
	//
	r.Group(func(g chi.Router) {
		g.Use(auth.Middleware(d.selector, d.stores))

		g.Delete("/api/auth/logout", authH.Logout)
		g.Delete(tenant.Exclude("/api/auth/admin/logout", http.MethodDelete), authH.Logout)

		// Tenant administration, on the control store from any host.
		admin := d.enforcer.AdminOnly
		g.With(admin("Tenant", "GET")).
			Get(tenant.Exclude("/api/tenants", http.MethodGet), tenantH.ListTenants)
		g.With(admin("Tenant", "POST")).
			Post(tenant.Exclude("/api/tenants", http.MethodPost), tenantH.CreateTenant)
		g.With(admin("Tenant", "GET")).
			Get(tenant.Exclude("/api/tenants/{id}", http.MethodGet), tenantH.GetTenant)
		g.With(admin("TenantConfiguration", "GET")).
			Get(tenant.Exclude("/api/tenants/{id}/configuration", http.MethodGet), tenantH.GetConfig)
		g.With(admin("TenantConfiguration", "POST")).
			Post(tenant.Exclude("/api/tenants/{id}/configuration", http.MethodPost), tenantH.CreateConfig)
		g.With(admin("Permission", "LOAD")).
			Post(tenant.Exclude("/api/tenants/{id}/permissions/load", http.MethodPost), tenantH.ReloadPermissions)

		// Seeding a freshly provisioned tenant's first COMPANY_ADMIN has
		// to happen from the apex host: the tenant's own store holds no
		// users yet, so no tenant-scope credential can exist.
		g.With(admin("CompanyAdmin", "POST")).
			Post(tenant.Exclude("/api/company-admins", http.MethodPost), identityH.CreateCompanyAdmin)
		g.With(admin("CompanyAdmin", "GET")).
			Get(tenant.Exclude("/api/company-admins", http.MethodGet), identityH.ListCompanyAdmins)

		g.With(admin("Monitor", "GET")).
			Get(tenant.Exclude("/api/monitor", http.MethodGet), monitor.Handler)

		// Identity management inside the resolved scope.
		enf := d.enforcer
		g.With(enf.Require("User", "GET", "Can view User")).Get("/api/users", identityH.ListUsers)
		g.With(enf.Require("User", "POST", "Can create User")).Post("/api/users", identityH.CreateUser)
		g.With(enf.Enforce("User", "GET")).Get("/api/users/{id}", identityH.GetUser)

		g.With(enf.Require("Permission", "GET", "Can view Permission")).
			Get("/api/permissions", identityH.ListPermissions)
		g.With(enf.Require("RolePermission", "POST", "Can grant RolePermission")).
			Post("/api/role-permissions", identityH.CreateMapping)
		g.With(enf.Require("RolePermission", "DELETE", "Can revoke RolePermission")).
			Delete("/api/role-permissions", identityH.DeleteMapping)

		g.With(enf.Require("AuditLog", "GET", "Can view AuditLog")).
			Get("/api/audit-logs", auditH.List)

		inventory.Mount(g, enf, d.stores)
	})

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
