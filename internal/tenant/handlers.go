// internal/tenant/handlers.go
//
// Administrative tenant endpoints.
//
// Context
// -------
// Tenants and their configurations live in the control store and are
// managed from the apex host, outside tenant awareness.  Creating a
// configuration is the moment a tenant becomes usable: the row is
// validated, persisted, the backing store is provisioned, and the
// permission catalog is loaded into it.  The cached tenant snapshot is
// evicted on every mutation so the resolver sees the new state on the
// next request.
//
// Catalog loading lives in a higher layer; it is injected as a plain
// function to keep this package below it in the import graph.
package tenant

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/store"
)

// LoadPermissionsFunc provisions a tenant's permission catalog.
type LoadPermissionsFunc func(ctx context.Context, tenantID string) error

// Handlers bundles the dependencies of the tenant admin endpoints.
type Handlers struct {
	Control         *sqlx.DB
	Stores          *Stores
	Cache           *Cache
	LoadPermissions LoadPermissionsFunc
}

type createTenantRequest struct {
	Code string `json:"tenant_code" validate:"required,alphanum,lowercase"`
	Name string `json:"tenant_name" validate:"required"`
}

// ListTenants handles GET /api/tenants.
func (h *Handlers) ListTenants(w http.ResponseWriter, r *http.Request) {
	rows, err := List(r.Context(), h.Control)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if rows == nil {
		rows = []Tenant{}
	}
	respond.JSON(w, http.StatusOK, rows)
}

// GetTenant handles GET /api/tenants/{id}.
func (h *Handlers) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := ByID(r.Context(), h.Control, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if t == nil {
		respond.Error(w, respond.ErrNotFound)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

// CreateTenant handles POST /api/tenants.
func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	existing, err := ByCode(r.Context(), h.Control, req.Code)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if existing != nil {
		respond.Error(w, respond.ErrBadRequest.WithMessage("tenant code %q is taken", req.Code))
		return
	}

	t := &Tenant{Code: req.Code, Name: req.Name, IsActive: true}
	if err := Create(r.Context(), h.Control, t); err != nil {
		respond.Error(w, err)
		return
	}
	h.Cache.Evict(t.Code)
	respond.JSON(w, http.StatusCreated, t)
}

type createConfigRequest struct {
	AuthenticationType AuthenticationType      `json:"authentication_type" validate:"required"`
	DatabaseStrategy   Strategy                `json:"database_strategy"   validate:"required"`
	DatabaseServer     store.Engine            `json:"database_server"     validate:"required"`
	DatabaseConfig     *store.ConnectionConfig `json:"database_config"`
}

// GetConfig handles GET /api/tenants/{id}/configuration.
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := ConfigByTenant(r.Context(), h.Control, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if cfg == nil {
		respond.Error(w, respond.ErrConfigurationMissing)
		return
	}
	respond.JSON(w, http.StatusOK, cfg)
}

// CreateConfig handles POST /api/tenants/{id}/configuration.  On
// success the tenant's store exists, is migrated, and carries the full
// permission catalog.
func (h *Handlers) CreateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "id")

	t, err := ByID(ctx, h.Control, tenantID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if t == nil {
		respond.Error(w, respond.ErrTenantInvalid)
		return
	}
	if existing, err := ConfigByTenant(ctx, h.Control, tenantID); err != nil {
		respond.Error(w, err)
		return
	} else if existing != nil {
		respond.Error(w, respond.ErrBadRequest.WithMessage("tenant is already configured"))
		return
	}

	var req createConfigRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	cfg := &Configuration{
		TenantID:           tenantID,
		AuthenticationType: req.AuthenticationType,
		DatabaseStrategy:   req.DatabaseStrategy,
		DatabaseServer:     req.DatabaseServer,
		IsActive:           true,
	}
	if req.DatabaseConfig != nil {
		cfg.DatabaseConfig = NewDatabaseConfig(*req.DatabaseConfig)
	}
	if err := cfg.Validate(); err != nil {
		respond.Error(w, err)
		return
	}

	if err := CreateConfig(ctx, h.Control, cfg); err != nil {
		respond.Error(w, err)
		return
	}
	if _, err := h.Stores.Provision(ctx, t, cfg); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.LoadPermissions(ctx, tenantID); err != nil {
		respond.Error(w, err)
		return
	}

	h.Cache.Evict(t.Code)
	respond.JSON(w, http.StatusCreated, cfg)
}

// ReloadPermissions handles POST /api/tenants/{id}/permissions/load;
// re-running after a deploy picks up newly registered endpoints.
func (h *Handlers) ReloadPermissions(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")
	t, err := ByID(r.Context(), h.Control, tenantID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if t == nil {
		respond.Error(w, respond.ErrTenantInvalid)
		return
	}
	if err := h.LoadPermissions(r.Context(), tenantID); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "permission catalog loaded"})
}
