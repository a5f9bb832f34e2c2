// internal/identity/handlers.go
//
// User, permission, and role-mapping endpoints.
//
// Context
// -------
// All three surfaces operate on the store the request resolved to, so
// the same handlers serve tenant-aware hosts and the apex host.  User
// creation hashes the password with bcrypt before the row is written;
// the hash never leaves the store.
package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Handlers bundles the dependencies of the identity endpoints.
type Handlers struct {
	Stores *tenant.Stores
}

//
// users
//

type createUserRequest struct {
	Email       string  `json:"email"        validate:"required,email"`
	Password    string  `json:"password"     validate:"required,min=8"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Role        Role    `json:"role_id"      validate:"required"`
}

// ListUsers handles GET /api/users.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	db, _, err := h.Stores.RequestDB(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	rows, err := ListUsers(r.Context(), db)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if rows == nil {
		rows = []User{}
	}
	respond.JSON(w, http.StatusOK, rows)
}

// GetUser handles GET /api/users/{id}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	db, _, err := h.Stores.RequestDB(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	u, err := UserByID(r.Context(), db, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if u == nil {
		respond.Error(w, respond.ErrNotFound)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// CreateUser handles POST /api/users.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if !req.Role.Valid() {
		respond.Error(w, respond.ErrBadRequest.WithMessage("unknown role %q", req.Role))
		return
	}

	ctx := r.Context()
	db, tenantID, err := h.Stores.RequestDB(ctx)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if req.Role.TenantScoped() && tenantID == "" {
		respond.Error(w, respond.ErrBadRequest.WithMessage("role %q requires a tenant host", req.Role))
		return
	}

	if existing, err := UserByEmail(ctx, db, req.Email); err != nil {
		respond.Error(w, err)
		return
	} else if existing != nil {
		respond.Error(w, respond.ErrBadRequest.WithMessage("email is taken"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, err)
		return
	}
	hashed := string(hash)

	u := &User{
		Email:       req.Email,
		Password:    &hashed,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		IsActive:    true,
	}
	if tenantID != "" {
		u.TenantID = &tenantID
	}
	if err := CreateUser(ctx, db, u); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, u)
}

//
// company admins
//

type companyAdminRequest struct {
	TenantID    string  `json:"tenant_id"    validate:"required"`
	Email       string  `json:"email"        validate:"required,email"`
	Password    string  `json:"password"     validate:"required,min=8"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

// CreateCompanyAdmin handles POST /api/company-admins.  The route is
// excluded from tenant awareness: the super admin calls it from the apex
// host to seed the first COMPANY_ADMIN of a freshly provisioned tenant,
// and the row is written into that tenant's resolved store rather than
// the control store.
func (h *Handlers) CreateCompanyAdmin(w http.ResponseWriter, r *http.Request) {
	var req companyAdminRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	name, err := h.Stores.ResolveID(ctx, req.TenantID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	db, err := h.Stores.DB(name)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if existing, err := UserByEmail(ctx, db, req.Email); err != nil {
		respond.Error(w, err)
		return
	} else if existing != nil {
		respond.Error(w, respond.ErrBadRequest.WithMessage("email is taken"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, err)
		return
	}
	hashed := string(hash)

	u := &User{
		Email:       req.Email,
		Password:    &hashed,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        RoleCompanyAdmin,
		TenantID:    &req.TenantID,
		IsActive:    true,
	}
	if err := CreateUser(ctx, db, u); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, u)
}

// ListCompanyAdmins handles GET /api/company-admins?tenant_id=…, reading
// from the named tenant's resolved store.
func (h *Handlers) ListCompanyAdmins(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		respond.Error(w, respond.ErrBadRequest.WithMessage("tenant_id is required"))
		return
	}

	ctx := r.Context()
	name, err := h.Stores.ResolveID(ctx, tenantID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	db, err := h.Stores.DB(name)
	if err != nil {
		respond.Error(w, err)
		return
	}

	rows, err := ListUsersByRole(ctx, db, RoleCompanyAdmin)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if rows == nil {
		rows = []User{}
	}
	respond.JSON(w, http.StatusOK, rows)
}

//
// permissions
//

// ListPermissions handles GET /api/permissions — the tenant's persisted
// catalog.
func (h *Handlers) ListPermissions(w http.ResponseWriter, r *http.Request) {
	db, tenantID, err := h.Stores.RequestDB(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	rows, err := ListPermissions(r.Context(), db, tenantID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if rows == nil {
		rows = []Permission{}
	}
	respond.JSON(w, http.StatusOK, rows)
}

//
// role-permission mappings
//

type mappingRequest struct {
	Role         Role   `json:"role_id"       validate:"required"`
	PermissionID string `json:"permission_id" validate:"required"`
}

// CreateMapping handles POST /api/role-permissions.
func (h *Handlers) CreateMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if !req.Role.Valid() {
		respond.Error(w, respond.ErrBadRequest.WithMessage("unknown role %q", req.Role))
		return
	}

	ctx := r.Context()
	db, tenantID, err := h.Stores.RequestDB(ctx)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if exists, err := MappingExists(ctx, db, req.Role, req.PermissionID); err != nil {
		respond.Error(w, err)
		return
	} else if exists {
		respond.Error(w, respond.ErrBadRequest.WithMessage("mapping already exists"))
		return
	}

	m := &RolePermissionMapping{Role: req.Role, PermissionID: req.PermissionID}
	if tenantID != "" {
		m.TenantID = &tenantID
	}
	if err := CreateMapping(ctx, db, m); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, m)
}

// DeleteMapping handles DELETE /api/role-permissions.
func (h *Handlers) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	db, _, err := h.Stores.RequestDB(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := DeleteMapping(r.Context(), db, req.Role, req.PermissionID); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "mapping removed"})
}
