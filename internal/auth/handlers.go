// internal/auth/handlers.go
//
// Login and logout endpoints.
//
// Context
// -------
// Login verifies the password against the resolved store and issues both
// credential kinds at once: an opaque token row (for TOKEN tenants) and
// a signed bearer credential (for JWT tenants).  The tenant-scope login
// runs inside tenant awareness; the administrative login is registered on
// an excluded route and therefore resolves against the control store.
//
// Logout revokes the opaque token and evicts the decoded-identity cache
// entry — the only invalidation the cache contract promises.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Handlers bundles the dependencies of the auth endpoints.
type Handlers struct {
	Stores *tenant.Stores
	Cache  *IdentityCache
	Secret string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string         `json:"token"`
	AccessToken string         `json:"access_token"`
	User        *identity.User `json:"user"`
}

// Login handles POST /api/auth/login and POST /api/auth/admin/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(w, respond.ErrBadRequest.WithMessage("email and password are required"))
		return
	}

	ctx := r.Context()
	db, err := h.requestDB(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	u, err := identity.UserByEmail(ctx, db, req.Email)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if u == nil || u.Password == nil ||
		bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(req.Password)) != nil {
		respond.Error(w, respond.ErrUnauthorized)
		return
	}

	opaque, err := newOpaqueToken()
	if err != nil {
		respond.Error(w, err)
		return
	}
	tok := &identity.Token{Token: opaque, UserID: u.ID, TenantID: u.TenantID}
	if err := identity.CreateToken(ctx, db, tok); err != nil {
		respond.Error(w, err)
		return
	}

	access, err := h.signJWT(u)
	if err != nil {
		respond.Error(w, err)
		return
	}

	// A fresh login is the one moment a stale snapshot is guaranteed
	// replaceable; evict so the next bearer request reloads the row.
	h.Cache.Evict(h.tenantID(r), u.ID)

	respond.JSON(w, http.StatusOK, loginResponse{Token: opaque, AccessToken: access, User: u})
}

// Logout handles DELETE /api/auth/logout and its excluded administrative
// twin.  Requires authentication; the credential being revoked is the one
// presented, deleted from whichever store the request resolved to.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	u := UserFromContext(r.Context())
	if u == nil {
		respond.Error(w, respond.ErrUnauthorized)
		return
	}

	db, err := h.requestDB(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if cred := credential(r, "Token", "Bearer"); cred != "" {
		if err := identity.DeleteToken(r.Context(), db, cred); err != nil {
			respond.Error(w, err)
			return
		}
	}
	h.Cache.Evict(h.tenantID(r), u.ID)

	respond.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handlers) requestDB(r *http.Request) (*sqlx.DB, error) {
	db, _, err := h.Stores.RequestDB(r.Context())
	return db, err
}

func newOpaqueToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (h *Handlers) signJWT(u *identity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role_id": string(u.Role),
	}
	if u.TenantID != nil {
		claims["tenant_id"] = *u.TenantID
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(h.Secret))
}

func (h *Handlers) tenantID(r *http.Request) string {
	if t := tenant.FromContext(r.Context()); t != nil && tenant.IsAware(r.Context()) {
		return t.ID
	}
	return ""
}
