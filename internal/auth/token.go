// internal/auth/token.go
//
// Opaque-token authenticator — the default scheme.  The credential is
// matched exactly against the persisted per-user token store in the
// resolved database; no decoding is involved.
package auth

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/respond"
)

// TokenAuthenticator resolves `Authorization: Token <value>` credentials.
type TokenAuthenticator struct{}

// NewTokenAuthenticator returns the stateless token authenticator.
func NewTokenAuthenticator() *TokenAuthenticator { return &TokenAuthenticator{} }

// Authenticate looks the token up in the resolved store.
func (a *TokenAuthenticator) Authenticate(r *http.Request, db *sqlx.DB) (*identity.User, error) {
	cred := credential(r, "Token", "Bearer")
	if cred == "" {
		return nil, respond.ErrUnauthorized
	}

	u, err := identity.UserByToken(r.Context(), db, cred)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, respond.ErrUnauthorized
	}
	return u, nil
}
