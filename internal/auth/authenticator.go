// internal/auth/authenticator.go
//
// Authentication-scheme selection.
//
// Context
// -------
// Every request gets an ordered list of authenticators:
//
//   - Requests outside tenant scope (excluded routes, administrative
//     global scope) use the statically configured default set.
//   - Tenant-aware requests follow the tenant configuration's
//     `authentication_type`: TOKEN ⇒ the default opaque-token set,
//     JWT_TOKEN ⇒ the bearer authenticator.  Any other value is a
//     configuration error rejected before authentication runs.
package auth

import (
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Authenticator extracts an identity from a request against the resolved
// store.  Implementations return respond.ErrUnauthorized for missing or
// invalid credentials.
type Authenticator interface {
	Authenticate(r *http.Request, db *sqlx.DB) (*identity.User, error)
}

// Selector decides which authenticators apply to a request.
type Selector struct {
	control    *sqlx.DB
	tokenSet   []Authenticator
	bearerSet  []Authenticator
	defaultSet []Authenticator
}

// NewSelector builds a Selector.  defaultScheme names the scheme used
// outside tenant scope; it defaults to TOKEN.
func NewSelector(control *sqlx.DB, cache *IdentityCache, secret string, defaultScheme tenant.AuthenticationType) *Selector {
	tokenSet := []Authenticator{NewTokenAuthenticator()}
	bearerSet := []Authenticator{NewBearerAuthenticator(secret, cache)}

	def := tokenSet
	if defaultScheme == tenant.AuthJWT {
		def = bearerSet
	}

	return &Selector{control: control, tokenSet: tokenSet, bearerSet: bearerSet, defaultSet: def}
}

// Select returns the authenticators for the request, in order.
func (s *Selector) Select(r *http.Request) ([]Authenticator, error) {
	ctx := r.Context()
	if !tenant.IsAware(ctx) {
		return s.defaultSet, nil
	}

	t := tenant.FromContext(ctx)
	cfg, err := tenant.ConfigByTenant(ctx, s.control, t.ID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, respond.ErrConfigurationMissing
	}

	switch cfg.AuthenticationType {
	case tenant.AuthToken:
		return s.tokenSet, nil
	case tenant.AuthJWT:
		return s.bearerSet, nil
	default:
		return nil, respond.ErrAuthNotConfigured
	}
}

// credential pulls the value out of an Authorization header of the form
// "<keyword> <value>".  Returns "" when the header is absent or not of
// the expected keyword.
func credential(r *http.Request, keywords ...string) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	for _, kw := range keywords {
		if strings.HasPrefix(header, kw+" ") {
			return strings.TrimSpace(header[len(kw)+1:])
		}
	}
	return ""
}
