// internal/auth/middleware.go
//
// Authentication middleware.  Runs after tenant resolution: select the
// scheme for the request, resolve the store the credential must be
// checked against, and try each authenticator in order.  The first
// success attaches the identity to the context; exhaustion rejects with
// the last authenticator's error.
package auth

import (
	"net/http"

	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Middleware builds the authentication stage.
func Middleware(sel *Selector, stores *tenant.Stores) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			auths, err := sel.Select(r)
			if err != nil {
				respond.Error(w, err)
				return
			}

			storeName, err := stores.ResolveRequest(ctx)
			if err != nil {
				respond.Error(w, err)
				return
			}
			db, err := stores.DB(storeName)
			if err != nil {
				respond.Error(w, err)
				return
			}

			authErr := error(respond.ErrUnauthorized)
			for _, a := range auths {
				u, err := a.Authenticate(r, db)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithUser(ctx, u)))
					return
				}
				authErr = err
			}
			respond.Error(w, authErr)
		})
	}
}
