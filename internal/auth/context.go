// internal/auth/context.go
//
// Authenticated-identity context helpers.  The authentication middleware
// stores the resolved *identity.User here; the permission enforcer and
// handlers read it back.
package auth

import (
	"context"

	"github.com/stocklot/stocklot/internal/identity"
)

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying the authenticated user.
func WithUser(ctx context.Context, u *identity.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext extracts the authenticated user, or nil.
func UserFromContext(ctx context.Context) *identity.User {
	u, _ := ctx.Value(userKey{}).(*identity.User)
	return u
}
