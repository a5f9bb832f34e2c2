// internal/tenant/context.go
//
// Request-scoped tenant context.
//
// Context
// -------
// The resolved tenant and the tenant-awareness flag travel on the
// request's context.Context under unexported keys.  Because the values
// are bound to one request's context chain, they cannot leak into the
// next request on a reused worker — there is no clear step to forget.
package tenant

import "context"

type tenantKey struct{}
type awareKey struct{}

// WithTenant returns a context carrying the resolved tenant.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, t)
}

// FromContext returns the resolved tenant, or nil when the request is
// outside any tenant scope.
func FromContext(ctx context.Context) *Tenant {
	t, _ := ctx.Value(tenantKey{}).(*Tenant)
	return t
}

// WithAware marks the request's tenant-awareness.
func WithAware(ctx context.Context, aware bool) context.Context {
	return context.WithValue(ctx, awareKey{}, aware)
}

// IsAware reports whether the request must be bound to a tenant.  The
// zero value is false: a request that never passed the resolver is not
// tenant-aware.
func IsAware(ctx context.Context) bool {
	aware, _ := ctx.Value(awareKey{}).(bool)
	return aware
}
