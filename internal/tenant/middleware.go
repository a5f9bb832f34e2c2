// internal/tenant/middleware.go
//
// Tenant resolution middleware.
//
// Context
// -------
// Runs before authentication on every request:
//
//  1. Derive the candidate tenant code from the Host header: split on
//     ".", first label when two or more labels exist, else none.
//  2. Resolve the code through the cache (control store on miss) and put
//     the tenant on the request context.
//  3. Resolve the chi route pattern for the request and consult the
//     exclusion registry.  Excluded ⇒ awareness forced false, even when
//     a tenant did resolve.
//  4. Not excluded and no tenant ⇒ reject with Tenant-Invalid before any
//     authentication or store access.
//
// The resolver needs the fully-built router to match patterns, but the
// router needs the middleware installed while routes are still being
// added, so the mux is bound late via BindRouter.
package tenant

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stocklot/stocklot/internal/respond"
)

// Resolver is the middleware factory.
type Resolver struct {
	cache *Cache
	mux   *chi.Mux
}

// NewResolver constructs a Resolver over the tenant cache.
func NewResolver(cache *Cache) *Resolver {
	return &Resolver{cache: cache}
}

// BindRouter attaches the finished mux.  Must be called after all routes
// are registered and before the first request.
func (rv *Resolver) BindRouter(m *chi.Mux) { rv.mux = m }

// Middleware resolves the tenant and enforces tenant awareness.
func (rv *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		code := CodeFromHost(r.Host)
		if code != "" {
			t, err := rv.cache.Get(ctx, code)
			switch {
			case err == nil:
				ctx = WithTenant(ctx, t)
			case err == ErrNotFound:
				// Not an error by itself; the exclusion check decides.
			default:
				zap.S().Errorw("tenant resolve", "code", code, "err", err)
			}
		}

		pattern := rv.routePattern(r.Method, r.URL.Path)
		if pattern != "" && IsExcluded(pattern, r.Method) {
			next.ServeHTTP(w, r.WithContext(WithAware(ctx, false)))
			return
		}

		if FromContext(ctx) == nil {
			respond.Error(w, respond.ErrTenantInvalid)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAware(ctx, true)))
	})
}

// routePattern resolves the chi pattern the request will match, or ""
// for unregistered paths.
func (rv *Resolver) routePattern(method, path string) string {
	if rv.mux == nil {
		return ""
	}
	rctx := chi.NewRouteContext()
	if !rv.mux.Match(rctx, method, path) {
		return ""
	}
	return rctx.RoutePattern()
}

// CodeFromHost extracts the subdomain label used as the tenant code.  A
// bare host ("localhost") has no code.
func CodeFromHost(host string) string {
	host = stripPort(host)
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return parts[0]
	}
	return ""
}

// stripPort removes any ":port" suffix from the Host header.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
