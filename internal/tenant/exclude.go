// internal/tenant/exclude.go
//
// Tenant-awareness exclusion registry.
//
// Context
// -------
// Some routes must work without a resolvable tenant: health checks,
// metrics, and the administrative login.  Each such route registers
// itself here at definition time, with either an explicit method list or
// all methods.  The table is written only during single-threaded startup
// and is read-only at request time, so lookups take no lock.
//
// Lookup is exact match on the resolved chi route pattern plus method.
// A path that resolves to no registered pattern is treated as
// not-excluded — unknown routes still require a tenant and will 404
// later.
package tenant

import "strings"

// allMethods is the sentinel stored for method-unrestricted exclusions.
var allMethods = []string(nil)

var excluded = map[string][]string{}

// Exclude registers a route pattern as exempt from tenant awareness.  An
// empty methods list exempts every method.  Repeat calls for the same
// pattern merge their method lists, so each verb's route definition can
// register inline.  Returns the pattern.
func Exclude(pattern string, methods ...string) string {
	if len(methods) == 0 {
		excluded[pattern] = allMethods
		return pattern
	}
	existing, ok := excluded[pattern]
	if ok && len(existing) == 0 {
		// Already exempt for every method; nothing to narrow.
		return pattern
	}
	for _, m := range methods {
		m = strings.ToUpper(m)
		if !containsMethod(existing, m) {
			existing = append(existing, m)
		}
	}
	excluded[pattern] = existing
	return pattern
}

func containsMethod(ms []string, method string) bool {
	for _, m := range ms {
		if m == method {
			return true
		}
	}
	return false
}

// IsExcluded reports whether pattern+method is exempt from tenant
// awareness.
func IsExcluded(pattern, method string) bool {
	ms, ok := excluded[pattern]
	if !ok {
		return false
	}
	if len(ms) == 0 {
		return true
	}
	return containsMethod(ms, strings.ToUpper(method))
}

// ResetExclusions clears the registry.  Tests only.
func ResetExclusions() { excluded = map[string][]string{} }
