// internal/authz/registry.go
//
// Process-wide permission catalog.
//
// Context
// -------
// Every protected endpoint declares its (module, action, display name)
// tuple once, at route-definition time.  The registry is the canonical
// list of everything the system can protect; it is not tenant-scoped.
// The loader copies it into each tenant's permission table, and the
// enforcer resolves incoming requests against those persisted rows.
//
// Registration happens during single-threaded start-up and the table is
// read-only afterwards; the mutex only guards the window where multiple
// route initialisers could run.
package authz

import (
	"fmt"
	"sync"
)

// RegisteredAction is one catalog entry under a module.
type RegisteredAction struct {
	Action string
	Name   string
}

var (
	registryMu sync.Mutex
	registry   = map[string][]RegisteredAction{}
)

// register adds a catalog entry.  Declaring the same (module, action)
// twice is a programming error and panics at start-up.
func register(module, action, name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, a := range registry[module] {
		if a.Action == action {
			panic(fmt.Sprintf("authz: duplicate registration %s/%s", module, action))
		}
	}
	registry[module] = append(registry[module], RegisteredAction{Action: action, Name: name})
}

// Catalog returns a copy of the full registry, keyed by module.
func Catalog() map[string][]RegisteredAction {
	registryMu.Lock()
	defer registryMu.Unlock()

	out := make(map[string][]RegisteredAction, len(registry))
	for m, actions := range registry {
		out[m] = append([]RegisteredAction(nil), actions...)
	}
	return out
}

// ResetRegistry empties the catalog.  Test hook.
func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = map[string][]RegisteredAction{}
}
