// internal/store/registry.go
//
// Global store table.
//
// Context
// -------
// The registry maps store name → live connection.  It is read on every
// request for SEPARATE-strategy tenants and mutated only by provisioning,
// so reads take an RLock and the provisioning check-then-create sequence
// is collapsed per name through singleflight: two concurrent requests
// racing to provision the same new tenant produce exactly one open and
// one migration run.
//
// Notes
// -----
// • Registration is the LAST step of provisioning; a store never appears
//   in the table until its physical backend exists and is migrated.
// • Cross-tenant operations never contend beyond the brief map lock.
package store

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/stocklot/stocklot/internal/metrics"
)

// Registry is the process-wide store table.
type Registry struct {
	dataDir string

	mu     sync.RWMutex
	stores map[string]*Store
	sfg    singleflight.Group
}

// NewRegistry constructs an empty registry.  dataDir is where embedded
// store files for dedicated tenants are created.
func NewRegistry(dataDir string) *Registry {
	return &Registry{
		dataDir: dataDir,
		stores:  make(map[string]*Store, 8),
	}
}

// SetDefault installs the control store under DefaultName.
func (r *Registry) SetDefault(s *Store) {
	s.Name = DefaultName
	r.mu.Lock()
	r.stores[DefaultName] = s
	r.mu.Unlock()
	metrics.ActiveStores.Inc()
}

// Default returns the control store.  It panics if bootstrap has not
// installed one; nothing can run without the control store.
func (r *Registry) Default() *Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[DefaultName]
	if !ok {
		panic("store: registry has no default store")
	}
	return s
}

// Get returns the named store when registered.
func (r *Registry) Get(name string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[name]
	return s, ok
}

// Has reports registration by name only.  This is the fast path the
// data-source router takes for tenants whose code is already a store.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.stores[name]
	return ok
}

// Ensure returns the named store, invoking open exactly once across
// concurrent callers when it is absent.  open runs outside the map lock;
// its result is registered before Ensure returns.
func (r *Registry) Ensure(name string, open func() (*Store, error)) (*Store, error) {
	if s, ok := r.Get(name); ok {
		return s, nil
	}

	v, err, _ := r.sfg.Do(name, func() (any, error) {
		// Double-check after the singleflight barrier.
		if s, ok := r.Get(name); ok {
			return s, nil
		}
		s, err := open()
		if err != nil {
			return nil, err
		}
		s.Name = name
		r.mu.Lock()
		r.stores[name] = s
		r.mu.Unlock()
		metrics.ActiveStores.Inc()
		metrics.StoreProvisionTotal.Inc()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// SQLitePath derives the embedded store file path for a store name.  The
// file itself is created lazily by the first write.
func (r *Registry) SQLitePath(name string) string {
	return filepath.Join(r.dataDir, name+".sqlite3")
}

// Close releases every registered pool.  Used on shutdown and in tests.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, s := range r.stores {
		_ = s.DB.Close()
		delete(r.stores, name)
		metrics.ActiveStores.Dec()
	}
}
