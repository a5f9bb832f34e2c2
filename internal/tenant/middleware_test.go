// internal/tenant/middleware_test.go
//
// Unit-tests for tenant resolution.
//
// Context
// -------
// The resolver derives a candidate code from the Host header, loads the
// tenant through the cache (sqlmock-backed control store here), and
// enforces awareness: excluded routes pass without a tenant, everything
// else is rejected with TENANT_INVALID.
package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

func newMockControl(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func tenantRows(id, code, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"tenant_id", "tenant_code", "tenant_name", "is_active", "is_deleted",
		"created_by", "updated_by", "created_dtm", "updated_dtm",
	}).AddRow(id, code, name, true, false, nil, nil, time.Now(), time.Now())
}

func TestCodeFromHost(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"acme.example.com", "acme"},
		{"acme.example.com:8080", "acme"},
		{"example.com", "example"},
		{"localhost", ""},
		{"localhost:8080", ""},
	}
	for _, c := range cases {
		if got := CodeFromHost(c.host); got != c.want {
			t.Errorf("CodeFromHost(%q) = %q, want %q", c.host, got, c.want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := req.Context()

	if FromContext(ctx) != nil {
		t.Fatal("fresh context should carry no tenant")
	}
	if IsAware(ctx) {
		t.Fatal("fresh context should not be aware")
	}

	tn := &Tenant{ID: "t1", Code: "acme"}
	ctx = WithAware(WithTenant(ctx, tn), true)

	if got := FromContext(ctx); got != tn {
		t.Fatalf("FromContext = %+v, want the stored tenant", got)
	}
	if !IsAware(ctx) {
		t.Fatal("context should be aware")
	}
}

// buildResolved wires a resolver over a tiny route table and returns the
// mux plus a channel-free way to observe the handled context.
func buildResolved(t *testing.T, control *sqlx.DB) (*chi.Mux, *Resolver) {
	t.Helper()
	ResetExclusions()
	t.Cleanup(ResetExclusions)

	rv := NewResolver(NewCache(control))
	mux := chi.NewRouter()
	mux.Use(rv.Middleware)
	rv.BindRouter(mux)
	return mux, rv
}

func TestResolver_ExcludedRouteUnknownHost(t *testing.T) {
	control, mock := newMockControl(t)
	mux, _ := buildResolved(t, control)

	mock.ExpectQuery("SELECT (.+) FROM(.+)tenants").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id"})) // no rows

	var aware, sawTenant bool
	mux.Get(Exclude("/healthz", http.MethodGet), func(w http.ResponseWriter, r *http.Request) {
		aware = IsAware(r.Context())
		sawTenant = FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Host = "nosuch.example.com"
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if aware || sawTenant {
		t.Fatalf("excluded route: aware=%v tenant=%v, want neither", aware, sawTenant)
	}
}

func TestResolver_UnknownTenantRejected(t *testing.T) {
	control, mock := newMockControl(t)
	mux, _ := buildResolved(t, control)

	mock.ExpectQuery("SELECT (.+) FROM(.+)tenants").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id"}))

	mux.Get("/api/users", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Host = "nosuch.example.com"
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestResolver_KnownTenantAware(t *testing.T) {
	control, mock := newMockControl(t)
	mux, _ := buildResolved(t, control)

	mock.ExpectQuery("SELECT (.+) FROM(.+)tenants").
		WithArgs("acme").
		WillReturnRows(tenantRows("t1", "acme", "Acme Inc"))

	var gotID string
	var aware bool
	mux.Get("/api/users", func(w http.ResponseWriter, r *http.Request) {
		if tn := FromContext(r.Context()); tn != nil {
			gotID = tn.ID
		}
		aware = IsAware(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Host = "acme.example.com"
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotID != "t1" || !aware {
		t.Fatalf("tenant=%q aware=%v, want t1/true", gotID, aware)
	}

	// Second request is served from the cache: no further expectations.
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("cached request status = %d, want 200", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
