// internal/authz/enforcer_test.go
//
// Unit-tests for the permission enforcer.
//
// Context
// -------
// Each case drives the middleware with a sqlmock-backed store registered
// under the tenant's code, so the resolver fast path avoids control
// queries.  Expectations are ordered: every case starts with the
// unconditional audit insert, then asserts which authorization queries
// follow and what the caller sees.
package authz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/stocklot/stocklot/internal/audit"
	"github.com/stocklot/stocklot/internal/auth"
	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/store"
	"github.com/stocklot/stocklot/internal/tenant"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// newEnforcer registers db both as the default store and under the code
// "acme".
func newEnforcer(t *testing.T, db *sqlx.DB) *Enforcer {
	t.Helper()
	reg := store.NewRegistry(t.TempDir())
	reg.SetDefault(&store.Store{Name: store.DefaultName, Engine: store.EngineSQLite, DB: db})
	if _, err := reg.Ensure("acme", func() (*store.Store, error) {
		return &store.Store{Name: "acme", Engine: store.EngineSQLite, DB: db}, nil
	}); err != nil {
		t.Fatalf("register tenant store: %v", err)
	}
	stores := tenant.NewStores(reg)
	return NewEnforcer(stores, audit.NewRecorder(stores))
}

func requestAs(role identity.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/stocks", nil)
	ctx := req.Context()
	ctx = tenant.WithTenant(ctx, &tenant.Tenant{ID: "t1", Code: "acme"})
	ctx = tenant.WithAware(ctx, true)
	if role != "" {
		ctx = auth.WithUser(ctx, &identity.User{ID: "u1", Role: role})
	}
	return req.WithContext(ctx)
}

func expectAudit(mock sqlmock.Sqlmock) {
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))
}

func permissionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"permission_id", "name", "module", "action", "tenant_id",
		"is_active", "is_deleted", "created_dtm", "updated_dtm",
	}).AddRow("p1", "Can view Stock", "Stock", "GET", "t1",
		true, false, time.Now(), time.Now())
}

func serve(mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, bool) {
	called := false
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, called
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Errors struct {
			Code string `json:"code"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return envelope.Errors.Code
}

func TestEnforcer_AuditOnlyPassesThrough(t *testing.T) {
	db, mock := newMockDB(t)
	enf := newEnforcer(t, db)

	expectAudit(mock)

	rr, called := serve(enf.AuditOnly("Stock"), requestAs(""))
	if rr.Code != http.StatusOK || !called {
		t.Fatalf("status = %d, called = %v", rr.Code, called)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("audit row must be written: %v", err)
	}
}

func TestEnforcer_UnauthenticatedRejected(t *testing.T) {
	db, mock := newMockDB(t)
	enf := newEnforcer(t, db)

	expectAudit(mock)

	rr, called := serve(enf.AdminOnly("Tenant", "GET"), requestAs(""))
	if rr.Code != http.StatusUnauthorized || called {
		t.Fatalf("status = %d, called = %v", rr.Code, called)
	}
}

func TestEnforcer_AdminOnly(t *testing.T) {
	db, mock := newMockDB(t)
	enf := newEnforcer(t, db)

	expectAudit(mock)
	rr, called := serve(enf.AdminOnly("Tenant", "GET"), requestAs(identity.RoleSuperAdmin))
	if rr.Code != http.StatusOK || !called {
		t.Fatalf("super admin: status = %d, called = %v", rr.Code, called)
	}

	expectAudit(mock)
	rr, called = serve(enf.AdminOnly("Tenant", "GET"), requestAs(identity.RoleCompanyAdmin))
	if rr.Code != http.StatusForbidden || called {
		t.Fatalf("company admin: status = %d, called = %v", rr.Code, called)
	}
	if got := errorCode(t, rr); got != "PERMISSION_DENIED" {
		t.Fatalf("code = %s", got)
	}

	// No permission or mapping queries in either case.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected store access: %v", err)
	}
}

func TestEnforcer_UnregisteredPermission(t *testing.T) {
	ResetRegistry()
	defer ResetRegistry()

	db, mock := newMockDB(t)
	enf := newEnforcer(t, db)
	mw := enf.Require("Stock", "GET", "Can view Stock")

	expectAudit(mock)
	mock.ExpectQuery("SELECT (.+) FROM(.+)permissions").
		WillReturnRows(sqlmock.NewRows([]string{"permission_id"}))

	rr, called := serve(mw, requestAs(identity.RoleOperator))
	if rr.Code != http.StatusBadRequest || called {
		t.Fatalf("status = %d, called = %v", rr.Code, called)
	}
	if got := errorCode(t, rr); got != "PERMISSION_NOT_REGISTERED" {
		t.Fatalf("code = %s", got)
	}
}

func TestEnforcer_BypassRoles(t *testing.T) {
	ResetRegistry()
	defer ResetRegistry()

	db, mock := newMockDB(t)
	enf := newEnforcer(t, db)
	mw := enf.Require("Stock", "GET", "Can view Stock")

	for _, role := range []identity.Role{identity.RoleSuperAdmin, identity.RoleCompanyAdmin} {
		expectAudit(mock)
		mock.ExpectQuery("SELECT (.+) FROM(.+)permissions").
			WillReturnRows(permissionRows())

		rr, called := serve(mw, requestAs(role))
		if rr.Code != http.StatusOK || !called {
			t.Fatalf("%s: status = %d, called = %v", role, rr.Code, called)
		}
	}

	// The bypass grants without touching role_permission_mappings.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mapping lookup should not run for bypass roles: %v", err)
	}
}

func TestEnforcer_OperatorMapping(t *testing.T) {
	ResetRegistry()
	defer ResetRegistry()

	db, mock := newMockDB(t)
	enf := newEnforcer(t, db)
	mw := enf.Require("Stock", "GET", "Can view Stock")

	// No mapping: denied.
	expectAudit(mock)
	mock.ExpectQuery("SELECT (.+) FROM(.+)permissions").WillReturnRows(permissionRows())
	mock.ExpectQuery("SELECT(.+)FROM(.+)role_permission_mappings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	rr, called := serve(mw, requestAs(identity.RoleOperator))
	if rr.Code != http.StatusForbidden || called {
		t.Fatalf("unmapped: status = %d, called = %v", rr.Code, called)
	}

	// Mapping present: the identical request now succeeds.
	expectAudit(mock)
	mock.ExpectQuery("SELECT (.+) FROM(.+)permissions").WillReturnRows(permissionRows())
	mock.ExpectQuery("SELECT(.+)FROM(.+)role_permission_mappings").
		WithArgs("OPERATOR", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	rr, called = serve(mw, requestAs(identity.RoleOperator))
	if rr.Code != http.StatusOK || !called {
		t.Fatalf("mapped: status = %d, called = %v", rr.Code, called)
	}
}
