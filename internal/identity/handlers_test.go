// internal/identity/handlers_test.go
//
// Company-admin seeding tests.  The endpoint runs on an excluded route
// with no tenant on the context, so the handler must route the write to
// the target tenant's resolved store itself — never the control store.
package identity

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stocklot/stocklot/internal/store"
	"github.com/stocklot/stocklot/internal/tenant"
)

func newCompanyAdminHarness(t *testing.T) (*Handlers, sqlmock.Sqlmock, sqlmock.Sqlmock) {
	t.Helper()
	control, controlMock := newMockDB(t)
	tenantDB, tenantMock := newMockDB(t)

	reg := store.NewRegistry(t.TempDir())
	reg.SetDefault(&store.Store{Name: store.DefaultName, Engine: store.EngineSQLite, DB: control})
	if _, err := reg.Ensure("acme", func() (*store.Store, error) {
		return &store.Store{Engine: store.EngineSQLite, DB: tenantDB}, nil
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return &Handlers{Stores: tenant.NewStores(reg)}, controlMock, tenantMock
}

func tenantRow(id, code string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"tenant_id", "tenant_code", "tenant_name", "is_active", "is_deleted",
		"created_by", "updated_by", "created_dtm", "updated_dtm",
	}).AddRow(id, code, "Acme", 1, 0, nil, nil, now, now)
}

func TestCreateCompanyAdminWritesTenantStore(t *testing.T) {
	h, controlMock, tenantMock := newCompanyAdminHarness(t)

	// The control store only resolves the tenant row; the user lookup
	// and insert must land in the tenant's dedicated store.
	controlMock.ExpectQuery("SELECT (.+) FROM(.+)tenants").
		WithArgs("t1").
		WillReturnRows(tenantRow("t1", "acme"))
	tenantMock.ExpectQuery("SELECT (.+) FROM(.+)auth_users").
		WithArgs("admin@acme.test").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	tenantMock.ExpectExec("INSERT INTO auth_users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"tenant_id":"t1","email":"admin@acme.test","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/company-admins", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateCompanyAdmin(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"role_id":"COMPANY_ADMIN"`) {
		t.Fatalf("created user is not a company admin: %s", rr.Body.String())
	}
	for name, mock := range map[string]sqlmock.Sqlmock{"control": controlMock, "tenant": tenantMock} {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s store: %v", name, err)
		}
	}
}

func TestCreateCompanyAdminUnknownTenant(t *testing.T) {
	h, controlMock, _ := newCompanyAdminHarness(t)

	controlMock.ExpectQuery("SELECT (.+) FROM(.+)tenants").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id"}))

	body := `{"tenant_id":"ghost","email":"admin@acme.test","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/company-admins", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateCompanyAdmin(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "TENANT_INVALID") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestListCompanyAdminsRequiresTenantID(t *testing.T) {
	h, _, _ := newCompanyAdminHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/company-admins", nil)
	rr := httptest.NewRecorder()
	h.ListCompanyAdmins(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestListCompanyAdminsByTenant(t *testing.T) {
	h, controlMock, tenantMock := newCompanyAdminHarness(t)

	controlMock.ExpectQuery("SELECT (.+) FROM(.+)tenants").
		WithArgs("t1").
		WillReturnRows(tenantRow("t1", "acme"))
	tenantMock.ExpectQuery("SELECT (.+) FROM(.+)auth_users").
		WithArgs(string(RoleCompanyAdmin)).
		WillReturnRows(companyAdminRow("u7", "t1"))

	req := httptest.NewRequest(http.MethodGet, "/api/company-admins?tenant_id=t1", nil)
	rr := httptest.NewRecorder()
	h.ListCompanyAdmins(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"user_id":"u7"`) {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func companyAdminRow(id, tenantID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"user_id", "email", "first_name", "last_name", "phone_number",
		"password", "role_id", "tenant_id", "is_active", "is_deleted",
		"created_by", "updated_by", "created_dtm", "updated_dtm",
	}).AddRow(id, "admin@acme.test", nil, nil, nil, "hash",
		string(RoleCompanyAdmin), tenantID, 1, 0, nil, nil, now, now)
}
