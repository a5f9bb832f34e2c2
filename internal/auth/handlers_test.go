// internal/auth/handlers_test.go
//
// Login flow against a sqlmock-backed control store.
package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocklot/stocklot/internal/identity"
	"github.com/stocklot/stocklot/internal/store"
	"github.com/stocklot/stocklot/internal/tenant"
)

func newHandlers(t *testing.T, db *sqlx.DB) *Handlers {
	t.Helper()
	reg := store.NewRegistry(t.TempDir())
	reg.SetDefault(&store.Store{Name: store.DefaultName, Engine: store.EngineSQLite, DB: db})
	return &Handlers{
		Stores: tenant.NewStores(reg),
		Cache:  NewIdentityCache(),
		Secret: testSecret,
	}
}

func hashedUserRows(t *testing.T, id, email, password, role string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return sqlmock.NewRows([]string{
		"user_id", "email", "first_name", "last_name", "phone_number", "password",
		"role_id", "tenant_id", "is_active", "is_deleted", "created_by", "updated_by",
		"created_dtm", "updated_dtm",
	}).AddRow(id, email, nil, nil, nil, string(hash), role, nil, true, false, nil, nil,
		time.Now(), time.Now())
}

func TestLogin_Success(t *testing.T) {
	db, mock := newMockDB(t)
	h := newHandlers(t, db)

	mock.ExpectQuery("SELECT (.+) FROM(.+)auth_users").
		WithArgs("admin@stocklot.test").
		WillReturnRows(hashedUserRows(t, "u1", "admin@stocklot.test", "s3cret-pass", "SUPER_ADMIN"))
	mock.ExpectExec("INSERT INTO tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"email":"admin@stocklot.test","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/admin/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var envelope struct {
		Data struct {
			Token       string `json:"token"`
			AccessToken string `json:"access_token"`
			User        struct {
				ID string `json:"user_id"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Token == "" || envelope.Data.AccessToken == "" {
		t.Fatal("both credential kinds should be issued")
	}
	if envelope.Data.User.ID != "u1" {
		t.Fatalf("user id = %q", envelope.Data.User.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLogout_OutsideTenantScope(t *testing.T) {
	db, mock := newMockDB(t)
	h := newHandlers(t, db)

	// An administrator authenticated through the excluded login revokes
	// the presented token against the control store; no tenant needed.
	mock.ExpectExec("DELETE FROM tokens").
		WithArgs("tok-admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/admin/logout", nil)
	req.Header.Set("Authorization", "Token tok-admin")
	u := &identity.User{ID: "u1", Role: identity.RoleSuperAdmin}
	req = req.WithContext(WithUser(req.Context(), u))
	h.Cache.Set("", u)

	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if _, ok := h.Cache.Get("", "u1"); ok {
		t.Fatal("logout must evict the decoded-identity cache entry")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLogout_Unauthenticated(t *testing.T) {
	db, _ := newMockDB(t)
	h := newHandlers(t, db)

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/admin/logout", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock := newMockDB(t)
	h := newHandlers(t, db)

	mock.ExpectQuery("SELECT (.+) FROM(.+)auth_users").
		WillReturnRows(hashedUserRows(t, "u1", "admin@stocklot.test", "right-pass", "SUPER_ADMIN"))

	body := `{"email":"admin@stocklot.test","password":"wrong-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/admin/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	h := newHandlers(t, db)

	mock.ExpectQuery("SELECT (.+) FROM(.+)auth_users").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	body := `{"email":"ghost@stocklot.test","password":"whatever1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/admin/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	db, _ := newMockDB(t)
	h := newHandlers(t, db)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/admin/login", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
