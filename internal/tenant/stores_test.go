// internal/tenant/stores_test.go
//
// Data-source routing tests.  The physical open-and-migrate path needs a
// real engine, so these cover the routing decisions around it: the
// registered-store fast path, SHARED collapsing to the default store,
// absent configuration, and the request-level helper.
package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/store"
)

func newStores(t *testing.T) (*Stores, sqlmock.Sqlmock, *store.Registry) {
	t.Helper()
	control, mock := newMockControl(t)
	reg := store.NewRegistry(t.TempDir())
	reg.SetDefault(&store.Store{Engine: store.EngineSQLite, DB: control})
	return NewStores(reg), mock, reg
}

func configRow(tenantID string, strategy Strategy) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"tenant_configuration_id", "tenant_id", "authentication_type",
		"database_strategy", "database_server", "database_config",
		"is_active", "is_deleted", "created_by", "updated_by",
		"created_dtm", "updated_dtm",
	}).AddRow("c1", tenantID, string(AuthToken), string(strategy),
		string(store.EngineSQLite), nil, 1, 0, nil, nil, now, now)
}

func TestResolveFastPath(t *testing.T) {
	s, mock, reg := newStores(t)

	other, _ := newMockControl(t)
	if _, err := reg.Ensure("acme", func() (*store.Store, error) {
		return &store.Store{Engine: store.EngineSQLite, DB: other}, nil
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	// No control query may run: the store name matches the tenant code.
	name, err := s.Resolve(context.Background(), &Tenant{ID: "t1", Code: "acme"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if name != "acme" {
		t.Fatalf("name = %q", name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestResolveShared(t *testing.T) {
	s, mock, _ := newStores(t)
	mock.ExpectQuery("SELECT (.+) FROM(.+)tenant_configurations").
		WithArgs("t1").
		WillReturnRows(configRow("t1", StrategyShared))

	name, err := s.Resolve(context.Background(), &Tenant{ID: "t1", Code: "acme"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if name != store.DefaultName {
		t.Fatalf("name = %q, want %q", name, store.DefaultName)
	}
}

func TestResolveMissingConfiguration(t *testing.T) {
	s, mock, _ := newStores(t)
	mock.ExpectQuery("SELECT (.+) FROM(.+)tenant_configurations").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_configuration_id"}))

	_, err := s.Resolve(context.Background(), &Tenant{ID: "t1", Code: "acme"})
	if !errors.Is(err, respond.ErrConfigurationMissing) {
		t.Fatalf("err = %v, want ErrConfigurationMissing", err)
	}
}

func TestProvisionSharedIsNoOp(t *testing.T) {
	s, mock, _ := newStores(t)

	cfg := &Configuration{ID: "c1", TenantID: "t1",
		DatabaseStrategy: StrategyShared, DatabaseServer: store.EngineSQLite}
	name, err := s.Provision(context.Background(), &Tenant{ID: "t1", Code: "acme"}, cfg)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if name != store.DefaultName {
		t.Fatalf("name = %q", name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProvisionIdempotentByName(t *testing.T) {
	s, mock, reg := newStores(t)

	other, _ := newMockControl(t)
	if _, err := reg.Ensure("acme", func() (*store.Store, error) {
		return &store.Store{Engine: store.EngineSQLite, DB: other}, nil
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	// The store name is already registered, so no physical creation, no
	// migration, and no configuration write may run.
	cfg := &Configuration{ID: "c1", TenantID: "t1",
		DatabaseStrategy: StrategySeparate, DatabaseServer: store.EngineSQLite,
		DatabaseConfig: NewDatabaseConfig(store.ConnectionConfig{DatabaseName: "acme"})}
	name, err := s.Provision(context.Background(), &Tenant{ID: "t1", Code: "acme"}, cfg)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if name != "acme" {
		t.Fatalf("name = %q", name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRequestDBOutsideTenantScope(t *testing.T) {
	s, _, reg := newStores(t)

	db, tenantID, err := s.RequestDB(context.Background())
	if err != nil {
		t.Fatalf("RequestDB: %v", err)
	}
	if db != reg.Default().DB {
		t.Fatal("non-aware requests must hit the control store")
	}
	if tenantID != "" {
		t.Fatalf("tenantID = %q, want empty", tenantID)
	}
}

func TestRequestDBTenantScope(t *testing.T) {
	s, _, reg := newStores(t)

	other, _ := newMockControl(t)
	if _, err := reg.Ensure("acme", func() (*store.Store, error) {
		return &store.Store{Engine: store.EngineSQLite, DB: other}, nil
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	ctx := WithAware(WithTenant(context.Background(), &Tenant{ID: "t1", Code: "acme"}), true)
	db, tenantID, err := s.RequestDB(ctx)
	if err != nil {
		t.Fatalf("RequestDB: %v", err)
	}
	if db != other {
		t.Fatal("aware requests must hit the tenant's store")
	}
	if tenantID != "t1" {
		t.Fatalf("tenantID = %q", tenantID)
	}
}
