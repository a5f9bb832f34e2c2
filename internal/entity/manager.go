// internal/entity/manager.go
//
// Generic persistence helper for tenant business entities.
//
// Context
// -------
// Categories, products, stocks, and suppliers share the same row shape:
// a uuid primary key, a tenant_id column, soft-delete and audit-stamp
// columns.  Manager implements the CRUD cycle once, parameterised by a
// Definition, and every call routes through the store name the request
// resolved to, so the same handler code runs against the shared control
// store or a tenant's dedicated database.
//
// Queries are built with squirrel and use ? placeholders, which both
// supported drivers accept.
package entity

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Definition describes the table a Manager operates on.
type Definition struct {
	Table   string
	Key     string
	Columns []string
}

// Manager executes CRUD operations for one entity table.
type Manager struct {
	def    Definition
	stores *tenant.Stores
}

// NewManager wires a Manager for one table definition.
func NewManager(def Definition, stores *tenant.Stores) *Manager {
	return &Manager{def: def, stores: stores}
}

// selectColumns is the read set: the declared columns plus key, tenant,
// and audit stamps.
func (m *Manager) selectColumns() []string {
	cols := []string{m.def.Key}
	cols = append(cols, m.def.Columns...)
	return append(cols, "tenant_id", "is_active", "created_by", "updated_by", "created_dtm", "updated_dtm")
}

// Get loads one live row by primary key into dst.
func (m *Manager) Get(ctx context.Context, id string, dst any) error {
	db, tenantID, err := m.stores.RequestDB(ctx)
	if err != nil {
		return err
	}
	q := sq.Select(m.selectColumns()...).
		From(m.def.Table).
		Where(sq.Eq{m.def.Key: id, "is_deleted": 0})
	q = scopeTenant(q, tenantID)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	if err := db.GetContext(ctx, dst, sqlStr, args...); err != nil {
		if err == sql.ErrNoRows {
			return respond.ErrNotFound
		}
		return err
	}
	return nil
}

// List loads all live rows for the request's tenant scope into dst,
// newest first.
func (m *Manager) List(ctx context.Context, dst any, filters map[string]any) error {
	db, tenantID, err := m.stores.RequestDB(ctx)
	if err != nil {
		return err
	}
	q := sq.Select(m.selectColumns()...).
		From(m.def.Table).
		Where(sq.Eq{"is_deleted": 0}).
		OrderBy("created_dtm DESC")
	q = scopeTenant(q, tenantID)
	for col, v := range filters {
		q = q.Where(sq.Eq{col: v})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	return db.SelectContext(ctx, dst, sqlStr, args...)
}

// Exists reports whether a live row matches the filters.
func (m *Manager) Exists(ctx context.Context, filters map[string]any) (bool, error) {
	db, tenantID, err := m.stores.RequestDB(ctx)
	if err != nil {
		return false, err
	}
	q := sq.Select("1").
		From(m.def.Table).
		Where(sq.Eq{"is_deleted": 0}).
		Limit(1)
	q = scopeTenant(q, tenantID)
	for col, v := range filters {
		q = q.Where(sq.Eq{col: v})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return false, err
	}
	var dummy int
	if err := db.QueryRowxContext(ctx, sqlStr, args...).Scan(&dummy); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create inserts a row from the column values in vals and returns the
// generated key.  Unknown columns in vals are rejected.
func (m *Manager) Create(ctx context.Context, vals map[string]any, actorID string) (string, error) {
	if err := m.checkColumns(vals); err != nil {
		return "", err
	}
	db, tenantID, err := m.stores.RequestDB(ctx)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := time.Now()
	cols := []string{m.def.Key}
	args := []any{id}
	for col, v := range vals {
		cols = append(cols, col)
		args = append(args, v)
	}
	cols = append(cols, "created_by", "updated_by", "created_dtm", "updated_dtm")
	args = append(args, actorID, actorID, now, now)
	if tenantID != "" {
		cols = append(cols, "tenant_id")
		args = append(args, tenantID)
	}

	sqlStr, sqlArgs, err := sq.Insert(m.def.Table).Columns(cols...).Values(args...).ToSql()
	if err != nil {
		return "", err
	}
	if _, err := db.ExecContext(ctx, sqlStr, sqlArgs...); err != nil {
		return "", err
	}
	return id, nil
}

// Update overwrites the given columns on one live row.
func (m *Manager) Update(ctx context.Context, id string, vals map[string]any, actorID string) error {
	if err := m.checkColumns(vals); err != nil {
		return err
	}
	db, tenantID, err := m.stores.RequestDB(ctx)
	if err != nil {
		return err
	}

	q := sq.Update(m.def.Table).
		Set("updated_by", actorID).
		Set("updated_dtm", time.Now()).
		Where(sq.Eq{m.def.Key: id, "is_deleted": 0})
	for col, v := range vals {
		q = q.Set(col, v)
	}
	if tenantID != "" {
		q = q.Where(sq.Eq{"tenant_id": tenantID})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return respond.ErrNotFound
	}
	return nil
}

// Upsert updates the row matching the match columns, inserting when no
// live row matches.  Returns the row's key.
func (m *Manager) Upsert(ctx context.Context, match map[string]any, vals map[string]any, actorID string) (string, error) {
	ok, err := m.Exists(ctx, match)
	if err != nil {
		return "", err
	}
	if !ok {
		merged := make(map[string]any, len(match)+len(vals))
		for col, v := range match {
			merged[col] = v
		}
		for col, v := range vals {
			merged[col] = v
		}
		return m.Create(ctx, merged, actorID)
	}

	db, tenantID, err := m.stores.RequestDB(ctx)
	if err != nil {
		return "", err
	}
	sel := sq.Select(m.def.Key).
		From(m.def.Table).
		Where(sq.Eq{"is_deleted": 0}).
		Limit(1)
	sel = scopeTenant(sel, tenantID)
	for col, v := range match {
		sel = sel.Where(sq.Eq{col: v})
	}
	sqlStr, args, err := sel.ToSql()
	if err != nil {
		return "", err
	}
	var id string
	if err := db.QueryRowxContext(ctx, sqlStr, args...).Scan(&id); err != nil {
		return "", err
	}
	if err := m.Update(ctx, id, vals, actorID); err != nil {
		return "", err
	}
	return id, nil
}

// Delete soft-deletes one live row.
func (m *Manager) Delete(ctx context.Context, id string, actorID string) error {
	db, tenantID, err := m.stores.RequestDB(ctx)
	if err != nil {
		return err
	}
	q := sq.Update(m.def.Table).
		Set("is_deleted", 1).
		Set("updated_by", actorID).
		Set("updated_dtm", time.Now()).
		Where(sq.Eq{m.def.Key: id, "is_deleted": 0})
	if tenantID != "" {
		q = q.Where(sq.Eq{"tenant_id": tenantID})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return respond.ErrNotFound
	}
	return nil
}

func (m *Manager) checkColumns(vals map[string]any) error {
	for col := range vals {
		known := false
		for _, c := range m.def.Columns {
			if c == col {
				known = true
				break
			}
		}
		if !known {
			return respond.ErrBadRequest.WithMessage("unknown column %s", col)
		}
	}
	return nil
}

// scopeTenant restricts a read to the request's tenant rows.  Shared
// stores hold several tenants' rows side by side; dedicated stores hold
// one tenant, where the predicate is still correct.
func scopeTenant(q sq.SelectBuilder, tenantID string) sq.SelectBuilder {
	if tenantID == "" {
		return q
	}
	return q.Where(sq.Eq{"tenant_id": tenantID})
}
