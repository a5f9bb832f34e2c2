// internal/audit/audit.go
//
// Request audit trail.
//
// Context
// -------
// Every protected request produces one audit row before any
// authorization decision is made, so the trail contains denied attempts
// too.  Recording is strictly best-effort: a failed insert is logged
// and counted, never surfaced to the caller.  Rows land in the store
// the request resolved to, so each tenant keeps its own trail.
//
// The Authorization header is stripped before headers are serialised.
// Everything else is kept verbatim for forensic value.
package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/stocklot/stocklot/internal/clientinfo"
	"github.com/stocklot/stocklot/internal/metrics"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Entry mirrors one row in `audit_logs`.
type Entry struct {
	ID        string    `db:"audit_id"          json:"audit_id"`
	UserID    *string   `db:"user_id"           json:"user_id"`
	Module    string    `db:"module_name"       json:"module_name"`
	Method    string    `db:"http_method"       json:"http_method"`
	Path      string    `db:"request_path"      json:"request_path"`
	Route     string    `db:"request_route"     json:"request_route"`
	Headers   string    `db:"request_headers"   json:"request_headers"`
	ClientIP  string    `db:"client_ip"         json:"client_ip"`
	UserAgent string    `db:"client_user_agent" json:"client_user_agent"`
	TenantID  *string   `db:"tenant_id"         json:"-"`
	CreatedAt time.Time `db:"created_dtm"       json:"created_dtm"`
}

// Recorder writes audit rows into whichever store a request resolved
// to.
type Recorder struct {
	stores *tenant.Stores
}

// NewRecorder wires a Recorder to the store router.
func NewRecorder(stores *tenant.Stores) *Recorder {
	return &Recorder{stores: stores}
}

// Record writes one audit row for the request.  userID may be empty
// for unauthenticated calls, module may be empty for endpoints without
// a catalog entry.  Failures are logged and counted, never returned.
func (rec *Recorder) Record(r *http.Request, userID, module string) {
	ctx := r.Context()

	db, tenantID, err := rec.stores.RequestDB(ctx)
	if err != nil {
		rec.fail("resolve store", err)
		return
	}

	e := Entry{
		ID:        uuid.NewString(),
		Module:    module,
		Method:    r.Method,
		Path:      r.URL.Path,
		Route:     r.URL.RequestURI(),
		Headers:   sanitizedHeaders(r.Header),
		CreatedAt: time.Now(),
	}
	if userID != "" {
		e.UserID = &userID
	}
	info := clientinfo.FromRequest(r)
	e.ClientIP = info.IP
	e.UserAgent = info.UA.Raw
	if tenantID != "" {
		e.TenantID = &tenantID
	}

	if err := insert(ctx, db, &e); err != nil {
		rec.fail("insert", err)
	}
}

func (rec *Recorder) fail(stage string, err error) {
	metrics.AuditWriteErrorsTotal.Inc()
	zap.S().Errorw("audit write failed", "stage", stage, "error", err)
}

// sanitizedHeaders serialises the header map as JSON with the
// Authorization credential removed.
func sanitizedHeaders(h http.Header) string {
	clean := make(map[string]string, len(h))
	for k, v := range h {
		if http.CanonicalHeaderKey(k) == "Authorization" {
			continue
		}
		if len(v) > 0 {
			clean[k] = v[0]
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func insert(ctx context.Context, db *sqlx.DB, e *Entry) error {
	const q = `
        INSERT INTO audit_logs (audit_id, user_id, module_name, http_method,
                                request_path, request_route, request_headers,
                                client_ip, client_user_agent, tenant_id, created_dtm)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q,
		e.ID, e.UserID, e.Module, e.Method, e.Path, e.Route,
		e.Headers, e.ClientIP, e.UserAgent, e.TenantID, e.CreatedAt)
	return err
}

// List returns the newest audit rows first, capped at limit.
func List(ctx context.Context, db *sqlx.DB, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
        SELECT audit_id, user_id, module_name, http_method, request_path,
               request_route, request_headers, client_ip, client_user_agent,
               tenant_id, created_dtm
        FROM   audit_logs
        ORDER  BY created_dtm DESC
        LIMIT  ?`
	var rows []Entry
	if err := db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
