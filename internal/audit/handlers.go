// internal/audit/handlers.go
package audit

import (
	"net/http"
	"strconv"

	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

// Handlers exposes the audit trail over HTTP.
type Handlers struct {
	Stores *tenant.Stores
}

// List handles GET /api/audit-logs?limit=N.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	db, _, err := h.Stores.RequestDB(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := List(r.Context(), db, limit)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, rows)
}
