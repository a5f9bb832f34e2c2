// internal/inventory/reports.go
//
// Aggregated reporting over the inventory tables.
//
// The stock summary groups undeleted stock rows by product, sums their
// quantities in the resolved store, and attaches the product's details
// to each line.  An optional product_id query parameter narrows the
// report to one product.  An empty result is a 404, not an empty list.
package inventory

import (
	"net/http"

	sq "github.com/Masterminds/squirrel"

	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

type stockSummaryRow struct {
	ProductID     string  `db:"product_id"`
	ProductName   string  `db:"product_name"`
	SKU           *string `db:"sku"`
	Price         float64 `db:"price"`
	TotalQuantity int64   `db:"total_quantity"`
}

type stockSummaryProduct struct {
	ID    string  `json:"product_id"`
	Name  string  `json:"product_name"`
	SKU   *string `json:"sku"`
	Price float64 `json:"price"`
}

type stockSummaryEntry struct {
	TotalQuantity int64               `json:"total_quantity"`
	Product       stockSummaryProduct `json:"product"`
}

type reports struct {
	stores *tenant.Stores
}

// stockSummary handles GET /api/reports/stock-summary.
func (rp *reports) stockSummary(w http.ResponseWriter, r *http.Request) {
	db, tenantID, err := rp.stores.RequestDB(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	q := sq.Select("s.product_id", "p.product_name", "p.sku", "p.price",
		"SUM(s.quantity) AS total_quantity").
		From("stocks s").
		Join("products p ON p.product_id = s.product_id").
		Where(sq.Eq{"s.is_deleted": 0}).
		Where(sq.Eq{"p.is_deleted": 0}).
		GroupBy("s.product_id", "p.product_name", "p.sku", "p.price").
		OrderBy("p.product_name")
	if tenantID != "" {
		q = q.Where(sq.Eq{"s.tenant_id": tenantID})
	}
	if pid := r.URL.Query().Get("product_id"); pid != "" {
		q = q.Where(sq.Eq{"s.product_id": pid})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		respond.Error(w, err)
		return
	}
	var rows []stockSummaryRow
	if err := db.SelectContext(r.Context(), &rows, sqlStr, args...); err != nil {
		respond.Error(w, err)
		return
	}
	if len(rows) == 0 {
		respond.Error(w, respond.ErrNotFound)
		return
	}

	entries := make([]stockSummaryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, stockSummaryEntry{
			TotalQuantity: row.TotalQuantity,
			Product: stockSummaryProduct{
				ID:    row.ProductID,
				Name:  row.ProductName,
				SKU:   row.SKU,
				Price: row.Price,
			},
		})
	}
	respond.JSON(w, http.StatusOK, entries)
}
