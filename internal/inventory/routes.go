// internal/inventory/routes.go
//
// Route registration for the inventory entities.
//
// Every verb on every entity is a distinct catalog entry, so tenants
// can grant, say, read-only stock access to OPERATOR while keeping
// writes behind MANAGER mappings.
package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocklot/stocklot/internal/authz"
	"github.com/stocklot/stocklot/internal/respond"
	"github.com/stocklot/stocklot/internal/tenant"
)

type categoryRequest struct {
	Name        string  `json:"category_name" validate:"required"`
	Description *string `json:"description"`
}

type productRequest struct {
	Name        string  `json:"product_name" validate:"required"`
	SKU         *string `json:"sku"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	Price       float64 `json:"price" validate:"gte=0"`
}

type stockRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Reference *string `json:"reference"`
	Quantity  int64   `json:"quantity" validate:"gte=0"`
}

type supplierRequest struct {
	Name    string  `json:"supplier_name" validate:"required"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone_number"`
	Address *string `json:"address"`
}

func parseCategory(r *http.Request) (map[string]any, error) {
	var req categoryRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		return nil, err
	}
	return map[string]any{
		"category_name": req.Name,
		"description":   req.Description,
	}, nil
}

func parseProduct(r *http.Request) (map[string]any, error) {
	var req productRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		return nil, err
	}
	return map[string]any{
		"product_name": req.Name,
		"sku":          req.SKU,
		"description":  req.Description,
		"category_id":  req.CategoryID,
		"price":        req.Price,
	}, nil
}

func parseStock(r *http.Request) (map[string]any, error) {
	var req stockRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		return nil, err
	}
	return map[string]any{
		"product_id": req.ProductID,
		"reference":  req.Reference,
		"quantity":   req.Quantity,
	}, nil
}

func parseSupplier(r *http.Request) (map[string]any, error) {
	var req supplierRequest
	if err := respond.DecodeValid(r, &req); err != nil {
		return nil, err
	}
	return map[string]any{
		"supplier_name": req.Name,
		"email":         req.Email,
		"phone_number":  req.Phone,
		"address":       req.Address,
	}, nil
}

// Mount registers the inventory routes under r, wiring each verb
// through the permission enforcer.
func Mount(r chi.Router, enf *authz.Enforcer, stores *tenant.Stores) {
	mount(r, enf, "/api/categories", "Category",
		newResource[Category](categoryDef, stores, parseCategory))
	mount(r, enf, "/api/products", "Product",
		newResource[Product](productDef, stores, parseProduct, "category_id"))
	mount(r, enf, "/api/stocks", "Stock",
		newResource[Stock](stockDef, stores, parseStock, "product_id"))
	mount(r, enf, "/api/suppliers", "Supplier",
		newResource[Supplier](supplierDef, stores, parseSupplier))

	rep := &reports{stores: stores}
	r.With(enf.Require("Reports", "GET", "Can view Reports")).
		Get("/api/reports/stock-summary", rep.stockSummary)
}

func mount[T any](r chi.Router, enf *authz.Enforcer, path, module string, res *resource[T]) {
	r.Route(path, func(r chi.Router) {
		r.With(enf.Require(module, "GET", "Can view "+module)).Get("/", res.list)
		r.With(enf.Require(module, "POST", "Can create "+module)).Post("/", res.create)
		// The item read shares the collection's GET catalog entry.
		r.With(enf.Enforce(module, "GET")).Get("/{id}", res.get)
		r.With(enf.Require(module, "PUT", "Can update "+module)).Put("/{id}", res.update)
		r.With(enf.Require(module, "DELETE", "Can delete "+module)).Delete("/{id}", res.delete)
	})
}
