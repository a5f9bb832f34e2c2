// internal/inventory/models.go
//
// Row models and table definitions for the four inventory entities.
// Each definition lists the writable columns; keys, tenant scoping, and
// audit stamps are managed by the entity layer.
package inventory

import (
	"time"

	"github.com/stocklot/stocklot/internal/entity"
)

// Category groups products.
type Category struct {
	ID          string    `db:"category_id"   json:"category_id"`
	Name        string    `db:"category_name" json:"category_name"`
	Description *string   `db:"description"   json:"description"`
	TenantID    *string   `db:"tenant_id"     json:"-"`
	IsActive    bool      `db:"is_active"     json:"is_active"`
	CreatedBy   *string   `db:"created_by"    json:"-"`
	UpdatedBy   *string   `db:"updated_by"    json:"-"`
	CreatedAt   time.Time `db:"created_dtm"   json:"created_dtm"`
	UpdatedAt   time.Time `db:"updated_dtm"   json:"updated_dtm"`
}

// Product is a sellable item, optionally assigned to a category.
type Product struct {
	ID          string    `db:"product_id"   json:"product_id"`
	Name        string    `db:"product_name" json:"product_name"`
	SKU         *string   `db:"sku"          json:"sku"`
	Description *string   `db:"description"  json:"description"`
	CategoryID  *string   `db:"category_id"  json:"category_id"`
	Price       float64   `db:"price"        json:"price"`
	TenantID    *string   `db:"tenant_id"    json:"-"`
	IsActive    bool      `db:"is_active"    json:"is_active"`
	CreatedBy   *string   `db:"created_by"   json:"-"`
	UpdatedBy   *string   `db:"updated_by"   json:"-"`
	CreatedAt   time.Time `db:"created_dtm"  json:"created_dtm"`
	UpdatedAt   time.Time `db:"updated_dtm"  json:"updated_dtm"`
}

// Stock is an on-hand quantity for a product.
type Stock struct {
	ID        string    `db:"stock_id"    json:"stock_id"`
	ProductID string    `db:"product_id"  json:"product_id"`
	Reference *string   `db:"reference"   json:"reference"`
	Quantity  int64     `db:"quantity"    json:"quantity"`
	TenantID  *string   `db:"tenant_id"   json:"-"`
	IsActive  bool      `db:"is_active"   json:"is_active"`
	CreatedBy *string   `db:"created_by"  json:"-"`
	UpdatedBy *string   `db:"updated_by"  json:"-"`
	CreatedAt time.Time `db:"created_dtm" json:"created_dtm"`
	UpdatedAt time.Time `db:"updated_dtm" json:"updated_dtm"`
}

// Supplier is an external party stock is sourced from.
type Supplier struct {
	ID        string    `db:"supplier_id"   json:"supplier_id"`
	Name      string    `db:"supplier_name" json:"supplier_name"`
	Email     *string   `db:"email"         json:"email"`
	Phone     *string   `db:"phone_number"  json:"phone_number"`
	Address   *string   `db:"address"       json:"address"`
	TenantID  *string   `db:"tenant_id"     json:"-"`
	IsActive  bool      `db:"is_active"     json:"is_active"`
	CreatedBy *string   `db:"created_by"    json:"-"`
	UpdatedBy *string   `db:"updated_by"    json:"-"`
	CreatedAt time.Time `db:"created_dtm"   json:"created_dtm"`
	UpdatedAt time.Time `db:"updated_dtm"   json:"updated_dtm"`
}

var (
	categoryDef = entity.Definition{
		Table:   "categories",
		Key:     "category_id",
		Columns: []string{"category_name", "description"},
	}
	productDef = entity.Definition{
		Table:   "products",
		Key:     "product_id",
		Columns: []string{"product_name", "sku", "description", "category_id", "price"},
	}
	stockDef = entity.Definition{
		Table:   "stocks",
		Key:     "stock_id",
		Columns: []string{"product_id", "reference", "quantity"},
	}
	supplierDef = entity.Definition{
		Table:   "suppliers",
		Key:     "supplier_id",
		Columns: []string{"supplier_name", "email", "phone_number", "address"},
	}
)
