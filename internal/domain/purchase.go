package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is the receipt record created when a draft is delivered. Line
// prices are snapshots taken at delivery and may be corrected afterwards
// without touching stock.
type Purchase struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	SupplierID   uuid.UUID       `json:"supplier_id" db:"supplier_id"`
	CreatedBy    uuid.UUID       `json:"created_by" db:"created_by"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	PriceUpdated bool            `json:"price_updated" db:"price_updated"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// PurchaseItem is a line on a purchase with its point-in-time price.
type PurchaseItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	PurchaseID uuid.UUID       `json:"purchase_id" db:"purchase_id"`
	ProductID  uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	Price      decimal.Decimal `json:"price" db:"price"`
}

// PurchaseItemDetail joins a purchase line with the product name for the
// price-correction view.
type PurchaseItemDetail struct {
	PurchaseItem
	ProductName string `json:"product_name"`
}

// PurchaseDetail is a purchase header with display names and its items.
type PurchaseDetail struct {
	Purchase
	SupplierName  string               `json:"supplier_name"`
	CreatedByName string               `json:"created_by_name"`
	Items         []PurchaseItemDetail `json:"items"`
}
