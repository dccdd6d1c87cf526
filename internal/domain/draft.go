package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftStatus is the lifecycle state of a purchase draft. The only legal
// progression is draft -> ordered -> delivered.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusOrdered   DraftStatus = "ordered"
	DraftStatusDelivered DraftStatus = "delivered"
)

// PurchaseDraft is an editable purchase proposal to a supplier. It has no
// inventory effect until it is delivered.
type PurchaseDraft struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	SupplierID uuid.UUID   `json:"supplier_id" db:"supplier_id"`
	CreatedBy  uuid.UUID   `json:"created_by" db:"created_by"`
	PurchaseID *uuid.UUID  `json:"purchase_id,omitempty" db:"purchase_id"`
	Status     DraftStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time  `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DraftItem is a line on a purchase draft. No price is stored at draft time;
// listings join the current product price as an estimate only.
type DraftItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DraftID   uuid.UUID `json:"draft_id" db:"draft_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// DraftItemDetail is a draft line joined with product display data for
// listings and the dispatch email.
type DraftItemDetail struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// DraftDetail is a draft header joined with supplier and creator display
// names plus its item list.
type DraftDetail struct {
	PurchaseDraft
	SupplierName  string            `json:"supplier_name"`
	SupplierEmail string            `json:"supplier_email"`
	SupplierPhone string            `json:"supplier_phone"`
	CreatedByName string            `json:"created_by_name"`
	Items         []DraftItemDetail `json:"items"`
}
