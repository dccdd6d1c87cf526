package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockStatus classifies a product's on-hand quantity relative to its
// minimum threshold.
type StockStatus string

const (
	StockStatusIn  StockStatus = "in_stock"
	StockStatusLow StockStatus = "low_stock"
	StockStatusOut StockStatus = "out_of_stock"
)

// ClassifyStock derives the stock status from the current quantity and the
// minimum threshold. Every write path that changes stock or min_stock must
// persist the result of this function in the same transaction.
func ClassifyStock(stock, minStock int) StockStatus {
	switch {
	case stock <= 0:
		return StockStatusOut
	case stock <= minStock:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// Product is a catalog entry whose stock field is mutated only through the
// ledger operations on ProductRepository.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Category    *string         `json:"category,omitempty" db:"category"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	MinStock    int             `json:"min_stock" db:"min_stock"`
	StockStatus StockStatus     `json:"stock_status" db:"stock_status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ProductRef is the trimmed product shape served to the bill-creation
// autocomplete.
type ProductRef struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
