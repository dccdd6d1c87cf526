package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrPurchaseItemNotFound = errors.New("purchase item not found")
)

// PurchaseRepository persists delivery receipts and their price-snapshot
// line items.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.Purchase) error
	FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDetail, error)
	InsertItems(ctx context.Context, purchaseID uuid.UUID, items []domain.PurchaseItem) error
	// UpdateItemPrice corrects the snapshot price of one line without
	// touching its quantity.
	UpdateItemPrice(ctx context.Context, purchaseID, productID uuid.UUID, price decimal.Decimal) error
	// SumItems recomputes the total from the live line extensions.
	SumItems(ctx context.Context, purchaseID uuid.UUID) (decimal.Decimal, error)
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal, priceUpdated bool) error
}

type purchaseRepository struct {
	q DBTX
}

// NewPurchaseRepository creates a PurchaseRepository bound to the given handle.
func NewPurchaseRepository(q DBTX) PurchaseRepository {
	return &purchaseRepository{q: q}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	query := `
		INSERT INTO purchases (id, supplier_id, created_by, total_amount, price_updated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(
		ctx,
		query,
		purchase.ID,
		purchase.SupplierID,
		purchase.CreatedBy,
		purchase.TotalAmount,
		purchase.PriceUpdated,
		purchase.CreatedAt,
		purchase.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	return nil
}

func (r *purchaseRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDetail, error) {
	query := `
		SELECT p.id, p.supplier_id, p.created_by, p.total_amount, p.price_updated,
		       p.created_at, p.updated_at, s.name, u.username
		FROM purchases p
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		LEFT JOIN users u ON p.created_by = u.id
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`

	detail := &domain.PurchaseDetail{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.SupplierID,
		&detail.CreatedBy,
		&detail.TotalAmount,
		&detail.PriceUpdated,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.SupplierName,
		&detail.CreatedByName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	itemQuery := `
		SELECT i.id, i.purchase_id, i.product_id, i.quantity, i.price, pr.name
		FROM purchase_items i
		LEFT JOIN products pr ON i.product_id = pr.id
		WHERE i.purchase_id = $1
	`

	rows, err := r.q.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase items: %w", err)
	}
	defer rows.Close()

	items := []domain.PurchaseItemDetail{}
	for rows.Next() {
		var item domain.PurchaseItemDetail
		err := rows.Scan(&item.ID, &item.PurchaseID, &item.ProductID, &item.Quantity, &item.Price, &item.ProductName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase items: %w", err)
	}
	detail.Items = items

	return detail, nil
}

func (r *purchaseRepository) InsertItems(ctx context.Context, purchaseID uuid.UUID, items []domain.PurchaseItem) error {
	query := `
		INSERT INTO purchase_items (id, purchase_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err := r.q.ExecContext(ctx, query, id, purchaseID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to insert purchase item: %w", err)
		}
	}

	return nil
}

func (r *purchaseRepository) UpdateItemPrice(ctx context.Context, purchaseID, productID uuid.UUID, price decimal.Decimal) error {
	query := `
		UPDATE purchase_items
		SET price = $3
		WHERE purchase_id = $1 AND product_id = $2
	`

	result, err := r.q.ExecContext(ctx, query, purchaseID, productID, price)
	if err != nil {
		return fmt.Errorf("failed to update purchase item price: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPurchaseItemNotFound
	}

	return nil
}

func (r *purchaseRepository) SumItems(ctx context.Context, purchaseID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity * price), 0)
		FROM purchase_items
		WHERE purchase_id = $1
	`

	var total decimal.Decimal
	if err := r.q.QueryRowContext(ctx, query, purchaseID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum purchase items: %w", err)
	}

	return total, nil
}

func (r *purchaseRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal, priceUpdated bool) error {
	query := `
		UPDATE purchases
		SET total_amount = $2, price_updated = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, id, total, priceUpdated, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update purchase total: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPurchaseNotFound
	}

	return nil
}
