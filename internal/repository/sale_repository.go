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

var ErrSaleNotFound = errors.New("sale not found")

// SaleRepository persists customer orders. Items carry a per-line soft
// delete so an edit can retire the old set while keeping history.
type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error)
	List(ctx context.Context) ([]domain.SaleSummary, error)
	InsertItem(ctx context.Context, item *domain.SaleItem) error
	// ListLiveItems returns the non-deleted items for a sale; these are the
	// lines whose stock effect is still outstanding.
	ListLiveItems(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error)
	SoftDeleteItems(ctx context.Context, saleID uuid.UUID) error
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type saleRepository struct {
	q DBTX
}

// NewSaleRepository creates a SaleRepository bound to the given handle.
func NewSaleRepository(q DBTX) SaleRepository {
	return &saleRepository{q: q}
}

func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (id, customer_id, created_by, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(
		ctx,
		query,
		sale.ID,
		sale.CustomerID,
		sale.CreatedBy,
		sale.TotalAmount,
		sale.CreatedAt,
		sale.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := `
		SELECT id, customer_id, created_by, total_amount, created_at, updated_at
		FROM sales
		WHERE id = $1 AND deleted_at IS NULL
	`

	sale := &domain.Sale{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&sale.ID,
		&sale.CustomerID,
		&sale.CreatedBy,
		&sale.TotalAmount,
		&sale.CreatedAt,
		&sale.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	return sale, nil
}

func (r *saleRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error) {
	query := `
		SELECT s.id, s.customer_id, s.created_by, s.total_amount, s.created_at, s.updated_at,
		       c.name, c.phone, c.address, u.username
		FROM sales s
		LEFT JOIN customers c ON s.customer_id = c.id
		LEFT JOIN users u ON s.created_by = u.id
		WHERE s.id = $1 AND s.deleted_at IS NULL
	`

	detail := &domain.SaleDetail{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.CustomerID,
		&detail.CreatedBy,
		&detail.TotalAmount,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.CustomerName,
		&detail.CustomerPhone,
		&detail.CustomerAddress,
		&detail.CreatedByName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale detail: %w", err)
	}

	itemQuery := `
		SELECT i.product_id, p.name, i.quantity, i.price
		FROM sale_items i
		JOIN products p ON i.product_id = p.id
		WHERE i.sale_id = $1 AND i.deleted_at IS NULL
	`

	rows, err := r.q.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	items := []domain.SaleItemDetail{}
	for rows.Next() {
		var item domain.SaleItemDetail
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}
	detail.Items = items

	return detail, nil
}

func (r *saleRepository) List(ctx context.Context) ([]domain.SaleSummary, error) {
	query := `
		SELECT s.id, s.total_amount, s.created_at, c.name, c.phone, u.username
		FROM sales s
		LEFT JOIN customers c ON s.customer_id = c.id
		LEFT JOIN users u ON s.created_by = u.id
		WHERE s.deleted_at IS NULL
		ORDER BY s.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.SaleSummary{}
	for rows.Next() {
		var s domain.SaleSummary
		err := rows.Scan(&s.ID, &s.TotalAmount, &s.CreatedAt, &s.CustomerName, &s.CustomerPhone, &s.CreatedByName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

func (r *saleRepository) InsertItem(ctx context.Context, item *domain.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	_, err := r.q.ExecContext(ctx, query, item.ID, item.SaleID, item.ProductID, item.Quantity, item.Price)
	if err != nil {
		return fmt.Errorf("failed to insert sale item: %w", err)
	}

	return nil
}

func (r *saleRepository) ListLiveItems(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, price
		FROM sale_items
		WHERE sale_id = $1 AND deleted_at IS NULL
	`

	rows, err := r.q.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	items := []domain.SaleItem{}
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return items, nil
}

func (r *saleRepository) SoftDeleteItems(ctx context.Context, saleID uuid.UUID) error {
	query := `
		UPDATE sale_items
		SET deleted_at = $2
		WHERE sale_id = $1 AND deleted_at IS NULL
	`

	if _, err := r.q.ExecContext(ctx, query, saleID, time.Now()); err != nil {
		return fmt.Errorf("failed to soft delete sale items: %w", err)
	}

	return nil
}

func (r *saleRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	query := `
		UPDATE sales
		SET total_amount = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, id, total, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update sale total: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}

func (r *saleRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE sales
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to soft delete sale: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}
