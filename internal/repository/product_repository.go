package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when a decrement would take stock
	// below zero. Detection happens inside the conditional UPDATE, so two
	// concurrent sales can never both pass validation against the same units.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository is the inventory ledger: the only sanctioned mutator of
// product stock. Both mutations are relative updates that recompute
// stock_status in the same statement, so concurrent callers compose without
// read-modify-write races and no stale status is ever visible.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	Search(ctx context.Context, query string, limit int) ([]domain.ProductRef, error)
}

type productRepository struct {
	q DBTX
}

// NewProductRepository creates a ProductRepository bound to the given handle.
func NewProductRepository(q DBTX) ProductRepository {
	return &productRepository{q: q}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, category, price, stock, min_stock, stock_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	product.StockStatus = domain.ClassifyStock(product.Stock, product.MinStock)

	_, err := r.q.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Category,
		product.Price,
		product.Stock,
		product.MinStock,
		product.StockStatus,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, category, price, stock, min_stock, stock_status, created_at, updated_at
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
	`

	product := &domain.Product{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.MinStock,
		&product.StockStatus,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// IncrementStock applies a relative stock increase and reclassifies
// stock_status atomically.
func (r *productRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock = stock + $2,
		    stock_status = CASE
		        WHEN stock + $2 <= 0 THEN 'out_of_stock'
		        WHEN stock + $2 <= min_stock THEN 'low_stock'
		        ELSE 'in_stock'
		    END,
		    updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, id, qty, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// DecrementStock applies a relative stock decrease guarded by `stock >= qty`,
// so an oversell under concurrency fails here instead of going negative.
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock = stock - $2,
		    stock_status = CASE
		        WHEN stock - $2 <= 0 THEN 'out_of_stock'
		        WHEN stock - $2 <= min_stock THEN 'low_stock'
		        ELSE 'in_stock'
		    END,
		    updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL AND stock >= $2
	`

	result, err := r.q.ExecContext(ctx, query, id, qty, time.Now())
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing product from a stock shortfall.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return ErrInsufficientStock
	}

	return nil
}

// Search serves the bill-creation autocomplete with a name prefix/substring
// match over live products.
func (r *productRepository) Search(ctx context.Context, query string, limit int) ([]domain.ProductRef, error) {
	sqlQuery := `
		SELECT id, name, price
		FROM products
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if strings.TrimSpace(query) != "" {
		sqlQuery += ` AND name ILIKE $1`
		args = append(args, "%"+query+"%")
	}

	sqlQuery += fmt.Sprintf(` ORDER BY name ASC LIMIT %d`, limit)

	rows, err := r.q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []domain.ProductRef{}
	for rows.Next() {
		var p domain.ProductRef
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
