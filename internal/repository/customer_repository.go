package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stockroom/internal/domain"
)

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository resolves and creates walk-in customers. Phone is the
// only dedup key; the first write wins.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}

type customerRepository struct {
	q DBTX
}

// NewCustomerRepository creates a CustomerRepository bound to the given handle.
func NewCustomerRepository(q DBTX) CustomerRepository {
	return &customerRepository{q: q}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Phone,
		customer.Address,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	query := `
		SELECT id, name, phone, address, created_at, updated_at
		FROM customers
		WHERE phone = $1 AND deleted_at IS NULL
		LIMIT 1
	`

	customer := &domain.Customer{}
	err := r.q.QueryRowContext(ctx, query, phone).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.Address,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by phone: %w", err)
	}

	return customer, nil
}
