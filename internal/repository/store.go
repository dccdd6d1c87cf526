package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so every
// repository can run either standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store exposes all repositories plus transactional execution. It replaces
// any ambient shared pool: services receive a Store at construction time.
type Store interface {
	Products() ProductRepository
	Suppliers() SupplierRepository
	Customers() CustomerRepository
	Drafts() DraftRepository
	Purchases() PurchaseRepository
	Sales() SaleRepository

	// ExecTx runs fn against a Store bound to a single transaction,
	// committing on nil and rolling back on any error. Errors returned by
	// fn pass through unwrapped so callers can match sentinels.
	ExecTx(ctx context.Context, fn func(Store) error) error
}

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db *sql.DB
	q  DBTX
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

func (s *SQLStore) Products() ProductRepository   { return &productRepository{q: s.q} }
func (s *SQLStore) Suppliers() SupplierRepository { return &supplierRepository{q: s.q} }
func (s *SQLStore) Customers() CustomerRepository { return &customerRepository{q: s.q} }
func (s *SQLStore) Drafts() DraftRepository       { return &draftRepository{q: s.q} }
func (s *SQLStore) Purchases() PurchaseRepository { return &purchaseRepository{q: s.q} }
func (s *SQLStore) Sales() SaleRepository         { return &saleRepository{q: s.q} }

// ExecTx begins a transaction and hands fn a Store whose repositories all
// share it. A nested call reuses the transaction already in progress.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&SQLStore{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
