package service

import (
	"context"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerInput identifies the buying customer; phone is the dedup key.
type CustomerInput struct {
	Name    string
	Phone   string
	Address string
}

// OrderResult is returned from order creation.
type OrderResult struct {
	SaleID      uuid.UUID
	CustomerID  uuid.UUID
	TotalAmount decimal.Decimal
}

// SaleService is the customer-facing stock consumer. Every mutation runs in
// one transaction; stock moves only through the ledger primitives.
type SaleService interface {
	CreateOrder(ctx context.Context, customer CustomerInput, items []LineItem, creatorID uuid.UUID) (*OrderResult, error)
	GetOrders(ctx context.Context) ([]domain.SaleSummary, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, items []LineItem) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	SearchProducts(ctx context.Context, query string) ([]domain.ProductRef, error)
}

type saleService struct {
	store repository.Store
}

// NewSaleService creates a SaleService over the given store.
func NewSaleService(store repository.Store) SaleService {
	return &saleService{store: store}
}

// CreateOrder resolves the customer by phone (creating one if needed),
// snapshots each product's price, inserts the sale and its items, and
// decrements stock per line. The ledger's conditional decrement rejects any
// oversell, rolling back the whole order.
func (s *saleService) CreateOrder(ctx context.Context, customer CustomerInput, items []LineItem, creatorID uuid.UUID) (*OrderResult, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	result := &OrderResult{SaleID: uuid.New()}

	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		customerID, err := s.resolveCustomer(ctx, tx, customer)
		if err != nil {
			return err
		}
		result.CustomerID = customerID

		now := time.Now()
		sale := &domain.Sale{
			ID:          result.SaleID,
			CustomerID:  customerID,
			CreatedBy:   creatorID,
			TotalAmount: decimal.Zero,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Sales().Create(ctx, sale); err != nil {
			return err
		}

		total, err := s.applyItems(ctx, tx, result.SaleID, items)
		if err != nil {
			return err
		}
		result.TotalAmount = total

		return tx.Sales().UpdateTotal(ctx, result.SaleID, total)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// resolveCustomer returns the existing customer matching the phone number,
// or creates one. First write wins; name and address are not dedup keys.
func (s *saleService) resolveCustomer(ctx context.Context, tx repository.Store, customer CustomerInput) (uuid.UUID, error) {
	existing, err := tx.Customers().FindByPhone(ctx, customer.Phone)
	if err == nil {
		return existing.ID, nil
	}
	if err != repository.ErrCustomerNotFound {
		return uuid.Nil, err
	}

	now := time.Now()
	created := &domain.Customer{
		ID:        uuid.New(),
		Name:      customer.Name,
		Phone:     customer.Phone,
		Address:   customer.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Customers().Create(ctx, created); err != nil {
		return uuid.Nil, err
	}

	return created.ID, nil
}

// applyItems runs the validate/snapshot/insert/decrement loop shared by
// order creation and the reapply phase of an edit. Returns the item sum.
func (s *saleService) applyItems(ctx context.Context, tx repository.Store, saleID uuid.UUID, items []LineItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		product, err := tx.Products().FindByID(ctx, item.ProductID)
		if err != nil {
			return decimal.Zero, err
		}

		saleItem := &domain.SaleItem{
			SaleID:    saleID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		}
		if err := tx.Sales().InsertItem(ctx, saleItem); err != nil {
			return decimal.Zero, err
		}

		if err := tx.Products().DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return decimal.Zero, err
		}

		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return total, nil
}

func (s *saleService) GetOrders(ctx context.Context) ([]domain.SaleSummary, error) {
	return s.store.Sales().List(ctx)
}

func (s *saleService) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error) {
	return s.store.Sales().FindDetailByID(ctx, id)
}

// UpdateOrder replaces the item set with restore-then-reapply semantics:
// every old line's stock is restored and the line retired before any new
// line is validated, so the new set is checked against fully restored stock.
func (s *saleService) UpdateOrder(ctx context.Context, id uuid.UUID, items []LineItem) error {
	if err := validateItems(items); err != nil {
		return err
	}

	return s.store.ExecTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Sales().FindByID(ctx, id); err != nil {
			return err
		}

		oldItems, err := tx.Sales().ListLiveItems(ctx, id)
		if err != nil {
			return err
		}
		for _, old := range oldItems {
			if err := tx.Products().IncrementStock(ctx, old.ProductID, old.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Sales().SoftDeleteItems(ctx, id); err != nil {
			return err
		}

		total, err := s.applyItems(ctx, tx, id, items)
		if err != nil {
			return err
		}

		return tx.Sales().UpdateTotal(ctx, id, total)
	})
}

// DeleteOrder soft-deletes the sale and its items, restoring every line's
// stock. Symmetric with CreateOrder: create-then-delete leaves stock
// exactly where it started.
func (s *saleService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.store.ExecTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Sales().FindByID(ctx, id); err != nil {
			return err
		}

		items, err := tx.Sales().ListLiveItems(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Products().IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Sales().SoftDeleteItems(ctx, id); err != nil {
			return err
		}
		return tx.Sales().SoftDelete(ctx, id)
	})
}

// SearchProducts serves the bill-creation autocomplete.
func (s *saleService) SearchProducts(ctx context.Context, query string) ([]domain.ProductRef, error) {
	return s.store.Products().Search(ctx, query, 20)
}
