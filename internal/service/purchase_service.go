package service

import (
	"context"
	"errors"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoDraftItems is returned when delivery is confirmed for a draft
	// without a single line item.
	ErrNoDraftItems = errors.New("no items found for this order")
	// ErrDraftNotOrdered guards the terminal transition: only an ordered
	// draft can be delivered, so a second delivery can never double-count
	// stock.
	ErrDraftNotOrdered = errors.New("draft is not in the ordered state")
)

// PriceCorrection is a post-delivery price fix for one purchase line.
type PriceCorrection struct {
	ProductID uuid.UUID
	Price     decimal.Decimal
}

// PurchaseService reconciles deliveries against inventory and owns the
// purchase receipts created at delivery time.
type PurchaseService interface {
	MarkDelivered(ctx context.Context, draftID uuid.UUID) (uuid.UUID, error)
	UpdatePurchasePrice(ctx context.Context, purchaseID uuid.UUID, corrections []PriceCorrection) error
	GetOrderedPurchases(ctx context.Context) ([]domain.DraftDetail, error)
	GetDeliveredPurchases(ctx context.Context) ([]domain.DraftDetail, error)
	GetPurchaseByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDetail, error)
}

type purchaseService struct {
	store repository.Store
}

// NewPurchaseService creates a PurchaseService over the given store.
func NewPurchaseService(store repository.Store) PurchaseService {
	return &purchaseService{store: store}
}

// MarkDelivered applies a delivered draft to inventory. Atomically: a
// purchase receipt is created with price-at-delivery snapshots, every line
// quantity is added to stock through the ledger, and the draft moves to its
// terminal state. Returns the new purchase id.
func (s *purchaseService) MarkDelivered(ctx context.Context, draftID uuid.UUID) (uuid.UUID, error) {
	purchaseID := uuid.New()

	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		draft, err := tx.Drafts().FindByID(ctx, draftID)
		if err != nil {
			return err
		}
		if draft.Status != domain.DraftStatusOrdered {
			return ErrDraftNotOrdered
		}

		items, err := tx.Drafts().ListItems(ctx, draftID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrNoDraftItems
		}

		now := time.Now()
		total := decimal.Zero
		purchaseItems := make([]domain.PurchaseItem, 0, len(items))
		for _, item := range items {
			product, err := tx.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}

			purchaseItems = append(purchaseItems, domain.PurchaseItem{
				PurchaseID: purchaseID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				Price:      product.Price,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))

			if err := tx.Products().IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		purchase := &domain.Purchase{
			ID:          purchaseID,
			SupplierID:  draft.SupplierID,
			CreatedBy:   draft.CreatedBy,
			TotalAmount: total,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Purchases().Create(ctx, purchase); err != nil {
			return err
		}
		if err := tx.Purchases().InsertItems(ctx, purchaseID, purchaseItems); err != nil {
			return err
		}
		if err := tx.Drafts().LinkPurchase(ctx, draftID, purchaseID); err != nil {
			return err
		}

		err = tx.Drafts().TransitionStatus(ctx, draftID, domain.DraftStatusOrdered, domain.DraftStatusDelivered)
		if errors.Is(err, repository.ErrDraftStateConflict) {
			return ErrDraftNotOrdered
		}
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	return purchaseID, nil
}

// UpdatePurchasePrice corrects line prices on a delivered purchase and
// recomputes its total. Quantities and stock are never touched, and the
// delivered draft is not reopened.
func (s *purchaseService) UpdatePurchasePrice(ctx context.Context, purchaseID uuid.UUID, corrections []PriceCorrection) error {
	if len(corrections) == 0 {
		return ErrEmptyItems
	}

	return s.store.ExecTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Purchases().FindDetailByID(ctx, purchaseID); err != nil {
			return err
		}

		for _, c := range corrections {
			if err := tx.Purchases().UpdateItemPrice(ctx, purchaseID, c.ProductID, c.Price); err != nil {
				return err
			}
		}

		total, err := tx.Purchases().SumItems(ctx, purchaseID)
		if err != nil {
			return err
		}

		return tx.Purchases().UpdateTotal(ctx, purchaseID, total, true)
	})
}

// GetOrderedPurchases lists drafts that have been dispatched, including the
// ones already delivered.
func (s *purchaseService) GetOrderedPurchases(ctx context.Context) ([]domain.DraftDetail, error) {
	return s.store.Drafts().List(ctx, domain.DraftStatusOrdered, domain.DraftStatusDelivered)
}

func (s *purchaseService) GetDeliveredPurchases(ctx context.Context) ([]domain.DraftDetail, error) {
	return s.store.Drafts().List(ctx, domain.DraftStatusDelivered)
}

func (s *purchaseService) GetPurchaseByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDetail, error) {
	return s.store.Purchases().FindDetailByID(ctx, id)
}
