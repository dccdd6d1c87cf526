package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/mailer"
	"stockroom/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrEmptyItems rejects drafts and orders without a single line item.
	ErrEmptyItems = errors.New("at least one item is required")
	// ErrInvalidQuantity rejects zero or negative line quantities.
	ErrInvalidQuantity = errors.New("item quantity must be positive")
	// ErrDraftNotEditable is returned when a draft has already been
	// dispatched and can no longer be modified or deleted.
	ErrDraftNotEditable = errors.New("draft has already been dispatched")
	// ErrDispatchFailed wraps a mail-relay failure; the draft status is left
	// untouched so the operation can be retried in full.
	ErrDispatchFailed = errors.New("failed to dispatch draft to supplier")
)

// LineItem is a product/quantity pair supplied by a caller.
type LineItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// DraftService manages purchase drafts up to and including dispatch. Drafts
// never touch inventory.
type DraftService interface {
	CreateDraft(ctx context.Context, supplierID, creatorID uuid.UUID, items []LineItem) (uuid.UUID, error)
	GetDrafts(ctx context.Context) ([]domain.DraftDetail, error)
	GetDraftByID(ctx context.Context, id uuid.UUID) (*domain.DraftDetail, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, items []LineItem) error
	DeleteDraft(ctx context.Context, id uuid.UUID) error
	SendDraft(ctx context.Context, id uuid.UUID) error
	GetSuppliers(ctx context.Context) ([]domain.Supplier, error)
}

type draftService struct {
	store  repository.Store
	mailer mailer.Mailer
}

// NewDraftService creates a DraftService over the given store and mailer.
func NewDraftService(store repository.Store, m mailer.Mailer) DraftService {
	return &draftService{store: store, mailer: m}
}

func validateItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// CreateDraft inserts the draft header and its line items atomically. The
// supplier and every product must exist; an empty item list is rejected.
func (s *draftService) CreateDraft(ctx context.Context, supplierID, creatorID uuid.UUID, items []LineItem) (uuid.UUID, error) {
	if err := validateItems(items); err != nil {
		return uuid.Nil, err
	}

	draftID := uuid.New()
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Suppliers().FindByID(ctx, supplierID); err != nil {
			return err
		}

		now := time.Now()
		draft := &domain.PurchaseDraft{
			ID:         draftID,
			SupplierID: supplierID,
			CreatedBy:  creatorID,
			Status:     domain.DraftStatusDraft,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Drafts().Create(ctx, draft); err != nil {
			return err
		}

		draftItems := make([]domain.DraftItem, 0, len(items))
		for _, item := range items {
			if _, err := tx.Products().FindByID(ctx, item.ProductID); err != nil {
				return err
			}
			draftItems = append(draftItems, domain.DraftItem{
				DraftID:   draftID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		return tx.Drafts().InsertItems(ctx, draftID, draftItems)
	})
	if err != nil {
		return uuid.Nil, err
	}

	return draftID, nil
}

// GetDrafts lists drafts still in the editable state. Item prices in the
// result are current catalog prices, shown as estimates only.
func (s *draftService) GetDrafts(ctx context.Context) ([]domain.DraftDetail, error) {
	return s.store.Drafts().List(ctx, domain.DraftStatusDraft)
}

func (s *draftService) GetDraftByID(ctx context.Context, id uuid.UUID) (*domain.DraftDetail, error) {
	return s.store.Drafts().FindDetailByID(ctx, id)
}

// UpdateDraft replaces the whole item set. Permitted only while the draft
// has not been dispatched.
func (s *draftService) UpdateDraft(ctx context.Context, id uuid.UUID, items []LineItem) error {
	if err := validateItems(items); err != nil {
		return err
	}

	return s.store.ExecTx(ctx, func(tx repository.Store) error {
		draft, err := tx.Drafts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if draft.Status != domain.DraftStatusDraft {
			return ErrDraftNotEditable
		}

		if err := tx.Drafts().DeleteItems(ctx, id); err != nil {
			return err
		}

		draftItems := make([]domain.DraftItem, 0, len(items))
		for _, item := range items {
			if _, err := tx.Products().FindByID(ctx, item.ProductID); err != nil {
				return err
			}
			draftItems = append(draftItems, domain.DraftItem{
				DraftID:   id,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		return tx.Drafts().InsertItems(ctx, id, draftItems)
	})
}

// DeleteDraft soft-deletes a draft. Dispatched drafts cannot be deleted.
func (s *draftService) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	err := s.store.Drafts().SoftDelete(ctx, id)
	if errors.Is(err, repository.ErrDraftStateConflict) {
		return ErrDraftNotEditable
	}
	return err
}

// SendDraft emails the proposal to the supplier and then flips the status to
// ordered. The flip is persisted only after the relay accepted the message;
// a relay failure surfaces as ErrDispatchFailed with no state change.
func (s *draftService) SendDraft(ctx context.Context, id uuid.UUID) error {
	detail, err := s.store.Drafts().FindDetailByID(ctx, id)
	if err != nil {
		return err
	}
	if detail.Status != domain.DraftStatusDraft {
		return ErrDraftNotEditable
	}

	proposal := mailer.DraftProposal{
		DraftID:       detail.ID.String(),
		SupplierName:  detail.SupplierName,
		SupplierEmail: detail.SupplierEmail,
		SenderName:    detail.CreatedByName,
		CreatedAt:     detail.CreatedAt,
		Items:         detail.Items,
	}
	if err := s.mailer.SendDraftProposal(ctx, proposal); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	err = s.store.Drafts().TransitionStatus(ctx, id, domain.DraftStatusDraft, domain.DraftStatusOrdered)
	if errors.Is(err, repository.ErrDraftStateConflict) {
		return ErrDraftNotEditable
	}
	return err
}

// GetSuppliers serves the supplier picker on the draft-creation screen.
func (s *draftService) GetSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.store.Suppliers().List(ctx)
}
