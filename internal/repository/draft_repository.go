package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	// ErrDraftStateConflict is returned when a guarded status transition or
	// delete finds the draft in a different state than required.
	ErrDraftStateConflict = errors.New("draft is not in the required state")
)

// DraftRepository persists purchase drafts and their line items. Items are
// owned by the draft and only ever replaced wholesale.
type DraftRepository interface {
	Create(ctx context.Context, draft *domain.PurchaseDraft) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDraft, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.DraftDetail, error)
	List(ctx context.Context, statuses ...domain.DraftStatus) ([]domain.DraftDetail, error)
	InsertItems(ctx context.Context, draftID uuid.UUID, items []domain.DraftItem) error
	DeleteItems(ctx context.Context, draftID uuid.UUID) error
	ListItems(ctx context.Context, draftID uuid.UUID) ([]domain.DraftItem, error)
	// TransitionStatus flips status from one state to the next; a zero-row
	// update means the draft was missing or in another state already.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.DraftStatus) error
	LinkPurchase(ctx context.Context, draftID, purchaseID uuid.UUID) error
	// SoftDelete marks a draft deleted; only drafts still in the editable
	// state are eligible.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type draftRepository struct {
	q DBTX
}

// NewDraftRepository creates a DraftRepository bound to the given handle.
func NewDraftRepository(q DBTX) DraftRepository {
	return &draftRepository{q: q}
}

func (r *draftRepository) Create(ctx context.Context, draft *domain.PurchaseDraft) error {
	query := `
		INSERT INTO purchase_drafts (id, supplier_id, created_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(
		ctx,
		query,
		draft.ID,
		draft.SupplierID,
		draft.CreatedBy,
		draft.Status,
		draft.CreatedAt,
		draft.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}

	return nil
}

func (r *draftRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDraft, error) {
	query := `
		SELECT id, supplier_id, created_by, purchase_id, status, created_at, updated_at
		FROM purchase_drafts
		WHERE id = $1 AND deleted_at IS NULL
	`

	draft := &domain.PurchaseDraft{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&draft.ID,
		&draft.SupplierID,
		&draft.CreatedBy,
		&draft.PurchaseID,
		&draft.Status,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to find draft by ID: %w", err)
	}

	return draft, nil
}

func (r *draftRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.DraftDetail, error) {
	query := `
		SELECT d.id, d.supplier_id, d.created_by, d.purchase_id, d.status, d.created_at, d.updated_at,
		       s.name, s.email, s.phone, u.username
		FROM purchase_drafts d
		LEFT JOIN suppliers s ON d.supplier_id = s.id
		LEFT JOIN users u ON d.created_by = u.id
		WHERE d.id = $1 AND d.deleted_at IS NULL
	`

	detail := &domain.DraftDetail{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.SupplierID,
		&detail.CreatedBy,
		&detail.PurchaseID,
		&detail.Status,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.SupplierName,
		&detail.SupplierEmail,
		&detail.SupplierPhone,
		&detail.CreatedByName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to find draft detail: %w", err)
	}

	items, err := r.listItemDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Items = items

	return detail, nil
}

// List returns draft headers in the given statuses, newest first, each with
// its item list joined to the current product name and price.
func (r *draftRepository) List(ctx context.Context, statuses ...domain.DraftStatus) ([]domain.DraftDetail, error) {
	query := `
		SELECT d.id, d.supplier_id, d.created_by, d.purchase_id, d.status, d.created_at, d.updated_at,
		       s.name, s.email, s.phone, u.username
		FROM purchase_drafts d
		LEFT JOIN suppliers s ON d.supplier_id = s.id
		LEFT JOIN users u ON d.created_by = u.id
		WHERE d.deleted_at IS NULL AND d.status = ANY($1)
		ORDER BY d.created_at DESC
	`

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := r.q.QueryContext(ctx, query, statusStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []domain.DraftDetail{}
	for rows.Next() {
		var d domain.DraftDetail
		err := rows.Scan(
			&d.ID, &d.SupplierID, &d.CreatedBy, &d.PurchaseID, &d.Status,
			&d.CreatedAt, &d.UpdatedAt,
			&d.SupplierName, &d.SupplierEmail, &d.SupplierPhone, &d.CreatedByName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drafts: %w", err)
	}

	for i := range drafts {
		items, err := r.listItemDetails(ctx, drafts[i].ID)
		if err != nil {
			return nil, err
		}
		drafts[i].Items = items
	}

	return drafts, nil
}

func (r *draftRepository) listItemDetails(ctx context.Context, draftID uuid.UUID) ([]domain.DraftItemDetail, error) {
	query := `
		SELECT i.product_id, p.name, p.price, i.quantity
		FROM purchase_draft_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.draft_id = $1
	`

	rows, err := r.q.QueryContext(ctx, query, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft items: %w", err)
	}
	defer rows.Close()

	items := []domain.DraftItemDetail{}
	for rows.Next() {
		var item domain.DraftItemDetail
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan draft item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft items: %w", err)
	}

	return items, nil
}

func (r *draftRepository) InsertItems(ctx context.Context, draftID uuid.UUID, items []domain.DraftItem) error {
	query := `
		INSERT INTO purchase_draft_items (id, draft_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
	`

	for _, item := range items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := r.q.ExecContext(ctx, query, id, draftID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to insert draft item: %w", err)
		}
	}

	return nil
}

func (r *draftRepository) DeleteItems(ctx context.Context, draftID uuid.UUID) error {
	query := `DELETE FROM purchase_draft_items WHERE draft_id = $1`

	if _, err := r.q.ExecContext(ctx, query, draftID); err != nil {
		return fmt.Errorf("failed to delete draft items: %w", err)
	}

	return nil
}

func (r *draftRepository) ListItems(ctx context.Context, draftID uuid.UUID) ([]domain.DraftItem, error) {
	query := `
		SELECT id, draft_id, product_id, quantity
		FROM purchase_draft_items
		WHERE draft_id = $1
	`

	rows, err := r.q.QueryContext(ctx, query, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft items: %w", err)
	}
	defer rows.Close()

	items := []domain.DraftItem{}
	for rows.Next() {
		var item domain.DraftItem
		if err := rows.Scan(&item.ID, &item.DraftID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan draft item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft items: %w", err)
	}

	return items, nil
}

func (r *draftRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.DraftStatus) error {
	query := `
		UPDATE purchase_drafts
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, id, from, to, time.Now())
	if err != nil {
		return fmt.Errorf("failed to transition draft status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return ErrDraftStateConflict
	}

	return nil
}

func (r *draftRepository) LinkPurchase(ctx context.Context, draftID, purchaseID uuid.UUID) error {
	query := `
		UPDATE purchase_drafts
		SET purchase_id = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, draftID, purchaseID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to link purchase: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrDraftNotFound
	}

	return nil
}

func (r *draftRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE purchase_drafts
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'draft' AND deleted_at IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return ErrDraftStateConflict
	}

	return nil
}
