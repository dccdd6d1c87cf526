package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockroom/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func createTestProduct(t *testing.T, repo ProductRepository, stock, minStock int) uuid.UUID {
	t.Helper()

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "test-product-" + uuid.NewString()[:8],
		Price:       decimal.RequireFromString("4.25"),
		Stock:       stock,
		MinStock:    minStock,
		StockStatus: domain.ClassifyStock(stock, minStock),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product.ID
}

func TestDecrementStock_RejectsOversell(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	id := createTestProduct(t, repo, 5, 2)

	if err := repo.DecrementStock(ctx, id, 3); err != nil {
		t.Fatalf("decrement within stock failed: %v", err)
	}

	product, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if product.Stock != 2 {
		t.Errorf("stock = %d, want 2", product.Stock)
	}
	if product.StockStatus != domain.StockStatusLow {
		t.Errorf("stock_status = %s, want low_stock", product.StockStatus)
	}

	err = repo.DecrementStock(ctx, id, 3)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// A rejected decrement leaves the row untouched.
	product, _ = repo.FindByID(ctx, id)
	if product.Stock != 2 {
		t.Errorf("stock after rejected decrement = %d, want 2", product.Stock)
	}
}

func TestDecrementStock_UnknownProduct(t *testing.T) {
	repo := NewProductRepository(testDB)

	err := repo.DecrementStock(context.Background(), uuid.New(), 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestIncrementStock_RecomputesStatus(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	id := createTestProduct(t, repo, 0, 3)

	if err := repo.IncrementStock(ctx, id, 10); err != nil {
		t.Fatalf("IncrementStock failed: %v", err)
	}

	product, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if product.Stock != 10 {
		t.Errorf("stock = %d, want 10", product.Stock)
	}
	if product.StockStatus != domain.StockStatusIn {
		t.Errorf("stock_status = %s, want in_stock", product.StockStatus)
	}
}

// Every stock mutation must leave stock_status equal to the classification of
// the resulting quantity, no matter the order of increments and decrements.
func TestProperty_StockStatusStaysConsistentUnderMutation(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("stock_status always matches the stored quantity", prop.ForAll(
		func(initialStock int, minStock int, deltas []int) bool {
			id := createTestProduct(t, repo, initialStock, minStock)

			for _, delta := range deltas {
				if delta >= 0 {
					if err := repo.IncrementStock(ctx, id, delta); err != nil {
						return false
					}
				} else {
					err := repo.DecrementStock(ctx, id, -delta)
					if err != nil && !errors.Is(err, ErrInsufficientStock) {
						return false
					}
				}

				product, err := repo.FindByID(ctx, id)
				if err != nil {
					return false
				}
				if product.Stock < 0 {
					return false
				}
				if product.StockStatus != domain.ClassifyStock(product.Stock, product.MinStock) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 50),
		gen.IntRange(0, 10),
		gen.SliceOfN(8, gen.IntRange(-30, 30)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSearch_MatchesCaseInsensitive(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	now := time.Now()
	name := "Basmati Rice " + uuid.NewString()[:8]
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Price:       decimal.NewFromInt(7),
		Stock:       3,
		MinStock:    1,
		StockStatus: domain.StockStatusIn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	refs, err := repo.Search(ctx, "basmati", 20)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	found := false
	for _, ref := range refs {
		if ref.ID == product.ID {
			found = true
			if !ref.Price.Equal(product.Price) {
				t.Errorf("search price = %s, want %s", ref.Price, product.Price)
			}
		}
	}
	if !found {
		t.Fatal("case-insensitive search did not return the product")
	}
}
