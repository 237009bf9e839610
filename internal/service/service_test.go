package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"gudangpos/backend/internal/cache"
	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/store"
	"gudangpos/backend/internal/store/memory"
)

func newTestService() *Service {
	return New(memory.New(), cache.NoopSummaryCache{}, time.Second, 5, zap.NewNop())
}

func staffCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{
		ID:       "user-staff-1",
		Username: "staff",
		Role:     domain.RoleStaff,
	})
}

func mustCategory(t *testing.T, svc *Service, name string) domain.Category {
	t.Helper()
	category, err := svc.CreateCategory(context.Background(), domain.CategoryCreateRequest{Name: name})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return category
}

func mustProduct(t *testing.T, svc *Service, categoryID string, name string, buyCents int64, sellCents int64, stock int) domain.Product {
	t.Helper()
	product, err := svc.CreateProduct(context.Background(), domain.ProductCreateRequest{
		Name:               name,
		CategoryID:         categoryID,
		PurchasePriceCents: buyCents,
		SellingPriceCents:  sellCents,
		StockQty:           stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}

func TestCreateProductGeneratesFourDigitBarcode(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		product := mustProduct(t, svc, category.ID, "Gula 1kg", 15500, 17400, 10)
		if len(product.Barcode) != 4 {
			t.Fatalf("expected 4-digit barcode, got %q", product.Barcode)
		}
		if seen[product.Barcode] {
			t.Fatalf("barcode %q assigned twice", product.Barcode)
		}
		seen[product.Barcode] = true
	}
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateProduct(context.Background(), domain.ProductCreateRequest{
		Name:              "Kopi Sachet",
		CategoryID:        "does-not-exist",
		SellingPriceCents: 2600,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProductRejectsEmptyPayload(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Minuman")
	product := mustProduct(t, svc, category.ID, "Teh Celup", 7600, 9800, 5)

	_, err := svc.UpdateProduct(context.Background(), product.ID, domain.ProductUpdateRequest{})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteProductTwiceReportsNotFound(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Snack")
	product := mustProduct(t, svc, category.ID, "Keripik", 8100, 12800, 5)

	if err := svc.DeleteProduct(context.Background(), product.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteProduct(context.Background(), product.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected deleted product hidden from list, got %d products", len(products))
	}
}

func TestDeletedProductBarcodeCanBeReassigned(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")
	product := mustProduct(t, svc, category.ID, "Mie Instan", 2800, 3500, 10)

	if err := svc.DeleteProduct(context.Background(), product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetProductByBarcode(context.Background(), product.Barcode); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected deleted product invisible by barcode, got %v", err)
	}
}

func TestDuplicateCategoryNameConflicts(t *testing.T) {
	svc := newTestService()
	mustCategory(t, svc, "Sembako")

	_, err := svc.CreateCategory(context.Background(), domain.CategoryCreateRequest{Name: "sembako"})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate name, got %v", err)
	}
}
