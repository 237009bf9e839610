package service

import (
	"context"
	"errors"
	"testing"

	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/store"
)

func stockOf(t *testing.T, svc *Service, barcode string) int {
	t.Helper()
	product, err := svc.GetProductByBarcode(context.Background(), barcode)
	if err != nil {
		t.Fatalf("lookup barcode %s: %v", barcode, err)
	}
	return product.StockQty
}

func TestCreatePurchaseStocksInEveryLine(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")
	beras := mustProduct(t, svc, category.ID, "Beras 5kg", 62300, 68500, 0)
	minyak := mustProduct(t, svc, category.ID, "Minyak Goreng 1L", 14100, 16700, 0)

	purchase, err := svc.CreatePurchase(context.Background(), domain.PurchaseCreateRequest{
		InvoiceNo:    "INV-2024-001",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: beras.ID, Qty: 5, PriceCents: 1000},
			{ProductID: minyak.ID, Qty: 5, PriceCents: 800},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	if purchase.TotalAmountCents != 9000 {
		t.Fatalf("expected total 9000, got %d", purchase.TotalAmountCents)
	}
	if got := stockOf(t, svc, beras.Barcode); got != 5 {
		t.Fatalf("expected beras stock 5, got %d", got)
	}
	if got := stockOf(t, svc, minyak.Barcode); got != 5 {
		t.Fatalf("expected minyak stock 5, got %d", got)
	}
}

func TestCreatePurchaseLeavesEarlierIncrementsOnFailure(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")
	beras := mustProduct(t, svc, category.ID, "Beras 5kg", 62300, 68500, 0)

	_, err := svc.CreatePurchase(context.Background(), domain.PurchaseCreateRequest{
		InvoiceNo:    "INV-2024-002",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: beras.ID, Qty: 3, PriceCents: 1000},
			{ProductID: "missing-product", Qty: 2, PriceCents: 500},
		},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The first line stays applied even though no purchase was written.
	if got := stockOf(t, svc, beras.Barcode); got != 3 {
		t.Fatalf("expected beras stock 3 after failed purchase, got %d", got)
	}
	purchases, err := svc.ListPurchases(context.Background())
	if err != nil {
		t.Fatalf("list purchases: %v", err)
	}
	if len(purchases) != 0 {
		t.Fatalf("expected no purchase recorded, got %d", len(purchases))
	}
}

func TestUpdatePurchaseReversesThenReapplies(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")
	beras := mustProduct(t, svc, category.ID, "Beras 5kg", 62300, 68500, 0)
	minyak := mustProduct(t, svc, category.ID, "Minyak Goreng 1L", 14100, 16700, 0)

	purchase, err := svc.CreatePurchase(context.Background(), domain.PurchaseCreateRequest{
		InvoiceNo:    "INV-2024-003",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: beras.ID, Qty: 5, PriceCents: 1000},
			{ProductID: minyak.ID, Qty: 5, PriceCents: 800},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	updated, err := svc.UpdatePurchase(context.Background(), purchase.ID, domain.PurchaseUpdateRequest{
		InvoiceNo:    "INV-2024-003R",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: beras.ID, Qty: 2, PriceCents: 400},
			{ProductID: minyak.ID, Qty: 3, PriceCents: 400},
		},
	})
	if err != nil {
		t.Fatalf("update purchase: %v", err)
	}

	if updated.TotalAmountCents != 2000 {
		t.Fatalf("expected total 2000 after update, got %d", updated.TotalAmountCents)
	}
	if updated.UpdatedAt == nil {
		t.Fatal("expected updated_at to be set")
	}
	if got := stockOf(t, svc, beras.Barcode); got != 2 {
		t.Fatalf("expected beras stock 2 after update, got %d", got)
	}
	if got := stockOf(t, svc, minyak.Barcode); got != 3 {
		t.Fatalf("expected minyak stock 3 after update, got %d", got)
	}
}

func TestUpdatePurchaseFailureLeavesStoredRecordUntouched(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")
	beras := mustProduct(t, svc, category.ID, "Beras 5kg", 62300, 68500, 0)

	purchase, err := svc.CreatePurchase(context.Background(), domain.PurchaseCreateRequest{
		InvoiceNo:    "INV-2024-004",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: beras.ID, Qty: 4, PriceCents: 1000},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	_, err = svc.UpdatePurchase(context.Background(), purchase.ID, domain.PurchaseUpdateRequest{
		InvoiceNo:    "INV-2024-004R",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: "missing-product", Qty: 1, PriceCents: 100},
		},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Old lines were reversed before the new lines failed.
	if got := stockOf(t, svc, beras.Barcode); got != 0 {
		t.Fatalf("expected beras stock 0 after aborted update, got %d", got)
	}
	stored, err := svc.GetPurchase(context.Background(), purchase.ID)
	if err != nil {
		t.Fatalf("get purchase: %v", err)
	}
	if stored.InvoiceNo != "INV-2024-004" {
		t.Fatalf("expected stored invoice unchanged, got %s", stored.InvoiceNo)
	}
}

func TestDeletePurchaseReversesStockAndHidesRecord(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")
	beras := mustProduct(t, svc, category.ID, "Beras 5kg", 62300, 68500, 10)

	purchase, err := svc.CreatePurchase(context.Background(), domain.PurchaseCreateRequest{
		InvoiceNo:    "INV-2024-005",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: beras.ID, Qty: 6, PriceCents: 1000},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if got := stockOf(t, svc, beras.Barcode); got != 16 {
		t.Fatalf("expected stock 16 after purchase, got %d", got)
	}

	if err := svc.DeletePurchase(context.Background(), purchase.ID); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}
	if got := stockOf(t, svc, beras.Barcode); got != 10 {
		t.Fatalf("expected stock 10 after delete, got %d", got)
	}
	if _, err := svc.GetPurchase(context.Background(), purchase.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected deleted purchase hidden, got %v", err)
	}
	if err := svc.DeletePurchase(context.Background(), purchase.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeletePurchaseSkipsVanishedProducts(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")
	beras := mustProduct(t, svc, category.ID, "Beras 5kg", 62300, 68500, 0)
	minyak := mustProduct(t, svc, category.ID, "Minyak Goreng 1L", 14100, 16700, 0)

	purchase, err := svc.CreatePurchase(context.Background(), domain.PurchaseCreateRequest{
		InvoiceNo:    "INV-2024-006",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: beras.ID, Qty: 4, PriceCents: 1000},
			{ProductID: minyak.ID, Qty: 4, PriceCents: 800},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	// Soft-deleted products still take the reversal: stock adjustments are
	// not filtered by active.
	if err := svc.DeleteProduct(context.Background(), minyak.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if err := svc.DeletePurchase(context.Background(), purchase.ID); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}
	if got := stockOf(t, svc, beras.Barcode); got != 0 {
		t.Fatalf("expected beras stock 0, got %d", got)
	}
}

func TestReversalHasNoLowerBound(t *testing.T) {
	svc := newTestService()
	category := mustCategory(t, svc, "Sembako")
	beras := mustProduct(t, svc, category.ID, "Beras 5kg", 62300, 68500, 0)

	purchase, err := svc.CreatePurchase(context.Background(), domain.PurchaseCreateRequest{
		InvoiceNo:    "INV-2024-007",
		SupplierName: "PT Sumber Pangan",
		Items: []domain.PurchaseItem{
			{ProductID: beras.ID, Qty: 5, PriceCents: 1000},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	// Sell down the purchased stock, then delete the purchase: the reversal
	// subtracts the full quantity and drives stock negative.
	actor := staffCtx()
	if _, err := svc.CreateSale(actor, domain.SaleCreateRequest{
		BillNo:      "BILL-100",
		PaymentMode: domain.PaymentModeCash,
		Items:       []domain.SaleLineRequest{{Barcode: beras.Barcode, Qty: 4}},
	}); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if err := svc.DeletePurchase(context.Background(), purchase.ID); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}
	if got := stockOf(t, svc, beras.Barcode); got != -4 {
		t.Fatalf("expected stock -4 after reversal, got %d", got)
	}
}
