package httpapi

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/service"
)

func TestProductCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")

	product := seedCatalog(t, env, adminToken)
	if len(product.Barcode) != 4 {
		t.Fatalf("expected 4-digit barcode, got %q", product.Barcode)
	}

	resp, body := env.request(t, http.MethodGet, "/products/list", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d body %s", resp.StatusCode, body)
	}
	listed := decodeInto[map[string][]domain.Product](t, body)
	if len(listed["products"]) != 1 {
		t.Fatalf("expected 1 product, got %+v", listed)
	}

	resp, body = env.request(t, http.MethodGet, "/products/by-barcode/"+product.Barcode, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("by-barcode: status %d body %s", resp.StatusCode, body)
	}
	found := decodeInto[domain.Product](t, body)
	if found.ID != product.ID {
		t.Fatalf("expected product %s, got %s", product.ID, found.ID)
	}
}

func TestSaleFlowThroughAPI(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")
	staffToken := env.login(t, "kasir")

	product := seedCatalog(t, env, adminToken)

	resp, body := env.request(t, http.MethodPost, "/sales/add", staffToken, domain.SaleCreateRequest{
		BillNo:      "BILL-001",
		PaymentMode: domain.PaymentModeCash,
		Items:       []domain.SaleLineRequest{{Barcode: product.Barcode, Qty: 3}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("sale: status %d body %s", resp.StatusCode, body)
	}
	sale := decodeInto[domain.Sale](t, body)
	if sale.TotalAmountCents != 3*4500 {
		t.Fatalf("expected total %d, got %d", 3*4500, sale.TotalAmountCents)
	}
	if sale.CreatedBy == "" {
		t.Fatal("expected created_by stamped from the token")
	}
	if sale.Items[0].PriceCents != 4500 {
		t.Fatalf("expected snapshotted price 4500, got %d", sale.Items[0].PriceCents)
	}

	resp, body = env.request(t, http.MethodGet, "/products/by-barcode/"+product.Barcode, staffToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("by-barcode: status %d body %s", resp.StatusCode, body)
	}
	after := decodeInto[domain.Product](t, body)
	if after.StockQty != 17 {
		t.Fatalf("expected stock 17 after sale, got %d", after.StockQty)
	}

	resp, body = env.request(t, http.MethodGet, "/sales/details/"+sale.ID, staffToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("details: status %d body %s", resp.StatusCode, body)
	}
}

func TestSaleInsufficientStockReturns400(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")
	product := seedCatalog(t, env, adminToken)

	resp, body := env.request(t, http.MethodPost, "/sales/add", adminToken, domain.SaleCreateRequest{
		BillNo:      "BILL-002",
		PaymentMode: domain.PaymentModeCash,
		Items:       []domain.SaleLineRequest{{Barcode: product.Barcode, Qty: 999}},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "insufficient stock") {
		t.Fatalf("expected insufficient stock message, got %s", body)
	}
}

func TestPurchaseLifecycleThroughAPI(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")
	product := seedCatalog(t, env, adminToken)

	resp, body := env.request(t, http.MethodPost, "/purchases/add", adminToken, domain.PurchaseCreateRequest{
		InvoiceNo:    "INV-001",
		SupplierName: "PT Sumber Pangan",
		Items:        []domain.PurchaseItem{{ProductID: product.ID, Qty: 10, PriceCents: 3100}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("purchase: status %d body %s", resp.StatusCode, body)
	}
	purchase := decodeInto[domain.Purchase](t, body)
	if purchase.TotalAmountCents != 31000 {
		t.Fatalf("expected total 31000, got %d", purchase.TotalAmountCents)
	}

	resp, body = env.request(t, http.MethodGet, "/products/by-barcode/"+product.Barcode, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("by-barcode: status %d body %s", resp.StatusCode, body)
	}
	if got := decodeInto[domain.Product](t, body).StockQty; got != 30 {
		t.Fatalf("expected stock 30 after purchase, got %d", got)
	}

	resp, body = env.request(t, http.MethodDelete, "/purchases/delete/"+purchase.ID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d body %s", resp.StatusCode, body)
	}

	resp, body = env.request(t, http.MethodDelete, "/purchases/delete/"+purchase.ID, adminToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d body %s", resp.StatusCode, body)
	}
}

func TestValidationRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")

	resp, body := env.request(t, http.MethodPost, "/categories/add", adminToken, map[string]any{
		"name":     "Minuman",
		"surprise": true,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d body %s", resp.StatusCode, body)
	}
}

func TestDuplicateCategoryReturns409(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		resp, body := env.request(t, http.MethodPost, "/categories/add", adminToken, domain.CategoryCreateRequest{Name: "Minuman"})
		if resp.StatusCode != want {
			t.Fatalf("attempt %d: expected %d, got %d body %s", i, want, resp.StatusCode, body)
		}
	}
}

func TestStaffManagementEndpoints(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")

	resp, body := env.request(t, http.MethodPost, "/staff/add", adminToken, domain.UserCreateRequest{
		Username: "kasir2",
		Email:    "kasir2@gudangpos.local",
		Password: "rahasia123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("staff add: status %d body %s", resp.StatusCode, body)
	}
	created := decodeInto[domain.User](t, body)
	if strings.Contains(string(body), "rahasia123") || strings.Contains(string(body), "$2") {
		t.Fatalf("password material leaked in response: %s", body)
	}

	resp, body = env.request(t, http.MethodGet, "/staff/list", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("staff list: status %d body %s", resp.StatusCode, body)
	}
	listed := decodeInto[map[string][]domain.User](t, body)
	if len(listed["users"]) != 2 {
		t.Fatalf("expected 2 staff, got %+v", listed)
	}

	resp, body = env.request(t, http.MethodDelete, "/staff/delete/"+created.ID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("staff delete: status %d body %s", resp.StatusCode, body)
	}
}

func TestDashboardAndReportsRespond(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")
	product := seedCatalog(t, env, adminToken)

	if _, err := env.svc.CreateSale(
		service.WithActor(context.Background(), domain.Actor{ID: "seed", Username: "kasir", Role: domain.RoleStaff}),
		domain.SaleCreateRequest{
			BillNo:      "BILL-R1",
			PaymentMode: domain.PaymentModeCash,
			Items:       []domain.SaleLineRequest{{Barcode: product.Barcode, Qty: 2}},
		},
	); err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	for _, path := range []string{
		"/dashboard/summary",
		"/dashboard/sales-analysis?days=7",
		"/dashboard/top-products?limit=3",
		"/reports/daily-sales",
		"/reports/monthly-sales",
		"/profit/product-wise",
		"/stock/summary",
		"/stock/low-stock",
		"/analytics/slow-moving",
		"/analytics/restock-suggestions",
		"/analytics/demand-prediction",
		"/purchase-analytics/supplier-wise",
	} {
		resp, body := env.request(t, http.MethodGet, path, adminToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d body %s", path, resp.StatusCode, body)
		}
	}
}

func TestDailySalesExportReturnsCSV(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")

	resp, body := env.request(t, http.MethodGet, "/reports/daily-sales/export", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status %d body %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if !strings.HasPrefix(string(body), "section,key,value") {
		t.Fatalf("unexpected CSV body: %s", body)
	}
}
