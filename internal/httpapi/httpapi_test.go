package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"gudangpos/backend/internal/cache"
	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/service"
	"gudangpos/backend/internal/store/memory"
)

type testEnv struct {
	server *httptest.Server
	svc    *service.Service
}

// newTestEnv wires a full stack on the in-memory store with one account
// per role, all sharing the password "rahasia123".
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := memory.New()
	svc := service.New(repo, cache.NoopSummaryCache{}, time.Second, 5, zap.NewNop())

	ctx := context.Background()
	if err := svc.EnsureSuperAdmin(ctx, "owner", "owner@gudangpos.local", "rahasia123"); err != nil {
		t.Fatalf("bootstrap super admin: %v", err)
	}
	for _, acct := range []struct{ role, username string }{
		{domain.RoleAdmin, "admin"},
		{domain.RoleStaff, "kasir"},
	} {
		if _, err := svc.CreateUser(ctx, acct.role, domain.UserCreateRequest{
			Username: acct.username,
			Email:    acct.username + "@gudangpos.local",
			Password: "rahasia123",
		}); err != nil {
			t.Fatalf("create %s: %v", acct.username, err)
		}
	}

	auth := NewAuthManager("test-secret-which-is-long-enough!", time.Hour, repo)
	api := New(svc, auth, "http://localhost:5173", zap.NewNop())

	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return &testEnv{server: server, svc: svc}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, payload
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	resp, body := e.request(t, http.MethodPost, "/auth/login", "", domain.LoginRequest{
		Username: username,
		Password: "rahasia123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, resp.StatusCode, body)
	}

	var loginResp domain.LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	return loginResp.AccessToken
}

func decodeInto[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return out
}

// seedCatalog creates a category and product through the API so the stock
// flows run end to end.
func seedCatalog(t *testing.T, e *testEnv, adminToken string) domain.Product {
	t.Helper()

	resp, body := e.request(t, http.MethodPost, "/categories/add", adminToken, domain.CategoryCreateRequest{Name: "Minuman"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: status %d body %s", resp.StatusCode, body)
	}
	category := decodeInto[domain.Category](t, body)

	resp, body = e.request(t, http.MethodPost, "/products/add", adminToken, domain.ProductCreateRequest{
		Name:               "Teh Botol",
		CategoryID:         category.ID,
		PurchasePriceCents: 3100,
		SellingPriceCents:  4500,
		StockQty:           20,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status %d body %s", resp.StatusCode, body)
	}
	return decodeInto[domain.Product](t, body)
}
