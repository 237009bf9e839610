package httpapi

import (
	"net/http"
	"testing"

	"gudangpos/backend/internal/domain"
)

func TestSecurityHeadersAndCORS(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status %d", resp.StatusCode)
	}
	for header, want := range map[string]string{
		"X-Content-Type-Options":      "nosniff",
		"X-Frame-Options":             "DENY",
		"Access-Control-Allow-Origin": "http://localhost:5173",
	} {
		if got := resp.Header.Get(header); got != want {
			t.Fatalf("expected %s %q, got %q", header, want, got)
		}
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodOptions, "/products/list", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/products/list", "/sales/list", "/dashboard/summary"} {
		resp, _ := env.request(t, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", path, resp.StatusCode)
		}
	}

	resp, _ := env.request(t, http.MethodGet, "/products/list", "not-a-real-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestStaffCannotReachAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	staffToken := env.login(t, "kasir")

	for _, probe := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/purchases/list"},
		{http.MethodGet, "/expenses/list"},
		{http.MethodGet, "/staff/list"},
		{http.MethodGet, "/admin/list"},
	} {
		resp, _ := env.request(t, probe.method, probe.path, staffToken, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403 for staff, got %d", probe.method, probe.path, resp.StatusCode)
		}
	}
}

func TestAdminCannotManageAdmins(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")
	ownerToken := env.login(t, "owner")

	resp, _ := env.request(t, http.MethodGet, "/admin/list", adminToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on /admin/list, got %d", resp.StatusCode)
	}

	resp, body := env.request(t, http.MethodGet, "/admin/list", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner /admin/list: status %d body %s", resp.StatusCode, body)
	}
	listed := decodeInto[map[string][]domain.User](t, body)
	if len(listed["users"]) != 1 {
		t.Fatalf("expected the seeded admin, got %+v", listed)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")

	big := make([]byte, (1<<20)+512)
	for i := range big {
		big[i] = 'a'
	}
	resp, _ := env.request(t, http.MethodPost, "/categories/add", adminToken, map[string]string{
		"name": string(big),
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", resp.StatusCode)
	}
}
