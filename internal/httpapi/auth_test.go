package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gudangpos/backend/internal/domain"
)

func TestLoginIssuesParsableToken(t *testing.T) {
	env := newTestEnv(t)

	token := env.login(t, "kasir")

	auth := NewAuthManager("test-secret-which-is-long-enough!", time.Hour, nil)
	actor, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "kasir" || actor.Role != domain.RoleStaff {
		t.Fatalf("unexpected actor %+v", actor)
	}
	if actor.ID == "" {
		t.Fatal("expected subject claim carrying the user id")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodPost, "/auth/login", "", domain.LoginRequest{
		Username: "kasir",
		Password: "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body %s", resp.StatusCode, body)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodPost, "/auth/login", "", domain.LoginRequest{
		Username: "nobody",
		Password: "rahasia123",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body %s", resp.StatusCode, body)
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin")

	resp, body := env.request(t, http.MethodGet, "/staff/list", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("staff list: status %d body %s", resp.StatusCode, body)
	}
	listed := decodeInto[map[string][]domain.User](t, body)
	if len(listed["users"]) != 1 {
		t.Fatalf("expected 1 staff, got %+v", listed)
	}
	inactive := false
	if _, err := env.svc.UpdateUser(context.Background(), listed["users"][0].ID, domain.RoleStaff, domain.UserUpdateRequest{
		Active: &inactive,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	resp, body = env.request(t, http.MethodPost, "/auth/login", "", domain.LoginRequest{
		Username: "kasir",
		Password: "rahasia123",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive account, got %d body %s", resp.StatusCode, body)
	}
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t)

	var last int
	for i := 0; i < 6; i++ {
		resp, _ := env.request(t, http.MethodPost, "/auth/login", "", domain.LoginRequest{
			Username: "kasir",
			Password: "wrong-password",
		})
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated attempts, got %d", last)
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewAuthManager("one-secret-that-is-long-enough!!!", time.Hour, nil)
	verifier := NewAuthManager("another-secret-that-is-long-too!!", time.Hour, nil)

	token, err := issuer.sign(&domain.User{ID: "u1", Username: "kasir", Role: domain.RoleStaff}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("expected token signed with a different secret to be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	auth := NewAuthManager("test-secret-which-is-long-enough!", time.Hour, nil)

	token, err := auth.sign(&domain.User{ID: "u1", Username: "kasir", Role: domain.RoleStaff}, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
