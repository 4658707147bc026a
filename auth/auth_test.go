package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testSecret = bytes.Repeat([]byte("s"), 32)

func TestTokenRoundtrip(t *testing.T) {
	tok, err := GenerateToken(testSecret, "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(testSecret, tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Role != "admin" {
		t.Errorf("Role: got %q, want %q", claims.Role, "admin")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := GenerateToken(testSecret, "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := bytes.Repeat([]byte("x"), 32)
	if _, err := ValidateToken(other, tok); err == nil {
		t.Error("expected validation failure with wrong secret")
	}
}

func TestSecretTooShort(t *testing.T) {
	if _, err := GenerateToken([]byte("short"), "admin", time.Hour); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter2hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(testSecret)(RequireAdmin(ok))

	// No token.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cache", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rec.Code)
	}

	// Garbage token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cache", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d, want 401", rec.Code)
	}

	// Valid admin token.
	tok, err := GenerateToken(testSecret, "admin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/cache", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin token: got %d, want 200", rec.Code)
	}

	// Valid token, wrong role.
	tok, err = GenerateToken(testSecret, "viewer", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/cache", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("viewer token: got %d, want 401", rec.Code)
	}
}
