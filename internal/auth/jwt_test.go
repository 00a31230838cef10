package auth

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAndVerifySessionToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateSessionToken("user-1", "worker")

	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	claims, err := m.VerifySessionToken(token)

	if err != nil {
		t.Fatalf("VerifySessionToken error: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Fatalf("got sub %q, want user-1", claims.UserID)
	}
	if claims.Role != "worker" {
		t.Fatalf("got role %q, want worker", claims.Role)
	}
	if claims.JTI == "" {
		t.Fatal("expected a jti")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.GenerateSessionToken("user-1", "worker")

	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	_, err = m.VerifySessionToken(token)

	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).GenerateSessionToken("user-1", "worker")

	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	_, err = NewManager("secret-b", time.Hour).VerifySessionToken(token)

	if err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateSessionToken("user-1", "worker")

	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}

	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = m.VerifySessionToken(tampered)

	if err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}
