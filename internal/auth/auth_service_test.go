package auth

import (
	"strings"
	"testing"
	"time"
)

func TestNewAuthService_RequiresSecret(t *testing.T) {
	if _, err := NewAuthService("", 100*time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewAuthService("secret", 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	svc, err := NewAuthService("test-secret", 100*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	token, err := svc.GenerateToken(42)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", claims.UserID)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer, _ := NewAuthService("secret-a", time.Hour)
	verifier, _ := NewAuthService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(1)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc, _ := NewAuthService("test-secret", time.Nanosecond)

	token, err := svc.GenerateToken(1)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestValidateToken_Malformed(t *testing.T) {
	svc, _ := NewAuthService("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.ValidateToken(token); err == nil {
			t.Fatalf("expected validation failure for %q", token)
		}
	}
}

func TestHashPassword_CheckRoundTrip(t *testing.T) {
	svc, _ := NewAuthService("test-secret", time.Hour)

	hash, err := svc.HashPassword("pw1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "pw1" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}

	if !svc.CheckPasswordHash("pw1", hash) {
		t.Fatal("expected matching password to verify")
	}
	if svc.CheckPasswordHash("pw2", hash) {
		t.Fatal("expected mismatching password to fail")
	}
}
