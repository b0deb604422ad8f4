package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	token, exp, err := tm.GenerateToken("user-1", domain.RoleAreaManager)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) <= 29*time.Minute {
		t.Fatalf("unexpected expiry %s", exp)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID() != "user-1" || claims.Role != domain.RoleAreaManager {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	issuer := NewTokenManager("secret", 1)
	token, _, _ := issuer.GenerateToken("user-1", domain.RoleRecruiter)

	if _, err := NewTokenManager("other", 1).ParseToken(token); err == nil {
		t.Fatal("expected signature error")
	}

	later := NewTokenManager("secret", 1)
	later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := later.ParseToken(token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestHashPassword(t *testing.T) {
	if _, err := HashPassword("short", 4); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ComparePassword(hash, "correct horse") != nil {
		t.Fatal("password should match")
	}
	if ComparePassword(hash, "wrong horse") == nil {
		t.Fatal("password should not match")
	}
}
