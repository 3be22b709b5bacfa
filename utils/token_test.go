package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(secret, "alice@example.com", "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "alice@example.com" {
		t.Errorf("Expected subject alice@example.com, got %s", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Errorf("Expected role admin, got %s", claims.Role)
	}
	if d := time.Until(claims.ExpiresAt.Time); d <= 0 || d > time.Hour {
		t.Errorf("Unexpected expiry distance %v", d)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, _ := GenerateToken(secret, "alice@example.com", "user", -time.Minute)

	if _, err := ParseToken(secret, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _ := GenerateToken("other", "alice@example.com", "user", time.Hour)

	if _, err := ParseToken(secret, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseToken(secret, unsigned); err == nil {
		t.Errorf("Expected unsigned token to be rejected")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken(secret, "not-a-token"); err == nil {
		t.Errorf("Expected error")
	}
}
