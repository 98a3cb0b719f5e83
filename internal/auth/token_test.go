package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifier_roundtrip(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Sign("user-42", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	id, err := v.UserID(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id != "user-42" {
		t.Errorf("expected user-42, got %q", id)
	}
}

func TestVerifier_wrong_secret(t *testing.T) {
	token, err := NewVerifier("secret-a").Sign("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewVerifier("secret-b").UserID(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifier_expired_token(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Sign("user-1", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := v.UserID(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifier_garbage_token(t *testing.T) {
	v := NewVerifier("secret")
	if _, err := v.UserID("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifier_legacy_id_claim(t *testing.T) {
	secret := []byte("secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "legacy-user",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	id, err := NewVerifier("secret").UserID(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id != "legacy-user" {
		t.Errorf("expected legacy-user, got %q", id)
	}
}

func TestVerifier_missing_id_claim(t *testing.T) {
	secret := []byte("secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@b.c",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewVerifier("secret").UserID(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifier_rejects_unexpected_signing_method(t *testing.T) {
	// alg=none tokens must never validate.
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"_id": "user-1",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewVerifier("secret").UserID(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
