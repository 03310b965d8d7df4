package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mateovidal/spinmart-backend/pkg/config"
)

func TestMintAndParseSessionToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "spinmart",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()

	payload := SessionTokenPayload{
		UserID:             userID,
		LoyaltyPointsCents: 2500,
	}

	token, err := MintSessionToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("parse session token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.LoyaltyPointsCents != 2500 {
		t.Fatalf("loyalty points not preserved, got %d", claims.LoyaltyPointsCents)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestMintSessionTokenRejectsInvalidPayload(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "spinmart", ExpirationMinutes: 30}
	now := time.Now().UTC()

	if _, err := MintSessionToken(cfg, now, SessionTokenPayload{}); err == nil {
		t.Fatal("expected error for missing user id")
	}

	payload := SessionTokenPayload{UserID: uuid.New(), LoyaltyPointsCents: -1}
	if _, err := MintSessionToken(cfg, now, payload); err == nil {
		t.Fatal("expected error for negative loyalty points")
	}
}

func TestParseSessionTokenRejectsTampering(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "spinmart", ExpirationMinutes: 30}
	now := time.Now().UTC()

	token, err := MintSessionToken(cfg, now, SessionTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	forged := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := ParseSessionToken(cfg, forged); err == nil {
		t.Fatal("expected signature validation to fail")
	}

	other := config.JWTConfig{Secret: "different", Issuer: "spinmart", ExpirationMinutes: 30}
	if _, err := ParseSessionToken(other, token); err == nil {
		t.Fatal("expected wrong-secret validation to fail")
	}
}
