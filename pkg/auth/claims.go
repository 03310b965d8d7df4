package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTokenPayload captures the data available when minting a JWT.
type SessionTokenPayload struct {
	UserID             uuid.UUID
	LoyaltyPointsCents int64
}

// SessionTokenClaims represents the typed JWT issued to authenticated shoppers.
// Loyalty points ride along so the promo engine can price without a second
// lookup; the checkout backend remains the authority on the final balance.
type SessionTokenClaims struct {
	UserID             uuid.UUID `json:"user_id"`
	LoyaltyPointsCents int64     `json:"loyalty_points_cents"`
	jwt.RegisteredClaims
}
