package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/spinmart-backend/api/responses"
	"github.com/mateovidal/spinmart-backend/api/validators"
	"github.com/mateovidal/spinmart-backend/pkg/auth"
	"github.com/mateovidal/spinmart-backend/pkg/config"
	pkgerrors "github.com/mateovidal/spinmart-backend/pkg/errors"
	"github.com/mateovidal/spinmart-backend/pkg/logger"
)

// MintTokenRequest describes the shopper a dev token should represent.
type MintTokenRequest struct {
	UserID             string `json:"user_id" validate:"required,uuid"`
	LoyaltyPointsCents int64  `json:"loyalty_points_cents" validate:"gte=0"`
}

// DevMintToken issues a session token for local testing. The router only
// wires it outside prod; the real storefront gets tokens from the identity
// provider.
func DevMintToken(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload MintTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		token, err := auth.MintSessionToken(cfg.JWT, time.Now(), auth.SessionTokenPayload{
			UserID:             userID,
			LoyaltyPointsCents: payload.LoyaltyPointsCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"token": token})
	}
}
