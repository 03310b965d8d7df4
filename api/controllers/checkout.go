package controllers

import (
	"net/http"

	"github.com/mateovidal/spinmart-backend/api/middleware"
	"github.com/mateovidal/spinmart-backend/api/responses"
	"github.com/mateovidal/spinmart-backend/api/validators"
	checkoutsvc "github.com/mateovidal/spinmart-backend/internal/checkout"
	pkgerrors "github.com/mateovidal/spinmart-backend/pkg/errors"
	"github.com/mateovidal/spinmart-backend/pkg/logger"
)

// CheckoutRequest carries the delivery destination. Loyalty points are
// never accepted from the body; they come from the verified token.
type CheckoutRequest struct {
	CityID string `json:"city_id" validate:"required"`
}

// CheckoutQuote prices the session's cart without placing an order.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), checkoutsvc.QuoteInput{
			SessionID:          sessionID,
			CityID:             payload.CityID,
			LoyaltyPointsCents: loyaltyFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutPlaceOrder commits the cart to an order snapshot.
func CheckoutPlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload CheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.PlaceOrderInput{
			SessionID:          sessionID,
			CityID:             payload.CityID,
			LoyaltyPointsCents: loyaltyFromRequest(r),
		}
		if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
			userID := claims.UserID
			input.UserID = &userID
		}

		record, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// CheckoutOrderHistory lists the session's placed orders.
func CheckoutOrderHistory(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.OrderHistory(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if records == nil {
			records = []checkoutsvc.OrderRecord{}
		}
		responses.WriteSuccess(w, records)
	}
}

// loyaltyFromRequest reads the loyalty balance off the verified claims.
// Guests price without a loyalty discount.
func loyaltyFromRequest(r *http.Request) int64 {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return 0
	}
	return claims.LoyaltyPointsCents
}
