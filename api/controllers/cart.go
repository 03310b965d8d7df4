package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mateovidal/spinmart-backend/api/responses"
	"github.com/mateovidal/spinmart-backend/api/validators"
	cartsvc "github.com/mateovidal/spinmart-backend/internal/cart"
	pkgerrors "github.com/mateovidal/spinmart-backend/pkg/errors"
	"github.com/mateovidal/spinmart-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// AddCartItemRequest is the payload for adding or topping up a line. The
// selling price is derived server side from the original price and the flat
// discount; clients never send it.
type AddCartItemRequest struct {
	ProductID              int64           `json:"product_id" validate:"required"`
	Name                   string          `json:"name" validate:"required"`
	Quantity               int             `json:"quantity" validate:"required,min=1"`
	OriginalUnitPrice      decimal.Decimal `json:"original_unit_price" validate:"required"`
	FlatDiscountPerUnit    decimal.Decimal `json:"flat_discount_per_unit"`
	LoyaltyDiscountPerUnit decimal.Decimal `json:"loyalty_discount_per_unit"`
	CategoryName           string          `json:"category_name"`
	PhotoURL               string          `json:"photo_url"`
}

type cartView struct {
	Items  []cartsvc.Item `json:"items"`
	Totals cartsvc.Totals `json:"totals"`
}

func newCartView(c cartsvc.Cart) cartView {
	items := c.Items
	if items == nil {
		items = []cartsvc.Item{}
	}
	return cartView{Items: items, Totals: c.Totals()}
}

// CartFetch returns the session's cart with derived totals.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.GetCart(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(current))
	}
}

// CartAddItem merges the payload into the session's cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AddItem(r.Context(), sessionID, cartsvc.AddItemInput{
			ProductID:              payload.ProductID,
			Name:                   payload.Name,
			Quantity:               payload.Quantity,
			OriginalUnitPrice:      payload.OriginalUnitPrice,
			FlatDiscountPerUnit:    payload.FlatDiscountPerUnit,
			LoyaltyDiscountPerUnit: payload.LoyaltyDiscountPerUnit,
			CategoryName:           payload.CategoryName,
			PhotoURL:               payload.PhotoURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(updated))
	}
}

// CartIncreaseQty bumps a line by one.
func CartIncreaseQty(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(s cartsvc.Service) lineOp { return s.IncreaseQty })
}

// CartDecreaseQty lowers a line by one, never below one.
func CartDecreaseQty(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(s cartsvc.Service) lineOp { return s.DecreaseQty })
}

// CartRemoveItem drops the line entirely.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(s cartsvc.Service) lineOp { return s.RemoveItem })
}

// CartClear empties the ledger.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ClearCart(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(cartsvc.Cart{}))
	}
}

type lineOp func(ctx context.Context, sessionID string, productID int64) (cartsvc.Cart, error)

func cartLineHandler(svc cartsvc.Service, logg *logger.Logger, pick func(cartsvc.Service) lineOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := productIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := pick(svc)(r.Context(), sessionID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(updated))
	}
}

func productIDFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return productID, nil
}
