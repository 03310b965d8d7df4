package cart

import (
	"context"
	"fmt"

	"github.com/mateovidal/spinmart-backend/pkg/config"
	pkgerrors "github.com/mateovidal/spinmart-backend/pkg/errors"
	"github.com/mateovidal/spinmart-backend/pkg/vault"
	"github.com/shopspring/decimal"
)

// Service exposes the cart ledger. Mutations touch only the session's own
// persisted cart; no external service is called.
type Service interface {
	GetCart(ctx context.Context, sessionID string) (Cart, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (Cart, error)
	IncreaseQty(ctx context.Context, sessionID string, productID int64) (Cart, error)
	DecreaseQty(ctx context.Context, sessionID string, productID int64) (Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// AddItemInput captures a catalog item entering the cart. UnitPrice is
// derived, not accepted, so the price invariant cannot be violated by input.
type AddItemInput struct {
	ProductID              int64
	Name                   string
	Quantity               int
	OriginalUnitPrice      decimal.Decimal
	FlatDiscountPerUnit    decimal.Decimal
	LoyaltyDiscountPerUnit decimal.Decimal
	CategoryName           string
	PhotoURL               string
}

type service struct {
	vault *vault.Vault
	cfg   config.CartConfig
}

// NewService builds a cart service persisting through the provided vault.
func NewService(v *vault.Vault, cfg config.CartConfig) (Service, error) {
	if v == nil {
		return nil, fmt.Errorf("vault required")
	}
	return &service{vault: v, cfg: cfg}, nil
}

func cartKey(sessionID string) string { return "cart:items:" + sessionID }

func (s *service) GetCart(ctx context.Context, sessionID string) (Cart, error) {
	if sessionID == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.readCart(ctx, sessionID), nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (Cart, error) {
	if sessionID == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.Quantity < 1 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.OriginalUnitPrice.IsNegative() {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.FlatDiscountPerUnit.IsNegative() || input.LoyaltyDiscountPerUnit.IsNegative() {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "discounts cannot be negative")
	}
	if input.FlatDiscountPerUnit.GreaterThan(input.OriginalUnitPrice) {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "flat discount exceeds unit price")
	}

	current := s.readCart(ctx, sessionID)

	if i := current.indexOf(input.ProductID); i >= 0 {
		current.Items[i].Quantity += input.Quantity
	} else {
		current.Items = append(current.Items, Item{
			ProductID:              input.ProductID,
			Name:                   input.Name,
			Quantity:               input.Quantity,
			UnitPrice:              input.OriginalUnitPrice.Sub(input.FlatDiscountPerUnit),
			OriginalUnitPrice:      input.OriginalUnitPrice,
			FlatDiscountPerUnit:    input.FlatDiscountPerUnit,
			LoyaltyDiscountPerUnit: input.LoyaltyDiscountPerUnit,
			CategoryName:           input.CategoryName,
			PhotoURL:               input.PhotoURL,
		})
	}

	return s.writeCart(ctx, sessionID, current)
}

func (s *service) IncreaseQty(ctx context.Context, sessionID string, productID int64) (Cart, error) {
	if sessionID == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	current := s.readCart(ctx, sessionID)
	i := current.indexOf(productID)
	if i < 0 {
		return current, nil
	}
	current.Items[i].Quantity++
	return s.writeCart(ctx, sessionID, current)
}

// DecreaseQty lowers a line by one but never below one; dropping a line is
// RemoveItem's job. Unknown ids are a no-op.
func (s *service) DecreaseQty(ctx context.Context, sessionID string, productID int64) (Cart, error) {
	if sessionID == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	current := s.readCart(ctx, sessionID)
	i := current.indexOf(productID)
	if i < 0 || current.Items[i].Quantity <= 1 {
		return current, nil
	}
	current.Items[i].Quantity--
	return s.writeCart(ctx, sessionID, current)
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int64) (Cart, error) {
	if sessionID == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	current := s.readCart(ctx, sessionID)
	i := current.indexOf(productID)
	if i < 0 {
		return current, nil
	}
	current.Items = append(current.Items[:i], current.Items[i+1:]...)
	return s.writeCart(ctx, sessionID, current)
}

func (s *service) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.vault.Clear(ctx, cartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) readCart(ctx context.Context, sessionID string) Cart {
	var stored Cart
	if !s.vault.Read(ctx, cartKey(sessionID), &stored) {
		return Cart{}
	}
	// Drop lines that no longer satisfy the ledger invariants rather than
	// letting a tampered blob poison totals.
	clean := stored.Items[:0]
	for _, item := range stored.Items {
		if item.Quantity < 1 {
			continue
		}
		if item.UnitPrice.IsNegative() || item.OriginalUnitPrice.IsNegative() {
			continue
		}
		if !item.OriginalUnitPrice.Sub(item.FlatDiscountPerUnit).Equal(item.UnitPrice) {
			continue
		}
		clean = append(clean, item)
	}
	stored.Items = clean
	return stored
}

func (s *service) writeCart(ctx context.Context, sessionID string, cart Cart) (Cart, error) {
	if err := s.vault.Write(ctx, cartKey(sessionID), cart, s.cfg.StateTTL); err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return cart, nil
}
