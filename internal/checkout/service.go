package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mateovidal/spinmart-backend/internal/cart"
	"github.com/mateovidal/spinmart-backend/internal/pricing"
	pkgerrors "github.com/mateovidal/spinmart-backend/pkg/errors"
	"github.com/mateovidal/spinmart-backend/pkg/logger"
	"github.com/mateovidal/spinmart-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type cartLedger interface {
	GetCart(ctx context.Context, sessionID string) (cart.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

type discountLedger interface {
	RedeemableDiscount(ctx context.Context, sessionID string) int64
	ClearRedeemed(ctx context.Context, sessionID string) error
}

// Service builds checkout quotes and places orders.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (pricing.Quote, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderRecord, error)
	OrderHistory(ctx context.Context, sessionID string) ([]OrderRecord, error)
}

// QuoteInput identifies the session plus the pricing inputs that do not
// live in the cart itself. LoyaltyPointsCents comes from the verified
// session token and is zero for guests.
type QuoteInput struct {
	SessionID          string
	CityID             string
	LoyaltyPointsCents int64
}

// PlaceOrderInput extends QuoteInput with the optional authenticated buyer.
type PlaceOrderInput struct {
	SessionID          string
	CityID             string
	UserID             *uuid.UUID
	LoyaltyPointsCents int64
}

type service struct {
	carts   cartLedger
	spins   discountLedger
	repo    Repository
	rates   RateLookup
	logg    *logger.Logger
	metrics *metrics.PromoMetrics
}

// NewService builds the checkout service.
func NewService(
	carts cartLedger,
	spins discountLedger,
	repo Repository,
	rates RateLookup,
	logg *logger.Logger,
	promo *metrics.PromoMetrics,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if spins == nil {
		return nil, fmt.Errorf("spin service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if rates == nil {
		return nil, fmt.Errorf("rate lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:   carts,
		spins:   spins,
		repo:    repo,
		rates:   rates,
		logg:    logg,
		metrics: promo,
	}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (pricing.Quote, error) {
	if input.SessionID == "" {
		return pricing.Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	current, err := s.carts.GetCart(ctx, input.SessionID)
	if err != nil {
		return pricing.Quote{}, err
	}

	spinDiscount := decimal.NewFromInt(s.spins.RedeemableDiscount(ctx, input.SessionID))
	loyalty := decimal.New(input.LoyaltyPointsCents, -2)
	shipping := s.rates.ChargeFor(input.CityID)

	return pricing.Compute(current.Totals(), shipping, spinDiscount, loyalty), nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderRecord, error) {
	if input.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.CityID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery city is required")
	}

	current, err := s.carts.GetCart(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	quote, err := s.Quote(ctx, QuoteInput{
		SessionID:          input.SessionID,
		CityID:             input.CityID,
		LoyaltyPointsCents: input.LoyaltyPointsCents,
	})
	if err != nil {
		return nil, err
	}

	record := &OrderRecord{
		ID:                uuid.New(),
		SessionID:         input.SessionID,
		UserID:            input.UserID,
		CityID:            input.CityID,
		SubtotalCents:     toCents(quote.Subtotal),
		FlatDiscountCents: toCents(quote.FlatDiscountTotal),
		LoyaltyCents:      toCents(quote.LoyaltyDiscount),
		SpinDiscountCents: toCents(quote.SpinDiscount),
		ShippingCents:     toCents(quote.ShippingCharge),
		GrandTotalCents:   toCents(quote.GrandTotal),
		Items:             current.Items,
	}

	if _, err := s.repo.CreateOrderRecord(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order record")
	}

	ctx = s.logg.WithField(ctx, "order_id", record.ID.String())

	// The order is committed at this point. Emptying the cart and retiring
	// the spent discount are cleanup; a failure there must not unwind the
	// order, but both get attempted and both get reported.
	cleanup := multierr.Combine(
		s.carts.ClearCart(ctx, input.SessionID),
		s.spins.ClearRedeemed(ctx, input.SessionID),
	)
	if cleanup != nil {
		s.logg.Error(ctx, "post-order cleanup incomplete", cleanup)
	}

	s.metrics.IncOrderPlaced()
	ctx = s.logg.WithField(ctx, "grand_total_cents", record.GrandTotalCents)
	s.logg.Info(ctx, "order placed")

	return record, nil
}

func (s *service) OrderHistory(ctx context.Context, sessionID string) ([]OrderRecord, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	records, err := s.repo.FindOrderRecordsBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}
	return records, nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
