package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	cartsvc "github.com/mateovidal/spinmart-backend/internal/cart"
	"github.com/shopspring/decimal"
)

type stubCartService struct {
	cart      cartsvc.Cart
	err       error
	lastInput cartsvc.AddItemInput
	lastID    int64
}

func (s *stubCartService) GetCart(ctx context.Context, sessionID string) (cartsvc.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, sessionID string, input cartsvc.AddItemInput) (cartsvc.Cart, error) {
	s.lastInput = input
	return s.cart, s.err
}

func (s *stubCartService) IncreaseQty(ctx context.Context, sessionID string, productID int64) (cartsvc.Cart, error) {
	s.lastID = productID
	return s.cart, s.err
}

func (s *stubCartService) DecreaseQty(ctx context.Context, sessionID string, productID int64) (cartsvc.Cart, error) {
	s.lastID = productID
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (cartsvc.Cart, error) {
	s.lastID = productID
	return s.cart, s.err
}

func (s *stubCartService) ClearCart(ctx context.Context, sessionID string) error {
	return s.err
}

func oneLineCart() cartsvc.Cart {
	return cartsvc.Cart{Items: []cartsvc.Item{{
		ProductID:         5,
		Name:              "Trail Shoe",
		Quantity:          2,
		UnitPrice:         decimal.NewFromInt(450),
		OriginalUnitPrice: decimal.NewFromInt(500),
	}}}
}

func TestCartFetchSuccess(t *testing.T) {
	handler := CartFetch(&stubCartService{cart: oneLineCart()}, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(envelope.Data.Items))
	}
	if envelope.Data.Totals.ItemCount != 2 {
		t.Fatalf("unexpected item count %d", envelope.Data.Totals.ItemCount)
	}
}

func TestCartFetchMissingSession(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemPassesDerivedInput(t *testing.T) {
	service := &stubCartService{cart: oneLineCart()}
	handler := CartAddItem(service, nil)

	body := `{"product_id":5,"name":"Trail Shoe","quantity":2,"original_unit_price":"500","flat_discount_per_unit":"50"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if service.lastInput.ProductID != 5 || service.lastInput.Quantity != 2 {
		t.Fatalf("unexpected input %+v", service.lastInput)
	}
	if !service.lastInput.OriginalUnitPrice.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected price %s", service.lastInput.OriginalUnitPrice)
	}
}

func TestCartAddItemRejectsUnknownFields(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	// Clients must not set the selling price directly.
	body := `{"product_id":5,"name":"Trail Shoe","quantity":2,"original_unit_price":"500","unit_price":"1"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemValidatesQuantity(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	body := `{"product_id":5,"name":"Trail Shoe","quantity":0,"original_unit_price":"500"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartLineHandlerParsesProductID(t *testing.T) {
	service := &stubCartService{cart: oneLineCart()}
	handler := CartRemoveItem(service, nil)

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/5", nil))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", "5")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if service.lastID != 5 {
		t.Fatalf("expected product id 5, got %d", service.lastID)
	}
}

func TestCartLineHandlerRejectsBadProductID(t *testing.T) {
	handler := CartIncreaseQty(&stubCartService{}, nil)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items/abc/increase", nil))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", "abc")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
