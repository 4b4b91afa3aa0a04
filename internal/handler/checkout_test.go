package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminabrand/storefront/internal/auth"
	"github.com/luminabrand/storefront/internal/checkout"
	"github.com/luminabrand/storefront/internal/order"
	"github.com/luminabrand/storefront/internal/pricing"
	"github.com/luminabrand/storefront/internal/promotion"
)

type mockQuoter struct {
	QuoteFunc func(ctx context.Context, lines []pricing.CartLine) (pricing.Quote, error)
}

func (m *mockQuoter) Quote(ctx context.Context, lines []pricing.CartLine) (pricing.Quote, error) {
	return m.QuoteFunc(ctx, lines)
}

type mockValidator struct {
	FindFunc     func(ctx context.Context, code string) (*promotion.Promotion, error)
	ValidateFunc func(ctx context.Context, code string, subtotal int64, currency string) (*promotion.Result, error)
}

func (m *mockValidator) Find(ctx context.Context, code string) (*promotion.Promotion, error) {
	return m.FindFunc(ctx, code)
}

func (m *mockValidator) Validate(ctx context.Context, code string, subtotal int64, currency string) (*promotion.Result, error) {
	return m.ValidateFunc(ctx, code, subtotal, currency)
}

type mockOrderService struct {
	CreateFunc func(ctx context.Context, o *order.Order) (*order.Order, error)
}

func (m *mockOrderService) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	return m.CreateFunc(ctx, o)
}

func (m *mockOrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (m *mockOrderService) List(ctx context.Context) ([]order.Order, error) { return nil, nil }
func (m *mockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return nil, nil
}
func (m *mockOrderService) UpdateStatus(ctx context.Context, id int64, newStatus order.Status) error {
	return nil
}

func minPtr(v int64) *int64 { return &v }

// checkoutService wires a checkout service against an in-memory catalog of
// one 140-unit product and the three seed promotions.
func checkoutService(captured *order.Order) *checkout.Service {
	quoter := &mockQuoter{
		QuoteFunc: func(ctx context.Context, lines []pricing.CartLine) (pricing.Quote, error) {
			quote := pricing.Quote{Currency: "USD", Lines: make([]pricing.LineItem, 0, len(lines))}
			for _, line := range lines {
				if line.ProductID != 1 {
					continue
				}
				quote.Subtotal += 140 * int64(line.Quantity)
				quote.Lines = append(quote.Lines, pricing.LineItem{
					ProductID: line.ProductID,
					VariantID: line.VariantID,
					Quantity:  line.Quantity,
					UnitPrice: 140,
				})
			}
			return quote, nil
		},
	}

	byCode := map[string]*promotion.Promotion{
		"WELCOME10":   {ID: 1, Code: "WELCOME10", Type: promotion.TypePercent, Value: 10, MinOrderAmount: minPtr(0), IsActive: true},
		"SPEND300_20": {ID: 2, Code: "SPEND300_20", Type: promotion.TypePercent, Value: 20, MinOrderAmount: minPtr(300), IsActive: true},
		"TAKE50":      {ID: 3, Code: "TAKE50", Type: promotion.TypeFixed, Value: 50, MinOrderAmount: minPtr(350), IsActive: true},
	}
	validatorMock := &mockValidator{}
	validatorMock.FindFunc = func(ctx context.Context, code string) (*promotion.Promotion, error) {
		promo, ok := byCode[promotion.NormalizeCode(code)]
		if !ok {
			return nil, promotion.ErrRejected
		}
		return promo, nil
	}
	validatorMock.ValidateFunc = func(ctx context.Context, code string, subtotal int64, currency string) (*promotion.Result, error) {
		promo, err := validatorMock.FindFunc(ctx, code)
		if err != nil {
			return nil, err
		}
		return promotion.Apply(promo, subtotal, currency)
	}

	orders := &mockOrderService{
		CreateFunc: func(ctx context.Context, o *order.Order) (*order.Order, error) {
			if captured != nil {
				*captured = *o
			}
			o.ID = 42
			o.Status = order.StatusPlaced
			return o, nil
		},
	}

	return checkout.NewService(quoter, validatorMock, orders)
}

func TestCheckoutHandler_Checkout(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success_no_promo",
			body:           `{"items":[{"productId":1,"quantity":2}]}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"orderId":42,"status":"PLACED","subtotal":280,"discountAmount":0,"total":280,"currency":"USD"}`,
		},
		{
			name:           "success_with_percent_promo",
			body:           `{"items":[{"productId":1,"quantity":2}],"promoCode":"WELCOME10"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"orderId":42,"status":"PLACED","subtotal":280,"discountAmount":28,"total":252,"currency":"USD"}`,
		},
		{
			name:           "promo_code_lowercased_input",
			body:           `{"items":[{"productId":1,"quantity":2}],"promoCode":"welcome10"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"orderId":42,"status":"PLACED","subtotal":280,"discountAmount":28,"total":252,"currency":"USD"}`,
		},
		{
			name:           "empty_items",
			body:           `{"items":[]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Cart is empty or invalid payload."}`,
		},
		{
			name:           "invalid_json",
			body:           `{not json}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Cart is empty or invalid payload."}`,
		},
		{
			name:           "unresolvable_cart",
			body:           `{"items":[{"productId":999,"quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Subtotal must be greater than zero."}`,
		},
		{
			name:           "unknown_promo",
			body:           `{"items":[{"productId":1,"quantity":2}],"promoCode":"BOGUS"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid or expired promo code."}`,
		},
		{
			name:           "promo_below_minimum",
			body:           `{"items":[{"productId":1,"quantity":2}],"promoCode":"TAKE50"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"This code requires a minimum order of USD 350."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCheckoutHandler(checkoutService(nil))
			r := chi.NewRouter()
			r.Post("/api/checkout", handler.Checkout)

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestCheckoutHandler_Checkout_SessionIdentityWinsOverBody(t *testing.T) {
	var persisted order.Order
	handler := NewCheckoutHandler(checkoutService(&persisted))

	sessionUser, err := uuid.NewV4()
	require.NoError(t, err)

	body := `{"items":[{"productId":1,"quantity":1}],"userId":"123e4567-e89b-12d3-a456-426614174000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UserID: sessionUser, Role: auth.RoleCustomer}))
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, persisted.UserID)
	assert.Equal(t, sessionUser, *persisted.UserID)
}

func TestCheckoutHandler_ValidatePromotion(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid_code",
			body:           `{"code":"SPEND300_20","items":[{"productId":1,"quantity":3}]}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"promotion":{"id":2,"code":"SPEND300_20","type":"PERCENT","value":20,"minOrderAmount":300},"currency":"USD","subtotal":420,"discountAmount":84,"totalAfterDiscount":336}`,
		},
		{
			name:           "missing_code",
			body:           `{"items":[{"productId":1,"quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Promo code is required."}`,
		},
		{
			name:           "no_items",
			body:           `{"code":"WELCOME10"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"No items provided to validate promotion."}`,
		},
		{
			name:           "unknown_code_with_unpriceable_cart",
			body:           `{"code":"BOGUS","items":[{"productId":999,"quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid or expired promo code."}`,
		},
		{
			name:           "valid_code_unpriceable_cart",
			body:           `{"code":"WELCOME10","items":[{"productId":999,"quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Cart subtotal must be greater than zero."}`,
		},
		{
			name:           "below_minimum",
			body:           `{"code":"TAKE50","items":[{"productId":1,"quantity":2}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"This code requires a minimum order of USD 350."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCheckoutHandler(checkoutService(nil))
			r := chi.NewRouter()
			r.Post("/api/promotions/validate", handler.ValidatePromotion)

			req := httptest.NewRequest(http.MethodPost, "/api/promotions/validate", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestCheckoutHandler_CheckoutAndPreviewAgree(t *testing.T) {
	handler := NewCheckoutHandler(checkoutService(nil))

	preview := httptest.NewRecorder()
	handler.ValidatePromotion(preview, httptest.NewRequest(http.MethodPost, "/api/promotions/validate",
		bytes.NewBufferString(`{"code":"WELCOME10","items":[{"productId":1,"quantity":2}]}`)))
	require.Equal(t, http.StatusOK, preview.Code)

	placed := httptest.NewRecorder()
	handler.Checkout(placed, httptest.NewRequest(http.MethodPost, "/api/checkout",
		bytes.NewBufferString(`{"items":[{"productId":1,"quantity":2}],"promoCode":"WELCOME10"}`)))
	require.Equal(t, http.StatusOK, placed.Code)

	var previewBody struct {
		DiscountAmount     int64 `json:"discountAmount"`
		TotalAfterDiscount int64 `json:"totalAfterDiscount"`
	}
	var checkoutBody struct {
		DiscountAmount int64 `json:"discountAmount"`
		Total          int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(preview.Body.Bytes(), &previewBody))
	require.NoError(t, json.Unmarshal(placed.Body.Bytes(), &checkoutBody))

	assert.Equal(t, previewBody.DiscountAmount, checkoutBody.DiscountAmount)
	assert.Equal(t, previewBody.TotalAfterDiscount, checkoutBody.Total)
}
