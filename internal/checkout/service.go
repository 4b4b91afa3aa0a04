// Package checkout orchestrates the checkout sequence: price the cart,
// validate the optional promotion code, persist the order. The same pricing
// and discount arithmetic backs the read-only promotion preview, so both
// endpoints always agree numerically.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/order"
	"github.com/luminabrand/storefront/internal/pricing"
	"github.com/luminabrand/storefront/internal/promotion"
)

var (
	ErrEmptyCart    = errors.New("cart is empty or invalid payload")
	ErrZeroSubtotal = errors.New("subtotal must be greater than zero")
)

// Quoter prices a cart; implemented by pricing.Engine.
type Quoter interface {
	Quote(ctx context.Context, lines []pricing.CartLine) (pricing.Quote, error)
}

// PromotionValidator resolves and applies promo codes; implemented by
// promotion.Evaluator.
type PromotionValidator interface {
	Find(ctx context.Context, code string) (*promotion.Promotion, error)
	Validate(ctx context.Context, code string, subtotal int64, currency string) (*promotion.Result, error)
}

type Input struct {
	Lines     []pricing.CartLine
	PromoCode string
	UserID    *uuid.UUID
}

type Result struct {
	OrderID        int64
	Status         order.Status
	Subtotal       int64
	DiscountAmount int64
	Total          int64
	Currency       string
}

// Preview is the outcome of validating a promo code against a cart without
// creating an order.
type Preview struct {
	Promotion          promotion.Promotion
	Currency           string
	Subtotal           int64
	DiscountAmount     int64
	TotalAfterDiscount int64
}

type Service struct {
	quoter     Quoter
	promotions PromotionValidator
	orders     order.Service
}

func NewService(quoter Quoter, promotions PromotionValidator, orders order.Service) *Service {
	return &Service{
		quoter:     quoter,
		promotions: promotions,
		orders:     orders,
	}
}

// Checkout runs the strictly sequential price → validate promo → write order
// pipeline. All validation happens before the write; on any failure nothing
// is persisted.
func (s *Service) Checkout(ctx context.Context, input Input) (*Result, error) {
	if len(input.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	quote, err := s.quoter.Quote(ctx, input.Lines)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to price cart: %w", err)
	}

	if quote.Subtotal <= 0 {
		return nil, ErrZeroSubtotal
	}

	var (
		discount    int64
		promotionID *int64
	)
	if input.PromoCode != "" {
		result, err := s.promotions.Validate(ctx, input.PromoCode, quote.Subtotal, quote.Currency)
		if err != nil {
			return nil, err
		}
		discount = result.DiscountAmount
		promotionID = &result.Promotion.ID
	}

	total := quote.Subtotal - discount

	items := make([]order.Item, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		items = append(items, order.Item{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	created, err := s.orders.Create(ctx, &order.Order{
		UserID:      input.UserID,
		Total:       total,
		Currency:    quote.Currency,
		PromotionID: promotionID,
		Items:       items,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to persist order: %w", err)
	}

	log.Info().
		Int64("order_id", created.ID).
		Int64("subtotal", quote.Subtotal).
		Int64("discount", discount).
		Int64("total", total).
		Msg("checkout: order placed")

	return &Result{
		OrderID:        created.ID,
		Status:         created.Status,
		Subtotal:       quote.Subtotal,
		DiscountAmount: discount,
		Total:          total,
		Currency:       quote.Currency,
	}, nil
}

// PreviewPromotion validates a promo code against a cart without writing
// anything. The code is resolved before the cart is priced, so an invalid
// code is reported as such even for an unpriceable cart.
func (s *Service) PreviewPromotion(ctx context.Context, code string, lines []pricing.CartLine) (*Preview, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	promo, err := s.promotions.Find(ctx, code)
	if err != nil {
		return nil, err
	}

	quote, err := s.quoter.Quote(ctx, lines)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to price cart: %w", err)
	}

	if quote.Subtotal <= 0 {
		return nil, ErrZeroSubtotal
	}

	result, err := promotion.Apply(promo, quote.Subtotal, quote.Currency)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Promotion:          result.Promotion,
		Currency:           quote.Currency,
		Subtotal:           quote.Subtotal,
		DiscountAmount:     result.DiscountAmount,
		TotalAfterDiscount: result.TotalAfterDiscount,
	}, nil
}
