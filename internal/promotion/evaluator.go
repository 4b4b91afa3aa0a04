package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrRejected is the collapsed rejection for missing, inactive and
// out-of-window codes. Callers must not be able to tell those cases apart.
var ErrRejected = errors.New("invalid or expired promo code")

// BelowMinimumError rejects a code whose minimum order amount exceeds the
// cart subtotal. Currency and minimum feed the user-visible message.
type BelowMinimumError struct {
	Currency string
	Minimum  int64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("this code requires a minimum order of %s %d", e.Currency, e.Minimum)
}

// Result is a validated discount against a concrete subtotal.
type Result struct {
	Promotion          Promotion
	DiscountAmount     int64
	TotalAfterDiscount int64
}

// NormalizeCode trims surrounding whitespace and uppercases the code, the
// canonical form codes are stored in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Discount computes the discount a promotion yields against a subtotal:
// PERCENT rounds half-up to the nearest whole currency unit, FIXED applies
// verbatim, and the result is clamped to the subtotal so a total can never
// go negative.
func (p Promotion) Discount(subtotal int64) int64 {
	var discount int64
	if p.Type == TypePercent {
		discount = (subtotal*p.Value + 50) / 100
	} else {
		discount = p.Value
	}

	if discount > subtotal {
		discount = subtotal
	}
	return discount
}

// Evaluator validates promotion codes against a subtotal. Lookup is the only
// side effect; the discount arithmetic itself is pure.
type Evaluator struct {
	repo Repository
	now  func() time.Time
}

func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{repo: repo, now: time.Now}
}

// NewEvaluatorAt pins "now" for deterministic window checks in tests.
func NewEvaluatorAt(repo Repository, now func() time.Time) *Evaluator {
	return &Evaluator{repo: repo, now: now}
}

// Find resolves a raw code to a currently redeemable promotion. Missing,
// inactive and out-of-window codes all collapse into ErrRejected.
func (e *Evaluator) Find(ctx context.Context, code string) (*Promotion, error) {
	normalized := NormalizeCode(code)

	promo, err := e.repo.FindActiveByCode(ctx, normalized, e.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrRejected
		}
		log.Error().Err(err).Str("code", normalized).Msg("promotion: failed to look up code")
		return nil, fmt.Errorf("promotion: failed to look up code: %w", err)
	}

	return promo, nil
}

// Apply enforces the minimum-order constraint and computes the discount.
// Minimum-order comparison is boundary inclusive: subtotal == minimum passes.
func Apply(promo *Promotion, subtotal int64, currency string) (*Result, error) {
	if promo.MinOrderAmount != nil && subtotal < *promo.MinOrderAmount {
		return nil, &BelowMinimumError{Currency: currency, Minimum: *promo.MinOrderAmount}
	}

	discount := promo.Discount(subtotal)

	return &Result{
		Promotion:          *promo,
		DiscountAmount:     discount,
		TotalAfterDiscount: subtotal - discount,
	}, nil
}

// Validate is the one-shot path used at checkout: look the code up, then
// apply it to the subtotal.
func (e *Evaluator) Validate(ctx context.Context, code string, subtotal int64, currency string) (*Result, error) {
	promo, err := e.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	return Apply(promo, subtotal, currency)
}
