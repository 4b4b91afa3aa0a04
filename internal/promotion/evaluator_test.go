package promotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	FindActiveByCodeFunc func(ctx context.Context, code string, now time.Time) (*Promotion, error)
}

func (m *mockRepository) FindActiveByCode(ctx context.Context, code string, now time.Time) (*Promotion, error) {
	return m.FindActiveByCodeFunc(ctx, code, now)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Promotion, error) {
	return nil, ErrNotFound
}
func (m *mockRepository) List(ctx context.Context) ([]Promotion, error) { return nil, nil }
func (m *mockRepository) Create(ctx context.Context, p *Promotion) error {
	return nil
}
func (m *mockRepository) Update(ctx context.Context, p *Promotion) error {
	return nil
}
func (m *mockRepository) Delete(ctx context.Context, id int64) error { return nil }

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func percent(value int64) Promotion {
	return Promotion{Type: TypePercent, Value: value, IsActive: true}
}

func fixed(value int64) Promotion {
	return Promotion{Type: TypeFixed, Value: value, IsActive: true}
}

func TestPromotion_Discount(t *testing.T) {
	tests := []struct {
		name     string
		promo    Promotion
		subtotal int64
		expected int64
	}{
		{name: "percent_exact", promo: percent(10), subtotal: 280, expected: 28},
		{name: "percent_rounds_half_up", promo: percent(10), subtotal: 285, expected: 29},
		{name: "percent_rounds_down_below_half", promo: percent(10), subtotal: 284, expected: 28},
		{name: "percent_twenty", promo: percent(20), subtotal: 1000, expected: 200},
		{name: "percent_full", promo: percent(100), subtotal: 42, expected: 42},
		{name: "fixed_verbatim", promo: fixed(50), subtotal: 400, expected: 50},
		{name: "fixed_clamped_to_subtotal", promo: fixed(9999), subtotal: 100, expected: 100},
		{name: "zero_subtotal", promo: percent(10), subtotal: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.promo.Discount(tt.subtotal))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "WELCOME10", NormalizeCode("  welcome10 "))
	assert.Equal(t, "TAKE50", NormalizeCode("Take50"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestPromotion_ActiveAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		promo    Promotion
		expected bool
	}{
		{name: "active_no_window", promo: Promotion{IsActive: true}, expected: true},
		{name: "inactive", promo: Promotion{IsActive: false}, expected: false},
		{
			name: "before_window",
			promo: Promotion{
				IsActive: true,
				StartsAt: timePtr(now.Add(time.Hour)),
			},
			expected: false,
		},
		{
			name: "after_window",
			promo: Promotion{
				IsActive: true,
				EndsAt:   timePtr(now.Add(-time.Hour)),
			},
			expected: false,
		},
		{
			name: "inside_window",
			promo: Promotion{
				IsActive: true,
				StartsAt: timePtr(now.Add(-time.Hour)),
				EndsAt:   timePtr(now.Add(time.Hour)),
			},
			expected: true,
		},
		{
			name: "boundary_start_inclusive",
			promo: Promotion{
				IsActive: true,
				StartsAt: timePtr(now),
			},
			expected: true,
		},
		{
			name: "boundary_end_inclusive",
			promo: Promotion{
				IsActive: true,
				EndsAt:   timePtr(now),
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.promo.ActiveAt(now))
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("below_minimum", func(t *testing.T) {
		promo := &Promotion{Type: TypeFixed, Value: 50, MinOrderAmount: int64Ptr(350), IsActive: true}

		_, err := Apply(promo, 300, "USD")

		var belowMin *BelowMinimumError
		require.ErrorAs(t, err, &belowMin)
		assert.Equal(t, "USD", belowMin.Currency)
		assert.Equal(t, int64(350), belowMin.Minimum)
	})

	t.Run("minimum_boundary_inclusive", func(t *testing.T) {
		promo := &Promotion{Type: TypePercent, Value: 20, MinOrderAmount: int64Ptr(300), IsActive: true}

		result, err := Apply(promo, 300, "USD")

		require.NoError(t, err)
		assert.Equal(t, int64(60), result.DiscountAmount)
		assert.Equal(t, int64(240), result.TotalAfterDiscount)
	})

	t.Run("nil_minimum_always_passes", func(t *testing.T) {
		promo := &Promotion{Type: TypePercent, Value: 10, IsActive: true}

		result, err := Apply(promo, 1, "USD")

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.DiscountAmount)
		assert.Equal(t, int64(1), result.TotalAfterDiscount)
	})
}

func TestEvaluator_Find(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("normalizes_code_before_lookup", func(t *testing.T) {
		var seenCode string
		repo := &mockRepository{
			FindActiveByCodeFunc: func(ctx context.Context, code string, lookupNow time.Time) (*Promotion, error) {
				seenCode = code
				return &Promotion{ID: 1, Code: code, Type: TypePercent, Value: 10, IsActive: true}, nil
			},
		}
		evaluator := NewEvaluatorAt(repo, func() time.Time { return now })

		promo, err := evaluator.Find(context.Background(), "  welcome10 ")

		require.NoError(t, err)
		assert.Equal(t, "WELCOME10", seenCode)
		assert.Equal(t, int64(1), promo.ID)
	})

	t.Run("missing_code_collapses_to_rejected", func(t *testing.T) {
		repo := &mockRepository{
			FindActiveByCodeFunc: func(ctx context.Context, code string, lookupNow time.Time) (*Promotion, error) {
				return nil, ErrNotFound
			},
		}
		evaluator := NewEvaluatorAt(repo, func() time.Time { return now })

		_, err := evaluator.Find(context.Background(), "NOPE")

		assert.ErrorIs(t, err, ErrRejected)
	})

	t.Run("repository_failure_is_not_rejection", func(t *testing.T) {
		repo := &mockRepository{
			FindActiveByCodeFunc: func(ctx context.Context, code string, lookupNow time.Time) (*Promotion, error) {
				return nil, errors.New("connection refused")
			},
		}
		evaluator := NewEvaluatorAt(repo, func() time.Time { return now })

		_, err := evaluator.Find(context.Background(), "WELCOME10")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRejected)
	})
}

func TestEvaluator_Validate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	repo := &mockRepository{
		FindActiveByCodeFunc: func(ctx context.Context, code string, lookupNow time.Time) (*Promotion, error) {
			switch code {
			case "WELCOME10":
				return &Promotion{ID: 1, Code: code, Type: TypePercent, Value: 10, MinOrderAmount: int64Ptr(0), IsActive: true}, nil
			case "TAKE50":
				return &Promotion{ID: 3, Code: code, Type: TypeFixed, Value: 50, MinOrderAmount: int64Ptr(350), IsActive: true}, nil
			default:
				return nil, ErrNotFound
			}
		},
	}
	evaluator := NewEvaluatorAt(repo, func() time.Time { return now })

	t.Run("percent_applied", func(t *testing.T) {
		result, err := evaluator.Validate(context.Background(), "welcome10", 280, "USD")

		require.NoError(t, err)
		assert.Equal(t, int64(28), result.DiscountAmount)
		assert.Equal(t, int64(252), result.TotalAfterDiscount)
	})

	t.Run("fixed_below_minimum", func(t *testing.T) {
		_, err := evaluator.Validate(context.Background(), "TAKE50", 300, "USD")

		var belowMin *BelowMinimumError
		assert.ErrorAs(t, err, &belowMin)
	})

	t.Run("unknown_code", func(t *testing.T) {
		_, err := evaluator.Validate(context.Background(), "GONE", 500, "USD")

		assert.ErrorIs(t, err, ErrRejected)
	})
}
