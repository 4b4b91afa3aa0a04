package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminabrand/storefront/internal/catalog"
)

type mockCatalogReader struct {
	ProductsByIDsFunc func(ctx context.Context, ids []int64) ([]catalog.Product, error)
	VariantsByIDsFunc func(ctx context.Context, ids []int64) ([]catalog.ProductVariant, error)
}

func (m *mockCatalogReader) ProductsByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	return m.ProductsByIDsFunc(ctx, ids)
}

func (m *mockCatalogReader) VariantsByIDs(ctx context.Context, ids []int64) ([]catalog.ProductVariant, error) {
	return m.VariantsByIDsFunc(ctx, ids)
}

func staticCatalog(products []catalog.Product, variants []catalog.ProductVariant) *mockCatalogReader {
	return &mockCatalogReader{
		ProductsByIDsFunc: func(ctx context.Context, ids []int64) ([]catalog.Product, error) {
			return products, nil
		},
		VariantsByIDsFunc: func(ctx context.Context, ids []int64) ([]catalog.ProductVariant, error) {
			return variants, nil
		},
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestEngine_Quote(t *testing.T) {
	products := []catalog.Product{
		{ID: 1, Name: "Everyday Essentials Tee", BasePrice: 55, Currency: "USD"},
		{ID: 2, Name: "Shadow Tech Sneakers", BasePrice: 185, Currency: "USD"},
	}
	variants := []catalog.ProductVariant{
		{ID: 10, ProductID: 1, SKU: "TOP-TEE-L-COAL", Price: 59},
	}

	tests := []struct {
		name             string
		lines            []CartLine
		expectedSubtotal int64
		expectedCurrency string
		expectedLines    int
	}{
		{
			name: "base_price_times_quantity",
			lines: []CartLine{
				{ProductID: 1, Quantity: 2},
			},
			expectedSubtotal: 110,
			expectedCurrency: "USD",
			expectedLines:    1,
		},
		{
			name: "variant_price_overrides_base",
			lines: []CartLine{
				{ProductID: 1, VariantID: int64Ptr(10), Quantity: 2},
			},
			expectedSubtotal: 118,
			expectedCurrency: "USD",
			expectedLines:    1,
		},
		{
			name: "unknown_variant_falls_back_to_base",
			lines: []CartLine{
				{ProductID: 1, VariantID: int64Ptr(999), Quantity: 1},
			},
			expectedSubtotal: 55,
			expectedCurrency: "USD",
			expectedLines:    1,
		},
		{
			name: "unknown_product_dropped",
			lines: []CartLine{
				{ProductID: 999, Quantity: 3},
				{ProductID: 2, Quantity: 1},
			},
			expectedSubtotal: 185,
			expectedCurrency: "USD",
			expectedLines:    1,
		},
		{
			name: "all_lines_unresolvable",
			lines: []CartLine{
				{ProductID: 998, Quantity: 1},
				{ProductID: 999, Quantity: 1},
			},
			expectedSubtotal: 0,
			expectedCurrency: "USD",
			expectedLines:    0,
		},
		{
			name: "mixed_lines_sum",
			lines: []CartLine{
				{ProductID: 1, Quantity: 2},
				{ProductID: 2, Quantity: 1},
				{ProductID: 1, VariantID: int64Ptr(10), Quantity: 1},
			},
			expectedSubtotal: 354,
			expectedCurrency: "USD",
			expectedLines:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(staticCatalog(products, variants))

			quote, err := engine.Quote(context.Background(), tt.lines)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSubtotal, quote.Subtotal)
			assert.Equal(t, tt.expectedCurrency, quote.Currency)
			assert.Len(t, quote.Lines, tt.expectedLines)
		})
	}
}

func TestEngine_Quote_CapturesUnitPrices(t *testing.T) {
	products := []catalog.Product{
		{ID: 1, BasePrice: 140, Currency: "USD"},
	}
	variants := []catalog.ProductVariant{
		{ID: 5, ProductID: 1, Price: 145},
	}

	engine := NewEngine(staticCatalog(products, variants))

	quote, err := engine.Quote(context.Background(), []CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 1, VariantID: int64Ptr(5), Quantity: 2},
	})

	require.NoError(t, err)
	require.Len(t, quote.Lines, 2)
	assert.Equal(t, int64(140), quote.Lines[0].UnitPrice)
	assert.Equal(t, int64(145), quote.Lines[1].UnitPrice)
	assert.Equal(t, int64(430), quote.Subtotal)
}

func TestEngine_Quote_CurrencyFromFirstResolvableProduct(t *testing.T) {
	products := []catalog.Product{
		{ID: 2, BasePrice: 80, Currency: "EUR"},
	}

	engine := NewEngine(staticCatalog(products, nil))

	quote, err := engine.Quote(context.Background(), []CartLine{
		{ProductID: 999, Quantity: 1},
		{ProductID: 2, Quantity: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, "EUR", quote.Currency)
}

func TestEngine_Quote_CatalogError(t *testing.T) {
	engine := NewEngine(&mockCatalogReader{
		ProductsByIDsFunc: func(ctx context.Context, ids []int64) ([]catalog.Product, error) {
			return nil, errors.New("connection refused")
		},
		VariantsByIDsFunc: func(ctx context.Context, ids []int64) ([]catalog.ProductVariant, error) {
			return nil, nil
		},
	})

	_, err := engine.Quote(context.Background(), []CartLine{{ProductID: 1, Quantity: 1}})

	assert.Error(t, err)
}
