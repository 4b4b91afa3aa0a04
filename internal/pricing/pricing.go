// Package pricing turns a client-materialized cart into an authoritative
// priced quote. Unit prices always come from the catalog, never from the
// client.
package pricing

import (
	"context"
	"fmt"

	"github.com/luminabrand/storefront/internal/catalog"
)

const defaultCurrency = "USD"

// CartLine is one entry of the cart a client submits at checkout.
type CartLine struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// LineItem is a cart line resolved to a captured unit price.
type LineItem struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type Quote struct {
	Subtotal int64      `json:"subtotal"`
	Currency string     `json:"currency"`
	Lines    []LineItem `json:"lineItems"`
}

// CatalogReader is the read-only catalog surface the engine needs.
type CatalogReader interface {
	ProductsByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error)
	VariantsByIDs(ctx context.Context, ids []int64) ([]catalog.ProductVariant, error)
}

type Engine struct {
	catalog CatalogReader
}

func NewEngine(catalog CatalogReader) *Engine {
	return &Engine{catalog: catalog}
}

// Quote resolves every cart line against the catalog and sums the subtotal.
// Lines referencing an unknown product are dropped silently so stale carts
// for deleted products still check out. A variant price overrides the product
// base price; an unresolvable variant falls back to the base price. The
// currency comes from the first resolvable product; a cart is assumed to hold
// a single currency.
func (e *Engine) Quote(ctx context.Context, lines []CartLine) (Quote, error) {
	productIDs := make([]int64, 0, len(lines))
	variantIDs := make([]int64, 0, len(lines))
	seenProducts := make(map[int64]struct{}, len(lines))
	seenVariants := make(map[int64]struct{}, len(lines))

	for _, line := range lines {
		if _, ok := seenProducts[line.ProductID]; !ok {
			seenProducts[line.ProductID] = struct{}{}
			productIDs = append(productIDs, line.ProductID)
		}
		if line.VariantID != nil {
			if _, ok := seenVariants[*line.VariantID]; !ok {
				seenVariants[*line.VariantID] = struct{}{}
				variantIDs = append(variantIDs, *line.VariantID)
			}
		}
	}

	products, err := e.catalog.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return Quote{}, fmt.Errorf("pricing: failed to load products: %w", err)
	}
	variants, err := e.catalog.VariantsByIDs(ctx, variantIDs)
	if err != nil {
		return Quote{}, fmt.Errorf("pricing: failed to load variants: %w", err)
	}

	productByID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	variantByID := make(map[int64]catalog.ProductVariant, len(variants))
	for _, v := range variants {
		variantByID[v.ID] = v
	}

	quote := Quote{
		Currency: defaultCurrency,
		Lines:    make([]LineItem, 0, len(lines)),
	}
	currencySet := false

	for _, line := range lines {
		product, ok := productByID[line.ProductID]
		if !ok {
			continue
		}

		unitPrice := product.BasePrice
		if line.VariantID != nil {
			if variant, ok := variantByID[*line.VariantID]; ok {
				unitPrice = variant.Price
			}
		}

		quote.Subtotal += unitPrice * int64(line.Quantity)

		if !currencySet && product.Currency != "" {
			quote.Currency = product.Currency
			currencySet = true
		}

		quote.Lines = append(quote.Lines, LineItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
		})
	}

	return quote, nil
}
