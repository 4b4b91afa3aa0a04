package catalog

import "time"

// Product is a catalog item. BasePrice is the fallback unit price when no
// variant is selected; prices are whole currency units.
type Product struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	TagLine          *string          `json:"tag_line,omitempty"`
	BasePrice        int64            `json:"base_price"`
	Currency         string           `json:"currency"`
	IsNew            bool             `json:"is_new"`
	IsBestSeller     bool             `json:"is_best_seller"`
	IsLimitedEdition bool             `json:"is_limited_edition"`
	OnSale           bool             `json:"on_sale"`
	Variants         []ProductVariant `json:"variants,omitempty"`
	Collections      []Collection     `json:"collections,omitempty"`
	Tags             []Tag            `json:"tags,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type ProductVariant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
}

type Collection struct {
	ID          int64   `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ListSort values accepted by product listing.
const (
	SortNewest      = "newest"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortBestSellers = "best_sellers"
)

// ListFilter narrows the product listing. Zero values mean "no constraint".
type ListFilter struct {
	Search         string
	CollectionSlug string
	TagSlugs       []string
	MinPrice       *int64
	MaxPrice       *int64
	Sort           string
}
