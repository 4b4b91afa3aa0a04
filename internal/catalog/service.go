package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/cache"
)

const (
	cacheKeyCollections = "catalog:collections"
	cacheKeyTags        = "catalog:tags"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the input and collapses non-alphanumeric runs into
// single hyphens.
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = slugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NewProductInput carries the fields of an admin product-create request.
// A default variant is created alongside the product so it is immediately
// purchasable.
type NewProductInput struct {
	Name             string
	Slug             string
	TagLine          string
	BasePrice        int64
	Currency         string
	Stock            int
	IsNew            bool
	IsBestSeller     bool
	IsLimitedEdition bool
	OnSale           bool
}

type Service interface {
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error)
	ListCollections(ctx context.Context) ([]Collection, error)
	ListTags(ctx context.Context) ([]Tag, error)

	CreateProduct(ctx context.Context, input NewProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	CreateVariant(ctx context.Context, v *ProductVariant) error
	UpdateVariant(ctx context.Context, v *ProductVariant) error
	DeleteVariant(ctx context.Context, id int64) error
}

type service struct {
	repo  Repository
	cache *cache.Cache
	now   func() time.Time
}

func NewService(repo Repository, c *cache.Cache) Service {
	return &service{repo: repo, cache: c, now: time.Now}
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Str("slug", slug).Msg("service: failed to fetch product by slug")
		return nil, fmt.Errorf("service: failed to fetch product by slug: %w", err)
	}
	return product, nil
}

func (s *service) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to fetch product by id")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, 0, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *service) ListCollections(ctx context.Context) ([]Collection, error) {
	if cached, ok := s.cache.Get(cacheKeyCollections); ok {
		if collections, ok := cached.([]Collection); ok {
			return collections, nil
		}
	}

	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list collections")
		return nil, fmt.Errorf("service: failed to list collections: %w", err)
	}

	s.cache.Set(cacheKeyCollections, collections)
	return collections, nil
}

func (s *service) ListTags(ctx context.Context) ([]Tag, error) {
	if cached, ok := s.cache.Get(cacheKeyTags); ok {
		if tags, ok := cached.([]Tag); ok {
			return tags, nil
		}
	}

	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list tags")
		return nil, fmt.Errorf("service: failed to list tags: %w", err)
	}

	s.cache.Set(cacheKeyTags, tags)
	return tags, nil
}

func (s *service) CreateProduct(ctx context.Context, input NewProductInput) (*Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("service: product name is required")
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = "USD"
	}

	basePrice := input.BasePrice
	if basePrice < 0 {
		basePrice = 0
	}

	baseSlug := Slugify(input.Slug)
	if baseSlug == "" {
		baseSlug = Slugify(name)
	}
	if baseSlug == "" {
		baseSlug = fmt.Sprintf("product-%d", s.now().UnixMilli())
	}

	slug, err := s.uniqueSlug(ctx, baseSlug)
	if err != nil {
		return nil, err
	}

	product := &Product{
		Name:             name,
		Slug:             slug,
		BasePrice:        basePrice,
		Currency:         currency,
		IsNew:            input.IsNew,
		IsBestSeller:     input.IsBestSeller,
		IsLimitedEdition: input.IsLimitedEdition,
		OnSale:           input.OnSale,
	}
	if tagLine := strings.TrimSpace(input.TagLine); tagLine != "" {
		product.TagLine = &tagLine
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	stock := input.Stock
	if stock < 0 {
		stock = 0
	}

	variant := &ProductVariant{
		ProductID: product.ID,
		SKU:       fmt.Sprintf("SKU-%d-%s", product.ID, strings.ToUpper(fmt.Sprintf("%x", s.now().UnixMilli()))),
		Size:      "One Size",
		Color:     "Standard",
		Price:     basePrice,
		Stock:     stock,
	}
	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		log.Error().Err(err).Int64("product_id", product.ID).Msg("service: failed to create default variant")
		return nil, fmt.Errorf("service: failed to create default variant: %w", err)
	}
	product.Variants = []ProductVariant{*variant}

	log.Info().Int64("product_id", product.ID).Str("slug", slug).Msg("service: product created")
	return product, nil
}

// uniqueSlug appends -2, -3, ... until the slug is free.
func (s *service) uniqueSlug(ctx context.Context, baseSlug string) (string, error) {
	slug := baseSlug
	for suffix := 2; ; suffix++ {
		exists, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("service: failed to check slug uniqueness: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, suffix)
	}
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("service: product name is required")
	}
	if p.BasePrice < 0 {
		return errors.New("service: base price cannot be negative")
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrSlugExists) {
			return err
		}
		log.Error().Err(err).Int64("product_id", p.ID).Msg("service: failed to update product")
		return fmt.Errorf("service: failed to update product: %w", err)
	}

	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrProductInUse) {
			return err
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Int64("product_id", id).Msg("service: product deleted")
	return nil
}

func (s *service) CreateVariant(ctx context.Context, v *ProductVariant) error {
	if v.Price < 0 {
		return errors.New("service: variant price cannot be negative")
	}
	if v.Stock < 0 {
		return errors.New("service: variant stock cannot be negative")
	}
	if strings.TrimSpace(v.SKU) == "" {
		return errors.New("service: variant sku is required")
	}

	if err := s.repo.CreateVariant(ctx, v); err != nil {
		if errors.Is(err, ErrSKUExists) || errors.Is(err, ErrProductNotFound) {
			return err
		}
		log.Error().Err(err).Int64("product_id", v.ProductID).Msg("service: failed to create variant")
		return fmt.Errorf("service: failed to create variant: %w", err)
	}

	return nil
}

func (s *service) UpdateVariant(ctx context.Context, v *ProductVariant) error {
	if v.Price < 0 {
		return errors.New("service: variant price cannot be negative")
	}
	if v.Stock < 0 {
		return errors.New("service: variant stock cannot be negative")
	}

	if err := s.repo.UpdateVariant(ctx, v); err != nil {
		if errors.Is(err, ErrVariantNotFound) || errors.Is(err, ErrSKUExists) {
			return err
		}
		log.Error().Err(err).Int64("variant_id", v.ID).Msg("service: failed to update variant")
		return fmt.Errorf("service: failed to update variant: %w", err)
	}

	return nil
}

func (s *service) DeleteVariant(ctx context.Context, id int64) error {
	if err := s.repo.DeleteVariant(ctx, id); err != nil {
		if errors.Is(err, ErrVariantNotFound) || errors.Is(err, ErrProductInUse) {
			return err
		}
		log.Error().Err(err).Int64("variant_id", id).Msg("service: failed to delete variant")
		return fmt.Errorf("service: failed to delete variant: %w", err)
	}

	return nil
}
