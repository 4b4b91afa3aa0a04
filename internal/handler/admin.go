package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/analytics"
	"github.com/luminabrand/storefront/internal/catalog"
	"github.com/luminabrand/storefront/internal/order"
	"github.com/luminabrand/storefront/internal/promotion"
)

type AdminHandler struct {
	catalog    catalog.Service
	promotions promotion.Repository
	orders     order.Service
	analytics  *analytics.Service
	validate   *validator.Validate
}

func NewAdminHandler(
	catalogSvc catalog.Service,
	promotions promotion.Repository,
	orders order.Service,
	analyticsSvc *analytics.Service,
) *AdminHandler {
	return &AdminHandler{
		catalog:    catalogSvc,
		promotions: promotions,
		orders:     orders,
		analytics:  analyticsSvc,
		validate:   validator.New(),
	}
}

func urlParamID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// --- Products ---

type productRequest struct {
	Name             string `json:"name" validate:"required"`
	Slug             string `json:"slug"`
	TagLine          string `json:"tag_line"`
	BasePrice        int64  `json:"base_price" validate:"min=0"`
	Currency         string `json:"currency"`
	Stock            int    `json:"stock" validate:"min=0"`
	IsNew            bool   `json:"is_new"`
	IsBestSeller     bool   `json:"is_best_seller"`
	IsLimitedEdition bool   `json:"is_limited_edition"`
	OnSale           bool   `json:"on_sale"`
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, total, err := h.catalog.ListProducts(r.Context(), catalog.ListFilter{})
	if err != nil {
		log.Error().Err(err).Msg("admin: failed to list products")
		respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, productListResponse{Products: products, Total: total})
}

func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	product, err := h.catalog.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Int64("product_id", id).Msg("admin: failed to get product")
		respondWithError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload productRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if respondWithValidationErrors(w, err) {
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), catalog.NewProductInput{
		Name:             payload.Name,
		Slug:             payload.Slug,
		TagLine:          payload.TagLine,
		BasePrice:        payload.BasePrice,
		Currency:         payload.Currency,
		Stock:            payload.Stock,
		IsNew:            payload.IsNew,
		IsBestSeller:     payload.IsBestSeller,
		IsLimitedEdition: payload.IsLimitedEdition,
		OnSale:           payload.OnSale,
	})
	if err != nil {
		log.Error().Err(err).Msg("admin: failed to create product")
		respondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, product)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var payload productRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if respondWithValidationErrors(w, err) {
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	product := &catalog.Product{
		ID:               id,
		Name:             payload.Name,
		Slug:             catalog.Slugify(payload.Slug),
		BasePrice:        payload.BasePrice,
		Currency:         payload.Currency,
		IsNew:            payload.IsNew,
		IsBestSeller:     payload.IsBestSeller,
		IsLimitedEdition: payload.IsLimitedEdition,
		OnSale:           payload.OnSale,
	}
	if payload.TagLine != "" {
		product.TagLine = &payload.TagLine
	}
	if product.Currency == "" {
		product.Currency = "USD"
	}
	if product.Slug == "" {
		product.Slug = catalog.Slugify(payload.Name)
	}

	if err := h.catalog.UpdateProduct(r.Context(), product); err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, catalog.ErrSlugExists):
			respondWithError(w, http.StatusConflict, "Product slug already exists")
		default:
			log.Error().Err(err).Int64("product_id", id).Msg("admin: failed to update product")
			respondWithError(w, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, catalog.ErrProductInUse):
			respondWithError(w, http.StatusConflict, "Product is referenced by existing orders")
		default:
			log.Error().Err(err).Int64("product_id", id).Msg("admin: failed to delete product")
			respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Variants ---

type variantRequest struct {
	SKU   string `json:"sku" validate:"required"`
	Size  string `json:"size" validate:"required"`
	Color string `json:"color" validate:"required"`
	Price int64  `json:"price" validate:"min=0"`
	Stock int    `json:"stock" validate:"min=0"`
}

func (h *AdminHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	productID, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var payload variantRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if respondWithValidationErrors(w, err) {
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	variant := &catalog.ProductVariant{
		ProductID: productID,
		SKU:       payload.SKU,
		Size:      payload.Size,
		Color:     payload.Color,
		Price:     payload.Price,
		Stock:     payload.Stock,
	}

	if err := h.catalog.CreateVariant(r.Context(), variant); err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, catalog.ErrSKUExists):
			respondWithError(w, http.StatusConflict, "Variant sku already exists")
		default:
			log.Error().Err(err).Int64("product_id", productID).Msg("admin: failed to create variant")
			respondWithError(w, http.StatusInternalServerError, "Failed to create variant")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, variant)
}

func (h *AdminHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	variantID, err := urlParamID(r, "variantId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid variant id parameter")
		return
	}

	var payload variantRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if respondWithValidationErrors(w, err) {
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	variant := &catalog.ProductVariant{
		ID:    variantID,
		SKU:   payload.SKU,
		Size:  payload.Size,
		Color: payload.Color,
		Price: payload.Price,
		Stock: payload.Stock,
	}

	if err := h.catalog.UpdateVariant(r.Context(), variant); err != nil {
		switch {
		case errors.Is(err, catalog.ErrVariantNotFound):
			respondWithError(w, http.StatusNotFound, "Variant not found")
		case errors.Is(err, catalog.ErrSKUExists):
			respondWithError(w, http.StatusConflict, "Variant sku already exists")
		default:
			log.Error().Err(err).Int64("variant_id", variantID).Msg("admin: failed to update variant")
			respondWithError(w, http.StatusInternalServerError, "Failed to update variant")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, variant)
}

func (h *AdminHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	variantID, err := urlParamID(r, "variantId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid variant id parameter")
		return
	}

	if err := h.catalog.DeleteVariant(r.Context(), variantID); err != nil {
		switch {
		case errors.Is(err, catalog.ErrVariantNotFound):
			respondWithError(w, http.StatusNotFound, "Variant not found")
		case errors.Is(err, catalog.ErrProductInUse):
			respondWithError(w, http.StatusConflict, "Variant is referenced by existing orders")
		default:
			log.Error().Err(err).Int64("variant_id", variantID).Msg("admin: failed to delete variant")
			respondWithError(w, http.StatusInternalServerError, "Failed to delete variant")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Promotions ---

type promotionRequest struct {
	Code           string     `json:"code" validate:"required"`
	Type           string     `json:"type" validate:"required,oneof=PERCENT FIXED"`
	Value          int64      `json:"value" validate:"min=0"`
	MinOrderAmount *int64     `json:"minOrderAmount"`
	StartsAt       *time.Time `json:"startsAt"`
	EndsAt         *time.Time `json:"endsAt"`
	IsActive       bool       `json:"isActive"`
}

func (h *AdminHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotions.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("admin: failed to list promotions")
		respondWithError(w, http.StatusInternalServerError, "Failed to list promotions")
		return
	}
	respondWithJSON(w, http.StatusOK, promotions)
}

func (h *AdminHandler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	promo, err := h.promotions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, promotion.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Promotion not found")
			return
		}
		log.Error().Err(err).Int64("promotion_id", id).Msg("admin: failed to get promotion")
		respondWithError(w, http.StatusInternalServerError, "Failed to get promotion")
		return
	}

	respondWithJSON(w, http.StatusOK, promo)
}

func (h *AdminHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var payload promotionRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if respondWithValidationErrors(w, err) {
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	promo := &promotion.Promotion{
		Code:           promotion.NormalizeCode(payload.Code),
		Type:           promotion.DiscountType(payload.Type),
		Value:          payload.Value,
		MinOrderAmount: payload.MinOrderAmount,
		StartsAt:       payload.StartsAt,
		EndsAt:         payload.EndsAt,
		IsActive:       payload.IsActive,
	}

	if err := h.promotions.Create(r.Context(), promo); err != nil {
		if errors.Is(err, promotion.ErrCodeExists) {
			respondWithError(w, http.StatusConflict, "Promotion code already exists")
			return
		}
		log.Error().Err(err).Msg("admin: failed to create promotion")
		respondWithError(w, http.StatusInternalServerError, "Failed to create promotion")
		return
	}

	respondWithJSON(w, http.StatusCreated, promo)
}

func (h *AdminHandler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var payload promotionRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if respondWithValidationErrors(w, err) {
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	promo := &promotion.Promotion{
		ID:             id,
		Code:           promotion.NormalizeCode(payload.Code),
		Type:           promotion.DiscountType(payload.Type),
		Value:          payload.Value,
		MinOrderAmount: payload.MinOrderAmount,
		StartsAt:       payload.StartsAt,
		EndsAt:         payload.EndsAt,
		IsActive:       payload.IsActive,
	}

	if err := h.promotions.Update(r.Context(), promo); err != nil {
		switch {
		case errors.Is(err, promotion.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Promotion not found")
		case errors.Is(err, promotion.ErrCodeExists):
			respondWithError(w, http.StatusConflict, "Promotion code already exists")
		default:
			log.Error().Err(err).Int64("promotion_id", id).Msg("admin: failed to update promotion")
			respondWithError(w, http.StatusInternalServerError, "Failed to update promotion")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, promo)
}

func (h *AdminHandler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.promotions.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, promotion.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Promotion not found")
		case errors.Is(err, promotion.ErrInUse):
			respondWithError(w, http.StatusConflict, "Promotion is referenced by existing orders")
		default:
			log.Error().Err(err).Int64("promotion_id", id).Msg("admin: failed to delete promotion")
			respondWithError(w, http.StatusInternalServerError, "Failed to delete promotion")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Orders ---

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PLACED PAID SHIPPED DELIVERED CANCELLED"`
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("admin: failed to list orders")
		respondWithError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error().Err(err).Int64("order_id", id).Msg("admin: failed to get order")
		respondWithError(w, http.StatusInternalServerError, "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var payload updateOrderStatusRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if respondWithValidationErrors(w, err) {
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, order.Status(payload.Status)); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			log.Error().Err(err).Int64("order_id", id).Msg("admin: failed to update order status")
			respondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Analytics ---

func (h *AdminHandler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("admin: failed to build analytics summary")
		respondWithError(w, http.StatusInternalServerError, "Failed to build analytics summary")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *AdminHandler) AnalyticsTopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.analytics.TopProducts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("admin: failed to build top products")
		respondWithError(w, http.StatusInternalServerError, "Failed to build top products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}
