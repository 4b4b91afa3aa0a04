package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/auth"
	"github.com/luminabrand/storefront/internal/checkout"
	"github.com/luminabrand/storefront/internal/pricing"
	"github.com/luminabrand/storefront/internal/promotion"
)

type cartItemPayload struct {
	ProductID int64  `json:"productId" validate:"required"`
	VariantID *int64 `json:"variantId"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type checkoutRequest struct {
	Items     []cartItemPayload `json:"items" validate:"required,min=1,dive"`
	PromoCode string            `json:"promoCode"`
	UserID    string            `json:"userId"`
}

type checkoutResponse struct {
	Success        bool   `json:"success"`
	OrderID        int64  `json:"orderId"`
	Status         string `json:"status"`
	Subtotal       int64  `json:"subtotal"`
	DiscountAmount int64  `json:"discountAmount"`
	Total          int64  `json:"total"`
	Currency       string `json:"currency"`
}

type validatePromotionRequest struct {
	Code  string            `json:"code"`
	Items []cartItemPayload `json:"items"`
}

type promotionPayload struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	Type           string `json:"type"`
	Value          int64  `json:"value"`
	MinOrderAmount *int64 `json:"minOrderAmount"`
}

type validatePromotionResponse struct {
	Promotion          promotionPayload `json:"promotion"`
	Currency           string           `json:"currency"`
	Subtotal           int64            `json:"subtotal"`
	DiscountAmount     int64            `json:"discountAmount"`
	TotalAfterDiscount int64            `json:"totalAfterDiscount"`
}

type CheckoutHandler struct {
	svc      *checkout.Service
	validate *validator.Validate
}

func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func toCartLines(items []cartItemPayload) []pricing.CartLine {
	lines := make([]pricing.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.CartLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var payload checkoutRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Cart is empty or invalid payload.")
		return
	}

	if len(payload.Items) == 0 {
		respondWithError(w, http.StatusBadRequest, "Cart is empty or invalid payload.")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		if respondWithValidationErrors(w, err) {
			return
		}
		log.Error().Err(err).Msg("unexpected error type during checkout validation")
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	input := checkout.Input{
		Lines:     toCartLines(payload.Items),
		PromoCode: payload.PromoCode,
	}

	// A logged-in session wins over the optional userId field.
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		input.UserID = &identity.UserID
	} else if payload.UserID != "" {
		if userID, err := uuid.FromString(payload.UserID); err == nil {
			input.UserID = &userID
		}
	}

	result, err := h.svc.Checkout(r.Context(), input)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, checkoutResponse{
		Success:        true,
		OrderID:        result.OrderID,
		Status:         result.Status.String(),
		Subtotal:       result.Subtotal,
		DiscountAmount: result.DiscountAmount,
		Total:          result.Total,
		Currency:       result.Currency,
	})
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var belowMin *promotion.BelowMinimumError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondWithError(w, http.StatusBadRequest, "Cart is empty or invalid payload.")
	case errors.Is(err, checkout.ErrZeroSubtotal):
		respondWithError(w, http.StatusBadRequest, "Subtotal must be greater than zero.")
	case errors.Is(err, promotion.ErrRejected):
		respondWithError(w, http.StatusBadRequest, "Invalid or expired promo code.")
	case errors.As(err, &belowMin):
		respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("This code requires a minimum order of %s %d.", belowMin.Currency, belowMin.Minimum))
	default:
		log.Error().Err(err).Msg("checkout failed")
		respondWithError(w, http.StatusInternalServerError, "Internal server error during checkout.")
	}
}

func (h *CheckoutHandler) ValidatePromotion(w http.ResponseWriter, r *http.Request) {
	var payload validatePromotionRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Promo code is required.")
		return
	}

	if payload.Code == "" {
		respondWithError(w, http.StatusBadRequest, "Promo code is required.")
		return
	}

	if len(payload.Items) == 0 {
		respondWithError(w, http.StatusBadRequest, "No items provided to validate promotion.")
		return
	}

	preview, err := h.svc.PreviewPromotion(r.Context(), payload.Code, toCartLines(payload.Items))
	if err != nil {
		h.respondPreviewError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, validatePromotionResponse{
		Promotion: promotionPayload{
			ID:             preview.Promotion.ID,
			Code:           preview.Promotion.Code,
			Type:           string(preview.Promotion.Type),
			Value:          preview.Promotion.Value,
			MinOrderAmount: preview.Promotion.MinOrderAmount,
		},
		Currency:           preview.Currency,
		Subtotal:           preview.Subtotal,
		DiscountAmount:     preview.DiscountAmount,
		TotalAfterDiscount: preview.TotalAfterDiscount,
	})
}

func (h *CheckoutHandler) respondPreviewError(w http.ResponseWriter, err error) {
	var belowMin *promotion.BelowMinimumError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondWithError(w, http.StatusBadRequest, "No items provided to validate promotion.")
	case errors.Is(err, promotion.ErrRejected):
		respondWithError(w, http.StatusBadRequest, "Invalid or expired promo code.")
	case errors.Is(err, checkout.ErrZeroSubtotal):
		respondWithError(w, http.StatusBadRequest, "Cart subtotal must be greater than zero.")
	case errors.As(err, &belowMin):
		respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("This code requires a minimum order of %s %d.", belowMin.Currency, belowMin.Minimum))
	default:
		log.Error().Err(err).Msg("promotion validation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to validate promotion.")
	}
}
