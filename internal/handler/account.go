package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/auth"
	"github.com/luminabrand/storefront/internal/order"
)

type AccountHandler struct {
	orders order.Service
}

func NewAccountHandler(orders order.Service) *AccountHandler {
	return &AccountHandler{orders: orders}
}

// ListOrders returns the orders of the logged-in user, newest first.
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", identity.UserID).Msg("failed to list user orders")
		respondWithError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}
