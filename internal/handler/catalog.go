package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/catalog"
)

type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type productListResponse struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := catalog.ListFilter{
		Search:         query.Get("search"),
		CollectionSlug: query.Get("collection"),
		TagSlugs:       query["tag"],
		Sort:           query.Get("sort"),
	}

	if raw := query.Get("minPrice"); raw != "" {
		if minPrice, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.MinPrice = &minPrice
		}
	}
	if raw := query.Get("maxPrice"); raw != "" {
		if maxPrice, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.MaxPrice = &maxPrice
		}
	}

	products, total, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list products")
		respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, productListResponse{Products: products, Total: total})
}

func (h *CatalogHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		respondWithError(w, http.StatusBadRequest, "Product slug is required")
		return
	}

	product, err := h.svc.GetProductBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("failed to get product")
		respondWithError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.svc.ListCollections(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list collections")
		respondWithError(w, http.StatusInternalServerError, "Failed to list collections")
		return
	}

	respondWithJSON(w, http.StatusOK, collections)
}

func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list tags")
		respondWithError(w, http.StatusInternalServerError, "Failed to list tags")
		return
	}

	respondWithJSON(w, http.StatusOK, tags)
}
