package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/luminabrand/storefront/internal/auth"
	"github.com/luminabrand/storefront/internal/handler"
)

type Handlers struct {
	Catalog  *handler.CatalogHandler
	Checkout *handler.CheckoutHandler
	Auth     *handler.AuthHandler
	Account  *handler.AccountHandler
	Admin    *handler.AdminHandler
}

func NewRouter(authSvc auth.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(auth.Authenticate(authSvc))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Catalog.ListProducts)
		r.Get("/products/{slug}", h.Catalog.GetProductBySlug)
		r.Get("/collections", h.Catalog.ListCollections)
		r.Get("/tags", h.Catalog.ListTags)

		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)
		r.Post("/auth/setup-admin", h.Auth.SetupAdmin)

		r.Post("/checkout", h.Checkout.Checkout)
		r.Post("/promotions/validate", h.Checkout.ValidatePromotion)

		r.Get("/account/orders", h.Account.ListOrders)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))

			r.Get("/products", h.Admin.ListProducts)
			r.Post("/products", h.Admin.CreateProduct)
			r.Get("/products/{id}", h.Admin.GetProduct)
			r.Put("/products/{id}", h.Admin.UpdateProduct)
			r.Delete("/products/{id}", h.Admin.DeleteProduct)
			r.Post("/products/{id}/variants", h.Admin.CreateVariant)
			r.Put("/products/{id}/variants/{variantId}", h.Admin.UpdateVariant)
			r.Delete("/products/{id}/variants/{variantId}", h.Admin.DeleteVariant)

			r.Get("/promotions", h.Admin.ListPromotions)
			r.Post("/promotions", h.Admin.CreatePromotion)
			r.Get("/promotions/{id}", h.Admin.GetPromotion)
			r.Put("/promotions/{id}", h.Admin.UpdatePromotion)
			r.Delete("/promotions/{id}", h.Admin.DeletePromotion)

			r.Get("/orders", h.Admin.ListOrders)
			r.Get("/orders/{id}", h.Admin.GetOrder)
			r.Patch("/orders/{id}/status", h.Admin.UpdateOrderStatus)

			r.Get("/analytics/summary", h.Admin.AnalyticsSummary)
			r.Get("/analytics/products", h.Admin.AnalyticsTopProducts)
		})
	})

	return r
}
