package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/analytics"
	"github.com/luminabrand/storefront/internal/auth"
	"github.com/luminabrand/storefront/internal/cache"
	"github.com/luminabrand/storefront/internal/catalog"
	"github.com/luminabrand/storefront/internal/checkout"
	"github.com/luminabrand/storefront/internal/config"
	"github.com/luminabrand/storefront/internal/db"
	"github.com/luminabrand/storefront/internal/handler"
	"github.com/luminabrand/storefront/internal/order"
	"github.com/luminabrand/storefront/internal/pricing"
	"github.com/luminabrand/storefront/internal/promotion"
	"github.com/luminabrand/storefront/internal/transport"
)

const listingCacheTTL = 5 * time.Minute

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting storefront...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := db.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pg, err := db.New(ctx, cfg.Postgres)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	listingCache := cache.New(listingCacheTTL)
	defer listingCache.Close()

	catalogRepo := catalog.NewRepository(pg.Pool)
	catalogSvc := catalog.NewService(catalogRepo, listingCache)

	promotionRepo := promotion.NewRepository(pg.Pool)
	evaluator := promotion.NewEvaluator(promotionRepo)

	orderRepo := order.NewRepository(pg.Pool)
	orderSvc := order.NewService(orderRepo)

	pricingEngine := pricing.NewEngine(catalogRepo)
	checkoutSvc := checkout.NewService(pricingEngine, evaluator, orderSvc)

	analyticsRepo := analytics.NewRepository(pg.Pool)
	analyticsSvc := analytics.NewService(orderSvc, analyticsRepo)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authRepo := auth.NewRepository(pg.Pool)
	authSvc := auth.NewService(authRepo, tokens)

	router := transport.NewRouter(authSvc, transport.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogSvc),
		Checkout: handler.NewCheckoutHandler(checkoutSvc),
		Auth:     handler.NewAuthHandler(authSvc, cfg.Auth.TokenTTL, cfg.Auth.SetupToken, false),
		Account:  handler.NewAccountHandler(orderSvc),
		Admin:    handler.NewAdminHandler(catalogSvc, promotionRepo, orderSvc, analyticsSvc),
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.App.Port).Msg("Could not listen")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}

	pg.Close()

	log.Info().Msg("Storefront stopped gracefully.")
}
