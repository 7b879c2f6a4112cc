package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calikart/internal/auth"
	"calikart/internal/config"
	"calikart/internal/database"
	"calikart/internal/handler"
	"calikart/internal/mail"
	"calikart/internal/repository"
	"calikart/internal/router"
	"calikart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting calikart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	basketRepo := repository.NewBasketRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	codeRepo := repository.NewCodeRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	notificationRepo := repository.NewNotificationRepository(pool, logger)

	// Outbound mail: SMTP when configured, otherwise log-only
	var sender mail.Sender
	if cfg.SMTP.Enabled() {
		sender = mail.NewSMTPSender(cfg.SMTP, logger)
	} else {
		sender = mail.NewNopSender(logger)
		logger.Info().Msg("SMTP not configured, outbound mail disabled")
	}

	// Session credentials
	sessions := auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	basketService := service.NewBasketService(basketRepo, productService, sender, cfg.SMTP.ShopInbox, logger)
	authService := service.NewAuthService(codeRepo, userRepo, basketRepo, sender, sessions, service.AuthConfig{
		OTPTTL:    cfg.Auth.OTPTTL,
		OTPLength: cfg.Auth.OTPLength,
	}, logger)
	orderService := service.NewOrderService(orderRepo, basketRepo, notificationRepo, sender, service.PricingConfig{
		TaxRate:      cfg.Pricing.TaxRate,
		ShippingCost: cfg.Pricing.ShippingCost,
	}, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	basketHandler := handler.NewBasketHandler(basketService, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Initialize router
	mux := router.New(productHandler, basketHandler, authHandler, orderHandler, sessions, cfg.Auth.AdminAPIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
