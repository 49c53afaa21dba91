package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akowalczyk/backoffice/internal/api/rest"
	"github.com/akowalczyk/backoffice/internal/api/rest/handler"
	"github.com/akowalczyk/backoffice/internal/api/rest/middleware"
	"github.com/akowalczyk/backoffice/internal/config"
	repository "github.com/akowalczyk/backoffice/internal/repository/postgres"
	"github.com/akowalczyk/backoffice/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("api_starting")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config_load_failed", "error", err)
		os.Exit(1)
	}

	// Database connection
	dbPool, err := initializeDatabase(cfg.DB.DSN())
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Repositories
	orderRepo := repository.NewOrderRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	supplierRepo := repository.NewSupplierRepository(dbPool)
	userRepo := repository.NewUserRepository(dbPool)

	// Services
	orderService := service.NewOrderService(orderRepo, productRepo, logger)

	// JWT middleware
	jwtMiddleware := middleware.NewJWTAuthMiddleware(middleware.JWTConfig{
		Secret:    []byte(cfg.JWT.Secret),
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		ClockSkew: cfg.JWT.ClockSkew,
	})

	// REST handlers
	identityHandler := handler.NewIdentityHandler(
		userRepo,
		&handler.TokenConfig{
			Secret:   []byte(cfg.JWT.Secret),
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
			TokenTTL: cfg.JWT.TokenTTL,
		},
		logger,
	)

	router := rest.NewRouter(&rest.RouterConfig{
		Orders:     handler.NewOrderHandler(orderService, logger),
		Products:   handler.NewProductHandler(productRepo, logger),
		Categories: handler.NewCategoryHandler(categoryRepo, logger),
		Suppliers:  handler.NewSupplierHandler(supplierRepo, logger),
		Identity:   identityHandler,
		Auth:       jwtMiddleware,
	})

	// HTTP server with sensible timeouts
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("api_listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("api_serve_failed", "error", err)
		os.Exit(1)
	}
}

// initializeDatabase creates a pool and verifies connectivity.
func initializeDatabase(connectionString string) (*pgxpool.Pool, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("create_pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping_db: %w", err)
	}

	return pool, nil
}
