package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	archiveRouter "github.com/cargodesk/cargodesk/internal/archive/router"
	archiveService "github.com/cargodesk/cargodesk/internal/archive/service"
	"github.com/cargodesk/cargodesk/internal/auth"
	"github.com/cargodesk/cargodesk/internal/config"
	costingModel "github.com/cargodesk/cargodesk/internal/costing/model"
	costingRouter "github.com/cargodesk/cargodesk/internal/costing/router"
	costingService "github.com/cargodesk/cargodesk/internal/costing/service"
	"github.com/cargodesk/cargodesk/internal/database"
	"github.com/cargodesk/cargodesk/internal/middleware"
	quoteModel "github.com/cargodesk/cargodesk/internal/quotes/model"
	quoteRouter "github.com/cargodesk/cargodesk/internal/quotes/router"
	quoteService "github.com/cargodesk/cargodesk/internal/quotes/service"
	shipmentModel "github.com/cargodesk/cargodesk/internal/shipment/model"
	shipmentRouter "github.com/cargodesk/cargodesk/internal/shipment/router"
	shipmentService "github.com/cargodesk/cargodesk/internal/shipment/service"
	"github.com/cargodesk/cargodesk/internal/storage/drivers"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"db_sslmode", cfg.Database.SSLMode,
		"storage_type", cfg.Storage.Type,
	)

	slog.Info("server configuration",
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Perform health check
	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	// Keep the schema current with the models
	err = db.AutoMigrate(
		&auth.StaffContext{},
		&shipmentModel.Shipment{},
		&costingModel.CostEstimate{},
		&costingModel.Supplier{},
		&costingModel.ExchangeRate{},
		&quoteModel.QuoteDocument{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}

	// Initialize blob storage
	ctx := context.Background()
	store, err := drivers.NewFromConfig(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	// Asynq client for background jobs
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := queueClient.Close(); err != nil {
			slog.Error("failed to close queue client", "error", err)
		}
	}()

	// Services
	authService := auth.NewAuthService(db)
	shipments := shipmentService.NewShipmentService(db)
	archives := archiveService.NewArchiveService(store)
	costing := costingService.NewCostingService(db, queueClient, cfg.Costing)
	rates := costingService.NewExchangeRateService(db, cfg.ExchangeRate)
	quotes := quoteService.NewQuoteService(db, store, queueClient)

	// Set up HTTP routes; mutating endpoints require a valid staff token
	tokenExtractor := auth.NewTokenExtractor()
	guard := auth.RequireAuth(authService, tokenExtractor)

	mux := http.NewServeMux()
	shipmentRouter.NewShipmentRouter(shipments).Register(mux, guard)
	archiveRouter.NewArchiveRouter(archives).Register(mux, guard)
	costingRouter.NewCostingRouter(costing, rates).Register(mux, guard)
	quoteRouter.NewQuoteRouter(quotes).Register(mux, guard)

	// Wrap handler with auth and CORS middleware
	handler := auth.Middleware(authService, tokenExtractor)(mux)
	handler = middleware.CORS(&cfg.CORS)(handler)

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	// Create a context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown of HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
