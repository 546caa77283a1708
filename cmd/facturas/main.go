package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"facturas/internal/api"
	"facturas/internal/api/handlers"
	"facturas/internal/repository"
	"facturas/internal/service"
	"facturas/pkg/auth"
	"facturas/pkg/config"
	"facturas/pkg/logger"
	"facturas/pkg/postgres"

	"go.uber.org/zap"
)

// @title Facturas API
// @version 1.0
// @description Invoice management backend with OCR and LLM-based data extraction

// @contact.name API Support
// @contact.email support@facturas.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting facturas service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	planRepo := repository.NewPlanRepository(db, appLogger)
	catalogRepo := repository.NewCatalogRepository(db, appLogger)
	subscriptionRepo := repository.NewSubscriptionRepository(db, appLogger)
	invoiceRepo := repository.NewInvoiceRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.SecretKey,
		cfg.JWT.ResetSecret,
		cfg.JWT.Expiration,
		cfg.JWT.RefreshExp,
		cfg.JWT.ResetExp,
	)

	// Initialize services
	authService := service.NewAuthService(userRepo, subscriptionRepo, planRepo, jwtManager, appLogger)

	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	ocrService := service.NewOCRService(&cfg.OCR, appLogger)
	quotaGate := service.NewQuotaGate(invoiceRepo, appLogger)

	invoiceService := service.NewInvoiceService(
		quotaGate,
		ocrService,
		llmService,
		invoiceRepo,
		catalogRepo,
		cfg.OCR.Timeout,
		cfg.LLM.Timeout,
		appLogger,
	)
	catalogService := service.NewCatalogService(planRepo, catalogRepo, appLogger)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, planRepo, appLogger)
	dashboardService := service.NewDashboardService(invoiceRepo, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, appLogger)
	catalogHandler := handlers.NewCatalogHandler(catalogService, appLogger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, appLogger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, appLogger)

	// Setup router
	app := api.SetupRouter(
		authHandler,
		invoiceHandler,
		catalogHandler,
		subscriptionHandler,
		dashboardHandler,
		jwtManager,
		authService,
		appLogger,
	)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
