package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"facturas/internal/models"
	"facturas/internal/repository"
	"facturas/pkg/config"
	"facturas/pkg/logger"
	"facturas/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	planRepo := repository.NewPlanRepository(db, appLogger)
	catalogRepo := repository.NewCatalogRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	if err := seedPlans(ctx, planRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed plans", zap.Error(err))
	}
	if err := seedCategories(ctx, catalogRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed categories", zap.Error(err))
	}
	if err := seedTypes(ctx, catalogRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed invoice types", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func seedPlans(ctx context.Context, repo *repository.PlanRepository, appLogger *zap.Logger) error {
	plans := []models.Plan{
		{
			Name:         "Free",
			Description:  "Plano gratuito para começar",
			Price:        0,
			Currency:     "AOA",
			InvoiceLimit: 50,
			Features:     json.RawMessage(`["Até 50 facturas", "Extração automática de dados"]`),
		},
		{
			Name:         "Premium",
			Description:  "Plano para profissionais",
			Price:        14990,
			Currency:     "AOA",
			InvoiceLimit: 500,
			Features:     json.RawMessage(`["Até 500 facturas", "Extração automática de dados", "Dashboard completo"]`),
		},
		{
			Name:         "Pro",
			Description:  "Plano para empresas",
			Price:        49990,
			Currency:     "AOA",
			InvoiceLimit: 5000,
			Features:     json.RawMessage(`["Até 5000 facturas", "Extração automática de dados", "Dashboard completo", "Suporte prioritário"]`),
		},
	}

	for _, p := range plans {
		if _, err := repo.GetByName(ctx, p.Name); err == nil {
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		now := time.Now().UTC()
		p.ID = uuid.New()
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := repo.Create(ctx, &p); err != nil {
			return err
		}
		appLogger.Info("Seeded plan", zap.String("name", p.Name))
	}
	return nil
}

func seedCategories(ctx context.Context, repo *repository.CatalogRepository, appLogger *zap.Logger) error {
	categories := []models.Category{
		{Name: "Transferência", Icon: "credit-card", ColorHex: "#4A90E2"},
		{Name: "Depósito", Icon: "money-check", ColorHex: "#50E3C2"},
		{Name: "Utilitários", Icon: "bolt", ColorHex: "#F5A623"},
		{Name: "Moradia", Icon: "home", ColorHex: "#D0021B"},
		{Name: "Alimentação", Icon: "utensils", ColorHex: "#BD10E0"},
		{Name: "Assinatura", Icon: "tv", ColorHex: "#7ED321"},
		{Name: "Saúde", Icon: "dumbbell", ColorHex: "#417505"},
		{Name: "Mobilidade", Icon: "bus", ColorHex: "#F8E71C"},
	}

	for _, cat := range categories {
		if _, err := repo.GetCategoryByName(ctx, cat.Name); err == nil {
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		now := time.Now().UTC()
		cat.ID = uuid.New()
		cat.CreatedAt = now
		cat.UpdatedAt = now
		if err := repo.CreateCategory(ctx, &cat); err != nil {
			return err
		}
		appLogger.Info("Seeded category", zap.String("name", cat.Name))
	}
	return nil
}

func seedTypes(ctx context.Context, repo *repository.CatalogRepository, appLogger *zap.Logger) error {
	for _, name := range []string{models.TypeIncome, models.TypeExpense} {
		if _, err := repo.GetTypeByName(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		t := models.InvoiceType{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateType(ctx, &t); err != nil {
			return err
		}
		appLogger.Info("Seeded invoice type", zap.String("name", name))
	}
	return nil
}
