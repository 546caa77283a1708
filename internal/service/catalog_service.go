package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facturas/internal/dto"
	"facturas/internal/models"
	"facturas/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTypeNotFound     = errors.New("invoice type not found")
	ErrNameTaken        = errors.New("name already in use")
)

// PlanStore is the plan persistence surface.
type PlanStore interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetByName(ctx context.Context, name string) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryTypeStore is the category and invoice-type persistence surface.
type CategoryTypeStore interface {
	CreateCategory(ctx context.Context, cat *models.Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateType(ctx context.Context, t *models.InvoiceType) error
	GetTypeByID(ctx context.Context, id uuid.UUID) (*models.InvoiceType, error)
	GetTypeByName(ctx context.Context, name string) (*models.InvoiceType, error)
	ListTypes(ctx context.Context) ([]*models.InvoiceType, error)
}

// CatalogService maintains the shared reference data: plans, categories and
// invoice types. Mutations are admin-only; the guard lives in the router.
type CatalogService struct {
	plans   PlanStore
	catalog CategoryTypeStore
	logger  *zap.Logger
}

func NewCatalogService(plans PlanStore, catalog CategoryTypeStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		plans:   plans,
		catalog: catalog,
		logger:  logger,
	}
}

func (s *CatalogService) CreatePlan(ctx context.Context, req *dto.CreatePlanRequest) (*models.Plan, error) {
	if _, err := s.plans.GetByName(ctx, req.Name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check plan name: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "AOA"
	}

	now := time.Now().UTC()
	plan := &models.Plan{
		ID:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     currency,
		InvoiceLimit: req.InvoiceLimit,
		Features:     req.Features,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.logger.Info("Plan created", zap.String("plan_id", plan.ID.String()), zap.String("name", plan.Name))
	return plan, nil
}

func (s *CatalogService) GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

func (s *CatalogService) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	return s.plans.List(ctx)
}

func (s *CatalogService) UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.UpdatePlanRequest) (*models.Plan, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Currency != nil {
		fields["currency"] = *req.Currency
	}
	if req.InvoiceLimit != nil {
		fields["invoice_limit"] = *req.InvoiceLimit
	}
	if req.Features != nil {
		fields["features"] = *req.Features
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) > 0 {
		if err := s.plans.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, fmt.Errorf("failed to update plan: %w", err)
		}
	}

	return s.GetPlan(ctx, id)
}

func (s *CatalogService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	if err := s.plans.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	s.logger.Info("Plan deleted", zap.String("plan_id", id.String()))
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*models.Category, error) {
	if _, err := s.catalog.GetCategoryByName(ctx, req.Name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}

	now := time.Now().UTC()
	cat := &models.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		ColorHex:  req.ColorHex,
		Icon:      req.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.catalog.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", zap.String("category_id", cat.ID.String()), zap.String("name", cat.Name))
	return cat, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	cat, err := s.catalog.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return cat, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.catalog.ListCategories(ctx)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.ColorHex != nil {
		fields["color_hex"] = *req.ColorHex
	}
	if req.Icon != nil {
		fields["icon"] = *req.Icon
	}

	if len(fields) > 0 {
		if err := s.catalog.UpdateCategory(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	return s.GetCategory(ctx, id)
}

// DeleteCategory marks the category as deleted. Invoices filed under it keep
// their reference.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.catalog.SoftDeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.logger.Info("Category soft-deleted", zap.String("category_id", id.String()))
	return nil
}

func (s *CatalogService) CreateType(ctx context.Context, req *dto.CreateTypeRequest) (*models.InvoiceType, error) {
	if _, err := s.catalog.GetTypeByName(ctx, req.Name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check type name: %w", err)
	}

	t := &models.InvoiceType{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.catalog.CreateType(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create invoice type: %w", err)
	}

	s.logger.Info("Invoice type created", zap.String("type_id", t.ID.String()), zap.String("name", t.Name))
	return t, nil
}

func (s *CatalogService) GetType(ctx context.Context, id uuid.UUID) (*models.InvoiceType, error) {
	t, err := s.catalog.GetTypeByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTypeNotFound
		}
		return nil, fmt.Errorf("failed to get invoice type: %w", err)
	}
	return t, nil
}

func (s *CatalogService) ListTypes(ctx context.Context) ([]*models.InvoiceType, error) {
	return s.catalog.ListTypes(ctx)
}
