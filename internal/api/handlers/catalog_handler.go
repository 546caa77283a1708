package handlers

import (
	"errors"

	"facturas/internal/dto"
	"facturas/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListPlans godoc
// @Summary List subscription plans
// @Tags plans
// @Produce json
// @Success 200 {array} models.Plan
// @Router /plans [get]
func (h *CatalogHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.catalog.ListPlans(c.Context())
	if err != nil {
		h.logger.Error("Plan listing failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list plans")
	}
	return c.JSON(plans)
}

// GetPlan godoc
// @Summary Get a plan
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} models.Plan
// @Failure 404 {object} map[string]string
// @Router /plans/{id} [get]
func (h *CatalogHandler) GetPlan(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid plan ID")
	}

	plan, err := h.catalog.GetPlan(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Plan not found")
		}
		h.logger.Error("Plan lookup failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get plan")
	}
	return c.JSON(plan)
}

// CreatePlan godoc
// @Summary Create a plan (admin)
// @Tags plans
// @Accept json
// @Produce json
// @Param request body dto.CreatePlanRequest true "Plan data"
// @Security Bearer
// @Success 201 {object} models.Plan
// @Failure 409 {object} map[string]string
// @Router /plans [post]
func (h *CatalogHandler) CreatePlan(c *fiber.Ctx) error {
	var req dto.CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" || req.InvoiceLimit <= 0 {
		return errorJSON(c, fiber.StatusBadRequest, "name and a positive invoiceLimit are required")
	}

	plan, err := h.catalog.CreatePlan(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNameTaken) {
			return errorJSON(c, fiber.StatusConflict, "Plan name already in use")
		}
		h.logger.Error("Plan creation failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create plan")
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// UpdatePlan godoc
// @Summary Update a plan (admin)
// @Tags plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body dto.UpdatePlanRequest true "Plan fields"
// @Security Bearer
// @Success 200 {object} models.Plan
// @Failure 404 {object} map[string]string
// @Router /plans/{id} [put]
func (h *CatalogHandler) UpdatePlan(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid plan ID")
	}

	var req dto.UpdatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	plan, err := h.catalog.UpdatePlan(c.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Plan not found")
		}
		h.logger.Error("Plan update failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update plan")
	}
	return c.JSON(plan)
}

// DeletePlan godoc
// @Summary Delete a plan (admin)
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID"
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /plans/{id} [delete]
func (h *CatalogHandler) DeletePlan(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid plan ID")
	}

	if err := h.catalog.DeletePlan(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Plan not found")
		}
		h.logger.Error("Plan deletion failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete plan")
	}
	return c.JSON(fiber.Map{"message": "Plan deleted"})
}

// ListCategories godoc
// @Summary List invoice categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.catalog.ListCategories(c.Context())
	if err != nil {
		h.logger.Error("Category listing failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list categories")
	}
	return c.JSON(cats)
}

// GetCategory godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.Category
// @Failure 404 {object} map[string]string
// @Router /categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	cat, err := h.catalog.GetCategory(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Category not found")
		}
		h.logger.Error("Category lookup failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get category")
	}
	return c.JSON(cat)
}

// CreateCategory godoc
// @Summary Create a category (admin)
// @Tags categories
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category data"
// @Security Bearer
// @Success 201 {object} models.Category
// @Failure 409 {object} map[string]string
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return errorJSON(c, fiber.StatusBadRequest, "name is required")
	}

	cat, err := h.catalog.CreateCategory(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNameTaken) {
			return errorJSON(c, fiber.StatusConflict, "Category name already in use")
		}
		h.logger.Error("Category creation failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create category")
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// UpdateCategory godoc
// @Summary Update a category (admin)
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body dto.UpdateCategoryRequest true "Category fields"
// @Security Bearer
// @Success 200 {object} models.Category
// @Failure 404 {object} map[string]string
// @Router /categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	var req dto.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	cat, err := h.catalog.UpdateCategory(c.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Category not found")
		}
		h.logger.Error("Category update failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update category")
	}
	return c.JSON(cat)
}

// DeleteCategory godoc
// @Summary Soft-delete a category (admin)
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid category ID")
	}

	if err := h.catalog.DeleteCategory(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Category not found")
		}
		h.logger.Error("Category deletion failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete category")
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// ListTypes godoc
// @Summary List invoice types
// @Tags types
// @Produce json
// @Success 200 {array} models.InvoiceType
// @Router /types [get]
func (h *CatalogHandler) ListTypes(c *fiber.Ctx) error {
	types, err := h.catalog.ListTypes(c.Context())
	if err != nil {
		h.logger.Error("Type listing failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list invoice types")
	}
	return c.JSON(types)
}

// GetType godoc
// @Summary Get an invoice type by ID
// @Tags types
// @Produce json
// @Param id path string true "Type ID"
// @Success 200 {object} models.InvoiceType
// @Failure 404 {object} map[string]string
// @Router /types/{id} [get]
func (h *CatalogHandler) GetType(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid type ID")
	}

	t, err := h.catalog.GetType(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTypeNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Invoice type not found")
		}
		h.logger.Error("Type lookup failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get invoice type")
	}
	return c.JSON(t)
}

// CreateType godoc
// @Summary Create an invoice type (admin)
// @Tags types
// @Accept json
// @Produce json
// @Param request body dto.CreateTypeRequest true "Type data"
// @Security Bearer
// @Success 201 {object} models.InvoiceType
// @Failure 409 {object} map[string]string
// @Router /types [post]
func (h *CatalogHandler) CreateType(c *fiber.Ctx) error {
	var req dto.CreateTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return errorJSON(c, fiber.StatusBadRequest, "name is required")
	}

	t, err := h.catalog.CreateType(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNameTaken) {
			return errorJSON(c, fiber.StatusConflict, "Type name already in use")
		}
		h.logger.Error("Type creation failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create invoice type")
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}
