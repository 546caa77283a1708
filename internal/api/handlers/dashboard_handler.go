package handlers

import (
	"facturas/internal/models"
	"facturas/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// targetUser resolves the :userId path parameter and checks the caller may
// read that user's dashboard (self, or admin for anyone).
func (h *DashboardHandler) targetUser(c *fiber.Ctx) (uuid.UUID, error) {
	user, err := currentUser(c)
	if err != nil {
		return uuid.Nil, errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	target, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return uuid.Nil, errorJSON(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	if target != user.ID && user.Role != models.RoleAdmin {
		return uuid.Nil, errorJSON(c, fiber.StatusForbidden, "Cannot access another user's dashboard")
	}

	return target, nil
}

// Summary godoc
// @Summary Income, expense and balance totals
// @Tags dashboard
// @Produce json
// @Param userId path string true "User ID"
// @Security Bearer
// @Success 200 {object} dto.DashboardSummary
// @Failure 403 {object} map[string]string
// @Router /dashboard/{userId}/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	target, err := h.targetUser(c)
	if err != nil {
		return err
	}

	summary, err := h.dashboard.Summary(c.Context(), target)
	if err != nil {
		h.logger.Error("Dashboard summary failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to build summary")
	}
	return c.JSON(summary)
}

// ExpensesByCategory godoc
// @Summary Expense totals grouped by category
// @Tags dashboard
// @Produce json
// @Param userId path string true "User ID"
// @Security Bearer
// @Success 200 {array} dto.CategoryExpense
// @Failure 403 {object} map[string]string
// @Router /dashboard/{userId}/expenses-by-category [get]
func (h *DashboardHandler) ExpensesByCategory(c *fiber.Ctx) error {
	target, err := h.targetUser(c)
	if err != nil {
		return err
	}

	expenses, err := h.dashboard.ExpensesByCategory(c.Context(), target)
	if err != nil {
		h.logger.Error("Dashboard category aggregation failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to aggregate expenses")
	}
	return c.JSON(expenses)
}

// MonthlyHistory godoc
// @Summary Monthly income and expense history
// @Tags dashboard
// @Produce json
// @Param userId path string true "User ID"
// @Security Bearer
// @Success 200 {array} dto.MonthlyEntry
// @Failure 403 {object} map[string]string
// @Router /dashboard/{userId}/monthly-history [get]
func (h *DashboardHandler) MonthlyHistory(c *fiber.Ctx) error {
	target, err := h.targetUser(c)
	if err != nil {
		return err
	}

	history, err := h.dashboard.MonthlyHistory(c.Context(), target)
	if err != nil {
		h.logger.Error("Dashboard history aggregation failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to build history")
	}
	return c.JSON(history)
}
