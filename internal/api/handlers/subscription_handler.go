package handlers

import (
	"errors"

	"facturas/internal/dto"
	"facturas/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
	logger        *zap.Logger
}

func NewSubscriptionHandler(subscriptions *service.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Subscribe godoc
// @Summary Subscribe the authenticated user to a plan
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body dto.CreateSubscriptionRequest true "Subscription data"
// @Security Bearer
// @Success 201 {object} models.Subscription
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Subscribe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	sub, err := h.subscriptions.Subscribe(c.Context(), user.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Plan not found")
		case errors.Is(err, service.ErrActiveSubscriptionExists):
			return errorJSON(c, fiber.StatusConflict, "User already has an active subscription")
		}
		h.logger.Error("Subscription failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create subscription")
	}

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetActive godoc
// @Summary Get the authenticated user's active subscription
// @Tags subscriptions
// @Produce json
// @Security Bearer
// @Success 200 {object} models.Subscription
// @Failure 404 {object} map[string]string
// @Router /subscriptions/active [get]
func (h *SubscriptionHandler) GetActive(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	sub, err := h.subscriptions.GetActive(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "No active subscription")
		}
		h.logger.Error("Subscription lookup failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get subscription")
	}

	return c.JSON(sub)
}

// GetSubscription godoc
// @Summary Get a subscription
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Security Bearer
// @Success 200 {object} models.Subscription
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid subscription ID")
	}

	sub, err := h.subscriptions.GetSubscription(c.Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Subscription not found")
		case errors.Is(err, service.ErrSubscriptionAccessDenied):
			return errorJSON(c, fiber.StatusForbidden, "Subscription belongs to another user")
		}
		h.logger.Error("Subscription lookup failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get subscription")
	}

	return c.JSON(sub)
}

// ListSubscriptions godoc
// @Summary List all subscriptions (admin)
// @Tags subscriptions
// @Produce json
// @Security Bearer
// @Success 200 {array} models.Subscription
// @Failure 403 {object} map[string]string
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *fiber.Ctx) error {
	subs, err := h.subscriptions.ListSubscriptions(c.Context())
	if err != nil {
		h.logger.Error("Subscription listing failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list subscriptions")
	}
	return c.JSON(subs)
}

// UpdateSubscription godoc
// @Summary Update a subscription (owner or admin)
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param request body dto.UpdateSubscriptionRequest true "Subscription fields"
// @Security Bearer
// @Success 200 {object} models.Subscription
// @Failure 404 {object} map[string]string
// @Router /subscriptions/{id} [put]
func (h *SubscriptionHandler) UpdateSubscription(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid subscription ID")
	}

	var req dto.UpdateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	sub, err := h.subscriptions.UpdateSubscription(c.Context(), user, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Subscription not found")
		case errors.Is(err, service.ErrSubscriptionAccessDenied):
			return errorJSON(c, fiber.StatusForbidden, "Forbidden")
		case errors.Is(err, service.ErrPlanNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Plan not found")
		}
		h.logger.Error("Subscription update failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update subscription")
	}

	return c.JSON(sub)
}

// Cancel godoc
// @Summary Cancel a subscription
// @Tags subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid subscription ID")
	}

	if err := h.subscriptions.Cancel(c.Context(), user, id); err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Subscription not found")
		case errors.Is(err, service.ErrSubscriptionAccessDenied):
			return errorJSON(c, fiber.StatusForbidden, "Subscription belongs to another user")
		case errors.Is(err, service.ErrSubscriptionNotActive):
			return errorJSON(c, fiber.StatusConflict, "Subscription is not active")
		}
		h.logger.Error("Subscription cancel failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to cancel subscription")
	}

	return c.JSON(fiber.Map{"message": "Subscription canceled"})
}
