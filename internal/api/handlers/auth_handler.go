package handlers

import (
	"errors"

	"facturas/internal/dto"
	"facturas/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return errorJSON(c, fiber.StatusBadRequest, "email, password and role are required")
	}

	resp, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			return errorJSON(c, fiber.StatusConflict, "User already exists")
		case errors.Is(err, service.ErrInvalidRole):
			return errorJSON(c, fiber.StatusBadRequest, "Invalid role")
		}
		h.logger.Error("Registration failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to register user")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login godoc
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		h.logger.Error("Login failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to log in")
	}

	return c.JSON(resp)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} map[string]string
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
		}
		h.logger.Error("Token refresh failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to refresh token")
	}

	return c.JSON(resp)
}

// ForgotPassword godoc
// @Summary Request a password reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	token, err := h.authService.ForgotPassword(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("Forgot-password failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to issue reset token")
	}

	return c.JSON(fiber.Map{"reset_token": token})
}

// ResetPassword godoc
// @Summary Reset a password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.NewPassword == "" {
		return errorJSON(c, fiber.StatusBadRequest, "newPassword is required")
	}

	if err := h.authService.ResetPassword(c.Context(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid or expired reset token")
		}
		h.logger.Error("Password reset failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to reset password")
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

// ChangePassword godoc
// @Summary Change the authenticated user's password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.NewPassword == "" {
		return errorJSON(c, fiber.StatusBadRequest, "newPassword is required")
	}

	if err := h.authService.ChangePassword(c.Context(), user.ID, &req); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, "Current password is incorrect")
		}
		h.logger.Error("Password change failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to change password")
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string
// @Router /users/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	profile, err := h.authService.GetProfile(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("Profile lookup failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to load profile")
	}

	return c.JSON(profile)
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Security Bearer
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string
// @Router /users/me [put]
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	profile, err := h.authService.UpdateProfile(c.Context(), user.ID, &req)
	if err != nil {
		h.logger.Error("Profile update failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(profile)
}
