package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facturas/internal/dto"
	"facturas/internal/models"
	"facturas/pkg/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// UserStore is the user persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

// SubscriptionLookup resolves the active subscription of a user.
type SubscriptionLookup interface {
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
}

// PlanLookup resolves plans by id or name.
type PlanLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetByName(ctx context.Context, name string) (*models.Plan, error)
}

type AuthService struct {
	users         UserStore
	subscriptions SubscriptionLookup
	plans         PlanLookup
	jwtManager    *auth.JWTManager
	logger        *zap.Logger
}

func NewAuthService(
	users UserStore,
	subscriptions SubscriptionLookup,
	plans PlanLookup,
	jwtManager *auth.JWTManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		subscriptions: subscriptions,
		plans:         plans,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if !models.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, req.Role)
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Password:  hashed,
		Role:      models.Role(req.Role),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	plan, err := s.effectivePlan(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	resp.Plan = plan

	return resp, nil
}

// effectivePlan is the plan behind the user's active subscription, or the Free
// plan when no subscription exists. A missing Free plan yields nil.
func (s *AuthService) effectivePlan(ctx context.Context, userID uuid.UUID) (*models.Plan, error) {
	sub, err := s.subscriptions.GetActiveByUserID(ctx, userID)
	if err == nil {
		plan, err := s.plans.GetByID(ctx, sub.PlanID)
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to get plan: %w", err)
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	plan, err := s.plans.GetByName(ctx, "Free")
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("Free plan is not seeded", zap.String("user_id", userID.String()))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.issueTokens(user)
}

// ForgotPassword issues a short-lived reset token for the account. The token
// is returned to the caller; mail delivery is out of scope here.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.jwtManager.GenerateResetToken(user.ID.String())
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	s.logger.Info("Password reset token issued", zap.String("user_id", user.ID.String()))
	return token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	claims, err := s.jwtManager.ValidateResetToken(req.Token)
	if err != nil {
		return ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password reset completed", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.Password) {
		return ErrInvalidCredentials
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, userID, hashed)
}

// ResolveAuthUser loads the request identity for a validated token: the user
// plus the plan behind their active subscription. A user with no active
// subscription gets a nil plan; the quota gate rejects them later.
func (s *AuthService) ResolveAuthUser(ctx context.Context, userID uuid.UUID) (*models.AuthUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	authUser := &models.AuthUser{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}

	sub, err := s.subscriptions.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authUser, nil
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	plan, err := s.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("Active subscription points at a missing plan",
				zap.String("subscription_id", sub.ID.String()),
				zap.String("plan_id", sub.PlanID.String()),
			)
			return authUser, nil
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	authUser.Plan = plan
	return authUser, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if len(fields) > 0 {
		if err := s.users.UpdateProfile(ctx, userID, fields); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *AuthService) issueTokens(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.GetTokenDuration().Seconds()),
		User: dto.UserResponse{
			ID:    user.ID.String(),
			Email: user.Email,
			Role:  string(user.Role),
		},
	}, nil
}
