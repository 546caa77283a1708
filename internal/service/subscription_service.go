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
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrActiveSubscriptionExists = errors.New("user already has an active subscription")
	ErrSubscriptionNotActive    = errors.New("subscription is not active")
	ErrSubscriptionAccessDenied = errors.New("subscription belongs to another user")
)

// SubscriptionStore is the subscription persistence surface.
type SubscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	List(ctx context.Context) ([]*models.Subscription, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error
}

// SubscriptionService attaches users to plans. A user holds at most one
// ACTIVE subscription at a time.
type SubscriptionService struct {
	subscriptions SubscriptionStore
	plans         PlanLookup
	logger        *zap.Logger
}

func NewSubscriptionService(subscriptions SubscriptionStore, plans PlanLookup, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		plans:         plans,
		logger:        logger,
	}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, req *dto.CreateSubscriptionRequest) (*models.Subscription, error) {
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		return nil, ErrPlanNotFound
	}

	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if _, err := s.subscriptions.GetActiveByUserID(ctx, userID); err == nil {
		return nil, ErrActiveSubscriptionExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check active subscription: %w", err)
	}

	now := time.Now().UTC()
	sub := &models.Subscription{
		ID:            uuid.New(),
		UserID:        userID,
		PlanID:        planID,
		Status:        models.SubscriptionActive,
		PaymentMethod: req.PaymentMethod,
		ExternalRef:   req.ExternalRef,
		EndDate:       req.EndDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.Info("Subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("plan_id", planID.String()),
	)
	return sub, nil
}

// GetSubscription returns the subscription when the caller owns it or is an
// admin.
func (s *SubscriptionService) GetSubscription(ctx context.Context, caller *models.AuthUser, id uuid.UUID) (*models.Subscription, error) {
	sub, err := s.subscriptions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	if sub.UserID != caller.ID && caller.Role != models.RoleAdmin {
		return nil, ErrSubscriptionAccessDenied
	}
	return sub, nil
}

// GetActive returns the caller's current ACTIVE subscription, or
// ErrSubscriptionNotFound when there is none.
func (s *SubscriptionService) GetActive(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.subscriptions.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	return s.subscriptions.List(ctx)
}

// UpdateSubscription applies the non-nil request fields. Owners may update
// their own subscription; admins may update any.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, caller *models.AuthUser, id uuid.UUID, req *dto.UpdateSubscriptionRequest) (*models.Subscription, error) {
	if _, err := s.GetSubscription(ctx, caller, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.PlanID != nil {
		planID, err := uuid.Parse(*req.PlanID)
		if err != nil {
			return nil, ErrPlanNotFound
		}
		if _, err := s.plans.GetByID(ctx, planID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrPlanNotFound
			}
			return nil, fmt.Errorf("failed to get plan: %w", err)
		}
		fields["plan_id"] = planID
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.EndDate != nil {
		fields["end_date"] = *req.EndDate
	}
	if req.RenewsAt != nil {
		fields["renews_at"] = *req.RenewsAt
	}
	if req.PaymentMethod != nil {
		fields["payment_method"] = *req.PaymentMethod
	}

	if len(fields) > 0 {
		if err := s.subscriptions.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrSubscriptionNotFound
			}
			return nil, fmt.Errorf("failed to update subscription: %w", err)
		}
	}

	sub, err := s.subscriptions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// Cancel moves the caller's subscription to CANCELED. Only an ACTIVE
// subscription can be canceled; owners and admins may cancel.
func (s *SubscriptionService) Cancel(ctx context.Context, caller *models.AuthUser, id uuid.UUID) error {
	sub, err := s.GetSubscription(ctx, caller, id)
	if err != nil {
		return err
	}

	if sub.Status != models.SubscriptionActive {
		return ErrSubscriptionNotActive
	}

	if err := s.subscriptions.Cancel(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.logger.Info("Subscription canceled",
		zap.String("subscription_id", id.String()),
		zap.String("user_id", sub.UserID.String()),
	)
	return nil
}
