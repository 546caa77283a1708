package service

import (
	"context"
	"testing"
	"time"

	"facturas/internal/dto"
	"facturas/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSubscriptionStore struct {
	mock.Mock
}

func (m *mockSubscriptionStore) Create(ctx context.Context, sub *models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if s := args.Get(0); s != nil {
		return s.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubscriptionStore) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubscriptionStore) List(ctx context.Context) ([]*models.Subscription, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.([]*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubscriptionStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *mockSubscriptionStore) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	plan := &models.Plan{ID: uuid.New(), Name: "Premium", InvoiceLimit: 500}

	t.Run("happy path", func(t *testing.T) {
		store := new(mockSubscriptionStore)
		plans := new(mockPlanLookup)
		plans.On("GetByID", ctx, plan.ID).Return(plan, nil)
		store.On("GetActiveByUserID", ctx, userID).Return(nil, pgx.ErrNoRows)
		store.On("Create", ctx, mock.MatchedBy(func(s *models.Subscription) bool {
			return s.UserID == userID && s.PlanID == plan.ID && s.Status == models.SubscriptionActive
		})).Return(nil)

		svc := NewSubscriptionService(store, plans, zap.NewNop())
		sub, err := svc.Subscribe(ctx, userID, &dto.CreateSubscriptionRequest{PlanID: plan.ID.String()})

		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionActive, sub.Status)
		store.AssertExpectations(t)
	})

	t.Run("second active subscription is refused", func(t *testing.T) {
		store := new(mockSubscriptionStore)
		plans := new(mockPlanLookup)
		plans.On("GetByID", ctx, plan.ID).Return(plan, nil)
		store.On("GetActiveByUserID", ctx, userID).Return(&models.Subscription{
			ID: uuid.New(), UserID: userID, Status: models.SubscriptionActive,
		}, nil)

		svc := NewSubscriptionService(store, plans, zap.NewNop())
		_, err := svc.Subscribe(ctx, userID, &dto.CreateSubscriptionRequest{PlanID: plan.ID.String()})

		assert.ErrorIs(t, err, ErrActiveSubscriptionExists)
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown plan", func(t *testing.T) {
		store := new(mockSubscriptionStore)
		plans := new(mockPlanLookup)
		plans.On("GetByID", ctx, plan.ID).Return(nil, pgx.ErrNoRows)

		svc := NewSubscriptionService(store, plans, zap.NewNop())
		_, err := svc.Subscribe(ctx, userID, &dto.CreateSubscriptionRequest{PlanID: plan.ID.String()})

		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}

func TestSubscriptionService_Cancel(t *testing.T) {
	ctx := context.Background()
	owner := &models.AuthUser{ID: uuid.New(), Role: models.RoleNormalUser}
	admin := &models.AuthUser{ID: uuid.New(), Role: models.RoleAdmin}
	stranger := &models.AuthUser{ID: uuid.New(), Role: models.RoleNormalUser}
	subID := uuid.New()
	active := &models.Subscription{ID: subID, UserID: owner.ID, Status: models.SubscriptionActive}

	t.Run("owner cancels", func(t *testing.T) {
		store := new(mockSubscriptionStore)
		store.On("GetByID", ctx, subID).Return(active, nil)
		store.On("Cancel", ctx, subID, mock.AnythingOfType("time.Time")).Return(nil)

		svc := NewSubscriptionService(store, new(mockPlanLookup), zap.NewNop())
		assert.NoError(t, svc.Cancel(ctx, owner, subID))
		store.AssertExpectations(t)
	})

	t.Run("admin cancels another user's subscription", func(t *testing.T) {
		store := new(mockSubscriptionStore)
		store.On("GetByID", ctx, subID).Return(active, nil)
		store.On("Cancel", ctx, subID, mock.AnythingOfType("time.Time")).Return(nil)

		svc := NewSubscriptionService(store, new(mockPlanLookup), zap.NewNop())
		assert.NoError(t, svc.Cancel(ctx, admin, subID))
	})

	t.Run("stranger is refused", func(t *testing.T) {
		store := new(mockSubscriptionStore)
		store.On("GetByID", ctx, subID).Return(active, nil)

		svc := NewSubscriptionService(store, new(mockPlanLookup), zap.NewNop())
		err := svc.Cancel(ctx, stranger, subID)

		assert.ErrorIs(t, err, ErrSubscriptionAccessDenied)
		store.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already canceled", func(t *testing.T) {
		store := new(mockSubscriptionStore)
		store.On("GetByID", ctx, subID).Return(&models.Subscription{
			ID: subID, UserID: owner.ID, Status: models.SubscriptionCanceled,
		}, nil)

		svc := NewSubscriptionService(store, new(mockPlanLookup), zap.NewNop())
		err := svc.Cancel(ctx, owner, subID)

		assert.ErrorIs(t, err, ErrSubscriptionNotActive)
	})
}
