package service

import (
	"context"
	"testing"
	"time"

	"facturas/internal/dto"
	"facturas/internal/models"
	"facturas/pkg/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

func (m *mockUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

type mockSubscriptionLookup struct {
	mock.Mock
}

func (m *mockSubscriptionLookup) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPlanLookup struct {
	mock.Mock
}

func (m *mockPlanLookup) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Plan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanLookup) GetByName(ctx context.Context, name string) (*models.Plan, error) {
	args := m.Called(ctx, name)
	if p := args.Get(0); p != nil {
		return p.(*models.Plan), args.Error(1)
	}
	return nil, args.Error(1)
}

func newAuthService(users *mockUserStore, subs *mockSubscriptionLookup, plans *mockPlanLookup) *AuthService {
	jwtManager := auth.NewJWTManager("secret", "reset-secret", time.Hour, 24*time.Hour, 15*time.Minute)
	return NewAuthService(users, subs, plans, jwtManager, zap.NewNop())
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("GetByEmail", ctx, "new@example.com").Return(nil, pgx.ErrNoRows)
		users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
			// The stored password is a bcrypt hash, never the plaintext.
			return u.Email == "new@example.com" && u.Password != "secret123" &&
				auth.CheckPasswordHash("secret123", u.Password)
		})).Return(nil)

		svc := newAuthService(users, new(mockSubscriptionLookup), new(mockPlanLookup))
		resp, err := svc.Register(ctx, &dto.RegisterRequest{
			Email:    "new@example.com",
			Password: "secret123",
			Role:     "normal_user",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "new@example.com", resp.User.Email)
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("GetByEmail", ctx, "taken@example.com").Return(&models.User{ID: uuid.New()}, nil)

		svc := newAuthService(users, new(mockSubscriptionLookup), new(mockPlanLookup))
		_, err := svc.Register(ctx, &dto.RegisterRequest{
			Email:    "taken@example.com",
			Password: "secret123",
			Role:     "normal_user",
		})

		assert.ErrorIs(t, err, ErrUserExists)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc := newAuthService(new(mockUserStore), new(mockSubscriptionLookup), new(mockPlanLookup))
		_, err := svc.Register(ctx, &dto.RegisterRequest{
			Email:    "x@example.com",
			Password: "secret123",
			Role:     "superuser",
		})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hashed, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	user := &models.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Password: hashed,
		Role:     models.RoleNormalUser,
	}

	t.Run("valid credentials with subscription plan", func(t *testing.T) {
		plan := &models.Plan{ID: uuid.New(), Name: "Premium", InvoiceLimit: 500}
		users := new(mockUserStore)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		subs := new(mockSubscriptionLookup)
		subs.On("GetActiveByUserID", ctx, user.ID).Return(&models.Subscription{
			ID: uuid.New(), UserID: user.ID, PlanID: plan.ID,
		}, nil)
		plans := new(mockPlanLookup)
		plans.On("GetByID", ctx, plan.ID).Return(plan, nil)

		svc := newAuthService(users, subs, plans)
		resp, err := svc.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), resp.User.ID)
		require.NotNil(t, resp.Plan)
		assert.Equal(t, "Premium", resp.Plan.Name)
	})

	t.Run("no subscription falls back to the Free plan", func(t *testing.T) {
		free := &models.Plan{ID: uuid.New(), Name: "Free", InvoiceLimit: 50}
		users := new(mockUserStore)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		subs := new(mockSubscriptionLookup)
		subs.On("GetActiveByUserID", ctx, user.ID).Return(nil, pgx.ErrNoRows)
		plans := new(mockPlanLookup)
		plans.On("GetByName", ctx, "Free").Return(free, nil)

		svc := newAuthService(users, subs, plans)
		resp, err := svc.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "secret123"})

		require.NoError(t, err)
		require.NotNil(t, resp.Plan)
		assert.Equal(t, "Free", resp.Plan.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)

		svc := newAuthService(users, new(mockSubscriptionLookup), new(mockPlanLookup))
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "wrong"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, pgx.ErrNoRows)

		svc := newAuthService(users, new(mockSubscriptionLookup), new(mockPlanLookup))
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "secret123"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_ResolveAuthUser(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "user@example.com", Role: models.RoleNormalUser}
	plan := &models.Plan{ID: uuid.New(), Name: "Free", InvoiceLimit: 50}

	t.Run("with active subscription", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("GetByID", ctx, user.ID).Return(user, nil)
		subs := new(mockSubscriptionLookup)
		subs.On("GetActiveByUserID", ctx, user.ID).Return(&models.Subscription{
			ID: uuid.New(), UserID: user.ID, PlanID: plan.ID, Status: models.SubscriptionActive,
		}, nil)
		plans := new(mockPlanLookup)
		plans.On("GetByID", ctx, plan.ID).Return(plan, nil)

		svc := newAuthService(users, subs, plans)
		authUser, err := svc.ResolveAuthUser(ctx, user.ID)

		require.NoError(t, err)
		require.NotNil(t, authUser.Plan)
		assert.Equal(t, 50, authUser.Plan.InvoiceLimit)
	})

	t.Run("without subscription the plan stays nil", func(t *testing.T) {
		users := new(mockUserStore)
		users.On("GetByID", ctx, user.ID).Return(user, nil)
		subs := new(mockSubscriptionLookup)
		subs.On("GetActiveByUserID", ctx, user.ID).Return(nil, pgx.ErrNoRows)

		svc := newAuthService(users, subs, new(mockPlanLookup))
		authUser, err := svc.ResolveAuthUser(ctx, user.ID)

		require.NoError(t, err)
		assert.Nil(t, authUser.Plan)
	})
}
