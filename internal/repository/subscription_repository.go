package repository

import (
	"context"
	"time"

	"facturas/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SubscriptionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSubscriptionRepository(db *pgxpool.Pool, logger *zap.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     db,
		logger: logger,
	}
}

var subscriptionColumns = []string{"id", "user_id", "plan_id", "status", "payment_method", "external_ref", "end_date", "renews_at", "canceled_at", "created_at", "updated_at"}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	query := squirrel.Insert("subscriptions").
		Columns(subscriptionColumns...).
		Values(sub.ID, sub.UserID, sub.PlanID, sub.Status, sub.PaymentMethod, sub.ExternalRef, sub.EndDate, sub.RenewsAt, sub.CanceledAt, sub.CreatedAt, sub.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	query := squirrel.Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return r.scanOne(ctx, query)
}

// GetActiveByUserID returns the user's ACTIVE subscription, or pgx.ErrNoRows
// when there is none.
func (r *SubscriptionRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	query := squirrel.Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"user_id": userID, "status": models.SubscriptionActive}).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	return r.scanOne(ctx, query)
}

func (r *SubscriptionRepository) List(ctx context.Context) ([]*models.Subscription, error) {
	query := squirrel.Select(subscriptionColumns...).
		From("subscriptions").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.PaymentMethod, &sub.ExternalRef, &sub.EndDate, &sub.RenewsAt, &sub.CanceledAt, &sub.CreatedAt, &sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

func (r *SubscriptionRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	query := squirrel.Update("subscriptions").
		SetMap(fields).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.Update(ctx, id, map[string]interface{}{
		"status":      models.SubscriptionCanceled,
		"canceled_at": at,
	})
}

func (r *SubscriptionRepository) scanOne(ctx context.Context, query squirrel.SelectBuilder) (*models.Subscription, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var sub models.Subscription
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.PaymentMethod, &sub.ExternalRef, &sub.EndDate, &sub.RenewsAt, &sub.CanceledAt, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &sub, nil
}
