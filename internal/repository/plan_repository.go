package repository

import (
	"context"

	"facturas/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PlanRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPlanRepository(db *pgxpool.Pool, logger *zap.Logger) *PlanRepository {
	return &PlanRepository{
		db:     db,
		logger: logger,
	}
}

var planColumns = []string{"id", "name", "description", "price", "currency", "invoice_limit", "features", "is_active", "created_at", "updated_at"}

func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	query := squirrel.Insert("plans").
		Columns(planColumns...).
		Values(plan.ID, plan.Name, plan.Description, plan.Price, plan.Currency, plan.InvoiceLimit, plan.Features, plan.IsActive, plan.CreatedAt, plan.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *PlanRepository) GetByName(ctx context.Context, name string) (*models.Plan, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

func (r *PlanRepository) List(ctx context.Context) ([]*models.Plan, error) {
	query := squirrel.Select(planColumns...).
		From("plans").
		OrderBy("price ASC").
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

	var plans []*models.Plan
	for rows.Next() {
		var plan models.Plan
		if err := rows.Scan(
			&plan.ID, &plan.Name, &plan.Description, &plan.Price, &plan.Currency, &plan.InvoiceLimit, &plan.Features, &plan.IsActive, &plan.CreatedAt, &plan.UpdatedAt,
		); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}

	return plans, rows.Err()
}

func (r *PlanRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	query := squirrel.Update("plans").
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

func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("plans").
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

func (r *PlanRepository) getOne(ctx context.Context, pred squirrel.Eq) (*models.Plan, error) {
	query := squirrel.Select(planColumns...).
		From("plans").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var plan models.Plan
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&plan.ID, &plan.Name, &plan.Description, &plan.Price, &plan.Currency, &plan.InvoiceLimit, &plan.Features, &plan.IsActive, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}
