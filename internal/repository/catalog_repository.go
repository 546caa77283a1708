package repository

import (
	"context"

	"facturas/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CatalogRepository persists the shared classification reference data:
// categories and invoice types.
type CatalogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCatalogRepository(db *pgxpool.Pool, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

var categoryColumns = []string{"id", "name", "color_hex", "icon", "deleted", "created_at", "updated_at"}

func (r *CatalogRepository) CreateCategory(ctx context.Context, cat *models.Category) error {
	query := squirrel.Insert("categories").
		Columns(categoryColumns...).
		Values(cat.ID, cat.Name, cat.ColorHex, cat.Icon, cat.Deleted, cat.CreatedAt, cat.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CatalogRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return r.getCategory(ctx, squirrel.Eq{"id": id, "deleted": false})
}

func (r *CatalogRepository) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	return r.getCategory(ctx, squirrel.Eq{"name": name, "deleted": false})
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		Where(squirrel.Eq{"deleted": false}).
		OrderBy("name ASC").
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

	var categories []*models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.ColorHex, &cat.Icon, &cat.Deleted, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &cat)
	}

	return categories, rows.Err()
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	query := squirrel.Update("categories").
		SetMap(fields).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "deleted": false}).
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

// SoftDeleteCategory flags a category as deleted; existing invoices keep a
// resolvable reference.
func (r *CatalogRepository) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.UpdateCategory(ctx, id, map[string]interface{}{"deleted": true})
}

func (r *CatalogRepository) getCategory(ctx context.Context, pred squirrel.Eq) (*models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var cat models.Category
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&cat.ID, &cat.Name, &cat.ColorHex, &cat.Icon, &cat.Deleted, &cat.CreatedAt, &cat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &cat, nil
}

func (r *CatalogRepository) CreateType(ctx context.Context, t *models.InvoiceType) error {
	query := squirrel.Insert("invoice_types").
		Columns("id", "name", "created_at").
		Values(t.ID, t.Name, t.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CatalogRepository) GetTypeByID(ctx context.Context, id uuid.UUID) (*models.InvoiceType, error) {
	return r.getType(ctx, squirrel.Eq{"id": id})
}

func (r *CatalogRepository) GetTypeByName(ctx context.Context, name string) (*models.InvoiceType, error) {
	return r.getType(ctx, squirrel.Eq{"name": name})
}

func (r *CatalogRepository) ListTypes(ctx context.Context) ([]*models.InvoiceType, error) {
	query := squirrel.Select("id", "name", "created_at").
		From("invoice_types").
		OrderBy("name ASC").
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

	var types []*models.InvoiceType
	for rows.Next() {
		var t models.InvoiceType
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, &t)
	}

	return types, rows.Err()
}

func (r *CatalogRepository) getType(ctx context.Context, pred squirrel.Eq) (*models.InvoiceType, error) {
	query := squirrel.Select("id", "name", "created_at").
		From("invoice_types").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var t models.InvoiceType
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, err
	}

	return &t, nil
}
