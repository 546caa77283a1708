package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"facturas/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type InvoiceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewInvoiceRepository(db *pgxpool.Pool, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

var invoiceColumns = []string{"id", "user_id", "category_id", "type_id", "raw_text", "structured_data", "created_at"}

// InvoiceFilter narrows List results. Nil/zero fields are not applied.
type InvoiceFilter struct {
	UserID     *uuid.UUID
	CategoryID *uuid.UUID
	TypeID     *uuid.UUID
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
	OrderBy    string
	Order      string
}

// orderColumns whitelists sortable columns; anything else falls back to
// created_at.
var orderColumns = map[string]string{
	"createdAt": "created_at",
}

func (f InvoiceFilter) apply(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if f.UserID != nil {
		q = q.Where(squirrel.Eq{"user_id": *f.UserID})
	}
	if f.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *f.CategoryID})
	}
	if f.TypeID != nil {
		q = q.Where(squirrel.Eq{"type_id": *f.TypeID})
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"raw_text": "%" + f.Search + "%"})
	}
	if f.StartDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.StartDate})
	}
	if f.EndDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.EndDate})
	}
	return q
}

func (r *InvoiceRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("invoices").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// CreateWithinLimit inserts the invoice only while the owner's invoice count
// is below limit. The re-count and the insert run in one transaction behind a
// per-user advisory lock, so two concurrent ingestions for the same user
// cannot both slip under the limit. Returns ErrLimitReached when the quota is
// already exhausted.
func (r *InvoiceRepository) CreateWithinLimit(ctx context.Context, inv *models.Invoice, limit int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1::text))", inv.UserID); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM invoices WHERE user_id = $1", inv.UserID).Scan(&count); err != nil {
		return err
	}
	if count >= limit {
		return ErrLimitReached
	}

	query := squirrel.Insert("invoices").
		Columns(invoiceColumns...).
		Values(inv.ID, inv.UserID, inv.CategoryID, inv.TypeID, inv.RawText, inv.StructuredData, inv.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	query := squirrel.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var inv models.Invoice
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&inv.ID, &inv.UserID, &inv.CategoryID, &inv.TypeID, &inv.RawText, &inv.StructuredData, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &inv, nil
}

// List returns a page of invoices matching the filter plus the total count of
// matches.
func (r *InvoiceRepository) List(ctx context.Context, f InvoiceFilter) ([]*models.Invoice, int, error) {
	countQuery := f.apply(squirrel.Select("COUNT(*)").
		From("invoices").
		PlaceholderFormat(squirrel.Dollar))

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	column, ok := orderColumns[f.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	query := f.apply(squirrel.Select(invoiceColumns...).
		From("invoices").
		OrderBy(fmt.Sprintf("%s %s", column, direction)).
		Limit(uint64(limit)).
		Offset(uint64((page-1)*limit)).
		PlaceholderFormat(squirrel.Dollar))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.CategoryID, &inv.TypeID, &inv.RawText, &inv.StructuredData, &inv.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, &inv)
	}

	return invoices, total, rows.Err()
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("invoices").
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

// StructuredRow is one invoice's structured document joined with its
// classification, as consumed by dashboard aggregation.
type StructuredRow struct {
	Structured    json.RawMessage
	CreatedAt     time.Time
	TypeName      string
	CategoryName  string
	CategoryColor string
}

func (r *InvoiceRepository) ListStructuredWithRefs(ctx context.Context, userID uuid.UUID) ([]StructuredRow, error) {
	query := squirrel.Select("i.structured_data", "i.created_at", "t.name", "c.name", "c.color_hex").
		From("invoices i").
		Join("invoice_types t ON t.id = i.type_id").
		Join("categories c ON c.id = i.category_id").
		Where(squirrel.Eq{"i.user_id": userID}).
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

	var result []StructuredRow
	for rows.Next() {
		var row StructuredRow
		if err := rows.Scan(&row.Structured, &row.CreatedAt, &row.TypeName, &row.CategoryName, &row.CategoryColor); err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
