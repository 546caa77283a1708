package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"facturas/internal/dto"
	"facturas/internal/models"
	"facturas/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidCategory = errors.New("category does not exist")
	ErrInvalidType     = errors.New("invoice type does not exist")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// TextExtractor produces plain text from an uploaded document.
type TextExtractor interface {
	ExtractTextFromReader(ctx context.Context, reader io.Reader, fileName string) (string, error)
}

// InvoiceStructurer turns extracted text into the canonical invoice document.
type InvoiceStructurer interface {
	Structure(ctx context.Context, rawText string) (*models.CanonicalInvoice, error)
}

// InvoiceStore is the persistence surface the orchestrator needs.
type InvoiceStore interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CreateWithinLimit(ctx context.Context, inv *models.Invoice, limit int) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, f repository.InvoiceFilter) ([]*models.Invoice, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReferenceStore resolves the category and type an invoice is filed under.
type ReferenceStore interface {
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetTypeByID(ctx context.Context, id uuid.UUID) (*models.InvoiceType, error)
}

// InvoiceService runs the ingestion pipeline (quota, OCR, LLM structuring,
// persistence) and serves invoice reads.
type InvoiceService struct {
	quota      *QuotaGate
	ocr        TextExtractor
	llm        InvoiceStructurer
	invoices   InvoiceStore
	refs       ReferenceStore
	ocrTimeout time.Duration
	llmTimeout time.Duration
	logger     *zap.Logger
}

func NewInvoiceService(
	quota *QuotaGate,
	ocr TextExtractor,
	llm InvoiceStructurer,
	invoices InvoiceStore,
	refs ReferenceStore,
	ocrTimeout, llmTimeout time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		quota:      quota,
		ocr:        ocr,
		llm:        llm,
		invoices:   invoices,
		refs:       refs,
		ocrTimeout: ocrTimeout,
		llmTimeout: llmTimeout,
		logger:     logger,
	}
}

// ProcessInvoice ingests one uploaded document for the given user. The quota
// gate runs first so no OCR or LLM work is spent on a user who is already at
// the limit; the persisting transaction re-checks the count, which is the
// authoritative enforcement.
func (s *InvoiceService) ProcessInvoice(
	ctx context.Context,
	user *models.AuthUser,
	file io.Reader,
	fileName string,
	categoryID, typeID uuid.UUID,
) (*models.Invoice, error) {
	if err := s.quota.Check(ctx, user); err != nil {
		return nil, err
	}

	ocrCtx, cancelOCR := context.WithTimeout(ctx, s.ocrTimeout)
	defer cancelOCR()

	rawText, err := s.ocr.ExtractTextFromReader(ocrCtx, file, fileName)
	if err != nil {
		s.logger.Warn("Invoice text extraction failed",
			zap.String("user_id", user.ID.String()),
			zap.String("file", fileName),
			zap.Error(err),
		)
		return nil, err
	}

	llmCtx, cancelLLM := context.WithTimeout(ctx, s.llmTimeout)
	defer cancelLLM()

	doc, err := s.llm.Structure(llmCtx, rawText)
	if err != nil {
		s.logger.Warn("Invoice structuring failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if _, err := s.refs.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if _, err := s.refs.GetTypeByID(ctx, typeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidType
		}
		return nil, fmt.Errorf("failed to resolve invoice type: %w", err)
	}

	structured, err := doc.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructuringFailed, err)
	}

	inv := &models.Invoice{
		ID:             uuid.New(),
		UserID:         user.ID,
		CategoryID:     categoryID,
		TypeID:         typeID,
		RawText:        sanitizeUTF8(rawText),
		StructuredData: structured,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.invoices.CreateWithinLimit(ctx, inv, user.Plan.InvoiceLimit); err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			return nil, ErrInvoiceLimitReached
		}
		s.logger.Error("Invoice persistence failed after extraction",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to store invoice: %w", err)
	}

	s.logger.Info("Invoice processed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Int("text_length", len(inv.RawText)),
	)

	return inv, nil
}

// ListInvoices returns the caller's own invoices, filtered and paginated.
func (s *InvoiceService) ListInvoices(ctx context.Context, userID uuid.UUID, q dto.InvoiceListQuery) (*dto.InvoiceListResponse, error) {
	f := filterFromQuery(q)
	f.UserID = &userID
	return s.list(ctx, f)
}

// ListAllInvoices returns every stored invoice. Callers guard this behind the
// admin role.
func (s *InvoiceService) ListAllInvoices(ctx context.Context, q dto.InvoiceListQuery) (*dto.InvoiceListResponse, error) {
	return s.list(ctx, filterFromQuery(q))
}

func (s *InvoiceService) list(ctx context.Context, f repository.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	items, total, err := s.invoices.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}
	totalPages := (total + limit - 1) / limit

	return &dto.InvoiceListResponse{
		Data: items,
		Meta: dto.ListMeta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

// GetInvoice returns the invoice when it exists and belongs to the caller.
// A foreign invoice is reported as not found, not as forbidden.
func (s *InvoiceService) GetInvoice(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if inv.UserID != userID {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// DeleteInvoice removes the invoice when it belongs to the caller.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, userID, invoiceID uuid.UUID) error {
	if _, err := s.GetInvoice(ctx, userID, invoiceID); err != nil {
		return err
	}
	if err := s.invoices.Delete(ctx, invoiceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvoiceNotFound
		}
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

func filterFromQuery(q dto.InvoiceListQuery) repository.InvoiceFilter {
	f := repository.InvoiceFilter{
		Search:  q.Search,
		Page:    q.Page,
		Limit:   q.Limit,
		OrderBy: q.OrderBy,
		Order:   q.Order,
	}
	if q.UserID != "" {
		if id, err := uuid.Parse(q.UserID); err == nil {
			f.UserID = &id
		}
	}
	if q.CategoryID != "" {
		if id, err := uuid.Parse(q.CategoryID); err == nil {
			f.CategoryID = &id
		}
	}
	if q.TypeID != "" {
		if id, err := uuid.Parse(q.TypeID); err == nil {
			f.TypeID = &id
		}
	}
	if q.StartDate != "" {
		if t, err := time.Parse("2006-01-02", q.StartDate); err == nil {
			f.StartDate = &t
		}
	}
	if q.EndDate != "" {
		if t, err := time.Parse("2006-01-02", q.EndDate); err == nil {
			// Treat the end date as inclusive of the whole day.
			end := t.Add(24*time.Hour - time.Nanosecond)
			f.EndDate = &end
		}
	}
	return f
}
