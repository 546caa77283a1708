package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"facturas/internal/dto"
	"facturas/internal/models"
	"facturas/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StructuredLister streams a user's structured invoice documents with their
// classification references.
type StructuredLister interface {
	ListStructuredWithRefs(ctx context.Context, userID uuid.UUID) ([]repository.StructuredRow, error)
}

// DashboardService aggregates stored invoices into summary figures. Amounts
// come from the "Pagamento"."Valor" field of the structured document;
// documents whose amount cannot be parsed contribute zero.
type DashboardService struct {
	invoices StructuredLister
	logger   *zap.Logger
}

func NewDashboardService(invoices StructuredLister, logger *zap.Logger) *DashboardService {
	return &DashboardService{invoices: invoices, logger: logger}
}

func (s *DashboardService) Summary(ctx context.Context, userID uuid.UUID) (*dto.DashboardSummary, error) {
	rows, err := s.invoices.ListStructuredWithRefs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	var summary dto.DashboardSummary
	for _, row := range rows {
		amount := rowAmount(row)
		switch row.TypeName {
		case models.TypeIncome:
			summary.TotalIncome += amount
		case models.TypeExpense:
			summary.TotalExpense += amount
		}
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense

	return &summary, nil
}

// ExpensesByCategory totals expense invoices per category. Categories with a
// zero total are omitted.
func (s *DashboardService) ExpensesByCategory(ctx context.Context, userID uuid.UUID) ([]dto.CategoryExpense, error) {
	rows, err := s.invoices.ListStructuredWithRefs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	totals := map[string]*dto.CategoryExpense{}
	for _, row := range rows {
		if row.TypeName != models.TypeExpense {
			continue
		}
		amount := rowAmount(row)
		if amount == 0 {
			continue
		}
		entry, ok := totals[row.CategoryName]
		if !ok {
			entry = &dto.CategoryExpense{Category: row.CategoryName, Color: row.CategoryColor}
			totals[row.CategoryName] = entry
		}
		entry.Total += amount
	}

	result := make([]dto.CategoryExpense, 0, len(totals))
	for _, entry := range totals {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Total > result[j].Total })

	return result, nil
}

// MonthlyHistory buckets income and expense totals by calendar month of
// ingestion, oldest first. Months are keyed YYYY-MM.
func (s *DashboardService) MonthlyHistory(ctx context.Context, userID uuid.UUID) ([]dto.MonthlyEntry, error) {
	rows, err := s.invoices.ListStructuredWithRefs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	months := map[string]*dto.MonthlyEntry{}
	for _, row := range rows {
		key := row.CreatedAt.Format("2006-01")
		entry, ok := months[key]
		if !ok {
			entry = &dto.MonthlyEntry{Month: key}
			months[key] = entry
		}
		amount := rowAmount(row)
		switch row.TypeName {
		case models.TypeIncome:
			entry.Income += amount
		case models.TypeExpense:
			entry.Expense += amount
		}
	}

	result := make([]dto.MonthlyEntry, 0, len(months))
	for _, entry := range months {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })

	return result, nil
}

func rowAmount(row repository.StructuredRow) float64 {
	doc, err := models.ParseCanonicalInvoice(row.Structured)
	if err != nil {
		return 0
	}
	return parseAmount(doc.Payment.Amount)
}

// parseAmount reads a monetary string the way invoices print it:
// "KZ 500,00", "1.234,56", "500.00". Currency prefixes and thousand
// separators are stripped; an unparsable string yields 0.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	// Keep only digits, separators and a leading sign.
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma > lastDot:
		// Comma is the decimal separator, dots are thousand separators.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastDot > lastComma:
		// Dot is the decimal separator, commas are thousand separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	var value float64
	if _, err := fmt.Sscanf(cleaned, "%f", &value); err != nil {
		return 0
	}
	return value
}
