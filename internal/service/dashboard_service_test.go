package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"facturas/internal/models"
	"facturas/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStructuredLister struct {
	mock.Mock
}

func (m *mockStructuredLister) ListStructuredWithRefs(ctx context.Context, userID uuid.UUID) ([]repository.StructuredRow, error) {
	args := m.Called(ctx, userID)
	if rows := args.Get(0); rows != nil {
		return rows.([]repository.StructuredRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"KZ 500,00", 500},
		{"1.234,56", 1234.56},
		{"500.00", 500},
		{"1,234.56", 1234.56},
		{"AOA 12.990,00", 12990},
		{"500", 500},
		{"", 0},
		{"n/a", 0},
		{"  KZ 75,50  ", 75.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, parseAmount(tt.in), 0.001, "input: %q", tt.in)
	}
}

func structuredRow(t *testing.T, typeName, category, color, amount string, at time.Time) repository.StructuredRow {
	t.Helper()
	doc, err := models.ParseCanonicalInvoice([]byte(`{"Pagamento": {"Forma de pagamento": "Multicaixa", "Valor": "` + amount + `"}}`))
	require.NoError(t, err)
	raw, err := doc.JSON()
	require.NoError(t, err)
	return repository.StructuredRow{
		Structured:    json.RawMessage(raw),
		CreatedAt:     at,
		TypeName:      typeName,
		CategoryName:  category,
		CategoryColor: color,
	}
}

func TestDashboardService_Summary(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	lister := new(mockStructuredLister)
	lister.On("ListStructuredWithRefs", ctx, userID).Return([]repository.StructuredRow{
		structuredRow(t, models.TypeIncome, "Depósito", "#50E3C2", "KZ 1.000,00", now),
		structuredRow(t, models.TypeExpense, "Alimentação", "#BD10E0", "KZ 250,00", now),
		structuredRow(t, models.TypeExpense, "Moradia", "#D0021B", "KZ 150,00", now),
	}, nil)

	svc := NewDashboardService(lister, zap.NewNop())
	summary, err := svc.Summary(ctx, userID)

	require.NoError(t, err)
	assert.InDelta(t, 1000, summary.TotalIncome, 0.001)
	assert.InDelta(t, 400, summary.TotalExpense, 0.001)
	assert.InDelta(t, 600, summary.Balance, 0.001)
}

func TestDashboardService_ExpensesByCategory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	lister := new(mockStructuredLister)
	lister.On("ListStructuredWithRefs", ctx, userID).Return([]repository.StructuredRow{
		structuredRow(t, models.TypeExpense, "Alimentação", "#BD10E0", "KZ 250,00", now),
		structuredRow(t, models.TypeExpense, "Alimentação", "#BD10E0", "KZ 100,00", now),
		structuredRow(t, models.TypeExpense, "Moradia", "#D0021B", "KZ 500,00", now),
		// Income never shows up in the expense breakdown.
		structuredRow(t, models.TypeIncome, "Depósito", "#50E3C2", "KZ 900,00", now),
		// Unparsable amounts contribute nothing and drop the category.
		structuredRow(t, models.TypeExpense, "Utilitários", "#F5A623", "", now),
	}, nil)

	svc := NewDashboardService(lister, zap.NewNop())
	expenses, err := svc.ExpensesByCategory(ctx, userID)

	require.NoError(t, err)
	require.Len(t, expenses, 2)
	// Sorted by total, largest first.
	assert.Equal(t, "Moradia", expenses[0].Category)
	assert.InDelta(t, 500, expenses[0].Total, 0.001)
	assert.Equal(t, "Alimentação", expenses[1].Category)
	assert.InDelta(t, 350, expenses[1].Total, 0.001)
	assert.Equal(t, "#BD10E0", expenses[1].Color)
}

func TestDashboardService_MonthlyHistory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	lister := new(mockStructuredLister)
	lister.On("ListStructuredWithRefs", ctx, userID).Return([]repository.StructuredRow{
		structuredRow(t, models.TypeIncome, "Depósito", "#50E3C2", "KZ 1.000,00", jan),
		structuredRow(t, models.TypeExpense, "Moradia", "#D0021B", "KZ 300,00", jan),
		structuredRow(t, models.TypeExpense, "Alimentação", "#BD10E0", "KZ 200,00", feb),
	}, nil)

	svc := NewDashboardService(lister, zap.NewNop())
	history, err := svc.MonthlyHistory(ctx, userID)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2024-01", history[0].Month)
	assert.InDelta(t, 1000, history[0].Income, 0.001)
	assert.InDelta(t, 300, history[0].Expense, 0.001)
	assert.Equal(t, "2024-02", history[1].Month)
	assert.InDelta(t, 200, history[1].Expense, 0.001)
}
