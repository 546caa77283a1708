package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"facturas/internal/models"
	"facturas/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTextExtractor struct {
	mock.Mock
}

func (m *mockTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, fileName string) (string, error) {
	args := m.Called(ctx, reader, fileName)
	return args.String(0), args.Error(1)
}

type mockStructurer struct {
	mock.Mock
}

func (m *mockStructurer) Structure(ctx context.Context, rawText string) (*models.CanonicalInvoice, error) {
	args := m.Called(ctx, rawText)
	if doc := args.Get(0); doc != nil {
		return doc.(*models.CanonicalInvoice), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInvoiceStore struct {
	mock.Mock
}

func (m *mockInvoiceStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockInvoiceStore) CreateWithinLimit(ctx context.Context, inv *models.Invoice, limit int) error {
	args := m.Called(ctx, inv, limit)
	return args.Error(0)
}

func (m *mockInvoiceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*models.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceStore) List(ctx context.Context, f repository.InvoiceFilter) ([]*models.Invoice, int, error) {
	args := m.Called(ctx, f)
	if items := args.Get(0); items != nil {
		return items.([]*models.Invoice), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockInvoiceStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReferenceStore struct {
	mock.Mock
}

func (m *mockReferenceStore) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if cat := args.Get(0); cat != nil {
		return cat.(*models.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReferenceStore) GetTypeByID(ctx context.Context, id uuid.UUID) (*models.InvoiceType, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*models.InvoiceType), args.Error(1)
	}
	return nil, args.Error(1)
}

type pipelineMocks struct {
	ocr   *mockTextExtractor
	llm   *mockStructurer
	store *mockInvoiceStore
	refs  *mockReferenceStore
}

func newPipeline(t *testing.T) (*InvoiceService, pipelineMocks) {
	t.Helper()
	m := pipelineMocks{
		ocr:   new(mockTextExtractor),
		llm:   new(mockStructurer),
		store: new(mockInvoiceStore),
		refs:  new(mockReferenceStore),
	}
	gate := NewQuotaGate(m.store, zap.NewNop())
	svc := NewInvoiceService(gate, m.ocr, m.llm, m.store, m.refs, 30*time.Second, 30*time.Second, zap.NewNop())
	return svc, m
}

func structuredDoc(t *testing.T, total string) *models.CanonicalInvoice {
	t.Helper()
	doc, err := models.ParseCanonicalInvoice([]byte(`{"Valor Total": "` + total + `", "Pagamento": {"Valor": "` + total + `"}}`))
	require.NoError(t, err)
	return doc
}

func TestInvoiceService_ProcessInvoice(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()
	typeID := uuid.New()
	user := &models.AuthUser{
		ID:   uuid.New(),
		Plan: &models.Plan{ID: uuid.New(), Name: "Free", InvoiceLimit: 50},
	}

	t.Run("happy path", func(t *testing.T) {
		svc, m := newPipeline(t)
		file := strings.NewReader("fake image bytes")

		m.store.On("CountByUser", mock.Anything, user.ID).Return(3, nil)
		m.ocr.On("ExtractTextFromReader", mock.Anything, file, "factura.jpg").Return("Total: KZ 500,00", nil)
		m.llm.On("Structure", mock.Anything, "Total: KZ 500,00").Return(structuredDoc(t, "KZ 500,00"), nil)
		m.refs.On("GetCategoryByID", mock.Anything, categoryID).Return(&models.Category{ID: categoryID}, nil)
		m.refs.On("GetTypeByID", mock.Anything, typeID).Return(&models.InvoiceType{ID: typeID}, nil)
		m.store.On("CreateWithinLimit", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
			return inv.UserID == user.ID && inv.RawText == "Total: KZ 500,00"
		}), 50).Return(nil)

		inv, err := svc.ProcessInvoice(ctx, user, file, "factura.jpg", categoryID, typeID)

		require.NoError(t, err)
		assert.Equal(t, categoryID, inv.CategoryID)
		assert.Equal(t, typeID, inv.TypeID)

		var probe map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(inv.StructuredData, &probe))
		assert.Contains(t, probe, "Valor Total")
		assert.Contains(t, probe, "Identificacao do Emitente")
		m.store.AssertExpectations(t)
	})

	t.Run("no plan runs neither OCR nor LLM", func(t *testing.T) {
		svc, m := newPipeline(t)
		noPlan := &models.AuthUser{ID: uuid.New()}

		_, err := svc.ProcessInvoice(ctx, noPlan, strings.NewReader(""), "f.jpg", categoryID, typeID)

		assert.ErrorIs(t, err, ErrNoActivePlan)
		m.ocr.AssertNotCalled(t, "ExtractTextFromReader", mock.Anything, mock.Anything, mock.Anything)
		m.llm.AssertNotCalled(t, "Structure", mock.Anything, mock.Anything)
		m.store.AssertNotCalled(t, "CreateWithinLimit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("quota exhausted before extraction", func(t *testing.T) {
		svc, m := newPipeline(t)
		m.store.On("CountByUser", mock.Anything, user.ID).Return(50, nil)

		_, err := svc.ProcessInvoice(ctx, user, strings.NewReader(""), "f.jpg", categoryID, typeID)

		assert.ErrorIs(t, err, ErrInvoiceLimitReached)
		m.ocr.AssertNotCalled(t, "ExtractTextFromReader", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("extraction failure stops the pipeline", func(t *testing.T) {
		svc, m := newPipeline(t)
		m.store.On("CountByUser", mock.Anything, user.ID).Return(0, nil)
		m.ocr.On("ExtractTextFromReader", mock.Anything, mock.Anything, "f.jpg").Return("", ErrExtractionFailed)

		_, err := svc.ProcessInvoice(ctx, user, strings.NewReader(""), "f.jpg", categoryID, typeID)

		assert.ErrorIs(t, err, ErrExtractionFailed)
		m.llm.AssertNotCalled(t, "Structure", mock.Anything, mock.Anything)
		m.store.AssertNotCalled(t, "CreateWithinLimit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("structuring failure stops the pipeline", func(t *testing.T) {
		svc, m := newPipeline(t)
		m.store.On("CountByUser", mock.Anything, user.ID).Return(0, nil)
		m.ocr.On("ExtractTextFromReader", mock.Anything, mock.Anything, "f.jpg").Return("raw", nil)
		m.llm.On("Structure", mock.Anything, "raw").Return(nil, ErrStructuringFailed)

		_, err := svc.ProcessInvoice(ctx, user, strings.NewReader(""), "f.jpg", categoryID, typeID)

		assert.ErrorIs(t, err, ErrStructuringFailed)
		m.store.AssertNotCalled(t, "CreateWithinLimit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown category after successful extraction", func(t *testing.T) {
		svc, m := newPipeline(t)
		m.store.On("CountByUser", mock.Anything, user.ID).Return(0, nil)
		m.ocr.On("ExtractTextFromReader", mock.Anything, mock.Anything, "f.jpg").Return("raw", nil)
		m.llm.On("Structure", mock.Anything, "raw").Return(structuredDoc(t, "KZ 100,00"), nil)
		m.refs.On("GetCategoryByID", mock.Anything, categoryID).Return(nil, pgx.ErrNoRows)

		_, err := svc.ProcessInvoice(ctx, user, strings.NewReader(""), "f.jpg", categoryID, typeID)

		assert.ErrorIs(t, err, ErrInvalidCategory)
		m.store.AssertNotCalled(t, "CreateWithinLimit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown type after successful extraction", func(t *testing.T) {
		svc, m := newPipeline(t)
		m.store.On("CountByUser", mock.Anything, user.ID).Return(0, nil)
		m.ocr.On("ExtractTextFromReader", mock.Anything, mock.Anything, "f.jpg").Return("raw", nil)
		m.llm.On("Structure", mock.Anything, "raw").Return(structuredDoc(t, "KZ 100,00"), nil)
		m.refs.On("GetCategoryByID", mock.Anything, categoryID).Return(&models.Category{ID: categoryID}, nil)
		m.refs.On("GetTypeByID", mock.Anything, typeID).Return(nil, pgx.ErrNoRows)

		_, err := svc.ProcessInvoice(ctx, user, strings.NewReader(""), "f.jpg", categoryID, typeID)

		assert.ErrorIs(t, err, ErrInvalidType)
		m.store.AssertNotCalled(t, "CreateWithinLimit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("limit reached inside the persisting transaction", func(t *testing.T) {
		svc, m := newPipeline(t)
		m.store.On("CountByUser", mock.Anything, user.ID).Return(49, nil)
		m.ocr.On("ExtractTextFromReader", mock.Anything, mock.Anything, "f.jpg").Return("raw", nil)
		m.llm.On("Structure", mock.Anything, "raw").Return(structuredDoc(t, "KZ 100,00"), nil)
		m.refs.On("GetCategoryByID", mock.Anything, categoryID).Return(&models.Category{ID: categoryID}, nil)
		m.refs.On("GetTypeByID", mock.Anything, typeID).Return(&models.InvoiceType{ID: typeID}, nil)
		m.store.On("CreateWithinLimit", mock.Anything, mock.Anything, 50).Return(repository.ErrLimitReached)

		_, err := svc.ProcessInvoice(ctx, user, strings.NewReader(""), "f.jpg", categoryID, typeID)

		assert.ErrorIs(t, err, ErrInvoiceLimitReached)
	})
}

func TestInvoiceService_GetInvoice(t *testing.T) {
	ctx := context.Background()
	svc, m := newPipeline(t)
	owner := uuid.New()
	stranger := uuid.New()
	invoiceID := uuid.New()

	m.store.On("GetByID", ctx, invoiceID).Return(&models.Invoice{ID: invoiceID, UserID: owner}, nil)

	t.Run("owner can read", func(t *testing.T) {
		inv, err := svc.GetInvoice(ctx, owner, invoiceID)
		require.NoError(t, err)
		assert.Equal(t, invoiceID, inv.ID)
	})

	t.Run("foreign invoice is reported as not found", func(t *testing.T) {
		_, err := svc.GetInvoice(ctx, stranger, invoiceID)
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})

	t.Run("missing invoice", func(t *testing.T) {
		missing := uuid.New()
		m.store.On("GetByID", ctx, missing).Return(nil, pgx.ErrNoRows)

		_, err := svc.GetInvoice(ctx, owner, missing)
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})
}

func TestInvoiceService_DeleteInvoice(t *testing.T) {
	ctx := context.Background()
	svc, m := newPipeline(t)
	owner := uuid.New()
	invoiceID := uuid.New()

	m.store.On("GetByID", ctx, invoiceID).Return(&models.Invoice{ID: invoiceID, UserID: owner}, nil)
	m.store.On("Delete", ctx, invoiceID).Return(nil)

	t.Run("owner can delete", func(t *testing.T) {
		assert.NoError(t, svc.DeleteInvoice(ctx, owner, invoiceID))
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		err := svc.DeleteInvoice(ctx, uuid.New(), invoiceID)
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})
}
