package handlers

import (
	"context"
	"errors"
	"io"

	"facturas/internal/dto"
	"facturas/internal/models"
	"facturas/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceProcessor is the slice of the invoice service the handler uses.
type InvoiceProcessor interface {
	ProcessInvoice(ctx context.Context, user *models.AuthUser, file io.Reader, fileName string, categoryID, typeID uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, userID uuid.UUID, q dto.InvoiceListQuery) (*dto.InvoiceListResponse, error)
	ListAllInvoices(ctx context.Context, q dto.InvoiceListQuery) (*dto.InvoiceListResponse, error)
	GetInvoice(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, userID, invoiceID uuid.UUID) error
}

type InvoiceHandler struct {
	invoices InvoiceProcessor
	logger   *zap.Logger
}

func NewInvoiceHandler(invoices InvoiceProcessor, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: invoices,
		logger:   logger,
	}
}

// ProcessInvoice godoc
// @Summary Ingest an invoice document
// @Description Run the upload through OCR and LLM extraction and store the result
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice file (jpg, jpeg, png or pdf)"
// @Param categoryId formData string true "Category ID"
// @Param typeId formData string true "Invoice type ID"
// @Security Bearer
// @Success 200 {object} models.Invoice
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /process-invoice [post]
func (h *InvoiceHandler) ProcessInvoice(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "File is required")
	}

	categoryID, err := uuid.Parse(c.FormValue("categoryId"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid categoryId")
	}
	typeID, err := uuid.Parse(c.FormValue("typeId"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid typeId")
	}

	src, err := file.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Failed to open file")
	}
	defer src.Close()

	inv, err := h.invoices.ProcessInvoice(c.Context(), user, src, file.Filename, categoryID, typeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActivePlan):
			return errorJSON(c, fiber.StatusForbidden, "No active plan")
		case errors.Is(err, service.ErrInvoiceLimitReached):
			return errorJSON(c, fiber.StatusForbidden, "Invoice limit reached for the current plan")
		case errors.Is(err, service.ErrInvalidCategory):
			return errorJSON(c, fiber.StatusBadRequest, "Category does not exist")
		case errors.Is(err, service.ErrInvalidType):
			return errorJSON(c, fiber.StatusBadRequest, "Invoice type does not exist")
		case errors.Is(err, service.ErrUnsupportedFormat):
			return errorJSON(c, fiber.StatusBadRequest, "Unsupported file format (supported: jpg, jpeg, png, pdf)")
		}
		h.logger.Error("Invoice processing failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to process invoice")
	}

	return c.JSON(inv)
}

// ListInvoices godoc
// @Summary List the authenticated user's invoices
// @Tags invoices
// @Produce json
// @Param categoryId query string false "Filter by category"
// @Param typeId query string false "Filter by type"
// @Param search query string false "Full-text search over the extracted text"
// @Param startDate query string false "Lower bound (YYYY-MM-DD)"
// @Param endDate query string false "Upper bound (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Security Bearer
// @Success 200 {object} dto.InvoiceListResponse
// @Failure 401 {object} map[string]string
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var q dto.InvoiceListQuery
	if err := c.QueryParser(&q); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid query parameters")
	}

	resp, err := h.invoices.ListInvoices(c.Context(), user.ID, q)
	if err != nil {
		h.logger.Error("Invoice listing failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list invoices")
	}

	return c.JSON(resp)
}

// ListAllInvoices godoc
// @Summary List every stored invoice (admin)
// @Tags invoices
// @Produce json
// @Param userId query string false "Filter by owner"
// @Security Bearer
// @Success 200 {object} dto.InvoiceListResponse
// @Failure 403 {object} map[string]string
// @Router /invoices/all [get]
func (h *InvoiceHandler) ListAllInvoices(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if err := c.QueryParser(&q); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid query parameters")
	}

	resp, err := h.invoices.ListAllInvoices(c.Context(), q)
	if err != nil {
		h.logger.Error("Invoice listing failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list invoices")
	}

	return c.JSON(resp)
}

// GetInvoice godoc
// @Summary Get one of the authenticated user's invoices
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Security Bearer
// @Success 200 {object} models.Invoice
// @Failure 404 {object} map[string]string
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid invoice ID")
	}

	inv, err := h.invoices.GetInvoice(c.Context(), user.ID, invoiceID)
	if err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Invoice not found")
		}
		h.logger.Error("Invoice lookup failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get invoice")
	}

	return c.JSON(inv)
}

// DeleteInvoice godoc
// @Summary Delete one of the authenticated user's invoices
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid invoice ID")
	}

	if err := h.invoices.DeleteInvoice(c.Context(), user.ID, invoiceID); err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Invoice not found")
		}
		h.logger.Error("Invoice deletion failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete invoice")
	}

	return c.JSON(fiber.Map{"message": "Invoice deleted"})
}
