package service

import (
	"context"
	"errors"
	"fmt"

	"facturas/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoActivePlan        = errors.New("user has no active plan")
	ErrInvoiceLimitReached = errors.New("invoice limit reached for the current plan")
)

// InvoiceCounter reports how many invoices a user has already stored.
type InvoiceCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// QuotaGate decides whether a user may ingest another invoice. It is a cheap
// pre-check run before OCR and LLM work is spent; the persisting transaction
// re-checks the count under a lock and is the actual enforcement point.
type QuotaGate struct {
	invoices InvoiceCounter
	logger   *zap.Logger
}

func NewQuotaGate(invoices InvoiceCounter, logger *zap.Logger) *QuotaGate {
	return &QuotaGate{invoices: invoices, logger: logger}
}

// Check returns ErrNoActivePlan when the user has no plan attached, and
// ErrInvoiceLimitReached when the stored invoice count has reached the plan
// limit. A no-plan user never triggers a count query.
func (g *QuotaGate) Check(ctx context.Context, user *models.AuthUser) error {
	if user.Plan == nil {
		return ErrNoActivePlan
	}

	count, err := g.invoices.CountByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to count invoices: %w", err)
	}

	if count >= user.Plan.InvoiceLimit {
		g.logger.Info("Invoice quota exhausted",
			zap.String("user_id", user.ID.String()),
			zap.String("plan", user.Plan.Name),
			zap.Int("count", count),
			zap.Int("limit", user.Plan.InvoiceLimit),
		)
		return ErrInvoiceLimitReached
	}

	return nil
}
