package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Plan struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Price        int64           `db:"price" json:"price"`
	Currency     string          `db:"currency" json:"currency"`
	InvoiceLimit int             `db:"invoice_limit" json:"invoiceLimit"`
	Features     json.RawMessage `db:"features" json:"features"`
	IsActive     bool            `db:"is_active" json:"isActive"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}
