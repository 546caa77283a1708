package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is shared reference data maintained by administrators. Categories
// are soft-deleted so existing invoices keep a resolvable reference.
type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ColorHex  string    `db:"color_hex" json:"colorHex"`
	Icon      string    `db:"icon" json:"icon"`
	Deleted   bool      `db:"deleted" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// InvoiceType classifies an invoice as income or expense
// ("Receita" / "Despesa").
type InvoiceType struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

const (
	TypeIncome  = "Receita"
	TypeExpense = "Despesa"
)
