package dto

import "encoding/json"

type CreatePlanRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description" validate:"required"`
	Price        int64           `json:"price" validate:"required"`
	Currency     string          `json:"currency"`
	InvoiceLimit int             `json:"invoiceLimit" validate:"required"`
	Features     json.RawMessage `json:"features" validate:"required"`
}

type UpdatePlanRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *int64           `json:"price"`
	Currency     *string          `json:"currency"`
	InvoiceLimit *int             `json:"invoiceLimit"`
	Features     *json.RawMessage `json:"features"`
	IsActive     *bool            `json:"isActive"`
}

type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	ColorHex string `json:"colorHex" validate:"required"`
	Icon     string `json:"icon" validate:"required"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	ColorHex *string `json:"colorHex"`
	Icon     *string `json:"icon"`
}

type CreateTypeRequest struct {
	Name string `json:"name" validate:"required"`
}
