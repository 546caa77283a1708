package dto

import "facturas/internal/models"

// InvoiceListQuery carries the list filters taken from query parameters.
// Zero values mean "not filtered".
type InvoiceListQuery struct {
	UserID     string `query:"userId"`
	CategoryID string `query:"categoryId"`
	TypeID     string `query:"typeId"`
	Search     string `query:"search"`
	StartDate  string `query:"startDate"`
	EndDate    string `query:"endDate"`
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	OrderBy    string `query:"orderBy"`
	Order      string `query:"order"`
}

type ListMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type InvoiceListResponse struct {
	Data []*models.Invoice `json:"data"`
	Meta ListMeta          `json:"meta"`
}
