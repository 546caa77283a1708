package dto

type DashboardSummary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
}

type CategoryExpense struct {
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Total    float64 `json:"total"`
}

type MonthlyEntry struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}
