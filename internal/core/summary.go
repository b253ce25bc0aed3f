package core

// Budget is a monthly spending limit for one category.
type Budget struct {
	Name   string
	Amount float64
}

// DefaultBudgets is the fixed budget table the dashboard compares against.
var DefaultBudgets = []Budget{
	{Name: "Rent", Amount: 15000},
	{Name: "Groceries", Amount: 5000},
	{Name: "Shopping", Amount: 8000},
	{Name: "Restaurants", Amount: 6000},
	{Name: "Travel", Amount: 5000},
	{Name: "Utilities", Amount: 2000},
	{Name: "Entertainment", Amount: 3000},
	{Name: "Savings", Amount: 5000},
	{Name: "Investments", Amount: 10000},
	{Name: "Meat", Amount: 2000},
	{Name: "Vegetables", Amount: 1500},
}

// Categories lists the budget category names in table order.
func Categories() []string {
	out := make([]string, len(DefaultBudgets))
	for i, b := range DefaultBudgets {
		out[i] = b.Name
	}
	return out
}

// Server-computed statistics payloads.
type (
	SplitStat struct {
		Total Amount `json:"total"`
		Count int    `json:"count"`
		Color string `json:"color"`
	}

	StatsSummary struct {
		Summary      map[string]SplitStat `json:"summary"`
		TotalAmount  Amount               `json:"totalAmount"`
		ExpenseCount int                  `json:"expenseCount"`
	}

	// MonthlyBreakdown maps a short month name ("Jan") to amounts per split name.
	MonthlyBreakdown map[string]map[string]Amount

	DailyStat struct {
		Date  Date   `json:"date"`
		Total Amount `json:"total"`
		Count int    `json:"count"`
	}
)
