package aggregate

import (
	"time"

	"spendwise/internal/core"
)

type BudgetLine struct {
	Name    string
	Budget  float64
	Spent   float64
	Percent float64
}

// Over reports whether spending exceeded the budget.
func (l BudgetLine) Over() bool {
	return l.Budget > 0 && l.Spent > l.Budget
}

// BarPercent clamps Percent to [0, 100] for drawing.
func (l BudgetLine) BarPercent() float64 {
	switch {
	case l.Percent < 0:
		return 0
	case l.Percent > 100:
		return 100
	}
	return l.Percent
}

// BudgetUtilization compares the month's spending per category against the
// budget table. Categories match by exact name. Percent is not capped; a
// budget of zero or less reports 0 percent.
func BudgetUtilization(expenses []core.Expense, budgets []core.Budget, year int, month time.Month) []BudgetLine {
	spent := make(map[string]float64, len(budgets))
	for _, e := range expenses {
		if e.Date.SameMonth(year, month) {
			spent[e.Category] += value(e.Amount)
		}
	}
	out := make([]BudgetLine, 0, len(budgets))
	for _, b := range budgets {
		line := BudgetLine{Name: b.Name, Budget: b.Amount, Spent: spent[b.Name]}
		if b.Amount > 0 {
			line.Percent = line.Spent / b.Amount * 100
		}
		out = append(out, line)
	}
	return out
}

// TotalBudget sums the budget table.
func TotalBudget(budgets []core.Budget) float64 {
	var sum float64
	for _, b := range budgets {
		sum += b.Amount
	}
	return sum
}
