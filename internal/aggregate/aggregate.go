// Package aggregate computes the derived views shown by the client: totals,
// per-split summaries, monthly series, budget utilization and rankings.
//
// Every function is pure. Absent or non-numeric amounts count as 0 and
// nothing here returns an error for missing data.
package aggregate

import (
	"errors"
	"math"
	"sort"

	"spendwise/internal/core"
)

const (
	MinMembers = 2
	MaxMembers = 10
)

var ErrMembers = errors.New("members must be between 2 and 10")

func value(a core.Amount) float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// GrandTotal sums amounts, treating non-finite values as 0.
func GrandTotal(amounts ...core.Amount) float64 {
	var sum float64
	for _, a := range amounts {
		sum += value(a)
	}
	return sum
}

func TotalExpenses(expenses []core.Expense) float64 {
	amounts := make([]core.Amount, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.Amount
	}
	return GrandTotal(amounts...)
}

func TotalIncome(income []core.Income) float64 {
	amounts := make([]core.Amount, len(income))
	for i, in := range income {
		amounts[i] = in.Amount
	}
	return GrandTotal(amounts...)
}

// TopN returns the n largest expenses, highest first. Equal amounts keep
// their input order. The input slice is not modified.
func TopN(expenses []core.Expense, n int) []core.Expense {
	if n <= 0 {
		return []core.Expense{}
	}
	out := make([]core.Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool {
		return value(out[i].Amount) > value(out[j].Amount)
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Scale returns the largest value, never less than 1, for sizing bars.
func Scale(values []float64) float64 {
	max := 1.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

// ShareOf splits amount evenly between members.
func ShareOf(amount float64, members int) (float64, error) {
	if members < MinMembers || members > MaxMembers {
		return 0, ErrMembers
	}
	return amount / float64(members), nil
}
