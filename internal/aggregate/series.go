package aggregate

import (
	"fmt"
	"time"

	"spendwise/internal/core"
)

// MonthBucket holds the sums for one calendar month.
type MonthBucket struct {
	Year     int
	Month    time.Month
	Expenses float64
	Income   float64
}

// Label renders the bucket as "Jan 2024".
func (b MonthBucket) Label() string {
	return fmt.Sprintf("%s %d", ShortMonth(b.Month), b.Year)
}

func (b MonthBucket) Net() float64 { return b.Income - b.Expenses }

// ShortMonth returns the three letter month name used by the stats API.
func ShortMonth(m time.Month) string {
	return m.String()[:3]
}

// MonthlySeries buckets the year's expenses and income by month, Jan..Dec.
// Income may be nil.
func MonthlySeries(year int, expenses []core.Expense, income []core.Income) [12]MonthBucket {
	var out [12]MonthBucket
	for i := range out {
		out[i] = MonthBucket{Year: year, Month: time.Month(i + 1)}
	}
	for _, e := range expenses {
		if e.Date.IsZero() || e.Date.Year() != year {
			continue
		}
		out[e.Date.Month()-1].Expenses += value(e.Amount)
	}
	for _, in := range income {
		if in.Date.IsZero() || in.Date.Year() != year {
			continue
		}
		out[in.Date.Month()-1].Income += value(in.Amount)
	}
	return out
}

// RollingSeries returns the twelve months ending at the anchor's month,
// oldest first.
func RollingSeries(anchor time.Time, expenses []core.Expense, income []core.Income) [12]MonthBucket {
	var out [12]MonthBucket
	index := make(map[[2]int]int, 12)
	for i := range out {
		t := time.Date(anchor.Year(), anchor.Month()-time.Month(11-i), 1, 0, 0, 0, 0, time.UTC)
		out[i] = MonthBucket{Year: t.Year(), Month: t.Month()}
		index[[2]int{t.Year(), int(t.Month())}] = i
	}
	for _, e := range expenses {
		if i, ok := index[[2]int{e.Date.Year(), int(e.Date.Month())}]; ok && !e.Date.IsZero() {
			out[i].Expenses += value(e.Amount)
		}
	}
	for _, in := range income {
		if i, ok := index[[2]int{in.Date.Year(), int(in.Date.Month())}]; ok && !in.Date.IsZero() {
			out[i].Income += value(in.Amount)
		}
	}
	return out
}

// ExpensesInMonth keeps the expenses dated in the given month.
func ExpensesInMonth(expenses []core.Expense, year int, month time.Month) []core.Expense {
	out := []core.Expense{}
	for _, e := range expenses {
		if e.Date.SameMonth(year, month) {
			out = append(out, e)
		}
	}
	return out
}

// IncomeInMonth keeps the income dated in the given month.
func IncomeInMonth(income []core.Income, year int, month time.Month) []core.Income {
	out := []core.Income{}
	for _, in := range income {
		if in.Date.SameMonth(year, month) {
			out = append(out, in)
		}
	}
	return out
}

// MonthTotals sums the server's monthly breakdown across splits, Jan..Dec.
// Months missing from the payload are 0.
func MonthTotals(b core.MonthlyBreakdown) [12]float64 {
	var out [12]float64
	for i := range out {
		for _, amt := range b[ShortMonth(time.Month(i+1))] {
			out[i] += value(amt)
		}
	}
	return out
}
