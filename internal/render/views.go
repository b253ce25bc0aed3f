package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/aggregate"
	"spendwise/internal/coordinator"
	"spendwise/internal/core"
	"spendwise/internal/session"
)

func (r *Renderer) Dashboard(w io.Writer, v coordinator.DashboardView) {
	fmt.Fprintf(w, "# Dashboard, %s %d\n\n", v.Month, v.Year)
	banner(w, v.Error, "")

	table(w, []string{"", "Amount"}, "lr", [][]string{
		{"Income", r.Money(v.Income)},
		{"Spent", r.Money(v.Spent)},
		{"**Balance**", "**" + r.Money(v.Balance) + "**"},
		{"Invested", r.Money(v.Invested)},
		{"Total budget", r.Money(v.TotalBudget)},
	})

	fmt.Fprintln(w, "## Budgets")
	fmt.Fprintln(w)
	rows := make([][]string, 0, len(v.Budgets))
	for _, b := range v.Budgets {
		pct := strconv.FormatFloat(b.Percent, 'f', 0, 64) + "%"
		if b.Over() {
			pct = "**" + pct + "**"
		}
		rows = append(rows, []string{cell(b.Name), r.Money(b.Spent), r.Money(b.Budget), bar(b.BarPercent()), pct})
	}
	table(w, []string{"Category", "Spent", "Budget", "", "Used"}, "lrrlr", rows)

	fmt.Fprintln(w, "## Last 12 months")
	fmt.Fprintln(w)
	trend := make([][]string, 0, len(v.Trend))
	for _, m := range v.Trend {
		trend = append(trend, []string{
			m.Label(),
			r.Money(m.Income),
			r.Money(m.Expenses),
			r.Money(m.Net()),
			bar(m.Expenses / v.TrendScale * 100),
		})
	}
	table(w, []string{"Month", "Income", "Expenses", "Net", ""}, "lrrrl", trend)
}

func (r *Renderer) Ledger(w io.Writer, v coordinator.LedgerView) {
	fmt.Fprintln(w, "# Ledger")
	fmt.Fprintln(w)
	banner(w, v.Error, v.Notice)

	table(w, []string{"", "Records", "Total"}, "lrr", [][]string{
		{"Income", strconv.Itoa(v.IncomeCount), r.Money(v.TotalIncome)},
		{"Expenses", strconv.Itoa(v.ExpenseCount), r.Money(v.TotalSpent)},
		{"**Net**", "", "**" + r.Money(v.Net) + "**"},
	})

	fmt.Fprintln(w, "## Expenses")
	fmt.Fprintln(w)
	r.expenseTable(w, v.Expenses, true)

	fmt.Fprintln(w, "## Income")
	fmt.Fprintln(w)
	r.IncomeTable(w, v.Income)
}

func (r *Renderer) ExpenseList(w io.Writer, v coordinator.ExpenseListView) {
	fmt.Fprintln(w, "# Expenses")
	fmt.Fprintln(w)
	banner(w, v.Error, "")

	if f := r.filterLine(v.Filter, v.Splits); f != "" {
		fmt.Fprintf(w, "*%s*\n\n", f)
	}
	r.expenseTable(w, v.Expenses, false)
	fmt.Fprintf(w, "**Total:** %s across %d expenses\n", r.Money(v.Total), len(v.Expenses))
}

func (r *Renderer) filterLine(f core.ExpenseFilter, splits []core.Split) string {
	if f.IsZero() {
		return ""
	}
	var parts []string
	if f.Split != "" {
		name := f.Split
		for _, s := range splits {
			if s.ID == f.Split {
				name = s.Name
			}
		}
		parts = append(parts, "split "+name)
	}
	if !f.Start.IsEmpty() {
		parts = append(parts, "from "+f.Start.String())
	}
	if !f.End.IsEmpty() {
		parts = append(parts, "until "+f.End.String())
	}
	return "Filtered by " + strings.Join(parts, ", ")
}

func (r *Renderer) expenseTable(w io.Writer, expenses []core.Expense, category bool) {
	if len(expenses) == 0 {
		fmt.Fprintln(w, "No expenses.")
		fmt.Fprintln(w)
		return
	}
	group := "Split"
	if category {
		group = "Category"
	}
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		label := e.Label()
		if category && e.Category != "" {
			label = e.Category
		}
		rows = append(rows, []string{
			e.Date.String(),
			cell(e.Description),
			cell(label),
			cell(e.Payer(r.payer)),
			r.Money(float64(e.Amount)),
			"`" + e.ID + "`",
		})
	}
	table(w, []string{"Date", "Description", group, "Paid by", "Amount", "ID"}, "llllrl", rows)
}

func (r *Renderer) IncomeTable(w io.Writer, income []core.Income) {
	if len(income) == 0 {
		fmt.Fprintln(w, "No income.")
		fmt.Fprintln(w)
		return
	}
	rows := make([][]string, 0, len(income))
	for _, in := range income {
		rows = append(rows, []string{in.Date.String(), cell(string(in.Source)), r.Money(float64(in.Amount)), "`" + in.ID + "`"})
	}
	table(w, []string{"Date", "Source", "Amount", "ID"}, "llrl", rows)
}

func (r *Renderer) Splits(w io.Writer, v coordinator.SplitsView) {
	fmt.Fprintln(w, "# Splits")
	fmt.Fprintln(w)
	banner(w, v.Error, "")

	if len(v.Analytics) == 0 {
		fmt.Fprintln(w, "No splits yet.")
		return
	}
	shares := aggregate.CategoryShares(v.Analytics)
	rows := make([][]string, 0, len(v.Analytics))
	for i, g := range v.Analytics {
		share := shares[i]
		id := ""
		if g.Name != aggregate.Unlabeled {
			id = "`" + g.Key + "`"
		}
		rows = append(rows, []string{
			cell(g.Name),
			"`" + g.Color + "`",
			strconv.Itoa(g.Count),
			r.Money(g.Total),
			strconv.FormatFloat(share.Percent, 'f', 1, 64) + "%",
			id,
		})
	}
	table(w, []string{"Split", "Color", "Expenses", "Total", "Share", "ID"}, "llrrrl", rows)
	fmt.Fprintf(w, "**Total:** %s\n", r.Money(v.Total))
}

func (r *Renderer) Statistics(w io.Writer, v coordinator.StatisticsView) {
	fmt.Fprintln(w, "# Statistics")
	fmt.Fprintln(w)
	banner(w, v.Error, "")

	fmt.Fprintf(w, "**%d expenses**, %s in total\n\n", v.ExpenseCount, r.Money(v.TotalAmount))

	rows := make([][]string, 0, len(v.Summary))
	for i, g := range v.Summary {
		pct := v.Shares[i].Percent
		rows = append(rows, []string{
			cell(g.Name),
			strconv.Itoa(g.Count),
			r.Money(g.Total),
			bar(pct),
			strconv.FormatFloat(pct, 'f', 1, 64) + "%",
		})
	}
	if len(rows) > 0 {
		table(w, []string{"Split", "Count", "Total", "", "Share"}, "lrrlr", rows)
	}
}

func (r *Renderer) Daily(w io.Writer, v coordinator.StatisticsView) {
	fmt.Fprintln(w, "# Daily spending")
	fmt.Fprintln(w)
	banner(w, v.Error, "")

	if len(v.Daily) == 0 {
		fmt.Fprintln(w, "No expenses.")
		return
	}
	values := make([]float64, len(v.Daily))
	for i, d := range v.Daily {
		values[i] = float64(d.Total)
	}
	scale := aggregate.Scale(values)
	rows := make([][]string, 0, len(v.Daily))
	for _, d := range v.Daily {
		rows = append(rows, []string{d.Date.String(), strconv.Itoa(d.Count), r.Money(float64(d.Total)), bar(float64(d.Total) / scale * 100)})
	}
	table(w, []string{"Date", "Count", "Total", ""}, "lrrl", rows)
}

func (r *Renderer) Reports(w io.Writer, v coordinator.ReportsView) {
	fmt.Fprintf(w, "# Report %d\n\n", v.Year)
	banner(w, v.Error, "")

	rows := make([][]string, 0, 12)
	for i, total := range v.Months {
		rows = append(rows, []string{
			aggregate.MonthBucket{Year: v.Year, Month: time.Month(i + 1)}.Label(),
			r.Money(total),
			bar(total / v.Scale * 100),
		})
	}
	table(w, []string{"Month", "Total", ""}, "lrl", rows)
	fmt.Fprintf(w, "**Year total:** %s\n\n", r.Money(v.YearTotal))

	r.TopExpenses(w, v)
}

func (r *Renderer) TopExpenses(w io.Writer, v coordinator.ReportsView) {
	fmt.Fprintf(w, "## Top %d expenses\n\n", len(v.Top))
	if len(v.Top) == 0 {
		fmt.Fprintln(w, "No expenses.")
		return
	}
	rows := make([][]string, 0, len(v.Top))
	for i, e := range v.Top {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Date.String(), cell(e.Description), cell(e.Label()), r.Money(float64(e.Amount))})
	}
	table(w, []string{"#", "Date", "Description", "Split", "Amount"}, "rlllr", rows)
}

// User shows the signed-in account and what the token claims, if readable.
func (r *Renderer) User(w io.Writer, u core.User, claims session.Claims, ok bool) {
	fmt.Fprintln(w, "# Signed in")
	fmt.Fprintln(w)
	rows := [][]string{
		{"Name", cell(u.Name)},
		{"Email", cell(u.Email)},
		{"ID", "`" + u.ID + "`"},
	}
	if ok && !claims.ExpiresAt.IsZero() {
		rows = append(rows, []string{"Token expires", claims.ExpiresAt.Format("2006-01-02 15:04")})
	}
	table(w, []string{"", ""}, "ll", rows)
}

// SplitBill shows what each member owes for amount.
func (r *Renderer) SplitBill(w io.Writer, amount float64, members int, share float64) {
	fmt.Fprintln(w, "# Split bill")
	fmt.Fprintln(w)
	table(w, []string{"", ""}, "lr", [][]string{
		{"Amount", r.Money(amount)},
		{"Members", strconv.Itoa(members)},
		{"**Each pays**", "**" + r.Money(core.Round2(share)) + "**"},
	})
}
