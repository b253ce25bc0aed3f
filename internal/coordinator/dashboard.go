package coordinator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/aggregate"
	"spendwise/internal/api"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// DashboardSource is what the dashboard reads.
type DashboardSource interface {
	api.Expenses
	api.Income
}

// DashboardView summarizes the current month and the past year.
type DashboardView struct {
	Loaded      bool
	Error       string
	Year        int
	Month       time.Month
	Spent       float64
	Income      float64
	Balance     float64
	Invested    float64
	TotalBudget float64
	Budgets     []aggregate.BudgetLine
	Trend       [12]aggregate.MonthBucket
	TrendScale  float64
}

// InvestmentCategory is the budget category reported as invested.
const InvestmentCategory = "Investments"

type Dashboard struct {
	cycle
	src  DashboardSource
	set  settings
	view DashboardView
}

func NewDashboard(src DashboardSource, opts ...Option) *Dashboard {
	d := &Dashboard{src: src, set: newSettings("dashboard", opts)}
	d.view = d.empty("")
	return d
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.view
	v.Budgets = append([]aggregate.BudgetLine(nil), d.view.Budgets...)
	return v
}

func (d *Dashboard) empty(msg string) DashboardView {
	now := d.set.now()
	v := DashboardView{
		Error:       msg,
		Year:        now.Year(),
		Month:       now.Month(),
		TotalBudget: aggregate.TotalBudget(core.DefaultBudgets),
		Budgets:     aggregate.BudgetUtilization(nil, core.DefaultBudgets, now.Year(), now.Month()),
		Trend:       aggregate.RollingSeries(now, nil, nil),
		TrendScale:  1,
	}
	return v
}

// Refresh fetches expenses and income together and recomputes the view.
func (d *Dashboard) Refresh(ctx context.Context) error {
	gen := d.begin()

	var (
		expenses []core.Expense
		income   []core.Income
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = d.src.ListExpenses(gctx, core.ExpenseFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		income, err = d.src.ListIncome(gctx)
		return err
	})
	err := g.Wait()

	if err != nil {
		msg := fail(ctx, d.set.log(ctx), log.OpFetch, err, "Failed to load dashboard")
		if cerr := d.commit(ctx, d.set.log(ctx), gen, func() { d.view = d.empty(msg) }); cerr != nil {
			return cerr
		}
		return err
	}

	now := d.set.now()
	year, month := now.Year(), now.Month()
	monthExpenses := aggregate.ExpensesInMonth(expenses, year, month)
	spent := aggregate.TotalExpenses(monthExpenses)
	earned := aggregate.TotalIncome(aggregate.IncomeInMonth(income, year, month))
	budgets := aggregate.BudgetUtilization(expenses, core.DefaultBudgets, year, month)
	trend := aggregate.RollingSeries(now, expenses, income)

	var invested float64
	for _, b := range budgets {
		if b.Name == InvestmentCategory {
			invested = b.Spent
		}
	}
	scale := make([]float64, 0, 24)
	for _, b := range trend {
		scale = append(scale, b.Income, b.Expenses)
	}

	d.set.log(ctx).DebugContext(ctx, "Dashboard fetched",
		log.FieldYear, year, log.FieldMonth, int(month), log.FieldCount, len(monthExpenses))

	return d.commit(ctx, d.set.log(ctx), gen, func() {
		d.view = DashboardView{
			Loaded:      true,
			Year:        year,
			Month:       month,
			Spent:       spent,
			Income:      earned,
			Balance:     earned - spent,
			Invested:    invested,
			TotalBudget: aggregate.TotalBudget(core.DefaultBudgets),
			Budgets:     budgets,
			Trend:       trend,
			TrendScale:  aggregate.Scale(scale),
		}
	})
}
