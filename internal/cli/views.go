package cli

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"

	"spendwise/internal/coordinator"
	"spendwise/internal/core"
)

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "current month totals, budgets and the last 12 months" }
func (*dashboardCmd) Usage() string {
	return `spendwise dashboard

  Shows income, spending and balance for the current month, budget
  utilization per category and a rolling 12 month trend.
`
}
func (*dashboardCmd) SetFlags(*flag.FlagSet) {}

func (*dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, true, func(ctx context.Context, app *App) error {
		d := coordinator.NewDashboard(app.Gateway, app.CoordinatorOptions()...)
		err := d.Refresh(ctx)
		if perr := app.print(func(b *strings.Builder) { app.Renderer.Dashboard(b, d.View()) }); perr != nil {
			return perr
		}
		return shown(err)
	})
}

type ledgerCmd struct{}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "all expenses and income with totals" }
func (*ledgerCmd) Usage() string {
	return `spendwise ledger

  Lists every expense and income record, newest first.
`
}
func (*ledgerCmd) SetFlags(*flag.FlagSet) {}

func (*ledgerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, true, func(ctx context.Context, app *App) error {
		l := coordinator.NewLedger(app.Gateway, app.CoordinatorOptions()...)
		err := l.Refresh(ctx)
		if perr := app.print(func(b *strings.Builder) { app.Renderer.Ledger(b, l.View()) }); perr != nil {
			return perr
		}
		return shown(err)
	})
}

// expensesCmd holds the flags for the 'expenses' subcommand.
type expensesCmd struct {
	split string
	from  string
	to    string
}

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "list expenses, optionally filtered by split and date range" }
func (*expensesCmd) Usage() string {
	return `spendwise expenses [-split <id|name>] [-from YYYY-MM-DD] [-to YYYY-MM-DD]

  Lists expenses. Either date bound may be given alone; both are inclusive.
`
}

func (c *expensesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.split, "split", "", "Only expenses in this split (id or name)")
	f.StringVar(&c.from, "from", "", "Earliest date, inclusive")
	f.StringVar(&c.to, "to", "", "Latest date, inclusive")
}

func (c *expensesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, err := parseDate(c.from)
	if err != nil {
		return usage(f, "%v", err)
	}
	end, err := parseDate(c.to)
	if err != nil {
		return usage(f, "%v", err)
	}
	return run(ctx, true, func(ctx context.Context, app *App) error {
		split, err := resolveSplit(ctx, app.Gateway, c.split)
		if err != nil {
			return err
		}
		list := coordinator.NewExpenseList(app.Gateway, app.CoordinatorOptions()...)
		err = list.SetFilter(ctx, core.ExpenseFilter{Split: split, Start: start, End: end})
		if perr := app.print(func(b *strings.Builder) { app.Renderer.ExpenseList(b, list.View()) }); perr != nil {
			return perr
		}
		return shown(err)
	})
}

type incomeCmd struct{}

func (*incomeCmd) Name() string           { return "income" }
func (*incomeCmd) Synopsis() string       { return "list income records" }
func (*incomeCmd) Usage() string          { return "spendwise income\n" }
func (*incomeCmd) SetFlags(*flag.FlagSet) {}

func (*incomeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, true, func(ctx context.Context, app *App) error {
		l := coordinator.NewLedger(app.Gateway, app.CoordinatorOptions()...)
		err := l.Refresh(ctx)
		v := l.View()
		if perr := app.print(func(b *strings.Builder) {
			b.WriteString("# Income\n\n")
			if v.Error != "" {
				b.WriteString("> **Error:** " + v.Error + "\n\n")
			}
			app.Renderer.IncomeTable(b, v.Income)
			b.WriteString("**Total:** " + app.Renderer.Money(v.TotalIncome) + "\n")
		}); perr != nil {
			return perr
		}
		return shown(err)
	})
}

type splitsCmd struct{}

func (*splitsCmd) Name() string     { return "splits" }
func (*splitsCmd) Synopsis() string { return "list splits with spending per split" }
func (*splitsCmd) Usage() string {
	return `spendwise splits

  Lists every split with its expense count, total and share. Expenses whose
  split was deleted are grouped as Unlabeled.
`
}
func (*splitsCmd) SetFlags(*flag.FlagSet) {}

func (*splitsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, true, func(ctx context.Context, app *App) error {
		s := coordinator.NewSplits(app.Gateway, app.CoordinatorOptions()...)
		err := s.Refresh(ctx)
		if perr := app.print(func(b *strings.Builder) { app.Renderer.Splits(b, s.View()) }); perr != nil {
			return perr
		}
		return shown(err)
	})
}

type statsCmd struct{}

func (*statsCmd) Name() string           { return "stats" }
func (*statsCmd) Synopsis() string       { return "server-side spending summary per split" }
func (*statsCmd) Usage() string          { return "spendwise stats\n" }
func (*statsCmd) SetFlags(*flag.FlagSet) {}

func (*statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, true, func(ctx context.Context, app *App) error {
		s := coordinator.NewStatistics(app.Gateway, app.CoordinatorOptions()...)
		err := s.Refresh(ctx)
		if perr := app.print(func(b *strings.Builder) { app.Renderer.Statistics(b, s.View()) }); perr != nil {
			return perr
		}
		return shown(err)
	})
}

type dailyCmd struct{}

func (*dailyCmd) Name() string           { return "daily" }
func (*dailyCmd) Synopsis() string       { return "spending per day" }
func (*dailyCmd) Usage() string          { return "spendwise daily\n" }
func (*dailyCmd) SetFlags(*flag.FlagSet) {}

func (*dailyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, true, func(ctx context.Context, app *App) error {
		s := coordinator.NewStatistics(app.Gateway, app.CoordinatorOptions()...)
		err := s.Refresh(ctx)
		if perr := app.print(func(b *strings.Builder) { app.Renderer.Daily(b, s.View()) }); perr != nil {
			return perr
		}
		return shown(err)
	})
}

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	year int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "monthly totals for a year and the largest expenses" }
func (*reportCmd) Usage() string {
	return `spendwise report [-year YYYY]

  Shows the total spent in each month of the year and the top expenses.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Year to report on (defaults to the current year)")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.year < 0 {
		return usage(f, "invalid year %d", c.year)
	}
	return run(ctx, true, func(ctx context.Context, app *App) error {
		r := coordinator.NewReports(app.Gateway, app.CoordinatorOptions()...)
		var err error
		if c.year > 0 {
			err = r.SetYear(ctx, c.year)
		} else {
			err = r.Refresh(ctx)
		}
		if perr := app.print(func(b *strings.Builder) { app.Renderer.Reports(b, r.View()) }); perr != nil {
			return perr
		}
		return shown(err)
	})
}

// topCmd holds the flags for the 'top' subcommand.
type topCmd struct {
	n int
}

func (*topCmd) Name() string     { return "top" }
func (*topCmd) Synopsis() string { return "the largest expenses" }
func (*topCmd) Usage() string {
	return `spendwise top [-n N]

  Lists the N largest expenses, highest first. Defaults to TOP_LIMIT.
`
}

func (c *topCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 0, "How many expenses to show")
}

func (c *topCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.n < 0 {
		return usage(f, "-n must be positive")
	}
	return run(ctx, true, func(ctx context.Context, app *App) error {
		opts := app.CoordinatorOptions()
		if c.n > 0 {
			opts = append(opts, coordinator.WithTopLimit(c.n))
		}
		r := coordinator.NewReports(app.Gateway, opts...)
		err := r.Refresh(ctx)
		if perr := app.print(func(b *strings.Builder) { app.Renderer.TopExpenses(b, r.View()) }); perr != nil {
			return perr
		}
		return shown(err)
	})
}
