package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"spendwise/internal/aggregate"
	"spendwise/internal/coordinator"
	"spendwise/internal/core"
)

// expenseAddCmd holds the flags for the 'expense-add' subcommand.
type expenseAddCmd struct {
	description string
	amount      string
	split       string
	category    string
	paidBy      string
	date        string
	notes       string
}

func (*expenseAddCmd) Name() string     { return "expense-add" }
func (*expenseAddCmd) Synopsis() string { return "record an expense" }
func (*expenseAddCmd) Usage() string {
	return `spendwise expense-add -desc <text> -amount <n> [-split <id|name> | -category <name>] [-paid-by <name>] [-date YYYY-MM-DD] [-notes <text>]

  Records an expense in a split, or under a budget category when no split is
  given (Rent by default). The date defaults to today.
`
}

func (c *expenseAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "desc", "", "Description")
	f.StringVar(&c.amount, "amount", "", "Amount, e.g. 12.50")
	f.StringVar(&c.split, "split", "", "Split id or name")
	f.StringVar(&c.category, "category", "", "Budget category, used when no split is given")
	f.StringVar(&c.paidBy, "paid-by", "", "Who paid (defaults to DEFAULT_PAYER)")
	f.StringVar(&c.date, "date", "", "Date of the expense (defaults to today)")
	f.StringVar(&c.notes, "notes", "", "Free text notes")
}

func (c *expenseAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var amount float64
	if strings.TrimSpace(c.amount) != "" {
		v, err := core.ParseAmount(c.amount)
		if err != nil {
			return usage(f, "invalid amount %q", c.amount)
		}
		amount = v
	}
	date, err := parseDate(c.date)
	if err != nil {
		return usage(f, "%v", err)
	}
	in := core.ExpenseInput{
		Description: c.description,
		Amount:      amount,
		Category:    c.category,
		PaidBy:      c.paidBy,
		Date:        date,
		Notes:       c.notes,
	}

	return run(ctx, true, func(ctx context.Context, app *App) error {
		if strings.TrimSpace(c.split) == "" {
			l := coordinator.NewLedger(app.Gateway, app.CoordinatorOptions()...)
			if err := l.AddExpense(ctx, in); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, l.View().Notice)
			return nil
		}

		split, err := resolveSplit(ctx, app.Gateway, c.split)
		if err != nil {
			return err
		}
		in.Split = split
		list := coordinator.NewExpenseList(app.Gateway, app.CoordinatorOptions()...)
		if err := list.Add(ctx, in); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, "Expense added")
		return nil
	})
}

type expenseRmCmd struct{}

func (*expenseRmCmd) Name() string           { return "expense-rm" }
func (*expenseRmCmd) Synopsis() string       { return "delete an expense" }
func (*expenseRmCmd) Usage() string          { return "spendwise expense-rm <id>\n" }
func (*expenseRmCmd) SetFlags(*flag.FlagSet) {}

func (*expenseRmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneID(f)
	if !ok {
		return usage(f, "expected exactly one expense id")
	}
	return run(ctx, true, func(ctx context.Context, app *App) error {
		l := coordinator.NewLedger(app.Gateway, app.CoordinatorOptions()...)
		if err := l.DeleteExpense(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, l.View().Notice)
		return nil
	})
}

// incomeAddCmd holds the flags for the 'income-add' subcommand.
type incomeAddCmd struct {
	amount string
	source string
	date   string
}

func (*incomeAddCmd) Name() string     { return "income-add" }
func (*incomeAddCmd) Synopsis() string { return "record income" }
func (*incomeAddCmd) Usage() string {
	return `spendwise income-add -amount <n> [-source <source>] [-date YYYY-MM-DD]

  Records income. Sources: Salary (default), Freelance, Business,
  Investment, Bonus, Other.
`
}

func (c *incomeAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Amount, e.g. 50000")
	f.StringVar(&c.source, "source", "", "Income source")
	f.StringVar(&c.date, "date", "", "Date received (defaults to today)")
}

func (c *incomeAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var amount float64
	if strings.TrimSpace(c.amount) != "" {
		v, err := core.ParseAmount(c.amount)
		if err != nil {
			return usage(f, "invalid amount %q", c.amount)
		}
		amount = v
	}
	source, ok := incomeSource(c.source)
	if !ok {
		return usage(f, "unknown income source %q", c.source)
	}
	date, err := parseDate(c.date)
	if err != nil {
		return usage(f, "%v", err)
	}

	return run(ctx, true, func(ctx context.Context, app *App) error {
		l := coordinator.NewLedger(app.Gateway, app.CoordinatorOptions()...)
		if err := l.AddIncome(ctx, core.IncomeInput{Amount: amount, Source: source, Date: date}); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, l.View().Notice)
		return nil
	})
}

// incomeSource matches s case-insensitively; empty means the default.
func incomeSource(s string) (core.IncomeSource, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	for _, src := range core.IncomeSources {
		if strings.EqualFold(string(src), s) {
			return src, true
		}
	}
	return "", false
}

type incomeRmCmd struct{}

func (*incomeRmCmd) Name() string           { return "income-rm" }
func (*incomeRmCmd) Synopsis() string       { return "delete an income record" }
func (*incomeRmCmd) Usage() string          { return "spendwise income-rm <id>\n" }
func (*incomeRmCmd) SetFlags(*flag.FlagSet) {}

func (*incomeRmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := oneID(f)
	if !ok {
		return usage(f, "expected exactly one income id")
	}
	return run(ctx, true, func(ctx context.Context, app *App) error {
		l := coordinator.NewLedger(app.Gateway, app.CoordinatorOptions()...)
		if err := l.DeleteIncome(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, l.View().Notice)
		return nil
	})
}

// splitAddCmd holds the flags for the 'split-add' subcommand.
type splitAddCmd struct {
	name  string
	color string
}

func (*splitAddCmd) Name() string     { return "split-add" }
func (*splitAddCmd) Synopsis() string { return "create a split" }
func (*splitAddCmd) Usage() string {
	return `spendwise split-add -name <name> [-color #rrggbb]
`
}

func (c *splitAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Split name")
	f.StringVar(&c.color, "color", core.DefaultSplitColor, "Display color")
}

func (c *splitAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, true, func(ctx context.Context, app *App) error {
		s := coordinator.NewSplits(app.Gateway, app.CoordinatorOptions()...)
		if err := s.Add(ctx, core.SplitInput{Name: c.name, Color: c.color}); err != nil {
			return err
		}
		return app.print(func(b *strings.Builder) { app.Renderer.Splits(b, s.View()) })
	})
}

type splitRmCmd struct{}

func (*splitRmCmd) Name() string     { return "split-rm" }
func (*splitRmCmd) Synopsis() string { return "delete a split" }
func (*splitRmCmd) Usage() string {
	return `spendwise split-rm <id|name>

  Deletes the split. Its expenses are kept and show up as Unlabeled.
`
}
func (*splitRmCmd) SetFlags(*flag.FlagSet) {}

func (*splitRmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	value, ok := oneID(f)
	if !ok {
		return usage(f, "expected exactly one split id or name")
	}
	return run(ctx, true, func(ctx context.Context, app *App) error {
		id, err := resolveSplit(ctx, app.Gateway, value)
		if err != nil {
			return err
		}
		s := coordinator.NewSplits(app.Gateway, app.CoordinatorOptions()...)
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
		return app.print(func(b *strings.Builder) { app.Renderer.Splits(b, s.View()) })
	})
}

// splitBillCmd holds the flags for the 'split-bill' subcommand.
type splitBillCmd struct {
	amount  string
	members int
}

func (*splitBillCmd) Name() string     { return "split-bill" }
func (*splitBillCmd) Synopsis() string { return "divide a bill evenly between people" }
func (*splitBillCmd) Usage() string {
	return `spendwise split-bill -amount <n> -members <2..10>

  Computes each person's share locally. Nothing is saved.
`
}

func (c *splitBillCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Bill amount")
	f.IntVar(&c.members, "members", 2, "Number of people")
}

func (c *splitBillCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return usage(f, "invalid amount %q", c.amount)
	}
	share, err := aggregate.ShareOf(amount, c.members)
	if err != nil {
		return usage(f, "%v", err)
	}
	return run(ctx, false, func(_ context.Context, app *App) error {
		return app.print(func(b *strings.Builder) { app.Renderer.SplitBill(b, amount, c.members, share) })
	})
}
