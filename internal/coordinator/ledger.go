package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/aggregate"
	"spendwise/internal/api"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// LedgerSource is what the ledger reads and writes.
type LedgerSource interface {
	api.Expenses
	api.Income
}

// LedgerView lists every expense and income record.
type LedgerView struct {
	Loaded       bool
	Error        string
	Notice       string
	Expenses     []core.Expense
	Income       []core.Income
	TotalSpent   float64
	TotalIncome  float64
	Net          float64
	ExpenseCount int
	IncomeCount  int
}

// DefaultCategory is preselected for new ledger expenses.
const DefaultCategory = "Rent"

type Ledger struct {
	cycle
	src  LedgerSource
	set  settings
	view LedgerView
}

func NewLedger(src LedgerSource, opts ...Option) *Ledger {
	return &Ledger{src: src, set: newSettings("ledger", opts), view: emptyLedger("")}
}

func emptyLedger(msg string) LedgerView {
	return LedgerView{Error: msg, Expenses: []core.Expense{}, Income: []core.Income{}}
}

func (l *Ledger) View() LedgerView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

func (l *Ledger) Refresh(ctx context.Context) error {
	gen := l.begin()

	var (
		expenses []core.Expense
		income   []core.Income
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = l.src.ListExpenses(gctx, core.ExpenseFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		income, err = l.src.ListIncome(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		msg := fail(ctx, l.set.log(ctx), log.OpFetch, err, "Failed to fetch data")
		if cerr := l.commit(ctx, l.set.log(ctx), gen, func() { l.view = emptyLedger(msg) }); cerr != nil {
			return cerr
		}
		return err
	}

	return l.commit(ctx, l.set.log(ctx), gen, func() {
		notice := l.view.Notice
		spent, earned := aggregate.TotalExpenses(expenses), aggregate.TotalIncome(income)
		l.view = LedgerView{
			Loaded:       true,
			Notice:       notice,
			Expenses:     expenses,
			Income:       income,
			TotalSpent:   spent,
			TotalIncome:  earned,
			Net:          earned - spent,
			ExpenseCount: len(expenses),
			IncomeCount:  len(income),
		}
	})
}

// AddExpense records an expense under a budget category. Category and date
// default to DefaultCategory and today.
func (l *Ledger) AddExpense(ctx context.Context, in core.ExpenseInput) error {
	in.Normalize()
	if in.Category == "" && in.Split == "" {
		in.Category = DefaultCategory
	}
	if in.Date.IsZero() {
		in.Date = l.set.today()
	}
	if in.PaidBy == "" {
		in.PaidBy = l.set.payer
	}
	return l.mutate(ctx, log.OpCreate, "Failed to add expense", "Expense added", func() error {
		if err := in.Validate(); err != nil {
			return err
		}
		_, err := l.src.CreateExpense(ctx, in)
		return err
	})
}

// AddIncome records income; the source defaults to Salary.
func (l *Ledger) AddIncome(ctx context.Context, in core.IncomeInput) error {
	if in.Source == "" {
		in.Source = core.Salary
	}
	if in.Date.IsZero() {
		in.Date = l.set.today()
	}
	return l.mutate(ctx, log.OpCreate, "Failed to add income", "Income added", func() error {
		if err := in.Validate(); err != nil {
			return err
		}
		_, err := l.src.CreateIncome(ctx, in)
		return err
	})
}

func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	return l.mutate(ctx, log.OpDelete, "Failed to delete expense", "Expense deleted", func() error {
		return l.src.DeleteExpense(ctx, id)
	})
}

func (l *Ledger) DeleteIncome(ctx context.Context, id string) error {
	return l.mutate(ctx, log.OpDelete, "Failed to delete income", "Income deleted", func() error {
		return l.src.DeleteIncome(ctx, id)
	})
}

// mutate runs call; on failure the lists stay as they are and the error is
// shown, on success the ledger is fetched again.
func (l *Ledger) mutate(ctx context.Context, op, fallback, notice string, call func() error) error {
	if err := call(); err != nil {
		msg := fail(ctx, l.set.log(ctx), op, err, fallback)
		l.update(func() { l.view.Error, l.view.Notice = msg, "" })
		return err
	}
	l.update(func() { l.view.Error, l.view.Notice = "", notice })
	return l.Refresh(ctx)
}
