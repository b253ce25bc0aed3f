package coordinator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/aggregate"
	"spendwise/internal/api"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// ExpenseListSource is what the filtered expense list reads and writes.
type ExpenseListSource interface {
	api.Expenses
	api.Splits
}

type ExpenseListView struct {
	Loaded   bool
	Error    string
	Filter   core.ExpenseFilter
	Splits   []core.Split
	Expenses []core.Expense
	Total    float64
}

// ExpenseList shows expenses matching a split and date range filter.
type ExpenseList struct {
	cycle
	src    ExpenseListSource
	set    settings
	filter core.ExpenseFilter
	view   ExpenseListView
}

func NewExpenseList(src ExpenseListSource, opts ...Option) *ExpenseList {
	e := &ExpenseList{src: src, set: newSettings("expenses", opts)}
	e.view = emptyExpenseList(core.ExpenseFilter{}, "")
	return e
}

func emptyExpenseList(f core.ExpenseFilter, msg string) ExpenseListView {
	return ExpenseListView{Error: msg, Filter: f, Splits: []core.Split{}, Expenses: []core.Expense{}}
}

func (e *ExpenseList) View() ExpenseListView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// SetFilter replaces the filter and fetches again.
func (e *ExpenseList) SetFilter(ctx context.Context, f core.ExpenseFilter) error {
	e.update(func() { e.filter = f })
	return e.Refresh(ctx)
}

func (e *ExpenseList) Refresh(ctx context.Context) error {
	gen := e.begin()
	var f core.ExpenseFilter
	e.update(func() { f = e.filter })

	var (
		expenses []core.Expense
		splits   []core.Split
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = e.src.ListExpenses(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		splits, err = e.src.ListSplits(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		msg := fail(ctx, e.set.log(ctx), log.OpList, err, "Failed to fetch expenses")
		if cerr := e.commit(ctx, e.set.log(ctx), gen, func() { e.view = emptyExpenseList(f, msg) }); cerr != nil {
			return cerr
		}
		return err
	}

	return e.commit(ctx, e.set.log(ctx), gen, func() {
		e.view = ExpenseListView{
			Loaded:   true,
			Filter:   f,
			Splits:   splits,
			Expenses: expenses,
			Total:    aggregate.TotalExpenses(expenses),
		}
	})
}

// Add creates an expense against a split. Payer and date default to the
// configured payer and today.
func (e *ExpenseList) Add(ctx context.Context, in core.ExpenseInput) error {
	in.Normalize()
	if in.PaidBy == "" {
		in.PaidBy = e.set.payer
	}
	if in.Date.IsZero() {
		in.Date = e.set.today()
	}
	err := in.Validate()
	if err == nil && in.Split == "" {
		err = fmt.Errorf("%w: split", core.ErrRequired)
	}
	if err != nil {
		e.update(func() { e.view.Error = Message(err, "") })
		return err
	}
	if _, err := e.src.CreateExpense(ctx, in); err != nil {
		msg := fail(ctx, e.set.log(ctx), log.OpCreate, err, "Failed to add expense")
		e.update(func() { e.view.Error = msg })
		return err
	}
	return e.Refresh(ctx)
}

func (e *ExpenseList) Delete(ctx context.Context, id string) error {
	if err := e.src.DeleteExpense(ctx, id); err != nil {
		msg := fail(ctx, e.set.log(ctx), log.OpDelete, err, "Failed to delete expense")
		e.update(func() { e.view.Error = msg })
		return err
	}
	return e.Refresh(ctx)
}
