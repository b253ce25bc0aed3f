package coordinator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"spendwise/internal/aggregate"
	"spendwise/internal/api"
	"spendwise/internal/api/memory"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

var fixedNow = time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// gateway returns a signed-in in-memory gateway.
func gateway(t *testing.T) *memory.Client {
	t.Helper()
	store, err := memory.New(memory.WithBcryptCost(bcrypt.MinCost), memory.WithClock(clock))
	require.NoError(t, err)

	tok := new(string)
	c := store.Client(tokenFunc(func() string { return *tok }))
	res, err := c.Register(context.Background(), api.RegisterRequest{
		Name: "Ravi", Email: "ravi@example.com", Password: "secret", ConfirmPassword: "secret",
	})
	require.NoError(t, err)
	*tok = res.Token
	return c
}

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

// fakeStats serves canned stats. The first StatsSummary call blocks on gate
// when gate is set, after signalling started.
type fakeStats struct {
	mu      sync.Mutex
	calls   int
	gate    chan struct{}
	started chan struct{}
	totals  []float64
	err     error
}

func (f *fakeStats) StatsSummary(ctx context.Context) (core.StatsSummary, error) {
	f.mu.Lock()
	n := f.calls
	f.calls++
	f.mu.Unlock()

	if n == 0 && f.gate != nil {
		close(f.started)
		select {
		case <-f.gate:
		case <-ctx.Done():
			return core.StatsSummary{}, ctx.Err()
		}
	}
	if f.err != nil {
		return core.StatsSummary{}, f.err
	}
	total := f.totals[n]
	return core.StatsSummary{
		Summary:      map[string]core.SplitStat{"Food": {Total: core.Amount(total), Count: 1}},
		TotalAmount:  core.Amount(total),
		ExpenseCount: 1,
	}, nil
}

func (f *fakeStats) StatsMonthly(context.Context, int) (core.MonthlyBreakdown, error) {
	if f.err != nil {
		return nil, f.err
	}
	return core.MonthlyBreakdown{"Jan": {"Food": 120}, "Mar": {"Food": 30, "Rent": 50}}, nil
}

func (f *fakeStats) StatsDaily(context.Context) ([]core.DailyStat, error) {
	return []core.DailyStat{{Date: core.NewDate(2024, 3, 1), Total: 10, Count: 1}}, nil
}

func (f *fakeStats) StatsTop(_ context.Context, limit int) ([]core.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]core.Expense, 0, limit+1)
	for i := 0; i <= limit; i++ {
		out = append(out, core.Expense{ID: fmt.Sprint(i), Amount: core.Amount(i)})
	}
	return out, nil
}

func TestStaleResponseIsDropped(t *testing.T) {
	ctx := context.Background()
	src := &fakeStats{
		gate:    make(chan struct{}),
		started: make(chan struct{}),
		totals:  []float64{111, 222},
	}
	s := NewStatistics(src)

	first := make(chan error, 1)
	go func() { first <- s.Refresh(ctx) }()
	<-src.started

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, 222.0, s.View().TotalAmount)

	close(src.gate)
	assert.ErrorIs(t, <-first, ErrStale)

	v := s.View()
	assert.True(t, v.Loaded)
	assert.Equal(t, 222.0, v.TotalAmount)
	require.Len(t, v.Summary, 1)
	assert.Equal(t, "Food", v.Summary[0].Name)
	assert.Equal(t, aggregate.Share{Name: "Food", Color: core.FallbackColor, Percent: 100}, v.Shares[0])
}

func TestFailedFetchResetsView(t *testing.T) {
	ctx := context.Background()
	src := &fakeStats{}
	r := NewReports(src, WithClock(clock), WithTopLimit(3))

	require.NoError(t, r.Refresh(ctx))
	v := r.View()
	assert.Equal(t, 2024, v.Year)
	assert.Equal(t, 120.0, v.Months[0])
	assert.Equal(t, 80.0, v.Months[2])
	assert.Equal(t, 200.0, v.YearTotal)
	assert.Equal(t, 120.0, v.Scale)
	require.Len(t, v.Top, 3)
	assert.Equal(t, "3", v.Top[0].ID)

	src.err = &api.Error{Kind: api.KindNetwork, Op: "stats monthly", Err: errors.New("connection refused")}
	err := r.SetYear(ctx, 2023)
	require.ErrorIs(t, err, api.ErrNetwork)

	v = r.View()
	assert.False(t, v.Loaded)
	assert.Equal(t, 2023, v.Year)
	assert.Equal(t, "Failed to fetch reports: cannot reach the server", v.Error)
	assert.Equal(t, [12]float64{}, v.Months)
	assert.Empty(t, v.Top)
}

func TestLedgerCreateThenList(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(gateway(t), WithClock(clock), WithDefaultPayer("Ravi"))

	require.NoError(t, l.AddExpense(ctx, core.ExpenseInput{Description: "Flat", Amount: 900}))
	require.NoError(t, l.AddIncome(ctx, core.IncomeInput{Amount: 2500}))

	v := l.View()
	assert.True(t, v.Loaded)
	assert.Empty(t, v.Error)
	assert.Equal(t, "Income added", v.Notice)
	require.Len(t, v.Expenses, 1)
	e := v.Expenses[0]
	assert.Equal(t, "Flat", e.Description)
	assert.Equal(t, DefaultCategory, e.Category)
	assert.Equal(t, "Ravi", e.PaidBy)
	assert.Equal(t, "2024-03-14", e.Date.String())
	require.Len(t, v.Income, 1)
	assert.Equal(t, core.Salary, v.Income[0].Source)
	assert.Equal(t, 2500.0, v.TotalIncome)
	assert.Equal(t, 900.0, v.TotalSpent)
	assert.Equal(t, 1600.0, v.Net)

	require.NoError(t, l.DeleteExpense(ctx, e.ID))
	v = l.View()
	assert.Empty(t, v.Expenses)
	assert.Equal(t, "Expense deleted", v.Notice)
}

func TestLedgerFailedCreateKeepsList(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(gateway(t), WithClock(clock))
	require.NoError(t, l.AddExpense(ctx, core.ExpenseInput{Description: "Groceries", Amount: 40, Category: "Groceries"}))
	before := l.View().Expenses

	err := l.AddExpense(ctx, core.ExpenseInput{Amount: 12})
	require.ErrorIs(t, err, core.ErrRequired)

	v := l.View()
	assert.Equal(t, "Missing required fields: description", v.Error)
	assert.Empty(t, v.Notice)
	assert.Equal(t, before, v.Expenses)

	err = l.DeleteIncome(ctx, "missing")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, before, l.View().Expenses)
}

func TestExpenseListFilterAndServerValidation(t *testing.T) {
	ctx := context.Background()
	gw := gateway(t)
	food, err := gw.CreateSplit(ctx, core.SplitInput{Name: "Food", Color: "#ff0000"})
	require.NoError(t, err)
	travel, err := gw.CreateSplit(ctx, core.SplitInput{Name: "Travel", Color: "#00ff00"})
	require.NoError(t, err)

	list := NewExpenseList(gw, WithClock(clock))
	require.NoError(t, list.Add(ctx, core.ExpenseInput{Description: "Lunch", Amount: 15, Split: food.ID}))
	require.NoError(t, list.Add(ctx, core.ExpenseInput{Description: "Train", Amount: 60, Split: travel.ID, Date: core.NewDate(2024, 2, 1)}))

	v := list.View()
	assert.Len(t, v.Expenses, 2)
	assert.Len(t, v.Splits, 2)
	assert.Equal(t, 75.0, v.Total)

	require.NoError(t, list.SetFilter(ctx, core.ExpenseFilter{Start: core.NewDate(2024, 3, 1)}))
	v = list.View()
	require.Len(t, v.Expenses, 1)
	assert.Equal(t, "Lunch", v.Expenses[0].Description)

	require.NoError(t, list.SetFilter(ctx, core.ExpenseFilter{Split: travel.ID}))
	v = list.View()
	require.Len(t, v.Expenses, 1)
	assert.Equal(t, "Train", v.Expenses[0].Description)

	err = list.Add(ctx, core.ExpenseInput{Description: "Taxi", Amount: 9, Category: "Transport"})
	require.ErrorIs(t, err, core.ErrRequired)
	assert.Equal(t, "Missing required fields: split", list.View().Error)

	err = list.Add(ctx, core.ExpenseInput{Description: "Taxi", Amount: 9, Split: "gone"})
	require.ErrorIs(t, err, api.ErrValidation)
	v = list.View()
	assert.Equal(t, "Invalid split", v.Error)
	assert.Len(t, v.Expenses, 1)
}

func TestSplitsDeleteMovesExpensesToUnlabeled(t *testing.T) {
	ctx := context.Background()
	gw := gateway(t)
	s := NewSplits(gw)

	require.NoError(t, s.Add(ctx, core.SplitInput{Name: " Trip "}))
	require.NoError(t, s.Add(ctx, core.SplitInput{Name: "Home", Color: "#123456"}))
	v := s.View()
	require.Len(t, v.Splits, 2)

	var trip core.Split
	for _, sp := range v.Splits {
		if sp.Name == "Trip" {
			trip = sp
		}
	}
	require.NotEmpty(t, trip.ID)
	assert.Equal(t, core.DefaultSplitColor, trip.Color)

	_, err := gw.CreateExpense(ctx, core.ExpenseInput{Description: "Hotel", Amount: 300, Split: trip.ID})
	require.NoError(t, err)
	require.NoError(t, s.Refresh(ctx))

	byName := s.View().Analytics.ByName()
	assert.Equal(t, 300.0, byName["Trip"].Total)
	assert.Equal(t, 0, byName["Home"].Count)

	require.NoError(t, s.Delete(ctx, trip.ID))
	v = s.View()
	require.Len(t, v.Splits, 1)
	byName = v.Analytics.ByName()
	assert.Equal(t, 300.0, byName[aggregate.Unlabeled].Total)
	assert.Equal(t, 1, byName[aggregate.Unlabeled].Count)
	assert.Equal(t, 300.0, v.Total)

	err = s.Add(ctx, core.SplitInput{Name: "  "})
	require.ErrorIs(t, err, core.ErrRequired)
	assert.Equal(t, "Missing required fields: name", s.View().Error)
}

func TestDashboardCurrentMonth(t *testing.T) {
	ctx := context.Background()
	gw := gateway(t)
	for _, in := range []core.ExpenseInput{
		{Description: "Rent", Amount: 20000, Category: "Rent", Date: core.NewDate(2024, 3, 1)},
		{Description: "Index fund", Amount: 5000, Category: InvestmentCategory, Date: core.NewDate(2024, 3, 5)},
		{Description: "Old rent", Amount: 19000, Category: "Rent", Date: core.NewDate(2024, 2, 1)},
	} {
		_, err := gw.CreateExpense(ctx, in)
		require.NoError(t, err)
	}
	_, err := gw.CreateIncome(ctx, core.IncomeInput{Amount: 60000, Source: core.Salary, Date: core.NewDate(2024, 3, 1)})
	require.NoError(t, err)

	d := NewDashboard(gw, WithClock(clock))
	require.NoError(t, d.Refresh(ctx))

	v := d.View()
	assert.True(t, v.Loaded)
	assert.Equal(t, time.March, v.Month)
	assert.Equal(t, 25000.0, v.Spent)
	assert.Equal(t, 60000.0, v.Income)
	assert.Equal(t, 35000.0, v.Balance)
	assert.Equal(t, 5000.0, v.Invested)
	assert.Equal(t, aggregate.TotalBudget(core.DefaultBudgets), v.TotalBudget)

	last := v.Trend[11]
	assert.Equal(t, 2024, last.Year)
	assert.Equal(t, time.March, last.Month)
	assert.Equal(t, 25000.0, last.Expenses)
	assert.Equal(t, 19000.0, v.Trend[10].Expenses)
	assert.Equal(t, 60000.0, v.TrendScale)

	for _, b := range v.Budgets {
		if b.Name == "Rent" {
			assert.Equal(t, 20000.0, b.Spent)
		}
	}
}

func bufferLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(buf, nil)})
}

func TestLoggerFromContext(t *testing.T) {
	var fromCtx, fixed bytes.Buffer
	ctx := log.NewContext(context.Background(), bufferLogger(&fromCtx))
	src := &fakeStats{err: &api.Error{Kind: api.KindServer, Op: "stats summary"}}

	require.Error(t, NewStatistics(src, WithClock(clock)).Refresh(ctx))
	assert.Contains(t, fromCtx.String(), "Failed to fetch statistics")
	assert.Contains(t, fromCtx.String(), "component=coordinator")
	assert.Contains(t, fromCtx.String(), "view=statistics")

	fromCtx.Reset()
	require.Error(t, NewStatistics(src, WithClock(clock), WithLogger(bufferLogger(&fixed))).Refresh(ctx))
	assert.Empty(t, fromCtx.String())
	assert.Contains(t, fixed.String(), "view=statistics")
}

func TestReportsLogYear(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	r := NewReports(&fakeStats{}, WithClock(clock), WithTopLimit(2), WithLogger(logger))

	require.NoError(t, r.Refresh(context.Background()))
	assert.Contains(t, buf.String(), "year=2024")
	assert.Contains(t, buf.String(), "count=2")
}
