package cli

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/aggregate"
	"spendwise/internal/core"
	"spendwise/internal/session"
)

// memoryEnv points the app at a throwaway memory backend and state db.
func memoryEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("API_BACKEND", "memory")
	t.Setenv("STATE_DB_PATH", filepath.Join(dir, "state.db"))
	t.Setenv("MEMORY_DATA_PATH", filepath.Join(dir, "memory.json"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CURRENCY", "INR")
}

func flags(t *testing.T, cmd subcommands.Command, args ...string) *flag.FlagSet {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return f
}

func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	return cmd.Execute(context.Background(), flags(t, cmd, args...))
}

func TestCommandNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Commands {
		name := c.Command.Name()
		assert.False(t, seen[name], "duplicate command %s", name)
		seen[name] = true
		assert.NotEmpty(t, c.Command.Synopsis(), name)
		assert.NotEmpty(t, c.Command.Usage(), name)
	}
	for _, want := range []string{
		"login", "register", "logout", "whoami", "dashboard", "expenses", "expense-add", "expense-rm",
		"income", "income-add", "income-rm", "splits", "split-add", "split-rm", "stats", "report",
		"top", "daily", "split-bill",
	} {
		assert.True(t, seen[want], "missing command %s", want)
	}
}

func TestIncomeSource(t *testing.T) {
	src, ok := incomeSource("freelance")
	assert.True(t, ok)
	assert.Equal(t, core.Freelance, src)

	src, ok = incomeSource("")
	assert.True(t, ok)
	assert.Empty(t, src)

	_, ok = incomeSource("lottery")
	assert.False(t, ok)
}

func TestParseDateAndOneID(t *testing.T) {
	d, err := parseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	d, err = parseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsEmpty())

	_, err = parseDate("29/02/2024")
	assert.Error(t, err)

	id, ok := oneID(flags(t, &expenseRmCmd{}, "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
	_, ok = oneID(flags(t, &expenseRmCmd{}))
	assert.False(t, ok)
	_, ok = oneID(flags(t, &expenseRmCmd{}, "a", "b"))
	assert.False(t, ok)
}

func TestCommandsAgainstMemoryBackend(t *testing.T) {
	memoryEnv(t)
	ctx := context.Background()

	assert.Equal(t, subcommands.ExitFailure, execute(t, &dashboardCmd{}), "not logged in yet")

	app, err := Open(ctx)
	require.NoError(t, err)
	_, err = app.Session.Register(ctx, "Asha", "asha@example.com", "pw", "pw")
	require.NoError(t, err)
	app.Close()

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &splitAddCmd{}, "-name", "Trip", "-color", "#ff0000"))
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &expenseAddCmd{}, "-desc", "Hotel", "-amount", "120,50", "-split", "trip", "-date", "2024-05-02"))
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &expenseAddCmd{}, "-desc", "Flat", "-amount", "15000"))
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &incomeAddCmd{}, "-amount", "50000", "-source", "bonus"))

	assert.Equal(t, subcommands.ExitFailure, execute(t, &expenseAddCmd{}, "-amount", "5"), "description is required")
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &expenseAddCmd{}, "-desc", "x", "-amount", "-3"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &incomeAddCmd{}, "-amount", "5", "-source", "lottery"))

	for _, cmd := range []subcommands.Command{
		&whoamiCmd{}, &dashboardCmd{}, &ledgerCmd{}, &expensesCmd{}, &incomeCmd{}, &splitsCmd{},
		&statsCmd{}, &dailyCmd{}, &reportCmd{}, &topCmd{},
	} {
		assert.Equal(t, subcommands.ExitSuccess, execute(t, cmd), cmd.Name())
	}
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &expensesCmd{}, "-split", "Trip", "-from", "2024-05-01"))
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &reportCmd{}, "-year", "2024"))

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &splitRmCmd{}, "Trip"))

	app, err = Open(ctx)
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Session.Restore(ctx))
	assert.Equal(t, session.Authenticated, app.Session.State())

	expenses, err := app.Gateway.ListExpenses(ctx, core.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 2)

	splits, err := app.Gateway.ListSplits(ctx)
	require.NoError(t, err)
	summary := aggregate.SummaryBySplit(expenses, splits, aggregate.SummaryOptions{}).ByName()
	assert.Equal(t, 15120.5, summary[aggregate.Unlabeled].Total)
	assert.Equal(t, 2, summary[aggregate.Unlabeled].Count)

	income, err := app.Gateway.ListIncome(ctx)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, core.Bonus, income[0].Source)

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &logoutCmd{}))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &statsCmd{}))
}

func TestSplitBill(t *testing.T) {
	memoryEnv(t)
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &splitBillCmd{}, "-amount", "100", "-members", "3"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &splitBillCmd{}, "-amount", "100", "-members", "11"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &splitBillCmd{}, "-amount", "zero"))
}
