package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"spendwise/internal/api"
	"spendwise/internal/coordinator"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/session"
)

// Commands lists every subcommand with its group. A main package registers
// them and derives shell completion from their flags.
var Commands = []struct {
	Group   string
	Command subcommands.Command
}{
	{"session", &loginCmd{}},
	{"session", &registerCmd{}},
	{"session", &logoutCmd{}},
	{"session", &whoamiCmd{}},

	{"views", &dashboardCmd{}},
	{"views", &ledgerCmd{}},
	{"views", &expensesCmd{}},
	{"views", &incomeCmd{}},
	{"views", &splitsCmd{}},
	{"views", &statsCmd{}},
	{"views", &dailyCmd{}},
	{"views", &reportCmd{}},
	{"views", &topCmd{}},

	{"records", &expenseAddCmd{}},
	{"records", &expenseRmCmd{}},
	{"records", &incomeAddCmd{}},
	{"records", &incomeRmCmd{}},
	{"records", &splitAddCmd{}},
	{"records", &splitRmCmd{}},

	{"tools", &splitBillCmd{}},
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Command, cmd.Group)
	}
}

var errNotLoggedIn = errors.New("not logged in, run 'spendwise login' first")

// run opens the app, restores the session when auth is set and calls fn.
// Errors go to stderr and turn into a failure exit status.
func run(ctx context.Context, auth bool, fn func(context.Context, *App) error) subcommands.ExitStatus {
	app, err := Open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer app.Close()
	ctx = log.NewContext(ctx, app.Logger)

	if auth {
		if err := app.Session.Restore(ctx); err != nil {
			app.Logger.DebugContext(ctx, "Session restore failed", log.FieldError, err)
		}
		if app.Session.State() != session.Authenticated {
			fmt.Fprintf(os.Stderr, "Error: %v\n", errNotLoggedIn)
			return subcommands.ExitFailure
		}
	}

	if err := fn(ctx, app); err != nil {
		if !errors.Is(err, errShown) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", coordinator.Message(err, err.Error()))
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// errShown marks a failure whose message is already in the rendered view.
var errShown = errors.New("failure already reported")

// shown renders the view and reports err as already displayed.
func shown(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errShown, err)
}

// usage reports a flag problem with the usage exit status.
func usage(f *flag.FlagSet, format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	f.Usage()
	return subcommands.ExitUsageError
}

// oneID returns the single positional id argument.
func oneID(f *flag.FlagSet) (string, bool) {
	if f.NArg() != 1 || strings.TrimSpace(f.Arg(0)) == "" {
		return "", false
	}
	return strings.TrimSpace(f.Arg(0)), true
}

// parseDate accepts YYYY-MM-DD; an empty value means unset.
func parseDate(s string) (core.Date, error) {
	d, err := core.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// resolveSplit maps a split id or name to its id. Unknown values are passed
// through so the server can reject them.
func resolveSplit(ctx context.Context, splits api.Splits, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	all, err := splits.ListSplits(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range all {
		if s.ID == value {
			return s.ID, nil
		}
	}
	for _, s := range all {
		if strings.EqualFold(s.Name, value) {
			return s.ID, nil
		}
	}
	return value, nil
}
