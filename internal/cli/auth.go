package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/term"

	"spendwise/internal/api"
)

// readPassword prompts on stderr. A terminal gets no echo; piped input is
// read as one line.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var stdin = bufio.NewReader(os.Stdin)

// loginCmd holds the flags for the 'login' subcommand.
type loginCmd struct {
	email string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in and remember the session" }
func (*loginCmd) Usage() string {
	return `spendwise login -email <email>

  Prompts for the password and stores the session token locally.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Account email")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.email) == "" {
		return usage(f, "-email is required")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return run(ctx, false, func(ctx context.Context, app *App) error {
		user, err := app.Session.Login(ctx, strings.TrimSpace(c.email), password)
		if err != nil {
			return errors.New(api.UserMessage(err))
		}
		fmt.Fprintf(app.Out, "Logged in as %s <%s>\n", user.Name, user.Email)
		return nil
	})
}

// registerCmd holds the flags for the 'register' subcommand.
type registerCmd struct {
	name  string
	email string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account and log in" }
func (*registerCmd) Usage() string {
	return `spendwise register -name <name> -email <email>

  Prompts for the password twice, creates the account and stores the session.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Display name")
	f.StringVar(&c.email, "email", "", "Account email")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.name) == "" || strings.TrimSpace(c.email) == "" {
		return usage(f, "-name and -email are required")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return run(ctx, false, func(ctx context.Context, app *App) error {
		user, err := app.Session.Register(ctx, strings.TrimSpace(c.name), strings.TrimSpace(c.email), password, confirm)
		if err != nil {
			return errors.New(api.UserMessage(err))
		}
		fmt.Fprintf(app.Out, "Welcome, %s. You are logged in.\n", user.Name)
		return nil
	})
}

type logoutCmd struct{}

func (*logoutCmd) Name() string           { return "logout" }
func (*logoutCmd) Synopsis() string       { return "forget the stored session" }
func (*logoutCmd) Usage() string          { return "spendwise logout\n" }
func (*logoutCmd) SetFlags(*flag.FlagSet) {}
func (*logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, false, func(ctx context.Context, app *App) error {
		app.Session.Logout(ctx)
		fmt.Fprintln(app.Out, "Logged out.")
		return nil
	})
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string           { return "whoami" }
func (*whoamiCmd) Synopsis() string       { return "show the logged in account" }
func (*whoamiCmd) Usage() string          { return "spendwise whoami\n" }
func (*whoamiCmd) SetFlags(*flag.FlagSet) {}
func (*whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, true, func(ctx context.Context, app *App) error {
		s := app.Session.Session()
		claims, ok := s.Claims()
		return app.print(func(b *strings.Builder) { app.Renderer.User(b, s.User(), claims, ok) })
	})
}
