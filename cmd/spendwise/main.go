// Command spendwise is a terminal client for the expense tracker API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"spendwise/internal/cli"
	"spendwise/internal/core"
)

func main() {
	completion().Complete("spendwise")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// completion builds the shell completion tree from the registered commands.
// Install it with COMP_INSTALL=1 spendwise.
func completion() *complete.Command {
	sources := make(predict.Set, 0, len(core.IncomeSources))
	for _, s := range core.IncomeSources {
		sources = append(sources, string(s))
	}

	root := &complete.Command{Sub: map[string]*complete.Command{}}
	for _, c := range cli.Commands {
		fs := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		c.Command.SetFlags(fs)

		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(f *flag.Flag) {
			switch f.Name {
			case "source":
				sub.Flags[f.Name] = sources
			default:
				sub.Flags[f.Name] = predict.Something
			}
		})
		root.Sub[c.Command.Name()] = sub
	}
	return root
}
