// Command fol assesses, simulates and optimizes stock portfolios.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/folio/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	// Exits when invoked by the shell for completion.
	completion().Complete("fol")

	flag.Parse()
	cmd.SetupLogging()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the subcommands and their flags to the shell.
func completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictors(flag.CommandLine),
	}
	for _, c := range cmd.Commands {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		sub := &complete.Command{Flags: predictors(f)}
		switch c.Name() {
		case "simulate", "format-ledger":
			sub.Args = predict.Or(predict.Files("*.csv"), predict.Files("*.jsonl"))
		}
		root.Sub[c.Name()] = sub
	}
	return root
}

func predictors(f *flag.FlagSet) map[string]complete.Predictor {
	res := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		switch fl.Name {
		case "config":
			res[fl.Name] = predict.Files("*.yaml")
		case "plot":
			res[fl.Name] = predict.Files("*.png")
		case "data-dir":
			res[fl.Name] = predict.Dirs("*")
		case "cache":
			res[fl.Name] = predict.Files("*.db")
		case "source":
			res[fl.Name] = predict.Set{"csv", "eodhd", "yahoo"}
		case "format":
			res[fl.Name] = predict.Set{"terminal", "markdown", "html"}
		case "to":
			if f.Name() == "format-ledger" {
				res[fl.Name] = predict.Set{"csv", "jsonl"}
				return
			}
			res[fl.Name] = predict.Something
		default:
			res[fl.Name] = predict.Something
		}
	})
	return res
}
