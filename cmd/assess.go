package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/plot"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// assessCmd holds the flags for the 'assess' subcommand.
type assessCmd struct {
	overrides
}

func (*assessCmd) Name() string     { return "assess" }
func (*assessCmd) Synopsis() string { return "assess a buy-and-hold allocation against the benchmark" }
func (*assessCmd) Usage() string {
	return `fol assess [-symbols <list>] [-allocations <list>] [-from <date>] [-to <date>] [-sv <value>] [-plot <file.png>]

  Values a portfolio bought on the first day with the given allocations and
  held until the last day. Prints its Sharpe ratio, cumulative return,
  volatility, average daily return and final value next to the benchmark's.

  Flags override the configuration file.
`
}

func (c *assessCmd) SetFlags(f *flag.FlagSet) { c.overrides.setFlags(f, true) }

func (c *assessCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	md, a, err := assess(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error assessing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return plotAssessment(c.plot, "Daily portfolio value and "+cfg.Benchmark, a)
}

// assess runs the assessment configured by cfg and renders it.
func assess(ctx context.Context, cfg folio.Config) (string, *folio.Assessment, error) {
	p, closer, err := openProvider()
	if err != nil {
		return "", nil, err
	}
	defer closer()

	a, err := folio.Assess(ctx, folio.NewAligner(p, cfg.Benchmark), cfg.Symbols, cfg.Allocations, cfg.Range(), cfg.StartValue, cfg.StatsOptions())
	if err != nil {
		return "", nil, err
	}
	return renderer.Assessment("Portfolio Analysis", a, cfg.Benchmark, cfg.Currency), a, nil
}

// plotAssessment writes the portfolio and benchmark chart to path, if not empty.
func plotAssessment(path, title string, a *folio.Assessment) subcommands.ExitStatus {
	if path == "" {
		return subcommands.ExitSuccess
	}
	if err := plot.Compare(path, title, a.Values, a.Benchmark); err != nil {
		fmt.Fprintf(os.Stderr, "Error plotting: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Chart written to %s\n", path)
	return subcommands.ExitSuccess
}
