package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type optimizeCmd struct {
	overrides
	iterations int
}

func (*optimizeCmd) Name() string { return "optimize" }
func (*optimizeCmd) Synopsis() string {
	return "find the buy-and-hold allocation with the best Sharpe ratio"
}
func (*optimizeCmd) Usage() string {
	return `fol optimize [-symbols <list>] [-from <date>] [-to <date>] [-sv <value>] [-plot <file.png>]

  Searches the allocations, non negative and summing to one, that maximize
  the Sharpe ratio of a buy-and-hold portfolio over the period, then assesses
  it against the benchmark.
`
}

func (c *optimizeCmd) SetFlags(f *flag.FlagSet) {
	c.overrides.setFlags(f, false)
	f.IntVar(&c.iterations, "iterations", 0, "Maximum number of optimizer iterations, 0 for the default.")
}

func (c *optimizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	p, closer, err := openProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening price source: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	opts := folio.OptimizeOptions{Stats: cfg.StatsOptions(), MaxIterations: c.iterations}
	a, err := folio.OptimizeRange(ctx, folio.NewAligner(p, cfg.Benchmark), cfg.Symbols, cfg.Range(), cfg.StartValue, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error optimizing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Assessment("Optimal Portfolio", a, cfg.Benchmark, cfg.Currency))
	return plotAssessment(c.plot, "Optimal portfolio value and "+cfg.Benchmark, a)
}
