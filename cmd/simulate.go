package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/ledger"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// simulateCmd replays an order ledger.
type simulateCmd struct {
	overrides
	showOrders bool
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "replay a ledger of orders and assess the resulting portfolio" }
func (*simulateCmd) Usage() string {
	return `fol simulate [-sv <value>] [-orders] [-plot <file.png>] <orders.csv|orders.jsonl>

  Starts with the start value in cash, executes every order at the adjusted
  close of its day and values the portfolio on each trading day between the
  first and the last order.

  CSV ledgers have a Date,Symbol,Order,Shares header. JSONL ledgers have one
  {"date","symbol","order","shares"} object per line.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.startValue, "sv", 0, "Start value of the portfolio.")
	f.Float64Var(&c.riskFree, "rf", 0, "Risk free rate per period.")
	f.Float64Var(&c.frequency, "sf", 0, "Sampling frequency, periods per year.")
	f.StringVar(&c.plot, "plot", "", "Write a PNG chart of the portfolio against the benchmark to this file.")
	f.BoolVar(&c.showOrders, "orders", false, "Print the orders too.")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "simulate expects exactly one ledger file")
		return subcommands.ExitUsageError
	}
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	orders, err := readLedger(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	p, closer, err := openProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening price source: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	s, err := folio.Simulate(ctx, folio.NewAligner(p, cfg.Benchmark), orders, cfg.StartValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error simulating orders: %v\n", err)
		return subcommands.ExitFailure
	}
	a := folio.AssessSimulation(s, cfg.StatsOptions())

	md := renderer.Assessment("Simulated Portfolio", a, cfg.Benchmark, cfg.Currency)
	md += "\n" + renderer.Positions(s.Positions, cfg.Currency)
	if c.showOrders {
		md += "\n## Orders\n\n" + renderer.Orders(folio.SortOrders(orders))
	}
	printMarkdown(md)
	return plotAssessment(c.plot, "Simulated portfolio value and "+cfg.Benchmark, a)
}

// readLedger decodes the orders in the named file, the format depends on its extension.
func readLedger(name string) ([]folio.Order, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ledger.Decode(f, ledger.FormatOf(name))
}
