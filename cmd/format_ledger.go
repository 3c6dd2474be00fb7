package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/ledger"
	"github.com/google/subcommands"
)

type formatLedgerCmd struct {
	out    string
	format string
}

func (*formatLedgerCmd) Name() string     { return "format-ledger" }
func (*formatLedgerCmd) Synopsis() string { return "formats a ledger of orders into a canonical form" }
func (*formatLedgerCmd) Usage() string {
	return `fol format-ledger [-o <file>|-] [-to csv|jsonl] <ledger>

  Validates the orders, sorts them by date and writes them back in canonical
  form. The ledger is rewritten in place unless -o is set, '-' is stdout.
  Use -to to convert between the CSV and JSONL formats.
`
}

func (c *formatLedgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "Output file, '-' for stdout. Defaults to the input file.")
	f.StringVar(&c.format, "to", "", "Output format, csv or jsonl. Defaults to the output file extension.")
}

func (c *formatLedgerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "format-ledger expects exactly one ledger file")
		return subcommands.ExitUsageError
	}
	in := f.Arg(0)

	// 1. Read the ledger
	orders, err := readLedger(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	out := c.out
	if out == "" {
		out = in
	}
	format := ledger.Format(c.format)
	if format == "" {
		format = ledger.FormatOf(out)
		if out == "-" {
			format = ledger.FormatOf(in)
		}
	}
	if format != ledger.CSV && format != ledger.JSONL {
		fmt.Fprintf(os.Stderr, "unknown ledger format %q, want csv or jsonl\n", format)
		return subcommands.ExitUsageError
	}

	// 2. Write it back
	if out == "-" {
		err = encodeLedger(output, folio.SortOrders(orders), format)
	} else {
		err = writeLedger(out, folio.SortOrders(orders), format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if out != "-" {
		fmt.Fprintf(os.Stderr, "Ledger file '%s' has been formatted.\n", out)
	}
	return subcommands.ExitSuccess
}

func encodeLedger(w io.Writer, orders []folio.Order, format ledger.Format) error {
	switch format {
	case ledger.CSV:
		return ledger.EncodeCSV(w, orders)
	case ledger.JSONL:
		return ledger.EncodeJSONL(w, orders)
	default:
		return fmt.Errorf("unknown ledger format %q", format)
	}
}

// writeLedger encodes the orders into the named file.
func writeLedger(name string, orders []folio.Order, format ledger.Format) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("error opening ledger file %q for writing: %w", name, err)
	}
	if err := encodeLedger(f, orders, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
