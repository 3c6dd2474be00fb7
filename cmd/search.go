package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio/eodhd"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

type searchCmd struct {
	limit int
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search for symbols using EODHD API" }
func (*searchCmd) Usage() string {
	return `fol search [-limit <n>] <search term>

  Searches for securities by name, ticker or ISIN via EOD Historical Data API
  and prints the symbols usable with '-source eodhd'.
  Requires the EODHD_API_KEY environment variable to be set.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 20, "Maximum number of results to print.")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a search term is required.")
		return subcommands.ExitUsageError
	}
	term := strings.Join(f.Args(), " ")
	key := eodhdAPIKey()
	if key == "" {
		fmt.Fprintf(os.Stderr, "EODHD API key is not set. Use -eodhd-api-key flag or %s environment variable\n", eodhd.APIKeyEnv)
		return subcommands.ExitUsageError
	}

	results, err := eodhd.New(key, "").Search(ctx, term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching securities: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(results) == 0 {
		fmt.Fprintf(output, "No results found for '%s'.\n", term)
		return subcommands.ExitSuccess
	}
	if c.limit > 0 && len(results) > c.limit {
		results = results[:c.limit]
	}
	printMarkdown(searchResults(term, results))
	return subcommands.ExitSuccess
}

func searchResults(term string, results []eodhd.SearchResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2(fmt.Sprintf("Results for '%s'", term))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Symbol", "Name", "Type", "Country", "Currency", "ISIN", "Previous Close"},
		Rows:      [][]string{},
	}
	for _, r := range results {
		table.Rows = append(table.Rows, []string{
			r.Ticker(), r.Name, r.Type, r.Country, r.Currency, r.ISIN,
			fmt.Sprintf("%.2f on %s", r.PreviousClose, r.PreviousCloseDate),
		})
	}
	doc.Table(table)
	return doc.String()
}
