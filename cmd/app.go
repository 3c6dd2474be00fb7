// Package cmd implements the fol command line application.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/folio"
	"github.com/etnz/folio/cache"
	"github.com/etnz/folio/csvdir"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/eodhd"
	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Commands lists the subcommands, in help order.
var Commands = []subcommands.Command{
	&assessCmd{},
	&simulateCmd{},
	&optimizeCmd{},
	&explainCmd{},
	&assistCmd{},
	&searchCmd{},
	&formatLedgerCmd{},
	&topicCmd{},
}

// groups of the subcommands in the help.
var groups = map[string]string{
	"assess":        "analysis",
	"simulate":      "analysis",
	"optimize":      "analysis",
	"explain":       "assistant",
	"assist":        "assistant",
	"search":        "data",
	"format-ledger": "data",
	"topic":         "help",
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, groups[cmd.Name()])
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", "folio.yaml", "Path to the YAML configuration file. Defaults apply when it does not exist.")
	source       = flag.String("source", "csv", "Price source: csv, eodhd or yahoo.")
	dataDir      = flag.String("data-dir", "data", "Directory of <SYMBOL>.csv price files for the csv source.")
	cachePath    = flag.String("cache", "", "Path to a sqlite database caching prices. Disabled when empty.")
	outputFormat = flag.String("format", "terminal", "Output format: terminal, markdown or html.")
	eodhdAPIFlag = flag.String("eodhd-api-key", "", "EODHD API key. This flag takes precedence over the "+eodhd.APIKeyEnv+" environment variable. You can get one at https://eodhd.com/")
	Verbose      = flag.Bool("v", false, "Verbose logging.")
)

// output is where reports are printed.
var output io.Writer = os.Stdout

// SetupLogging installs a console logger on stderr, at debug level if verbose.
// The info level shows one line per processed order.
func SetupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// eodhdAPIKey retrieves the EODHD API key from the command-line flag or the environment variable.
func eodhdAPIKey() string {
	if *eodhdAPIFlag == "" {
		return os.Getenv(eodhd.APIKeyEnv)
	}
	return *eodhdAPIFlag
}

// loadConfig reads the configuration file.
func loadConfig() (folio.Config, error) {
	return folio.LoadConfig(*configFile)
}

// openProvider opens the price provider selected by the global flags. The
// returned function releases it.
func openProvider() (folio.Provider, func(), error) {
	var p folio.Provider
	switch *source {
	case "csv":
		p = csvdir.New(*dataDir)
	case "eodhd":
		key := eodhdAPIKey()
		if key == "" {
			return nil, nil, fmt.Errorf("EODHD API key is not set. Use -eodhd-api-key flag or %s environment variable", eodhd.APIKeyEnv)
		}
		p = eodhd.New(key, "")
	case "yahoo":
		p = yahoo.New()
	default:
		return nil, nil, fmt.Errorf("unknown source %q, want csv, eodhd or yahoo", *source)
	}
	if *cachePath == "" {
		return p, func() {}, nil
	}
	c, err := cache.Open(*cachePath, p)
	if err != nil {
		return nil, nil, err
	}
	return c, func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("cannot close cache")
		}
	}, nil
}

// printMarkdown prints a markdown document in the selected output format.
func printMarkdown(md string) { fmt.Fprint(output, formatMarkdown(md)) }

// formatMarkdown converts a markdown document to the selected output format.
func formatMarkdown(md string) string {
	switch *outputFormat {
	case "markdown":
		return md
	case "html":
		html, err := renderer.HTML(md)
		if err != nil {
			log.Error().Err(err).Msg("cannot render html")
			return md
		}
		return html
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			return out
		}
	}
	log.Debug().Err(err).Msg("cannot render markdown for the terminal")
	return md
}

// overrides are the analysis flags shared by subcommands, they override the configuration.
type overrides struct {
	symbols, allocations string
	from, to             string
	startValue           float64
	riskFree, frequency  float64
	plot                 string
}

func (o *overrides) setFlags(f *flag.FlagSet, withAllocations bool) {
	f.StringVar(&o.symbols, "symbols", "", "Comma separated symbols, e.g. GOOG,AAPL,GLD,XOM.")
	if withAllocations {
		f.StringVar(&o.allocations, "allocations", "", "Comma separated allocations aligned with symbols, e.g. 0.1,0.2,0.3,0.4.")
	}
	f.StringVar(&o.from, "from", "", "First day of the analysis (YYYY-MM-DD).")
	f.StringVar(&o.to, "to", "", "Last day of the analysis (YYYY-MM-DD).")
	f.Float64Var(&o.startValue, "sv", 0, "Start value of the portfolio.")
	f.Float64Var(&o.riskFree, "rf", 0, "Risk free rate per period.")
	f.Float64Var(&o.frequency, "sf", 0, "Sampling frequency, periods per year.")
	f.StringVar(&o.plot, "plot", "", "Write a PNG chart of the portfolio against the benchmark to this file.")
}

// apply sets non zero overrides on cfg.
func (o *overrides) apply(cfg *folio.Config) error {
	if o.symbols != "" {
		cfg.Symbols = splitList(o.symbols)
		cfg.Allocations = folio.Uniform(len(cfg.Symbols))
	}
	if o.allocations != "" {
		var alloc folio.Allocation
		for _, s := range splitList(o.allocations) {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid allocation %q: %w", s, err)
			}
			alloc = append(alloc, v)
		}
		cfg.Allocations = alloc
	}
	for _, d := range []struct {
		flag string
		on   *date.Date
	}{{o.from, &cfg.From}, {o.to, &cfg.To}} {
		if d.flag == "" {
			continue
		}
		on, err := date.Parse(d.flag)
		if err != nil {
			return err
		}
		*d.on = on
	}
	if o.startValue != 0 {
		cfg.StartValue = o.startValue
	}
	if o.riskFree != 0 {
		cfg.RiskFreeRate = o.riskFree
	}
	if o.frequency != 0 {
		cfg.PeriodsPerYear = o.frequency
	}
	return cfg.Validate()
}

func splitList(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}

// config loads the configuration file and applies the overrides.
func (o *overrides) config() (folio.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, err
	}
	err = o.apply(&cfg)
	return cfg, err
}
