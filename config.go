package folio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/folio/date"
	"gopkg.in/yaml.v3"
)

// Config holds the parameters of an analysis run.
//
// The zero value is not useful, start from DefaultConfig.
type Config struct {
	// Symbols of the portfolio. Default GOOG, AAPL, GLD, XOM.
	Symbols []string `yaml:"symbols"`
	// Allocations aligned with Symbols. Default 0.1, 0.2, 0.3, 0.4.
	Allocations Allocation `yaml:"allocations"`
	// Benchmark symbol defining trading days. Default SPY.
	Benchmark string `yaml:"benchmark"`
	// StartValue is the cash invested on the first day. Default 1,000,000.
	StartValue float64 `yaml:"start_value"`
	// RiskFreeRate per period. Default 0.
	RiskFreeRate float64 `yaml:"risk_free_rate"`
	// PeriodsPerYear is the sampling frequency. Default 252.
	PeriodsPerYear float64 `yaml:"periods_per_year"`
	// From and To bound the analysis, inclusive. Default 2008-01-01 to 2009-01-01.
	From date.Date `yaml:"from"`
	To   date.Date `yaml:"to"`
	// Currency used to display monetary values. Default USD.
	Currency string `yaml:"currency"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Symbols:        []string{"GOOG", "AAPL", "GLD", "XOM"},
		Allocations:    Allocation{0.1, 0.2, 0.3, 0.4},
		Benchmark:      "SPY",
		StartValue:     1_000_000,
		RiskFreeRate:   0,
		PeriodsPerYear: TradingDaysPerYear,
		From:           date.MustParse("2008-01-01"),
		To:             date.MustParse("2009-01-01"),
		Currency:       "USD",
	}
}

// LoadConfig reads a YAML file over the defaults.
//
// A missing file is not an error, the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config %q: %w", path, err)
	}
	// Default allocations only make sense with default symbols.
	var set struct {
		Symbols     []string  `yaml:"symbols"`
		Allocations []float64 `yaml:"allocations"`
	}
	if err := yaml.Unmarshal(content, &set); err == nil && set.Symbols != nil && set.Allocations == nil {
		cfg.Allocations = Uniform(len(cfg.Symbols))
	}
	return cfg, cfg.Validate()
}

// Range returns the analysis range.
func (c Config) Range() date.Range { return date.Range{From: c.From, To: c.To} }

// StatsOptions returns the statistics parameters of the configuration.
func (c Config) StatsOptions() StatsOptions {
	return StatsOptions{RiskFreeRate: c.RiskFreeRate, PeriodsPerYear: c.PeriodsPerYear}
}

// Validate checks the consistency of the configuration.
func (c Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("config: no symbols")
	}
	if c.Benchmark == "" {
		return errors.New("config: no benchmark")
	}
	if c.Allocations != nil && len(c.Allocations) != len(c.Symbols) {
		return fmt.Errorf("config: %d allocations for %d symbols: %w", len(c.Allocations), len(c.Symbols), ErrShapeMismatch)
	}
	if c.Range().IsEmpty() {
		return fmt.Errorf("config: empty range %s", c.Range())
	}
	if c.PeriodsPerYear < 0 {
		return fmt.Errorf("config: negative periods per year %v", c.PeriodsPerYear)
	}
	return nil
}
