package folio

import (
	"context"
	"fmt"

	"github.com/etnz/folio/date"
	"gonum.org/v1/gonum/floats"
)

// Assessment compares a portfolio value series with its benchmark.
type Assessment struct {
	Range      date.Range
	Symbols    []string
	Allocation Allocation // nil when the portfolio is driven by orders
	Values     Series
	Benchmark  Series // scaled to the portfolio start value
	Fund       Stats
	Market     Stats
}

// NewAssessment computes the statistics of values and benchmark.
//
// The benchmark is rescaled to start at the first portfolio value, so that
// both end values can be compared.
func NewAssessment(values, benchmark Series, opts StatsOptions) *Assessment {
	scaled := benchmark.Normalize()
	floats.Scale(values.First(), scaled.Values)
	a := &Assessment{
		Values:    values,
		Benchmark: scaled,
		Fund:      ComputeStats(values, opts),
		Market:    ComputeStats(scaled, opts),
	}
	if n := len(values.Dates); n > 0 {
		a.Range = date.Range{From: values.Dates[0], To: values.Dates[n-1]}
	}
	return a
}

// EndValue returns startVal grown by the cumulative return of the portfolio.
func (a *Assessment) EndValue() float64 {
	return a.Fund.StartValue * (a.Fund.CumulativeReturn + 1)
}

// Assess values a buy-and-hold allocation of symbols over r and compares it
// to the benchmark of the aligner.
func Assess(ctx context.Context, a *Aligner, symbols []string, alloc Allocation, r date.Range, startVal float64, opts StatsOptions) (*Assessment, error) {
	if len(alloc) != len(symbols) {
		return nil, fmt.Errorf("%d allocations for %d symbols: %w", len(alloc), len(symbols), ErrShapeMismatch)
	}
	prices, benchmark, err := a.Align(ctx, symbols, r)
	if err != nil {
		return nil, err
	}
	values, err := ValueAllocation(prices, alloc, startVal)
	if err != nil {
		return nil, err
	}
	res := NewAssessment(values, benchmark, opts)
	res.Symbols = prices.Symbols()
	res.Allocation = alloc
	return res, nil
}

// AssessSimulation compares a simulation to its benchmark.
func AssessSimulation(s *Simulation, opts StatsOptions) *Assessment {
	res := NewAssessment(s.Values, s.Benchmark, opts)
	res.Symbols = s.Prices.Symbols()
	return res
}

// OptimizeRange aligns symbols over r, searches the allocation maximizing the
// Sharpe ratio and assesses it with startVal.
func OptimizeRange(ctx context.Context, a *Aligner, symbols []string, r date.Range, startVal float64, opts OptimizeOptions) (*Assessment, error) {
	prices, benchmark, err := a.Align(ctx, symbols, r)
	if err != nil {
		return nil, err
	}
	alloc, _, err := Optimize(prices, opts)
	if err != nil {
		return nil, err
	}
	values, err := ValueAllocation(prices, alloc, startVal)
	if err != nil {
		return nil, err
	}
	res := NewAssessment(values, benchmark, opts.Stats)
	res.Symbols = prices.Symbols()
	res.Allocation = alloc
	return res, nil
}
