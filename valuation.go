package folio

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// Allocation is a vector of weights aligned to the symbols of a PriceTable.
//
// Nothing but the optimizer enforces that weights sum to 1 and lie in [0,1].
type Allocation []float64

// Uniform returns an equal-weight allocation over n symbols.
func Uniform(n int) Allocation {
	a := make(Allocation, n)
	for i := range a {
		a[i] = 1 / float64(n)
	}
	return a
}

// Sum returns the sum of the weights.
func (a Allocation) Sum() float64 { return floats.Sum(a) }

// Valid reports whether the weights are in [0,1] and sum to 1 within eps.
func (a Allocation) Valid(eps float64) bool {
	for _, w := range a {
		if w < 0 || w > 1 {
			return false
		}
	}
	return math.Abs(a.Sum()-1) < eps
}

// ValueAllocation values a buy-and-hold portfolio.
//
// Each price column is normalized by its value on the first date, weighted by
// its allocation, and summed; the result is scaled by startVal. This models
// buying once on the first day and never trading again, so the first value
// is startVal. Missing prices propagate as NaN.
func ValueAllocation(prices *PriceTable, alloc Allocation, startVal float64) (Series, error) {
	if prices.Len() == 0 || len(prices.symbols) == 0 {
		return Series{}, ErrEmptyTable
	}
	if len(alloc) != len(prices.symbols) {
		return Series{}, fmt.Errorf("%d weights for %d symbols: %w", len(alloc), len(prices.symbols), ErrShapeMismatch)
	}

	values := make([]float64, prices.Len())
	for j, col := range prices.columns {
		first := col[0]
		for i, p := range col {
			values[i] += alloc[j] * p / first
		}
	}
	floats.Scale(startVal, values)
	return Series{Name: "Portfolio", Dates: prices.Dates(), Values: values}, nil
}

// Positions is the day by day state of a portfolio driven by orders.
//
// All slices are indexed by date position in Dates; per symbol slices are
// indexed by the position of the symbol in Symbols.
type Positions struct {
	Dates   []date.Date
	Symbols []string
	Deltas  [][]float64 // signed share change per symbol and date
	Shares  [][]float64 // shares held per symbol at the end of each date
	Cash    []float64   // cash balance at the end of each date
}

// SharesHeld returns the shares of symbol held at the end of day d.
func (p *Positions) SharesHeld(symbol string, d date.Date) float64 {
	j := slices.Index(p.Symbols, symbol)
	i := slices.Index(p.Dates, d)
	if i < 0 || j < 0 {
		return 0
	}
	return p.Shares[j][i]
}

// ValueOrders replays orders on prices and values the resulting portfolio every day.
//
// Orders are stably sorted by date. Cash starts at startVal on the first date;
// each order moves cash by its price times its shares on its date and changes
// the held shares accordingly. Orders on the same day and symbol accumulate.
// An order dated on a non trading day executes on the next trading day.
//
// There is no margin nor short selling check: cash and shares can go negative.
func ValueOrders(prices *PriceTable, orders []Order, startVal float64) (Series, *Positions, error) {
	n := prices.Len()
	if n == 0 {
		return Series{}, nil, ErrEmptyTable
	}
	sorted := SortOrders(orders)
	symbols := OrderSymbols(sorted)

	pos := &Positions{
		Dates:   prices.Dates(),
		Symbols: symbols,
		Deltas:  make([][]float64, len(symbols)),
		Shares:  make([][]float64, len(symbols)),
		Cash:    make([]float64, n),
	}
	cols := make([]int, len(symbols)) // position of each symbol in the price table
	for k, s := range symbols {
		j, ok := prices.bySym[s]
		if !ok {
			return Series{}, nil, fmt.Errorf("no price column for %q: %w", s, ErrUnknownSymbol)
		}
		cols[k] = j
		pos.Deltas[k] = make([]float64, n)
	}

	// Cash changes per day, cumulated below.
	pos.Cash[0] = startVal
	for _, o := range sorted {
		if err := o.Validate(); err != nil {
			return Series{}, nil, err
		}
		i, err := prices.tradingDay(o.Date)
		if err != nil {
			return Series{}, nil, fmt.Errorf("order %v: %w", o, err)
		}
		k := slices.Index(symbols, o.Symbol)
		shares := o.SignedShares()
		pos.Deltas[k][i] += shares

		cost := prices.At(i, cols[k]) * shares
		pos.Cash[i] -= cost
		log.Info().
			Str("symbol", o.Symbol).
			Str("order", string(o.Action)).
			Float64("cost", cost).
			Stringer("date", prices.Date(i)).
			Msg("order processed")
	}

	floats.CumSum(pos.Cash, pos.Cash)
	for k := range symbols {
		pos.Shares[k] = make([]float64, n)
		floats.CumSum(pos.Shares[k], pos.Deltas[k])
	}

	values := slices.Clone(pos.Cash)
	for k := range symbols {
		for i := range values {
			// A position never held contributes nothing, even when its price is unknown.
			if held := pos.Shares[k][i]; held != 0 {
				values[i] += held * prices.At(i, cols[k])
			}
		}
	}
	return Series{Name: "Portfolio", Dates: prices.Dates(), Values: values}, pos, nil
}

// tradingDay returns the position of the first calendar date on or after d.
func (t *PriceTable) tradingDay(d date.Date) (int, error) {
	if i, ok := t.index[d]; ok {
		return i, nil
	}
	i, _ := slices.BinarySearchFunc(t.dates, d, date.Date.Compare)
	if i >= len(t.dates) {
		return 0, fmt.Errorf("%s is after the last trading day %s: %w", d, t.dates[len(t.dates)-1], ErrOrderOutOfRange)
	}
	return i, nil
}

// Simulation is the outcome of replaying an order ledger against market prices.
type Simulation struct {
	Values    Series     // total portfolio value per trading day
	Positions *Positions // cash and shares per trading day
	Prices    *PriceTable
	Benchmark Series // benchmark prices on the same calendar
}

// Simulate replays orders on the trading days between the first and the last order.
//
// Prices for the ordered symbols are fetched and aligned with a, whose
// benchmark defines the trading calendar. An order after the last trading
// day fails with ErrOrderOutOfRange.
func Simulate(ctx context.Context, a *Aligner, orders []Order, startVal float64) (*Simulation, error) {
	sorted := SortOrders(orders)
	r, err := OrderRange(sorted)
	if err != nil {
		return nil, err
	}
	calendar, err := a.Calendar(ctx, r)
	if err != nil {
		return nil, err
	}
	first, last := calendar[0], calendar[len(calendar)-1]
	if o := sorted[len(sorted)-1]; o.Date.After(last) {
		return nil, fmt.Errorf("order %v: after the last trading day %s: %w", o, last, ErrOrderOutOfRange)
	}
	prices, benchmark, err := a.Align(ctx, OrderSymbols(sorted), date.Range{From: first, To: last})
	if err != nil {
		return nil, err
	}
	values, pos, err := ValueOrders(prices, sorted, startVal)
	if err != nil {
		return nil, err
	}
	return &Simulation{Values: values, Positions: pos, Prices: prices, Benchmark: benchmark}, nil
}
