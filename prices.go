package folio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyTable      = errors.New("empty price table")
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrNoTradingDays   = errors.New("no trading days")
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrNoOrders        = errors.New("no orders")
	ErrUnknownAction   = errors.New("unknown order action")
	ErrOrderOutOfRange = errors.New("order out of range")
)

// Series is a named chronological sequence of values, indexed by position.
type Series struct {
	Name   string
	Dates  []date.Date
	Values []float64
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Values) }

// First returns the first value, or NaN for an empty series.
func (s Series) First() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[0]
}

// Last returns the last value, or NaN for an empty series.
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// Normalize returns a copy of the series divided by its first value.
func (s Series) Normalize() Series {
	first := s.First()
	res := Series{Name: s.Name, Dates: slices.Clone(s.Dates), Values: make([]float64, len(s.Values))}
	for i, v := range s.Values {
		res.Values[i] = v / first
	}
	return res
}

// PriceTable holds adjusted close prices of a set of symbols on a common calendar.
//
// Rows are dates, strictly increasing, addressed by position. The
// date-to-position lookup is an explicit map. Columns are symbols in the
// order they were requested. Missing prices are NaN.
type PriceTable struct {
	dates   []date.Date
	symbols []string
	columns [][]float64 // columns[j][i] is the price of symbols[j] on dates[i]
	index   map[date.Date]int
	bySym   map[string]int
}

// NewPriceTable builds a table from a calendar and one column per symbol.
//
// Dates must be strictly increasing and every column must have one value per date.
func NewPriceTable(dates []date.Date, symbols []string, columns ...[]float64) (*PriceTable, error) {
	if len(symbols) != len(columns) {
		return nil, fmt.Errorf("%d symbols for %d columns: %w", len(symbols), len(columns), ErrShapeMismatch)
	}
	t := newPriceTable(dates, symbols)
	if len(t.index) != len(dates) {
		return nil, fmt.Errorf("duplicated dates in calendar: %w", ErrShapeMismatch)
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("calendar is not strictly increasing at %s: %w", dates[i], ErrShapeMismatch)
		}
	}
	if len(t.bySym) != len(symbols) {
		return nil, fmt.Errorf("duplicated symbols %v: %w", symbols, ErrShapeMismatch)
	}
	for j, col := range columns {
		if len(col) != len(dates) {
			return nil, fmt.Errorf("column %q has %d values for %d dates: %w", symbols[j], len(col), len(dates), ErrShapeMismatch)
		}
		copy(t.columns[j], col)
	}
	return t, nil
}

// newPriceTable returns a table filled with NaN.
func newPriceTable(dates []date.Date, symbols []string) *PriceTable {
	t := &PriceTable{
		dates:   slices.Clone(dates),
		symbols: slices.Clone(symbols),
		columns: make([][]float64, len(symbols)),
		index:   make(map[date.Date]int, len(dates)),
		bySym:   make(map[string]int, len(symbols)),
	}
	for i, d := range t.dates {
		t.index[d] = i
	}
	for j, s := range t.symbols {
		t.bySym[s] = j
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		t.columns[j] = col
	}
	return t
}

// Reindex builds a table on the given calendar from raw histories.
//
// Each symbol takes its observation on a calendar day when there is one, and
// carries the last value seen on a previous calendar day otherwise. Days
// before the first observation stay NaN: there is no backward fill.
// Observations outside the calendar are ignored.
func Reindex(calendar []date.Date, symbols []string, histories map[string]*date.History[float64]) *PriceTable {
	t := newPriceTable(calendar, symbols)
	for j, sym := range t.symbols {
		h := histories[sym]
		if h == nil {
			continue
		}
		col := t.columns[j]
		last := math.NaN()
		for i, d := range t.dates {
			if v, ok := h.Get(d); ok && !math.IsNaN(v) {
				last = v
			}
			col[i] = last
		}
	}
	return t
}

// Len returns the number of dates in the table.
func (t *PriceTable) Len() int { return len(t.dates) }

// Dates returns a copy of the calendar.
func (t *PriceTable) Dates() []date.Date { return slices.Clone(t.dates) }

// Date returns the date at position i.
func (t *PriceTable) Date(i int) date.Date { return t.dates[i] }

// Symbols returns a copy of the column names.
func (t *PriceTable) Symbols() []string { return slices.Clone(t.symbols) }

// Index returns the position of a date in the calendar.
func (t *PriceTable) Index(d date.Date) (int, bool) {
	i, ok := t.index[d]
	return i, ok
}

// Has reports whether symbol is a column of the table.
func (t *PriceTable) Has(symbol string) bool {
	_, ok := t.bySym[symbol]
	return ok
}

// At returns the price of the j-th symbol at the i-th date.
func (t *PriceTable) At(i, j int) float64 { return t.columns[j][i] }

// Price returns the price of symbol on d.
func (t *PriceTable) Price(d date.Date, symbol string) (float64, bool) {
	i, ok := t.index[d]
	if !ok {
		return math.NaN(), false
	}
	j, ok := t.bySym[symbol]
	if !ok {
		return math.NaN(), false
	}
	return t.columns[j][i], true
}

// Series returns a copy of a column as a Series.
func (t *PriceTable) Series(symbol string) (Series, bool) {
	j, ok := t.bySym[symbol]
	if !ok {
		return Series{}, false
	}
	return Series{Name: symbol, Dates: slices.Clone(t.dates), Values: slices.Clone(t.columns[j])}, true
}

// Select returns a new table restricted to symbols, in that order.
func (t *PriceTable) Select(symbols ...string) (*PriceTable, error) {
	res := newPriceTable(t.dates, symbols)
	for k, s := range symbols {
		j, ok := t.bySym[s]
		if !ok {
			return nil, fmt.Errorf("%q: %w", s, ErrUnknownSymbol)
		}
		copy(res.columns[k], t.columns[j])
	}
	return res, nil
}

// Missing returns the symbols whose column holds no price at all.
func (t *PriceTable) Missing() []string {
	var res []string
	for j, col := range t.columns {
		if !slices.ContainsFunc(col, func(v float64) bool { return !math.IsNaN(v) }) {
			res = append(res, t.symbols[j])
		}
	}
	return res
}

// Aligner aligns raw provider prices onto the trading calendar of a benchmark.
type Aligner struct {
	Provider  Provider
	Benchmark string // Symbol whose own dates define the trading days.
}

// NewAligner returns an Aligner for the given provider and benchmark symbol.
func NewAligner(p Provider, benchmark string) *Aligner {
	return &Aligner{Provider: p, Benchmark: benchmark}
}

// Calendar returns the benchmark's trading days within r.
func (a *Aligner) Calendar(ctx context.Context, r date.Range) ([]date.Date, error) {
	raw, err := a.Provider.Prices(ctx, []string{a.Benchmark}, r)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch benchmark %q prices: %w", a.Benchmark, err)
	}
	return a.calendar(raw, r)
}

func (a *Aligner) calendar(raw map[string]*date.History[float64], r date.Range) ([]date.Date, error) {
	var days []date.Date
	if h := raw[a.Benchmark]; h != nil {
		for d, v := range h.Values() {
			if r.Contains(d) && !math.IsNaN(v) {
				days = append(days, d)
			}
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("benchmark %q between %s: %w", a.Benchmark, r, ErrNoTradingDays)
	}
	return days, nil
}

// Align fetches symbols and the benchmark over r, and returns the symbols
// prices on the benchmark trading calendar, with the benchmark series apart.
//
// The benchmark is always fetched, but it is a column of the returned table
// only if it is part of symbols. Symbols without any observation result in
// all-NaN columns, see [PriceTable.Missing].
func (a *Aligner) Align(ctx context.Context, symbols []string, r date.Range) (*PriceTable, Series, error) {
	fetch := slices.Clone(symbols)
	if !slices.Contains(fetch, a.Benchmark) {
		fetch = append(fetch, a.Benchmark)
	}
	raw, err := a.Provider.Prices(ctx, fetch, r)
	if err != nil {
		return nil, Series{}, fmt.Errorf("cannot fetch prices for %v: %w", fetch, err)
	}
	calendar, err := a.calendar(raw, r)
	if err != nil {
		return nil, Series{}, err
	}

	table := Reindex(calendar, symbols, raw)
	for _, s := range table.Missing() {
		log.Warn().Str("symbol", s).Stringer("from", r.From).Stringer("to", r.To).Msg("no price in range")
	}

	bench := Reindex(calendar, []string{a.Benchmark}, raw)
	benchmark, _ := bench.Series(a.Benchmark)
	return table, benchmark, nil
}
