// Package csvdir serves prices from a directory of CSV files, one per symbol.
//
// Each file is named after its symbol, e.g. `data/SPY.csv`, and has a header
// with at least a `Date` and an `Adj Close` column:
//
//	Date,Open,High,Low,Close,Volume,Adj Close
//	2012-09-12,1431.21,1439.15,1430.03,1437.92,3641200000,1437.92
//
// Rows can be in any order.
package csvdir

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
)

// DateColumn and PriceColumn are the default column names.
const (
	DateColumn  = "Date"
	PriceColumn = "Adj Close"
)

// Provider reads prices from Dir.
type Provider struct {
	Dir         string
	PriceColumn string // defaults to PriceColumn
}

// New returns a provider reading files in dir.
func New(dir string) *Provider { return &Provider{Dir: dir, PriceColumn: PriceColumn} }

// Prices implements folio.Provider.
//
// A symbol without a file has no observations, it is not an error.
func (p *Provider) Prices(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[float64], error) {
	res := make(map[string]*date.History[float64], len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := p.Read(sym)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("symbol", sym).Str("dir", p.Dir).Msg("no price file")
			continue
		}
		if err != nil {
			return nil, err
		}
		res[sym] = h.Between(r)
	}
	return res, nil
}

// Path returns the file holding the prices of symbol.
func (p *Provider) Path(symbol string) string {
	return filepath.Join(p.Dir, symbol+".csv")
}

// Read returns the full price history of symbol.
func (p *Provider) Read(symbol string) (*date.History[float64], error) {
	f, err := os.Open(p.Path(symbol))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	col := p.PriceColumn
	if col == "" {
		col = PriceColumn
	}
	h, err := Decode(f, col)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", p.Path(symbol), err)
	}
	return h, nil
}

// Decode reads a price history from CSV, using the `Date` column and the given price column.
// Empty prices and "null" are skipped.
func Decode(r io.Reader, priceColumn string) (*date.History[float64], error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}
	di, pi := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case DateColumn:
			di = i
		case priceColumn:
			pi = i
		}
	}
	if di < 0 || pi < 0 {
		return nil, fmt.Errorf("header %v must contain %q and %q", header, DateColumn, priceColumn)
	}

	h := new(date.History[float64])
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if di >= len(record) || pi >= len(record) {
			return nil, fmt.Errorf("line %d: too few fields", line)
		}
		on, err := date.Parse(strings.TrimSpace(record[di]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s := strings.TrimSpace(record[pi])
		if s == "" || s == "null" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid price %q: %w", line, s, err)
		}
		h.Append(on, v)
	}
	return h, nil
}
