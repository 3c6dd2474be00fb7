// Package ledger reads and writes order ledgers.
//
// Two formats are supported: the CSV format with a `Date,Symbol,Order,Shares`
// header, and a JSONL format with one order per line:
//
//	{"date":"2011-01-10","symbol":"AAPL","order":"BUY","shares":1500}
//
// Orders are returned in file order; sorting is left to the valuation.
package ledger

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Format of a ledger file.
type Format string

const (
	CSV   Format = "csv"
	JSONL Format = "jsonl"
)

// FormatOf guesses the format from a file name extension, CSV by default.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsonl", ".json":
		return JSONL
	default:
		return CSV
	}
}

// Decode reads orders in the given format.
func Decode(r io.Reader, f Format) ([]folio.Order, error) {
	switch f {
	case JSONL:
		return DecodeJSONL(r)
	case CSV:
		return DecodeCSV(r)
	default:
		return nil, fmt.Errorf("unknown ledger format %q", f)
	}
}

// line is the JSONL representation of an order.
type line struct {
	Date   date.Date       `json:"date"`
	Symbol string          `json:"symbol"`
	Order  string          `json:"order"`
	Shares decimal.Decimal `json:"shares"`
}

// DecodeJSONL decodes orders from a stream of JSON lines. Empty lines are skipped.
func DecodeJSONL(r io.Reader) ([]folio.Order, error) {
	var orders []folio.Order
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		lineBytes := scanner.Bytes()
		if len(strings.TrimSpace(string(lineBytes))) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(lineBytes, &l); err != nil {
			return nil, fmt.Errorf("line %d: cannot decode %q: %w", n, string(lineBytes), err)
		}
		o, err := newOrder(l.Date, l.Symbol, l.Order, l.Shares)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		orders = append(orders, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return orders, nil
}

// DecodeCSV decodes orders from CSV. The header is required and column names
// are matched case insensitively; extra columns and trailing empty fields are ignored.
func DecodeCSV(r io.Reader) ([]folio.Order, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var idx [4]int
	for k, name := range []string{"date", "symbol", "order", "shares"} {
		i, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("header %v: %q: %w", header, name, ErrMissingColumn)
		}
		idx[k] = i
	}

	var orders []folio.Order
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		n, _ := cr.FieldPos(0)
		if blank(record) {
			continue
		}
		field := func(k int) string {
			if idx[k] >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx[k]])
		}
		on, err := date.Parse(field(0))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q: %w", n, field(0), err)
		}
		shares, err := decimal.NewFromString(field(3))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid shares %q: %w", n, field(3), err)
		}
		o, err := newOrder(on, field(1), field(2), shares)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func newOrder(on date.Date, symbol, action string, shares decimal.Decimal) (folio.Order, error) {
	a, err := folio.ParseAction(action)
	if err != nil {
		return folio.Order{}, err
	}
	o := folio.Order{Date: on, Symbol: strings.TrimSpace(symbol), Action: a, Shares: shares}
	return o, o.Validate()
}

// EncodeJSONL writes orders in JSONL format, one order per line, in the given order.
func EncodeJSONL(w io.Writer, orders []folio.Order) error {
	for _, o := range orders {
		data, err := json.Marshal(line{Date: o.Date, Symbol: o.Symbol, Order: string(o.Action), Shares: o.Shares})
		if err != nil {
			return fmt.Errorf("failed to marshal order %v: %w", o, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write order: %w", err)
		}
	}
	return nil
}

// EncodeCSV writes orders in CSV format with a header.
func EncodeCSV(w io.Writer, orders []folio.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Symbol", "Order", "Shares"}); err != nil {
		return err
	}
	for _, o := range orders {
		if err := cw.Write([]string{o.Date.String(), o.Symbol, string(o.Action), o.Shares.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
