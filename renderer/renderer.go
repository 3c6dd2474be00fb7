// Package renderer renders analysis results as markdown.
package renderer

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/folio"
	md "github.com/nao1215/markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Money formats an amount in the given currency, e.g. $1,000,000.00.
func Money(amount float64, currency string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	return money.NewFromFloat(amount, strings.ToUpper(currency)).Display()
}

// Percent formats a ratio as a signed percentage.
func Percent(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", r*100)
}

// Ratio formats a ratio without unit.
func Ratio(r float64) string {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", r)
}

// Assessment renders a fund vs benchmark assessment.
func Assessment(title string, a *folio.Assessment, benchmark, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	doc.PlainText(fmt.Sprintf("From %s to %s, %d trading days.", a.Range.From, a.Range.To, a.Values.Len()))

	if len(a.Symbols) > 0 {
		doc.H2("Portfolio")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Symbol", "Allocation"},
			Rows:      [][]string{},
		}
		for i, sym := range a.Symbols {
			alloc := "traded"
			if a.Allocation != nil {
				alloc = fmt.Sprintf("%.4f", a.Allocation[i])
			}
			table.Rows = append(table.Rows, []string{sym, alloc})
		}
		doc.Table(table)
	}

	doc.H2("Performance")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"", "Fund", benchmark},
		Rows: [][]string{
			{"Sharpe Ratio", Ratio(a.Fund.SharpeRatio), Ratio(a.Market.SharpeRatio)},
			{"Cumulative Return", Percent(a.Fund.CumulativeReturn), Percent(a.Market.CumulativeReturn)},
			{"Standard Deviation", Ratio(a.Fund.StdDailyReturn), Ratio(a.Market.StdDailyReturn)},
			{"Average Daily Return", Ratio(a.Fund.AvgDailyReturn), Ratio(a.Market.AvgDailyReturn)},
			{"Start Value", Money(a.Fund.StartValue, currency), Money(a.Market.StartValue, currency)},
			{"Final Value", Money(a.EndValue(), currency), Money(a.Market.EndValue, currency)},
		},
	}
	doc.Table(table)

	return doc.String()
}

// Orders renders an order ledger as a table.
func Orders(orders []folio.Order) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Date", "Symbol", "Order", "Shares"},
		Rows:      [][]string{},
	}
	for _, o := range orders {
		table.Rows = append(table.Rows, []string{o.Date.String(), o.Symbol, string(o.Action), o.Shares.String()})
	}
	doc.Table(table)
	return doc.String()
}

// Positions renders the cash and holdings at the end of a simulation.
func Positions(p *folio.Positions, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	if len(p.Dates) == 0 {
		return ""
	}
	last := p.Dates[len(p.Dates)-1]
	doc.H2(fmt.Sprintf("Holdings on %s", last))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Asset", "Position"},
		Rows:      [][]string{{"Cash", Money(p.Cash[len(p.Cash)-1], currency)}},
	}
	for _, sym := range p.Symbols {
		if held := p.SharesHeld(sym, last); held != 0 {
			table.Rows = append(table.Rows, []string{sym, fmt.Sprintf("%g", held)})
		}
	}
	doc.Table(table)
	return doc.String()
}

// HTML converts markdown into an HTML fragment, with GitHub flavored tables.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
