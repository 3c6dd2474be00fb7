package folio

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Action is the side of an order.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// ParseAction parses an action, case insensitively.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case Buy, Sell:
		return a, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownAction)
	}
}

// Sign returns +1 for a Buy and -1 for a Sell: the direction of the share count change.
func (a Action) Sign() float64 {
	if a == Sell {
		return -1
	}
	return 1
}

// Order is a single market order executed at the adjusted close of its date.
type Order struct {
	Date   date.Date
	Symbol string
	Action Action
	Shares decimal.Decimal // strictly positive
}

// NewOrder is a convenient constructor, mostly for tests.
func NewOrder(on date.Date, symbol string, action Action, shares int64) Order {
	return Order{Date: on, Symbol: symbol, Action: action, Shares: decimal.NewFromInt(shares)}
}

// Validate checks that the order is well formed.
func (o Order) Validate() error {
	if o.Symbol == "" {
		return fmt.Errorf("order on %s: missing symbol", o.Date)
	}
	if o.Action != Buy && o.Action != Sell {
		return fmt.Errorf("order on %s for %s: %q: %w", o.Date, o.Symbol, o.Action, ErrUnknownAction)
	}
	if !o.Shares.IsPositive() {
		return fmt.Errorf("order on %s for %s: shares must be positive, got %s", o.Date, o.Symbol, o.Shares)
	}
	return nil
}

// SignedShares returns the share count change: positive for a Buy, negative for a Sell.
func (o Order) SignedShares() float64 {
	return o.Action.Sign() * o.Shares.InexactFloat64()
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s %s %s", o.Date, o.Action, o.Shares, o.Symbol)
}

// SortOrders returns a copy of orders sorted by date. The sort is stable:
// orders on the same day keep their original relative order.
func SortOrders(orders []Order) []Order {
	res := slices.Clone(orders)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date.Before(res[j].Date)
	})
	return res
}

// OrderSymbols returns the distinct symbols of orders, in order of first appearance.
func OrderSymbols(orders []Order) []string {
	var res []string
	for _, o := range orders {
		if !slices.Contains(res, o.Symbol) {
			res = append(res, o.Symbol)
		}
	}
	return res
}

// OrderRange returns the range from the first to the last order date.
func OrderRange(orders []Order) (date.Range, error) {
	if len(orders) == 0 {
		return date.Range{}, ErrNoOrders
	}
	r := date.Range{From: orders[0].Date, To: orders[0].Date}
	for _, o := range orders[1:] {
		if o.Date.Before(r.From) {
			r.From = o.Date
		}
		if o.Date.After(r.To) {
			r.To = o.Date
		}
	}
	return r, nil
}
