package folio

import (
	"context"

	"github.com/etnz/folio/date"
)

// Provider retrieves daily adjusted close prices.
//
// Prices returns one history per symbol it knows about, restricted to the
// inclusive range r. A symbol without any observation may be absent from the
// result or mapped to an empty history, both mean "no data".
type Provider interface {
	Prices(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[float64], error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[float64], error)

// Prices calls f.
func (f ProviderFunc) Prices(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[float64], error) {
	return f(ctx, symbols, r)
}
