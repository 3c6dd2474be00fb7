package folio

import (
	"context"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/stretchr/testify/require"
)

// days parses a list of dates.
func days(t *testing.T, ds ...string) []date.Date {
	t.Helper()
	res := make([]date.Date, len(ds))
	for i, d := range ds {
		on, err := date.Parse(d)
		require.NoError(t, err)
		res[i] = on
	}
	return res
}

// history builds a price history, prices[i] being observed on dates[i].
func history(dates []date.Date, prices ...float64) *date.History[float64] {
	h := new(date.History[float64])
	for i, d := range dates {
		h.Append(d, prices[i])
	}
	return h
}

// memoryProvider is a Provider serving fixed histories.
type memoryProvider map[string]*date.History[float64]

func (m memoryProvider) Prices(_ context.Context, symbols []string, r date.Range) (map[string]*date.History[float64], error) {
	res := make(map[string]*date.History[float64])
	for _, s := range symbols {
		if h, ok := m[s]; ok {
			res[s] = h.Between(r)
		}
	}
	return res, nil
}
