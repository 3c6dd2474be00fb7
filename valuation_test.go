package folio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAllocation(t *testing.T) {
	cal := days(t, "2011-01-10", "2011-01-11", "2011-01-12")
	prices, err := NewPriceTable(cal, []string{"A", "B"},
		[]float64{100, 110, 121},
		[]float64{50, 45, 40.5},
	)
	require.NoError(t, err)

	values, err := ValueAllocation(prices, Allocation{0.5, 0.5}, 1000)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, values.Values[0])
	assert.InDelta(t, 1000.0, values.Values[1], 1e-9)
	assert.InDelta(t, 1010.0, values.Values[2], 1e-9)
	assert.Equal(t, cal, values.Dates)
}

func TestValueAllocation_FirstValueIsStartValue(t *testing.T) {
	cal := days(t, "2011-01-10", "2011-01-11", "2011-01-12", "2011-01-13")
	prices, err := NewPriceTable(cal, []string{"A", "B", "C"},
		[]float64{33.3, 34, 30, 31},
		[]float64{1234.5, 1200, 1300, 1250},
		[]float64{7.77, 8, 9, 6},
	)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		alloc    Allocation
		startVal float64
	}{
		{"uniform", Uniform(3), 1_000_000},
		{"single asset", Allocation{0, 1, 0}, 1},
		{"skewed", Allocation{0.1, 0.2, 0.7}, 12345.67},
		{"thirds", Allocation{1.0 / 3, 1.0 / 3, 1.0 / 3}, 100},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, 1.0, tc.alloc.Sum(), 1e-12)
			values, err := ValueAllocation(prices, tc.alloc, tc.startVal)
			require.NoError(t, err)
			assert.InDelta(t, tc.startVal, values.Values[0], tc.startVal*1e-12)
		})
	}
}

func TestValueAllocation_Errors(t *testing.T) {
	cal := days(t, "2011-01-10")
	prices, err := NewPriceTable(cal, []string{"A", "B"}, []float64{1}, []float64{2})
	require.NoError(t, err)

	_, err = ValueAllocation(prices, Allocation{1}, 1000)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	empty, err := NewPriceTable(nil, nil)
	require.NoError(t, err)
	_, err = ValueAllocation(empty, nil, 1000)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestValueOrders_SingleBuy(t *testing.T) {
	cal := days(t, "2011-01-10", "2011-01-11")
	prices, err := NewPriceTable(cal, []string{"X"}, []float64{20, 25})
	require.NoError(t, err)

	values, pos, err := ValueOrders(prices, []Order{NewOrder(cal[0], "X", Buy, 10)}, 1000)
	require.NoError(t, err)

	assert.Equal(t, []float64{800, 800}, pos.Cash)
	assert.Equal(t, 10.0, pos.SharesHeld("X", cal[0]))
	assert.Equal(t, 10.0, pos.SharesHeld("X", cal[1]), "holdings carry forward")
	assert.Equal(t, 1000.0, values.Values[0], "a trade at market price keeps the total value")
	assert.Equal(t, 1050.0, values.Values[1])
}

func TestValueOrders_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger, level := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	defer func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	}()

	cal := days(t, "2011-01-10", "2011-01-11")
	prices, err := NewPriceTable(cal, []string{"X", "Y"}, []float64{20, 25}, []float64{5, 4})
	require.NoError(t, err)
	orders := []Order{
		NewOrder(cal[0], "X", Buy, 10),
		NewOrder(cal[1], "Y", Sell, 3),
	}
	_, _, err = ValueOrders(prices, orders, 1000)
	require.NoError(t, err)

	type trace struct {
		Symbol string  `json:"symbol"`
		Order  string  `json:"order"`
		Cost   float64 `json:"cost"`
		Date   string  `json:"date"`
	}
	var got []trace
	lines := bufio.NewScanner(&buf)
	for lines.Scan() {
		var tr trace
		require.NoError(t, json.Unmarshal(lines.Bytes(), &tr))
		got = append(got, tr)
	}
	assert.Equal(t, []trace{
		{Symbol: "X", Order: "BUY", Cost: 200, Date: "2011-01-10"},
		{Symbol: "Y", Order: "SELL", Cost: -12, Date: "2011-01-11"},
	}, got)
}

func TestValueOrders_EmptyLedger(t *testing.T) {
	cal := days(t, "2011-01-10", "2011-01-11", "2011-01-12")
	prices, err := NewPriceTable(cal, []string{"X"}, []float64{20, 25, 30})
	require.NoError(t, err)

	for _, startVal := range []float64{1, 1000, 1_000_000, 0.01} {
		values, _, err := ValueOrders(prices, nil, startVal)
		require.NoError(t, err)
		assert.Equal(t, startVal, values.Values[0])
		assert.Equal(t, startVal, values.Last())
	}
}

func TestValueOrders_SameDayAccumulates(t *testing.T) {
	cal := days(t, "2011-01-10", "2011-01-11")
	prices, err := NewPriceTable(cal, []string{"X"}, []float64{10, 12})
	require.NoError(t, err)

	orders := []Order{
		NewOrder(cal[0], "X", Buy, 5),
		NewOrder(cal[0], "X", Sell, 3),
	}
	values, pos, err := ValueOrders(prices, orders, 100)
	require.NoError(t, err)

	assert.Equal(t, 2.0, pos.Deltas[0][0])
	assert.Equal(t, 2.0, pos.SharesHeld("X", cal[1]))
	assert.Equal(t, 80.0, pos.Cash[0]) // 100 - 50 + 30
	assert.Equal(t, 100.0, values.Values[0])
	assert.Equal(t, 104.0, values.Values[1])
}

func TestValueOrders_SharesRoundTrip(t *testing.T) {
	cal := days(t, "2011-01-10", "2011-01-11", "2011-01-12", "2011-01-13", "2011-01-14")
	prices, err := NewPriceTable(cal, []string{"A", "B"},
		[]float64{10, 11, 12, 13, 14},
		[]float64{20, 19, 18, 17, 16},
	)
	require.NoError(t, err)

	orders := []Order{
		NewOrder(cal[3], "A", Sell, 40),
		NewOrder(cal[0], "A", Buy, 100),
		NewOrder(cal[1], "B", Buy, 10),
		NewOrder(cal[3], "B", Buy, 5),
		NewOrder(cal[1], "A", Buy, 7),
		NewOrder(cal[4], "B", Sell, 20), // goes short
	}
	_, pos, err := ValueOrders(prices, orders, 10_000)
	require.NoError(t, err)

	for _, sym := range []string{"A", "B"} {
		for _, on := range cal {
			// direct count of BUY minus SELL up to that day.
			var want float64
			for _, o := range orders {
				if o.Symbol == sym && !o.Date.After(on) {
					want += o.SignedShares()
				}
			}
			assert.Equal(t, want, pos.SharesHeld(sym, on), "%s on %s", sym, on)
		}
	}
	assert.Equal(t, -5.0, pos.SharesHeld("B", cal[4]))
}

func TestValueOrders_Overdraft(t *testing.T) {
	cal := days(t, "2011-01-10", "2011-01-11")
	prices, err := NewPriceTable(cal, []string{"X"}, []float64{100, 90})
	require.NoError(t, err)

	values, pos, err := ValueOrders(prices, []Order{NewOrder(cal[0], "X", Buy, 50)}, 1000)
	require.NoError(t, err)

	assert.Equal(t, -4000.0, pos.Cash[0])
	assert.Equal(t, 1000.0, values.Values[0])
	assert.Equal(t, 500.0, values.Values[1])
}

func TestValueOrders_NonTradingDay(t *testing.T) {
	// 2011-01-15 and 16 are a weekend.
	cal := days(t, "2011-01-14", "2011-01-17")
	prices, err := NewPriceTable(cal, []string{"X"}, []float64{10, 11})
	require.NoError(t, err)

	_, pos, err := ValueOrders(prices, []Order{NewOrder(date.MustParse("2011-01-15"), "X", Buy, 1)}, 100)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, pos.Deltas[0], "weekend order executes on the next trading day")
	assert.Equal(t, []float64{100, 89}, pos.Cash)

	_, _, err = ValueOrders(prices, []Order{NewOrder(date.MustParse("2011-01-18"), "X", Buy, 1)}, 100)
	assert.ErrorIs(t, err, ErrOrderOutOfRange)
}

func TestValueOrders_Errors(t *testing.T) {
	cal := days(t, "2011-01-10")
	prices, err := NewPriceTable(cal, []string{"X"}, []float64{10})
	require.NoError(t, err)

	_, _, err = ValueOrders(prices, []Order{NewOrder(cal[0], "Y", Buy, 1)}, 100)
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	_, _, err = ValueOrders(prices, []Order{NewOrder(cal[0], "X", Action("HOLD"), 1)}, 100)
	assert.ErrorIs(t, err, ErrUnknownAction)

	empty, err := NewPriceTable(nil, []string{"X"}, []float64{})
	require.NoError(t, err)
	_, _, err = ValueOrders(empty, nil, 100)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestSimulate(t *testing.T) {
	spyDays := days(t, "2011-01-10", "2011-01-11", "2011-01-12", "2011-01-13", "2011-01-14")
	provider := memoryProvider{
		"SPY":  history(spyDays, 100, 101, 102, 103, 104),
		"AAPL": history(spyDays, 10, 11, 12, 13, 14),
		"IBM":  history(spyDays, 50, 50, 40, 40, 30),
	}
	orders := []Order{
		NewOrder(spyDays[3], "IBM", Sell, 10),
		NewOrder(spyDays[1], "AAPL", Buy, 100),
		NewOrder(spyDays[1], "IBM", Buy, 10),
	}
	sim, err := Simulate(context.Background(), NewAligner(provider, "SPY"), orders, 10_000)
	require.NoError(t, err)

	// calendar spans the first to the last order.
	assert.Equal(t, spyDays[1:4], sim.Values.Dates)
	assert.Equal(t, []string{"AAPL", "IBM"}, sim.Prices.Symbols())
	assert.Equal(t, []float64{101, 102, 103}, sim.Benchmark.Values)

	// cash: 10000 - 1100 - 500 = 8400, then +400 on the last day.
	assert.Equal(t, []float64{8400, 8400, 8800}, sim.Positions.Cash)
	assert.Equal(t, []float64{10_000, 8400 + 1200 + 400, 8800 + 1300}, sim.Values.Values)

	_, err = Simulate(context.Background(), NewAligner(provider, "SPY"), nil, 10_000)
	assert.ErrorIs(t, err, ErrNoOrders)
}

func TestSimulate_AfterLastTradingDay(t *testing.T) {
	spyDays := days(t, "2011-01-13", "2011-01-14")
	provider := memoryProvider{
		"SPY":  history(spyDays, 100, 101),
		"AAPL": history(spyDays, 10, 11),
	}
	orders := []Order{
		NewOrder(spyDays[0], "AAPL", Buy, 10),
		// a Saturday, with no trading day up to it.
		NewOrder(date.New(2011, 1, 15), "AAPL", Sell, 10),
	}
	_, err := Simulate(context.Background(), NewAligner(provider, "SPY"), orders, 1000)
	assert.ErrorIs(t, err, ErrOrderOutOfRange)

	_, err = Simulate(context.Background(), NewAligner(provider, "SPY"), orders[:1], 1000)
	assert.NoError(t, err)
}
