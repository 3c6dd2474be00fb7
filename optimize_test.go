package folio

import (
	"math"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSimplex(t *testing.T) {
	testCases := []struct {
		x    []float64
		want Allocation
	}{
		{[]float64{0.25, 0.25, 0.25, 0.25}, Allocation{0.25, 0.25, 0.25, 0.25}},
		{[]float64{1, 0}, Allocation{1, 0}},
		{[]float64{2, 0}, Allocation{1, 0}},
		{[]float64{0, 0}, Allocation{0.5, 0.5}},
		{[]float64{-1, 2}, Allocation{0, 1}},
		{[]float64{0.6, 0.6}, Allocation{0.5, 0.5}},
		{[]float64{0.5, 0.3, -0.2}, Allocation{0.6, 0.4, 0}},
		{[]float64{5}, Allocation{1}},
	}
	for _, tc := range testCases {
		got := ProjectSimplex(tc.x)
		assert.InDeltaSlice(t, tc.want, got, 1e-12, "ProjectSimplex(%v)", tc.x)
		assert.True(t, got.Valid(1e-9), "ProjectSimplex(%v) = %v is not a valid allocation", tc.x, got)
	}
}

// trendingTable returns deterministic prices over n trading days: a steady
// rise, a noisy rise, a fall and a wave.
func trendingTable(t *testing.T, n int) *PriceTable {
	t.Helper()
	var cal []date.Date
	for d := date.MustParse("2011-01-03"); len(cal) < n; d = d.Add(1) {
		if wd := d.Weekday(); wd == 0 || wd == 6 {
			continue
		}
		cal = append(cal, d)
	}
	cols := make([][]float64, 4)
	for j := range cols {
		cols[j] = make([]float64, n)
	}
	for i := range n {
		x := float64(i)
		cols[0][i] = 100 * math.Pow(1.001, x) * (1 + 0.002*math.Sin(x))
		cols[1][i] = 50 * math.Pow(1.003, x) * (1 + 0.02*math.Sin(1.7*x))
		cols[2][i] = 80 * math.Pow(0.998, x) * (1 + 0.01*math.Cos(x))
		cols[3][i] = 30 * (1 + 0.05*math.Sin(0.3*x))
	}
	table, err := NewPriceTable(cal, []string{"STEADY", "NOISY", "FALL", "WAVE"}, cols...)
	require.NoError(t, err)
	return table
}

func TestOptimize(t *testing.T) {
	prices := trendingTable(t, 60)

	uniform, err := ValueAllocation(prices, Uniform(4), 1)
	require.NoError(t, err)
	baseline := ComputeStats(uniform, DefaultStatsOptions())

	alloc, stats, err := Optimize(prices, OptimizeOptions{Stats: DefaultStatsOptions()})
	require.NoError(t, err)

	require.Len(t, alloc, 4)
	assert.True(t, alloc.Valid(1e-9), "weights %v must be in [0,1] and sum to 1", alloc)
	assert.GreaterOrEqual(t, stats.SharpeRatio, baseline.SharpeRatio-1e-9)
	assert.Equal(t, 1.0, stats.StartValue)

	values, err := ValueAllocation(prices, alloc, 1)
	require.NoError(t, err)
	assert.InDelta(t, ComputeStats(values, DefaultStatsOptions()).SharpeRatio, stats.SharpeRatio, 1e-12)
}

func TestOptimize_SingleSymbol(t *testing.T) {
	prices, err := trendingTable(t, 20).Select("NOISY")
	require.NoError(t, err)

	alloc, _, err := Optimize(prices, OptimizeOptions{})
	require.NoError(t, err)
	assert.InDeltaSlice(t, Allocation{1}, alloc, 1e-12)
}

func TestOptimize_Errors(t *testing.T) {
	empty, err := NewPriceTable(nil, nil)
	require.NoError(t, err)
	_, _, err = Optimize(empty, OptimizeOptions{})
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, _, err = Optimize(trendingTable(t, 10), OptimizeOptions{Initial: Allocation{0.5, 0.5}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
