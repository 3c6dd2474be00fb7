package folio

import (
	"math"

	"github.com/etnz/folio/date"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the default sampling frequency of daily series.
const TradingDaysPerYear = 252.0

// StatsOptions parameterizes ComputeStats.
type StatsOptions struct {
	RiskFreeRate   float64 // per period, e.g. a daily rate for daily series
	PeriodsPerYear float64 // zero means TradingDaysPerYear
}

// DefaultStatsOptions returns a zero risk free rate and daily sampling.
func DefaultStatsOptions() StatsOptions {
	return StatsOptions{RiskFreeRate: 0, PeriodsPerYear: TradingDaysPerYear}
}

// Stats summarizes the risk and return of a value series.
type Stats struct {
	CumulativeReturn float64
	AvgDailyReturn   float64
	StdDailyReturn   float64 // sample standard deviation
	SharpeRatio      float64 // annualized
	StartDate        date.Date
	EndDate          date.Date
	StartValue       float64
	EndValue         float64
}

// DailyReturns returns v[t]/v[t-1]-1 for every t >= 1.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	res := make([]float64, len(values)-1)
	for t := 1; t < len(values); t++ {
		res[t-1] = values[t]/values[t-1] - 1
	}
	return res
}

// ComputeStats computes the statistics of a value series.
//
// The Sharpe ratio is sqrt(PeriodsPerYear) * mean(r - RiskFreeRate) / std(r)
// where r are the daily returns and std is the per period sample standard
// deviation. It is NaN when returns have no variance or when there are
// fewer than two returns.
func ComputeStats(values Series, opts StatsOptions) Stats {
	nan := math.NaN()
	s := Stats{
		CumulativeReturn: nan,
		AvgDailyReturn:   nan,
		StdDailyReturn:   nan,
		SharpeRatio:      nan,
		StartValue:       values.First(),
		EndValue:         values.Last(),
	}
	if n := len(values.Dates); n > 0 {
		s.StartDate, s.EndDate = values.Dates[0], values.Dates[n-1]
	}
	if values.Len() == 0 {
		return s
	}
	s.CumulativeReturn = s.EndValue/s.StartValue - 1

	returns := DailyReturns(values.Values)
	if len(returns) == 0 {
		return s
	}
	s.AvgDailyReturn = stat.Mean(returns, nil)
	if len(returns) < 2 {
		return s
	}
	s.StdDailyReturn = stat.StdDev(returns, nil)

	periods := opts.PeriodsPerYear
	if periods == 0 {
		periods = TradingDaysPerYear
	}
	if s.StdDailyReturn != 0 {
		// mean(r - rf) == mean(r) - rf
		s.SharpeRatio = math.Sqrt(periods) * (s.AvgDailyReturn - opts.RiskFreeRate) / s.StdDailyReturn
	}
	return s
}
