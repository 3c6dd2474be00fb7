package folio

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/optimize"
)

// OptimizeOptions parameterizes Optimize.
type OptimizeOptions struct {
	Initial        Allocation // starting point, Uniform when nil
	Stats          StatsOptions
	MaxIterations  int // zero means 1000
	MaxEvaluations int // zero means 20000
}

// penalty replaces an undefined objective, so that the solver moves away from it.
const penalty = 1e9

// Optimize searches the allocation that maximizes the Sharpe ratio of the
// buy-and-hold portfolio over prices.
//
// Weights are kept in [0,1] and summing to 1 by searching an unconstrained
// space and projecting every candidate onto the probability simplex. The
// solver is a local Nelder-Mead search: the best point it reaches is
// returned even if it did not converge. Stats are computed at the returned
// allocation with a start value of 1.
func Optimize(prices *PriceTable, opts OptimizeOptions) (Allocation, Stats, error) {
	n := len(prices.symbols)
	if n == 0 || prices.Len() == 0 {
		return nil, Stats{}, ErrEmptyTable
	}
	initial := opts.Initial
	if initial == nil {
		initial = Uniform(n)
	}
	if len(initial) != n {
		return nil, Stats{}, fmt.Errorf("%d initial weights for %d symbols: %w", len(initial), n, ErrShapeMismatch)
	}

	sharpe := func(x []float64) float64 {
		values, err := ValueAllocation(prices, ProjectSimplex(x), 1.0)
		if err != nil {
			return math.NaN()
		}
		return ComputeStats(values, opts.Stats).SharpeRatio
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			sr := sharpe(x)
			if math.IsNaN(sr) || math.IsInf(sr, 0) {
				return penalty
			}
			return -sr
		},
	}
	settings := &optimize.Settings{
		MajorIterations: cmp.Or(opts.MaxIterations, 1000),
		FuncEvaluations: cmp.Or(opts.MaxEvaluations, 20000),
	}

	x0 := ProjectSimplex(initial)
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if result == nil {
		return nil, Stats{}, fmt.Errorf("optimization failed: %w", err)
	}
	if err != nil || (result.Status != optimize.MethodConverge && result.Status != optimize.FunctionConvergence) {
		log.Warn().Err(err).Stringer("status", result.Status).Int("evaluations", result.FuncEvaluations).Msg("optimizer did not converge, keeping its best point")
	}

	alloc := ProjectSimplex(result.X)
	values, err := ValueAllocation(prices, alloc, 1.0)
	if err != nil {
		return nil, Stats{}, err
	}
	return alloc, ComputeStats(values, opts.Stats), nil
}

// ProjectSimplex returns the Euclidean projection of x onto the probability
// simplex: the closest vector whose components are in [0,1] and sum to 1.
func ProjectSimplex(x []float64) Allocation {
	u := slices.Clone(x)
	slices.SortFunc(u, func(a, b float64) int { return cmp.Compare(b, a) })

	var cum, theta float64
	for j, v := range u {
		cum += v
		if t := (cum - 1) / float64(j+1); v-t > 0 {
			theta = t
		}
	}

	w := make(Allocation, len(x))
	for i, v := range x {
		w[i] = math.Max(v-theta, 0)
	}
	return w
}
