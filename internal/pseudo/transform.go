package pseudo

import (
	"math"
	"math/rand/v2"
	"sort"

	"gocopula/domain/copula"
	"gocopula/internal/errors"
	"gocopula/ports"
)

// Mode selects how raw scores become pseudo-observations.
type Mode string

const (
	// ModeRank maps each value to rank/(n+1) after a seeded random tie-break.
	// This is the mode used for family selection: it guarantees exactly
	// uniform empirical margins and introduces no smoothing distortion.
	ModeRank Mode = "rank"
	// ModeSmoothed evaluates externally supplied marginal CDF estimates and
	// clamps into [eps, 1-eps]. Only needed when downstream consumers require
	// an invertible marginal transform.
	ModeSmoothed Mode = "smoothed"
)

// DefaultEpsilon is the boundary guard for the smoothed mode.
const DefaultEpsilon = 1e-6

// Transform maps two raw score sequences onto the open unit square.
type Transform struct {
	mode      Mode
	eps       float64
	marginalX ports.MarginalCDF
	marginalY ports.MarginalCDF
}

// NewRankTransform creates the rank-based transform.
func NewRankTransform() *Transform {
	return &Transform{mode: ModeRank}
}

// NewSmoothedTransform creates the smoothed transform around two externally
// fitted marginal CDFs. eps <= 0 falls back to DefaultEpsilon.
func NewSmoothedTransform(marginalX, marginalY ports.MarginalCDF, eps float64) *Transform {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	return &Transform{mode: ModeSmoothed, eps: eps, marginalX: marginalX, marginalY: marginalY}
}

// Mode returns the transform mode.
func (t *Transform) Mode() Mode {
	return t.mode
}

// Apply converts paired raw scores into validated pseudo-observations.
// The rng drives the tie-break in rank mode; ties left unbroken would skew
// the uniform-margin guarantee and silently corrupt every downstream
// dependence estimate, so the tie-break is not optional.
func (t *Transform) Apply(x, y []float64, rng *rand.Rand) (copula.PseudoObservations, error) {
	if len(x) != len(y) {
		return copula.PseudoObservations{}, errors.InvalidInput(
			"paired score vectors have mismatched lengths")
	}
	if len(x) < copula.MinSampleSize {
		return copula.PseudoObservations{}, errors.InvalidInput(
			"too few paired scores for stable fitting")
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return copula.PseudoObservations{}, errors.InvalidInput(
				"paired scores contain non-finite values; missing data must be removed upstream")
		}
	}

	var obs copula.PseudoObservations
	switch t.mode {
	case ModeSmoothed:
		obs = copula.PseudoObservations{
			U: t.evaluateMarginal(t.marginalX, x),
			V: t.evaluateMarginal(t.marginalY, y),
		}
	default:
		obs = copula.PseudoObservations{
			U: Ranks(x, rng),
			V: Ranks(y, rng),
		}
	}

	if err := obs.Validate(); err != nil {
		return copula.PseudoObservations{}, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return obs, nil
}

// evaluateMarginal applies one marginal CDF with boundary clamping.
func (t *Transform) evaluateMarginal(cdf ports.MarginalCDF, data []float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		u := cdf.Evaluate(v)
		if u < t.eps {
			u = t.eps
		}
		if u > 1-t.eps {
			u = 1 - t.eps
		}
		out[i] = u
	}
	return out
}

// Ranks converts values to rank/(n+1) pseudo-observations. Ties are broken
// by a seeded random permutation so tied raw scores receive distinct ranks
// in reproducible order.
func Ranks(data []float64, rng *rand.Rand) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	// Random priority per index; among equal values the priority decides.
	priority := rng.Perm(n)

	type pair struct {
		value    float64
		priority int
		index    int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, priority: priority[i], index: i}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].value != pairs[j].value {
			return pairs[i].value < pairs[j].value
		}
		return pairs[i].priority < pairs[j].priority
	})

	ranks := make([]float64, n)
	for r, p := range pairs {
		ranks[p.index] = float64(r+1) / float64(n+1)
	}
	return ranks
}

// RankPair re-ranks an already paired sample, preserving pairing. Used by the
// bootstrap procedures, which must pseudo-observe every simulated or
// resampled dataset the same way the original data was.
func RankPair(u, v []float64, rng *rand.Rand) copula.PseudoObservations {
	return copula.PseudoObservations{
		U: Ranks(u, rng),
		V: Ranks(v, rng),
	}
}
