package families

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"gocopula/domain/copula"
	apperrors "gocopula/internal/errors"
)

// ClaytonFitter estimates the Clayton copula (theta > 0) by maximum
// pseudo-likelihood. Clayton concentrates dependence in the lower tail.
type ClaytonFitter struct{}

// Family returns the variant tag
func (c *ClaytonFitter) Family() copula.Family {
	return copula.FamilyClayton
}

// Description returns a human-readable summary of the estimation rule
func (c *ClaytonFitter) Description() string {
	return "Clayton copula, theta>0 by maximum pseudo-likelihood; lower tail dependence only"
}

// Fit estimates theta and derives the fit record
func (c *ClaytonFitter) Fit(ctx context.Context, obs copula.PseudoObservations) (copula.Fit, error) {
	n := obs.Len()

	negLL := func(p []float64) float64 {
		theta := math.Exp(p[0])
		if theta > maxTheta {
			return likPenalty
		}
		ll := claytonLogLik(obs.U, obs.V, theta)
		if math.IsNaN(ll) || math.IsInf(ll, 0) {
			return likPenalty
		}
		return -ll
	}

	tau := kendallWarmStart(obs.U, obs.V)
	theta0 := 2 * tau / (1 - tau)
	if theta0 < 0.05 {
		theta0 = 0.05 // Clayton cannot express negative dependence
	}
	p, logLik, err := maximizePseudoLikelihood(negLL, []float64{math.Log(theta0)})
	if err != nil {
		return copula.Fit{}, apperrors.FitFailed(string(c.Family()), err)
	}

	theta := math.Exp(p[0])
	if theta >= maxTheta {
		return copula.Fit{}, apperrors.FitFailed(string(c.Family()), errBoundaryEstimate)
	}

	fit := copula.NewFit(c.Family(), copula.FitMethodMLE,
		map[string]float64{copula.ParamTheta: theta}, logLik, n)
	fit.Tau = theta / (theta + 2)
	fit.LowerTail = copula.NullableFloat(math.Pow(2, -1/theta))
	// Upper tail stays NA: Clayton has none.
	return fit, nil
}

// claytonLogLik sums the Clayton copula log-density
// log c = log(1+theta) - (1+theta)(log u + log v) - (2 + 1/theta) log(u^-theta + v^-theta - 1).
func claytonLogLik(u, v []float64, theta float64) float64 {
	if theta <= 0 {
		return math.Inf(-1)
	}
	ll := 0.0
	for i := range u {
		lu, lv := math.Log(u[i]), math.Log(v[i])
		s := math.Exp(-theta*lu) + math.Exp(-theta*lv) - 1
		if s <= 0 {
			return math.Inf(-1)
		}
		ll += math.Log(1+theta) - (1+theta)*(lu+lv) - (2+1/theta)*math.Log(s)
	}
	return ll
}

// Simulate draws n pairs via the Marshall-Olkin gamma-frailty representation.
func (c *ClaytonFitter) Simulate(rng *rand.Rand, fit copula.Fit, n int) ([]float64, []float64, error) {
	theta := fit.Theta()
	if copula.IsNA(theta) || theta <= 0 {
		return nil, nil, errors.New("clayton simulate: fit carries no positive theta")
	}

	gamma := distuv.Gamma{Alpha: 1 / theta, Beta: 1, Src: rng}
	exp := distuv.Exponential{Rate: 1, Src: rng}

	u := make([]float64, n)
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		w := gamma.Rand()
		if w <= 0 {
			w = math.SmallestNonzeroFloat64
		}
		u[i] = math.Pow(1+exp.Rand()/w, -1/theta)
		v[i] = math.Pow(1+exp.Rand()/w, -1/theta)
	}
	return u, v, nil
}

// CDF evaluates C(u,v) = (u^-theta + v^-theta - 1)^(-1/theta).
func (c *ClaytonFitter) CDF(fit copula.Fit, u, v float64) float64 {
	theta := fit.Theta()
	s := math.Pow(u, -theta) + math.Pow(v, -theta) - 1
	if s <= 0 {
		return 0
	}
	return math.Pow(s, -1/theta)
}
