package families

import (
	"context"
	"math"
	"math/rand/v2"

	"gocopula/domain/copula"
)

// ComonotonicFitter handles the degenerate perfect-positive-dependence copula
// C(u,v) = min(u,v). Nothing is estimated: the fit is evaluated from the mean
// squared deviation between U and V, carries zero parameters, and can never
// numerically fail. It exists to quantify how badly a deterministic-growth
// assumption fits real dependence structure.
type ComonotonicFitter struct{}

// Family returns the variant tag
func (c *ComonotonicFitter) Family() copula.Family {
	return copula.FamilyComonotonic
}

// Description returns a human-readable summary of the evaluation rule
func (c *ComonotonicFitter) Description() string {
	return "Comonotonic copula min(u,v), deterministic evaluation; tau and both tail coefficients are 1 by construction"
}

// Fit evaluates the pseudo-log-likelihood -n*mean((U-V)^2). Larger deviation
// from the diagonal means a more negative value; exact rank concordance
// (U == V) scores zero, the maximum.
func (c *ComonotonicFitter) Fit(ctx context.Context, obs copula.PseudoObservations) (copula.Fit, error) {
	n := obs.Len()

	msd := 0.0
	for i := range obs.U {
		d := obs.U[i] - obs.V[i]
		msd += d * d
	}
	msd /= float64(n)

	// Zero parameters, so AIC and BIC both reduce to -2*pseudo-loglik.
	fit := copula.NewFit(c.Family(), copula.FitMethodDeterministic, nil, -float64(n)*msd, n)
	fit.Tau = 1.0
	fit.LowerTail = copula.NullableFloat(1.0)
	fit.UpperTail = copula.NullableFloat(1.0)
	return fit, nil
}

// Simulate draws n pairs from the comonotonic copula: U = V exactly.
func (c *ComonotonicFitter) Simulate(rng *rand.Rand, fit copula.Fit, n int) ([]float64, []float64, error) {
	u := make([]float64, n)
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		u[i] = rng.Float64()
		v[i] = u[i]
	}
	return u, v, nil
}

// CDF evaluates the Frechet-Hoeffding upper bound C(u,v) = min(u,v).
func (c *ComonotonicFitter) CDF(fit copula.Fit, u, v float64) float64 {
	return math.Min(u, v)
}
