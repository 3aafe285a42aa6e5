package ports

import (
	"context"
	"math/rand/v2"

	"gocopula/domain/copula"
)

// FamilyFitter is the contract every copula family must satisfy. Fitters are
// stateless; all inputs arrive through arguments and all results leave as
// immutable copula.Fit records, so one fitter instance can serve concurrent
// conditions and bootstrap iterations.
type FamilyFitter interface {
	// Family returns the variant tag this fitter estimates.
	Family() copula.Family

	// Description returns a human-readable summary of the estimation rule.
	Description() string

	// Fit estimates the family's parameters from pseudo-observations and
	// derives the full fit record (log-likelihood, AIC/BIC, tau, tail
	// dependence). A non-nil error means this family is dropped from the
	// condition's result set; it never aborts sibling families.
	Fit(ctx context.Context, obs copula.PseudoObservations) (copula.Fit, error)
}

// Simulator is implemented by fitters whose family can generate samples from
// a fitted model. Required for parametric-bootstrap goodness-of-fit and used
// by the test kit for synthetic scenarios.
type Simulator interface {
	// Simulate draws n pairs from the fitted copula using the supplied RNG.
	Simulate(rng *rand.Rand, fit copula.Fit, n int) (u, v []float64, err error)
}

// CDFer is implemented by fitters whose family has a tractable copula CDF
// C_theta(u,v). The Student-t fitter deliberately does not implement it; its
// goodness-of-fit path approximates the CDF from simulation instead, which
// stays valid under a continuously estimated degrees-of-freedom.
type CDFer interface {
	// CDF evaluates the fitted copula's CDF at a point of the unit square.
	CDF(fit copula.Fit, u, v float64) float64
}
