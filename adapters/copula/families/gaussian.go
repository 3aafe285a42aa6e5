package families

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"

	"gocopula/domain/copula"
	apperrors "gocopula/internal/errors"
)

var (
	errDegenerateLikelihood = errors.New("pseudo-likelihood not finite at optimum")
	errBoundaryEstimate     = errors.New("parameter estimate at degenerate boundary")
)

// GaussianFitter estimates the one-parameter Gaussian copula by maximum
// pseudo-likelihood over the Fisher-transformed correlation.
type GaussianFitter struct{}

// Family returns the variant tag
func (g *GaussianFitter) Family() copula.Family {
	return copula.FamilyGaussian
}

// Description returns a human-readable summary of the estimation rule
func (g *GaussianFitter) Description() string {
	return "Gaussian copula, correlation by maximum pseudo-likelihood; zero tail dependence"
}

// Fit estimates rho and derives the fit record
func (g *GaussianFitter) Fit(ctx context.Context, obs copula.PseudoObservations) (copula.Fit, error) {
	n := obs.Len()
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range obs.U {
		x[i] = distuv.UnitNormal.Quantile(obs.U[i])
		y[i] = distuv.UnitNormal.Quantile(obs.V[i])
	}

	negLL := func(p []float64) float64 {
		rho := math.Tanh(p[0])
		ll := gaussianLogLik(x, y, rho)
		if math.IsNaN(ll) || math.IsInf(ll, 0) {
			return likPenalty
		}
		return -ll
	}

	s0 := atanhClamped(rhoFromTau(kendallWarmStart(obs.U, obs.V)))
	p, logLik, err := maximizePseudoLikelihood(negLL, []float64{s0})
	if err != nil {
		return copula.Fit{}, apperrors.FitFailed(string(g.Family()), err)
	}

	rho := math.Tanh(p[0])
	if math.Abs(rho) > maxAbsRho {
		return copula.Fit{}, apperrors.FitFailed(string(g.Family()), errBoundaryEstimate)
	}

	fit := copula.NewFit(g.Family(), copula.FitMethodMLE,
		map[string]float64{copula.ParamRho: rho}, logLik, n)
	fit.Tau = 2 / math.Pi * math.Asin(rho)
	// Gaussian tail dependence is zero for |rho|<1; reported as NA per the
	// output contract (no joint extreme-event concentration to quantify).
	return fit, nil
}

// gaussianLogLik sums the Gaussian copula log-density over normal scores.
func gaussianLogLik(x, y []float64, rho float64) float64 {
	r2 := rho * rho
	if r2 >= 1 {
		return math.Inf(-1)
	}
	ll := 0.0
	for i := range x {
		ll += -0.5*math.Log(1-r2) +
			(2*rho*x[i]*y[i]-r2*(x[i]*x[i]+y[i]*y[i]))/(2*(1-r2))
	}
	return ll
}

// Simulate draws n pairs from the fitted Gaussian copula.
func (g *GaussianFitter) Simulate(rng *rand.Rand, fit copula.Fit, n int) ([]float64, []float64, error) {
	rho := fit.Rho()
	if copula.IsNA(rho) {
		return nil, nil, errors.New("gaussian simulate: fit carries no correlation")
	}
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	c := math.Sqrt(1 - rho*rho)

	u := make([]float64, n)
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		z1 := norm.Rand()
		z2 := norm.Rand()
		u[i] = distuv.UnitNormal.CDF(z1)
		v[i] = distuv.UnitNormal.CDF(rho*z1 + c*z2)
	}
	return u, v, nil
}

// CDF evaluates the Gaussian copula CDF via the one-dimensional
// correlation-integral form of the bivariate normal CDF:
//
//	Phi2(h,k;rho) = Phi(h)*Phi(k) + (1/2pi) * Int_0^rho exp(-(h^2-2hkr+k^2)/(2(1-r^2))) / sqrt(1-r^2) dr
func (g *GaussianFitter) CDF(fit copula.Fit, u, v float64) float64 {
	rho := fit.Rho()
	h := distuv.UnitNormal.Quantile(u)
	k := distuv.UnitNormal.Quantile(v)
	return bivariateNormalCDF(h, k, rho)
}

// bivariateNormalCDF computes Phi2(h,k;rho) by Gauss-Legendre quadrature over
// the correlation parameter.
func bivariateNormalCDF(h, k, rho float64) float64 {
	base := distuv.UnitNormal.CDF(h) * distuv.UnitNormal.CDF(k)
	if rho == 0 {
		return base
	}

	integrand := func(r float64) float64 {
		d := 1 - r*r
		return math.Exp(-(h*h-2*r*h*k+k*k)/(2*d)) / math.Sqrt(d)
	}

	lo, hi := 0.0, rho
	sign := 1.0
	if rho < 0 {
		lo, hi = rho, 0
		sign = -1.0
	}
	integral := quad.Fixed(integrand, lo, hi, 48, nil, 0)

	p := base + sign*integral/(2*math.Pi)
	return clamp(p, 0, 1)
}
