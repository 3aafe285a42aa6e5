package families

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// likPenalty is returned by negative-log-likelihood objectives for parameter
// values where the density is undefined or overflows. Large but finite so
// Nelder-Mead can still contract away from bad regions.
const likPenalty = 1e12

// degenerate parameter bounds: estimates landing past these are treated as
// optimizer divergence toward a boundary (perfectly dependent data) and
// reported as a fit failure rather than a usable estimate.
const (
	maxAbsRho   = 0.999
	maxAbsTau   = 0.999
	maxTheta    = 100.0
	maxAbsFrank = 100.0
)

// maximizePseudoLikelihood runs Nelder-Mead on a negative pseudo-log-likelihood
// over an unconstrained parameterization. Returns the maximizing point and the
// achieved log-likelihood.
func maximizePseudoLikelihood(negLL func(x []float64) float64, x0 []float64) ([]float64, float64, error) {
	problem := optimize.Problem{Func: negLL}

	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, err
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) || result.F >= likPenalty/2 {
		return nil, 0, errDegenerateLikelihood
	}
	return result.X, -result.F, nil
}

// kendallWarmStart estimates Kendall's tau on the pseudo-observations for use
// as an optimizer starting point.
func kendallWarmStart(u, v []float64) float64 {
	tau := stat.Kendall(u, v, nil)
	if math.IsNaN(tau) {
		return 0
	}
	return tau
}

// rhoFromTau inverts the elliptical tau relation rho = sin(pi*tau/2) for a
// warm start, clamped inside the working correlation bounds.
func rhoFromTau(tau float64) float64 {
	rho := math.Sin(math.Pi * tau / 2)
	return clamp(rho, -0.99, 0.99)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// atanh with clamping; the inverse of the tanh correlation reparameterization.
func atanhClamped(rho float64) float64 {
	return math.Atanh(clamp(rho, -0.99, 0.99))
}
