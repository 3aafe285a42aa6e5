// Package testkit generates synthetic dependent samples with known copula
// structure for tests. Everything is seeded; two calls with the same seed
// produce identical samples.
package testkit

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// NewRand builds a PCG generator from one seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GaussianPairs draws n pairs from the Gaussian copula with correlation rho.
func GaussianPairs(rng *rand.Rand, n int, rho float64) (u, v []float64) {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	c := math.Sqrt(1 - rho*rho)

	u = make([]float64, n)
	v = make([]float64, n)
	for i := 0; i < n; i++ {
		z1 := norm.Rand()
		z2 := norm.Rand()
		u[i] = distuv.UnitNormal.CDF(z1)
		v[i] = distuv.UnitNormal.CDF(rho*z1 + c*z2)
	}
	return u, v
}

// StudentTPairs draws n pairs from the Student-t copula with correlation rho
// and nu degrees of freedom, via the normal variance-mixture representation.
func StudentTPairs(rng *rand.Rand, n int, rho, nu float64) (u, v []float64) {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	chi2 := distuv.ChiSquared{K: nu, Src: rng}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}
	c := math.Sqrt(1 - rho*rho)

	u = make([]float64, n)
	v = make([]float64, n)
	for i := 0; i < n; i++ {
		z1 := norm.Rand()
		z2 := norm.Rand()
		w := chi2.Rand()
		scale := math.Sqrt(nu / w)
		u[i] = tDist.CDF(z1 * scale)
		v[i] = tDist.CDF((rho*z1 + c*z2) * scale)
	}
	return u, v
}

// ClaytonPairs draws n pairs from the Clayton copula with parameter theta > 0,
// via the gamma frailty construction.
func ClaytonPairs(rng *rand.Rand, n int, theta float64) (u, v []float64) {
	gamma := distuv.Gamma{Alpha: 1 / theta, Beta: 1, Src: rng}
	expDist := distuv.Exponential{Rate: 1, Src: rng}

	u = make([]float64, n)
	v = make([]float64, n)
	for i := 0; i < n; i++ {
		w := gamma.Rand()
		u[i] = math.Pow(1+expDist.Rand()/w, -1/theta)
		v[i] = math.Pow(1+expDist.Rand()/w, -1/theta)
	}
	return u, v
}

// ConcordantScores returns raw score vectors that are identical, so rank
// transformation yields exactly concordant pseudo-observations (U == V).
func ConcordantScores(n int) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i + 1)
		y[i] = float64(i + 1)
	}
	return x, y
}

// LinearScores returns raw score pairs y = x + noise*eps with standard normal
// x and eps. noise = 0 gives perfect concordance up to ties.
func LinearScores(rng *rand.Rand, n int, noise float64) (x, y []float64) {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	x = make([]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = norm.Rand()
		y[i] = x[i] + noise*norm.Rand()
	}
	return x, y
}
