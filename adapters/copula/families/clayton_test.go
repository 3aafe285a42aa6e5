package families

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocopula/domain/copula"
	"gocopula/internal/pseudo"
	"gocopula/internal/testkit"
)

func TestClaytonFitRecoversTheta(t *testing.T) {
	rng := testkit.NewRand(301)
	u, v := testkit.ClaytonPairs(rng, 1500, 2.0)
	obs := pseudo.RankPair(u, v, testkit.NewRand(302))

	fit, err := (&ClaytonFitter{}).Fit(context.Background(), obs)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Theta(), 0.3)

	// Derived quantities follow the closed forms of the fitted theta.
	theta := fit.Theta()
	assert.InDelta(t, theta/(theta+2), fit.Tau, 1e-12)
	assert.InDelta(t, math.Pow(2, -1/theta), fit.LowerTail.Float64(), 1e-12)
	assert.True(t, fit.UpperTail.IsNA(), "clayton has no upper tail dependence")
}

func TestClaytonCDF(t *testing.T) {
	fitter := &ClaytonFitter{}
	fit := copula.NewFit(copula.FamilyClayton, copula.FitMethodMLE,
		map[string]float64{copula.ParamTheta: 2.0}, 0, 100)

	// Margin conditions: C(u,1) = u and C(1,v) = v.
	assert.InDelta(t, 0.4, fitter.CDF(fit, 0.4, 1), 1e-12)
	assert.InDelta(t, 0.7, fitter.CDF(fit, 1, 0.7), 1e-12)

	// Frechet bounds: max(u+v-1, 0) <= C(u,v) <= min(u,v).
	for _, uv := range [][2]float64{{0.2, 0.3}, {0.5, 0.5}, {0.9, 0.1}} {
		c := fitter.CDF(fit, uv[0], uv[1])
		assert.GreaterOrEqual(t, c, math.Max(uv[0]+uv[1]-1, 0)-1e-12)
		assert.LessOrEqual(t, c, math.Min(uv[0], uv[1])+1e-12)
	}
}

func TestClaytonSimulateRoundTrip(t *testing.T) {
	fitter := &ClaytonFitter{}
	fit := copula.NewFit(copula.FamilyClayton, copula.FitMethodMLE,
		map[string]float64{copula.ParamTheta: 1.5}, 0, 100)

	u, v, err := fitter.Simulate(testkit.NewRand(303), fit, 1500)
	require.NoError(t, err)

	refit, err := fitter.Fit(context.Background(), pseudo.RankPair(u, v, testkit.NewRand(304)))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, refit.Theta(), 0.3)
}

func TestClaytonSimulateRequiresTheta(t *testing.T) {
	_, _, err := (&ClaytonFitter{}).Simulate(testkit.NewRand(1), copula.Fit{}, 10)
	assert.Error(t, err)
}
