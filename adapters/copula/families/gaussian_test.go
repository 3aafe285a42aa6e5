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

func TestGaussianFitRecoversRho(t *testing.T) {
	rng := testkit.NewRand(101)
	u, v := testkit.GaussianPairs(rng, 1500, 0.6)
	obs := pseudo.RankPair(u, v, testkit.NewRand(102))

	fit, err := (&GaussianFitter{}).Fit(context.Background(), obs)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, fit.Rho(), 0.05)
	assert.Equal(t, copula.FitMethodMLE, fit.Method)
	assert.Equal(t, 1, fit.NumParams)
	assert.True(t, fit.LowerTail.IsNA(), "gaussian has no tail dependence")
	assert.True(t, fit.UpperTail.IsNA())
}

func TestGaussianTauRelation(t *testing.T) {
	rng := testkit.NewRand(103)
	u, v := testkit.GaussianPairs(rng, 800, 0.5)
	obs := pseudo.RankPair(u, v, testkit.NewRand(104))

	fit, err := (&GaussianFitter{}).Fit(context.Background(), obs)
	require.NoError(t, err)

	// tau = (2/pi) asin(rho) must hold exactly for the fitted rho.
	assert.InDelta(t, 2/math.Pi*math.Asin(fit.Rho()), fit.Tau, 1e-12)
}

func TestGaussianNegativeDependence(t *testing.T) {
	rng := testkit.NewRand(105)
	u, v := testkit.GaussianPairs(rng, 1000, -0.4)
	obs := pseudo.RankPair(u, v, testkit.NewRand(106))

	fit, err := (&GaussianFitter{}).Fit(context.Background(), obs)
	require.NoError(t, err)
	assert.InDelta(t, -0.4, fit.Rho(), 0.07)
	assert.Less(t, fit.Tau, 0.0)
}

func TestBivariateNormalCDF(t *testing.T) {
	t.Run("independence at rho zero", func(t *testing.T) {
		got := bivariateNormalCDF(0.5, -0.3, 0)
		want := 0.6914624612740131 * 0.38208857781104744 // Phi(0.5)*Phi(-0.3)
		assert.InDelta(t, want, got, 1e-9)
	})

	t.Run("median point identity", func(t *testing.T) {
		// Phi2(0,0;rho) = 1/4 + asin(rho)/(2*pi), exact for all rho.
		for _, rho := range []float64{-0.9, -0.5, 0.3, 0.7, 0.95} {
			want := 0.25 + math.Asin(rho)/(2*math.Pi)
			assert.InDelta(t, want, bivariateNormalCDF(0, 0, rho), 1e-8, "rho=%g", rho)
		}
	})

	t.Run("bounded in [0,1]", func(t *testing.T) {
		for _, rho := range []float64{-0.99, 0, 0.99} {
			for _, h := range []float64{-3, 0, 3} {
				p := bivariateNormalCDF(h, 2.5, rho)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
			}
		}
	})
}

func TestGaussianSimulateRoundTrip(t *testing.T) {
	fitter := &GaussianFitter{}
	fit := copula.NewFit(copula.FamilyGaussian, copula.FitMethodMLE,
		map[string]float64{copula.ParamRho: 0.7}, 0, 1000)

	u, v, err := fitter.Simulate(testkit.NewRand(107), fit, 1200)
	require.NoError(t, err)

	refit, err := fitter.Fit(context.Background(), pseudo.RankPair(u, v, testkit.NewRand(108)))
	require.NoError(t, err)
	assert.InDelta(t, 0.7, refit.Rho(), 0.05)
}

func TestGaussianSimulateRequiresRho(t *testing.T) {
	_, _, err := (&GaussianFitter{}).Simulate(testkit.NewRand(1), copula.Fit{}, 10)
	assert.Error(t, err)
}
