package families

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocopula/domain/copula"
	apperrors "gocopula/internal/errors"
)

// Exactly concordant pseudo-observations (U == V) drive every parametric
// likelihood toward its degenerate boundary. The fitters must refuse the
// boundary estimate instead of reporting it, leaving the deterministic family
// as the only one that fits.
func TestParametricFamiliesFailOnExactConcordance(t *testing.T) {
	obs := concordantObs(100)

	parametric := []copula.Family{
		copula.FamilyGaussian,
		copula.FamilyStudentT,
		copula.FamilyClayton,
		copula.FamilyGumbel,
		copula.FamilyFrank,
	}
	for _, family := range parametric {
		t.Run(family.String(), func(t *testing.T) {
			_, err := GetFitterByFamily(family).Fit(context.Background(), obs)
			require.Error(t, err, "boundary estimate must be a fit failure")
			assert.Equal(t, apperrors.CodeFitFailed, apperrors.GetCode(err))
		})
	}

	t.Run("comonotonic", func(t *testing.T) {
		fit, err := (&ComonotonicFitter{}).Fit(context.Background(), obs)
		require.NoError(t, err)
		assert.Equal(t, 0.0, fit.AIC)
	})
}
