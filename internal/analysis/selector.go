package analysis

import (
	"gocopula/domain/copula"
	apperrors "gocopula/internal/errors"
)

// SelectBest returns the family with minimum AIC among the successful fits.
// Ties go to the family fitted first, i.e. the slice order, which the engine
// keeps aligned with the requested family list; no other tie-break exists.
func SelectBest(fits []copula.Fit) (copula.Family, error) {
	if len(fits) == 0 {
		return "", apperrors.New(apperrors.CodeEmptySelection,
			"cannot select best family from an empty fit set")
	}

	best := fits[0]
	for _, f := range fits[1:] {
		if f.AIC < best.AIC {
			best = f
		}
	}
	return best.Family, nil
}
