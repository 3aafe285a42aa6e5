package ports

import (
	"context"
)

// PairReader is the input contract from the data-loading collaborator: two
// numeric vectors of equal length representing paired prior/current scores
// for one analysis condition, with missing values already removed upstream.
type PairReader interface {
	ReadPairs(ctx context.Context) (prior, current []float64, err error)
}
