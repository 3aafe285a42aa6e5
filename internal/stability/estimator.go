// Package stability quantifies how much a fitted family's Kendall's tau (and
// degrees-of-freedom, for Student-t) varies under resampling of the paired
// input data.
package stability

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"gocopula/domain/copula"
	"gocopula/internal"
	apperrors "gocopula/internal/errors"
	"gocopula/internal/pseudo"
	"gocopula/ports"
)

// Config controls the bootstrap stability procedure. The replicate count is a
// runtime/precision trade-off with no single correct value, so it is always
// caller-supplied configuration; the CV grading cutoffs likewise.
type Config struct {
	Replicates   int     // bootstrap resamples B (default 200)
	MinSuccesses int     // minimum successful refits to report dispersion (default 10)
	Workers      int     // worker pool bound (default GOMAXPROCS)
	StableCV     float64 // CV below this grades "stable" (default 5, percent)
	MarginalCV   float64 // CV below this grades "marginal" (default 10, percent)
}

// Estimator runs the resample-with-replacement stability procedure for one
// target family.
type Estimator struct {
	config Config
	logger *internal.Logger
}

// NewEstimator creates an estimator, applying defaults for zero-valued settings.
func NewEstimator(config Config) *Estimator {
	if config.Replicates == 0 {
		config.Replicates = 200
	}
	if config.MinSuccesses == 0 {
		config.MinSuccesses = 10
	}
	if config.Workers == 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.StableCV == 0 {
		config.StableCV = 5
	}
	if config.MarginalCV == 0 {
		config.MarginalCV = 10
	}
	return &Estimator{
		config: config,
		logger: internal.DefaultLogger.Component("Stability"),
	}
}

// Estimate fits the target family on the full data for the reference values,
// then refits it on B row-resamples and summarizes the dispersion of tau
// (and nu for Student-t). Failed refits are discarded; fewer than
// MinSuccesses successes is an explicit STABILITY_FAILED error, never a
// summary computed from too few samples.
func (e *Estimator) Estimate(ctx context.Context, fitter ports.FamilyFitter, obs copula.PseudoObservations, rng *rand.Rand) (*copula.StabilityResult, error) {
	reference, err := fitter.Fit(ctx, obs)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeStabilityFailed,
			apperrors.Wrapf(err, "reference fit failed for family %s", fitter.Family()))
	}

	taus, nus := e.resample(ctx, fitter, obs, rng)
	if len(taus) < e.config.MinSuccesses {
		e.logger.Warn("family %s: %d/%d bootstrap refits succeeded, below minimum %d",
			fitter.Family(), len(taus), e.config.Replicates, e.config.MinSuccesses)
		return nil, apperrors.New(apperrors.CodeStabilityFailed,
			"insufficient successful bootstrap refits to estimate stability")
	}

	result := &copula.StabilityResult{
		Family:     fitter.Family(),
		Replicates: e.config.Replicates,
		Successes:  len(taus),
		Tau:        e.summarize(reference.Tau, taus),
	}
	if fitter.Family() == copula.FamilyStudentT && len(nus) == len(taus) {
		nu := e.summarize(reference.Nu(), nus)
		result.Nu = &nu
	}
	return result, nil
}

// resample runs the B refits on a bounded worker pool. Row indices are
// resampled with replacement, preserving pairing; each resample is re-ranked
// before refitting because duplicated rows are ties.
func (e *Estimator) resample(ctx context.Context, fitter ports.FamilyFitter, obs copula.PseudoObservations, rng *rand.Rand) (taus, nus []float64) {
	n := obs.Len()

	// Per-iteration seeds come off the condition stream up front, so results
	// are reproducible regardless of worker interleaving.
	type seed struct{ hi, lo uint64 }
	seeds := make([]seed, e.config.Replicates)
	for b := range seeds {
		seeds[b] = seed{rng.Uint64(), rng.Uint64()}
	}

	tauByIter := make([]float64, e.config.Replicates)
	nuByIter := make([]float64, e.config.Replicates)
	okByIter := make([]bool, e.config.Replicates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for b := 0; b < e.config.Replicates; b++ {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil // condition abandoned; drop remaining draws
			}
			iterRNG := rand.New(rand.NewPCG(seeds[b].hi, seeds[b].lo))

			ru := make([]float64, n)
			rv := make([]float64, n)
			for i := 0; i < n; i++ {
				j := iterRNG.IntN(n)
				ru[i] = obs.U[j]
				rv[i] = obs.V[j]
			}

			refit, err := fitter.Fit(gctx, pseudo.RankPair(ru, rv, iterRNG))
			if err != nil {
				return nil // discard failed refit, keep going
			}
			tauByIter[b] = refit.Tau
			nuByIter[b] = refit.Nu()
			okByIter[b] = true
			return nil
		})
	}
	_ = g.Wait()

	for b := range okByIter {
		if !okByIter[b] {
			continue
		}
		taus = append(taus, tauByIter[b])
		if !copula.IsNA(nuByIter[b]) {
			nus = append(nus, nuByIter[b])
		}
	}
	return taus, nus
}

// summarize reduces one bootstrap distribution to the stability record.
func (e *Estimator) summarize(estimate float64, draws []float64) copula.ParamStability {
	mean, _ := stats.Mean(draws)
	sd, _ := stats.StandardDeviationSample(draws)
	iqr, _ := stats.InterQuartileRange(draws)

	// The 2.5th/97.5th percentiles need enough draws to resolve; montanaflynn
	// returns an out-of-bounds error below roughly 40 samples. The interval is
	// then NA rather than a NaN smuggled through a plain float.
	lower := copula.NAF()
	if v, err := stats.Percentile(draws, 2.5); err == nil {
		lower = copula.NullableFloat(v)
	}
	upper := copula.NAF()
	if v, err := stats.Percentile(draws, 97.5); err == nil {
		upper = copula.NullableFloat(v)
	}

	cv := copula.NAF()
	if estimate != 0 {
		cv = copula.NullableFloat(sd / math.Abs(estimate) * 100)
	}

	return copula.ParamStability{
		Estimate: estimate,
		BootMean: mean,
		SD:       sd,
		CV:       cv,
		IQR:      iqr,
		Lower:    lower,
		Upper:    upper,
		Grade:    e.grade(cv),
	}
}

// grade tiers a coefficient of variation against the configured cutoffs.
func (e *Estimator) grade(cv copula.NullableFloat) copula.StabilityGrade {
	switch {
	case cv.IsNA():
		return copula.GradeUnstable
	case cv.Float64() < e.config.StableCV:
		return copula.GradeStable
	case cv.Float64() < e.config.MarginalCV:
		return copula.GradeMarginal
	default:
		return copula.GradeUnstable
	}
}
