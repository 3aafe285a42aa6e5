// Package gof assesses absolute fit of a fitted copula against the empirical
// copula of the pseudo-observations, using a Cramer-von Mises discrepancy
// calibrated by parametric bootstrap.
package gof

import (
	"context"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gocopula/domain/copula"
	"gocopula/internal"
	"gocopula/internal/pseudo"
	"gocopula/ports"
)

// Config controls the goodness-of-fit procedure.
type Config struct {
	// Bootstrap is the parametric-bootstrap replicate count B. Zero means no
	// resampling: the observed statistic is reported alone, with the method
	// label recording the no-resampling mode.
	Bootstrap int
	// MinSuccesses is the smallest number of successful bootstrap refits
	// required to report a p-value (default 20).
	MinSuccesses int
	// SimCDFSample is the simulated-sample size used to approximate the
	// copula CDF for families without a tractable one (Student-t with a
	// continuous degrees-of-freedom estimate). Default 2000.
	SimCDFSample int
	// Workers bounds the bootstrap worker pool (default GOMAXPROCS).
	Workers int
}

// Tester runs the Cramer-von Mises goodness-of-fit procedure.
type Tester struct {
	config Config
	logger *internal.Logger
}

// NewTester creates a tester, applying defaults for zero-valued settings.
func NewTester(config Config) *Tester {
	if config.MinSuccesses == 0 {
		config.MinSuccesses = 20
	}
	if config.SimCDFSample == 0 {
		config.SimCDFSample = 2000
	}
	if config.Workers == 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	return &Tester{
		config: config,
		logger: internal.DefaultLogger.Component("GoF"),
	}
}

// Test assesses one fitted family against the observed pseudo-observations.
// It never returns an error: every failure mode is encoded as an NA-valued
// GoFResult whose method label states what went wrong, so callers can emit
// partial result rows instead of dropping the condition.
func (t *Tester) Test(ctx context.Context, fitter ports.FamilyFitter, fit copula.Fit, obs copula.PseudoObservations, rng *rand.Rand) copula.GoFResult {
	// The deterministic family has no parameters to perturb; only the
	// observed discrepancy against min(u,v) is meaningful. A p-value here
	// would be fabricated, so it stays NA unconditionally.
	if fit.Method == copula.FitMethodDeterministic {
		cdfer := fitter.(ports.CDFer)
		stat := cvmStatistic(obs, func(u, v float64) float64 { return cdfer.CDF(fit, u, v) })
		return copula.GoFResult{
			Family:    fit.Family,
			Statistic: copula.NullableFloat(stat),
			PValue:    copula.NAF(),
			Method:    copula.GoFMethodObservedOnly,
		}
	}

	modelCDF, method, ok := t.modelCDF(fitter, fit, rng)
	if !ok {
		// No tractable CDF and no simulator: refuse rather than silently
		// substituting a procedure that assumes fixed integer parameters.
		return failure(fit.Family, "cvm:unsupported(no-cdf-no-simulator)")
	}

	observed := cvmStatistic(obs, modelCDF)

	if t.config.Bootstrap == 0 {
		return copula.GoFResult{
			Family:    fit.Family,
			Statistic: copula.NullableFloat(observed),
			PValue:    copula.NAF(),
			Method:    copula.GoFMethodAsymptotic,
		}
	}

	exceed, successes := t.bootstrap(ctx, fitter, fit, obs.Len(), observed, rng)
	if successes < t.config.MinSuccesses {
		t.logger.Warn("family %s: only %d/%d bootstrap refits succeeded", fit.Family, successes, t.config.Bootstrap)
		return failure(fit.Family, method+":failed(insufficient-bootstrap-successes)")
	}

	return copula.GoFResult{
		Family:    fit.Family,
		Statistic: copula.NullableFloat(observed),
		PValue:    copula.NullableFloat(float64(1+exceed) / float64(successes+1)),
		Method:    method,
		Bootstrap: successes,
	}
}

// modelCDF resolves how C_theta-hat is evaluated for this family: the closed
// or quadrature form when the fitter exposes one, otherwise the empirical
// copula of a large sample simulated at the fitted (continuous) parameters.
func (t *Tester) modelCDF(fitter ports.FamilyFitter, fit copula.Fit, rng *rand.Rand) (func(u, v float64) float64, string, bool) {
	if cdfer, ok := fitter.(ports.CDFer); ok {
		return func(u, v float64) float64 { return cdfer.CDF(fit, u, v) }, copula.GoFMethodParametricBootstrap, true
	}
	sim, ok := fitter.(ports.Simulator)
	if !ok {
		return nil, "", false
	}
	su, sv, err := sim.Simulate(rng, fit, t.config.SimCDFSample)
	if err != nil {
		return nil, "", false
	}
	ec := newEmpiricalCopula(su, sv)
	return ec.At, copula.GoFMethodStudentT, true
}

// bootstrap runs B simulate/re-rank/refit/re-score iterations on a bounded
// worker pool. Iterations are independent; a failed draw is discarded and
// never aborts the rest.
func (t *Tester) bootstrap(ctx context.Context, fitter ports.FamilyFitter, fit copula.Fit, n int, observed float64, rng *rand.Rand) (exceed, successes int) {
	sim, ok := fitter.(ports.Simulator)
	if !ok {
		return 0, 0
	}

	// Per-iteration seeds are drawn up front from the condition stream so the
	// result does not depend on worker scheduling.
	type seed struct{ hi, lo uint64 }
	seeds := make([]seed, t.config.Bootstrap)
	for b := range seeds {
		seeds[b] = seed{rng.Uint64(), rng.Uint64()}
	}

	results := make([]float64, t.config.Bootstrap)
	okFlags := make([]bool, t.config.Bootstrap)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.Workers)
	for b := 0; b < t.config.Bootstrap; b++ {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil // condition abandoned; drop remaining draws
			}
			iterRNG := rand.New(rand.NewPCG(seeds[b].hi, seeds[b].lo))
			stat, err := t.bootstrapIteration(gctx, fitter, sim, fit, n, iterRNG)
			if err != nil {
				return nil // discard failed draw, keep going
			}
			results[b] = stat
			okFlags[b] = true
			return nil
		})
	}
	_ = g.Wait()

	for b := range results {
		if !okFlags[b] {
			continue
		}
		successes++
		if results[b] >= observed {
			exceed++
		}
	}
	return exceed, successes
}

// bootstrapIteration simulates one sample from the fitted copula, re-ranks it
// the same way the original data was pseudo-observed, refits the family, and
// recomputes the statistic under the refitted model.
func (t *Tester) bootstrapIteration(ctx context.Context, fitter ports.FamilyFitter, sim ports.Simulator, fit copula.Fit, n int, rng *rand.Rand) (float64, error) {
	su, sv, err := sim.Simulate(rng, fit, n)
	if err != nil {
		return 0, err
	}
	// Simulated samples are pseudo-observed the same way the original data
	// was: re-ranked, preserving pairing. Simulated draws are almost surely
	// tie-free, but the seeded tie-break still runs for reproducibility.
	reRanked := pseudo.RankPair(su, sv, rng)

	refit, err := fitter.Fit(ctx, reRanked)
	if err != nil {
		return 0, err
	}

	modelCDF, _, ok := t.modelCDF(fitter, refit, rng)
	if !ok {
		return 0, errNoModelCDF
	}
	return cvmStatistic(reRanked, modelCDF), nil
}

// failure builds the NA-valued result for a procedure that could not run.
func failure(family copula.Family, method string) copula.GoFResult {
	return copula.GoFResult{
		Family:    family,
		Statistic: copula.NAF(),
		PValue:    copula.NAF(),
		Method:    method,
	}
}
