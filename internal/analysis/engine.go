// Package analysis orchestrates the per-condition pipeline: pseudo-observe,
// fit every requested family, select the AIC-best one, and optionally attach
// goodness-of-fit and stability diagnostics.
package analysis

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gocopula/adapters/copula/families"
	"gocopula/domain/copula"
	"gocopula/domain/core"
	"gocopula/internal"
	apperrors "gocopula/internal/errors"
	"gocopula/internal/gof"
	"gocopula/internal/pseudo"
	"gocopula/internal/stability"
	"gocopula/ports"
)

// RNG stream stage names. One stream per (condition, stage) keeps every
// condition reproducible independent of concurrent siblings.
const (
	stageTieBreak  = "tie-break"
	stageGoF       = "gof"
	stageStability = "stability"
)

// EngineConfig is the configuration surface consumed by this core. It is
// supplied by the caller; the engine owns none of it.
type EngineConfig struct {
	// Families to attempt, in order. Order doubles as the AIC tie-break.
	Families []copula.Family
	// BaseSeed anchors every per-condition RNG stream.
	BaseSeed int64
	// Mode selects rank vs. smoothed pseudo-observations.
	Mode pseudo.Mode
	// MarginalX/MarginalY are required for the smoothed mode only.
	MarginalX ports.MarginalCDF
	MarginalY ports.MarginalCDF
	// Epsilon is the boundary clamp guard for the smoothed mode.
	Epsilon float64

	// GoFBootstrap is B for goodness-of-fit; 0 means no resampling. A nil
	// RunGoF skips the tester entirely.
	RunGoF       bool
	GoFBootstrap int

	// RunStability enables the bootstrap stability estimator for
	// StabilityFamily (empty = the AIC-best family of the condition).
	RunStability        bool
	StabilityFamily     copula.Family
	StabilityReplicates int

	// BootstrapMinSuccesses floors both bootstrap procedures; StableCV and
	// MarginalCV are the stability grading cutoffs in percent. Zero values
	// take the procedure defaults.
	BootstrapMinSuccesses int
	StableCV              float64
	MarginalCV            float64

	// Workers bounds the family fan-out and is passed through to the
	// bootstrap pools (default GOMAXPROCS).
	Workers int
}

// Engine runs the full analysis for one condition at a time. It is stateless
// across conditions and safe for concurrent use.
type Engine struct {
	config    EngineConfig
	rngPort   ports.RNGPort
	transform *pseudo.Transform
	tester    *gof.Tester
	estimator *stability.Estimator
	logger    *internal.Logger
}

// NewEngine wires an engine from configuration and the RNG port.
func NewEngine(config EngineConfig, rngPort ports.RNGPort) (*Engine, error) {
	if len(config.Families) == 0 {
		config.Families = copula.AllFamilies()
	}
	if config.Workers == 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}

	var transform *pseudo.Transform
	switch config.Mode {
	case pseudo.ModeSmoothed:
		if config.MarginalX == nil || config.MarginalY == nil {
			return nil, apperrors.ConfigInvalid("smoothed mode requires both marginal CDFs")
		}
		transform = pseudo.NewSmoothedTransform(config.MarginalX, config.MarginalY, config.Epsilon)
	default:
		transform = pseudo.NewRankTransform()
	}

	return &Engine{
		config:    config,
		rngPort:   rngPort,
		transform: transform,
		tester: gof.NewTester(gof.Config{
			Bootstrap:    config.GoFBootstrap,
			MinSuccesses: config.BootstrapMinSuccesses,
			Workers:      config.Workers,
		}),
		estimator: stability.NewEstimator(stability.Config{
			Replicates:   config.StabilityReplicates,
			MinSuccesses: config.BootstrapMinSuccesses,
			StableCV:     config.StableCV,
			MarginalCV:   config.MarginalCV,
			Workers:      config.Workers,
		}),
		logger:    internal.DefaultLogger.Component("Engine"),
	}, nil
}

// AnalyzeCondition runs the whole pipeline on one condition's paired raw
// scores and returns its report. Fatal errors (invalid input, all fits
// failed) carry the condition ID so batch callers can skip just this
// condition; everything else degrades to warnings inside the report.
func (e *Engine) AnalyzeCondition(ctx context.Context, conditionID core.ConditionID, prior, current []float64) (*copula.ConditionReport, error) {
	tieRNG, err := e.rngPort.Stream(ctx, conditionID.String(), stageTieBreak, e.config.BaseSeed)
	if err != nil {
		return nil, apperrors.Wrapf(err, "condition %s: rng stream", conditionID)
	}

	obs, err := e.transform.Apply(prior, current, tieRNG)
	if err != nil {
		return nil, apperrors.Wrapf(err, "condition %s: pseudo-observation transform", conditionID)
	}
	return e.AnalyzeObservations(ctx, conditionID, obs)
}

// AnalyzeObservations runs fitting, selection and diagnostics on
// already-transformed pseudo-observations.
func (e *Engine) AnalyzeObservations(ctx context.Context, conditionID core.ConditionID, obs copula.PseudoObservations) (*copula.ConditionReport, error) {
	if err := obs.Validate(); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput,
			apperrors.Wrapf(err, "condition %s", conditionID))
	}

	fits, warnings := e.fitAll(ctx, obs)
	if len(fits) == 0 {
		return nil, apperrors.AllFitsFailed(conditionID.String())
	}

	best, err := SelectBest(fits)
	if err != nil {
		return nil, err
	}

	report := &copula.ConditionReport{
		ConditionID: conditionID,
		N:           obs.Len(),
		Fits:        fits,
		Best:        best,
		Warnings:    warnings,
		CreatedAt:   core.Now(),
	}

	if e.config.RunGoF {
		report.GoF = e.testAll(ctx, conditionID, fits, obs)
	}

	if e.config.RunStability {
		target := e.config.StabilityFamily
		if target == "" {
			target = best
		}
		result, err := e.runStability(ctx, conditionID, target, obs)
		if err != nil {
			// Stability failure is never fatal for the condition.
			e.logger.Warn("condition %s: stability estimation failed: %v", conditionID, err)
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("stability estimation for %s failed: %v", target, err))
		} else {
			report.Stability = result
		}
	}

	e.logger.Info("condition %s: %d/%d families fitted, best=%s",
		conditionID, len(fits), len(e.config.Families), best)
	return report, nil
}

// fitAll fits every requested family concurrently, collecting successes in
// request order. One family's failure never aborts the others.
func (e *Engine) fitAll(ctx context.Context, obs copula.PseudoObservations) ([]copula.Fit, []string) {
	type slot struct {
		fit copula.Fit
		err error
	}
	slots := make([]slot, len(e.config.Families))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for i, family := range e.config.Families {
		g.Go(func() error {
			fitter := families.GetFitterByFamily(family)
			if fitter == nil {
				slots[i].err = fmt.Errorf("unknown copula family %q", family)
				return nil
			}
			fit, err := fitter.Fit(gctx, obs)
			slots[i] = slot{fit: fit, err: err}
			return nil
		})
	}
	_ = g.Wait()

	fits := make([]copula.Fit, 0, len(slots))
	var warnings []string
	for i, s := range slots {
		if s.err != nil {
			e.logger.Warn("family %s dropped: %v", e.config.Families[i], s.err)
			warnings = append(warnings, fmt.Sprintf("family %s dropped: %v", e.config.Families[i], s.err))
			continue
		}
		fits = append(fits, s.fit)
	}
	return fits, warnings
}

// testAll runs goodness-of-fit for every fitted family, each on its own
// deterministic RNG stream.
func (e *Engine) testAll(ctx context.Context, conditionID core.ConditionID, fits []copula.Fit, obs copula.PseudoObservations) []copula.GoFResult {
	results := make([]copula.GoFResult, len(fits))
	for i, fit := range fits {
		rng, err := e.rngPort.Stream(ctx, conditionID.String(), stageGoF+":"+fit.Family.String(), e.config.BaseSeed)
		if err != nil {
			results[i] = copula.GoFResult{
				Family:    fit.Family,
				Statistic: copula.NAF(),
				PValue:    copula.NAF(),
				Method:    "cvm:failed(rng-stream): " + err.Error(),
			}
			continue
		}
		results[i] = e.tester.Test(ctx, families.GetFitterByFamily(fit.Family), fit, obs, rng)
	}
	return results
}

// runStability executes the bootstrap stability estimator for one family.
func (e *Engine) runStability(ctx context.Context, conditionID core.ConditionID, family copula.Family, obs copula.PseudoObservations) (*copula.StabilityResult, error) {
	fitter := families.GetFitterByFamily(family)
	if fitter == nil {
		return nil, apperrors.New(apperrors.CodeStabilityFailed,
			fmt.Sprintf("unknown stability target family %q", family))
	}
	rng, err := e.rngPort.Stream(ctx, conditionID.String(), stageStability, e.config.BaseSeed)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeStabilityFailed, err)
	}
	return e.estimator.Estimate(ctx, fitter, obs, rng)
}
