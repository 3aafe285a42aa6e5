package copula

import (
	"fmt"
	"math"

	"gocopula/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Family identifies one dependence-model family in the closed variant set.
type Family string

const (
	FamilyGaussian    Family = "gaussian"
	FamilyStudentT    Family = "student_t"
	FamilyClayton     Family = "clayton"
	FamilyGumbel      Family = "gumbel"
	FamilyFrank       Family = "frank"
	FamilyComonotonic Family = "comonotonic"
)

// AllFamilies lists every supported family in canonical fitting order.
// The order matters: AIC ties in model selection resolve to the family
// fitted first, which is this order unless the caller narrows the list.
func AllFamilies() []Family {
	return []Family{
		FamilyGaussian,
		FamilyStudentT,
		FamilyClayton,
		FamilyGumbel,
		FamilyFrank,
		FamilyComonotonic,
	}
}

// ParseFamily parses a string into a Family
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case FamilyGaussian, FamilyStudentT, FamilyClayton, FamilyGumbel, FamilyFrank, FamilyComonotonic:
		return Family(s), nil
	}
	return "", fmt.Errorf("unknown copula family %q", s)
}

// String returns the string representation
func (f Family) String() string {
	return string(f)
}

// FitMethod distinguishes estimated fits from the degenerate deterministic one.
type FitMethod string

const (
	// FitMethodMLE marks a fit whose parameters were estimated by maximum
	// pseudo-likelihood.
	FitMethodMLE FitMethod = "mle"
	// FitMethodDeterministic marks the Comonotonic fit, which is evaluated
	// rather than estimated and can never numerically fail.
	FitMethodDeterministic FitMethod = "deterministic"
)

// NA is the explicit not-available marker used for undefined tail-dependence
// coefficients and missing p-values. Adapters map it to SQL/JSON null.
func NA() float64 {
	return math.NaN()
}

// IsNA reports whether v is the not-available marker.
func IsNA(v float64) bool {
	return math.IsNaN(v)
}

// ============================================================================
// PSEUDO-OBSERVATIONS
// ============================================================================

// PseudoObservations holds paired values strictly inside the open unit square.
// INVARIANTS:
// - len(U) == len(V) == N
// - every value in (0,1), boundary values clamped away before construction
// - immutable after creation (fit, test and bootstrap code only reads it)
type PseudoObservations struct {
	U []float64 `json:"u"`
	V []float64 `json:"v"`
}

// MinSampleSize is the smallest pair count accepted for fitting. Below this
// the pseudo-likelihood surface is too unstable for any family.
const MinSampleSize = 30

// Len returns the number of pairs
func (p PseudoObservations) Len() int {
	return len(p.U)
}

// Validate checks the open-unit-square invariant. A violation here is fatal
// for the whole condition; it is never silently coerced.
func (p PseudoObservations) Validate() error {
	if len(p.U) != len(p.V) {
		return fmt.Errorf("mismatched lengths: %d vs %d", len(p.U), len(p.V))
	}
	if len(p.U) < MinSampleSize {
		return fmt.Errorf("need at least %d pairs, got %d", MinSampleSize, len(p.U))
	}
	for i := range p.U {
		if !(p.U[i] > 0 && p.U[i] < 1) || !(p.V[i] > 0 && p.V[i] < 1) {
			return fmt.Errorf("pseudo-observation outside (0,1) at row %d: (%g, %g)", i, p.U[i], p.V[i])
		}
	}
	return nil
}

// ============================================================================
// FIT RECORDS
// ============================================================================

// Parameter names used in Fit.Params.
const (
	ParamRho   = "rho"   // correlation (Gaussian, Student-t)
	ParamNu    = "nu"    // degrees of freedom, continuous (Student-t)
	ParamTheta = "theta" // Archimedean dependence parameter (Clayton, Gumbel, Frank)
)

// Fit is the result of fitting one family to one pseudo-observation pair.
// Immutable once produced by a fitter.
type Fit struct {
	Family    Family             `json:"family"`
	Method    FitMethod          `json:"method"`
	Params    map[string]float64 `json:"params,omitempty"` // empty for Comonotonic
	NumParams int                `json:"num_params"`       // k in AIC/BIC
	N         int                `json:"n"`

	LogLik float64 `json:"log_lik"` // pseudo-log-likelihood for Comonotonic
	AIC    float64 `json:"aic"`
	BIC    float64 `json:"bic"`

	Tau       float64       `json:"tau"`        // Kendall's tau implied by the fit
	LowerTail NullableFloat `json:"lower_tail"` // NA when the family has none
	UpperTail NullableFloat `json:"upper_tail"` // NA when the family has none

	// NuRounded is the integer copy of the continuous degrees-of-freedom
	// estimate, retained for consumers that require integer df. Zero for
	// every family except Student-t; the continuous Params[ParamNu] stays
	// authoritative for AIC/BIC and reporting.
	NuRounded int `json:"nu_rounded,omitempty"`
}

// NewFit assembles a Fit record, deriving AIC and BIC from the
// log-likelihood and parameter count so the identities
// AIC = -2*loglik + 2k and BIC = -2*loglik + ln(n)*k hold by construction.
func NewFit(family Family, method FitMethod, params map[string]float64, logLik float64, n int) Fit {
	k := len(params)
	return Fit{
		Family:    family,
		Method:    method,
		Params:    params,
		NumParams: k,
		N:         n,
		LogLik:    logLik,
		AIC:       -2*logLik + 2*float64(k),
		BIC:       -2*logLik + math.Log(float64(n))*float64(k),
		LowerTail: NAF(),
		UpperTail: NAF(),
	}
}

// Rho returns the correlation parameter, or NA for families without one.
func (f Fit) Rho() float64 {
	if v, ok := f.Params[ParamRho]; ok {
		return v
	}
	return NA()
}

// Nu returns the continuous degrees-of-freedom, or NA for non-t families.
func (f Fit) Nu() float64 {
	if v, ok := f.Params[ParamNu]; ok {
		return v
	}
	return NA()
}

// Theta returns the Archimedean parameter, or NA for non-Archimedean families.
func (f Fit) Theta() float64 {
	if v, ok := f.Params[ParamTheta]; ok {
		return v
	}
	return NA()
}

// ============================================================================
// GOODNESS-OF-FIT RECORDS
// ============================================================================

// GoFResult captures one goodness-of-fit assessment of one fitted family.
// Statistic and PValue use NA for "not computed"; Method always records how
// (or why not) the value was produced, so a consumer never has to guess
// which procedure a number came from.
type GoFResult struct {
	Family    Family        `json:"family"`
	Statistic NullableFloat `json:"statistic"` // NA on procedure failure
	PValue    NullableFloat `json:"p_value"`   // NA when no resampling was done or on failure
	Method    string        `json:"method"`
	Bootstrap int           `json:"bootstrap"` // replicates actually used (successes)
}

// GoF method labels. Failure paths append a diagnostic suffix.
const (
	GoFMethodParametricBootstrap = "cvm:parametric-bootstrap"
	GoFMethodAsymptotic          = "cvm:asymptotic(no-resampling)"
	GoFMethodStudentT            = "cvm:parametric-bootstrap:simulated-cdf:continuous-df"
	GoFMethodObservedOnly        = "cvm:observed-only(deterministic-family)"
)

// ============================================================================
// STABILITY RECORDS
// ============================================================================

// StabilityGrade tiers a coefficient of variation against configured cutoffs.
type StabilityGrade string

const (
	GradeStable   StabilityGrade = "stable"
	GradeMarginal StabilityGrade = "marginal"
	GradeUnstable StabilityGrade = "unstable"
)

// ParamStability summarizes the bootstrap distribution of one refitted
// statistic (tau, or nu for Student-t). The empirical interval bounds are NA
// when too few successful refits exist to resolve the tail percentiles.
type ParamStability struct {
	Estimate float64       `json:"estimate"` // from the full data
	BootMean float64       `json:"boot_mean"`
	SD       float64       `json:"sd"`
	CV       NullableFloat `json:"cv"` // SD / |Estimate| * 100; NA when Estimate == 0
	IQR      float64       `json:"iqr"`
	Lower    NullableFloat `json:"lower"` // empirical 2.5th percentile
	Upper    NullableFloat `json:"upper"` // empirical 97.5th percentile

	Grade StabilityGrade `json:"grade"`
}

// StabilityResult is the output of the bootstrap stability estimator for one
// family on one condition.
type StabilityResult struct {
	Family     Family          `json:"family"`
	Replicates int             `json:"replicates"` // requested B
	Successes  int             `json:"successes"`  // refits that converged
	Tau        ParamStability  `json:"tau"`
	Nu         *ParamStability `json:"nu,omitempty"` // Student-t only
}

// ============================================================================
// CONDITION REPORT (output contract)
// ============================================================================

// ConditionReport is the record set emitted for one analysis condition:
// every successful fit in request order, the AIC-best family, per-family
// goodness-of-fit results, and (when requested) the stability summary for
// the designated family.
type ConditionReport struct {
	ConditionID core.ConditionID `json:"condition_id"`
	N           int              `json:"n"`
	Fits        []Fit            `json:"fits"`
	Best        Family           `json:"best"`
	GoF         []GoFResult      `json:"gof,omitempty"`
	Stability   *StabilityResult `json:"stability,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"` // dropped families, non-fatal failures
	CreatedAt   core.Timestamp   `json:"created_at"`
}

// FitFor returns the fit for a family, if present.
func (r ConditionReport) FitFor(family Family) (Fit, bool) {
	for _, f := range r.Fits {
		if f.Family == family {
			return f, true
		}
	}
	return Fit{}, false
}
