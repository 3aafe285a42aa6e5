package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocopula/adapters/rng"
	"gocopula/domain/copula"
	"gocopula/domain/core"
	apperrors "gocopula/internal/errors"
	"gocopula/internal/testkit"
)

func newTestEngine(t *testing.T, config EngineConfig) *Engine {
	t.Helper()
	if config.BaseSeed == 0 {
		config.BaseSeed = 20240901
	}
	engine, err := NewEngine(config, rng.NewProvider())
	require.NoError(t, err)
	return engine
}

func TestAnalyzeConditionComonotonicWinsOnConcordance(t *testing.T) {
	// Identical raw scores rank-transform to exactly concordant
	// pseudo-observations. Every parametric likelihood diverges to its
	// boundary and is dropped; the deterministic family scores a perfect zero
	// and must be selected.
	x, y := testkit.ConcordantScores(100)

	engine := newTestEngine(t, EngineConfig{RunGoF: true})
	report, err := engine.AnalyzeCondition(context.Background(), "deterministic-growth", x, y)
	require.NoError(t, err)

	assert.Equal(t, copula.FamilyComonotonic, report.Best)
	require.Len(t, report.Fits, 1)
	assert.Equal(t, 0.0, report.Fits[0].AIC)
	assert.Len(t, report.Warnings, 5, "each parametric family leaves a warning")

	// Comonotonic goodness-of-fit is observed-only with no p-value.
	require.Len(t, report.GoF, 1)
	assert.Equal(t, copula.GoFMethodObservedOnly, report.GoF[0].Method)
	assert.True(t, report.GoF[0].PValue.IsNA())
}

func TestAnalyzeConditionRecoversStudentT(t *testing.T) {
	if testing.Short() {
		t.Skip("fits six families on a large synthetic sample")
	}

	u, v := testkit.StudentTPairs(testkit.NewRand(801), 2000, 0.7, 8)

	engine := newTestEngine(t, EngineConfig{})
	report, err := engine.AnalyzeObservations(context.Background(), "synthetic-t",
		copula.PseudoObservations{U: u, V: v})
	require.NoError(t, err)

	assert.Equal(t, copula.FamilyStudentT, report.Best,
		"heavy-tailed elliptical data should select the t copula")

	fit, ok := report.FitFor(copula.FamilyStudentT)
	require.True(t, ok)
	assert.InDelta(t, 0.7, fit.Rho(), 0.05)
	assert.Greater(t, fit.Nu(), 3.0)
	assert.Less(t, fit.Nu(), 25.0)
}

func TestAnalyzeConditionReproducible(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the full pipeline twice")
	}

	x, y := testkit.LinearScores(testkit.NewRand(811), 200, 0.8)
	config := EngineConfig{
		Families:            []copula.Family{copula.FamilyGaussian, copula.FamilyFrank, copula.FamilyComonotonic},
		RunGoF:              true,
		GoFBootstrap:        30,
		RunStability:        true,
		StabilityReplicates: 30,
		Workers:             4,
	}

	first, err := newTestEngine(t, config).AnalyzeCondition(context.Background(), "repro", x, y)
	require.NoError(t, err)
	second, err := newTestEngine(t, config).AnalyzeCondition(context.Background(), "repro", x, y)
	require.NoError(t, err)

	// Everything except the creation timestamp must match bit for bit. The
	// comparison goes through JSON because NA fields are NaN-backed and NaN
	// never equals itself under reflect.DeepEqual; the encoding maps NA to
	// null, which does.
	mustJSON := func(v interface{}) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, mustJSON(first.Fits), mustJSON(second.Fits))
	assert.Equal(t, first.Best, second.Best)
	assert.Equal(t, mustJSON(first.GoF), mustJSON(second.GoF))
	assert.Equal(t, mustJSON(first.Stability), mustJSON(second.Stability))
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestAnalyzeConditionDistinctConditionsDiverge(t *testing.T) {
	// Two conditions with tied raw scores get different tie-break streams, so
	// their pseudo-observations (and nothing else about them) may differ.
	x := make([]float64, 50)
	y := make([]float64, 50)
	for i := range x {
		x[i] = float64(i % 5)
		y[i] = float64(i % 7)
	}

	engine := newTestEngine(t, EngineConfig{
		Families: []copula.Family{copula.FamilyComonotonic},
	})

	a, err := engine.AnalyzeCondition(context.Background(), "cond-a", x, y)
	require.NoError(t, err)
	b, err := engine.AnalyzeCondition(context.Background(), "cond-b", x, y)
	require.NoError(t, err)

	assert.NotEqual(t, a.Fits[0].LogLik, b.Fits[0].LogLik,
		"per-condition streams should break ties differently")
}

func TestAnalyzeConditionInvalidInput(t *testing.T) {
	engine := newTestEngine(t, EngineConfig{})

	t.Run("too few pairs", func(t *testing.T) {
		x, y := testkit.ConcordantScores(10)
		_, err := engine.AnalyzeCondition(context.Background(), "tiny", x, y)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		x, y := testkit.ConcordantScores(50)
		_, err := engine.AnalyzeCondition(context.Background(), "ragged", x, y[:49])
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	})
}

func TestAnalyzeObservationsValidatesSquare(t *testing.T) {
	engine := newTestEngine(t, EngineConfig{})

	n := 50
	u := make([]float64, n)
	v := make([]float64, n)
	for i := range u {
		u[i] = float64(i+1) / float64(n+1)
		v[i] = u[i]
	}
	u[3] = 1.0 // boundary violation

	_, err := engine.AnalyzeObservations(context.Background(), core.ConditionID("bad"),
		copula.PseudoObservations{U: u, V: v})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestNewEngineSmoothedModeRequiresMarginals(t *testing.T) {
	_, err := NewEngine(EngineConfig{Mode: "smoothed"}, rng.NewProvider())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}
