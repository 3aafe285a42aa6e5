package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocopula/domain/copula"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, copula.AllFamilies(), cfg.Analysis.Families)
	assert.Equal(t, "rank", cfg.Analysis.Mode)
	assert.Equal(t, int64(20240901), cfg.Analysis.BaseSeed)
	assert.Equal(t, 200, cfg.Bootstrap.GoFReplicates)
	assert.Equal(t, 200, cfg.Bootstrap.StabilityReplicates)
	assert.Equal(t, 5.0, cfg.Bootstrap.StableCV)
	assert.Equal(t, 10.0, cfg.Bootstrap.MarginalCV)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadFamilyList(t *testing.T) {
	t.Setenv("COPULA_FAMILIES", "gaussian, frank ,comonotonic")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []copula.Family{
		copula.FamilyGaussian,
		copula.FamilyFrank,
		copula.FamilyComonotonic,
	}, cfg.Analysis.Families)
}

func TestLoadRejectsUnknownFamily(t *testing.T) {
	t.Setenv("COPULA_FAMILIES", "gaussian,vine")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadMode(t *testing.T) {
	t.Setenv("PSEUDO_OBS_MODE", "kernel")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadEpsilon(t *testing.T) {
	t.Setenv("CLAMP_EPSILON", "0.7")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeBootstrap(t *testing.T) {
	t.Setenv("GOF_BOOTSTRAP", "-5")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GOF_BOOTSTRAP", "0")
	t.Setenv("BASE_SEED", "12345")
	t.Setenv("PORT", "9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Bootstrap.GoFReplicates, "zero disables resampling and is valid")
	assert.Equal(t, int64(12345), cfg.Analysis.BaseSeed)
	assert.Equal(t, "9999", cfg.Server.Port)
}
