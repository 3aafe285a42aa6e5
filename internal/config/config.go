package config

import (
	"os"
	"strconv"
	"strings"

	"gocopula/domain/copula"
	"gocopula/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig
	Bootstrap BootstrapConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Data      DataConfig
}

// AnalysisConfig holds the core fitting settings
type AnalysisConfig struct {
	Families []copula.Family // families to attempt, in tie-break order
	Mode     string          // "rank" or "smoothed"
	Epsilon  float64         // boundary clamp guard for smoothed mode
	BaseSeed int64           // anchors every per-condition RNG stream
	Workers  int             // worker pool bound (0 = GOMAXPROCS)
}

// BootstrapConfig holds replicate counts and dispersion thresholds
type BootstrapConfig struct {
	GoFReplicates       int     // B for goodness-of-fit; 0 = no resampling
	StabilityReplicates int     // B for stability estimation
	MinSuccesses        int     // minimum successful refits per bootstrap
	StableCV            float64 // CV grading cutoff for "stable" (percent)
	MarginalCV          float64 // CV grading cutoff for "marginal" (percent)
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string // empty disables persistence
}

// DataConfig holds data source settings
type DataConfig struct {
	PairsFile string // xlsx or csv with paired prior/current scores
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	analysis, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}

	config := &Config{
		Analysis: *analysis,
		Bootstrap: BootstrapConfig{
			GoFReplicates:       getEnvIntOrDefault("GOF_BOOTSTRAP", 200),
			StabilityReplicates: getEnvIntOrDefault("STABILITY_BOOTSTRAP", 200),
			MinSuccesses:        getEnvIntOrDefault("BOOTSTRAP_MIN_SUCCESSES", 10),
			StableCV:            getEnvFloatOrDefault("STABILITY_STABLE_CV", 5),
			MarginalCV:          getEnvFloatOrDefault("STABILITY_MARGINAL_CV", 10),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Data: DataConfig{
			PairsFile: getEnvOrDefault("PAIRS_FILE", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	families := copula.AllFamilies()
	if raw := os.Getenv("COPULA_FAMILIES"); raw != "" {
		families = families[:0]
		for _, name := range strings.Split(raw, ",") {
			fam, err := copula.ParseFamily(strings.TrimSpace(name))
			if err != nil {
				return nil, errors.ConfigInvalid(err.Error())
			}
			families = append(families, fam)
		}
	}

	return &AnalysisConfig{
		Families: families,
		Mode:     getEnvOrDefault("PSEUDO_OBS_MODE", "rank"),
		Epsilon:  getEnvFloatOrDefault("CLAMP_EPSILON", 1e-6),
		BaseSeed: int64(getEnvIntOrDefault("BASE_SEED", 20240901)),
		Workers:  getEnvIntOrDefault("WORKERS", 0),
	}, nil
}

func validateConfig(config *Config) error {
	if len(config.Analysis.Families) == 0 {
		return errors.ConfigInvalid("at least one copula family is required")
	}
	if config.Analysis.Mode != "rank" && config.Analysis.Mode != "smoothed" {
		return errors.ConfigInvalid("PSEUDO_OBS_MODE must be rank or smoothed")
	}
	if config.Analysis.Epsilon <= 0 || config.Analysis.Epsilon >= 0.5 {
		return errors.ConfigInvalid("CLAMP_EPSILON must be in (0, 0.5)")
	}
	if config.Bootstrap.GoFReplicates < 0 || config.Bootstrap.StabilityReplicates < 0 {
		return errors.ConfigInvalid("bootstrap replicate counts cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
