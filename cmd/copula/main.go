package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gocopula/adapters/excel"
	"gocopula/adapters/postgres"
	"gocopula/adapters/rng"
	"gocopula/domain/core"
	"gocopula/internal/analysis"
	"gocopula/internal/config"
	"gocopula/internal/pseudo"
)

// Analyzes one condition's paired scores from a file and prints the report.
// Persists to Postgres when DATABASE_URL is set.
func main() {
	_ = godotenv.Load()

	pairsFile := flag.String("pairs", "", "xlsx/csv file with paired prior/current scores (overrides PAIRS_FILE)")
	conditionArg := flag.String("condition", "", "condition identifier (default: generated)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *pairsFile != "" {
		cfg.Data.PairsFile = *pairsFile
	}
	if cfg.Data.PairsFile == "" {
		log.Fatal("no pairs file: set PAIRS_FILE or pass -pairs")
	}
	if cfg.Analysis.Mode == "smoothed" {
		log.Fatal("smoothed mode requires embedding the engine with marginal CDFs; the CLI supports rank mode only")
	}

	engine, err := analysis.NewEngine(analysis.EngineConfig{
		Families:              cfg.Analysis.Families,
		BaseSeed:              cfg.Analysis.BaseSeed,
		Mode:                  pseudo.ModeRank,
		RunGoF:                true,
		GoFBootstrap:          cfg.Bootstrap.GoFReplicates,
		RunStability:          true,
		StabilityReplicates:   cfg.Bootstrap.StabilityReplicates,
		BootstrapMinSuccesses: cfg.Bootstrap.MinSuccesses,
		StableCV:              cfg.Bootstrap.StableCV,
		MarginalCV:            cfg.Bootstrap.MarginalCV,
		Workers:               cfg.Analysis.Workers,
	}, rng.NewProvider())
	if err != nil {
		log.Fatalf("engine setup failed: %v", err)
	}

	ctx := context.Background()

	prior, current, err := excel.NewPairReader(cfg.Data.PairsFile).ReadPairs(ctx)
	if err != nil {
		log.Fatalf("failed to read pairs: %v", err)
	}

	conditionID := core.ConditionID(core.NewID())
	if *conditionArg != "" {
		conditionID, err = core.ParseConditionID(*conditionArg)
		if err != nil {
			log.Fatalf("invalid condition id: %v", err)
		}
	}

	report, err := engine.AnalyzeCondition(ctx, conditionID, prior, current)
	if err != nil {
		log.Fatalf("analysis failed for condition %s: %v", conditionID, err)
	}

	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()

		repo := postgres.NewReportRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema setup failed: %v", err)
		}
		if err := repo.Save(ctx, core.RunID(core.NewID()), *report); err != nil {
			log.Fatalf("failed to persist report: %v", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("failed to encode report: %v", err)
	}
}
