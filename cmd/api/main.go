package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gocopula/adapters/api"
	"gocopula/adapters/postgres"
	"gocopula/adapters/rng"
	"gocopula/internal/analysis"
	"gocopula/internal/config"
	"gocopula/internal/pseudo"
	"gocopula/ports"
)

// Serves the analysis engine over HTTP. Reports are persisted when
// DATABASE_URL is set.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if cfg.Analysis.Mode == "smoothed" {
		log.Fatal("smoothed mode requires embedding the engine with marginal CDFs; the API serves rank mode only")
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

	var repo ports.ReportRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()

		pgRepo := postgres.NewReportRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("schema setup failed: %v", err)
		}
		cancel()
		repo = pgRepo
	}

	server := api.NewServer(engine, repo)
	addr := ":" + cfg.Server.Port
	log.Printf("copula analysis API listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
