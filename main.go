package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"adpulse/adapters/excel"
	"adpulse/adapters/postgres"
	appsvc "adpulse/app"
	"adpulse/domain/core"
	"adpulse/internal/config"
	"adpulse/internal/errors"
	"adpulse/internal/migration"
	"adpulse/internal/testkit"
	"adpulse/ports"
	"adpulse/ui"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, statsRepo, err := buildRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	service := appsvc.NewImpactService(repo).
		WithConfidenceGates(cfg.Confidence.MinValidatedActions, cfg.Confidence.MinSpendAvoidedCount).
		WithStatsRepository(statsRepo)

	if cfg.Data.SourceFile != "" {
		if err := importSourceFile(ctx, service, cfg); err != nil {
			log.Printf("Warning: source file import failed: %v", err)
		}
	}

	dashboard, err := ui.NewApp(ui.Config{Port: cfg.Server.Port, Currency: cfg.Data.Currency}, service)
	if err != nil {
		log.Fatalf("Failed to initialize dashboard: %v", err)
	}

	if err := dashboard.Start(ctx, cfg.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// buildRepositories connects to Postgres when DATABASE_URL is set, and
// otherwise falls back to in-memory demo fixtures.
func buildRepositories(ctx context.Context, cfg *config.Config) (ports.ActionRepository, ports.StatsRepository, error) {
	if cfg.Database.URL == "" {
		log.Println("DATABASE_URL not set - running with in-memory demo fixtures")
		kit, err := testkit.NewTestKit()
		if err != nil {
			return nil, nil, errors.Wrap(err, "initializing demo fixtures")
		}
		return kit.ActionRepository(), kit.StatsRepository(), nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "failed to ping database")
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return nil, nil, errors.Wrap(err, "database migration failed")
	}
	log.Printf("Database ready (schema version %s)", runner.Version())

	return postgres.NewActionRepository(db), postgres.NewStatsRepository(db), nil
}

// importSourceFile normalizes a report export on boot and persists its
// weekly spend/sales rollups for the configured account.
func importSourceFile(ctx context.Context, service *appsvc.ImpactService, cfg *config.Config) error {
	reader := excel.NewDataReader(cfg.Data.SourceFile)
	cleaned, err := service.ImportColumns(ctx, core.AccountID(cfg.Data.AccountID), reader)
	if err != nil {
		return err
	}
	log.Printf("Imported %s: %d columns normalized", cfg.Data.SourceFile, len(cleaned))
	return nil
}
