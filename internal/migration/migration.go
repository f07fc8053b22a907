package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"adpulse/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createWeeklyStatsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create weekly_stats table")
	}

	if err := r.createTargetStatsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create target_stats table")
	}

	if err := r.createOptimizationActionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create optimization_actions table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createWeeklyStatsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS weekly_stats (
			id SERIAL PRIMARY KEY,
			client_id TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			spend DOUBLE PRECISION DEFAULT 0,
			sales DOUBLE PRECISION DEFAULT 0,
			roas DOUBLE PRECISION DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(client_id, start_date)
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createTargetStatsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS target_stats (
			id SERIAL PRIMARY KEY,
			client_id TEXT NOT NULL,
			start_date DATE NOT NULL,
			campaign_name TEXT NOT NULL,
			ad_group_name TEXT NOT NULL,
			target_text TEXT NOT NULL,
			match_type TEXT,
			spend DOUBLE PRECISION DEFAULT 0,
			sales DOUBLE PRECISION DEFAULT 0,
			clicks INTEGER DEFAULT 0,
			impressions INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(client_id, start_date, campaign_name, ad_group_name, target_text)
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createOptimizationActionsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS optimization_actions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			action_type TEXT NOT NULL,
			target_text TEXT NOT NULL,
			market_tag TEXT DEFAULT 'Normal',
			is_validated BOOLEAN DEFAULT FALSE,
			decision_impact DOUBLE PRECISION DEFAULT 0,
			confidence_weight DOUBLE PRECISION DEFAULT 0.5,
			before_spend DOUBLE PRECISION DEFAULT 0,
			before_sales DOUBLE PRECISION DEFAULT 0,
			observed_after_spend DOUBLE PRECISION DEFAULT 0,
			after_sales DOUBLE PRECISION DEFAULT 0,
			applied_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(account_id, target_text, applied_at)
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_weekly_stats_client_date ON weekly_stats(client_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_target_stats_client_date ON target_stats(client_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_account_applied ON optimization_actions(account_id, applied_at)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_validated ON optimization_actions(account_id, is_validated)`,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return err
		}
	}
	return nil
}
