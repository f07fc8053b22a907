package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"adpulse/domain/core"
	"adpulse/ports"
)

// StatsRepository stores raw account performance rollups
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// UpsertWeeklyStats writes account-week rollups, replacing existing weeks
func (r *StatsRepository) UpsertWeeklyStats(ctx context.Context, statRows []ports.WeeklyStatRow) error {
	query := `
		INSERT INTO weekly_stats (client_id, start_date, end_date, spend, sales, roas)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_id, start_date) DO UPDATE SET
			end_date = EXCLUDED.end_date,
			spend = EXCLUDED.spend,
			sales = EXCLUDED.sales,
			roas = EXCLUDED.roas,
			updated_at = CURRENT_TIMESTAMP`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range statRows {
		_, err := tx.ExecContext(ctx, query,
			row.AccountID.String(),
			row.StartDate.Time(),
			row.EndDate.Time(),
			row.Spend,
			row.Sales,
			row.ROAS,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert weekly stats for %s: %w", row.AccountID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit weekly stats: %w", err)
	}
	return nil
}

// GetWeeklyStats returns the account's weekly rollups ordered by week
func (r *StatsRepository) GetWeeklyStats(ctx context.Context, account core.AccountID) ([]ports.WeeklyStatRow, error) {
	query := `
		SELECT client_id, start_date, end_date, spend, sales, roas
		FROM weekly_stats
		WHERE client_id = $1
		ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, account.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly stats: %w", err)
	}
	defer rows.Close()

	var result []ports.WeeklyStatRow
	for rows.Next() {
		var (
			row        ports.WeeklyStatRow
			accountID  string
			start, end time.Time
		)
		if err := rows.Scan(&accountID, &start, &end, &row.Spend, &row.Sales, &row.ROAS); err != nil {
			return nil, fmt.Errorf("failed to scan weekly stats row: %w", err)
		}
		row.AccountID = core.AccountID(accountID)
		row.StartDate = core.NewTimestamp(start)
		row.EndDate = core.NewTimestamp(end)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating weekly stats rows: %w", err)
	}
	return result, nil
}
