package ports

import (
	"context"

	"adpulse/domain/core"
	"adpulse/domain/impact"
)

// ActionRepository defines storage operations for optimization actions
type ActionRepository interface {
	// UpsertActions writes a batch of actions, replacing rows that already
	// exist for the same account/target/applied-at key.
	UpsertActions(ctx context.Context, actions []impact.ActionRecord) error

	// GetActionImpact returns every action for the account whose before and
	// after observation windows are fully covered by the stored stats.
	GetActionImpact(ctx context.Context, account core.AccountID, beforeDays, afterDays int) ([]impact.ActionRecord, error)

	// ListAccounts returns every account with at least one stored action.
	ListAccounts(ctx context.Context) ([]core.AccountID, error)
}

// StatsRepository defines storage operations for raw performance stats
type StatsRepository interface {
	// UpsertWeeklyStats writes account-level weekly rollups.
	UpsertWeeklyStats(ctx context.Context, rows []WeeklyStatRow) error

	// GetWeeklyStats returns the account's weekly rollups ordered by week.
	GetWeeklyStats(ctx context.Context, account core.AccountID) ([]WeeklyStatRow, error)
}

// WeeklyStatRow is one account-week of spend/sales performance
type WeeklyStatRow struct {
	AccountID core.AccountID `db:"client_id" json:"account_id"`
	StartDate core.Timestamp `db:"start_date" json:"start_date"`
	EndDate   core.Timestamp `db:"end_date" json:"end_date"`
	Spend     float64        `db:"spend" json:"spend"`
	Sales     float64        `db:"sales" json:"sales"`
	ROAS      float64        `db:"roas" json:"roas"`
}
