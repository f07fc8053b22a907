package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"adpulse/domain/core"
	"adpulse/domain/impact"
)

// ActionRepository stores optimization actions with their before/after
// observation windows
type ActionRepository struct {
	db *sqlx.DB
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *sqlx.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// UpsertActions writes a batch of actions. Rows conflict on the
// (account, target, applied-at) key; later uploads replace the observed
// after-window numbers as more days accumulate.
func (r *ActionRepository) UpsertActions(ctx context.Context, actions []impact.ActionRecord) error {
	query := `
		INSERT INTO optimization_actions (
			id, account_id, action_type, target_text, market_tag, is_validated,
			decision_impact, confidence_weight, before_spend, before_sales,
			observed_after_spend, after_sales, applied_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (account_id, target_text, applied_at) DO UPDATE SET
			market_tag = EXCLUDED.market_tag,
			is_validated = EXCLUDED.is_validated,
			decision_impact = EXCLUDED.decision_impact,
			confidence_weight = EXCLUDED.confidence_weight,
			observed_after_spend = EXCLUDED.observed_after_spend,
			after_sales = EXCLUDED.after_sales,
			updated_at = CURRENT_TIMESTAMP`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, action := range actions {
		id := action.ID
		if id == "" {
			id = core.ActionID(core.NewID())
		}
		_, err := tx.ExecContext(ctx, query,
			id.String(),
			action.AccountID.String(),
			string(action.ActionType),
			action.TargetText,
			string(action.MarketTag),
			action.IsValidated,
			action.DecisionImpact,
			action.ConfidenceWeight,
			action.BeforeSpend,
			action.BeforeSales,
			action.ObservedAfterSpend,
			action.AfterSales,
			action.AppliedAt.Time(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert action for %s: %w", action.TargetText, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit action batch: %w", err)
	}
	return nil
}

// GetActionImpact returns the account's actions whose after observation
// window has fully elapsed (applied at least afterDays ago). The before
// window closed at application time, so it needs no cutoff of its own.
func (r *ActionRepository) GetActionImpact(ctx context.Context, account core.AccountID, beforeDays, afterDays int) ([]impact.ActionRecord, error) {
	query := `
		SELECT id, account_id, action_type, target_text, market_tag, is_validated,
			   decision_impact, confidence_weight, before_spend, before_sales,
			   observed_after_spend, after_sales, applied_at
		FROM optimization_actions
		WHERE account_id = $1
		  AND applied_at <= $2
		ORDER BY applied_at DESC`

	observation := core.NewWindow(time.Now(), afterDays)

	rows, err := r.db.QueryContext(ctx, query, account.String(), observation.Start.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to query action impact: %w", err)
	}
	defer rows.Close()

	var actions []impact.ActionRecord
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating action rows: %w", err)
	}
	return actions, nil
}

// ListAccounts returns every account with at least one stored action
func (r *ActionRepository) ListAccounts(ctx context.Context) ([]core.AccountID, error) {
	query := `SELECT DISTINCT account_id FROM optimization_actions ORDER BY account_id`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]core.AccountID, len(ids))
	for i, id := range ids {
		accounts[i] = core.AccountID(id)
	}
	return accounts, nil
}

func scanAction(rows *sql.Rows) (impact.ActionRecord, error) {
	var (
		action    impact.ActionRecord
		id        string
		accountID string
		weight    sql.NullFloat64
		appliedAt time.Time
	)
	err := rows.Scan(
		&id,
		&accountID,
		&action.ActionType,
		&action.TargetText,
		&action.MarketTag,
		&action.IsValidated,
		&action.DecisionImpact,
		&weight,
		&action.BeforeSpend,
		&action.BeforeSales,
		&action.ObservedAfterSpend,
		&action.AfterSales,
		&appliedAt,
	)
	if err != nil {
		return impact.ActionRecord{}, fmt.Errorf("failed to scan action row: %w", err)
	}
	action.ID = core.ActionID(id)
	action.AccountID = core.AccountID(accountID)
	if weight.Valid {
		action.ConfidenceWeight = impact.Weight(weight.Float64)
	}
	action.AppliedAt = core.NewTimestamp(appliedAt)
	return action, nil
}
