// Package testkit provides in-memory fixtures so the dashboard runs and
// tests pass without a database.
package testkit

import (
	"context"
	"sort"
	"sync"

	"adpulse/domain/core"
	"adpulse/domain/impact"
	"adpulse/ports"
)

// TestKit provides testing utilities and demo fixtures
type TestKit struct {
	repo  *InMemoryActionRepository
	stats *InMemoryStatsRepository
}

// NewTestKit creates a test kit seeded with deterministic demo data
func NewTestKit() (*TestKit, error) {
	repo := NewInMemoryActionRepository()

	generator := NewActionGenerator(DefaultActionConfig())
	demo := generator.GenerateActions("demo-account")
	if err := repo.UpsertActions(context.Background(), demo); err != nil {
		return nil, err
	}

	return &TestKit{repo: repo, stats: NewInMemoryStatsRepository()}, nil
}

// ActionRepository returns the in-memory repository backing the kit
func (t *TestKit) ActionRepository() *InMemoryActionRepository {
	return t.repo
}

// StatsRepository returns the in-memory weekly-stats store backing the kit
func (t *TestKit) StatsRepository() *InMemoryStatsRepository {
	return t.stats
}

// InMemoryActionRepository implements ports.ActionRepository over a map,
// keyed the same way as the Postgres schema (account, target, applied-at).
type InMemoryActionRepository struct {
	mu      sync.RWMutex
	actions map[string]impact.ActionRecord
}

// NewInMemoryActionRepository creates an empty in-memory repository
func NewInMemoryActionRepository() *InMemoryActionRepository {
	return &InMemoryActionRepository{actions: make(map[string]impact.ActionRecord)}
}

// UpsertActions writes a batch of actions
func (r *InMemoryActionRepository) UpsertActions(ctx context.Context, actions []impact.ActionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, action := range actions {
		if action.ID == "" {
			action.ID = core.ActionID(core.NewID())
		}
		key := action.AccountID.String() + "|" + action.TargetText + "|" + action.AppliedAt.String()
		r.actions[key] = action
	}
	return nil
}

// GetActionImpact returns the account's actions, newest first
func (r *InMemoryActionRepository) GetActionImpact(ctx context.Context, account core.AccountID, beforeDays, afterDays int) ([]impact.ActionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []impact.ActionRecord
	for _, action := range r.actions {
		if action.AccountID == account {
			result = append(result, action)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[j].AppliedAt.Before(result[i].AppliedAt)
	})
	return result, nil
}

// ListAccounts returns every account with at least one stored action
func (r *InMemoryActionRepository) ListAccounts(ctx context.Context) ([]core.AccountID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[core.AccountID]bool)
	for _, action := range r.actions {
		seen[action.AccountID] = true
	}
	accounts := make([]core.AccountID, 0, len(seen))
	for account := range seen {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	return accounts, nil
}

// InMemoryStatsRepository implements ports.StatsRepository over a map,
// keyed the same way as the weekly_stats table (account, week start).
type InMemoryStatsRepository struct {
	mu   sync.RWMutex
	rows map[string]ports.WeeklyStatRow
}

// NewInMemoryStatsRepository creates an empty in-memory stats store
func NewInMemoryStatsRepository() *InMemoryStatsRepository {
	return &InMemoryStatsRepository{rows: make(map[string]ports.WeeklyStatRow)}
}

// UpsertWeeklyStats writes account-week rollups, replacing existing weeks
func (r *InMemoryStatsRepository) UpsertWeeklyStats(ctx context.Context, statRows []ports.WeeklyStatRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range statRows {
		key := row.AccountID.String() + "|" + row.StartDate.String()
		r.rows[key] = row
	}
	return nil
}

// GetWeeklyStats returns the account's weekly rollups ordered by week
func (r *InMemoryStatsRepository) GetWeeklyStats(ctx context.Context, account core.AccountID) ([]ports.WeeklyStatRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []ports.WeeklyStatRow
	for _, row := range r.rows {
		if row.AccountID == account {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}
