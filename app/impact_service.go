// Package app wires the storage, normalization and analysis layers into
// the operations the dashboard calls.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"adpulse/adapters/coercer"
	"adpulse/domain/core"
	"adpulse/domain/impact"
	"adpulse/domain/ingest"
	"adpulse/internal"
	"adpulse/internal/analysis"
	"adpulse/internal/confidence"
	"adpulse/internal/errors"
	"adpulse/ports"
)

// maxActionAgeDays bounds how far back an uploaded action may be applied.
// Older rows are stale exports and get rejected rather than silently skewing
// the before/after comparison.
const maxActionAgeDays = 730

// Recognized headers in report exports, matched case-insensitively.
var (
	weekStartHeaders = []string{"start_date", "week_start", "week"}
	spendHeaders     = []string{"spend", "cost"}
	salesHeaders     = []string{"sales", "revenue"}
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006"}

// ImpactService computes confidence-annotated impact metrics per account
type ImpactService struct {
	repo       ports.ActionRepository
	statsRepo  ports.StatsRepository
	normalizer *coercer.NumericNormalizer
	summarizer *analysis.Summarizer
	logger     *internal.Logger

	impactOpts confidence.Options
	spendOpts  confidence.Options
}

// NewImpactService creates the service with default confidence gates
func NewImpactService(repo ports.ActionRepository) *ImpactService {
	return &ImpactService{
		repo:       repo,
		normalizer: coercer.NewNumericNormalizer(coercer.DefaultNormalizerConfig()),
		summarizer: analysis.NewSummarizer(),
		logger:     internal.DefaultLogger.WithPrefix("impact"),
		impactOpts: confidence.DefaultImpactOptions(),
		spendOpts:  confidence.DefaultSpendAvoidedOptions(),
	}
}

// WithConfidenceGates overrides the High-confidence sample-size gates
func (s *ImpactService) WithConfidenceGates(minImpactActions, minSpendActions int) *ImpactService {
	s.impactOpts.MinValidatedActions = minImpactActions
	s.spendOpts.MinValidatedActions = minSpendActions
	return s
}

// WithStatsRepository enables weekly-stat persistence during imports
func (s *ImpactService) WithStatsRepository(statsRepo ports.StatsRepository) *ImpactService {
	s.statsRepo = statsRepo
	return s
}

// ImpactReport bundles everything one dashboard render needs
type ImpactReport struct {
	ID           core.ReportID             `json:"report_id"`
	Summary      impact.Summary            `json:"summary"`
	Confidence   impact.ConfidenceResult   `json:"confidence"`
	SpendAvoided impact.SpendAvoidedResult `json:"spend_avoided"`
	Score        float64                   `json:"score"`
	Actions      []impact.ActionRecord     `json:"actions,omitempty"`
}

// GetImpactReport fetches the account's actions and computes the summary
// plus both confidence classifications.
func (s *ImpactService) GetImpactReport(ctx context.Context, account core.AccountID, beforeDays, afterDays int, includeActions bool) (*ImpactReport, error) {
	if account == "" {
		return nil, errors.InvalidInput("account ID is required")
	}
	if beforeDays <= 0 || afterDays <= 0 {
		return nil, errors.InvalidInputf("window days must be positive, got before=%d after=%d", beforeDays, afterDays)
	}

	actions, err := s.repo.GetActionImpact(ctx, account, beforeDays, afterDays)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching actions for account %s", account)
	}

	report := &ImpactReport{
		ID:           core.ReportID(core.NewID()),
		Summary:      s.summarizer.Summarize(account, actions),
		Confidence:   confidence.ComputeImpact(actions, s.impactOpts),
		SpendAvoided: confidence.ComputeSpendAvoided(actions, s.spendOpts),
	}

	score, err := s.scoreDecisionImpact(actions)
	if err != nil {
		return nil, err
	}
	report.Score = score

	if includeActions {
		report.Actions = actions
	}

	s.logger.Debug("account %s: %d actions, confidence=%s, spend_avoided=%.2f",
		account, len(actions), report.Confidence.Level, report.SpendAvoided.TotalSpendAvoided)

	return report, nil
}

// scoreDecisionImpact scores the mean per-action impact of the validated
// actions against its own standard deviation.
func (s *ImpactService) scoreDecisionImpact(actions []impact.ActionRecord) (float64, error) {
	impacts := make([]float64, 0, len(actions))
	for _, action := range actions {
		if action.IsValidated {
			impacts = append(impacts, action.DecisionImpact)
		}
	}
	if len(impacts) == 0 {
		return 0, nil
	}

	mean, err := stats.Mean(impacts)
	if err != nil {
		return 0, errors.Wrap(err, "computing mean impact")
	}
	dispersion := 0.0
	if len(impacts) > 1 {
		if dispersion, err = stats.StandardDeviationSample(impacts); err != nil {
			return 0, errors.Wrap(err, "computing impact dispersion")
		}
	}

	return confidence.ScoreSample(impact.MetricSample{
		Name:       "decision_impact",
		Estimate:   mean,
		SampleSize: len(impacts),
		Dispersion: dispersion,
	})
}

// ListAccounts returns every account with stored actions
func (s *ImpactService) ListAccounts(ctx context.Context) ([]core.AccountID, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing accounts")
	}
	return accounts, nil
}

// ImportActions validates an uploaded batch and writes it through the
// repository. Rows without an ID get one assigned by the store; the account
// in the URL always wins over whatever the rows carry.
func (s *ImpactService) ImportActions(ctx context.Context, account core.AccountID, actions []impact.ActionRecord) (int, error) {
	if account == "" {
		return 0, errors.InvalidInput("account ID is required")
	}
	if len(actions) == 0 {
		return 0, errors.InvalidInput("action batch must not be empty")
	}

	uploadWindow := core.NewWindow(time.Now(), maxActionAgeDays)
	for i := range actions {
		actions[i].AccountID = account
		if actions[i].TargetText == "" {
			return 0, errors.InvalidInputf("action %d: target text is required", i)
		}
		if actions[i].AppliedAt.IsZero() {
			return 0, errors.InvalidInputf("action %d: applied_at is required", i)
		}
		if !uploadWindow.Contains(actions[i].AppliedAt) {
			return 0, errors.InvalidInputf("action %d: applied_at %s is outside the accepted %d-day upload window",
				i, actions[i].AppliedAt, uploadWindow.Days())
		}
	}

	if err := s.repo.UpsertActions(ctx, actions); err != nil {
		return 0, errors.Wrapf(err, "storing %d actions for account %s", len(actions), account)
	}

	s.logger.Info("account %s: imported %d actions", account, len(actions))
	return len(actions), nil
}

// NormalizePreview cleans raw columns without touching storage; the
// dashboard uses it to preview an upload before import.
func (s *ImpactService) NormalizePreview(ctx context.Context, columns map[core.ColumnKey]ingest.Column) (map[core.ColumnKey]coercer.CleanedColumn, error) {
	return s.normalizer.NormalizeTable(ctx, columns)
}

// ImportColumns normalizes a raw table from a reader and, when a stats
// repository is configured and the table carries week/spend/sales columns,
// persists the rows as weekly rollups for the account. Rows the normalizer
// defaulted still flow through; the per-column fallback counts come back so
// callers can log data-quality problems.
func (s *ImpactService) ImportColumns(ctx context.Context, account core.AccountID, reader ports.TableReader) (map[core.ColumnKey]coercer.CleanedColumn, error) {
	if account == "" {
		return nil, errors.InvalidInput("account ID is required")
	}

	columns, err := reader.ReadColumns()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", reader.SourceName())
	}

	cleaned, err := s.normalizer.NormalizeTable(ctx, columns)
	if err != nil {
		return nil, errors.Wrap(err, "normalizing imported columns")
	}

	for key, col := range cleaned {
		if col.Fallbacks > 0 {
			s.logger.Warn("column %s: %d/%d cells fell back to default", key, col.Fallbacks, len(col.Values))
		}
	}

	if s.statsRepo != nil {
		rows := buildWeeklyRows(account, columns, cleaned)
		if len(rows) > 0 {
			if err := s.statsRepo.UpsertWeeklyStats(ctx, rows); err != nil {
				return nil, errors.Wrapf(err, "storing weekly stats for account %s", account)
			}
			s.logger.Info("account %s: stored %d weekly stat rows from %s", account, len(rows), reader.SourceName())
		}
	}

	return cleaned, nil
}

// buildWeeklyRows zips the raw week-start column with the cleaned spend and
// sales columns into weekly_stats rows. Returns nil when the table has no
// recognizable week or spend column; rows with unparseable dates are skipped.
func buildWeeklyRows(account core.AccountID, raw map[core.ColumnKey]ingest.Column, cleaned map[core.ColumnKey]coercer.CleanedColumn) []ports.WeeklyStatRow {
	weekCol := findRawColumn(raw, weekStartHeaders)
	spendCol, spendOK := findCleanedColumn(cleaned, spendHeaders)
	salesCol, salesOK := findCleanedColumn(cleaned, salesHeaders)
	if weekCol == nil || !spendOK {
		return nil
	}

	rows := make([]ports.WeeklyStatRow, 0, len(weekCol))
	for i, cell := range weekCol {
		if i >= len(spendCol.Values) {
			break
		}
		start, ok := parseDate(cell.Text())
		if !ok {
			continue
		}

		week := core.NewWindow(start.AddDate(0, 0, 6), 6)
		row := ports.WeeklyStatRow{
			AccountID: account,
			StartDate: week.Start,
			EndDate:   week.End,
			Spend:     spendCol.Values[i],
		}
		if salesOK && i < len(salesCol.Values) {
			row.Sales = salesCol.Values[i]
		}
		if row.Spend > 0 {
			row.ROAS = row.Sales / row.Spend
		}
		rows = append(rows, row)
	}
	return rows
}

func findRawColumn(columns map[core.ColumnKey]ingest.Column, names []string) ingest.Column {
	for key, col := range columns {
		for _, name := range names {
			if strings.EqualFold(key.String(), name) {
				return col
			}
		}
	}
	return nil
}

func findCleanedColumn(columns map[core.ColumnKey]coercer.CleanedColumn, names []string) (coercer.CleanedColumn, bool) {
	for key, col := range columns {
		for _, name := range names {
			if strings.EqualFold(key.String(), name) {
				return col, true
			}
		}
	}
	return coercer.CleanedColumn{}, false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
