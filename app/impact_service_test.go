package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/domain/core"
	"adpulse/domain/impact"
	"adpulse/domain/ingest"
	"adpulse/internal/errors"
	"adpulse/internal/testkit"
)

func newServiceWithFixtures(t *testing.T) *ImpactService {
	service, _ := newServiceWithKit(t)
	return service
}

func newServiceWithKit(t *testing.T) (*ImpactService, *testkit.TestKit) {
	t.Helper()
	kit, err := testkit.NewTestKit()
	require.NoError(t, err)
	service := NewImpactService(kit.ActionRepository()).WithStatsRepository(kit.StatsRepository())
	return service, kit
}

func TestGetImpactReport(t *testing.T) {
	service := newServiceWithFixtures(t)

	report, err := service.GetImpactReport(context.Background(), "demo-account", 14, 14, false)
	require.NoError(t, err)

	assert.Equal(t, testkit.DefaultActionConfig().ActionCount, report.Summary.TotalActions)
	assert.Greater(t, report.Summary.ValidatedActions, 0)
	assert.NotEmpty(t, report.Confidence.Level)
	assert.GreaterOrEqual(t, report.SpendAvoided.TotalSpendAvoided, 0.0)
	assert.False(t, report.ID.String() == "", "every report gets an ID")
	assert.GreaterOrEqual(t, report.Score, 0.0)
	assert.LessOrEqual(t, report.Score, 1.0)
	assert.Nil(t, report.Actions, "actions excluded unless requested")

	withActions, err := service.GetImpactReport(context.Background(), "demo-account", 14, 30, true)
	require.NoError(t, err)
	assert.Len(t, withActions.Actions, report.Summary.TotalActions)
}

func TestGetImpactReportValidation(t *testing.T) {
	service := newServiceWithFixtures(t)

	_, err := service.GetImpactReport(context.Background(), "", 14, 14, false)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = service.GetImpactReport(context.Background(), "demo-account", 0, 14, false)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestGetImpactReportUnknownAccount(t *testing.T) {
	service := newServiceWithFixtures(t)

	report, err := service.GetImpactReport(context.Background(), "no-such-account", 14, 14, false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary.TotalActions)
	assert.Equal(t, "Low", string(report.Confidence.Level))
}

func TestImportActions(t *testing.T) {
	service := newServiceWithFixtures(t)

	actions := []impact.ActionRecord{
		{
			TargetText:         "kw alpha",
			ActionType:         impact.ActionBidDown,
			MarketTag:          impact.MarketNormal,
			IsValidated:        true,
			DecisionImpact:     120,
			ConfidenceWeight:   impact.Weight(0.8),
			BeforeSpend:        100,
			BeforeSales:        300,
			ObservedAfterSpend: 60,
			AfterSales:         320,
			AppliedAt:          core.NewTimestamp(time.Now().AddDate(0, 0, -30)),
		},
		{
			TargetText:     "kw beta",
			ActionType:     impact.ActionPause,
			MarketTag:      impact.MarketNormal,
			DecisionImpact: -40,
			AppliedAt:      core.NewTimestamp(time.Now().AddDate(0, 0, -20)),
		},
	}

	imported, err := service.ImportActions(context.Background(), "uploaded-account", actions)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	report, err := service.GetImpactReport(context.Background(), "uploaded-account", 14, 14, true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.TotalActions)
	for _, action := range report.Actions {
		assert.Equal(t, core.AccountID("uploaded-account"), action.AccountID)
	}
}

func TestImportActionsValidation(t *testing.T) {
	service := newServiceWithFixtures(t)
	recent := core.NewTimestamp(time.Now().AddDate(0, 0, -1))

	_, err := service.ImportActions(context.Background(), "", []impact.ActionRecord{{TargetText: "kw", AppliedAt: recent}})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = service.ImportActions(context.Background(), "acct", nil)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = service.ImportActions(context.Background(), "acct", []impact.ActionRecord{{AppliedAt: recent}})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput), "missing target text")

	_, err = service.ImportActions(context.Background(), "acct", []impact.ActionRecord{{TargetText: "kw"}})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput), "missing applied_at")

	future := core.NewTimestamp(time.Now().AddDate(0, 0, 7))
	_, err = service.ImportActions(context.Background(), "acct", []impact.ActionRecord{{TargetText: "kw", AppliedAt: future}})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput), "future applied_at")
}

type stubReader struct {
	columns map[core.ColumnKey]ingest.Column
}

func (r stubReader) ReadColumns() (map[core.ColumnKey]ingest.Column, error) {
	return r.columns, nil
}

func (r stubReader) SourceName() string { return "stub" }

func TestImportColumnsPersistsWeeklyStats(t *testing.T) {
	service, kit := newServiceWithKit(t)

	reader := stubReader{columns: map[core.ColumnKey]ingest.Column{
		"start_date": ingest.ColumnFromStrings([]string{"2026-06-01", "2026-06-08", "not a date"}),
		"Spend":      ingest.ColumnFromStrings([]string{"AED 100.00", "1,000.00", "50"}),
		"Sales":      ingest.ColumnFromStrings([]string{"400", "AED 2,500.00", "10"}),
	}}

	cleaned, err := service.ImportColumns(context.Background(), "import-account", reader)
	require.NoError(t, err)
	assert.Len(t, cleaned, 3)

	rows, err := kit.StatsRepository().GetWeeklyStats(context.Background(), "import-account")
	require.NoError(t, err)
	require.Len(t, rows, 2, "unparseable dates are skipped")

	assert.Equal(t, 100.0, rows[0].Spend)
	assert.Equal(t, 400.0, rows[0].Sales)
	assert.Equal(t, 4.0, rows[0].ROAS)
	assert.Equal(t, 1000.0, rows[1].Spend)
	assert.True(t, rows[0].StartDate.Before(rows[1].StartDate), "rollups come back week-ordered")
	assert.Equal(t, rows[0].StartDate.Time().AddDate(0, 0, 6), rows[0].EndDate.Time(), "each row spans one week")
}

func TestImportColumnsWithoutWeekColumn(t *testing.T) {
	service, kit := newServiceWithKit(t)

	reader := stubReader{columns: map[core.ColumnKey]ingest.Column{
		"spend": ingest.ColumnFromStrings([]string{"10", "20"}),
	}}

	cleaned, err := service.ImportColumns(context.Background(), "import-account", reader)
	require.NoError(t, err)
	assert.Len(t, cleaned, 1)

	rows, err := kit.StatsRepository().GetWeeklyStats(context.Background(), "import-account")
	require.NoError(t, err)
	assert.Empty(t, rows, "nothing to persist without a week column")
}

func TestNormalizePreview(t *testing.T) {
	service := newServiceWithFixtures(t)

	columns := map[core.ColumnKey]ingest.Column{
		"spend": {
			ingest.NewTextValue("AED 100.50"),
			ingest.NewTextValue("1,234.56"),
			ingest.NewTextValue("SAR"),
		},
	}

	cleaned, err := service.NormalizePreview(context.Background(), columns)
	require.NoError(t, err)

	spend := cleaned["spend"]
	assert.Equal(t, []float64{100.50, 1234.56, 0.0}, spend.Values)
	assert.Equal(t, 1, spend.Fallbacks)
}
