package testkit

import (
	"fmt"
	"math/rand"
	"time"

	"adpulse/domain/core"
	"adpulse/domain/impact"
)

// ActionGeneratorConfig configures the synthetic action generator
type ActionGeneratorConfig struct {
	ActionCount    int       `json:"action_count"`
	ValidatedRate  float64   `json:"validated_rate"`  // Share of actions with closed windows
	DownshiftRate  float64   `json:"downshift_rate"`  // Share applied under Market Downshift
	WinRate        float64   `json:"win_rate"`        // Share of validated actions with positive impact
	AvgBeforeSpend float64   `json:"avg_before_spend"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Seed           int64     `json:"seed"`
}

// DefaultActionConfig returns sensible defaults for demo fixtures
func DefaultActionConfig() ActionGeneratorConfig {
	return ActionGeneratorConfig{
		ActionCount:    120,
		ValidatedRate:  0.7,
		DownshiftRate:  0.15,
		WinRate:        0.65,
		AvgBeforeSpend: 250,
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC),
		Seed:           42,
	}
}

// ActionGenerator generates realistic optimization action fixtures.
// Identical seeds always produce identical records.
type ActionGenerator struct {
	config ActionGeneratorConfig
	rng    *rand.Rand
}

// NewActionGenerator creates a new action generator
func NewActionGenerator(config ActionGeneratorConfig) *ActionGenerator {
	return &ActionGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var actionTypes = []impact.ActionType{
	impact.ActionBidDown,
	impact.ActionBidUp,
	impact.ActionPause,
	impact.ActionNegate,
	impact.ActionBudgetMove,
}

// GenerateActions generates the full fixture set for one account
func (g *ActionGenerator) GenerateActions(account core.AccountID) []impact.ActionRecord {
	actions := make([]impact.ActionRecord, 0, g.config.ActionCount)
	for i := 0; i < g.config.ActionCount; i++ {
		actions = append(actions, g.generateAction(account, i))
	}
	return actions
}

func (g *ActionGenerator) generateAction(account core.AccountID, seq int) impact.ActionRecord {
	actionType := actionTypes[g.rng.Intn(len(actionTypes))]
	validated := g.rng.Float64() < g.config.ValidatedRate

	tag := impact.MarketNormal
	if g.rng.Float64() < g.config.DownshiftRate {
		tag = impact.MarketDownshift
	}

	beforeSpend := g.config.AvgBeforeSpend * (0.5 + g.rng.Float64())
	beforeSales := beforeSpend * (1.5 + g.rng.Float64()*2)

	// Winners spend less for more sales after the action; losers the other
	// way around. Magnitudes stay in the range the dashboard renders.
	win := g.rng.Float64() < g.config.WinRate
	var afterSpend, afterSales float64
	if win {
		afterSpend = beforeSpend * (0.6 + g.rng.Float64()*0.3)
		afterSales = beforeSales * (1.0 + g.rng.Float64()*0.4)
	} else {
		afterSpend = beforeSpend * (0.9 + g.rng.Float64()*0.3)
		afterSales = beforeSales * (0.6 + g.rng.Float64()*0.35)
	}

	decisionImpact := (afterSales - afterSpend) - (beforeSales - beforeSpend)
	confidenceWeight := 0.55 + g.rng.Float64()*0.4

	return impact.ActionRecord{
		ID:                 core.ActionID(fmt.Sprintf("action_%04d", seq+1)),
		AccountID:          account,
		ActionType:         actionType,
		TargetText:         fmt.Sprintf("keyword_%04d", seq+1),
		MarketTag:          tag,
		IsValidated:        validated,
		DecisionImpact:     decisionImpact,
		ConfidenceWeight:   impact.Weight(confidenceWeight),
		BeforeSpend:        beforeSpend,
		BeforeSales:        beforeSales,
		ObservedAfterSpend: afterSpend,
		AfterSales:         afterSales,
		AppliedAt:          core.NewTimestamp(g.randomTimeInRange(g.config.StartDate, g.config.EndDate)),
	}
}

func (g *ActionGenerator) randomTimeInRange(start, end time.Time) time.Time {
	delta := end.Unix() - start.Unix()
	if delta <= 0 {
		return start
	}
	return time.Unix(start.Unix()+g.rng.Int63n(delta), 0).UTC()
}
