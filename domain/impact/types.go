package impact

import (
	"adpulse/domain/core"
)

// MarketTag classifies the market condition an action was taken under.
// Downshift periods carry more auction noise, so their variance is inflated
// when computing confidence.
type MarketTag string

const (
	MarketNormal    MarketTag = "Normal"
	MarketDownshift MarketTag = "Market Downshift"
)

// ActionType identifies the kind of optimization an action applied.
type ActionType string

const (
	ActionBidDown    ActionType = "bid_down"
	ActionBidUp      ActionType = "bid_up"
	ActionPause      ActionType = "pause"
	ActionNegate     ActionType = "negate"
	ActionBudgetMove ActionType = "budget_move"
)

// ActionRecord is one optimization action with its before/after observation
// windows, as fetched from storage and normalized by the coercer.
//
// ConfidenceWeight is nil when the source never reported one; consumers
// default unreported weights to 0.5. An explicit zero weight is meaningful
// (a fully untrusted revenue estimate) and is kept distinct from missing.
type ActionRecord struct {
	ID                 core.ActionID  `json:"id" db:"id"`
	AccountID          core.AccountID `json:"account_id" db:"account_id"`
	ActionType         ActionType     `json:"action_type" db:"action_type"`
	TargetText         string         `json:"target_text" db:"target_text"`
	MarketTag          MarketTag      `json:"market_tag" db:"market_tag"`
	IsValidated        bool           `json:"is_validated" db:"is_validated"`
	DecisionImpact     float64        `json:"decision_impact" db:"decision_impact"`
	ConfidenceWeight   *float64       `json:"confidence_weight,omitempty" db:"confidence_weight"`
	BeforeSpend        float64        `json:"before_spend" db:"before_spend"`
	BeforeSales        float64        `json:"before_sales" db:"before_sales"`
	ObservedAfterSpend float64        `json:"observed_after_spend" db:"observed_after_spend"`
	AfterSales         float64        `json:"after_sales" db:"after_sales"`
	AppliedAt          core.Timestamp `json:"applied_at" db:"applied_at"`
}

// Weight wraps a reported confidence weight for the ActionRecord field.
func Weight(w float64) *float64 {
	return &w
}

// SpendAvoided is the counterfactual saving attributed to the action. It is
// upper bounded by the spend actually observed before the action, so it can
// never go negative.
func (a ActionRecord) SpendAvoided() float64 {
	avoided := a.BeforeSpend - a.ObservedAfterSpend
	if avoided < 0 {
		return 0
	}
	return avoided
}

// ROASBefore returns return-on-ad-spend over the before window.
func (a ActionRecord) ROASBefore() float64 {
	if a.BeforeSpend == 0 {
		return 0
	}
	return a.BeforeSales / a.BeforeSpend
}

// ROASAfter returns return-on-ad-spend over the after window.
func (a ActionRecord) ROASAfter() float64 {
	if a.ObservedAfterSpend == 0 {
		return 0
	}
	return a.AfterSales / a.ObservedAfterSpend
}

// ConfidenceLevel is the classification attached to an aggregate metric.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// Downgrade lowers a level by one step (High→Medium, Medium→Low).
func (l ConfidenceLevel) Downgrade() ConfidenceLevel {
	switch l {
	case ConfidenceHigh:
		return ConfidenceMedium
	case ConfidenceMedium:
		return ConfidenceLow
	}
	return ConfidenceLow
}

// ConfidenceResult describes the statistical reliability of an aggregated
// metric. Confidence is a classification layer only and never alters the
// underlying impact values.
type ConfidenceResult struct {
	Level       ConfidenceLevel `json:"confidence"`
	SignalRatio float64         `json:"signal_ratio"`
	TotalSigma  float64         `json:"total_sigma"`
	SampleSize  int             `json:"sample_size"`
}

// SpendAvoidedResult extends ConfidenceResult with the spend-avoided total
// the classification refers to.
type SpendAvoidedResult struct {
	ConfidenceResult
	TotalSpendAvoided float64 `json:"total_spend_avoided"`
}

// MetricSample is a named point estimate plus the statistics needed to
// score its reliability.
type MetricSample struct {
	Name       string  `json:"name"`
	Estimate   float64 `json:"estimate"`
	SampleSize int     `json:"sample_size"`
	Dispersion float64 `json:"dispersion"`
}

// TypeBreakdown aggregates impact per action type.
type TypeBreakdown struct {
	Count       int     `json:"count"`
	TotalImpact float64 `json:"total_impact"`
	WinRate     float64 `json:"win_rate"`
}

// Summary is the account-level impact rollup served to the dashboard.
type Summary struct {
	AccountID          core.AccountID               `json:"account_id"`
	TotalActions       int                          `json:"total_actions"`
	ValidatedActions   int                          `json:"validated_actions"`
	ImplementationRate float64                      `json:"implementation_rate"`
	ROASBefore         float64                      `json:"roas_before"`
	ROASAfter          float64                      `json:"roas_after"`
	ROASLiftPct        float64                      `json:"roas_lift_pct"`
	IncrementalRevenue float64                      `json:"incremental_revenue"`
	Winners            int                          `json:"winners"`
	Losers             int                          `json:"losers"`
	WinRate            float64                      `json:"win_rate"`
	PValue             float64                      `json:"p_value"`
	IsSignificant      bool                         `json:"is_significant"`
	ByActionType       map[ActionType]TypeBreakdown `json:"by_action_type"`
	Fingerprint        core.Fingerprint             `json:"fingerprint"`
	ComputedAt         core.Timestamp               `json:"computed_at"`
}
