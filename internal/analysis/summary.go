// Package analysis aggregates normalized action records into the
// account-level impact summary the dashboard renders.
package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"adpulse/domain/core"
	"adpulse/domain/impact"
	"adpulse/internal"
)

// significanceAlpha is the two-sided threshold for calling a ROAS shift real.
const significanceAlpha = 0.05

// Summarizer rolls action records up into an impact.Summary.
type Summarizer struct {
	logger *internal.Logger
}

// NewSummarizer creates a summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{logger: internal.DefaultLogger.WithPrefix("analysis")}
}

// Summarize computes the full account rollup. Actions that were never
// validated count toward the implementation rate but are excluded from the
// ROAS comparison and the win/loss tally.
func (s *Summarizer) Summarize(account core.AccountID, actions []impact.ActionRecord) impact.Summary {
	summary := impact.Summary{
		AccountID:    account,
		TotalActions: len(actions),
		PValue:       1.0,
		ByActionType: make(map[impact.ActionType]impact.TypeBreakdown),
		ComputedAt:   core.Now(),
	}

	validated := make([]impact.ActionRecord, 0, len(actions))
	for _, action := range actions {
		if action.IsValidated {
			validated = append(validated, action)
		}
	}
	summary.ValidatedActions = len(validated)
	if len(actions) > 0 {
		summary.ImplementationRate = float64(len(validated)) / float64(len(actions))
	}

	if len(validated) == 0 {
		summary.Fingerprint = s.fingerprint(summary)
		return summary
	}

	var spendBefore, salesBefore, spendAfter, salesAfter float64
	roasBefore := make([]float64, 0, len(validated))
	roasAfter := make([]float64, 0, len(validated))

	for _, action := range validated {
		spendBefore += action.BeforeSpend
		salesBefore += action.BeforeSales
		spendAfter += action.ObservedAfterSpend
		salesAfter += action.AfterSales
		roasBefore = append(roasBefore, action.ROASBefore())
		roasAfter = append(roasAfter, action.ROASAfter())

		summary.IncrementalRevenue += action.DecisionImpact
		switch {
		case action.DecisionImpact > 0:
			summary.Winners++
		case action.DecisionImpact < 0:
			summary.Losers++
		}

		breakdown := summary.ByActionType[action.ActionType]
		breakdown.Count++
		breakdown.TotalImpact += action.DecisionImpact
		summary.ByActionType[action.ActionType] = breakdown
	}

	if spendBefore > 0 {
		summary.ROASBefore = salesBefore / spendBefore
	}
	if spendAfter > 0 {
		summary.ROASAfter = salesAfter / spendAfter
	}
	if summary.ROASBefore > 0 {
		summary.ROASLiftPct = (summary.ROASAfter - summary.ROASBefore) / summary.ROASBefore * 100
	}

	if decided := summary.Winners + summary.Losers; decided > 0 {
		summary.WinRate = float64(summary.Winners) / float64(decided)
	}
	for actionType, breakdown := range summary.ByActionType {
		wins := 0
		for _, action := range validated {
			if action.ActionType == actionType && action.DecisionImpact > 0 {
				wins++
			}
		}
		breakdown.WinRate = float64(wins) / float64(breakdown.Count)
		summary.ByActionType[actionType] = breakdown
	}

	summary.PValue = welchPValue(roasBefore, roasAfter)
	summary.IsSignificant = summary.PValue < significanceAlpha

	summary.Fingerprint = s.fingerprint(summary)

	s.logger.Debug("account %s: %d/%d validated, lift %.1f%%, p=%.4f",
		account, summary.ValidatedActions, summary.TotalActions,
		summary.ROASLiftPct, summary.PValue)

	return summary
}

func (s *Summarizer) fingerprint(summary impact.Summary) core.Fingerprint {
	return core.ComputeFingerprint(summary.AccountID, map[string]float64{
		"total_actions":       float64(summary.TotalActions),
		"validated_actions":   float64(summary.ValidatedActions),
		"roas_before":         summary.ROASBefore,
		"roas_after":          summary.ROASAfter,
		"incremental_revenue": summary.IncrementalRevenue,
		"winners":             float64(summary.Winners),
		"losers":              float64(summary.Losers),
	})
}

// welchPValue runs Welch's t-test between the before and after ROAS samples
// and returns the two-sided p-value. Degenerate inputs (tiny samples, zero
// variance in both groups) report 1.0 — no evidence of a shift.
func welchPValue(before, after []float64) float64 {
	n1 := float64(len(before))
	n2 := float64(len(after))
	if n1 < 2 || n2 < 2 {
		return 1.0
	}

	mean1, _ := stats.Mean(before)
	mean2, _ := stats.Mean(after)
	var1, _ := stats.SampleVariance(before)
	var2, _ := stats.SampleVariance(after)

	se := math.Sqrt(var1/n1 + var2/n2)
	if se == 0 {
		return 1.0
	}
	tStat := (mean1 - mean2) / se

	// Welch-Satterthwaite degrees of freedom
	df := math.Pow(var1/n1+var2/n2, 2) /
		(math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))
	if df <= 0 || math.IsNaN(df) {
		return 1.0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - tDist.CDF(math.Abs(tStat)))
}
