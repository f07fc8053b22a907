// Package confidence classifies the statistical reliability of aggregated
// impact metrics. It is a classification layer only: nothing here alters
// the impact values themselves.
package confidence

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"adpulse/domain/impact"
	"adpulse/internal/errors"
)

// Classification thresholds. Decision Impact uses the looser pair; Spend
// Avoided is a counterfactual and is held to the stricter one.
const (
	impactHighRatio   = 1.5
	impactMediumRatio = 0.8
	spendHighRatio    = 2.0
	spendMediumRatio  = 1.0

	// Market Downshift inflates per-action sigma on Decision Impact.
	downshiftSigmaMultiplier = 1.3

	// Auction variance factors for Spend Avoided.
	varianceNormal    = 0.15
	varianceDownshift = 0.25

	// Downgrade one level when this share of the total comes from
	// downshift periods.
	impactDownshiftShare = 0.4
	spendDownshiftShare  = 0.3
)

// Options tunes the sample-size gate for the High classification.
type Options struct {
	MinValidatedActions int
}

// DefaultImpactOptions gates High Decision Impact confidence at 30 actions.
func DefaultImpactOptions() Options {
	return Options{MinValidatedActions: 30}
}

// DefaultSpendAvoidedOptions gates High Spend Avoided confidence at 10 actions.
func DefaultSpendAvoidedOptions() Options {
	return Options{MinValidatedActions: 10}
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Score computes a generic bounded confidence score in [0, 1] for a point
// estimate with the given sample size and dispersion. The score grows with
// sample size and shrinks with dispersion via a normal-approximation:
// 2·Φ(|estimate|·√n / (1+dispersion)) − 1.
//
// Negative sampleSize or dispersion indicates a caller bug and fails with
// an INVALID_INPUT error; a zero sample size yields minimum confidence.
func Score(estimate float64, sampleSize int, dispersion float64) (float64, error) {
	if sampleSize < 0 {
		return 0, errors.InvalidInputf("sample size must be non-negative, got %d", sampleSize)
	}
	if dispersion < 0 {
		return 0, errors.InvalidInputf("dispersion must be non-negative, got %f", dispersion)
	}
	if math.IsNaN(estimate) || math.IsNaN(dispersion) {
		return 0, errors.InvalidInput("estimate and dispersion must not be NaN")
	}
	if sampleSize == 0 {
		return 0, nil
	}

	z := math.Abs(estimate) * math.Sqrt(float64(sampleSize)) / (1 + dispersion)
	return 2*stdNormal.CDF(z) - 1, nil
}

// ScoreSample scores a named metric sample.
func ScoreSample(sample impact.MetricSample) (float64, error) {
	score, err := Score(sample.Estimate, sample.SampleSize, sample.Dispersion)
	if err != nil {
		return 0, errors.Wrapf(err, "scoring metric %q", sample.Name)
	}
	return score, nil
}

// ComputeImpact classifies confidence in the aggregated Decision Impact of
// the validated actions. Per-action sigma is |impact|·(1−confidenceWeight),
// inflated ×1.3 under Market Downshift; the signal ratio is
// |totalImpact| / √(Σ sigma²).
func ComputeImpact(actions []impact.ActionRecord, opts Options) impact.ConfidenceResult {
	validated := filterValidated(actions)
	if len(validated) == 0 {
		return impact.ConfidenceResult{Level: impact.ConfidenceLow}
	}

	var totalImpact, varianceSum, downshiftImpact float64
	for _, action := range validated {
		totalImpact += action.DecisionImpact

		// Unreported weight: assume half-trusted. An explicit zero stands:
		// that action's revenue estimate carries full sigma.
		cw := 0.5
		if action.ConfidenceWeight != nil {
			cw = *action.ConfidenceWeight
		}
		sigma := math.Abs(action.DecisionImpact) * (1 - cw)

		if action.MarketTag == impact.MarketDownshift {
			sigma *= downshiftSigmaMultiplier
			downshiftImpact += math.Abs(action.DecisionImpact)
		}
		varianceSum += sigma * sigma
	}

	totalSigma := 0.0
	if varianceSum > 0 {
		totalSigma = math.Sqrt(varianceSum)
	}

	signalRatio := 0.0
	if totalSigma > 0 {
		signalRatio = math.Abs(totalImpact) / totalSigma
	}

	level := classify(signalRatio, len(validated), opts.MinValidatedActions, impactHighRatio, impactMediumRatio)

	if totalImpact != 0 && downshiftImpact/math.Abs(totalImpact) > impactDownshiftShare {
		level = level.Downgrade()
	}

	return impact.ConfidenceResult{
		Level:       level,
		SignalRatio: round2(signalRatio),
		TotalSigma:  round2(totalSigma),
		SampleSize:  len(validated),
	}
}

// ComputeSpendAvoided classifies confidence in the Spend Avoided summary.
// Spend avoided is a counterfactual upper bounded by the spend observed
// before the action, so the per-action uncertainty comes from auction
// variance rather than the revenue confidence weight, and the thresholds
// are stricter than the generic Decision Impact ones.
func ComputeSpendAvoided(actions []impact.ActionRecord, opts Options) impact.SpendAvoidedResult {
	validated := filterValidated(actions)
	if len(validated) == 0 {
		return impact.SpendAvoidedResult{
			ConfidenceResult: impact.ConfidenceResult{Level: impact.ConfidenceLow},
		}
	}

	var totalAvoided, varianceSum, downshiftAvoided float64
	validCount := 0

	for _, action := range validated {
		avoided := action.SpendAvoided()
		if avoided == 0 {
			continue
		}

		totalAvoided += avoided
		validCount++

		factor := varianceNormal
		if action.MarketTag == impact.MarketDownshift {
			factor = varianceDownshift
			downshiftAvoided += avoided
		}
		sigma := avoided * factor
		varianceSum += sigma * sigma
	}

	totalSigma := 0.0
	if varianceSum > 0 {
		totalSigma = math.Sqrt(varianceSum)
	}

	signalRatio := 0.0
	if totalSigma > 0 {
		signalRatio = totalAvoided / totalSigma
	}

	level := classify(signalRatio, validCount, opts.MinValidatedActions, spendHighRatio, spendMediumRatio)

	if totalAvoided > 0 && downshiftAvoided/totalAvoided > spendDownshiftShare {
		level = level.Downgrade()
	}

	return impact.SpendAvoidedResult{
		ConfidenceResult: impact.ConfidenceResult{
			Level:       level,
			SignalRatio: round2(signalRatio),
			TotalSigma:  round2(totalSigma),
			SampleSize:  validCount,
		},
		TotalSpendAvoided: round2(totalAvoided),
	}
}

func filterValidated(actions []impact.ActionRecord) []impact.ActionRecord {
	validated := make([]impact.ActionRecord, 0, len(actions))
	for _, action := range actions {
		if action.IsValidated {
			validated = append(validated, action)
		}
	}
	return validated
}

func classify(ratio float64, n, minN int, highRatio, mediumRatio float64) impact.ConfidenceLevel {
	switch {
	case ratio >= highRatio && n >= minN:
		return impact.ConfidenceHigh
	case ratio >= mediumRatio:
		return impact.ConfidenceMedium
	default:
		return impact.ConfidenceLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
