package valuation

import (
	"context"
	"fmt"

	"comprehensive_valuation/pkg/models"
)

// NarrativeProvider supplies qualitative commentary on a company and a 0-1
// confidence in that commentary. Implementations live in pkg/core/narrative;
// the LLM-backed one calls Gemini, the no-op one returns neutral output.
type NarrativeProvider interface {
	Summarize(ctx context.Context, in models.FinancialInput) (commentary string, confidence float64, err error)
}

const neutralNarrativeConfidence = 0.5

// EstimateNarrativeAdjusted starts from the mean of the quantitative
// estimates and tilts it by qualitative story factors: growth momentum,
// market position, and technology strength. The narrative provider only
// contributes commentary and a confidence input; a provider failure degrades
// to neutral rather than failing the estimate.
func EstimateNarrativeAdjusted(ctx context.Context, in models.FinancialInput, quantitative []EstimatorResult, provider NarrativeProvider) EstimatorResult {
	details := &NarrativeDetails{
		NarrativeConfidence: neutralNarrativeConfidence,
	}

	base, agreement := baseValuation(in, quantitative)
	details.BaseValuation = base
	if base <= 0 {
		return failure(MethodNarrativeAdjusted, "no base valuation available")
	}

	details.AdjustmentFactor = narrativeAdjustment(in)

	if provider != nil {
		commentary, confidence, err := provider.Summarize(ctx, in)
		if err != nil {
			fmt.Printf("[WARNING] Narrative provider failed: %v\n", err)
		} else {
			details.Commentary = commentary
			details.NarrativeConfidence = confidence
		}
	}

	confidence := mean([]float64{
		dataRichness(in),
		agreement,
		details.NarrativeConfidence,
	})

	return EstimatorResult{
		Method:        MethodNarrativeAdjusted,
		Valuation:     details.BaseValuation * details.AdjustmentFactor,
		Confidence:    confidence,
		Applicability: narrativeApplicability(in, confidence),
		Narrative:     details,
	}
}

// baseValuation averages the positive quantitative estimates; with none
// available it anchors on a coarse 5x revenue. The second return is the
// cross-method agreement score for the confidence blend.
func baseValuation(in models.FinancialInput, quantitative []EstimatorResult) (float64, float64) {
	values := []float64{}
	for _, r := range quantitative {
		if r.Valuation > 0 {
			values = append(values, r.Valuation)
		}
	}

	if len(values) == 0 {
		return in.Revenue * 5.0, 0.6
	}
	return mean(values), agreementScore(values)
}

// agreementScore tiers the relative spread (max-min)/max across the
// quantitative estimates. Fewer than two values means agreement is
// unmeasurable, scored 0.6.
func agreementScore(values []float64) float64 {
	if len(values) < 2 {
		return 0.6
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	spread := (hi - lo) / hi
	switch {
	case spread < 0.2:
		return 0.9
	case spread < 0.5:
		return 0.7
	default:
		return 0.5
	}
}

// narrativeAdjustment compounds the story multipliers: growth momentum,
// competitive position, technology strength.
func narrativeAdjustment(in models.FinancialInput) float64 {
	factor := 1.0

	switch {
	case in.GrowthRate > 0.30:
		factor *= 1.15
	case in.GrowthRate < 0.10:
		factor *= 0.90
	}

	switch in.MarketPosition {
	case models.PositionLeader:
		factor *= 1.10
	case models.PositionChallenger:
		factor *= 1.05
	case models.PositionNiche:
		factor *= 0.95
	}

	switch {
	case in.TechnologyScore >= 8:
		factor *= 1.10
	case in.TechnologyScore <= 3:
		factor *= 0.90
	}

	return factor
}

// dataRichness tiers how many substantive fields the input carries.
func dataRichness(in models.FinancialInput) float64 {
	switch n := populatedFieldCount(in); {
	case n >= 10:
		return 0.9
	case n >= 7:
		return 0.7
	default:
		return 0.5
	}
}

// populatedFieldCount counts caller-supplied fields only. Policy-defaulted
// values (growth, churn, margins) are excluded so a sparse request cannot
// score as data-rich.
func populatedFieldCount(in models.FinancialInput) int {
	defaulted := map[string]bool{}
	for _, name := range in.AppliedDefaults {
		defaulted[name] = true
	}

	n := 0
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"revenue", in.Revenue},
		{"growth_rate", in.GrowthRate},
		{"ebitda_margin", in.EBITDAMargin},
		{"mrr", in.MRR},
		{"arpu", in.ARPU},
		{"churn_rate", in.ChurnRate},
		{"cac", in.CAC},
		{"gross_margin", in.GrossMargin},
		{"expansion_revenue", in.ExpansionRevenue},
		{"subscription_revenue", in.SubscriptionRevenue},
		{"transaction_volume", in.TransactionVolume},
		{"marketplace_gmv", in.MarketplaceGMV},
	} {
		if f.value != 0 && !defaulted[f.name] {
			n++
		}
	}
	if in.CustomerCount > 0 {
		n++
	}
	if len(in.HistoricalRevenue) > 0 {
		n++
	}
	return n
}

func narrativeApplicability(in models.FinancialInput, confidence float64) float64 {
	richness := 0.6
	if populatedFieldCount(in) >= 8 {
		richness = 1.0
	}
	return confidence*0.85 + richness*0.15
}
