package valuation

import (
	"fmt"
	"math"
	"sort"

	"comprehensive_valuation/pkg/core/quality"
	"comprehensive_valuation/pkg/models"
)

// selectorMateriality is the MRR above which recurring revenue is considered
// the company's dominant story for selection purposes.
const selectorMateriality = 50_000

// SelectMethod scores every estimator that produced a positive valuation,
// ranks them, and returns the recommendation with generated justification.
//
// composite = 0.4*confidence + 0.4*applicability + 0.2*quality overall, where
// applicability first receives the method-specific situational bonus. Ranking
// uses a stable sort so ties resolve by declaration order, never map order.
func SelectMethod(results []EstimatorResult, report quality.Report, in models.FinancialInput) Recommendation {
	type scored struct {
		result EstimatorResult
		score  float64
	}

	candidates := []scored{}
	for _, r := range results {
		if r.Valuation <= 0 {
			continue
		}
		applicability := boostedApplicability(r, report, in)
		score := 0.4*r.Confidence + 0.4*applicability + 0.2*report.Overall
		candidates = append(candidates, scored{result: r, score: score})
	}

	if len(candidates) == 0 {
		return Recommendation{
			Method:         MethodNone,
			ConfidenceTier: TierLow,
			Justification:  "No valuation method produced a positive estimate; the input lacks the data every method requires.",
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	ranking := make([]MethodScore, len(candidates))
	for i, c := range candidates {
		ranking[i] = MethodScore{Method: c.result.Method, Score: c.score}
	}

	winner := candidates[0]

	rec := Recommendation{
		Method:         winner.result.Method,
		Valuation:      winner.result.Valuation,
		ConfidenceTier: tierFor(winner.score),
		CompositeScore: winner.score,
		Ranking:        ranking,
	}

	var runnerUp *EstimatorResult
	if len(candidates) > 1 {
		runnerUp = &candidates[1].result
	}
	rec.Justification = buildJustification(winner.result, runnerUp, report)

	return rec
}

// boostedApplicability applies the situational bonus for each method and
// clamps the result to 1.0 so a bonus cannot push a score past certainty.
func boostedApplicability(r EstimatorResult, report quality.Report, in models.FinancialInput) float64 {
	a := r.Applicability
	switch r.Method {
	case MethodDCF:
		if report.Predictability > 0.7 {
			a *= 1.2
		}
	case MethodRecurringRevenue:
		if in.MRR > selectorMateriality {
			a *= 1.3
		}
	case MethodHybrid:
		if report.Completeness > 0.7 {
			a *= 1.4
		}
	case MethodNarrativeAdjusted:
		if report.Completeness > 0.8 {
			a *= 1.2
		}
	}
	if a > 1.0 {
		a = 1.0
	}
	return a
}

func tierFor(score float64) ConfidenceTier {
	switch {
	case score > 0.8:
		return TierHigh
	case score > 0.6:
		return TierMedium
	default:
		return TierLow
	}
}

// buildJustification composes the method-specific rationale plus an
// agreement sentence against the runner-up.
func buildJustification(winner EstimatorResult, runnerUp *EstimatorResult, report quality.Report) string {
	text := methodRationale(winner, report)

	if runnerUp == nil {
		return text
	}

	variance := math.Abs(winner.Valuation-runnerUp.Valuation) / math.Max(winner.Valuation, runnerUp.Valuation)
	if variance < 0.15 {
		text += fmt.Sprintf(" %s arrives within %.0f%% of this estimate, reinforcing the result.",
			runnerUp.Method.DisplayName(), variance*100)
	} else {
		text += fmt.Sprintf(" %s diverges by %.0f%%, but %s retained the highest composite score.",
			runnerUp.Method.DisplayName(), variance*100, winner.Method.DisplayName())
	}
	return text
}

func methodRationale(winner EstimatorResult, report quality.Report) string {
	switch winner.Method {
	case MethodDCF:
		return fmt.Sprintf(
			"DCF Valuation recommended: historical revenue shows predictable performance (predictability %.2f), supporting projected cash flows.",
			report.Predictability)
	case MethodRecurringRevenue:
		if d := winner.Recurring; d != nil {
			return fmt.Sprintf(
				"Recurring Revenue Metrics recommended: ARR of $%.0f with a Rule of 40 score of %.0f supports an ARR-multiple approach.",
				d.ARR, d.RuleOf40)
		}
		return "Recurring Revenue Metrics recommended: subscription unit economics support an ARR-multiple approach."
	case MethodHybrid:
		if d := winner.Hybrid; d != nil {
			active := 0
			for _, c := range d.Components {
				if c.Weight > 0.10 {
					active++
				}
			}
			return fmt.Sprintf(
				"Hybrid Multi-Model Valuation recommended: %d material business-model components captured with complete disclosures (completeness %.2f).",
				active, report.Completeness)
		}
		return "Hybrid Multi-Model Valuation recommended: the revenue mix spans multiple business models."
	case MethodNarrativeAdjusted:
		return fmt.Sprintf(
			"Narrative-Adjusted Valuation recommended: rich qualitative signals and complete data (completeness %.2f) support a blended, story-adjusted estimate.",
			report.Completeness)
	default:
		return "No method rationale available."
	}
}
