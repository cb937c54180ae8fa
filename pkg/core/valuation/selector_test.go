package valuation

import (
	"math"
	"strings"
	"testing"

	"comprehensive_valuation/pkg/core/quality"
	"comprehensive_valuation/pkg/models"
)

func TestSelectNoneWhenAllEstimatorsFail(t *testing.T) {
	results := []EstimatorResult{
		failure(MethodDCF, "requires positive revenue"),
		failure(MethodRecurringRevenue, "requires positive MRR"),
		failure(MethodHybrid, "requires positive revenue"),
		failure(MethodNarrativeAdjusted, "no base valuation available"),
	}

	rec := SelectMethod(results, quality.Report{}, models.FinancialInput{})
	if rec.Method != MethodNone {
		t.Errorf("Expected None recommendation, got %s", rec.Method)
	}
	if rec.ConfidenceTier != TierLow {
		t.Errorf("Expected Low tier, got %s", rec.ConfidenceTier)
	}
	if rec.Justification == "" {
		t.Error("None recommendation should carry an explanatory message")
	}
}

func TestSelectCompositeFormula(t *testing.T) {
	report := quality.Report{Overall: 0.6}
	results := []EstimatorResult{
		{Method: MethodDCF, Valuation: 100, Confidence: 0.8, Applicability: 0.7},
	}

	rec := SelectMethod(results, report, models.FinancialInput{})
	expected := 0.4*0.8 + 0.4*0.7 + 0.2*0.6
	if math.Abs(rec.CompositeScore-expected) > 1e-9 {
		t.Errorf("Composite: got %v, want %v", rec.CompositeScore, expected)
	}
}

func TestSelectStableUnderReordering(t *testing.T) {
	report := quality.Report{Overall: 0.5}
	a := EstimatorResult{Method: MethodDCF, Valuation: 100, Confidence: 0.9, Applicability: 0.9}
	b := EstimatorResult{Method: MethodRecurringRevenue, Valuation: 120, Confidence: 0.5, Applicability: 0.5}

	first := SelectMethod([]EstimatorResult{a, b}, report, models.FinancialInput{})
	second := SelectMethod([]EstimatorResult{b, a}, report, models.FinancialInput{})

	if first.Method != MethodDCF || second.Method != MethodDCF {
		t.Errorf("Strictly dominant method must win regardless of input order: %s / %s",
			first.Method, second.Method)
	}
}

func TestSelectTieBrokenByDeclarationOrder(t *testing.T) {
	report := quality.Report{Overall: 0.5}
	a := EstimatorResult{Method: MethodDCF, Valuation: 100, Confidence: 0.7, Applicability: 0.7}
	b := EstimatorResult{Method: MethodHybrid, Valuation: 100, Confidence: 0.7, Applicability: 0.7}

	rec := SelectMethod([]EstimatorResult{a, b}, report, models.FinancialInput{})
	if rec.Method != MethodDCF {
		t.Errorf("Tie should resolve to the earlier result, got %s", rec.Method)
	}
}

func TestSelectApplicabilityBonuses(t *testing.T) {
	in := models.FinancialInput{MRR: 100_000}
	report := quality.Report{Overall: 0.5, Predictability: 0.8, Completeness: 0.9}

	// Identical raw scores: bonuses decide. Recurring gets x1.3 (MRR above
	// materiality), DCF x1.2 (predictable history), hybrid x1.4 (complete),
	// narrative x1.2 (completeness > 0.8). Hybrid's bonus is largest.
	base := EstimatorResult{Valuation: 100, Confidence: 0.6, Applicability: 0.6}
	dcf, rr, hy, na := base, base, base, base
	dcf.Method = MethodDCF
	rr.Method = MethodRecurringRevenue
	hy.Method = MethodHybrid
	na.Method = MethodNarrativeAdjusted

	rec := SelectMethod([]EstimatorResult{dcf, rr, hy, na}, report, in)
	if rec.Method != MethodHybrid {
		t.Errorf("Hybrid's x1.4 bonus should win, got %s", rec.Method)
	}
	if len(rec.Ranking) != 4 {
		t.Fatalf("Expected 4 ranked methods, got %d", len(rec.Ranking))
	}
	if rec.Ranking[0].Method != MethodHybrid || rec.Ranking[1].Method != MethodRecurringRevenue {
		t.Errorf("Ranking order wrong: %v", rec.Ranking)
	}
}

func TestSelectBonusClampedAtOne(t *testing.T) {
	in := models.FinancialInput{MRR: 100_000}
	report := quality.Report{Overall: 1.0}
	r := EstimatorResult{Method: MethodRecurringRevenue, Valuation: 100, Confidence: 1.0, Applicability: 0.95}

	rec := SelectMethod([]EstimatorResult{r}, report, in)
	// 0.95 * 1.3 clamps to 1.0: composite = 0.4 + 0.4 + 0.2 = 1.0.
	if math.Abs(rec.CompositeScore-1.0) > 1e-9 {
		t.Errorf("Composite with clamped bonus: got %v, want 1.0", rec.CompositeScore)
	}
}

func TestConfidenceTiers(t *testing.T) {
	cases := []struct {
		score float64
		want  ConfidenceTier
	}{
		{0.85, TierHigh},
		{0.7, TierMedium},
		{0.6, TierLow},
		{0.3, TierLow},
	}
	for _, tc := range cases {
		if got := tierFor(tc.score); got != tc.want {
			t.Errorf("tierFor(%v): got %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestJustificationAgreementSentence(t *testing.T) {
	report := quality.Report{Overall: 0.5}
	winner := EstimatorResult{Method: MethodDCF, Valuation: 100, Confidence: 0.9, Applicability: 0.9}
	close := EstimatorResult{Method: MethodHybrid, Valuation: 95, Confidence: 0.5, Applicability: 0.5}

	rec := SelectMethod([]EstimatorResult{winner, close}, report, models.FinancialInput{})
	if !strings.Contains(rec.Justification, "reinforcing") {
		t.Errorf("Close runner-up should read as agreement: %q", rec.Justification)
	}

	far := close
	far.Valuation = 300
	rec = SelectMethod([]EstimatorResult{winner, far}, report, models.FinancialInput{})
	if !strings.Contains(rec.Justification, "diverges") {
		t.Errorf("Distant runner-up should read as divergence: %q", rec.Justification)
	}
}
