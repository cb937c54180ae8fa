package valuation

import (
	"math"
	"testing"

	"comprehensive_valuation/pkg/core/benchmark"
	"comprehensive_valuation/pkg/models"
)

func TestHybridMixedModelDecomposition(t *testing.T) {
	in := models.FinancialInput{
		Revenue:             10_000_000,
		SubscriptionRevenue: 6_000_000,
		TransactionVolume:   100_000_000,
		TakeRate:            0.02,
	}
	// Empty benchmark row: every component uses its named fallback multiple.
	r := EstimateHybrid(in, benchmark.Benchmark{}, 0.5)
	if r.Failed() {
		t.Fatalf("Unexpected failure: %s", r.Err)
	}
	d := r.Hybrid

	if math.Abs(d.BusinessModelMix["saas"]-0.6) > 1e-9 {
		t.Errorf("SaaS weight: got %v, want 0.6", d.BusinessModelMix["saas"])
	}
	if math.Abs(d.BusinessModelMix["transaction"]-0.2) > 1e-9 {
		t.Errorf("Transaction weight: got %v, want 0.2", d.BusinessModelMix["transaction"])
	}
	if math.Abs(d.BusinessModelMix["traditional"]-0.2) > 1e-9 {
		t.Errorf("Traditional weight: got %v, want 0.2", d.BusinessModelMix["traditional"])
	}

	// 10M*8.0*0.6 + 10M*4.5*0.2 + 10M*2.0*0.2 = 61M, no premiums.
	if math.Abs(r.Valuation-61_000_000) > 1e-3 {
		t.Errorf("Valuation: got %v, want 61M", r.Valuation)
	}

	// Three components above 10%: component bonus caps at 0.15.
	// 0.7 + 0.15 + 0.5*0.2 = 0.95.
	if math.Abs(r.Confidence-0.95) > 1e-9 {
		t.Errorf("Confidence: got %v, want 0.95", r.Confidence)
	}
}

func TestHybridPureTraditionalWithoutDisclosures(t *testing.T) {
	in := models.FinancialInput{Revenue: 5_000_000}

	r := EstimateHybrid(in, benchmark.Benchmark{}, 0)
	d := r.Hybrid

	if math.Abs(d.BusinessModelMix["traditional"]-1.0) > 1e-9 {
		t.Errorf("No disclosures should be fully traditional, got %v", d.BusinessModelMix)
	}
	if math.Abs(r.Valuation-10_000_000) > 1e-3 {
		t.Errorf("Valuation: got %v, want 5M * 2.0", r.Valuation)
	}
}

func TestHybridValueDriverPremiumGatedByIndustry(t *testing.T) {
	in := models.FinancialInput{
		Revenue:            1_000_000,
		NetworkEffectScore: 1.0,
	}
	bench := benchmark.Benchmark{ValueDrivers: []string{"network_effects"}}

	with := EstimateHybrid(in, bench, 0)
	if math.Abs(with.Hybrid.ValueDriverPremium-1.6) > 1e-9 {
		t.Errorf("Network-effect premium: got %v, want 1.6", with.Hybrid.ValueDriverPremium)
	}

	// Same score, industry without the driver: no premium.
	without := EstimateHybrid(in, benchmark.Benchmark{}, 0)
	if math.Abs(without.Hybrid.ValueDriverPremium-1.0) > 1e-9 {
		t.Errorf("Ungated premium: got %v, want 1.0", without.Hybrid.ValueDriverPremium)
	}
}

func TestHybridPremiumsCompound(t *testing.T) {
	in := models.FinancialInput{
		Revenue:             1_000_000,
		IPPortfolioStrength: 0.5,
		NetworkEffectScore:  0.5,
	}
	bench := benchmark.Benchmark{ValueDrivers: []string{
		"proprietary_algorithms", "network_effects",
	}}

	r := EstimateHybrid(in, bench, 0)
	// 1.2 * 1.3 = 1.56, not the 1.5 a summed uplift would give.
	if math.Abs(r.Hybrid.ValueDriverPremium-1.56) > 1e-9 {
		t.Errorf("Compounded premium: got %v, want 1.56", r.Hybrid.ValueDriverPremium)
	}
}

func TestHybridPremiumCap(t *testing.T) {
	in := models.FinancialInput{
		Revenue:                   1_000_000,
		IPPortfolioStrength:       1.0,
		NetworkEffectScore:        1.0,
		RegulatoryApprovalScore:   1.0,
		ClinicalEvidenceScore:     1.0,
		RegulatoryComplianceScore: 1.0,
		ESGScore:                  1.0,
	}
	bench := benchmark.Benchmark{ValueDrivers: []string{
		"proprietary_algorithms", "network_effects", "regulatory_approval",
		"clinical_evidence", "regulatory_compliance",
	}}

	r := EstimateHybrid(in, bench, 0)
	if r.Hybrid.ValueDriverPremium != 3.0 {
		t.Errorf("Stacked premiums should cap at 3.0, got %v", r.Hybrid.ValueDriverPremium)
	}
}

func TestHybridLifecycleMultiplier(t *testing.T) {
	in := models.FinancialInput{
		Revenue:        1_000_000,
		LifecycleStage: models.StageGrowth,
	}
	bench := benchmark.Benchmark{
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageGrowth: 1.5,
		},
	}

	r := EstimateHybrid(in, bench, 0)
	if math.Abs(r.Hybrid.LifecycleMultiplier-1.5) > 1e-9 {
		t.Errorf("Lifecycle multiplier: got %v, want 1.5", r.Hybrid.LifecycleMultiplier)
	}
	if math.Abs(r.Valuation-3_000_000) > 1e-3 {
		t.Errorf("Valuation: got %v, want 1M * 2.0 * 1.5", r.Valuation)
	}
}

func TestHybridZeroRevenueFailsSoft(t *testing.T) {
	r := EstimateHybrid(models.FinancialInput{}, benchmark.Benchmark{}, 0)
	if !r.Failed() {
		t.Fatal("Expected soft failure for zero revenue")
	}
	if r.Valuation != 0 || r.Confidence != 0 {
		t.Errorf("Failed estimate must carry zeros, got %v/%v", r.Valuation, r.Confidence)
	}
}
