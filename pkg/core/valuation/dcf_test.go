package valuation

import (
	"math"
	"testing"

	"comprehensive_valuation/pkg/models"
)

func dcfInput() models.FinancialInput {
	return models.FinancialInput{
		Revenue:            10_000_000,
		GrowthRate:         0.20,
		EBITDAMargin:       0.20,
		DiscountRate:       0.12,
		TerminalGrowthRate: 0.03,
		MarketPosition:     models.DefaultMarketPosition,
		LifecycleStage:     models.StageMature,
	}
}

func TestDCFHandComputedFirstYear(t *testing.T) {
	in := dcfInput()
	r := EstimateDCF(in)

	if r.Failed() {
		t.Fatalf("Unexpected failure: %s", r.Err)
	}
	d := r.DCF
	if len(d.ProjectedRevenues) != 5 || len(d.ProjectedFCFs) != 5 {
		t.Fatalf("Expected 5 projected years, got %d/%d", len(d.ProjectedRevenues), len(d.ProjectedFCFs))
	}

	// Year 1: 10M * 1.2 = 12M revenue, 12M * 0.20 * 0.7 = 1.68M FCF.
	if math.Abs(d.ProjectedRevenues[0]-12_000_000) > 1 {
		t.Errorf("Year 1 revenue: got %v", d.ProjectedRevenues[0])
	}
	if math.Abs(d.ProjectedFCFs[0]-1_680_000) > 1 {
		t.Errorf("Year 1 FCF: got %v", d.ProjectedFCFs[0])
	}

	if math.Abs(d.EnterpriseValue-(d.PVOfFCF+d.PVOfTerminal)) > 1e-6 {
		t.Errorf("Enterprise value should be PV(FCF) + PV(terminal)")
	}
	if r.Valuation != d.EnterpriseValue {
		t.Errorf("Result valuation should equal enterprise value")
	}
}

func TestDCFTerminalValueGordonGrowth(t *testing.T) {
	in := dcfInput()
	r := EstimateDCF(in)
	d := r.DCF

	finalFCF := d.ProjectedFCFs[4]
	expectedTV := finalFCF * 1.03 / (0.12 - 0.03)
	if math.Abs(d.TerminalValue-expectedTV) > 1e-6 {
		t.Errorf("Terminal value: got %v, want %v", d.TerminalValue, expectedTV)
	}
	expectedPV := expectedTV / math.Pow(1.12, 5)
	if math.Abs(d.PVOfTerminal-expectedPV) > 1e-6 {
		t.Errorf("PV of terminal: got %v, want %v", d.PVOfTerminal, expectedPV)
	}
}

func TestDCFMonotonicInGrowth(t *testing.T) {
	low := dcfInput()
	low.GrowthRate = 0.10
	high := dcfInput()
	high.GrowthRate = 0.30

	vLow := EstimateDCF(low).Valuation
	vHigh := EstimateDCF(high).Valuation
	if vHigh <= vLow {
		t.Errorf("Higher growth should raise valuation: %v vs %v", vHigh, vLow)
	}
}

func TestDCFZeroRevenueFailsSoft(t *testing.T) {
	in := dcfInput()
	in.Revenue = 0

	r := EstimateDCF(in)
	if !r.Failed() {
		t.Fatal("Expected soft failure for zero revenue")
	}
	if r.Valuation != 0 || r.Confidence != 0 {
		t.Errorf("Failed estimate must carry zero valuation and confidence, got %v/%v",
			r.Valuation, r.Confidence)
	}
}

func TestDCFNegativeMarginFailsSoft(t *testing.T) {
	in := dcfInput()
	in.EBITDAMargin = -0.5

	if err := in.Validate(); err != nil {
		t.Fatalf("Negative margin within [-1, 1] should pass validation: %v", err)
	}

	r := EstimateDCF(in)
	if !r.Failed() {
		t.Fatalf("Expected soft failure for negative projected cash flow, got valuation %v", r.Valuation)
	}
	if r.Valuation != 0 || r.Confidence != 0 {
		t.Errorf("Failed estimate must carry zero valuation and confidence, got %v/%v",
			r.Valuation, r.Confidence)
	}
}

func TestDCFDivergenceGuardUpstream(t *testing.T) {
	in := dcfInput()
	in.DiscountRate = 0.02
	in.TerminalGrowthRate = 0.03

	if err := in.Validate(); err == nil {
		t.Error("Validate should reject discount_rate <= terminal_growth_rate before DCF runs")
	}
}

func TestDCFConfidenceRewardsPlausibleInputs(t *testing.T) {
	plausible := dcfInput()
	plausible.HistoricalRevenue = []float64{7_000_000, 8_400_000, 10_000_000}

	implausible := dcfInput()
	implausible.GrowthRate = 1.5
	implausible.EBITDAMargin = 0.9

	cp := EstimateDCF(plausible).Confidence
	ci := EstimateDCF(implausible).Confidence
	if cp <= ci {
		t.Errorf("Plausible inputs should score higher confidence: %v vs %v", cp, ci)
	}
	if math.Abs(cp-0.9) > 1e-9 {
		t.Errorf("All-plausible confidence should be 0.9, got %v", cp)
	}
}
