package valuation

import (
	"comprehensive_valuation/pkg/core/benchmark"
	"comprehensive_valuation/pkg/models"
)

// Fallback component multiples when the benchmark row carries none.
const (
	fallbackSaaSMultiple        = 8.0
	fallbackTransactionMultiple = 4.5
	fallbackMarketplaceMultiple = 6.0
	fallbackTraditionalMultiple = 2.0

	valueDriverPremiumCap = 3.0
)

// EstimateHybrid decomposes revenue into business-model components (SaaS,
// transactional, marketplace, traditional), values each at its own multiple,
// then applies industry value-driver premiums and the lifecycle multiplier.
func EstimateHybrid(in models.FinancialInput, bench benchmark.Benchmark, completeness float64) EstimatorResult {
	if in.Revenue <= 0 {
		return failure(MethodHybrid, "requires positive revenue")
	}

	mix := businessModelMix(in)

	multiples := map[string]float64{
		"saas":        pickMultiple(bench.EVRevenueMultiple, fallbackSaaSMultiple),
		"transaction": pickMultiple(bench.TransactionMultiple, fallbackTransactionMultiple),
		"marketplace": pickMultiple(bench.MarketplaceMultiple, fallbackMarketplaceMultiple),
		"traditional": pickMultiple(bench.EVRevenueMultiple, fallbackTraditionalMultiple),
	}

	details := &HybridDetails{
		Components:       map[string]HybridComponent{},
		BusinessModelMix: mix,
	}

	total := 0.0
	active := 0
	for name, weight := range mix {
		value := in.Revenue * multiples[name]
		weighted := value * weight
		details.Components[name] = HybridComponent{
			Value:         value,
			Weight:        weight,
			WeightedValue: weighted,
		}
		total += weighted
		if weight > 0.10 {
			active++
		}
	}

	details.ValueDriverPremium = valueDriverPremium(in, bench)
	details.LifecycleMultiplier = bench.LifecycleMultiplier(in.LifecycleStage)

	valuation := total * details.ValueDriverPremium * details.LifecycleMultiplier

	confidence := hybridConfidence(active, completeness)

	return EstimatorResult{
		Method:        MethodHybrid,
		Valuation:     valuation,
		Confidence:    confidence,
		Applicability: hybridApplicability(confidence, active),
		Hybrid:        details,
	}
}

// businessModelMix derives normalized revenue-mix weights from the disclosed
// component revenues. Each component weight is capped at 1 before the
// remainder goes to "traditional"; a company with no component disclosures is
// fully traditional.
func businessModelMix(in models.FinancialInput) map[string]float64 {
	saasRevenue := in.MRR * 12
	if in.SubscriptionRevenue > saasRevenue {
		saasRevenue = in.SubscriptionRevenue
	}

	saas := capFraction(saasRevenue / in.Revenue)
	transaction := capFraction(in.TransactionVolume * in.TakeRate / in.Revenue)
	marketplace := capFraction(in.MarketplaceGMV * in.MarketplaceTakeRate / in.Revenue)

	traditional := 1 - saas - transaction - marketplace
	if traditional < 0 {
		traditional = 0
	}

	mix := map[string]float64{
		"saas":        saas,
		"transaction": transaction,
		"marketplace": marketplace,
		"traditional": traditional,
	}

	sum := saas + transaction + marketplace + traditional
	if sum == 0 {
		mix["traditional"] = 1.0
		return mix
	}
	for name, w := range mix {
		mix[name] = w / sum
	}
	return mix
}

// valueDriverPremium compounds an uplift for each value driver the industry
// benchmark names, scaled by the company's 0-1 score for it. ESG applies
// unconditionally. Capped so stacked drivers cannot run away.
func valueDriverPremium(in models.FinancialInput, bench benchmark.Benchmark) float64 {
	premium := 1.0

	for _, driver := range bench.ValueDrivers {
		switch driver {
		case "proprietary_algorithms":
			premium *= 1 + in.IPPortfolioStrength*0.4
		case "network_effects":
			premium *= 1 + in.NetworkEffectScore*0.6
		case "regulatory_approval":
			premium *= 1 + in.RegulatoryApprovalScore*0.8
		case "clinical_evidence":
			premium *= 1 + in.ClinicalEvidenceScore*0.5
		case "regulatory_compliance":
			premium *= 1 + in.RegulatoryComplianceScore*0.3
		}
	}

	premium *= 1 + in.ESGScore*0.2

	if premium > valueDriverPremiumCap {
		premium = valueDriverPremiumCap
	}
	return premium
}

func hybridConfidence(activeComponents int, completeness float64) float64 {
	componentBonus := 0.05 * float64(activeComponents)
	if componentBonus > 0.15 {
		componentBonus = 0.15
	}
	confidence := 0.7 + componentBonus + completeness*0.2
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

func hybridApplicability(confidence float64, activeComponents int) float64 {
	diversity := 0.6
	if activeComponents >= 2 {
		diversity = 1.0
	}
	return confidence*0.85 + diversity*0.15
}

func pickMultiple(benchValue, fallback float64) float64 {
	if benchValue > 0 {
		return benchValue
	}
	return fallback
}

func capFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
