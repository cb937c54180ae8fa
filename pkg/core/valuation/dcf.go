package valuation

import (
	"math"

	"comprehensive_valuation/pkg/models"
)

const (
	projectionYears = 5

	// Fixed deduction standing in for taxes and maintenance capex. A
	// documented simplification, not a tax model.
	taxAndCapexProxy = 0.3
)

// EstimateDCF performs a 5-year discounted-cash-flow valuation with a Gordon
// growth terminal value.
//
// The divergence guard (discount rate > terminal growth) is enforced upstream
// by models.FinancialInput.Validate before any estimator runs; by the time we
// get here the denominator is strictly positive. A non-positive revenue fails
// soft: zero valuation, zero confidence, error annotation.
func EstimateDCF(in models.FinancialInput) EstimatorResult {
	if in.Revenue <= 0 {
		return failure(MethodDCF, "requires positive revenue")
	}

	details := &DCFDetails{}

	// Project revenue and free cash flow.
	current := in.Revenue
	for year := 0; year < projectionYears; year++ {
		current *= 1 + in.GrowthRate
		ebitda := current * in.EBITDAMargin
		fcf := ebitda * (1 - taxAndCapexProxy)
		details.ProjectedRevenues = append(details.ProjectedRevenues, current)
		details.ProjectedFCFs = append(details.ProjectedFCFs, fcf)
	}

	// Discount each year's FCF.
	for year, fcf := range details.ProjectedFCFs {
		details.PVOfFCF += fcf / math.Pow(1+in.DiscountRate, float64(year+1))
	}

	// Terminal value via perpetuity growth, discounted back N years.
	finalFCF := details.ProjectedFCFs[projectionYears-1]
	details.TerminalValue = finalFCF * (1 + in.TerminalGrowthRate) / (in.DiscountRate - in.TerminalGrowthRate)
	details.PVOfTerminal = details.TerminalValue / math.Pow(1+in.DiscountRate, projectionYears)

	details.EnterpriseValue = details.PVOfFCF + details.PVOfTerminal

	// Deeply negative margins project negative cash flow in every year, which
	// this model cannot price. Fail soft rather than emit a negative number.
	if details.EnterpriseValue <= 0 {
		return failure(MethodDCF, "requires positive projected cash flow")
	}

	confidence := dcfConfidence(in)

	return EstimatorResult{
		Method:        MethodDCF,
		Valuation:     details.EnterpriseValue,
		Confidence:    confidence,
		Applicability: dcfApplicability(confidence),
		DCF:           details,
	}
}

// dcfConfidence averages three plausibility heuristics: historical richness,
// growth-rate plausibility, and margin plausibility.
func dcfConfidence(in models.FinancialInput) float64 {
	factors := []float64{}

	if len(in.HistoricalRevenue) >= 3 {
		factors = append(factors, 0.9)
	} else {
		factors = append(factors, 0.6)
	}

	if in.GrowthRate >= 0.05 && in.GrowthRate <= 0.50 {
		factors = append(factors, 0.9)
	} else {
		factors = append(factors, 0.6)
	}

	if in.EBITDAMargin >= 0.10 && in.EBITDAMargin <= 0.40 {
		factors = append(factors, 0.9)
	} else {
		factors = append(factors, 0.6)
	}

	return mean(factors)
}

func dcfApplicability(confidence float64) float64 {
	bonus := 0.5
	if confidence > 0.7 {
		bonus = 1.0
	}
	return confidence*0.8 + bonus*0.2
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}
