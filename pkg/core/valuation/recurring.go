package valuation

import (
	"comprehensive_valuation/pkg/models"
)

// EstimateRecurringRevenue values a subscription business on its unit
// economics: ARR, LTV/CAC, net revenue retention and Rule of 40 drive a
// multiple that starts at a 5.0x base and accrues bonuses per metric tier.
func EstimateRecurringRevenue(in models.FinancialInput) EstimatorResult {
	if in.MRR <= 0 {
		return failure(MethodRecurringRevenue, "requires positive MRR")
	}
	if in.ChurnRate == 0 {
		return failure(MethodRecurringRevenue, "division by zero churn rate")
	}

	details := &RecurringDetails{}

	details.ARR = in.MRR * 12
	details.LTV = (in.ARPU * in.GrossMargin) / in.ChurnRate

	if in.CAC > 0 {
		details.LTVCACRatio = details.LTV / in.CAC
		monthly := in.ARPU * in.GrossMargin
		if monthly > 0 {
			details.CACPaybackMonths = in.CAC / monthly
		}
	}

	details.NetRevenueRetention = 1 - in.ChurnRate + in.ExpansionRevenue/in.MRR
	details.RuleOf40 = in.GrowthRate*100 + in.GrossMargin*100

	details.Multiple = recurringMultiple(in, details)

	confidence := recurringConfidence(in, details)

	return EstimatorResult{
		Method:        MethodRecurringRevenue,
		Valuation:     details.ARR * details.Multiple,
		Confidence:    confidence,
		Applicability: recurringApplicability(in, confidence),
		Recurring:     details,
	}
}

// recurringMultiple builds the ARR multiple additively from metric tiers.
// Bonuses never subtract: a weak metric simply earns nothing.
func recurringMultiple(in models.FinancialInput, d *RecurringDetails) float64 {
	multiple := 5.0

	switch {
	case in.GrowthRate > 0.10:
		multiple += 3.0
	case in.GrowthRate > 0.05:
		multiple += 1.5
	}

	switch {
	case d.NetRevenueRetention > 1.10:
		multiple += 2.0
	case d.NetRevenueRetention > 1.00:
		multiple += 1.0
	}

	switch {
	case in.GrossMargin > 0.80:
		multiple += 2.0
	case in.GrossMargin > 0.70:
		multiple += 1.0
	}

	switch {
	case d.ARR > 100_000_000:
		multiple += 3.0
	case d.ARR > 10_000_000:
		multiple += 1.5
	}

	switch {
	case d.LTVCACRatio > 3:
		multiple += 2.0
	case d.LTVCACRatio > 2:
		multiple += 1.0
	}

	return multiple
}

func recurringConfidence(in models.FinancialInput, d *RecurringDetails) float64 {
	factors := []float64{}

	switch {
	case in.MRR > 100_000:
		factors = append(factors, 0.9)
	case in.MRR > 10_000:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.5)
	}

	switch {
	case in.ChurnRate < 0.05:
		factors = append(factors, 0.9)
	case in.ChurnRate < 0.10:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.4)
	}

	switch {
	case d.LTVCACRatio > 3:
		factors = append(factors, 0.9)
	case d.LTVCACRatio > 2:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.5)
	}

	switch {
	case d.RuleOf40 > 40:
		factors = append(factors, 0.9)
	case d.RuleOf40 > 20:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.5)
	}

	return mean(factors)
}

func recurringApplicability(in models.FinancialInput, confidence float64) float64 {
	bonus := 0.6
	if in.MRR > 50_000 {
		bonus = 1.0
	}
	return confidence*0.9 + bonus*0.1
}
