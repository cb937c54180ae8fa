// Package valuation implements the four valuation estimators, the method
// selection engine, and the orchestration that ties them together into a
// single comprehensive valuation pass.
package valuation

// Method is the closed set of valuation method identifiers. Behavior is keyed
// on this enum, never on display strings, so a typo cannot silently no-op a
// selector bonus.
type Method string

const (
	MethodDCF               Method = "dcf"
	MethodRecurringRevenue  Method = "recurring_revenue"
	MethodHybrid            Method = "hybrid"
	MethodNarrativeAdjusted Method = "narrative_adjusted"

	// MethodNone is the recommendation when no estimator produced a
	// positive valuation.
	MethodNone Method = "none"
)

// DisplayName returns the human-readable method name used in reports and
// justification text.
func (m Method) DisplayName() string {
	switch m {
	case MethodDCF:
		return "DCF Valuation"
	case MethodRecurringRevenue:
		return "Recurring Revenue Metrics"
	case MethodHybrid:
		return "Hybrid Multi-Model Valuation"
	case MethodNarrativeAdjusted:
		return "Narrative-Adjusted Valuation"
	default:
		return "None"
	}
}

// EstimatorResult is the outcome of one estimator.
//
// Invariant: Valuation == 0 implies Confidence == 0. A failed estimator is
// recorded as data (Err annotation), never raised, so the selector can reason
// about which methods worked.
type EstimatorResult struct {
	Method        Method  `json:"method"`
	Valuation     float64 `json:"valuation"`
	Confidence    float64 `json:"confidence_score"`
	Applicability float64 `json:"applicability_score"`

	DCF       *DCFDetails       `json:"dcf_details,omitempty"`
	Recurring *RecurringDetails `json:"recurring_details,omitempty"`
	Hybrid    *HybridDetails    `json:"hybrid_details,omitempty"`
	Narrative *NarrativeDetails `json:"narrative_details,omitempty"`

	Err string `json:"error,omitempty"`
}

// Failed reports whether the estimator could not produce a meaningful value.
func (r EstimatorResult) Failed() bool { return r.Err != "" }

// failure builds the zero-valuation, zero-confidence result for a method.
func failure(m Method, reason string) EstimatorResult {
	return EstimatorResult{Method: m, Err: reason}
}

// DCFDetails is the structured payload of the DCF estimator.
type DCFDetails struct {
	ProjectedRevenues []float64 `json:"projected_revenues"`
	ProjectedFCFs     []float64 `json:"projected_fcfs"`
	PVOfFCF           float64   `json:"present_value_fcf"`
	TerminalValue     float64   `json:"terminal_value"`
	PVOfTerminal      float64   `json:"present_value_terminal"`
	EnterpriseValue   float64   `json:"enterprise_value"`
}

// RecurringDetails is the unit-economics payload of the recurring-revenue
// estimator.
type RecurringDetails struct {
	ARR                 float64 `json:"arr"`
	LTV                 float64 `json:"ltv"`
	LTVCACRatio         float64 `json:"ltv_cac_ratio"`
	CACPaybackMonths    float64 `json:"cac_payback_months"`
	NetRevenueRetention float64 `json:"net_revenue_retention"`
	RuleOf40            float64 `json:"rule_of_40"`
	Multiple            float64 `json:"arr_multiple"`
}

// HybridComponent is one weighted business-model slice of the hybrid
// valuation.
type HybridComponent struct {
	Value         float64 `json:"value"`
	Weight        float64 `json:"weight"`
	WeightedValue float64 `json:"weighted_value"`
}

// HybridDetails is the decomposition payload of the hybrid estimator.
type HybridDetails struct {
	Components          map[string]HybridComponent `json:"component_breakdown"`
	ValueDriverPremium  float64                    `json:"value_driver_premium"`
	LifecycleMultiplier float64                    `json:"lifecycle_multiplier"`
	BusinessModelMix    map[string]float64         `json:"business_model_mix"`
}

// NarrativeDetails is the adjustment payload of the narrative-adjusted
// estimator.
type NarrativeDetails struct {
	BaseValuation       float64 `json:"base_valuation"`
	AdjustmentFactor    float64 `json:"adjustment_factor"`
	Commentary          string  `json:"commentary,omitempty"`
	NarrativeConfidence float64 `json:"narrative_confidence"`
}

// ConfidenceTier buckets a composite score for presentation.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "High"
	TierMedium ConfidenceTier = "Medium"
	TierLow    ConfidenceTier = "Low"
)

// MethodScore is one (method, composite score) pair in the selector ranking.
type MethodScore struct {
	Method Method  `json:"method"`
	Score  float64 `json:"composite_score"`
}

// Recommendation is the selector's final output: the single recommended
// method plus the evidence trail behind the choice.
type Recommendation struct {
	Method         Method         `json:"recommended_method"`
	Valuation      float64        `json:"recommended_valuation"`
	ConfidenceTier ConfidenceTier `json:"confidence_level"`
	CompositeScore float64        `json:"composite_score"`
	Ranking        []MethodScore  `json:"all_method_scores"`
	Justification  string         `json:"justification"`
}

// Range summarizes the spread across all estimators that produced a positive
// valuation.
type Range struct {
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}
