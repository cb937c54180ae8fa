// Package models defines the request-scoped value objects shared by the
// valuation engine: the raw JSON request, the resolved financial input, and
// the defaulting/validation policy at the external boundary.
//
// Convention: every rate (growth, churn, margins, discount) is a 0-1 fraction
// everywhere inside the module. The JSON boundary accepts fractions only;
// callers sending 35 for 35% get a validation error, not a silent divide.
package models

import "fmt"

// MarketPosition is the qualitative competitive standing of the company.
type MarketPosition string

const (
	PositionLeader     MarketPosition = "leader"
	PositionChallenger MarketPosition = "challenger"
	PositionNiche      MarketPosition = "niche"
	PositionAverage    MarketPosition = "average"
)

// LifecycleStage describes where the company sits on the maturity curve.
type LifecycleStage string

const (
	StageStartup LifecycleStage = "startup"
	StageGrowth  LifecycleStage = "growth"
	StageMature  LifecycleStage = "mature"
	StageDecline LifecycleStage = "decline"
)

// Business-policy defaults applied when a field is absent from the request.
// These are surfaced back to the caller (AppliedDefaults) so defaulted values
// stay distinguishable from user-supplied ones.
const (
	DefaultGrowthRate         = 0.20
	DefaultGrossMargin        = 0.70
	DefaultChurnRate          = 0.05
	DefaultEBITDAMargin       = 0.15
	DefaultDiscountRate       = 0.12
	DefaultTerminalGrowth     = 0.03
	DefaultSupportCost        = 10.0
	DefaultTechnologyScore    = 5.0
	DefaultMarketPosition     = PositionAverage
	DefaultValueDriverScore   = 0.5
	DefaultTakeRate           = 0.03
	DefaultMarketplaceTakeRate = 0.08
)

// ValuationRequest is the raw JSON request body. Defaultable fields decode as
// pointers so "absent" and "zero" stay distinguishable until defaults are
// applied by ApplyDefaults.
type ValuationRequest struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	SubIndustry string `json:"sub_industry"`

	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	Employees int     `json:"employees"`

	GrowthRate         *float64 `json:"growth_rate"`
	EBITDAMargin       *float64 `json:"ebitda_margin"`
	DiscountRate       *float64 `json:"discount_rate"`
	TerminalGrowthRate *float64 `json:"terminal_growth_rate"`

	MRR                    *float64 `json:"mrr"`
	ARPU                   *float64 `json:"arpu"`
	CustomerCount          *int     `json:"customer_count"`
	ChurnRate              *float64 `json:"churn_rate"`
	CAC                    *float64 `json:"cac"`
	GrossMargin            *float64 `json:"gross_margin"`
	ExpansionRevenue       float64  `json:"expansion_revenue"`
	SupportCostPerCustomer *float64 `json:"support_cost_per_customer"`

	MarketPosition  *MarketPosition `json:"market_position"`
	TechnologyScore *float64        `json:"technology_score"`
	LifecycleStage  LifecycleStage  `json:"lifecycle_stage"`

	// Chronological annual revenues, oldest first.
	HistoricalRevenue []float64 `json:"historical_revenue"`

	// Business-model mix disclosures (hybrid estimator).
	SubscriptionRevenue float64  `json:"subscription_revenue"`
	TransactionVolume   float64  `json:"transaction_volume"`
	TakeRate            *float64 `json:"take_rate"`
	MarketplaceGMV      float64  `json:"marketplace_gmv"`
	MarketplaceTakeRate *float64 `json:"marketplace_take_rate"`

	// Value-driver scores, all 0-1 scales.
	IPPortfolioStrength       *float64 `json:"ip_portfolio_strength"`
	NetworkEffectScore        *float64 `json:"network_effect_score"`
	RegulatoryApprovalScore   *float64 `json:"regulatory_approval_score"`
	ClinicalEvidenceScore     *float64 `json:"clinical_evidence_score"`
	RegulatoryComplianceScore *float64 `json:"regulatory_compliance_score"`
	ESGScore                  *float64 `json:"esg_score"`
}

// FinancialInput is the fully-resolved input record the estimators consume.
// All defaults are applied; AppliedDefaults lists which field names came from
// policy defaults rather than the caller.
type FinancialInput struct {
	CompanyName string
	Industry    string
	SubIndustry string

	Revenue   float64
	Expenses  float64
	Employees int

	GrowthRate         float64
	EBITDAMargin       float64
	DiscountRate       float64
	TerminalGrowthRate float64

	MRR                    float64
	ARPU                   float64
	CustomerCount          int
	ChurnRate              float64
	CAC                    float64
	GrossMargin            float64
	ExpansionRevenue       float64
	SupportCostPerCustomer float64

	MarketPosition  MarketPosition
	TechnologyScore float64
	LifecycleStage  LifecycleStage

	HistoricalRevenue []float64

	SubscriptionRevenue float64
	TransactionVolume   float64
	TakeRate            float64
	MarketplaceGMV      float64
	MarketplaceTakeRate float64

	IPPortfolioStrength       float64
	NetworkEffectScore        float64
	RegulatoryApprovalScore   float64
	ClinicalEvidenceScore     float64
	RegulatoryComplianceScore float64
	ESGScore                  float64

	AppliedDefaults []string
}

// CanonicalFields is the fixed field list the data-quality completeness score
// is computed over.
var CanonicalFields = []string{
	"revenue", "growth_rate", "ebitda_margin", "mrr", "arpu",
	"churn_rate", "cac", "gross_margin", "customer_count",
}

// MissingFields reports which canonical fields were absent from the request.
// Revenue is always decoded as a value, so only a zero revenue counts as missing.
func (r *ValuationRequest) MissingFields() []string {
	missing := []string{}
	if r.Revenue == 0 {
		missing = append(missing, "revenue")
	}
	if r.GrowthRate == nil {
		missing = append(missing, "growth_rate")
	}
	if r.EBITDAMargin == nil {
		missing = append(missing, "ebitda_margin")
	}
	if r.MRR == nil {
		missing = append(missing, "mrr")
	}
	if r.ARPU == nil {
		missing = append(missing, "arpu")
	}
	if r.ChurnRate == nil {
		missing = append(missing, "churn_rate")
	}
	if r.CAC == nil {
		missing = append(missing, "cac")
	}
	if r.GrossMargin == nil {
		missing = append(missing, "gross_margin")
	}
	if r.CustomerCount == nil {
		missing = append(missing, "customer_count")
	}
	return missing
}

func resolveFloat(p *float64, def float64, name string, applied *[]string) float64 {
	if p != nil {
		return *p
	}
	*applied = append(*applied, name)
	return def
}

// ApplyDefaults resolves the raw request into a FinancialInput, filling absent
// fields from the documented business-policy defaults and recording each one.
func (r *ValuationRequest) ApplyDefaults() FinancialInput {
	applied := []string{}

	in := FinancialInput{
		CompanyName:       r.CompanyName,
		Industry:          r.Industry,
		SubIndustry:       r.SubIndustry,
		Revenue:           r.Revenue,
		Expenses:          r.Expenses,
		Employees:         r.Employees,
		ExpansionRevenue:  r.ExpansionRevenue,
		HistoricalRevenue: r.HistoricalRevenue,

		SubscriptionRevenue: r.SubscriptionRevenue,
		TransactionVolume:   r.TransactionVolume,
		MarketplaceGMV:      r.MarketplaceGMV,
	}

	in.GrowthRate = resolveFloat(r.GrowthRate, DefaultGrowthRate, "growth_rate", &applied)
	in.EBITDAMargin = resolveFloat(r.EBITDAMargin, DefaultEBITDAMargin, "ebitda_margin", &applied)
	in.DiscountRate = resolveFloat(r.DiscountRate, DefaultDiscountRate, "discount_rate", &applied)
	in.TerminalGrowthRate = resolveFloat(r.TerminalGrowthRate, DefaultTerminalGrowth, "terminal_growth_rate", &applied)
	in.ChurnRate = resolveFloat(r.ChurnRate, DefaultChurnRate, "churn_rate", &applied)
	in.GrossMargin = resolveFloat(r.GrossMargin, DefaultGrossMargin, "gross_margin", &applied)
	in.SupportCostPerCustomer = resolveFloat(r.SupportCostPerCustomer, DefaultSupportCost, "support_cost_per_customer", &applied)
	in.TechnologyScore = resolveFloat(r.TechnologyScore, DefaultTechnologyScore, "technology_score", &applied)

	if r.MRR != nil {
		in.MRR = *r.MRR
	}
	if r.ARPU != nil {
		in.ARPU = *r.ARPU
	}
	if r.CustomerCount != nil {
		in.CustomerCount = *r.CustomerCount
	}
	if r.CAC != nil {
		in.CAC = *r.CAC
	}

	if r.MarketPosition != nil {
		in.MarketPosition = *r.MarketPosition
	} else {
		in.MarketPosition = DefaultMarketPosition
		applied = append(applied, "market_position")
	}
	if r.LifecycleStage != "" {
		in.LifecycleStage = r.LifecycleStage
	} else {
		in.LifecycleStage = StageMature
		applied = append(applied, "lifecycle_stage")
	}

	in.TakeRate = resolveFloat(r.TakeRate, DefaultTakeRate, "take_rate", &applied)
	in.MarketplaceTakeRate = resolveFloat(r.MarketplaceTakeRate, DefaultMarketplaceTakeRate, "marketplace_take_rate", &applied)

	in.IPPortfolioStrength = resolveFloat(r.IPPortfolioStrength, DefaultValueDriverScore, "ip_portfolio_strength", &applied)
	in.NetworkEffectScore = resolveFloat(r.NetworkEffectScore, DefaultValueDriverScore, "network_effect_score", &applied)
	in.RegulatoryApprovalScore = resolveFloat(r.RegulatoryApprovalScore, DefaultValueDriverScore, "regulatory_approval_score", &applied)
	in.ClinicalEvidenceScore = resolveFloat(r.ClinicalEvidenceScore, DefaultValueDriverScore, "clinical_evidence_score", &applied)
	in.RegulatoryComplianceScore = resolveFloat(r.RegulatoryComplianceScore, DefaultValueDriverScore, "regulatory_compliance_score", &applied)
	in.ESGScore = resolveFloat(r.ESGScore, DefaultValueDriverScore, "esg_score", &applied)

	in.AppliedDefaults = applied
	return in
}

// ValidationError is a fatal input error surfaced to the caller before any
// estimator runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Validate enforces the hard input invariants. Estimator-level shortcomings
// (zero MRR, zero churn) are NOT errors here; they fail soft inside the
// affected estimator.
func (in *FinancialInput) Validate() error {
	if in.Revenue < 0 {
		return &ValidationError{Field: "revenue", Message: "must be >= 0"}
	}
	if in.ChurnRate < 0 || in.ChurnRate > 1 {
		return &ValidationError{Field: "churn_rate", Message: "must be a 0-1 fraction"}
	}
	if in.GrossMargin < 0 || in.GrossMargin > 1 {
		return &ValidationError{Field: "gross_margin", Message: "must be a 0-1 fraction"}
	}
	if in.EBITDAMargin < -1 || in.EBITDAMargin > 1 {
		return &ValidationError{Field: "ebitda_margin", Message: "must be a fraction between -1 and 1"}
	}
	if in.GrowthRate < -1 || in.GrowthRate > 5 {
		return &ValidationError{Field: "growth_rate", Message: "must be a fraction between -1 and 5"}
	}
	if in.DiscountRate <= in.TerminalGrowthRate {
		return &ValidationError{
			Field:   "discount_rate",
			Message: "must exceed terminal_growth_rate or the terminal value diverges",
		}
	}
	if in.TechnologyScore < 0 || in.TechnologyScore > 10 {
		return &ValidationError{Field: "technology_score", Message: "must be on a 0-10 scale"}
	}
	switch in.MarketPosition {
	case PositionLeader, PositionChallenger, PositionNiche, PositionAverage:
	default:
		return &ValidationError{Field: "market_position", Message: "must be one of leader, challenger, niche, average"}
	}
	switch in.LifecycleStage {
	case StageStartup, StageGrowth, StageMature, StageDecline:
	default:
		return &ValidationError{Field: "lifecycle_stage", Message: "must be one of startup, growth, mature, decline"}
	}
	return nil
}
