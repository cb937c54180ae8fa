// Package benchmark holds the industry valuation benchmark table: revenue and
// EBITDA multiples, risk factors, value drivers, and lifecycle multipliers per
// (industry, sub_industry) pair, with a single documented fallback record.
package benchmark

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"comprehensive_valuation/pkg/models"
)

// Benchmark is one row of the industry table.
type Benchmark struct {
	EVRevenueMultiple     float64 `yaml:"ev_revenue_multiple" json:"ev_revenue_multiple"`
	EVEBITDAMultiple      float64 `yaml:"ev_ebitda_multiple" json:"ev_ebitda_multiple"`
	ProfitMarginBenchmark float64 `yaml:"profit_margin_benchmark" json:"profit_margin_benchmark"`
	RiskFactor            float64 `yaml:"risk_factor" json:"risk_factor"`
	GrowthRateBenchmark   float64 `yaml:"growth_rate_benchmark" json:"growth_rate_benchmark"`

	// Optional component multiples for the hybrid estimator. Zero means
	// "use the named fallback" (see Multiples on the hybrid side).
	TransactionMultiple float64 `yaml:"transaction_multiple,omitempty" json:"transaction_multiple,omitempty"`
	MarketplaceMultiple float64 `yaml:"marketplace_multiple,omitempty" json:"marketplace_multiple,omitempty"`

	KeyMetrics   []string `yaml:"key_metrics,flow" json:"key_metrics"`
	ValueDrivers []string `yaml:"value_drivers,flow" json:"value_drivers"`

	LifecycleMultipliers map[models.LifecycleStage]float64 `yaml:"lifecycle_stage_multiplier" json:"lifecycle_stage_multiplier"`
}

// LifecycleMultiplier returns the stage multiplier, 1.0 when the stage is not
// in the table.
func (b Benchmark) LifecycleMultiplier(stage models.LifecycleStage) float64 {
	if m, ok := b.LifecycleMultipliers[stage]; ok {
		return m
	}
	return 1.0
}

// Key identifies a benchmark row.
type Key struct {
	Industry    string
	SubIndustry string
}

// Table is the full benchmark lookup. It is read-only after construction.
type Table struct {
	rows     map[Key]Benchmark
	fallback Benchmark
}

// Lookup returns the benchmark for the pair, already adjusted for current
// market conditions, falling back to the single generic record when the pair
// is unknown.
func (t *Table) Lookup(industry, subIndustry string) Benchmark {
	b, ok := t.rows[Key{industry, subIndustry}]
	if !ok {
		b = t.fallback
	}
	adj := marketAdjustments(industry, subIndustry)
	b.EVRevenueMultiple *= adj.RevenueMultiple
	b.EVEBITDAMultiple *= adj.EBITDAMultiple
	b.RiskFactor += adj.Risk
	return b
}

// Fallback exposes the generic record (unadjusted), mostly for inspection
// endpoints and tests.
func (t *Table) Fallback() Benchmark { return t.fallback }

// adjustment overlays current-cycle market conditions on the base multiples.
type adjustment struct {
	RevenueMultiple float64
	EBITDAMultiple  float64
	Risk            float64
}

// marketAdjustments encodes the 2025 cycle: mild compression from the 2024
// highs everywhere, with sector-specific exceptions for the segments the
// market is still paying up for.
func marketAdjustments(industry, subIndustry string) adjustment {
	base := adjustment{RevenueMultiple: 0.95, EBITDAMultiple: 0.92, Risk: 0.02}

	specific := map[Key]adjustment{
		{"technology", "ai_ml_platform"}:                         {1.25, 1.35, 0.05},
		{"technology", "cybersecurity"}:                          {1.15, 1.20, -0.02},
		{"technology", "fintech_payments"}:                       {0.85, 0.90, 0.08},
		{"healthcare_life_sciences", "digital_health_platform"}:  {1.20, 1.25, 0.02},
		{"healthcare_life_sciences", "biotech_drug_development"}: {1.45, 1.50, 0.10},
		{"energy_utilities", "renewable_energy_developer"}:       {1.30, 1.25, -0.05},
		{"energy_utilities", "energy_storage"}:                   {1.40, 1.35, 0.03},
	}
	if a, ok := specific[Key{industry, subIndustry}]; ok {
		return a
	}
	return base
}

func defaultLifecycle() map[models.LifecycleStage]float64 {
	return map[models.LifecycleStage]float64{
		models.StageStartup: 0.8,
		models.StageGrowth:  1.2,
		models.StageMature:  1.0,
		models.StageDecline: 0.6,
	}
}

// DefaultTable returns the built-in benchmark table. Rows can be overridden or
// extended from config/benchmarks.yaml via LoadYAML.
func DefaultTable() *Table {
	t := &Table{rows: map[Key]Benchmark{}}

	t.fallback = Benchmark{
		EVRevenueMultiple: 2.0, EVEBITDAMultiple: 10.0,
		ProfitMarginBenchmark: 0.10, RiskFactor: 0.20, GrowthRateBenchmark: 0.05,
		KeyMetrics:           []string{"revenue_growth", "customer_retention"},
		ValueDrivers:         []string{"market_position", "operational_efficiency"},
		LifecycleMultipliers: defaultLifecycle(),
	}

	t.rows[Key{"technology", "saas_enterprise"}] = Benchmark{
		EVRevenueMultiple: 12.5, EVEBITDAMultiple: 35.0,
		ProfitMarginBenchmark: 0.22, RiskFactor: 0.28, GrowthRateBenchmark: 0.35,
		KeyMetrics:   []string{"net_revenue_retention", "logo_retention", "expansion_revenue"},
		ValueDrivers: []string{"product_stickiness", "enterprise_adoption", "api_ecosystem"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 1.4, models.StageGrowth: 1.8, models.StageMature: 1.0, models.StageDecline: 0.4,
		},
	}
	t.rows[Key{"technology", "ai_ml_platform"}] = Benchmark{
		EVRevenueMultiple: 15.8, EVEBITDAMultiple: 42.0,
		ProfitMarginBenchmark: 0.18, RiskFactor: 0.45, GrowthRateBenchmark: 0.65,
		KeyMetrics:   []string{"model_accuracy", "data_volume", "training_efficiency"},
		ValueDrivers: []string{"proprietary_algorithms", "data_moats", "talent_concentration"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 1.8, models.StageGrowth: 2.2, models.StageMature: 1.0, models.StageDecline: 0.2,
		},
	}
	t.rows[Key{"technology", "cybersecurity"}] = Benchmark{
		EVRevenueMultiple: 9.2, EVEBITDAMultiple: 28.5,
		ProfitMarginBenchmark: 0.20, RiskFactor: 0.25, GrowthRateBenchmark: 0.28,
		KeyMetrics:   []string{"threat_detection_rate", "false_positive_rate", "response_time"},
		ValueDrivers: []string{"zero_day_protection", "compliance_coverage", "threat_intelligence"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 1.2, models.StageGrowth: 1.6, models.StageMature: 1.0, models.StageDecline: 0.5,
		},
	}
	t.rows[Key{"technology", "fintech_payments"}] = Benchmark{
		EVRevenueMultiple: 6.8, EVEBITDAMultiple: 22.0,
		ProfitMarginBenchmark: 0.15, RiskFactor: 0.35, GrowthRateBenchmark: 0.40,
		TransactionMultiple: 4.5,
		KeyMetrics:          []string{"transaction_volume", "take_rate", "processing_speed"},
		ValueDrivers:        []string{"regulatory_compliance", "fraud_prevention", "integration_ease"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 1.3, models.StageGrowth: 1.7, models.StageMature: 0.9, models.StageDecline: 0.3,
		},
	}
	t.rows[Key{"retail", "ecommerce_marketplace"}] = Benchmark{
		EVRevenueMultiple: 4.5, EVEBITDAMultiple: 18.2,
		ProfitMarginBenchmark: 0.12, RiskFactor: 0.32, GrowthRateBenchmark: 0.25,
		MarketplaceMultiple: 6.0,
		KeyMetrics:          []string{"gmv_growth", "take_rate", "customer_acquisition_cost"},
		ValueDrivers:        []string{"network_effects", "platform_stickiness", "data_monetization"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 1.2, models.StageGrowth: 1.5, models.StageMature: 0.9, models.StageDecline: 0.3,
		},
	}
	t.rows[Key{"retail", "gas_station"}] = Benchmark{
		EVRevenueMultiple: 0.8, EVEBITDAMultiple: 4.2,
		ProfitMarginBenchmark: 0.02, RiskFactor: 0.15, GrowthRateBenchmark: 0.03,
		KeyMetrics:   []string{"fuel_margin", "convenience_sales_ratio", "location_traffic"},
		ValueDrivers: []string{"location", "brand_affiliation", "environmental_compliance"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 0.7, models.StageGrowth: 1.0, models.StageMature: 0.9, models.StageDecline: 0.6,
		},
	}
	t.rows[Key{"retail", "luxury_retail"}] = Benchmark{
		EVRevenueMultiple: 3.2, EVEBITDAMultiple: 12.5,
		ProfitMarginBenchmark: 0.25, RiskFactor: 0.35, GrowthRateBenchmark: 0.08,
		KeyMetrics:   []string{"brand_equity", "customer_lifetime_value", "exclusivity_index"},
		ValueDrivers: []string{"brand_strength", "exclusivity", "experiential_retail"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 0.8, models.StageGrowth: 1.3, models.StageMature: 1.0, models.StageDecline: 0.4,
		},
	}
	t.rows[Key{"healthcare_life_sciences", "digital_health_platform"}] = Benchmark{
		EVRevenueMultiple: 8.5, EVEBITDAMultiple: 25.0,
		ProfitMarginBenchmark: 0.18, RiskFactor: 0.30, GrowthRateBenchmark: 0.45,
		KeyMetrics:   []string{"patient_outcomes", "provider_adoption", "clinical_validation"},
		ValueDrivers: []string{"clinical_evidence", "regulatory_approval", "care_pathway_integration"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 1.5, models.StageGrowth: 2.0, models.StageMature: 1.0, models.StageDecline: 0.4,
		},
	}
	t.rows[Key{"healthcare_life_sciences", "telemedicine"}] = Benchmark{
		EVRevenueMultiple: 6.2, EVEBITDAMultiple: 20.5,
		ProfitMarginBenchmark: 0.15, RiskFactor: 0.25, GrowthRateBenchmark: 0.35,
		KeyMetrics:   []string{"consultation_volume", "provider_network", "patient_satisfaction"},
		ValueDrivers: []string{"provider_quality", "technology_platform", "insurance_coverage"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 1.3, models.StageGrowth: 1.6, models.StageMature: 1.0, models.StageDecline: 0.6,
		},
	}
	t.rows[Key{"financial_services", "wealth_management"}] = Benchmark{
		EVRevenueMultiple: 3.8, EVEBITDAMultiple: 15.2,
		ProfitMarginBenchmark: 0.25, RiskFactor: 0.18, GrowthRateBenchmark: 0.08,
		KeyMetrics:   []string{"assets_under_management", "fee_compression", "client_retention"},
		ValueDrivers: []string{"client_relationships", "investment_performance", "regulatory_compliance"},
		LifecycleMultipliers: map[models.LifecycleStage]float64{
			models.StageStartup: 0.8, models.StageGrowth: 1.2, models.StageMature: 1.0, models.StageDecline: 0.7,
		},
	}

	return t
}

// yamlFile mirrors config/benchmarks.yaml: industry -> sub_industry -> row.
type yamlFile struct {
	Industries map[string]map[string]Benchmark `yaml:"industries"`
	Fallback   *Benchmark                      `yaml:"fallback"`
}

// LoadYAML overlays rows from a YAML file onto the built-in table. Missing
// file is not an error; the built-in table stands on its own.
func LoadYAML(path string) (*Table, error) {
	t := DefaultTable()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("failed to read benchmark file: %w", err)
	}

	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark file: %w", err)
	}

	for industry, subs := range f.Industries {
		for sub, row := range subs {
			if row.LifecycleMultipliers == nil {
				row.LifecycleMultipliers = defaultLifecycle()
			}
			t.rows[Key{industry, sub}] = row
		}
	}
	if f.Fallback != nil {
		if f.Fallback.LifecycleMultipliers == nil {
			f.Fallback.LifecycleMultipliers = defaultLifecycle()
		}
		t.fallback = *f.Fallback
	}
	return t, nil
}
