package valuation

import (
	"context"
	"fmt"
	"sort"

	"comprehensive_valuation/pkg/core/benchmark"
	"comprehensive_valuation/pkg/core/quality"
	"comprehensive_valuation/pkg/models"
)

// Engine runs the full valuation pass: quality assessment, the independent
// estimators, method selection, and the cross-method range summary.
type Engine struct {
	Benchmarks *benchmark.Table
	Narrative  NarrativeProvider
}

// Output is the complete result of one valuation pass. It is request-scoped
// and deterministic for a given input and benchmark table; wall-clock fields
// like analysis timestamps belong to the transport layer, not here.
type Output struct {
	Input     models.FinancialInput `json:"-"`
	Quality   quality.Report        `json:"data_quality"`
	Results   []EstimatorResult     `json:"method_results"`
	Selected  Recommendation        `json:"recommendation"`
	ValRange  Range                 `json:"valuation_range"`
	Benchmark benchmark.Benchmark   `json:"industry_benchmark"`
}

// ByMethod returns the result for a method, nil when absent.
func (o *Output) ByMethod(m Method) *EstimatorResult {
	for i := range o.Results {
		if o.Results[i].Method == m {
			return &o.Results[i]
		}
	}
	return nil
}

// Run executes one valuation. The estimators are mutually independent and
// each costs sub-millisecond arithmetic, so they run sequentially; the only
// cancellable unit is the narrative provider call, which receives ctx.
func (e *Engine) Run(ctx context.Context, in models.FinancialInput, missing []string) (*Output, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fmt.Printf("[VALUATION] Starting comprehensive valuation for %s (%s/%s)\n",
		in.CompanyName, in.Industry, in.SubIndustry)

	report := quality.Analyze(in, missing)
	bench := e.Benchmarks.Lookup(in.Industry, in.SubIndustry)

	results := []EstimatorResult{
		EstimateDCF(in),
		EstimateRecurringRevenue(in),
		EstimateHybrid(in, bench, report.Completeness),
	}
	results = append(results, EstimateNarrativeAdjusted(ctx, in, results, e.Narrative))

	for _, r := range results {
		if r.Failed() {
			fmt.Printf("[WARNING] %s unavailable: %s\n", r.Method.DisplayName(), r.Err)
		}
	}

	selected := SelectMethod(results, report, in)

	return &Output{
		Input:     in,
		Quality:   report,
		Results:   results,
		Selected:  selected,
		ValRange:  summarizeRange(results),
		Benchmark: bench,
	}, nil
}

// summarizeRange spans the positive valuations across all methods.
func summarizeRange(results []EstimatorResult) Range {
	values := []float64{}
	for _, r := range results {
		if r.Valuation > 0 {
			values = append(values, r.Valuation)
		}
	}
	if len(values) == 0 {
		return Range{}
	}

	sort.Float64s(values)

	r := Range{
		Low:     values[0],
		High:    values[len(values)-1],
		Average: mean(values),
	}
	mid := len(values) / 2
	if len(values)%2 == 1 {
		r.Median = values[mid]
	} else {
		r.Median = (values[mid-1] + values[mid]) / 2
	}
	return r
}
