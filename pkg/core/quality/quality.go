// Package quality scores a financial input record for completeness, internal
// consistency, and historical predictability. The report feeds the method
// selector; it never fails a valuation on its own.
package quality

import (
	"math"

	"comprehensive_valuation/pkg/models"
)

// Report is the data-quality assessment for one valuation request.
// Immutable once computed.
type Report struct {
	Completeness   float64  `json:"completeness"`
	Consistency    float64  `json:"consistency"`
	Predictability float64  `json:"predictability"`
	Volatility     float64  `json:"volatility"`
	Overall        float64  `json:"overall_score"`
	MissingFields  []string `json:"missing_fields"`
}

// Analyze is a pure, total function: missing fields degrade the score, they
// never fail the call.
//
// missing is the subset of models.CanonicalFields absent from the request
// (presence is judged before defaults are applied, so a policy default does
// not inflate completeness).
func Analyze(in models.FinancialInput, missing []string) Report {
	r := Report{MissingFields: missing}
	if r.MissingFields == nil {
		r.MissingFields = []string{}
	}

	r.Completeness = float64(len(models.CanonicalFields)-len(missing)) / float64(len(models.CanonicalFields))

	// Consistency: does reported MRR agree with ARPU x customers?
	r.Consistency = 1.0
	if in.MRR > 0 && in.ARPU > 0 && in.CustomerCount > 0 {
		expected := in.ARPU * float64(in.CustomerCount)
		r.Consistency = math.Min(in.MRR, expected) / math.Max(in.MRR, expected)
	}

	// Predictability: inverse of YoY growth volatility. Fewer than 3 points
	// means insufficient evidence, so both scores sit at the neutral 0.5
	// rather than rewarding or punishing the gap.
	r.Predictability = 0.5
	r.Volatility = 0.5
	if len(in.HistoricalRevenue) >= 3 {
		sigma := growthStdDev(in.HistoricalRevenue)
		r.Predictability = 1 - math.Min(sigma, 0.5)*2
		r.Volatility = math.Max(0, 1-sigma*2)
	}

	// Volatility is reported but kept out of the mean: it would double-count
	// the same signal as predictability.
	r.Overall = (r.Completeness + r.Consistency + r.Predictability) / 3
	return r
}

// growthStdDev returns the population standard deviation of year-over-year
// growth rates. Zero-revenue years are skipped to avoid dividing by zero.
func growthStdDev(revenues []float64) float64 {
	growth := []float64{}
	for i := 1; i < len(revenues); i++ {
		if revenues[i-1] != 0 {
			growth = append(growth, (revenues[i]-revenues[i-1])/revenues[i-1])
		}
	}
	if len(growth) < 2 {
		return 0
	}

	mean := 0.0
	for _, g := range growth {
		mean += g
	}
	mean /= float64(len(growth))

	variance := 0.0
	for _, g := range growth {
		variance += (g - mean) * (g - mean)
	}
	variance /= float64(len(growth))
	return math.Sqrt(variance)
}
