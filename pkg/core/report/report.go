// Package report renders a completed valuation into human-readable output:
// risk factors, five-year growth projections, and a Markdown report that can
// also be rendered to HTML.
package report

import (
	"fmt"
	"math"
	"strings"

	"comprehensive_valuation/pkg/core/market"
	"comprehensive_valuation/pkg/core/utils"
	"comprehensive_valuation/pkg/core/valuation"
	"comprehensive_valuation/pkg/models"
)

// RiskFactors flags the qualitative risks visible in the input metrics.
func RiskFactors(in models.FinancialInput, result *valuation.Output) []string {
	risks := []string{}

	if in.ChurnRate > 0.10 {
		risks = append(risks, "High customer churn rate")
	}
	if in.GrowthRate < 0.10 {
		risks = append(risks, "Low growth rate")
	}
	if in.CustomerCount > 0 && in.CustomerCount < 50 {
		risks = append(risks, "Small customer base")
	}
	if rr := result.ByMethod(valuation.MethodRecurringRevenue); rr != nil && rr.Recurring != nil {
		if in.CAC > 0 && rr.Recurring.LTVCACRatio > 0 && rr.Recurring.LTVCACRatio < 3 {
			risks = append(risks, "Poor LTV/CAC ratio")
		}
	}
	if in.MarketPosition == models.PositionChallenger || in.MarketPosition == models.PositionNiche {
		risks = append(risks, "Weak market position")
	}
	if result.Quality.Completeness < 0.5 {
		risks = append(risks, "Incomplete financial disclosures")
	}

	return risks
}

// Projection is one projected year.
type Projection struct {
	Year      string  `json:"year"`
	Revenue   float64 `json:"revenue"`
	Customers int     `json:"customers"`
	MRR       float64 `json:"mrr"`
}

// GrowthProjections projects revenue, customers, and MRR five years out.
// Customer growth nets out annualized churn.
func GrowthProjections(in models.FinancialInput) []Projection {
	netCustomerGrowth := in.GrowthRate - in.ChurnRate*12

	projections := make([]Projection, 5)
	for year := 1; year <= 5; year++ {
		p := Projection{
			Year:    fmt.Sprintf("Year %d", year),
			Revenue: in.Revenue * math.Pow(1+in.GrowthRate, float64(year)),
			MRR:     in.MRR * math.Pow(1+in.GrowthRate, float64(year)),
		}
		if in.CustomerCount > 0 {
			p.Customers = int(float64(in.CustomerCount) * math.Pow(1+netCustomerGrowth, float64(year)))
			if p.Customers < 0 {
				p.Customers = 0
			}
		}
		projections[year-1] = p
	}
	return projections
}

// Markdown renders the full valuation report as Markdown.
func Markdown(result *valuation.Output) string {
	in := result.Input
	var b strings.Builder

	fmt.Fprintf(&b, "# Valuation Report: %s\n\n", in.CompanyName)
	fmt.Fprintf(&b, "Industry: %s / %s\n\n", in.Industry, in.SubIndustry)

	fmt.Fprintf(&b, "## Recommendation\n\n")
	if result.Selected.Method == valuation.MethodNone {
		fmt.Fprintf(&b, "%s\n\n", result.Selected.Justification)
	} else {
		fmt.Fprintf(&b, "**%s** (%s confidence)\n\n",
			result.Selected.Method.DisplayName(), result.Selected.ConfidenceTier)
		fmt.Fprintf(&b, "Recommended valuation: **%s**\n\n", money(result.Selected.Valuation))
		fmt.Fprintf(&b, "%s\n\n", result.Selected.Justification)
	}

	fmt.Fprintf(&b, "## Valuation Range\n\n")
	fmt.Fprintf(&b, "| Low | Median | Average | High |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s |\n\n",
		money(result.ValRange.Low), money(result.ValRange.Median),
		money(result.ValRange.Average), money(result.ValRange.High))

	fmt.Fprintf(&b, "## Method Results\n\n")
	fmt.Fprintf(&b, "| Method | Valuation | Confidence |\n|---|---|---|\n")
	for _, r := range result.Results {
		val := money(r.Valuation)
		if r.Failed() {
			val = "unavailable (" + r.Err + ")"
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f |\n", r.Method.DisplayName(), val, r.Confidence)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Data Quality\n\n")
	q := result.Quality
	fmt.Fprintf(&b, "Overall %.2f (completeness %.2f, consistency %.2f, predictability %.2f)\n\n",
		q.Overall, q.Completeness, q.Consistency, q.Predictability)
	if len(q.MissingFields) > 0 {
		fmt.Fprintf(&b, "Missing fields: %s\n\n", strings.Join(q.MissingFields, ", "))
	}

	if risks := RiskFactors(in, result); len(risks) > 0 {
		fmt.Fprintf(&b, "## Risk Factors\n\n")
		for _, r := range risks {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Growth Projections\n\n")
	fmt.Fprintf(&b, "| Year | Revenue | Customers | MRR |\n|---|---|---|---|\n")
	for _, p := range GrowthProjections(in) {
		customers := "-"
		if p.Customers > 0 {
			customers = fmt.Sprintf("%d", p.Customers)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.Year, money(p.Revenue), customers, money(p.MRR))
	}
	b.WriteString("\n")

	if rr := result.ByMethod(valuation.MethodRecurringRevenue); rr != nil && rr.Recurring != nil {
		d := rr.Recurring
		comp := market.ComparePeers(d.ARR, in.GrowthRate, in.GrossMargin, d.NetRevenueRetention, nil)
		fmt.Fprintf(&b, "## Peer Benchmarking (%s bracket)\n\n", comp.IndustryRanges.Bracket)
		fmt.Fprintf(&b, "| Peer | Growth Δ | Margin Δ | NRR Δ |\n|---|---|---|---|\n")
		for _, p := range comp.Peers {
			fmt.Fprintf(&b, "| %s | %+.0f%% | %+.0f%% | %+.0f%% |\n",
				p.Peer.Company, p.GrowthRateDiff*100, p.GrossMarginDiff*100, p.NetRevenueRetentionDiff*100)
		}
		fmt.Fprintf(&b, "\nPosition vs bracket: growth %s, margin %s, retention %s\n\n",
			comp.Position["growth_rate"], comp.Position["gross_margin"], comp.Position["net_revenue_retention"])
	}

	if n := result.ByMethod(valuation.MethodNarrativeAdjusted); n != nil && n.Narrative != nil && n.Narrative.Commentary != "" {
		fmt.Fprintf(&b, "## Analyst Commentary\n\n%s\n", n.Narrative.Commentary)
	}

	return b.String()
}

// HTML renders the Markdown report to HTML.
func HTML(result *valuation.Output) (string, error) {
	return utils.RenderMarkdownHTML(Markdown(result))
}

// Text renders a compact plain-text summary for terminal output.
func Text(result *valuation.Output) string {
	var b strings.Builder
	in := result.Input

	fmt.Fprintf(&b, "Valuation: %s (%s/%s)\n", in.CompanyName, in.Industry, in.SubIndustry)
	for _, r := range result.Results {
		if r.Failed() {
			fmt.Fprintf(&b, "  %-32s unavailable: %s\n", r.Method.DisplayName(), r.Err)
			continue
		}
		fmt.Fprintf(&b, "  %-32s %-14s confidence %.2f\n", r.Method.DisplayName(), money(r.Valuation), r.Confidence)
	}
	if result.Selected.Method != valuation.MethodNone {
		fmt.Fprintf(&b, "Recommended: %s at %s (%s confidence)\n",
			result.Selected.Method.DisplayName(), money(result.Selected.Valuation), result.Selected.ConfidenceTier)
	} else {
		fmt.Fprintf(&b, "Recommended: none\n")
	}
	fmt.Fprintf(&b, "Range: %s - %s\n", money(result.ValRange.Low), money(result.ValRange.High))
	return b.String()
}

// money formats a dollar amount at report granularity.
func money(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
