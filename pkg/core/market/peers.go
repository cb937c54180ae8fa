// Package market holds public-peer comparison data and helpers: a built-in
// peer table for SaaS communications companies, revenue-bracket industry
// ranges, and a parser for peer comp tables published as HTML.
package market

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Peer is one public comparable company.
type Peer struct {
	Company             string  `json:"company"`
	MRRMultiple         float64 `json:"mrr_multiple"`
	ARRMultiple         float64 `json:"arr_multiple"`
	GrowthRate          float64 `json:"growth_rate"`
	GrossMargin         float64 `json:"gross_margin"`
	NetRevenueRetention float64 `json:"net_revenue_retention"`
	RuleOf40            float64 `json:"rule_of_40"`
}

// BuiltinPeers returns the 2025 public comparables set.
func BuiltinPeers() []Peer {
	return []Peer{
		{"RingCentral", 15.2, 12.8, 0.32, 0.82, 1.15, 45.2},
		{"Vonage", 12.5, 10.2, 0.25, 0.78, 1.12, 38.5},
		{"8x8", 11.8, 9.5, 0.22, 0.75, 1.08, 35.2},
		{"Five9", 14.5, 11.8, 0.28, 0.80, 1.13, 42.8},
	}
}

// BracketRange holds the industry-average metric ranges for one revenue
// bracket.
type BracketRange struct {
	Bracket             string     `json:"bracket"`
	MRRMultiple         [2]float64 `json:"mrr_multiple_range"`
	GrowthRate          [2]float64 `json:"growth_rate_range"`
	GrossMargin         [2]float64 `json:"gross_margin_range"`
	NetRevenueRetention [2]float64 `json:"net_revenue_retention_range"`
}

// RevenueBracket buckets a company by ARR.
func RevenueBracket(arr float64) string {
	switch {
	case arr < 10_000_000:
		return "<$10M"
	case arr < 50_000_000:
		return "$10M-$50M"
	default:
		return "$50M+"
	}
}

// BracketRanges returns the industry-average ranges for an ARR's bracket.
func BracketRanges(arr float64) BracketRange {
	switch RevenueBracket(arr) {
	case "<$10M":
		return BracketRange{
			Bracket:             "<$10M",
			MRRMultiple:         [2]float64{8, 12},
			GrowthRate:          [2]float64{0.30, 0.50},
			GrossMargin:         [2]float64{0.65, 0.75},
			NetRevenueRetention: [2]float64{1.05, 1.15},
		}
	case "$10M-$50M":
		return BracketRange{
			Bracket:             "$10M-$50M",
			MRRMultiple:         [2]float64{10, 14},
			GrowthRate:          [2]float64{0.25, 0.40},
			GrossMargin:         [2]float64{0.70, 0.80},
			NetRevenueRetention: [2]float64{1.08, 1.18},
		}
	default:
		return BracketRange{
			Bracket:             "$50M+",
			MRRMultiple:         [2]float64{12, 16},
			GrowthRate:          [2]float64{0.20, 0.35},
			GrossMargin:         [2]float64{0.75, 0.85},
			NetRevenueRetention: [2]float64{1.10, 1.20},
		}
	}
}

// PeerDelta is the company's metric deltas against one peer.
type PeerDelta struct {
	Peer                    Peer    `json:"peer"`
	GrowthRateDiff          float64 `json:"growth_rate_diff"`
	GrossMarginDiff         float64 `json:"gross_margin_diff"`
	NetRevenueRetentionDiff float64 `json:"net_revenue_retention_diff"`
}

// Comparison is the full peer-comparison output.
type Comparison struct {
	Peers          []PeerDelta       `json:"peer_comparison"`
	IndustryRanges BracketRange      `json:"industry_benchmarks"`
	Position       map[string]string `json:"market_position"`
}

// ComparePeers positions the company against the built-in peer set and its
// revenue bracket's industry ranges.
func ComparePeers(arr, growthRate, grossMargin, nrr float64, peers []Peer) Comparison {
	if peers == nil {
		peers = BuiltinPeers()
	}
	ranges := BracketRanges(arr)

	deltas := make([]PeerDelta, len(peers))
	for i, p := range peers {
		deltas[i] = PeerDelta{
			Peer:                    p,
			GrowthRateDiff:          growthRate - p.GrowthRate,
			GrossMarginDiff:         grossMargin - p.GrossMargin,
			NetRevenueRetentionDiff: nrr - p.NetRevenueRetention,
		}
	}

	return Comparison{
		Peers:          deltas,
		IndustryRanges: ranges,
		Position: map[string]string{
			"growth_rate":           rangePosition(growthRate, ranges.GrowthRate),
			"gross_margin":          rangePosition(grossMargin, ranges.GrossMargin),
			"net_revenue_retention": rangePosition(nrr, ranges.NetRevenueRetention),
		},
	}
}

func rangePosition(value float64, bounds [2]float64) string {
	switch {
	case value < bounds[0]:
		return "below"
	case value > bounds[1]:
		return "above"
	default:
		return "within"
	}
}

// Guidance is a multiple-range recommendation adjusted for the company's
// performance against its bracket averages.
type Guidance struct {
	BaseLow          float64            `json:"base_multiple_low"`
	BaseHigh         float64            `json:"base_multiple_high"`
	AdjustedLow      float64            `json:"adjusted_multiple_low"`
	AdjustedHigh     float64            `json:"adjusted_multiple_high"`
	PremiumBreakdown map[string]float64 `json:"premium_breakdown"`
}

// ValuationGuidance adjusts the bracket's base multiple range by growth,
// margin, and retention premiums relative to the bracket midpoint.
func ValuationGuidance(arr, growthRate, grossMargin, nrr float64) Guidance {
	ranges := BracketRanges(arr)

	premiums := map[string]float64{
		"growth_premium":    (growthRate - midpoint(ranges.GrowthRate)) * 2.0,
		"margin_premium":    (grossMargin - midpoint(ranges.GrossMargin)) * 1.5,
		"retention_premium": (nrr - midpoint(ranges.NetRevenueRetention)) * 1.8,
	}
	total := 0.0
	for _, p := range premiums {
		total += p
	}

	return Guidance{
		BaseLow:          ranges.MRRMultiple[0],
		BaseHigh:         ranges.MRRMultiple[1],
		AdjustedLow:      ranges.MRRMultiple[0] * (1 + total),
		AdjustedHigh:     ranges.MRRMultiple[1] * (1 + total),
		PremiumBreakdown: premiums,
	}
}

func midpoint(bounds [2]float64) float64 {
	return (bounds[0] + bounds[1]) / 2
}

// ParsePeerTable extracts peers from an HTML comp table. Expected columns,
// in order: company, mrr multiple, arr multiple, growth rate, gross margin,
// net revenue retention, rule of 40. Percent signs and commas are tolerated;
// percent values convert to fractions.
func ParsePeerTable(htmlContent string) ([]Peer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse peer table HTML: %w", err)
	}

	peers := []Peer{}
	var rowErr error

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if rowErr != nil || row.Find("th").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		values := make([]float64, 6)
		for j := 0; j < 6; j++ {
			v, err := parseCell(cells.Eq(j + 1).Text())
			if err != nil {
				rowErr = fmt.Errorf("row %d column %d: %w", i, j+1, err)
				return
			}
			values[j] = v
		}

		peers = append(peers, Peer{
			Company:             strings.TrimSpace(cells.Eq(0).Text()),
			MRRMultiple:         values[0],
			ARRMultiple:         values[1],
			GrowthRate:          values[2],
			GrossMargin:         values[3],
			NetRevenueRetention: values[4],
			RuleOf40:            values[5],
		})
	})

	if rowErr != nil {
		return nil, rowErr
	}
	if len(peers) == 0 {
		return nil, fmt.Errorf("no peer rows found in table")
	}
	return peers, nil
}

func parseCell(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "x")

	percent := strings.HasSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "%")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable cell %q", text)
	}
	if percent {
		v /= 100
	}
	return v, nil
}
