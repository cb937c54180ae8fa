// Package valuation exposes the valuation engine over HTTP. The handlers are
// thin adapters: decode, default, validate, run, encode. All valuation
// semantics live in pkg/core.
package valuation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"comprehensive_valuation/pkg/core/benchmark"
	"comprehensive_valuation/pkg/core/market"
	"comprehensive_valuation/pkg/core/quality"
	"comprehensive_valuation/pkg/core/report"
	"comprehensive_valuation/pkg/core/store"
	coreval "comprehensive_valuation/pkg/core/valuation"
	"comprehensive_valuation/pkg/models"
)

var (
	engine  *coreval.Engine
	runRepo *store.ValuationRepo
	persist bool
)

// InitHandler wires the engine and optional persistence into the package
// handlers. persistRuns should only be true when store.InitDB succeeded.
func InitHandler(eng *coreval.Engine, persistRuns bool) {
	engine = eng
	runRepo = store.NewValuationRepo()
	persist = persistRuns
}

// CompanyInfo is the echo block of the response: what was valued and which
// fields came from defaults.
type CompanyInfo struct {
	Name            string         `json:"name"`
	Industry        string         `json:"industry"`
	SubIndustry     string         `json:"sub_industry"`
	AppliedDefaults []string       `json:"applied_defaults"`
	DataQuality     quality.Report `json:"data_quality"`
	AnalysisDate    string         `json:"analysis_date"`
}

// Response is the full valuation API response.
type Response struct {
	ID               string                                    `json:"id,omitempty"`
	CompanyInfo      CompanyInfo                               `json:"company_info"`
	ValuationMethods map[coreval.Method]coreval.EstimatorResult `json:"valuation_methods"`
	Recommendation   coreval.Recommendation                    `json:"recommended_valuation"`
	ValuationRange   coreval.Range                             `json:"valuation_range"`
	Benchmark        benchmark.Benchmark                       `json:"industry_benchmark"`
	RiskFactors      []string                                  `json:"risk_factors"`
	Projections      []report.Projection                       `json:"growth_projections"`
}

func corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// runFromRequest decodes the request body and runs the engine, writing the
// error response itself when anything fails.
func runFromRequest(w http.ResponseWriter, r *http.Request) *coreval.Output {
	var req models.ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return nil
	}

	in := req.ApplyDefaults()
	missing := req.MissingFields()

	out, err := engine.Run(r.Context(), in, missing)
	if err != nil {
		if vErr, ok := err.(*models.ValidationError); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{
				"error": vErr.Message,
				"field": vErr.Field,
			})
			return nil
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	return out
}

// HandleValuation runs the full valuation pass and returns the structured
// result.
func HandleValuation(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	out := runFromRequest(w, r)
	if out == nil {
		return
	}

	methods := map[coreval.Method]coreval.EstimatorResult{}
	for _, res := range out.Results {
		methods[res.Method] = res
	}

	resp := Response{
		CompanyInfo: CompanyInfo{
			Name:            out.Input.CompanyName,
			Industry:        out.Input.Industry,
			SubIndustry:     out.Input.SubIndustry,
			AppliedDefaults: out.Input.AppliedDefaults,
			DataQuality:     out.Quality,
			AnalysisDate:    time.Now().Format("2006-01-02"),
		},
		ValuationMethods: methods,
		Recommendation:   out.Selected,
		ValuationRange:   out.ValRange,
		Benchmark:        out.Benchmark,
		RiskFactors:      report.RiskFactors(out.Input, out),
		Projections:      report.GrowthProjections(out.Input),
	}

	if persist {
		if id, err := runRepo.Save(r.Context(), out); err != nil {
			fmt.Printf("[WARNING] Failed to persist valuation run: %v\n", err)
		} else {
			resp.ID = id.String()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleReport runs the valuation and returns the rendered report. Query
// param format=html switches from Markdown to HTML.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	out := runFromRequest(w, r)
	if out == nil {
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := report.HTML(out)
		if err != nil {
			http.Error(w, fmt.Sprintf("Report rendering failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, report.Markdown(out))
}

// PeerRequest carries the metrics needed for a peer comparison.
type PeerRequest struct {
	ARR                 float64 `json:"arr"`
	GrowthRate          float64 `json:"growth_rate"`
	GrossMargin         float64 `json:"gross_margin"`
	NetRevenueRetention float64 `json:"net_revenue_retention"`
}

// HandlePeerComparison compares the supplied metrics against the public peer
// set and returns the comparison plus multiple guidance.
func HandlePeerComparison(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req PeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	resp := struct {
		Comparison market.Comparison `json:"comparison"`
		Guidance   market.Guidance   `json:"guidance"`
	}{
		Comparison: market.ComparePeers(req.ARR, req.GrowthRate, req.GrossMargin, req.NetRevenueRetention, nil),
		Guidance:   market.ValuationGuidance(req.ARR, req.GrowthRate, req.GrossMargin, req.NetRevenueRetention),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHistory lists recent persisted runs.
func HandleHistory(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if !persist {
		http.Error(w, "Persistence not configured", http.StatusServiceUnavailable)
		return
	}

	runs, err := runRepo.ListRecent(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
