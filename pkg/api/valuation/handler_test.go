package valuation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"comprehensive_valuation/pkg/core/benchmark"
	coreval "comprehensive_valuation/pkg/core/valuation"
)

func initTestHandler() {
	InitHandler(&coreval.Engine{Benchmarks: benchmark.DefaultTable()}, false)
}

const healthyBody = `{
	"company_name": "Acme SaaS",
	"industry": "technology",
	"sub_industry": "saas_enterprise",
	"revenue": 12000000,
	"growth_rate": 0.35,
	"ebitda_margin": 0.20,
	"mrr": 1000000,
	"arpu": 200,
	"customer_count": 5000,
	"churn_rate": 0.04,
	"cac": 800,
	"gross_margin": 0.75
}`

func TestHandleValuationHappyPath(t *testing.T) {
	initTestHandler()

	req := httptest.NewRequest("POST", "/api/valuation", strings.NewReader(healthyBody))
	w := httptest.NewRecorder()
	HandleValuation(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status %d: %s", w.Code, w.Body.String())
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response JSON: %v", err)
	}

	if resp.CompanyInfo.Name != "Acme SaaS" {
		t.Errorf("Company name: got %q", resp.CompanyInfo.Name)
	}
	if len(resp.ValuationMethods) != 4 {
		t.Errorf("Expected 4 methods, got %d", len(resp.ValuationMethods))
	}
	if resp.Recommendation.Method == coreval.MethodNone {
		t.Error("Healthy input should produce a recommendation")
	}
	if resp.ValuationRange.High < resp.ValuationRange.Low {
		t.Errorf("Inverted range: %+v", resp.ValuationRange)
	}
	if resp.CompanyInfo.AnalysisDate == "" {
		t.Error("Analysis date missing")
	}
	// discount_rate and terminal_growth_rate were absent: defaults recorded.
	defaults := strings.Join(resp.CompanyInfo.AppliedDefaults, ",")
	if !strings.Contains(defaults, "discount_rate") {
		t.Errorf("Applied defaults missing discount_rate: %v", resp.CompanyInfo.AppliedDefaults)
	}
}

func TestHandleValuationValidationError(t *testing.T) {
	initTestHandler()

	body := `{"company_name": "Bad Co", "revenue": 1000000, "discount_rate": 0.02, "terminal_growth_rate": 0.05}`
	req := httptest.NewRequest("POST", "/api/valuation", strings.NewReader(body))
	w := httptest.NewRecorder()
	HandleValuation(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d: %s", w.Code, w.Body.String())
	}

	var errResp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Bad error JSON: %v", err)
	}
	if errResp["field"] != "discount_rate" {
		t.Errorf("Expected field discount_rate, got %q", errResp["field"])
	}
}

func TestHandleValuationMalformedBody(t *testing.T) {
	initTestHandler()

	req := httptest.NewRequest("POST", "/api/valuation", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	HandleValuation(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHandleValuationCORSPreflight(t *testing.T) {
	initTestHandler()

	req := httptest.NewRequest("OPTIONS", "/api/valuation", nil)
	w := httptest.NewRecorder()
	HandleValuation(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Preflight should return 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

func TestHandleReportMarkdownAndHTML(t *testing.T) {
	initTestHandler()

	req := httptest.NewRequest("POST", "/api/valuation/report", strings.NewReader(healthyBody))
	w := httptest.NewRecorder()
	HandleReport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "# Valuation Report: Acme SaaS") {
		t.Errorf("Markdown report missing heading")
	}

	req = httptest.NewRequest("POST", "/api/valuation/report?format=html", strings.NewReader(healthyBody))
	w = httptest.NewRecorder()
	HandleReport(w, req)

	if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected HTML content type, got %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "<h1") {
		t.Errorf("HTML report not rendered")
	}
}

func TestHandlePeerComparison(t *testing.T) {
	initTestHandler()

	body := `{"arr": 12000000, "growth_rate": 0.35, "gross_margin": 0.75, "net_revenue_retention": 1.1}`
	req := httptest.NewRequest("POST", "/api/valuation/peers", strings.NewReader(body))
	w := httptest.NewRecorder()
	HandlePeerComparison(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Comparison struct {
			Peers []json.RawMessage `json:"peer_comparison"`
		} `json:"comparison"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response JSON: %v", err)
	}
	if len(resp.Comparison.Peers) != 4 {
		t.Errorf("Expected 4 peers, got %d", len(resp.Comparison.Peers))
	}
}

func TestHandleHistoryWithoutPersistence(t *testing.T) {
	initTestHandler()

	req := httptest.NewRequest("GET", "/api/valuation/history", nil)
	w := httptest.NewRecorder()
	HandleHistory(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without persistence, got %d", w.Code)
	}
}
