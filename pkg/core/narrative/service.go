// Package narrative provides the qualitative commentary collaborator for the
// narrative-adjusted estimator. The LLM-backed service is optional: the
// estimator degrades to neutral confidence when it is absent or failing.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"comprehensive_valuation/pkg/core/agent"
	"comprehensive_valuation/pkg/core/utils"
	"comprehensive_valuation/pkg/models"
)

const (
	agentType      = "narrative"
	requestTimeout = 20 * time.Second
)

// Service generates commentary on a company via the configured LLM provider.
// It satisfies valuation.NarrativeProvider.
type Service struct {
	Manager *agent.Manager
}

func NewService(m *agent.Manager) *Service {
	return &Service{Manager: m}
}

// commentaryResponse is the schema the model is asked to fill.
type commentaryResponse struct {
	Commentary string  `json:"commentary"`
	Confidence float64 `json:"confidence"`
}

const systemPrompt = `You are a private-company valuation analyst. Given the company metrics, write a short qualitative assessment of the valuation story: growth durability, competitive moat, and key risks. Respond with JSON: {"commentary": "<2-4 sentences>", "confidence": <0-1 float reflecting how well the metrics support a clear narrative>}`

// Summarize asks the configured model for commentary on the company. The call
// is timeout-bounded; errors propagate so the caller can degrade to neutral.
func (s *Service) Summarize(ctx context.Context, in models.FinancialInput) (string, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	prompt := buildPrompt(in)
	options := map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}

	raw, err := s.Manager.ExecutePrompt(ctx, agentType, prompt, systemPrompt, options)
	if err != nil {
		return "", 0, err
	}

	var parsed commentaryResponse
	if _, err := utils.SmartParse(raw, &parsed); err != nil {
		return "", 0, fmt.Errorf("unparseable narrative response: %w", err)
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}

	return strings.TrimSpace(parsed.Commentary), parsed.Confidence, nil
}

func buildPrompt(in models.FinancialInput) string {
	metrics := map[string]interface{}{
		"company_name":     in.CompanyName,
		"industry":         in.Industry,
		"sub_industry":     in.SubIndustry,
		"revenue":          in.Revenue,
		"growth_rate":      in.GrowthRate,
		"ebitda_margin":    in.EBITDAMargin,
		"mrr":              in.MRR,
		"churn_rate":       in.ChurnRate,
		"gross_margin":     in.GrossMargin,
		"market_position":  in.MarketPosition,
		"technology_score": in.TechnologyScore,
		"lifecycle_stage":  in.LifecycleStage,
	}
	b, _ := json.Marshal(metrics)
	return fmt.Sprintf("Assess this company:\n%s", string(b))
}
