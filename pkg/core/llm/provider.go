// Package llm wraps the text-generation backends used for narrative
// commentary. The valuation arithmetic never depends on this package; only
// the narrative collaborator does.
package llm

import "context"

// Provider is a single text-generation backend.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}
