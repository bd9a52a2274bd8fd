package llm

import (
	"context"
)

// Provider is the interface for all LLM providers. The rest of the system
// treats language models as opaque functions over text: ticker resolution
// and narrative commentary both go through this.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// Option keys recognized by providers.
const (
	OptionModel     = "model"      // string: model override
	OptionJSONMode  = "json"       // bool: request a JSON object response
	OptionMaxTokens = "max_tokens" // int
)
