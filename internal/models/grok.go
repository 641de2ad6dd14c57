package models

import (
	"context"

	"google.golang.org/genai"
)

// NewGrokModel creates an adapter for the x.ai API.
//
// The modelName specifies which Grok model to target
// (e.g. "grok-beta", "grok-2-1212").
func NewGrokModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (LLM, error) {
	return newOpenAICompatible(modelName, cfg, "https://api.x.ai/v1", "grok-go")
}
