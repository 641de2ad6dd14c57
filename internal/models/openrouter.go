package models

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// NewOpenRouterModel creates an adapter for the OpenRouter API.
func NewOpenRouterModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (LLM, error) {
	if modelName != "" {
		modelName = fmt.Sprintf("openrouter/%s", modelName)
	}
	return newOpenAICompatible(modelName, cfg, "https://openrouter.ai/api/v1", "openrouter-go")
}
