package models

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kotone/persona-studio/internal/config"
)

// New builds the configured LLM adapter.
func New(ctx context.Context, cfg config.Config) (LLM, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiModel(ctx, cfg.ChatModel, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
	case config.ProviderOpenAI:
		clientCfg := &genai.ClientConfig{APIKey: cfg.OpenAIAPIKey}
		if cfg.OpenAIBaseURL != "" {
			return newOpenAICompatible(cfg.ChatModel, clientCfg, cfg.OpenAIBaseURL, "openai-go")
		}
		return NewOpenAIModel(ctx, cfg.ChatModel, clientCfg)
	case config.ProviderGrok:
		return NewGrokModel(ctx, cfg.ChatModel, &genai.ClientConfig{APIKey: cfg.OpenAIAPIKey})
	case config.ProviderOpenRouter:
		return NewOpenRouterModel(ctx, cfg.ChatModel, &genai.ClientConfig{APIKey: cfg.OpenAIAPIKey})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
