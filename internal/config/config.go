// Package config loads configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderGrok       = "grok"
	ProviderOpenRouter = "openrouter"
)

// Config holds runtime settings.
type Config struct {
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	LLMProvider   string
	ChatModel     string
	UtilityModel  string
	TTSBaseURL    string
	DataDir       string
	Host          string
	Port          int
	Debug         bool
}

// Load reads env vars and applies defaults. Required keys are validated by
// the components that need them, so a studio without a Gemini key still
// boots and reports the missing credential per request.
func Load() Config {
	cfg := Config{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		LLMProvider:   os.Getenv("LLM_PROVIDER"),
		ChatModel:     os.Getenv("CHAT_MODEL"),
		UtilityModel:  os.Getenv("UTILITY_MODEL"),
		TTSBaseURL:    os.Getenv("TTS_BASE_URL"),
		DataDir:       os.Getenv("DATA_DIR"),
		Host:          os.Getenv("HOST"),
	}

	cfg.Port = getEnvInt("PORT", 3001)
	cfg.Debug = getEnvBool("DEBUG", false)

	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderGemini
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gemini-2.5-flash"
	}
	if cfg.UtilityModel == "" {
		cfg.UtilityModel = cfg.ChatModel
	}
	if cfg.TTSBaseURL == "" {
		cfg.TTSBaseURL = "https://api.fish.audio"
	}
	if cfg.DataDir == "" {
		cfg.DataDir, _ = os.Getwd()
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}

	return cfg
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
