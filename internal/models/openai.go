package models

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/genai"

	"github.com/kotone/persona-studio/internal/types"
)

// openaiModel wraps an OpenAI-compatible chat client.
type openaiModel struct {
	client             *openai.Client
	name               string
	versionHeaderValue string
}

// NewOpenAIModel creates an adapter for the OpenAI API or any compatible
// endpoint when cfg.HTTPOptions.BaseURL is set.
func NewOpenAIModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (LLM, error) {
	return newOpenAICompatible(modelName, cfg, "", "openai-go")
}

func newOpenAICompatible(modelName string, cfg *genai.ClientConfig, baseURL, agent string) (LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	// Build the UA header once at construction time.
	headerValue := fmt.Sprintf("%s/%s go/%s",
		agent, "1.0.0", strings.TrimPrefix(runtime.Version(), "go"))

	return &openaiModel{
		client:             &client,
		name:               modelName,
		versionHeaderValue: headerValue,
	}, nil
}

func (m *openaiModel) Name() string {
	return m.name
}

func (m *openaiModel) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	params := openai.ChatCompletionNewParams{Model: req.Model}
	if params.Model == "" {
		params.Model = m.name
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Temperature))
	}

	system := req.System
	if req.Schema != nil {
		// OpenAI-compatible endpoints get the schema inline; the response is
		// parsed leniently because not every endpoint honors JSON mode.
		schemaJSON, err := json.Marshal(SchemaToMap(req.Schema))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema: %w", err)
		}
		instruction := fmt.Sprintf("Respond with a single JSON object matching this JSON Schema, with no surrounding prose:\n%s", schemaJSON)
		if system == "" {
			system = instruction
		} else {
			system = system + "\n\n" + instruction
		}
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	if len(req.Contents) > 0 {
		for _, msg := range req.Contents {
			if msg.Role == types.RoleModel {
				messages = append(messages, openai.AssistantMessage(msg.Content))
			} else {
				messages = append(messages, openai.UserMessage(msg.Content))
			}
		}
	} else {
		messages = append(messages, openai.UserMessage(req.Prompt))
	}
	params.Messages = messages

	resp, err := m.client.Chat.Completions.New(ctx, params,
		option.WithHeader("user-agent", m.versionHeaderValue))
	if err != nil {
		return nil, wrapUpstream(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return &Response{}, nil
	}

	text := resp.Choices[0].Message.Content
	if req.Schema != nil {
		text = ExtractJSONObject(text)
	}
	return &Response{Text: text}, nil
}

// ExtractJSONObject trims prose wrapped around a JSON object, returning the
// original text when no braces are found.
func ExtractJSONObject(raw string) string {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		return clean[start : end+1]
	}
	return clean
}
