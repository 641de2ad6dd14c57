package models

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kotone/persona-studio/internal/types"
)

// geminiModel wraps the Gemini client.
type geminiModel struct {
	client *genai.Client
	name   string
}

// NewGeminiModel creates a Gemini-backed adapter.
func NewGeminiModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiModel{
		client: client,
		name:   modelName,
	}, nil
}

func (m *geminiModel) Name() string {
	return m.name
}

func (m *geminiModel) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	model := req.Model
	if model == "" {
		model = m.name
	}

	config := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = ToGenAISchema(req.Schema)
	}
	if req.UseSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	var contents []*genai.Content
	if len(req.Contents) > 0 {
		contents = make([]*genai.Content, 0, len(req.Contents))
		for _, msg := range req.Contents {
			role := genai.Role(genai.RoleUser)
			if msg.Role == types.RoleModel {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(msg.Content, role))
		}
	} else {
		contents = genai.Text(req.Prompt)
	}

	resp, err := m.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, wrapUpstream(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return &Response{}, nil
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return &Response{
		Text:    sb.String(),
		Sources: groundingSources(candidate),
	}, nil
}

// groundingSources extracts web citations from search-grounded responses.
func groundingSources(candidate *genai.Candidate) []types.Source {
	if candidate.GroundingMetadata == nil {
		return nil
	}
	var sources []types.Source
	for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.Domain
		}
		sources = append(sources, types.Source{
			Title: title,
			URI:   chunk.Web.URI,
		})
	}
	return sources
}
