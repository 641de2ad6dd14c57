// Package models provides adapters for the supported model providers.
package models

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/kotone/persona-studio/internal/types"
)

// Request describes one generation call. Either Prompt (single-shot) or
// Contents (a turn sequence) carries the user input; both may be combined
// with a system instruction.
type Request struct {
	// Model overrides the adapter's default model when non-empty.
	Model string
	// System is the system instruction, empty for none.
	System string
	// Prompt is a single-shot user prompt, used when Contents is empty.
	Prompt string
	// Contents is an ordered turn sequence ending with the pending user turn.
	Contents []types.ChatMessage
	// Schema requests structured JSON output matching the schema.
	Schema *jsonschema.Schema
	// UseSearch enables web-grounded generation where the provider supports
	// it; adapters without grounding ignore it and return no sources.
	UseSearch   bool
	Temperature *float32
}

// Response is the provider's reply.
type Response struct {
	Text    string
	Sources []types.Source
}

// LLM is the narrow surface the generation service and the credential proxy
// depend on.
type LLM interface {
	Name() string
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
}
