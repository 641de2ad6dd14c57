// Package generation shapes prompts and schemas for the persona workflows
// and turns model output back into typed state.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kotone/persona-studio/internal/models"
	"github.com/kotone/persona-studio/internal/prompt"
	"github.com/kotone/persona-studio/internal/types"
)

// TopicResult is the outcome of web-grounded persona creation: structured
// fields without a summary, plus deduplicated citations.
type TopicResult struct {
	State   types.PersonaState `json:"state"`
	Sources []types.Source     `json:"sources"`
}

// Service is the stateless persona generation service. All operations are
// plain request/response calls on the configured model.
type Service struct {
	llm models.LLM
	// utilityModel, when set, overrides the model for the cheap annotation
	// calls (summary refresh, change summary).
	utilityModel string
}

// NewService creates a Service on the given adapter.
func NewService(llm models.LLM, utilityModel string) *Service {
	return &Service{llm: llm, utilityModel: utilityModel}
}

// ExtractFromDocument fills every structured field and the summary from an
// arbitrary document.
func (s *Service) ExtractFromDocument(ctx context.Context, text string) (types.PersonaState, error) {
	resp, err := s.llm.GenerateContent(ctx, &models.Request{
		System: prompt.ExtractionInstruction,
		Prompt: text,
		Schema: personaSchema(),
	})
	if err != nil {
		return types.PersonaState{}, fmt.Errorf("failed to extract persona: %w", err)
	}
	state, err := parsePersonaState("extract from document", resp.Text)
	if err != nil {
		return types.PersonaState{}, err
	}
	return state, nil
}

// CreateFromTopic synthesizes a persona from a web search topic: a grounded
// free-text dossier first, then structured extraction over it. The returned
// state carries no summary; the editor refreshes it afterwards.
func (s *Service) CreateFromTopic(ctx context.Context, topic string) (TopicResult, error) {
	resp, err := s.llm.GenerateContent(ctx, &models.Request{
		System:    prompt.TopicSynthesisInstruction,
		Prompt:    topic,
		UseSearch: true,
	})
	if err != nil {
		return TopicResult{}, fmt.Errorf("failed to research topic: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return TopicResult{}, &GenerationError{Op: "create from topic"}
	}

	state, err := s.ExtractFromDocument(ctx, resp.Text)
	if err != nil {
		return TopicResult{}, err
	}
	state.Summary = ""

	return TopicResult{
		State:   state,
		Sources: dedupeSources(resp.Sources),
	}, nil
}

// RefreshSummary regenerates the narrative summary from the current fields.
// The existing summary is blanked out of the prompt to avoid anchoring. A
// nameless persona has no summary to synthesize.
func (s *Service) RefreshSummary(ctx context.Context, state types.PersonaState) (string, error) {
	if !state.HasName() {
		return "", ErrNameRequired
	}
	p, err := prompt.BuildSummaryPrompt(state)
	if err != nil {
		return "", err
	}
	resp, err := s.llm.GenerateContent(ctx, &models.Request{
		Model:  s.utilityModel,
		Prompt: p,
	})
	if err != nil {
		return "", fmt.Errorf("failed to refresh summary: %w", err)
	}
	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		return "", &GenerationError{Op: "refresh summary"}
	}
	return summary, nil
}

// SyncFieldsFromSummary re-derives structured fields from a hand-edited
// summary. The result is a patch: fields the model did not return stay
// empty and leave prior values untouched when merged.
func (s *Service) SyncFieldsFromSummary(ctx context.Context, summary string) (types.PersonaState, error) {
	resp, err := s.llm.GenerateContent(ctx, &models.Request{
		System: prompt.SyncFieldsInstruction,
		Prompt: summary,
		Schema: personaPatchSchema(),
	})
	if err != nil {
		return types.PersonaState{}, fmt.Errorf("failed to sync fields: %w", err)
	}
	return parsePersonaState("sync fields from summary", resp.Text)
}

// DiffSummary describes in one line what changed between two states. It
// never fails: a save must not be blocked by a missing annotation, so any
// error degrades to the fixed fallback string.
func (s *Service) DiffSummary(ctx context.Context, oldState, newState types.PersonaState) string {
	p, err := prompt.BuildDiffPrompt(oldState, newState)
	if err != nil {
		slog.Warn("diff prompt build failed, using fallback", "error", err)
		return FallbackChangeSummary
	}
	resp, err := s.llm.GenerateContent(ctx, &models.Request{
		Model:  s.utilityModel,
		Prompt: p,
	})
	if err != nil {
		slog.Warn("change summary generation failed, using fallback", "error", err)
		return FallbackChangeSummary
	}
	line := strings.TrimSpace(resp.Text)
	if line == "" {
		return FallbackChangeSummary
	}
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	return line
}

// ContinueCreationChat runs one turn of the guided interview. The caller
// supplies the whole prior transcript and the accumulated partial state;
// nothing is kept between calls.
func (s *Service) ContinueCreationChat(ctx context.Context, history []types.ChatMessage, partial types.PersonaState) (types.CreationChatResponse, error) {
	system, err := prompt.BuildCreationChatContext(partial)
	if err != nil {
		return types.CreationChatResponse{}, err
	}
	resp, err := s.llm.GenerateContent(ctx, &models.Request{
		System:   system,
		Contents: history,
		Schema:   creationChatSchema(),
	})
	if err != nil {
		return types.CreationChatResponse{}, fmt.Errorf("failed to continue creation chat: %w", err)
	}

	var out types.CreationChatResponse
	if err := json.Unmarshal([]byte(models.ExtractJSONObject(resp.Text)), &out); err != nil {
		return types.CreationChatResponse{}, &GenerationError{Op: "creation chat", Err: err}
	}
	if strings.TrimSpace(out.ResponseText) == "" {
		return types.CreationChatResponse{}, &GenerationError{Op: "creation chat"}
	}
	return out, nil
}

// PersonaReply produces one in-character response. History holds the prior
// turns; message is the pending user line.
func (s *Service) PersonaReply(ctx context.Context, state types.PersonaState, history []types.ChatMessage, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrNoPendingUserMessage
	}
	instruction, err := prompt.BuildReplyInstruction(state)
	if err != nil {
		return "", err
	}

	contents := make([]types.ChatMessage, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, types.ChatMessage{Role: types.RoleUser, Content: message})

	resp, err := s.llm.GenerateContent(ctx, &models.Request{
		System:   instruction,
		Contents: contents,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		return "", &GenerationError{Op: "persona reply"}
	}
	return reply, nil
}

func parsePersonaState(op, raw string) (types.PersonaState, error) {
	clean := models.ExtractJSONObject(raw)
	if strings.TrimSpace(clean) == "" {
		return types.PersonaState{}, &GenerationError{Op: op}
	}
	var state types.PersonaState
	if err := json.Unmarshal([]byte(clean), &state); err != nil {
		return types.PersonaState{}, &GenerationError{Op: op, Err: err}
	}
	return state, nil
}

// dedupeSources drops citations without a resolvable URI and keeps the
// first occurrence of each URI.
func dedupeSources(sources []types.Source) []types.Source {
	seen := make(map[string]bool, len(sources))
	out := make([]types.Source, 0, len(sources))
	for _, src := range sources {
		if src.URI == "" || src.URI == "#" || seen[src.URI] {
			continue
		}
		seen[src.URI] = true
		out = append(out, src)
	}
	return out
}
