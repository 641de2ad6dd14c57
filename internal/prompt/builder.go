// Package prompt assembles the instructions sent to the model providers.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kotone/persona-studio/internal/types"
)

// BuildReplyInstruction renders the in-character system instruction.
func BuildReplyInstruction(state types.PersonaState) (string, error) {
	var buf bytes.Buffer
	if err := replyTemplate.Execute(&buf, state); err != nil {
		return "", fmt.Errorf("failed to build reply instruction: %w", err)
	}
	return buf.String(), nil
}

// BuildSummaryPrompt renders the summary-refresh prompt. The caller blanks
// the existing summary beforehand so the model is not anchored on it.
func BuildSummaryPrompt(state types.PersonaState) (string, error) {
	state.Summary = ""
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, state); err != nil {
		return "", fmt.Errorf("failed to build summary prompt: %w", err)
	}
	return buf.String(), nil
}

// BuildDiffPrompt renders the change-summary prompt over two states.
func BuildDiffPrompt(oldState, newState types.PersonaState) (string, error) {
	oldState.Sources = nil
	newState.Sources = nil
	oldJSON, err := json.MarshalIndent(oldState, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal old state: %w", err)
	}
	newJSON, err := json.MarshalIndent(newState, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal new state: %w", err)
	}

	data := struct {
		Old string
		New string
	}{Old: string(oldJSON), New: string(newJSON)}

	var buf bytes.Buffer
	if err := diffTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build diff prompt: %w", err)
	}
	return buf.String(), nil
}

// BuildCreationChatContext renders the collected fields for the guided
// interview so the model sees what it already knows.
func BuildCreationChatContext(partial types.PersonaState) (string, error) {
	partial.Sources = nil
	partialJSON, err := json.MarshalIndent(partial, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal partial state: %w", err)
	}
	return fmt.Sprintf("%s\n\n[Fields collected so far]\n%s", CreationChatInstruction, partialJSON), nil
}
