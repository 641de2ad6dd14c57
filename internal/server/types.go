package server

import (
	"encoding/json"

	"github.com/kotone/persona-studio/internal/types"
)

// APIResponse is the envelope for the studio's own REST routes. The proxy
// endpoints keep their bare wire contract instead.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// geminiRequest is the credential proxy envelope.
type geminiRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// editorView is the editor session snapshot returned to the UI.
type editorView struct {
	Step            string                      `json:"step"`
	Tab             string                      `json:"tab"`
	PersonaID       string                      `json:"personaId,omitempty"`
	State           types.PersonaState          `json:"state"`
	History         []types.PersonaHistoryEntry `json:"history"`
	CanUndo         bool                        `json:"canUndo"`
	CreationChat    []types.ChatMessage         `json:"creationChat,omitempty"`
	CreationPartial types.PersonaState          `json:"creationPartial"`
	TestChat        []types.ChatMessage         `json:"testChat,omitempty"`
}

// chatView is the production chat snapshot returned to the UI.
type chatView struct {
	PersonaID  string              `json:"personaId,omitempty"`
	Persona    types.PersonaState  `json:"persona"`
	Voice      *types.Voice        `json:"voice,omitempty"`
	Transcript []types.ChatMessage `json:"transcript"`
}
