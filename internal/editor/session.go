// Package editor implements the persona editing workflow: creation methods,
// the single-slot undo buffer, saving with history, and revert.
package editor

import (
	"context"
	"fmt"

	"github.com/kotone/persona-studio/internal/generation"
	"github.com/kotone/persona-studio/internal/repository"
	"github.com/kotone/persona-studio/internal/types"
)

// Step is the workflow position.
type Step string

// Tab is the active pane while editing.
type Tab string

const (
	// StepStart chooses a creation method.
	StepStart Step = "start"
	// StepChat runs the guided creation interview.
	StepChat Step = "chat"
	// StepEditing edits fields, summary, and history.
	StepEditing Step = "editing"

	TabEditor Tab = "editor"
	TabChat   Tab = "chat"
)

// Generator is the slice of the generation service the editor needs.
type Generator interface {
	ExtractFromDocument(ctx context.Context, text string) (types.PersonaState, error)
	CreateFromTopic(ctx context.Context, topic string) (generation.TopicResult, error)
	RefreshSummary(ctx context.Context, state types.PersonaState) (string, error)
	SyncFieldsFromSummary(ctx context.Context, summary string) (types.PersonaState, error)
	DiffSummary(ctx context.Context, oldState, newState types.PersonaState) string
	ContinueCreationChat(ctx context.Context, history []types.ChatMessage, partial types.PersonaState) (types.CreationChatResponse, error)
	PersonaReply(ctx context.Context, state types.PersonaState, history []types.ChatMessage, message string) (string, error)
}

// Session is one editing workflow over a new or existing persona. It is not
// safe for concurrent use; the studio runs one in-flight action at a time.
type Session struct {
	personas *repository.PersonaRepo
	gen      Generator

	step Step
	tab  Tab

	personaID string
	state     types.PersonaState
	history   []types.PersonaHistoryEntry

	// undo is the single-slot buffer captured before each AI-mutating
	// action. A second action overwrites an unconsumed slot.
	undo *types.PersonaState

	creationChat    []types.ChatMessage
	creationPartial types.PersonaState

	testChat []types.ChatMessage
}

// NewSession starts a workflow for a brand-new persona.
func NewSession(personas *repository.PersonaRepo, gen Generator) *Session {
	return &Session{
		personas: personas,
		gen:      gen,
		step:     StepStart,
		tab:      TabEditor,
	}
}

// OpenSession starts a workflow over an existing persona, which opens
// directly into editing.
func OpenSession(personas *repository.PersonaRepo, gen Generator, personaID string) (*Session, error) {
	persona, err := personas.Get(personaID)
	if err != nil {
		return nil, err
	}
	return &Session{
		personas:  personas,
		gen:       gen,
		step:      StepEditing,
		tab:       TabEditor,
		personaID: persona.ID,
		state:     persona.State,
		history:   persona.History,
	}, nil
}

// Step returns the workflow position.
func (s *Session) Step() Step { return s.step }

// Tab returns the active editing pane.
func (s *Session) Tab() Tab { return s.tab }

// SelectTab switches panes while editing.
func (s *Session) SelectTab(tab Tab) {
	if s.step == StepEditing {
		s.tab = tab
	}
}

// State returns the live persona state.
func (s *Session) State() types.PersonaState { return s.state }

// History returns the loaded persona's history, most-recent-first.
func (s *Session) History() []types.PersonaHistoryEntry {
	return append([]types.PersonaHistoryEntry(nil), s.history...)
}

// PersonaID returns the persona being edited, empty for a new one.
func (s *Session) PersonaID() string { return s.personaID }

// CanUndo reports whether an unconsumed undo capture exists.
func (s *Session) CanUndo() bool { return s.undo != nil }

// SetState replaces the live state with the user's direct edits.
func (s *Session) SetState(state types.PersonaState) {
	if s.step == StepEditing {
		s.state = state
	}
}

// StartBlank enters editing with an empty persona.
func (s *Session) StartBlank() {
	s.state = types.EmptyPersonaState()
	s.step = StepEditing
	s.tab = TabEditor
}

// StartGuidedChat enters the guided creation interview.
func (s *Session) StartGuidedChat() {
	s.step = StepChat
	s.creationChat = nil
	s.creationPartial = types.EmptyPersonaState()
}

// CreationChat returns the guided interview transcript.
func (s *Session) CreationChat() []types.ChatMessage {
	return append([]types.ChatMessage(nil), s.creationChat...)
}

// CreationPartial returns the fields collected so far.
func (s *Session) CreationPartial() types.PersonaState { return s.creationPartial }

// captureUndo stores the pre-operation state and returns a restore func for
// when the operation fails, so the buffer never points at a no-op.
func (s *Session) captureUndo() func() {
	prev := s.undo
	snapshot := s.state
	s.undo = &snapshot
	return func() { s.undo = prev }
}

// UploadDocument extracts a full persona from a document and enters
// editing. The extracted fields are kept even when the follow-up summary
// refresh fails; the error is surfaced so the user can retry.
func (s *Session) UploadDocument(ctx context.Context, text string) error {
	rollback := s.captureUndo()
	state, err := s.gen.ExtractFromDocument(ctx, text)
	if err != nil {
		rollback()
		return err
	}
	s.state = state
	return s.enterEditingWithRefresh(ctx)
}

// CreateFromTopic synthesizes a persona from a web topic and enters
// editing.
func (s *Session) CreateFromTopic(ctx context.Context, topic string) error {
	rollback := s.captureUndo()
	result, err := s.gen.CreateFromTopic(ctx, topic)
	if err != nil {
		rollback()
		return err
	}
	s.state = result.State
	s.state.Sources = result.Sources
	return s.enterEditingWithRefresh(ctx)
}

// ContinueCreationChat runs one guided interview turn. On failure the
// transcript is rolled back so a failed turn leaves no half-appended state.
func (s *Session) ContinueCreationChat(ctx context.Context, userMessage string) (string, error) {
	before := len(s.creationChat)
	s.creationChat = append(s.creationChat, types.ChatMessage{Role: types.RoleUser, Content: userMessage})

	resp, err := s.gen.ContinueCreationChat(ctx, s.creationChat, s.creationPartial)
	if err != nil {
		s.creationChat = s.creationChat[:before]
		return "", err
	}

	s.creationChat = append(s.creationChat, types.ChatMessage{Role: types.RoleModel, Content: resp.ResponseText})
	s.creationPartial = s.creationPartial.Merge(resp.UpdatedParameters)
	return resp.ResponseText, nil
}

// FinishGuidedChat promotes the collected fields to the live state and
// enters editing.
func (s *Session) FinishGuidedChat(ctx context.Context) error {
	s.state = s.creationPartial
	return s.enterEditingWithRefresh(ctx)
}

// enterEditingWithRefresh moves to editing and refreshes the summary so
// fields and summary never silently disagree after a generation step.
func (s *Session) enterEditingWithRefresh(ctx context.Context) error {
	s.step = StepEditing
	s.tab = TabEditor

	summary, err := s.gen.RefreshSummary(ctx, s.state)
	if err != nil {
		return fmt.Errorf("summary refresh after generation: %w", err)
	}
	s.state.Summary = summary
	return nil
}

// RefreshSummary regenerates the summary from the current fields.
func (s *Session) RefreshSummary(ctx context.Context) error {
	summary, err := s.gen.RefreshSummary(ctx, s.state)
	if err != nil {
		return err
	}
	s.state.Summary = summary
	return nil
}

// SyncFieldsFromSummary re-derives fields from a hand-edited summary,
// merging only what the model returned.
func (s *Session) SyncFieldsFromSummary(ctx context.Context) error {
	rollback := s.captureUndo()
	patch, err := s.gen.SyncFieldsFromSummary(ctx, s.state.Summary)
	if err != nil {
		rollback()
		return err
	}
	summary := s.state.Summary
	s.state = s.state.Merge(patch)
	s.state.Summary = summary
	return nil
}

// Undo restores the buffered pre-operation state. A second undo without a
// new AI action is a no-op.
func (s *Session) Undo() bool {
	if s.undo == nil {
		return false
	}
	s.state = *s.undo
	s.undo = nil
	return true
}

// Save persists the live state. An existing persona gets a change summary
// and a new history entry; a new one gets a fresh id and empty history. A
// successful save clears the undo buffer.
func (s *Session) Save(ctx context.Context) (types.Persona, error) {
	if s.personaID == "" {
		persona, err := s.personas.SaveNew(s.state)
		if err != nil {
			return types.Persona{}, err
		}
		s.personaID = persona.ID
		s.history = persona.History
		s.undo = nil
		return persona, nil
	}

	prev, err := s.personas.Get(s.personaID)
	if err != nil {
		return types.Persona{}, err
	}
	changeSummary := s.gen.DiffSummary(ctx, prev.State, s.state)
	persona, err := s.personas.SaveExisting(s.personaID, s.state, changeSummary)
	if err != nil {
		return types.Persona{}, err
	}
	s.history = persona.History
	s.undo = nil
	return persona, nil
}

// RevertTo replaces the live field values with a history snapshot. It is a
// navigation action: the undo buffer is cleared and no history entry is
// written until the user saves again.
func (s *Session) RevertTo(index int) error {
	if index < 0 || index >= len(s.history) {
		return fmt.Errorf("history index %d out of range", index)
	}
	s.state = s.history[index].State
	s.undo = nil
	return nil
}

// TestChat returns the ad-hoc test conversation transcript.
func (s *Session) TestChat() []types.ChatMessage {
	return append([]types.ChatMessage(nil), s.testChat...)
}

// ResetTestChat clears the test conversation.
func (s *Session) ResetTestChat() {
	s.testChat = nil
}

// SendTestMessage converses with the in-progress persona. On failure the
// transcript is rolled back to its pre-send value.
func (s *Session) SendTestMessage(ctx context.Context, message string) (string, error) {
	before := len(s.testChat)
	history := append([]types.ChatMessage(nil), s.testChat...)
	s.testChat = append(s.testChat, types.ChatMessage{Role: types.RoleUser, Content: message})

	reply, err := s.gen.PersonaReply(ctx, s.state, history, message)
	if err != nil {
		s.testChat = s.testChat[:before]
		return "", err
	}
	s.testChat = append(s.testChat, types.ChatMessage{Role: types.RoleModel, Content: reply})
	return reply, nil
}
