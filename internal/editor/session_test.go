package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/kotone/persona-studio/internal/generation"
	"github.com/kotone/persona-studio/internal/repository"
	"github.com/kotone/persona-studio/internal/types"
)

// fakeGenerator scripts each operation independently.
type fakeGenerator struct {
	extractState types.PersonaState
	extractErr   error

	topicResult generation.TopicResult
	topicErr    error

	summary    string
	summaryErr error

	syncPatch types.PersonaState
	syncErr   error

	diff string

	chatResp types.CreationChatResponse
	chatErr  error

	reply    string
	replyErr error
}

func (f *fakeGenerator) ExtractFromDocument(ctx context.Context, text string) (types.PersonaState, error) {
	return f.extractState, f.extractErr
}

func (f *fakeGenerator) CreateFromTopic(ctx context.Context, topic string) (generation.TopicResult, error) {
	return f.topicResult, f.topicErr
}

func (f *fakeGenerator) RefreshSummary(ctx context.Context, state types.PersonaState) (string, error) {
	return f.summary, f.summaryErr
}

func (f *fakeGenerator) SyncFieldsFromSummary(ctx context.Context, summary string) (types.PersonaState, error) {
	return f.syncPatch, f.syncErr
}

func (f *fakeGenerator) DiffSummary(ctx context.Context, oldState, newState types.PersonaState) string {
	return f.diff
}

func (f *fakeGenerator) ContinueCreationChat(ctx context.Context, history []types.ChatMessage, partial types.PersonaState) (types.CreationChatResponse, error) {
	return f.chatResp, f.chatErr
}

func (f *fakeGenerator) PersonaReply(ctx context.Context, state types.PersonaState, history []types.ChatMessage, message string) (string, error) {
	return f.reply, f.replyErr
}

func TestUploadDocumentEntersEditingWithSummary(t *testing.T) {
	gen := &fakeGenerator{
		extractState: types.PersonaState{Name: "アキラ", Role: "swordsman"},
		summary:      "A stoic wandering swordsman.",
	}
	s := NewSession(repository.NewPersonaRepo(), gen)

	if err := s.UploadDocument(context.Background(), "a tale of a wandering swordsman"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Step() != StepEditing {
		t.Fatalf("expected editing step, got %q", s.Step())
	}
	state := s.State()
	if state.Name != "アキラ" || state.Summary != "A stoic wandering swordsman." {
		t.Fatalf("unexpected state: %+v", state)
	}
	if !s.CanUndo() {
		t.Fatal("an AI-mutating action must arm the undo buffer")
	}
}

func TestUploadDocumentKeepsFieldsWhenRefreshFails(t *testing.T) {
	gen := &fakeGenerator{
		extractState: types.PersonaState{Name: "アキラ"},
		summaryErr:   errors.New("quota exceeded"),
	}
	s := NewSession(repository.NewPersonaRepo(), gen)

	err := s.UploadDocument(context.Background(), "doc")
	if err == nil {
		t.Fatal("expected the refresh error to surface")
	}
	if s.Step() != StepEditing {
		t.Fatal("extraction succeeded, so the session must still enter editing")
	}
	if s.State().Name != "アキラ" {
		t.Fatal("extracted fields must survive a failed summary refresh")
	}
}

func TestUploadDocumentRollsBackUndoOnFailure(t *testing.T) {
	gen := &fakeGenerator{extractErr: errors.New("upstream down")}
	s := NewSession(repository.NewPersonaRepo(), gen)
	s.StartBlank()

	if err := s.UploadDocument(context.Background(), "doc"); err == nil {
		t.Fatal("expected extraction failure")
	}
	if s.CanUndo() {
		t.Fatal("a failed operation must not leave an undo capture behind")
	}
}

func TestCreateFromTopicAttachesSources(t *testing.T) {
	gen := &fakeGenerator{
		topicResult: generation.TopicResult{
			State:   types.PersonaState{Name: "Subject", Role: "figure"},
			Sources: []types.Source{{Title: "wiki", URI: "https://example.com"}},
		},
		summary: "A public figure.",
	}
	s := NewSession(repository.NewPersonaRepo(), gen)

	if err := s.CreateFromTopic(context.Background(), "famous subject"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	state := s.State()
	if len(state.Sources) != 1 || state.Sources[0].URI != "https://example.com" {
		t.Fatalf("unexpected sources: %#v", state.Sources)
	}
	if state.Summary != "A public figure." {
		t.Fatal("topic creation must refresh the summary on entry")
	}
}

func TestUndoRestoresPreOperationState(t *testing.T) {
	gen := &fakeGenerator{
		syncPatch: types.PersonaState{Tone: "fiery"},
	}
	s := NewSession(repository.NewPersonaRepo(), gen)
	s.StartBlank()
	s.SetState(types.PersonaState{Name: "Mika", Tone: "calm", Summary: "calm pilot"})

	if err := s.SyncFieldsFromSummary(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.State().Tone != "fiery" {
		t.Fatalf("sync did not apply, state: %+v", s.State())
	}

	if !s.Undo() {
		t.Fatal("expected undo to restore")
	}
	if s.State().Tone != "calm" {
		t.Fatalf("undo did not restore the pre-sync state: %+v", s.State())
	}
	if s.Undo() {
		t.Fatal("a second undo without a new action must be a no-op")
	}
}

func TestSyncPreservesSummaryAndMergesPatch(t *testing.T) {
	gen := &fakeGenerator{syncPatch: types.PersonaState{Tone: "wry", Summary: "model noise"}}
	s := NewSession(repository.NewPersonaRepo(), gen)
	s.StartBlank()
	s.SetState(types.PersonaState{Name: "Mika", Tone: "calm", Worldview: "optimist", Summary: "hand-edited summary"})

	if err := s.SyncFieldsFromSummary(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	state := s.State()
	if state.Summary != "hand-edited summary" {
		t.Fatalf("sync must not rewrite the summary it was derived from, got %q", state.Summary)
	}
	if state.Tone != "wry" || state.Worldview != "optimist" || state.Name != "Mika" {
		t.Fatalf("patch merge lost fields: %+v", state)
	}
}

func TestCreationChatAccumulatesAndRollsBack(t *testing.T) {
	gen := &fakeGenerator{
		chatResp: types.CreationChatResponse{
			ResponseText:      "What's their name?",
			UpdatedParameters: types.PersonaState{Role: "detective"},
		},
	}
	s := NewSession(repository.NewPersonaRepo(), gen)
	s.StartGuidedChat()

	reply, err := s.ContinueCreationChat(context.Background(), "someone who solves crimes")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "What's their name?" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if got := s.CreationChat(); len(got) != 2 {
		t.Fatalf("expected a user and a model turn, got %d", len(got))
	}
	if s.CreationPartial().Role != "detective" {
		t.Fatalf("partial state not merged: %+v", s.CreationPartial())
	}

	gen.chatErr = errors.New("upstream down")
	if _, err := s.ContinueCreationChat(context.Background(), "her name is Vera"); err == nil {
		t.Fatal("expected failure")
	}
	if got := s.CreationChat(); len(got) != 2 {
		t.Fatalf("failed turn must leave no half-appended transcript, got %d turns", len(got))
	}
}

func TestFinishGuidedChatPromotesPartial(t *testing.T) {
	gen := &fakeGenerator{
		chatResp: types.CreationChatResponse{
			ResponseText:      "Noted.",
			UpdatedParameters: types.PersonaState{Name: "Vera", Role: "detective"},
		},
		summary: "A sharp-eyed detective.",
	}
	s := NewSession(repository.NewPersonaRepo(), gen)
	s.StartGuidedChat()

	if _, err := s.ContinueCreationChat(context.Background(), "a detective named Vera"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := s.FinishGuidedChat(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	state := s.State()
	if state.Name != "Vera" || state.Summary != "A sharp-eyed detective." {
		t.Fatalf("unexpected promoted state: %+v", state)
	}
	if s.Step() != StepEditing {
		t.Fatalf("expected editing step, got %q", s.Step())
	}
}

func TestSaveNewThenExistingWritesHistory(t *testing.T) {
	repo := repository.NewPersonaRepo()
	gen := &fakeGenerator{diff: "tone changed"}
	s := NewSession(repo, gen)
	s.StartBlank()
	s.SetState(types.PersonaState{Name: "Mika", Tone: "calm"})

	persona, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if persona.ID == "" || len(persona.History) != 0 {
		t.Fatalf("first save should create an id and no history: %+v", persona)
	}
	if s.PersonaID() != persona.ID {
		t.Fatal("session should adopt the new id")
	}

	s.SetState(types.PersonaState{Name: "Mika", Tone: "fiery"})
	saved, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(saved.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(saved.History))
	}
	if saved.History[0].ChangeSummary != "tone changed" {
		t.Fatalf("unexpected change summary: %q", saved.History[0].ChangeSummary)
	}
	if saved.History[0].State.Tone != "calm" {
		t.Fatal("history must snapshot the replaced state")
	}
}

func TestSaveClearsUndo(t *testing.T) {
	gen := &fakeGenerator{syncPatch: types.PersonaState{Tone: "wry"}, diff: "edited"}
	s := NewSession(repository.NewPersonaRepo(), gen)
	s.StartBlank()
	s.SetState(types.PersonaState{Name: "Mika", Summary: "summary"})

	if err := s.SyncFieldsFromSummary(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.CanUndo() {
		t.Fatal("a successful save must clear the undo buffer")
	}
}

func TestRevertRestoresSnapshotWithoutHistoryEntry(t *testing.T) {
	repo := repository.NewPersonaRepo()
	gen := &fakeGenerator{diff: "edited", syncPatch: types.PersonaState{Tone: "wry"}}
	s := NewSession(repo, gen)
	s.StartBlank()
	s.SetState(types.PersonaState{Name: "Mika", Tone: "calm"})
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	s.SetState(types.PersonaState{Name: "Mika", Tone: "fiery"})
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := s.RevertTo(0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.State().Tone != "calm" {
		t.Fatalf("revert did not restore the snapshot: %+v", s.State())
	}
	if s.CanUndo() {
		t.Fatal("revert must clear the undo buffer")
	}

	stored, _ := repo.Get(s.PersonaID())
	if len(stored.History) != 1 {
		t.Fatalf("revert must not write a history entry, got %d", len(stored.History))
	}

	if err := s.RevertTo(5); err == nil {
		t.Fatal("expected out-of-range index to fail")
	}
}

func TestOpenSessionLoadsExistingPersona(t *testing.T) {
	repo := repository.NewPersonaRepo()
	persona, err := repo.SaveNew(types.PersonaState{Name: "Mika"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	s, err := OpenSession(repo, &fakeGenerator{}, persona.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Step() != StepEditing || s.PersonaID() != persona.ID {
		t.Fatalf("unexpected session: step=%q id=%q", s.Step(), s.PersonaID())
	}

	if _, err := OpenSession(repo, &fakeGenerator{}, "missing"); !errors.Is(err, repository.ErrPersonaNotFound) {
		t.Fatalf("expected ErrPersonaNotFound, got %v", err)
	}
}

func TestTestChatRollsBackOnFailure(t *testing.T) {
	gen := &fakeGenerator{reply: "In character."}
	s := NewSession(repository.NewPersonaRepo(), gen)
	s.StartBlank()
	s.SetState(types.PersonaState{Name: "Mika"})

	if _, err := s.SendTestMessage(context.Background(), "hello"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := s.TestChat(); len(got) != 2 || got[1].Content != "In character." {
		t.Fatalf("unexpected transcript: %#v", got)
	}

	gen.replyErr = errors.New("upstream down")
	if _, err := s.SendTestMessage(context.Background(), "again"); err == nil {
		t.Fatal("expected failure")
	}
	if got := s.TestChat(); len(got) != 2 {
		t.Fatalf("failed send must roll the transcript back, got %d turns", len(got))
	}

	s.ResetTestChat()
	if len(s.TestChat()) != 0 {
		t.Fatal("reset should clear the transcript")
	}
}
