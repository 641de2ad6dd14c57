package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kotone/persona-studio/internal/models"
	"github.com/kotone/persona-studio/internal/types"
)

// fakeLLM scripts one response per call, in order.
type fakeLLM struct {
	responses []*models.Response
	errs      []error
	requests  []*models.Request
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) GenerateContent(ctx context.Context, req *models.Request) (*models.Response, error) {
	f.requests = append(f.requests, req)
	idx := len(f.requests) - 1
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return &models.Response{Text: ""}, nil
}

func TestExtractFromDocumentParsesState(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{
		{Text: "```json\n{\"name\":\"アキラ\",\"role\":\"swordsman\",\"tone\":\"stoic\"}\n```"},
	}}
	svc := NewService(llm, "")

	state, err := svc.ExtractFromDocument(context.Background(), "a tale of a wandering swordsman named アキラ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state.Name != "アキラ" || state.Role != "swordsman" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if llm.requests[0].Schema == nil {
		t.Fatal("extraction must request structured output")
	}
}

func TestExtractFromDocumentGarbageOutput(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: "I am sorry, I cannot do that."}}}
	svc := NewService(llm, "")

	_, err := svc.ExtractFromDocument(context.Background(), "doc")
	if !IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestCreateFromTopicDedupesSources(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{
		{
			Text: "Research dossier about the subject.",
			Sources: []types.Source{
				{Title: "wiki", URI: "https://example.com/a"},
				{Title: "dup", URI: "https://example.com/a"},
				{Title: "blank", URI: ""},
				{Title: "hash", URI: "#"},
				{Title: "news", URI: "https://example.com/b"},
			},
		},
		{Text: `{"name":"Subject","role":"figure","summary":"pre-filled"}`},
	}}
	svc := NewService(llm, "")

	result, err := svc.CreateFromTopic(context.Background(), "famous subject")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 deduplicated sources, got %#v", result.Sources)
	}
	if result.Sources[0].URI != "https://example.com/a" || result.Sources[1].URI != "https://example.com/b" {
		t.Fatalf("unexpected source order: %#v", result.Sources)
	}
	if result.State.Summary != "" {
		t.Fatal("topic creation must leave the summary empty for a later refresh")
	}
	if !llm.requests[0].UseSearch {
		t.Fatal("topic research must enable web search")
	}
	if llm.requests[1].UseSearch {
		t.Fatal("structured extraction must not enable web search")
	}
}

func TestCreateFromTopicEmptyResearch(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: "   \n"}}}
	svc := NewService(llm, "")

	_, err := svc.CreateFromTopic(context.Background(), "obscure topic")
	if !IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestRefreshSummaryUsesUtilityModel(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: "  A concise summary.  "}}}
	svc := NewService(llm, "gemini-2.5-flash-lite")

	summary, err := svc.RefreshSummary(context.Background(), types.PersonaState{Name: "Mika"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary != "A concise summary." {
		t.Fatalf("unexpected summary: %q", summary)
	}
	if llm.requests[0].Model != "gemini-2.5-flash-lite" {
		t.Fatalf("expected the utility model, got %q", llm.requests[0].Model)
	}
}

func TestRefreshSummaryRequiresName(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: "should never be asked"}}}
	svc := NewService(llm, "")

	_, err := svc.RefreshSummary(context.Background(), types.PersonaState{Role: "pilot"})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if len(llm.requests) != 0 {
		t.Fatal("a nameless persona must not reach the model")
	}
}

func TestRefreshSummaryEmptyOutput(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: ""}}}
	svc := NewService(llm, "")

	if _, err := svc.RefreshSummary(context.Background(), types.PersonaState{Name: "Mika"}); !IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestDiffSummaryFallsBackOnError(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("quota exceeded")}}
	svc := NewService(llm, "")

	got := svc.DiffSummary(context.Background(),
		types.PersonaState{Name: "Mika", Tone: "calm"},
		types.PersonaState{Name: "Mika", Tone: "fiery"})
	if got != FallbackChangeSummary {
		t.Fatalf("expected fallback summary, got %q", got)
	}
}

func TestDiffSummaryKeepsFirstLineOnly(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: "Tone changed to fiery.\nAlso some rambling."}}}
	svc := NewService(llm, "")

	got := svc.DiffSummary(context.Background(), types.PersonaState{}, types.PersonaState{})
	if got != "Tone changed to fiery." {
		t.Fatalf("unexpected change summary: %q", got)
	}
}

func TestSyncFieldsReturnsPatch(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: `{"tone":"wry"}`}}}
	svc := NewService(llm, "")

	patch, err := svc.SyncFieldsFromSummary(context.Background(), "a wry narrator")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if patch.Tone != "wry" || patch.Name != "" {
		t.Fatalf("unexpected patch: %+v", patch)
	}
}

func TestContinueCreationChatParsesEnvelope(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{
		{Text: `{"responseText":"Great, what's their name?","updatedParameters":{"role":"detective"}}`},
	}}
	svc := NewService(llm, "")

	resp, err := svc.ContinueCreationChat(context.Background(),
		[]types.ChatMessage{{Role: types.RoleUser, Content: "someone who solves crimes"}},
		types.PersonaState{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ResponseText != "Great, what's their name?" {
		t.Fatalf("unexpected reply: %q", resp.ResponseText)
	}
	if resp.UpdatedParameters.Role != "detective" {
		t.Fatalf("unexpected parameters: %+v", resp.UpdatedParameters)
	}
}

func TestContinueCreationChatEmptyReply(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: `{"responseText":"  ","updatedParameters":{}}`}}}
	svc := NewService(llm, "")

	_, err := svc.ContinueCreationChat(context.Background(), nil, types.PersonaState{})
	if !IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestPersonaReplyRequiresPendingMessage(t *testing.T) {
	svc := NewService(&fakeLLM{}, "")

	_, err := svc.PersonaReply(context.Background(), types.PersonaState{Name: "Mika"}, nil, "   ")
	if !errors.Is(err, ErrNoPendingUserMessage) {
		t.Fatalf("expected ErrNoPendingUserMessage, got %v", err)
	}
}

func TestPersonaReplyAppendsPendingMessage(t *testing.T) {
	llm := &fakeLLM{responses: []*models.Response{{Text: "Hello there."}}}
	svc := NewService(llm, "")

	history := []types.ChatMessage{
		{Role: types.RoleModel, Content: "Hi, I'm Mika."},
		{Role: types.RoleUser, Content: "Hello"},
	}
	reply, err := svc.PersonaReply(context.Background(), types.PersonaState{Name: "Mika"}, history, "How are you?")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Hello there." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	contents := llm.requests[0].Contents
	if len(contents) != 3 {
		t.Fatalf("expected history plus pending turn, got %d turns", len(contents))
	}
	last := contents[len(contents)-1]
	if last.Role != types.RoleUser || last.Content != "How are you?" {
		t.Fatalf("unexpected final turn: %+v", last)
	}
	if !strings.Contains(llm.requests[0].System, "Mika") {
		t.Fatal("reply instruction should carry the persona fields")
	}
}
