package server

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kotone/persona-studio/internal/chat"
	"github.com/kotone/persona-studio/internal/editor"
	"github.com/kotone/persona-studio/internal/generation"
	"github.com/kotone/persona-studio/internal/models"
	"github.com/kotone/persona-studio/internal/repository"
	"github.com/kotone/persona-studio/internal/types"
)

// StudioHandler exposes the studio state over REST: the persona and voice
// collections, the single editor session, and the production chat. One
// browser tab's worth of state lives here, guarded by one lock because the
// UI issues one mutating action at a time.
type StudioHandler struct {
	mu      sync.Mutex
	store   *repository.Store
	gen     *generation.Service
	session *editor.Session
	chat    *chat.Controller
	clips   *chat.ClipBuffer
}

// NewStudioHandler wires the studio state.
func NewStudioHandler(store *repository.Store, gen *generation.Service, synth chat.Synthesizer) *StudioHandler {
	clips := chat.NewClipBuffer()
	return &StudioHandler{
		store: store,
		gen:   gen,
		chat:  chat.NewController(store.Personas, store.Voices, gen, synth, clips),
		clips: clips,
	}
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrPersonaNotFound), errors.Is(err, repository.ErrVoiceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrNameRequired), errors.Is(err, generation.ErrNameRequired),
		errors.Is(err, generation.ErrNoPendingUserMessage):
		status = http.StatusBadRequest
	case generation.IsGenerationError(err):
		status = http.StatusUnprocessableEntity
	default:
		var cfgErr *models.ConfigurationError
		var upstream *models.UpstreamError
		if errors.As(err, &cfgErr) {
			status = http.StatusInternalServerError
		} else if errors.As(err, &upstream) && upstream.StatusCode > 0 {
			status = upstream.StatusCode
		} else {
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, APIResponse{Success: false, Error: err.Error()})
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// --- persona collection ---

func (h *StudioHandler) ListPersonas(c *gin.Context) {
	respondData(c, h.store.Personas.List())
}

func (h *StudioHandler) GetPersona(c *gin.Context) {
	persona, err := h.store.Personas.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, persona)
}

func (h *StudioHandler) DeletePersona(c *gin.Context) {
	if err := h.store.Personas.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, nil)
}

// --- voice collection ---

func (h *StudioHandler) ListVoices(c *gin.Context) {
	respondData(c, h.store.Voices.List())
}

func (h *StudioHandler) SaveVoice(c *gin.Context) {
	var voice types.Voice
	if err := c.ShouldBindJSON(&voice); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid voice body"})
		return
	}
	saved, err := h.store.Voices.Save(voice)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, saved)
}

func (h *StudioHandler) DeleteVoice(c *gin.Context) {
	if err := h.store.Voices.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, nil)
}

// --- editor session ---

func (h *StudioHandler) editorView() editorView {
	s := h.session
	return editorView{
		Step:            string(s.Step()),
		Tab:             string(s.Tab()),
		PersonaID:       s.PersonaID(),
		State:           s.State(),
		History:         s.History(),
		CanUndo:         s.CanUndo(),
		CreationChat:    s.CreationChat(),
		CreationPartial: s.CreationPartial(),
		TestChat:        s.TestChat(),
	}
}

// requireSession responds 409 and returns false when no editor is open.
func (h *StudioHandler) requireSession(c *gin.Context) bool {
	if h.session == nil {
		c.JSON(http.StatusConflict, APIResponse{Success: false, Error: "no editor session open"})
		return false
	}
	return true
}

func (h *StudioHandler) OpenEditor(c *gin.Context) {
	var req struct {
		PersonaID string `json:"personaId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if req.PersonaID == "" {
		h.session = editor.NewSession(h.store.Personas, h.gen)
	} else {
		session, err := editor.OpenSession(h.store.Personas, h.gen, req.PersonaID)
		if err != nil {
			respondError(c, err)
			return
		}
		h.session = session
	}
	respondData(c, h.editorView())
}

func (h *StudioHandler) GetEditor(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorMethod(c *gin.Context) {
	var req struct {
		Method   string `json:"method"`
		Document string `json:"document"`
		Topic    string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}

	var err error
	switch req.Method {
	case "blank":
		h.session.StartBlank()
	case "chat":
		h.session.StartGuidedChat()
	case "document":
		err = h.session.UploadDocument(c.Request.Context(), req.Document)
	case "topic":
		err = h.session.CreateFromTopic(c.Request.Context(), req.Topic)
	default:
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "unknown creation method"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorCreationChat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	if _, err := h.session.ContinueCreationChat(c.Request.Context(), req.Message); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorFinishCreationChat(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	if err := h.session.FinishGuidedChat(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorState(c *gin.Context) {
	var req struct {
		State types.PersonaState `json:"state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	h.session.SetState(req.State)
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorTab(c *gin.Context) {
	var req struct {
		Tab string `json:"tab"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	h.session.SelectTab(editor.Tab(req.Tab))
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorRefreshSummary(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	if err := h.session.RefreshSummary(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorSyncFields(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	if err := h.session.SyncFieldsFromSummary(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorUndo(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	h.session.Undo()
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorSave(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	persona, err := h.session.Save(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, persona)
}

func (h *StudioHandler) EditorRevert(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	if err := h.session.RevertTo(req.Index); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: err.Error()})
		return
	}
	respondData(c, h.editorView())
}

func (h *StudioHandler) EditorTestChat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.requireSession(c) {
		return
	}
	if _, err := h.session.SendTestMessage(c.Request.Context(), req.Message); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.editorView())
}

// --- production chat ---

func (h *StudioHandler) chatView() chatView {
	return chatView{
		PersonaID:  h.chat.PersonaID(),
		Persona:    h.chat.Persona(),
		Voice:      h.chat.Voice(),
		Transcript: h.chat.Transcript(),
	}
}

func (h *StudioHandler) GetChat(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	respondData(c, h.chatView())
}

func (h *StudioHandler) ChatSelectPersona(c *gin.Context) {
	var req struct {
		PersonaID string `json:"personaId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.chat.SelectPersona(req.PersonaID); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.chatView())
}

func (h *StudioHandler) ChatSelectVoice(c *gin.Context) {
	var req struct {
		VoiceID string `json:"voiceId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.chat.SelectVoice(req.VoiceID); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.chatView())
}

func (h *StudioHandler) ChatAudio(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.chat.SetAudioEnabled(req.Enabled)
	respondData(c, h.chatView())
}

func (h *StudioHandler) ChatSend(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.chat.Send(c.Request.Context(), req.Message); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, h.chatView())
}

// ChatClip serves the most recent synthesized clip for playback.
func (h *StudioHandler) ChatClip(c *gin.Context) {
	data, contentType, ok := h.clips.Current()
	if !ok {
		c.JSON(http.StatusNotFound, APIResponse{Success: false, Error: "no clip available"})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
