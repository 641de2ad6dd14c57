package types

// Chat roles. The model side is "model" to match the Gemini turn format.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is one turn of an ephemeral conversation. Transcripts live
// with their session, never with the persona.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreationChatResponse is one assistant turn of the guided creation chat:
// an utterance for the user plus a partial state patch containing only the
// fields the model changed this turn.
type CreationChatResponse struct {
	ResponseText      string       `json:"responseText"`
	UpdatedParameters PersonaState `json:"updatedParameters"`
}
