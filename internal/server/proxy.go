package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/kotone/persona-studio/internal/models"
	"github.com/kotone/persona-studio/internal/tts"
	"github.com/kotone/persona-studio/internal/types"
)

// Credential proxy actions.
const (
	actionGenerateContent = "generateContent"
	actionChat            = "chat"
)

// ProxyHandler serves the two provider proxies. The LLM adapter is nil when
// the server-side key is absent; every request then fails with 500 instead
// of silently defaulting.
type ProxyHandler struct {
	llm models.LLM
	tts *tts.Client
}

// NewProxyHandler creates the proxy handler.
func NewProxyHandler(llm models.LLM, ttsClient *tts.Client) *ProxyHandler {
	return &ProxyHandler{llm: llm, tts: ttsClient}
}

// generatePayload is the pass-through variant of the proxy envelope.
type generatePayload struct {
	Model    string          `json:"model"`
	Contents string          `json:"contents"`
	Config   *generateConfig `json:"config"`
}

type generateConfig struct {
	SystemInstruction string             `json:"systemInstruction"`
	ResponseSchema    *jsonschema.Schema `json:"responseSchema"`
	Tools             []generateTool     `json:"tools"`
	Temperature       *float32           `json:"temperature"`
}

type generateTool struct {
	GoogleSearch *struct{} `json:"googleSearch"`
}

// chatPayload is the conversational variant of the proxy envelope.
type chatPayload struct {
	Model             string              `json:"model"`
	SystemInstruction string              `json:"systemInstruction"`
	History           []types.ChatMessage `json:"history"`
	Message           string              `json:"message"`
}

// Gemini handles POST /api/gemini.
func (h *ProxyHandler) Gemini(c *gin.Context) {
	if h.llm == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "GEMINI_API_KEY is not configured on the server"})
		return
	}

	var envelope geminiRequest
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var req *models.Request
	switch envelope.Action {
	case actionGenerateContent:
		var payload generatePayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid generateContent payload"})
			return
		}
		req = &models.Request{
			Model:  payload.Model,
			Prompt: payload.Contents,
		}
		if payload.Config != nil {
			req.System = payload.Config.SystemInstruction
			req.Schema = payload.Config.ResponseSchema
			req.Temperature = payload.Config.Temperature
			for _, tool := range payload.Config.Tools {
				if tool.GoogleSearch != nil {
					req.UseSearch = true
				}
			}
		}
	case actionChat:
		var payload chatPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat payload"})
			return
		}
		// Reshape history + pending message into one turn sequence; unknown
		// roles are coerced to user.
		contents := make([]types.ChatMessage, 0, len(payload.History)+1)
		for _, msg := range payload.History {
			role := msg.Role
			if role != types.RoleModel {
				role = types.RoleUser
			}
			contents = append(contents, types.ChatMessage{Role: role, Content: msg.Content})
		}
		contents = append(contents, types.ChatMessage{Role: types.RoleUser, Content: payload.Message})
		req = &models.Request{
			Model:    payload.Model,
			System:   payload.SystemInstruction,
			Contents: contents,
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	resp, err := h.llm.GenerateContent(c.Request.Context(), req)
	if err != nil {
		var cfgErr *models.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": cfgErr.Error()})
			return
		}
		var upstream *models.UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode > 0 {
			c.JSON(upstream.StatusCode, gin.H{"error": upstream.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	out := gin.H{"text": resp.Text}
	if len(resp.Sources) > 0 {
		out["sources"] = resp.Sources
	}
	c.JSON(http.StatusOK, out)
}

// ttsRequest is the voice proxy body; all fields are required.
type ttsRequest struct {
	Text    string `json:"text"`
	Token   string `json:"token"`
	VoiceID string `json:"voiceId"`
}

// TTS handles POST /api/tts.
func (h *ProxyHandler) TTS(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Text == "" || req.Token == "" || req.VoiceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text, token and voiceId are required"})
		return
	}

	audio, contentType, err := h.tts.Synthesize(c.Request.Context(), req.Text, req.Token, req.VoiceID)
	if err != nil {
		var apiErr *tts.APIError
		if errors.As(err, &apiErr) {
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, contentType, audio)
}
