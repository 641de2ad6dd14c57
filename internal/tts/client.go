// Package tts is the FishAudio text-to-speech client. The studio holds no
// TTS secret; every call carries the caller's token.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the FishAudio API endpoint.
const DefaultBaseURL = "https://api.fish.audio"

const ttsEndpoint = "/v1/tts"

// APIError is a provider failure with the status code to relay.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tts provider error %d: %s", e.StatusCode, e.Message)
}

// Client calls the TTS provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client; an empty baseURL selects the provider
// default.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // synthesis of long replies can be slow
		},
	}
}

type synthesizeRequest struct {
	Text        string `json:"text"`
	ReferenceID string `json:"reference_id"`
	Format      string `json:"format"`
}

// Synthesize generates audio for text using the given voice, returning the
// audio bytes and the provider's content type.
func (c *Client) Synthesize(ctx context.Context, text, token, voiceID string) ([]byte, string, error) {
	if text == "" {
		return nil, "", fmt.Errorf("text cannot be empty")
	}
	if token == "" {
		return nil, "", fmt.Errorf("token cannot be empty")
	}
	if voiceID == "" {
		return nil, "", fmt.Errorf("voice id cannot be empty")
	}

	body, err := json.Marshal(synthesizeRequest{
		Text:        text,
		ReferenceID: voiceID,
		Format:      "mp3",
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ttsEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractDetail(payload),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") && contentType != "application/octet-stream" {
		return nil, "", &APIError{
			StatusCode: http.StatusBadGateway,
			Message:    fmt.Sprintf("unexpected content type %q from provider", contentType),
		}
	}

	return payload, contentType, nil
}

// extractDetail pulls a human-readable message out of a provider error
// body, falling back to the raw text.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch detail := envelope.Detail.(type) {
		case string:
			if detail != "" {
				return detail
			}
		case map[string]any:
			if msg, ok := detail["message"].(string); ok && msg != "" {
				return msg
			}
		case []any:
			if len(detail) > 0 {
				if first, ok := detail[0].(map[string]any); ok {
					if msg, ok := first["msg"].(string); ok && msg != "" {
						return msg
					}
				}
			}
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "provider returned no error detail"
	}
	return text
}
