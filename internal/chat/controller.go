// Package chat implements the production chat surface: persona and voice
// selection, the transcript, and audio playback.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kotone/persona-studio/internal/repository"
	"github.com/kotone/persona-studio/internal/types"
)

// ReplyFallback keeps the conversation from ending without a response
// bubble when reply generation fails.
const ReplyFallback = "Sorry, I couldn't come up with a reply just now. Please try again."

// Replier is the slice of the generation service the chat needs.
type Replier interface {
	PersonaReply(ctx context.Context, state types.PersonaState, history []types.ChatMessage, message string) (string, error)
}

// Synthesizer turns text into speech with a caller-supplied token.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, token, voiceID string) ([]byte, string, error)
}

// DefaultAssistantState is the built-in persona used when none is selected.
func DefaultAssistantState() types.PersonaState {
	return types.PersonaState{
		Name:        "Assistant",
		Role:        "helpful conversation partner",
		Tone:        "warm and concise",
		Personality: "curious, encouraging, direct",
	}
}

// Controller owns one production chat session. It is not safe for
// concurrent use; the studio sends one message at a time.
type Controller struct {
	personas *repository.PersonaRepo
	voices   *repository.VoiceRepo
	gen      Replier
	tts      Synthesizer
	sink     AudioPlaybackSink

	persona      types.PersonaState
	personaID    string
	voice        *types.Voice
	audioEnabled bool
	transcript   []types.ChatMessage
}

// NewController starts a chat with the default assistant and audio enabled.
func NewController(personas *repository.PersonaRepo, voices *repository.VoiceRepo, gen Replier, tts Synthesizer, sink AudioPlaybackSink) *Controller {
	c := &Controller{
		personas:     personas,
		voices:       voices,
		gen:          gen,
		tts:          tts,
		sink:         sink,
		persona:      DefaultAssistantState(),
		audioEnabled: true,
	}
	c.resetTranscript()
	return c
}

// Persona returns the active persona state.
func (c *Controller) Persona() types.PersonaState { return c.persona }

// PersonaID returns the selected persona id, empty for the built-in
// assistant.
func (c *Controller) PersonaID() string { return c.personaID }

// Voice returns the selected voice, nil for none.
func (c *Controller) Voice() *types.Voice {
	if c.voice == nil {
		return nil
	}
	v := *c.voice
	return &v
}

// Transcript returns a copy of the conversation so far.
func (c *Controller) Transcript() []types.ChatMessage {
	return append([]types.ChatMessage(nil), c.transcript...)
}

// SetAudioEnabled toggles speech output; disabling stops any playing clip.
func (c *Controller) SetAudioEnabled(enabled bool) {
	c.audioEnabled = enabled
	if !enabled {
		c.sink.Stop()
	}
}

// SelectPersona switches the conversation partner, resets the transcript to
// a fresh greeting, and stops any playing audio. An empty id selects the
// built-in assistant.
func (c *Controller) SelectPersona(id string) error {
	if id == "" {
		c.persona = DefaultAssistantState()
		c.personaID = ""
	} else {
		persona, err := c.personas.Get(id)
		if err != nil {
			return err
		}
		c.persona = persona.State
		c.personaID = persona.ID
	}
	c.sink.Stop()
	c.resetTranscript()
	return nil
}

// SelectVoice switches the speech voice, resets the transcript, and stops
// any playing audio. An empty id selects no voice.
func (c *Controller) SelectVoice(id string) error {
	if id == "" {
		c.voice = nil
	} else {
		voice, err := c.voices.Get(id)
		if err != nil {
			return err
		}
		c.voice = &voice
	}
	c.sink.Stop()
	c.resetTranscript()
	return nil
}

func (c *Controller) resetTranscript() {
	c.transcript = []types.ChatMessage{{
		Role:    types.RoleModel,
		Content: fmt.Sprintf("Hi, I'm %s. What shall we talk about?", c.persona.Name),
	}}
}

// Send appends the user message, obtains an in-character reply, and speaks
// it when a voice is selected. A failed reply still leaves a response
// bubble so the conversation is never half-appended.
func (c *Controller) Send(ctx context.Context, message string) (string, error) {
	history := append([]types.ChatMessage(nil), c.transcript...)
	c.transcript = append(c.transcript, types.ChatMessage{Role: types.RoleUser, Content: message})

	reply, err := c.gen.PersonaReply(ctx, c.persona, history, message)
	if err != nil {
		c.transcript = append(c.transcript, types.ChatMessage{Role: types.RoleModel, Content: ReplyFallback})
		return "", err
	}
	c.transcript = append(c.transcript, types.ChatMessage{Role: types.RoleModel, Content: reply})

	if c.voice != nil && c.audioEnabled {
		audio, contentType, synthErr := c.tts.Synthesize(ctx, reply, c.voice.Token, c.voice.VoiceID)
		if synthErr != nil {
			// Speech is an annotation on a successful turn; the reply stands.
			slog.Warn("speech synthesis failed", "voice", c.voice.Name, "error", synthErr)
			return reply, nil
		}
		c.sink.Stop()
		if playErr := c.sink.Play(audio, contentType); playErr != nil {
			slog.Warn("audio playback failed", "error", playErr)
		}
	}
	return reply, nil
}

// Dictate consumes final transcript lines from src until the source closes
// or the context ends, sending each line as a user message. A failed turn
// already degrades inside Send, so dictation keeps listening.
func (c *Controller) Dictate(ctx context.Context, src SpeechInputSource) error {
	lines, err := src.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start speech input: %w", err)
	}
	defer src.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, err := c.Send(ctx, line); err != nil {
				slog.Warn("dictated turn failed", "error", err)
			}
		}
	}
}
