package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/kotone/persona-studio/internal/types"
)

// ErrVoiceNotFound reports an unknown voice id.
var ErrVoiceNotFound = errors.New("voice not found")

// voiceFileVersion guards the persisted format; bump when the envelope
// changes shape.
const voiceFileVersion = 1

type voiceFile struct {
	Version int           `json:"version"`
	Voices  []types.Voice `json:"voices"`
}

// VoiceRepo persists the voice list to a single JSON file, loaded once at
// startup and rewritten in full on every change.
type VoiceRepo struct {
	mu     sync.RWMutex
	path   string
	voices []types.Voice
}

// NewVoiceRepo loads the voice list from path, tolerating a missing file.
func NewVoiceRepo(path string) (*VoiceRepo, error) {
	repo := &VoiceRepo{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return repo, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read voice file: %w", err)
	}

	var file voiceFile
	if err := json.Unmarshal(data, &file); err != nil {
		// The pre-versioned format was a bare array.
		var legacy []types.Voice
		if legacyErr := json.Unmarshal(data, &legacy); legacyErr != nil {
			return nil, fmt.Errorf("failed to parse voice file: %w", err)
		}
		repo.voices = legacy
		return repo, nil
	}
	repo.voices = file.Voices
	return repo, nil
}

// List returns the saved voices.
func (r *VoiceRepo) List() []types.Voice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.Voice(nil), r.voices...)
}

// Get fetches a voice by id.
func (r *VoiceRepo) Get(id string) (types.Voice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.voices {
		if v.ID == id {
			return v, nil
		}
	}
	return types.Voice{}, ErrVoiceNotFound
}

// Save creates or replaces a voice and rewrites the file.
func (r *VoiceRepo) Save(voice types.Voice) (types.Voice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if voice.ID == "" {
		voice.ID = uuid.NewString()
		r.voices = append(r.voices, voice)
	} else {
		replaced := false
		for i, existing := range r.voices {
			if existing.ID == voice.ID {
				r.voices[i] = voice
				replaced = true
				break
			}
		}
		if !replaced {
			r.voices = append(r.voices, voice)
		}
	}

	if err := r.persist(); err != nil {
		return types.Voice{}, err
	}
	return voice, nil
}

// Delete removes a voice and rewrites the file.
func (r *VoiceRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.voices {
		if existing.ID == id {
			r.voices = append(r.voices[:i], r.voices[i+1:]...)
			return r.persist()
		}
	}
	return ErrVoiceNotFound
}

func (r *VoiceRepo) persist() error {
	data, err := json.MarshalIndent(voiceFile{Version: voiceFileVersion, Voices: r.voices}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal voice file: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write voice file: %w", err)
	}
	return nil
}
