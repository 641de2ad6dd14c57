// Package repository owns the studio's mutable state: the in-memory persona
// list and the file-persisted voice list.
package repository

import (
	"path/filepath"
)

// voiceFileName matches the key the browser build used for its local
// storage slot.
const voiceFileName = "fishAudioVoices.json"

// Store aggregates the repositories.
type Store struct {
	Personas *PersonaRepo
	Voices   *VoiceRepo
}

// NewStore initializes the repositories under dataDir.
func NewStore(dataDir string) (*Store, error) {
	voices, err := NewVoiceRepo(filepath.Join(dataDir, voiceFileName))
	if err != nil {
		return nil, err
	}
	return &Store{
		Personas: NewPersonaRepo(),
		Voices:   voices,
	}, nil
}
