// Package types defines the shared data model of the studio.
package types

import (
	"strings"
	"time"
)

// MaxHistoryEntries caps a persona's edit history; the oldest entry is
// dropped once the cap is exceeded.
const MaxHistoryEntries = 10

// Source is a web citation attached to a generated persona.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// PersonaState is the editable attribute set of a character.
type PersonaState struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Tone        string   `json:"tone"`
	Personality string   `json:"personality"`
	Worldview   string   `json:"worldview"`
	Experience  string   `json:"experience"`
	Other       string   `json:"other"`
	Summary     string   `json:"summary"`
	Sources     []Source `json:"sources,omitempty"`
}

// EmptyPersonaState returns a blank state with no sources.
func EmptyPersonaState() PersonaState {
	return PersonaState{}
}

// HasName reports whether the state carries a usable name.
func (s PersonaState) HasName() bool {
	return strings.TrimSpace(s.Name) != ""
}

// Merge overlays non-empty fields of patch onto s and returns the result.
// Fields the patch leaves empty keep their prior values, so a partial
// model response never erases what the user already has.
func (s PersonaState) Merge(patch PersonaState) PersonaState {
	merged := s
	if patch.Name != "" {
		merged.Name = patch.Name
	}
	if patch.Role != "" {
		merged.Role = patch.Role
	}
	if patch.Tone != "" {
		merged.Tone = patch.Tone
	}
	if patch.Personality != "" {
		merged.Personality = patch.Personality
	}
	if patch.Worldview != "" {
		merged.Worldview = patch.Worldview
	}
	if patch.Experience != "" {
		merged.Experience = patch.Experience
	}
	if patch.Other != "" {
		merged.Other = patch.Other
	}
	if patch.Summary != "" {
		merged.Summary = patch.Summary
	}
	if len(patch.Sources) > 0 {
		merged.Sources = patch.Sources
	}
	return merged
}

// Equal compares the editable fields of two states. Sources are compared
// by position since their order is meaningful.
func (s PersonaState) Equal(other PersonaState) bool {
	if s.Name != other.Name || s.Role != other.Role || s.Tone != other.Tone ||
		s.Personality != other.Personality || s.Worldview != other.Worldview ||
		s.Experience != other.Experience || s.Other != other.Other ||
		s.Summary != other.Summary {
		return false
	}
	if len(s.Sources) != len(other.Sources) {
		return false
	}
	for i := range s.Sources {
		if s.Sources[i] != other.Sources[i] {
			return false
		}
	}
	return true
}

// PersonaHistoryEntry is an immutable snapshot of the state a save replaced.
type PersonaHistoryEntry struct {
	State         PersonaState `json:"state"`
	Timestamp     time.Time    `json:"timestamp"`
	ChangeSummary string       `json:"change_summary"`
}

// Persona is a saved character profile with its edit history,
// most-recent-first.
type Persona struct {
	ID      string                `json:"id"`
	State   PersonaState          `json:"state"`
	History []PersonaHistoryEntry `json:"history"`
}

// Clone returns a deep copy so callers cannot mutate stored history.
func (p Persona) Clone() Persona {
	out := p
	out.History = make([]PersonaHistoryEntry, len(p.History))
	copy(out.History, p.History)
	for i := range out.History {
		out.History[i].State.Sources = append([]Source(nil), p.History[i].State.Sources...)
	}
	out.State.Sources = append([]Source(nil), p.State.Sources...)
	return out
}
