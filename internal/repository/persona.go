package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kotone/persona-studio/internal/types"
)

var (
	// ErrPersonaNotFound reports an unknown persona id.
	ErrPersonaNotFound = errors.New("persona not found")
	// ErrNameRequired rejects persisting a persona without a name.
	ErrNameRequired = errors.New("persona name is required")
)

// PersonaRepo holds the personas of one studio session in memory. All
// mutation goes through the repo so history semantics live in one place.
type PersonaRepo struct {
	mu       sync.RWMutex
	personas map[string]types.Persona
	order    []string
	nowFunc  func() time.Time
}

// NewPersonaRepo returns an empty PersonaRepo.
func NewPersonaRepo() *PersonaRepo {
	return &PersonaRepo{
		personas: make(map[string]types.Persona),
		nowFunc:  time.Now,
	}
}

// SaveNew persists a first-time persona: a fresh id and empty history.
func (r *PersonaRepo) SaveNew(state types.PersonaState) (types.Persona, error) {
	if !state.HasName() {
		return types.Persona{}, ErrNameRequired
	}

	persona := types.Persona{
		ID:      uuid.NewString(),
		State:   state,
		History: []types.PersonaHistoryEntry{},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.personas[persona.ID] = persona.Clone()
	r.order = append(r.order, persona.ID)
	return persona, nil
}

// SaveExisting replaces a persona's state and prepends a history entry
// snapshotting the state being replaced. History is capped at
// types.MaxHistoryEntries, oldest dropped.
func (r *PersonaRepo) SaveExisting(id string, state types.PersonaState, changeSummary string) (types.Persona, error) {
	if !state.HasName() {
		return types.Persona{}, ErrNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.personas[id]
	if !ok {
		return types.Persona{}, ErrPersonaNotFound
	}

	entry := types.PersonaHistoryEntry{
		State:         prev.State,
		Timestamp:     r.nowFunc(),
		ChangeSummary: changeSummary,
	}
	history := make([]types.PersonaHistoryEntry, 0, len(prev.History)+1)
	history = append(history, entry)
	history = append(history, prev.History...)
	if len(history) > types.MaxHistoryEntries {
		history = history[:types.MaxHistoryEntries]
	}

	persona := types.Persona{ID: id, State: state, History: history}
	r.personas[id] = persona.Clone()
	return persona, nil
}

// Get fetches a persona by id.
func (r *PersonaRepo) Get(id string) (types.Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	persona, ok := r.personas[id]
	if !ok {
		return types.Persona{}, ErrPersonaNotFound
	}
	return persona.Clone(), nil
}

// List returns all personas in creation order.
func (r *PersonaRepo) List() []types.Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Persona, 0, len(r.order))
	for _, id := range r.order {
		if persona, ok := r.personas[id]; ok {
			out = append(out, persona.Clone())
		}
	}
	return out
}

// Delete removes a persona.
func (r *PersonaRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.personas[id]; !ok {
		return ErrPersonaNotFound
	}
	delete(r.personas, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
