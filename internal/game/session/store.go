// Package session runs a play session: it creates or restores the
// character, lets the player pick fights, and persists the result of each.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

// ErrCharacterNotFound is returned by a Store that has no character by a name.
var ErrCharacterNotFound = errors.New("character not found")

// Summary is the persisted record of one finished encounter.
type Summary struct {
	MonsterTemplate string
	MonsterLevel    int
	Outcome         string
	Rounds          int
	Experience      int
	Gold            int
}

// Store persists characters and their encounter history.
type Store interface {
	LoadCharacter(ctx context.Context, name string) (entity.CharacterSnapshot, error)
	SaveCharacter(ctx context.Context, snap entity.CharacterSnapshot) error
	SaveEncounter(ctx context.Context, snap entity.CharacterSnapshot, sum Summary) error
}

// MemoryStore is a Store that lives only as long as the process.
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	characters map[string]entity.CharacterSnapshot
	history    map[string][]Summary
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		characters: make(map[string]entity.CharacterSnapshot),
		history:    make(map[string][]Summary),
	}
}

// LoadCharacter implements Store.
func (m *MemoryStore) LoadCharacter(_ context.Context, name string) (entity.CharacterSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.characters[name]
	if !ok {
		return entity.CharacterSnapshot{}, ErrCharacterNotFound
	}
	return snap, nil
}

// SaveCharacter implements Store.
func (m *MemoryStore) SaveCharacter(_ context.Context, snap entity.CharacterSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[snap.Name] = snap
	return nil
}

// SaveEncounter implements Store.
func (m *MemoryStore) SaveEncounter(_ context.Context, snap entity.CharacterSnapshot, sum Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[snap.Name] = snap
	m.history[snap.Name] = append(m.history[snap.Name], sum)
	return nil
}

// History returns the encounters recorded for name, oldest first.
func (m *MemoryStore) History(name string) []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, len(m.history[name]))
	copy(out, m.history[name])
	return out
}
