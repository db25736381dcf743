package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/lox/holdem-rooms/internal/game"
)

// Memory keeps everything in process. States are cloned in and out so
// callers never share a value with the store.
type Memory struct {
	mu     sync.RWMutex
	states map[string]*game.GameState
	chips  map[string]int
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		states: make(map[string]*game.GameState),
		chips:  make(map[string]int),
	}
}

func (m *Memory) LoadState(_ context.Context, roomID string) (*game.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.states[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	return s.Clone(), nil
}

func (m *Memory) SaveState(_ context.Context, roomID string, s *game.GameState) error {
	if err := checkState(roomID, s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[roomID] = s.Clone()
	return nil
}

func (m *Memory) SwapState(_ context.Context, roomID string, prev, next *game.GameState) error {
	if err := checkState(roomID, next); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if stored := stateVersion(m.states[roomID]); stored != stateVersion(prev) {
		return conflict(roomID, stored, prev)
	}
	m.states[roomID] = next.Clone()
	return nil
}

func (m *Memory) DeleteState(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, roomID)
	return nil
}

func (m *Memory) Chips(_ context.Context, username string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chips, ok := m.chips[username]
	if !ok {
		return 0, fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	return chips, nil
}

func (m *Memory) SetChips(_ context.Context, username string, chips int) error {
	if err := checkChips(username, chips); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.chips[username] = chips
	return nil
}

func (m *Memory) Close() error { return nil }
