// Package room runs hands for named rooms on top of a store.
//
// The engine is a pure function of state; Manager is the boundary that
// loads a room's state, applies the engine, saves the result and keeps chip
// balances in step once a hand is settled. Calls for the same room are
// serialized, calls for different rooms run in parallel.
package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/gameid"
	"github.com/lox/holdem-rooms/internal/randutil"
	"github.com/lox/holdem-rooms/internal/store"
)

// ErrHandInProgress is returned when starting a hand over an unfinished one.
var ErrHandInProgress = errors.New("room: hand in progress")

// Options configures a Manager
type Options struct {
	// DefaultChips is given to, and recorded for, players the store does not know.
	DefaultChips int
	// Automated marks seats played by the engine's automated policy.
	Automated func(name string) bool
	// ActionTimeout is how long a human seat may hold the action before
	// ExpireIdle folds it. Zero disables the timeout.
	ActionTimeout time.Duration
	// Seed makes shuffles reproducible when non-zero.
	Seed int64
}

// turnClock records when the current seat got the action
type turnClock struct {
	handID  string
	seat    int
	actions int
	since   time.Time
}

// Manager serializes engine calls per room
type Manager struct {
	store  store.Store
	engine *game.Engine
	clock  quartz.Clock
	logger *log.Logger
	opts   Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	turns map[string]turnClock
	hands int64
}

// NewManager creates a manager. A nil clock uses the real clock.
func NewManager(st store.Store, engine *game.Engine, clock quartz.Clock, logger *log.Logger, opts Options) *Manager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.DefaultChips <= 0 {
		opts.DefaultChips = game.DefaultChips
	}
	if opts.Automated == nil {
		opts.Automated = func(string) bool { return false }
	}
	return &Manager{
		store:  st,
		engine: engine,
		clock:  clock,
		logger: logger.WithPrefix("room"),
		opts:   opts,
		locks:  make(map[string]*sync.Mutex),
		turns:  make(map[string]turnClock),
	}
}

// lock acquires the room's mutex and returns its unlock
func (m *Manager) lock(roomID string) func() {
	m.mu.Lock()
	l, ok := m.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[roomID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (m *Manager) rng() *rand.Rand {
	m.mu.Lock()
	m.hands++
	n := m.hands
	m.mu.Unlock()

	if m.opts.Seed != 0 {
		return randutil.New(m.opts.Seed + n - 1)
	}
	return randutil.New(randutil.Seed())
}

// StartHand deals a new hand in roomID. Players the store has no balance
// for start with the default, which is recorded once the hand is dealt.
func (m *Manager) StartHand(ctx context.Context, roomID string, players []string) (*game.GameState, error) {
	unlock := m.lock(roomID)
	defer unlock()

	existing, err := m.store.LoadState(ctx, roomID)
	switch {
	case err == nil && !existing.IsComplete():
		return nil, fmt.Errorf("%w: room %s is in %s", ErrHandInProgress, roomID, existing.Phase)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	// The settled hand being replaced, if any
	var prev *game.GameState
	if err == nil {
		prev = existing
	}

	chips := make(map[string]int, len(players))
	var unknown []string
	for _, name := range players {
		n, err := m.store.Chips(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			n = m.opts.DefaultChips
			unknown = append(unknown, name)
		} else if err != nil {
			return nil, err
		}
		chips[name] = n
	}

	s, err := m.engine.StartHand(m.rng(), players,
		game.WithChips(chips),
		game.WithAutomated(m.opts.Automated),
		game.WithHandID(gameid.New()))
	if err != nil {
		return nil, err
	}

	// Balances are only recorded for hands that were actually dealt
	for _, name := range unknown {
		if err := m.store.SetChips(ctx, name, chips[name]); err != nil {
			return nil, err
		}
		m.logger.Info("Registered player", "player", name, "chips", chips[name])
	}

	if err := m.commit(ctx, roomID, prev, s); err != nil {
		return nil, err
	}
	m.logger.Info("Hand started", "room", roomID, "hand", s.HandID, "players", len(players))
	return s, nil
}

// Act applies user's action to the room's hand
func (m *Manager) Act(ctx context.Context, roomID, user string, action game.Action) (*game.GameState, error) {
	unlock := m.lock(roomID)
	defer unlock()

	s, err := m.store.LoadState(ctx, roomID)
	if err != nil {
		return nil, err
	}
	next, err := m.engine.ApplyAction(s, user, action)
	if err != nil {
		return nil, err
	}
	if err := m.commit(ctx, roomID, s, next); err != nil {
		return nil, err
	}
	return next, nil
}

// View returns the room's state as seen by viewer
func (m *Manager) View(ctx context.Context, roomID, viewer string, visibility game.Visibility) (*game.GameState, error) {
	unlock := m.lock(roomID)
	defer unlock()

	s, err := m.store.LoadState(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.View(viewer, visibility), nil
}

// State returns the room's full state, including the deck
func (m *Manager) State(ctx context.Context, roomID string) (*game.GameState, error) {
	unlock := m.lock(roomID)
	defer unlock()
	return m.store.LoadState(ctx, roomID)
}

// Reset discards whatever hand the room holds
func (m *Manager) Reset(ctx context.Context, roomID string) error {
	unlock := m.lock(roomID)
	defer unlock()

	m.mu.Lock()
	delete(m.turns, roomID)
	m.mu.Unlock()
	return m.store.DeleteState(ctx, roomID)
}

// commit validates s and swaps it in for prev, the state it was derived
// from. A settled hand has its chips synced first, so a failed sync leaves
// the previous state in place and the action can be retried. Callers hold
// the room lock.
func (m *Manager) commit(ctx context.Context, roomID string, prev, s *game.GameState) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("room %s: refusing to save invalid state: %w", roomID, err)
	}
	if s.IsComplete() {
		if err := m.settle(ctx, roomID, s); err != nil {
			return err
		}
	}
	if err := m.store.SwapState(ctx, roomID, prev, s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.IsComplete() {
		delete(m.turns, roomID)
	} else if t, ok := m.turns[roomID]; !ok || t.handID != s.HandID || t.actions != len(s.Log) {
		m.turns[roomID] = turnClock{
			handID:  s.HandID,
			seat:    s.TurnIndex,
			actions: len(s.Log),
			since:   m.clock.Now(),
		}
	}
	return nil
}

// settle writes every seat's final stack back to the store
func (m *Manager) settle(ctx context.Context, roomID string, s *game.GameState) error {
	for _, p := range s.Players {
		if err := m.store.SetChips(ctx, p.Name, p.Chips); err != nil {
			return fmt.Errorf("room %s: syncing chips for %s: %w", roomID, p.Name, err)
		}
	}
	m.logger.Info("Hand settled", "room", roomID, "hand", s.HandID, "winner", s.Winner)
	return nil
}

// ExpireIdle folds every human seat that has held the action longer than
// the timeout and returns the rooms it acted in.
func (m *Manager) ExpireIdle(ctx context.Context) ([]string, error) {
	if m.opts.ActionTimeout <= 0 {
		return nil, nil
	}

	now := m.clock.Now()
	m.mu.Lock()
	var due []string
	for roomID, t := range m.turns {
		if now.Sub(t.since) >= m.opts.ActionTimeout {
			due = append(due, roomID)
		}
	}
	m.mu.Unlock()
	sort.Strings(due)

	var (
		expired []string
		errs    []error
	)
	for _, roomID := range due {
		ok, err := m.expire(ctx, roomID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", roomID, err))
			continue
		}
		if ok {
			expired = append(expired, roomID)
		}
	}
	return expired, errors.Join(errs...)
}

func (m *Manager) expire(ctx context.Context, roomID string, now time.Time) (bool, error) {
	unlock := m.lock(roomID)
	defer unlock()

	m.mu.Lock()
	t, ok := m.turns[roomID]
	m.mu.Unlock()
	if !ok || now.Sub(t.since) < m.opts.ActionTimeout {
		return false, nil
	}

	s, err := m.store.LoadState(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		m.mu.Lock()
		delete(m.turns, roomID)
		m.mu.Unlock()
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// The hand moved on since the clock started
	if s.IsComplete() || s.HandID != t.handID || len(s.Log) != t.actions || s.TurnIndex != t.seat {
		return false, nil
	}

	p := s.CurrentPlayer()
	m.logger.Warn("Action timed out, folding", "room", roomID, "player", p.Name, "after", now.Sub(t.since))

	next, err := m.engine.ApplyAction(s, p.Name, game.Fold())
	if err != nil {
		return false, err
	}
	return true, m.commit(ctx, roomID, s, next)
}

// Run calls ExpireIdle every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if m.opts.ActionTimeout <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := m.clock.NewTicker(interval, "room", "expire")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.ExpireIdle(ctx); err != nil {
				m.logger.Error("Expiring idle seats", "error", err)
			}
		}
	}
}
