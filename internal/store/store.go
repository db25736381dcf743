// Package store persists room states and player chip balances.
//
// Every backend implements Store. States are keyed by room id and balances
// by username; both are plain values, so a backend only has to get bytes in
// and out. The engine never talks to a store directly, the room service does.
//
// Several processes may share the file, sqlite and postgres stores. Writers
// that derive a state from an earlier one use SwapState, which fails with
// ErrConflict instead of overwriting a state another process saved since.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-rooms/internal/game"
)

var (
	// ErrNotFound is returned when no state or balance exists for a key.
	ErrNotFound = errors.New("store: not found")

	// ErrNegativeChips is returned by SetChips for balances below zero.
	ErrNegativeChips = errors.New("store: negative chips")

	// ErrConflict is returned by SwapState when the stored state is no
	// longer the one the caller started from.
	ErrConflict = errors.New("store: state changed concurrently")
)

// Store is the external collaborator that keeps hand state between calls.
type Store interface {
	// LoadState returns the state saved for roomID, or ErrNotFound.
	LoadState(ctx context.Context, roomID string) (*game.GameState, error)
	// SaveState replaces the state saved for roomID.
	SaveState(ctx context.Context, roomID string, s *game.GameState) error
	// SwapState saves next only if the stored state is still prev, compared
	// by hand id and action count. A nil prev requires the room to be empty.
	SwapState(ctx context.Context, roomID string, prev, next *game.GameState) error
	// DeleteState removes the room's state. Deleting a missing room is not an error.
	DeleteState(ctx context.Context, roomID string) error
	// Chips returns a player's balance, or ErrNotFound.
	Chips(ctx context.Context, username string) (int, error)
	// SetChips records a player's balance.
	SetChips(ctx context.Context, username string, chips int) error
	Close() error
}

// Driver names accepted by Open
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and locates a backend
type Config struct {
	Driver string
	Path   string // file and sqlite
	DSN    string // postgres
}

// Open creates the backend named by cfg.Driver
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("store")

	switch strings.ToLower(cfg.Driver) {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.Path)
	case DriverSQLite:
		return NewSQLite(ctx, cfg.Path, logger)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func checkKey(kind, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("store: empty %s", kind)
	}
	return nil
}

func checkState(roomID string, s *game.GameState) error {
	if err := checkKey("room id", roomID); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("store: nil state for room %s", roomID)
	}
	return nil
}

// stateVersion identifies a state for SwapState. Every committed change
// either starts a new hand or appends to the log, so the pair is enough.
// The empty string stands for no state.
func stateVersion(s *game.GameState) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.HandID, len(s.Log))
}

func conflict(roomID, stored string, prev *game.GameState) error {
	return fmt.Errorf("%w: room %s is at %q, expected %q", ErrConflict, roomID, stored, stateVersion(prev))
}

func checkChips(username string, chips int) error {
	if err := checkKey("username", username); err != nil {
		return err
	}
	if chips < 0 {
		return fmt.Errorf("%w: %s to %d", ErrNegativeChips, username, chips)
	}
	return nil
}
