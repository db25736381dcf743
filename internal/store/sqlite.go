package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-rooms/internal/codec"
	"github.com/lox/holdem-rooms/internal/game"

	_ "modernc.org/sqlite"
)

// SQLite stores states as MessagePack blobs in a local database file
type SQLite struct {
	db     *sql.DB
	logger *log.Logger
}

var _ Store = (*SQLite)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rooms (
    room_id       TEXT PRIMARY KEY,
    state         BLOB NOT NULL,
    updated_at_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
    username      TEXT PRIMARY KEY,
    chips         INTEGER NOT NULL CHECK (chips >= 0),
    updated_at_ms INTEGER NOT NULL
);`

// NewSQLite opens (creating if needed) the database at path.
// ":memory:" gives a private in-memory database.
func NewSQLite(ctx context.Context, path string, logger *log.Logger) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store: empty sqlite database path")
	}
	if path != ":memory:" {
		parent := filepath.Dir(path)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("store: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, stmt := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: preparing sqlite: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: pinging sqlite: %w", err)
	}

	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("Opened sqlite store", "path", path)
	return &SQLite{db: db, logger: logger}, nil
}

func (s *SQLite) LoadState(ctx context.Context, roomID string) (*game.GameState, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT state FROM rooms WHERE room_id = ?`, roomID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: loading room %s: %w", roomID, err)
	}
	return codec.DecodeMsgpack(blob)
}

func (s *SQLite) SaveState(ctx context.Context, roomID string, state *game.GameState) error {
	if err := checkState(roomID, state); err != nil {
		return err
	}
	blob, err := codec.EncodeMsgpack(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO rooms (room_id, state, updated_at_ms)
VALUES (?, ?, ?)
ON CONFLICT (room_id) DO UPDATE SET state = excluded.state, updated_at_ms = excluded.updated_at_ms`,
		roomID, blob, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: saving room %s: %w", roomID, err)
	}
	s.logger.Debug("Saved room", "room", roomID, "bytes", len(blob))
	return nil
}

// SwapState reads and replaces the room in one transaction. With WAL a
// writer that committed after the read makes the update fail as busy.
func (s *SQLite) SwapState(ctx context.Context, roomID string, prev, next *game.GameState) error {
	if err := checkState(roomID, next); err != nil {
		return err
	}
	blob, err := codec.EncodeMsgpack(next)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: saving room %s: %w", roomID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var stored *game.GameState
	var current []byte
	err = tx.QueryRowContext(ctx, `SELECT state FROM rooms WHERE room_id = ?`, roomID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("store: loading room %s: %w", roomID, err)
	default:
		if stored, err = codec.DecodeMsgpack(current); err != nil {
			return err
		}
	}
	if v := stateVersion(stored); v != stateVersion(prev) {
		return conflict(roomID, v, prev)
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO rooms (room_id, state, updated_at_ms)
VALUES (?, ?, ?)
ON CONFLICT (room_id) DO UPDATE SET state = excluded.state, updated_at_ms = excluded.updated_at_ms`,
		roomID, blob, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: saving room %s: %w", roomID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return conflict(roomID, "?", prev)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: saving room %s: %w", roomID, err)
	}
	s.logger.Debug("Saved room", "room", roomID, "bytes", len(blob))
	return nil
}

func (s *SQLite) DeleteState(ctx context.Context, roomID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = ?`, roomID); err != nil {
		return fmt.Errorf("store: deleting room %s: %w", roomID, err)
	}
	return nil
}

func (s *SQLite) Chips(ctx context.Context, username string) (int, error) {
	var chips int
	err := s.db.QueryRowContext(ctx, `SELECT chips FROM users WHERE username = ?`, username).Scan(&chips)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	if err != nil {
		return 0, fmt.Errorf("store: loading chips for %s: %w", username, err)
	}
	return chips, nil
}

func (s *SQLite) SetChips(ctx context.Context, username string, chips int) error {
	if err := checkChips(username, chips); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (username, chips, updated_at_ms)
VALUES (?, ?, ?)
ON CONFLICT (username) DO UPDATE SET chips = excluded.chips, updated_at_ms = excluded.updated_at_ms`,
		username, chips, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: saving chips for %s: %w", username, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
