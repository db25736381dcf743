package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lox/holdem-rooms/internal/codec"
	"github.com/lox/holdem-rooms/internal/game"
)

//go:embed postgres.sql
var postgresSchema string

// Postgres stores states as JSONB rows
type Postgres struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects to dsn and creates the tables if they are missing
func NewPostgres(ctx context.Context, dsn string, logger *log.Logger) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("store: empty postgres dsn")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: pinging postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: migrating postgres: %w", err)
	}

	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("Opened postgres store")
	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) LoadState(ctx context.Context, roomID string) (*game.GameState, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT state FROM rooms WHERE room_id = $1`, roomID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: loading room %s: %w", roomID, err)
	}
	return codec.DecodeJSON(data)
}

func (p *Postgres) SaveState(ctx context.Context, roomID string, s *game.GameState) error {
	if err := checkState(roomID, s); err != nil {
		return err
	}
	data, err := codec.EncodeJSON(s)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
        INSERT INTO rooms (room_id, state, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (room_id) DO UPDATE
          SET state = EXCLUDED.state,
              updated_at = now()
    `, roomID, data)
	if err != nil {
		return fmt.Errorf("store: saving room %s: %w", roomID, err)
	}
	p.logger.Debug("Saved room", "room", roomID, "bytes", len(data))
	return nil
}

// SwapState locks the room row while comparing it with prev. A room that
// does not exist yet is claimed by the first insert.
func (p *Postgres) SwapState(ctx context.Context, roomID string, prev, next *game.GameState) error {
	if err := checkState(roomID, next); err != nil {
		return err
	}
	data, err := codec.EncodeJSON(next)
	if err != nil {
		return err
	}

	if prev == nil {
		tag, err := p.pool.Exec(ctx, `
        INSERT INTO rooms (room_id, state, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (room_id) DO NOTHING
    `, roomID, data)
		if err != nil {
			return fmt.Errorf("store: saving room %s: %w", roomID, err)
		}
		if tag.RowsAffected() == 0 {
			return conflict(roomID, "?", prev)
		}
		p.logger.Debug("Saved room", "room", roomID, "bytes", len(data))
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: saving room %s: %w", roomID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current []byte
	err = tx.QueryRow(ctx, `SELECT state FROM rooms WHERE room_id = $1 FOR UPDATE`, roomID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return conflict(roomID, "", prev)
	}
	if err != nil {
		return fmt.Errorf("store: loading room %s: %w", roomID, err)
	}
	stored, err := codec.DecodeJSON(current)
	if err != nil {
		return err
	}
	if v := stateVersion(stored); v != stateVersion(prev) {
		return conflict(roomID, v, prev)
	}
	if _, err := tx.Exec(ctx, `UPDATE rooms SET state = $2, updated_at = now() WHERE room_id = $1`, roomID, data); err != nil {
		return fmt.Errorf("store: saving room %s: %w", roomID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: saving room %s: %w", roomID, err)
	}
	p.logger.Debug("Saved room", "room", roomID, "bytes", len(data))
	return nil
}

func (p *Postgres) DeleteState(ctx context.Context, roomID string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM rooms WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("store: deleting room %s: %w", roomID, err)
	}
	return nil
}

func (p *Postgres) Chips(ctx context.Context, username string) (int, error) {
	var chips int
	err := p.pool.QueryRow(ctx, `SELECT chips FROM users WHERE username = $1`, username).Scan(&chips)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	if err != nil {
		return 0, fmt.Errorf("store: loading chips for %s: %w", username, err)
	}
	return chips, nil
}

func (p *Postgres) SetChips(ctx context.Context, username string, chips int) error {
	if err := checkChips(username, chips); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, `
        INSERT INTO users (username, chips, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (username) DO UPDATE
          SET chips = EXCLUDED.chips,
              updated_at = now()
    `, username, chips)
	if err != nil {
		return fmt.Errorf("store: saving chips for %s: %w", username, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
