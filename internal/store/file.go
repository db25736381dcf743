package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lox/holdem-rooms/internal/codec"
	"github.com/lox/holdem-rooms/internal/fileutil"
	"github.com/lox/holdem-rooms/internal/game"
)

// File keeps users and rooms in a single JSON document. The document is
// read on every call and rewritten atomically on every change. Changes hold
// a lock file next to the document, so several processes can share it.
type File struct {
	path string
	mu   sync.Mutex
}

const (
	fileLockWait  = 10 * time.Second
	fileLockStale = 30 * time.Second
)

var _ Store = (*File)(nil)

type fileDocument struct {
	Users map[string]fileUser        `json:"users"`
	Rooms map[string]json.RawMessage `json:"rooms"`
}

type fileUser struct {
	Chips int `json:"chips"`
}

// NewFile opens the document at path, creating its directory if needed.
// A missing file is treated as empty.
func NewFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store: empty file path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
	}
	f := &File{path: path}
	if _, err := f.read(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) read() (*fileDocument, error) {
	doc := &fileDocument{
		Users: make(map[string]fileUser),
		Rooms: make(map[string]json.RawMessage),
	}
	data, ok, err := fileutil.ReadFileIfExists(f.path)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", f.path, err)
	}
	if !ok || len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("store: parsing %s: %w", f.path, err)
	}
	if doc.Users == nil {
		doc.Users = make(map[string]fileUser)
	}
	if doc.Rooms == nil {
		doc.Rooms = make(map[string]json.RawMessage)
	}
	return doc, nil
}

func (f *File) write(doc *fileDocument) error {
	err := fileutil.WriteAtomic(f.path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(doc)
	})
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// update reads the document, applies fn and writes it back under the lock
func (f *File) update(ctx context.Context, fn func(*fileDocument) error) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, fileLockWait)
	defer cancel()
	unlock, err := fileutil.Lock(ctx, f.path, fileLockStale)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() {
		if uerr := unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("store: releasing lock: %w", uerr)
		}
	}()

	doc, err := f.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return f.write(doc)
}

func (f *File) LoadState(_ context.Context, roomID string) (*game.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	raw, ok := doc.Rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	return codec.DecodeJSON(raw)
}

func (f *File) SaveState(ctx context.Context, roomID string, s *game.GameState) error {
	if err := checkState(roomID, s); err != nil {
		return err
	}
	data, err := codec.EncodeJSON(s)
	if err != nil {
		return err
	}
	return f.update(ctx, func(doc *fileDocument) error {
		doc.Rooms[roomID] = data
		return nil
	})
}

func (f *File) SwapState(ctx context.Context, roomID string, prev, next *game.GameState) error {
	if err := checkState(roomID, next); err != nil {
		return err
	}
	data, err := codec.EncodeJSON(next)
	if err != nil {
		return err
	}
	return f.update(ctx, func(doc *fileDocument) error {
		var stored *game.GameState
		if raw, ok := doc.Rooms[roomID]; ok {
			if stored, err = codec.DecodeJSON(raw); err != nil {
				return err
			}
		}
		if v := stateVersion(stored); v != stateVersion(prev) {
			return conflict(roomID, v, prev)
		}
		doc.Rooms[roomID] = data
		return nil
	})
}

func (f *File) DeleteState(ctx context.Context, roomID string) error {
	return f.update(ctx, func(doc *fileDocument) error {
		delete(doc.Rooms, roomID)
		return nil
	})
}

func (f *File) Chips(_ context.Context, username string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return 0, err
	}
	u, ok := doc.Users[username]
	if !ok {
		return 0, fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	return u.Chips, nil
}

func (f *File) SetChips(ctx context.Context, username string, chips int) error {
	if err := checkChips(username, chips); err != nil {
		return err
	}
	return f.update(ctx, func(doc *fileDocument) error {
		doc.Users[username] = fileUser{Chips: chips}
		return nil
	})
}

func (f *File) Close() error { return nil }
