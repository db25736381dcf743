// Package codec serializes GameState values for storage.
//
// Two formats are supported: JSON, which is what the file and postgres
// stores keep, and MessagePack, which the sqlite store uses for compact
// blobs. Both encode the same field names and round-trip to an equal state.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/lox/holdem-rooms/internal/game"
)

// Format selects a wire format
type Format int

const (
	JSON Format = iota
	Msgpack
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case Msgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat parses "json" or "msgpack"
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "msgpack", "messagepack":
		return Msgpack, nil
	default:
		return 0, fmt.Errorf("codec: unknown format %q", name)
	}
}

// Pool of buffers shared by the encoders
var bufferPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// Encode serializes s in the given format
func Encode(f Format, s *game.GameState) ([]byte, error) {
	switch f {
	case JSON:
		return EncodeJSON(s)
	case Msgpack:
		return EncodeMsgpack(s)
	default:
		return nil, fmt.Errorf("codec: unknown format %d", int(f))
	}
}

// Decode deserializes a state in the given format
func Decode(f Format, data []byte) (*game.GameState, error) {
	switch f {
	case JSON:
		return DecodeJSON(data)
	case Msgpack:
		return DecodeMsgpack(data)
	default:
		return nil, fmt.Errorf("codec: unknown format %d", int(f))
	}
}

// EncodeJSON serializes s as JSON
func EncodeJSON(s *game.GameState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("codec: encoding json: %w", err)
	}
	return data, nil
}

// DecodeJSON deserializes a JSON state
func DecodeJSON(data []byte) (*game.GameState, error) {
	var s game.GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("codec: decoding json: %w", err)
	}
	return &s, nil
}
