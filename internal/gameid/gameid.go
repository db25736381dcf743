// Package gameid generates hand identifiers: UUIDv7 values written as 26
// lower-case Crockford base32 characters, so they sort by creation time.
package gameid

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded identifier
const Length = 26

// Generator creates identifiers from a source of random bytes
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// New returns a fresh identifier using crypto/rand
func New() string {
	return NewGenerator(nil).MustGenerate()
}

// Generate creates a new identifier
func (g *Generator) Generate() (string, error) {
	id, err := uuid.NewV7FromReader(g.rand)
	if err != nil {
		return "", fmt.Errorf("gameid: %w", err)
	}
	return Encode(id), nil
}

// MustGenerate is Generate for callers with an infallible reader
func (g *Generator) MustGenerate() string {
	id, err := g.Generate()
	if err != nil {
		panic(err)
	}
	return id
}

// Encode writes a UUID as 26 base32 characters. The 128 bits are padded with
// two leading zero bits, so the first character is always 0-7.
func Encode(id uuid.UUID) string {
	n := new(big.Int).SetBytes(id[:])
	mask := big.NewInt(31)
	digit := new(big.Int)

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[digit.And(n, mask).Int64()]
		n.Rsh(n, 5)
	}
	return string(out)
}

// Parse decodes an identifier back into its UUID
func Parse(s string) (uuid.UUID, error) {
	if err := Validate(s); err != nil {
		return uuid.Nil, err
	}
	n := new(big.Int)
	for i := 0; i < len(s); i++ {
		n.Lsh(n, 5)
		n.Or(n, big.NewInt(int64(strings.IndexByte(alphabet, s[i]))))
	}
	var id uuid.UUID
	n.FillBytes(id[:])
	return id, nil
}

// Time returns the creation time embedded in an identifier
func Time(s string) (time.Time, error) {
	id, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if id.Version() != 7 {
		return time.Time{}, fmt.Errorf("gameid: %s is not a version 7 id", s)
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}

// Validate checks that s is 26 base32 characters that fit in 128 bits
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("gameid: must be exactly %d characters, got %d", Length, len(s))
	}
	if s[0] > '7' {
		return fmt.Errorf("gameid: first character must be 0-7, got %c", s[0])
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return fmt.Errorf("gameid: invalid character %c at position %d", s[i], i)
		}
	}
	return nil
}
