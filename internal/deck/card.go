package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in deck-building order
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

var suitNames = [...]string{"hearts", "diamonds", "clubs", "spades"}

// String returns the persisted name of the suit ("hearts", "spades", ...)
func (s Suit) String() string {
	if s < Hearts || s > Spades {
		return "unknown"
	}
	return suitNames[s]
}

// Letter returns the single-letter notation used in card strings
func (s Suit) Letter() byte {
	switch s {
	case Hearts:
		return 'h'
	case Diamonds:
		return 'd'
	case Clubs:
		return 'c'
	case Spades:
		return 's'
	default:
		return '?'
	}
}

// Symbol returns the unicode pip for the suit
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// MarshalText encodes the suit by name.
func (s Suit) MarshalText() ([]byte, error) {
	if s < Hearts || s > Spades {
		return nil, fmt.Errorf("deck: invalid suit %d", int(s))
	}
	return []byte(suitNames[s]), nil
}

// UnmarshalText accepts a suit name or its letter.
func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit parses "hearts", "h", "Hearts" and so on.
func ParseSuit(v string) (Suit, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range suitNames {
		if v == name || (len(v) == 1 && v[0] == Suit(i).Letter()) {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("deck: unknown suit %q", v)
}

// Rank represents a card rank, 2 through 14 (Ace high)
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankLetters = "23456789TJQKA"

// String returns the single-character notation for the rank
func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return string(rankLetters[r-Two])
}

// Name returns the English name of the rank, used in hand descriptions
func (r Rank) Name() string {
	switch r {
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	case Ace:
		return "Ace"
	case Ten:
		return "Ten"
	default:
		if r.Valid() {
			return fmt.Sprintf("%d", int(r))
		}
		return "Unknown"
	}
}

// Valid reports whether r is within 2..14
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Card represents a playing card
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the two-character notation, e.g. "Ah" or "Td"
func (c Card) String() string {
	return c.Rank.String() + string(c.Suit.Letter())
}

// Pretty returns the card with a suit symbol, e.g. "A♥"
func (c Card) Pretty() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// Valid reports whether the card has a known suit and rank
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit >= Hearts && c.Suit <= Spades
}

// ParseCard parses a single card in [Rank][Suit] notation, e.g. "As" or "10h".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("deck: invalid card %q", s)
	}
	rank, err := parseRank(s[0])
	if err != nil {
		return Card{}, err
	}
	suit, err := ParseSuit(s[1:])
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// ParseCards parses a run of card notation into a slice of cards.
// Format: "AsKsQsJsTs" or "As Ks Qs"; each card is [Rank][Suit].
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("deck: invalid card string length %d (must be even)", len(s))
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

// FormatCards joins cards in notation separated by spaces
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func parseRank(c byte) (Rank, error) {
	idx := strings.IndexByte(rankLetters, upper(c))
	if idx < 0 {
		return 0, fmt.Errorf("deck: unknown rank '%c'", c)
	}
	return Two + Rank(idx), nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
