package codec

import (
	"bytes"
	"fmt"

	"github.com/lox/holdem-rooms/internal/deck"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/tinylib/msgp/msgp"
)

// EncodeMsgpack serializes s as a MessagePack map
func EncodeMsgpack(s *game.GameState) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	w := msgp.NewWriter(buf)
	if err := encodeState(w, s); err != nil {
		return nil, fmt.Errorf("codec: encoding msgpack: %w", err)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("codec: encoding msgpack: %w", err)
	}

	// Copy out so the pooled buffer is not aliased
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// DecodeMsgpack deserializes a MessagePack state. Unknown keys are skipped.
func DecodeMsgpack(data []byte) (*game.GameState, error) {
	r := msgp.NewReader(bytes.NewReader(data))
	s, err := decodeState(r)
	if err != nil {
		return nil, fmt.Errorf("codec: decoding msgpack: %w", err)
	}
	return s, nil
}

func encodeState(en *msgp.Writer, s *game.GameState) (err error) {
	if err = en.WriteMapHeader(12); err != nil {
		return
	}
	if err = writeString(en, "hand_id", s.HandID); err != nil {
		return
	}
	if err = writeString(en, "phase", s.Phase.String()); err != nil {
		return
	}
	if err = writeInt(en, "pot", s.Pot); err != nil {
		return
	}
	if err = writeInt(en, "current_bet", s.CurrentBet); err != nil {
		return
	}
	if err = writeInt(en, "turn_index", s.TurnIndex); err != nil {
		return
	}
	if err = writeInt(en, "last_aggressor_index", s.LastAggressor); err != nil {
		return
	}
	if err = writeInt(en, "acted_count", s.ActedCount); err != nil {
		return
	}
	if err = en.WriteString("community_cards"); err != nil {
		return
	}
	if err = encodeCards(en, s.CommunityCards); err != nil {
		return
	}
	if err = en.WriteString("players"); err != nil {
		return
	}
	if s.Players == nil {
		err = en.WriteNil()
	} else {
		if err = en.WriteArrayHeader(uint32(len(s.Players))); err != nil {
			return
		}
		for i := range s.Players {
			if err = encodePlayer(en, &s.Players[i]); err != nil {
				return
			}
		}
	}
	if err != nil {
		return
	}
	if err = en.WriteString("deck"); err != nil {
		return
	}
	if err = encodeCards(en, s.Deck); err != nil {
		return
	}
	if err = writeString(en, "winner", s.Winner); err != nil {
		return
	}
	if err = en.WriteString("log"); err != nil {
		return
	}
	if s.Log == nil {
		return en.WriteNil()
	}
	if err = en.WriteArrayHeader(uint32(len(s.Log))); err != nil {
		return
	}
	for i := range s.Log {
		if err = encodeLogEntry(en, &s.Log[i]); err != nil {
			return
		}
	}
	return nil
}

func decodeState(dc *msgp.Reader) (*game.GameState, error) {
	var s game.GameState
	n, err := dc.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	for ; n > 0; n-- {
		key, err := dc.ReadString()
		if err != nil {
			return nil, err
		}
		switch key {
		case "hand_id":
			s.HandID, err = dc.ReadString()
		case "phase":
			var name string
			if name, err = dc.ReadString(); err == nil {
				s.Phase, err = game.ParsePhase(name)
			}
		case "pot":
			s.Pot, err = dc.ReadInt()
		case "current_bet":
			s.CurrentBet, err = dc.ReadInt()
		case "turn_index":
			s.TurnIndex, err = dc.ReadInt()
		case "last_aggressor_index":
			s.LastAggressor, err = dc.ReadInt()
		case "acted_count":
			s.ActedCount, err = dc.ReadInt()
		case "community_cards":
			s.CommunityCards, err = decodeCards(dc)
		case "players":
			s.Players, err = decodePlayers(dc)
		case "deck":
			var cards []deck.Card
			if cards, err = decodeCards(dc); err == nil && cards != nil {
				s.Deck = deck.Deck(cards)
			}
		case "winner":
			s.Winner, err = dc.ReadString()
		case "log":
			s.Log, err = decodeLog(dc)
		default:
			err = dc.Skip()
		}
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
	}
	return &s, nil
}

func encodePlayer(en *msgp.Writer, p *game.PlayerState) (err error) {
	if err = en.WriteMapHeader(9); err != nil {
		return
	}
	if err = writeString(en, "name", p.Name); err != nil {
		return
	}
	if err = writeInt(en, "chips", p.Chips); err != nil {
		return
	}
	if err = writeInt(en, "starting_chips", p.StartingChips); err != nil {
		return
	}
	if err = en.WriteString("hole_cards"); err != nil {
		return
	}
	if err = encodeCards(en, p.HoleCards); err != nil {
		return
	}
	if err = writeInt(en, "current_bet", p.CurrentBet); err != nil {
		return
	}
	if err = writeInt(en, "won", p.Won); err != nil {
		return
	}
	if err = writeBool(en, "is_folded", p.IsFolded); err != nil {
		return
	}
	if err = writeBool(en, "is_out", p.IsOut); err != nil {
		return
	}
	return writeBool(en, "is_automated", p.IsAutomated)
}

func decodePlayers(dc *msgp.Reader) ([]game.PlayerState, error) {
	if dc.IsNil() {
		return nil, dc.ReadNil()
	}
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	players := make([]game.PlayerState, n)
	for i := range players {
		if err := decodePlayer(dc, &players[i]); err != nil {
			return nil, fmt.Errorf("player %d: %w", i, err)
		}
	}
	return players, nil
}

func decodePlayer(dc *msgp.Reader, p *game.PlayerState) error {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return err
	}
	for ; n > 0; n-- {
		key, err := dc.ReadString()
		if err != nil {
			return err
		}
		switch key {
		case "name":
			p.Name, err = dc.ReadString()
		case "chips":
			p.Chips, err = dc.ReadInt()
		case "starting_chips":
			p.StartingChips, err = dc.ReadInt()
		case "hole_cards":
			p.HoleCards, err = decodeCards(dc)
		case "current_bet":
			p.CurrentBet, err = dc.ReadInt()
		case "won":
			p.Won, err = dc.ReadInt()
		case "is_folded":
			p.IsFolded, err = dc.ReadBool()
		case "is_out":
			p.IsOut, err = dc.ReadBool()
		case "is_automated":
			p.IsAutomated, err = dc.ReadBool()
		default:
			err = dc.Skip()
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

func encodeLogEntry(en *msgp.Writer, e *game.LogEntry) (err error) {
	if err = en.WriteMapHeader(7); err != nil {
		return
	}
	if err = writeInt(en, "seat", e.Seat); err != nil {
		return
	}
	if err = writeString(en, "player", e.Player); err != nil {
		return
	}
	if err = writeString(en, "phase", e.Phase.String()); err != nil {
		return
	}
	if err = writeString(en, "action", e.Action.String()); err != nil {
		return
	}
	if err = writeInt(en, "paid", e.Paid); err != nil {
		return
	}
	if err = writeInt(en, "bet_to", e.BetTo); err != nil {
		return
	}
	return writeBool(en, "automated", e.Automated)
}

func decodeLog(dc *msgp.Reader) ([]game.LogEntry, error) {
	if dc.IsNil() {
		return nil, dc.ReadNil()
	}
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	entries := make([]game.LogEntry, n)
	for i := range entries {
		if err := decodeLogEntry(dc, &entries[i]); err != nil {
			return nil, fmt.Errorf("log entry %d: %w", i, err)
		}
	}
	return entries, nil
}

func decodeLogEntry(dc *msgp.Reader, e *game.LogEntry) error {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return err
	}
	for ; n > 0; n-- {
		key, err := dc.ReadString()
		if err != nil {
			return err
		}
		var name string
		switch key {
		case "seat":
			e.Seat, err = dc.ReadInt()
		case "player":
			e.Player, err = dc.ReadString()
		case "phase":
			if name, err = dc.ReadString(); err == nil {
				e.Phase, err = game.ParsePhase(name)
			}
		case "action":
			if name, err = dc.ReadString(); err == nil {
				e.Action, err = game.ParseActionKind(name)
			}
		case "paid":
			e.Paid, err = dc.ReadInt()
		case "bet_to":
			e.BetTo, err = dc.ReadInt()
		case "automated":
			e.Automated, err = dc.ReadBool()
		default:
			err = dc.Skip()
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

// Cards are encoded as {suit, rank} maps, matching the JSON form.
func encodeCards(en *msgp.Writer, cards []deck.Card) (err error) {
	if cards == nil {
		return en.WriteNil()
	}
	if err = en.WriteArrayHeader(uint32(len(cards))); err != nil {
		return
	}
	for _, c := range cards {
		if err = en.WriteMapHeader(2); err != nil {
			return
		}
		if err = writeString(en, "suit", c.Suit.String()); err != nil {
			return
		}
		if err = writeInt(en, "rank", int(c.Rank)); err != nil {
			return
		}
	}
	return nil
}

func decodeCards(dc *msgp.Reader) ([]deck.Card, error) {
	if dc.IsNil() {
		return nil, dc.ReadNil()
	}
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	cards := make([]deck.Card, n)
	for i := range cards {
		fields, err := dc.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		for ; fields > 0; fields-- {
			key, err := dc.ReadString()
			if err != nil {
				return nil, err
			}
			switch key {
			case "suit":
				var name string
				if name, err = dc.ReadString(); err == nil {
					cards[i].Suit, err = deck.ParseSuit(name)
				}
			case "rank":
				var rank int
				if rank, err = dc.ReadInt(); err == nil {
					cards[i].Rank = deck.Rank(rank)
				}
			default:
				err = dc.Skip()
			}
			if err != nil {
				return nil, fmt.Errorf("card %d %s: %w", i, key, err)
			}
		}
	}
	return cards, nil
}

func writeString(en *msgp.Writer, key, v string) error {
	if err := en.WriteString(key); err != nil {
		return err
	}
	return en.WriteString(v)
}

func writeInt(en *msgp.Writer, key string, v int) error {
	if err := en.WriteString(key); err != nil {
		return err
	}
	return en.WriteInt(v)
}

func writeBool(en *msgp.Writer, key string, v bool) error {
	if err := en.WriteString(key); err != nil {
		return err
	}
	return en.WriteBool(v)
}
