package codec

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

// sampleStates returns states from across a hand's lifecycle
func sampleStates(t *testing.T) map[string]*game.GameState {
	t.Helper()
	e := game.NewEngine(log.NewWithOptions(io.Discard, log.Options{}))

	fresh, err := e.StartHand(randutil.New(21), []string{"alice", "bob", "bot-1"},
		game.WithHandID("h1"),
		game.WithAutomated(func(name string) bool { return name == "bot-1" }),
		game.WithChips(map[string]int{"bob": 300}))
	require.NoError(t, err)

	flop, err := e.ApplyAction(fresh, "alice", game.RaiseTo(40))
	require.NoError(t, err)
	flop, err = e.ApplyAction(flop, "bob", game.Call())
	require.NoError(t, err)
	require.Equal(t, game.Flop, flop.Phase)

	done, err := e.ApplyAction(flop, "alice", game.Fold())
	require.NoError(t, err)
	done, err = e.ApplyAction(done, "bob", game.Fold())
	require.NoError(t, err)
	require.True(t, done.IsComplete())

	return map[string]*game.GameState{
		"fresh":    fresh,
		"flop":     flop,
		"complete": done,
		"view":     flop.View("bob", game.VisibilityOwner),
		"empty":    {},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range sampleStates(t) {
		for _, f := range []Format{JSON, Msgpack} {
			t.Run(name+"/"+f.String(), func(t *testing.T) {
				data, err := Encode(f, s)
				require.NoError(t, err)

				got, err := Decode(f, data)
				require.NoError(t, err)
				assert.Equal(t, s, got)
			})
		}
	}
}

func TestJSONFieldNames(t *testing.T) {
	t.Parallel()
	s := sampleStates(t)["flop"]

	data, err := EncodeJSON(s)
	require.NoError(t, err)

	for _, want := range []string{
		`"phase":"flop"`,
		`"last_aggressor_index":-1`,
		`"community_cards":[{"suit":`,
		`"is_automated":true`,
		`"action":"raise"`,
	} {
		assert.Contains(t, string(data), want)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	t.Parallel()

	got, err := DecodeJSON([]byte(`{"phase":"turn","pot":12,"future":{"x":1}}`))
	require.NoError(t, err)
	assert.Equal(t, game.Turn, got.Phase)
	assert.Equal(t, 12, got.Pot)

	b := msgp.AppendMapHeader(nil, 3)
	b = msgp.AppendString(b, "phase")
	b = msgp.AppendString(b, "river")
	b = msgp.AppendString(b, "future")
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendInt(b, 1)
	b = msgp.AppendString(b, "two")
	b = msgp.AppendString(b, "pot")
	b = msgp.AppendInt(b, 7)

	got, err = DecodeMsgpack(b)
	require.NoError(t, err)
	assert.Equal(t, game.River, got.Phase)
	assert.Equal(t, 7, got.Pot)
}

func TestDecodeRejectsBadValues(t *testing.T) {
	t.Parallel()

	_, err := DecodeJSON([]byte(`{"phase":"fifth street"}`))
	assert.Error(t, err)

	b := msgp.AppendMapHeader(nil, 1)
	b = msgp.AppendString(b, "phase")
	b = msgp.AppendString(b, "fifth street")
	_, err = DecodeMsgpack(b)
	assert.Error(t, err)

	_, err = DecodeMsgpack([]byte{0xc1})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("MsgPack")
	require.NoError(t, err)
	assert.Equal(t, Msgpack, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
