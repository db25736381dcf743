package room

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func isBot(name string) bool {
	return strings.HasPrefix(name, "bot-")
}

func newTestManager(t *testing.T, clock quartz.Clock, opts Options) (*Manager, *store.Memory) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	st := store.NewMemory()
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	return NewManager(st, game.NewEngine(logger), clock, logger, opts), st
}

func TestStartHandRegistersPlayers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, st := newTestManager(t, quartz.NewMock(t), Options{DefaultChips: 500})

	require.NoError(t, st.SetChips(ctx, "alice", 2000))

	s, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.HandID)
	assert.Equal(t, 2000, s.Players[0].Chips)
	assert.Equal(t, 500, s.Players[1].Chips)

	chips, err := st.Chips(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 500, chips, "unknown players are recorded with the default")

	saved, err := st.LoadState(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, s, saved)
}

func TestStartHandRejectsHandInProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _ := newTestManager(t, quartz.NewMock(t), Options{})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)

	_, err = m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	assert.ErrorIs(t, err, ErrHandInProgress)

	require.NoError(t, m.Reset(ctx, "room-1"))
	_, err = m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	assert.NoError(t, err)
}

func TestStartHandPassesEngineErrors(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, quartz.NewMock(t), Options{})

	_, err := m.StartHand(context.Background(), "room-1", []string{"alice"})
	assert.ErrorIs(t, err, game.ErrInvalidHandSetup)
}

func TestStartHandRejectedSetupRecordsNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, st := newTestManager(t, quartz.NewMock(t), Options{})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "alice"})
	assert.ErrorIs(t, err, game.ErrInvalidHandSetup)

	_, err = st.Chips(ctx, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound, "no balance for a hand that was never dealt")
	_, err = st.LoadState(ctx, "room-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// faultyStore fails chip writes while failChips is set and runs afterLoad
// once a state has been read.
type faultyStore struct {
	store.Store
	failChips atomic.Bool
	afterLoad func()
}

var errChipsUnavailable = errors.New("chips unavailable")

func (f *faultyStore) SetChips(ctx context.Context, username string, chips int) error {
	if f.failChips.Load() {
		return errChipsUnavailable
	}
	return f.Store.SetChips(ctx, username, chips)
}

func (f *faultyStore) LoadState(ctx context.Context, roomID string) (*game.GameState, error) {
	s, err := f.Store.LoadState(ctx, roomID)
	if err == nil && f.afterLoad != nil {
		hook := f.afterLoad
		f.afterLoad = nil
		hook()
	}
	return s, err
}

func TestFailedSettleCanBeRetried(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	st := &faultyStore{Store: store.NewMemory()}
	m := NewManager(st, game.NewEngine(logger), quartz.NewMock(t), logger, Options{Seed: 42})

	before, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)

	st.failChips.Store(true)
	_, err = m.Act(ctx, "room-1", "alice", game.Fold())
	require.ErrorIs(t, err, errChipsUnavailable)

	saved, err := st.LoadState(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, before, saved, "the hand stays open when balances could not be written")

	st.failChips.Store(false)
	s, err := m.Act(ctx, "room-1", "alice", game.Fold())
	require.NoError(t, err)
	require.True(t, s.IsComplete())

	for _, p := range s.Players {
		chips, err := st.Chips(ctx, p.Name)
		require.NoError(t, err)
		assert.Equal(t, p.Chips, chips, p.Name)
	}
}

func TestActLosesToConcurrentWriter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	shared := store.NewMemory()
	st := &faultyStore{Store: shared}
	m := NewManager(st, game.NewEngine(logger), quartz.NewMock(t), logger, Options{Seed: 42})
	// Another process with its own manager on the same store
	other := NewManager(shared, game.NewEngine(logger), quartz.NewMock(t), logger, Options{Seed: 7})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)

	var won *game.GameState
	st.afterLoad = func() {
		won, err = other.Act(ctx, "room-1", "alice", game.Call())
		require.NoError(t, err)
	}
	_, err = m.Act(ctx, "room-1", "alice", game.Fold())
	assert.ErrorIs(t, err, store.ErrConflict)

	saved, err := shared.LoadState(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, won, saved, "the first write is kept")
	assert.False(t, saved.IsComplete())
}

func TestActSettlesChips(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, st := newTestManager(t, quartz.NewMock(t), Options{})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "bob", "carol"})
	require.NoError(t, err)

	_, err = m.Act(ctx, "room-1", "alice", game.RaiseTo(100))
	require.NoError(t, err)

	// Balances only change once the hand is settled
	chips, err := st.Chips(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1000, chips)

	_, err = m.Act(ctx, "room-1", "bob", game.Call())
	require.NoError(t, err)
	_, err = m.Act(ctx, "room-1", "carol", game.Fold())
	require.NoError(t, err)

	s, err := m.Act(ctx, "room-1", "alice", game.RaiseTo(300))
	require.NoError(t, err)
	s, err = m.Act(ctx, "room-1", "bob", game.Fold())
	require.NoError(t, err)
	require.True(t, s.IsComplete())
	assert.Equal(t, "alice", s.Winner)

	for name, want := range map[string]int{"alice": 1100, "bob": 900, "carol": 1000} {
		chips, err := st.Chips(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, want, chips, name)
	}

	_, err = m.Act(ctx, "room-1", "alice", game.Check())
	assert.ErrorIs(t, err, game.ErrHandOver)
}

func TestActErrorsLeaveStoredState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, st := newTestManager(t, quartz.NewMock(t), Options{})

	before, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)

	_, err = m.Act(ctx, "room-1", "bob", game.Check())
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	saved, err := st.LoadState(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, before, saved)

	_, err = m.Act(ctx, "missing", "alice", game.Check())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAutomatedSeatsSettleOnStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, st := newTestManager(t, quartz.NewMock(t), Options{Automated: isBot})

	s, err := m.StartHand(ctx, "bots", []string{"bot-1", "bot-2"})
	require.NoError(t, err)
	require.True(t, s.IsComplete(), "bots check the hand down")

	total := 0
	for _, name := range []string{"bot-1", "bot-2"} {
		chips, err := st.Chips(ctx, name)
		require.NoError(t, err)
		total += chips
	}
	assert.Equal(t, 2000, total)
}

func TestViewRedacts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _ := newTestManager(t, quartz.NewMock(t), Options{})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)

	v, err := m.View(ctx, "room-1", "alice", game.VisibilityOwner)
	require.NoError(t, err)
	assert.Len(t, v.Players[0].HoleCards, 2)
	assert.Nil(t, v.Players[1].HoleCards)
	assert.Nil(t, v.Deck)

	full, err := m.State(ctx, "room-1")
	require.NoError(t, err)
	assert.NotEmpty(t, full.Deck)
}

func TestExpireIdleFoldsSlowSeat(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	m, st := newTestManager(t, clock, Options{ActionTimeout: 30 * time.Second})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "bob", "carol"})
	require.NoError(t, err)

	clock.Advance(20 * time.Second).MustWait(ctx)
	expired, err := m.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired, "alice still has time")

	clock.Advance(10 * time.Second).MustWait(ctx)
	expired, err = m.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"room-1"}, expired)

	s, err := st.LoadState(ctx, "room-1")
	require.NoError(t, err)
	assert.True(t, s.Players[0].IsFolded)
	assert.Equal(t, 1, s.TurnIndex)

	// bob's clock started when alice was folded
	expired, err = m.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	clock.Advance(30 * time.Second).MustWait(ctx)
	expired, err = m.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"room-1"}, expired)

	s, err = st.LoadState(ctx, "room-1")
	require.NoError(t, err)
	require.True(t, s.IsComplete())
	assert.Equal(t, "carol", s.Winner)

	clock.Advance(time.Minute).MustWait(ctx)
	expired, err = m.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired, "settled hands are not timed")
}

func TestExpireIdleResetsOnAction(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	m, _ := newTestManager(t, clock, Options{ActionTimeout: 30 * time.Second})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)

	clock.Advance(25 * time.Second).MustWait(ctx)
	_, err = m.Act(ctx, "room-1", "alice", game.Check())
	require.NoError(t, err)

	clock.Advance(25 * time.Second).MustWait(ctx)
	expired, err := m.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestExpireIdleDisabled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	m, _ := newTestManager(t, clock, Options{})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)

	clock.Advance(time.Hour).MustWait(ctx)
	expired, err := m.ExpireIdle(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, quartz.NewMock(t), Options{ActionTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Run(ctx, time.Second), context.Canceled)
}

func TestSameRoomCallsAreSerialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _ := newTestManager(t, quartz.NewMock(t), Options{})

	_, err := m.StartHand(ctx, "room-1", []string{"alice", "bob"})
	require.NoError(t, err)

	var succeeded, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, err := m.Act(ctx, "room-1", "alice", game.Check())
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, game.ErrNotYourTurn):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load(), "only the first check can be alice's turn")
	assert.Equal(t, int32(19), rejected.Load())
}

func TestRoomsRunInParallel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, st := newTestManager(t, quartz.NewMock(t), Options{Automated: isBot})

	rooms := []string{"a", "b", "c", "d", "e", "f"}
	g, gctx := errgroup.WithContext(ctx)
	for _, roomID := range rooms {
		g.Go(func() error {
			player := "human-" + roomID
			s, err := m.StartHand(gctx, roomID, []string{player, "bot-" + roomID})
			if err != nil {
				return err
			}
			for !s.IsComplete() {
				if s, err = m.Act(gctx, roomID, player, game.Check()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, roomID := range rooms {
		s, err := st.LoadState(ctx, roomID)
		require.NoError(t, err)
		assert.True(t, s.IsComplete(), roomID)
		assert.Len(t, s.CommunityCards, 5, roomID)
	}
}
