// Package game implements the betting engine for a Texas Hold'em hand.
//
// The main type is GameState, a plain value holding everything about one
// hand: seats, hole cards, board, remaining deck, pot and whose turn it is.
// An Engine transforms states; it never keeps hand state of its own.
//
// # Basic Usage
//
//	e := game.NewEngine(logger)
//	s, err := e.StartHand(rng, []string{"Alice", "Bob", "bot-1"},
//	    game.WithChipLookup(lookup),
//	    game.WithAutomated(isBot))
//	// ...
//	s, err = e.ApplyAction(s, "Alice", game.RaiseTo(200))
//	if s.IsComplete() {
//	    winners := s.WinnerNames()
//	}
//
// ApplyAction never modifies the state it is given. It works on a copy and
// returns the copy, so a rejected action leaves the caller holding the prior
// state untouched.
//
// # Automated Seats
//
// Seats marked automated are played by a fixed policy (check when nothing is
// owed, call when affordable, fold otherwise). StartHand and ApplyAction both
// play out any run of automated turns before returning, so the seat to act
// in a returned state is always a human seat unless the hand is over.
//
// # Deterministic Testing
//
// Pass a seeded RNG (see randutil.New) or a pre-built deck:
//
//	d, _ := deck.Stacked(deck.MustParseCards("AhAd KsKd")...)
//	s, _ := e.StartHand(nil, players, game.WithDeck(d))
//
// # Known Simplifications
//
// There are no blinds, antes, all-ins or side pots. A player who cannot
// afford a call must fold. A street closes once every live player has the
// same bet and at least as many actions have been taken on the street as
// there are live players; this does not always give a player who just
// called a raise a further option. Hand scores ignore kickers beyond the
// primary rank, and a split pot's odd chips are not awarded.
package game
