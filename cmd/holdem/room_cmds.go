package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lox/holdem-rooms/internal/codec"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/gameid"
	"github.com/lox/holdem-rooms/internal/phh"
	"github.com/lox/holdem-rooms/internal/room"
	"github.com/lox/holdem-rooms/internal/store"
)

// StartCmd deals a new hand
type StartCmd struct {
	Room    string   `required:"" help:"Room identifier"`
	Force   bool     `help:"Discard an unfinished hand in the room first"`
	Players []string `arg:"" name:"player" help:"Players in seat order"`
}

func (c *StartCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Force {
		if err := a.manager.Reset(ctx, c.Room); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	s, err := a.manager.StartHand(ctx, c.Room, c.Players)
	if errors.Is(err, room.ErrHandInProgress) {
		return fmt.Errorf("%w (use --force to discard it)", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, a.render.State(s.View("", game.VisibilityOwner)))
	return nil
}

// ActCmd applies one action
type ActCmd struct {
	Room   string   `required:"" help:"Room identifier"`
	User   string   `required:"" short:"u" help:"Player acting"`
	Action []string `arg:"" name:"action" help:"fold, check, call or raise N"`
}

func (c *ActCmd) Run(g *Globals) error {
	action, err := parseAction(c.Action)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.manager.Act(ctx, c.Room, c.User, action)
	if game.IsEngineError(err) {
		return fmt.Errorf("%s cannot %s: %w", c.User, action, err)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, a.render.State(s.View(c.User, game.VisibilityOwner)))
	return nil
}

// ShowCmd prints a room's hand
type ShowCmd struct {
	Room   string `required:"" help:"Room identifier"`
	As     string `help:"Player whose view to show; empty shows no hole cards"`
	Reveal bool   `help:"Show every hand"`
	JSON   bool   `name:"json" help:"Print the view as JSON"`
}

func (c *ShowCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	visibility := game.VisibilityOwner
	if c.Reveal {
		visibility = game.VisibilityAll
	}
	s, err := a.manager.View(ctx, c.Room, c.As, visibility)
	if err != nil {
		return err
	}

	if c.JSON {
		data, err := codec.EncodeJSON(s)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, string(data))
		return err
	}

	fmt.Fprint(a.out, a.render.State(s))
	if !s.IsComplete() {
		fmt.Fprintln(a.out, a.render.Prompt(s))
	}
	return nil
}

// ChipsCmd reads or writes a balance
type ChipsCmd struct {
	User string `arg:"" help:"Player name"`
	Set  *int   `help:"New balance"`
}

func (c *ChipsCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Set != nil {
		if err := a.store.SetChips(ctx, c.User, *c.Set); err != nil {
			return err
		}
	}
	n, err := a.store.Chips(ctx, c.User)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no balance for %s", c.User)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%s: %d\n", c.User, n)
	return err
}

// ExportCmd writes a finished hand in PHH form
type ExportCmd struct {
	Room   string `required:"" help:"Room identifier"`
	As     string `help:"Export as this player sees the hand"`
	Reveal bool   `help:"Include every hole card"`
}

func (c *ExportCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	visibility := game.VisibilityOwner
	if c.Reveal {
		visibility = game.VisibilityAll
	}
	s, err := a.manager.View(ctx, c.Room, c.As, visibility)
	if err != nil {
		return err
	}

	at, err := gameid.Time(s.HandID)
	if err != nil {
		at = time.Now()
	}
	hand, err := phh.FromState(s, c.Room, at)
	if err != nil {
		return err
	}
	return phh.Encode(a.out, hand)
}
