package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lox/holdem-rooms/internal/config"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/store"
	"golang.org/x/sync/errgroup"
)

const playRoom = "local"

// PlayCmd runs an interactive session against automated seats
type PlayCmd struct {
	Name  string `arg:"" default:"you" help:"Your player name"`
	Bots  int    `short:"b" default:"2" help:"Number of bots at the table"`
	Hands int    `help:"Stop after this many hands (0 = until quit)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	if c.Bots < 1 || c.Bots > 8 {
		return fmt.Errorf("bots must be between 1 and 8, got %d", c.Bots)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// A second signal gets the default behaviour
	go func() {
		<-ctx.Done()
		stop()
	}()

	a, err := g.open(ctx, func(cfg *config.Config) {
		cfg.Store.Driver = store.DriverMemory
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Game.IsBot(c.Name) {
		return fmt.Errorf("%s would be played by the bot policy; pick another name", c.Name)
	}
	players := []string{c.Name}
	for i := 1; i <= c.Bots; i++ {
		players = append(players, fmt.Sprintf("%s%d", a.cfg.Game.BotPrefix, i))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := a.manager.Run(ctx, time.Second)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		defer cancel()
		return c.session(ctx, a, players, readLines(g.stdin()))
	})
	return eg.Wait()
}

// session plays hands until the player quits, input ends or ctx is done
func (c *PlayCmd) session(ctx context.Context, a *app, players []string, lines <-chan string) error {
	for hand := 1; c.Hands == 0 || hand <= c.Hands; hand++ {
		if ctx.Err() != nil {
			return nil
		}
		seated := make([]string, 0, len(players))
		for _, name := range players {
			if n, err := a.store.Chips(ctx, name); err != nil || n > 0 {
				seated = append(seated, name)
			}
		}
		if len(seated) < 2 || seated[0] != c.Name {
			break
		}

		s, err := a.manager.StartHand(ctx, playRoom, seated)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "\nHand %d\n", hand)

		for !s.IsComplete() {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprint(a.out, a.render.State(s.View(c.Name, game.VisibilityOwner)))
			fmt.Fprintln(a.out, a.render.Prompt(s))

			var line string
			select {
			case <-ctx.Done():
				return nil
			case l, ok := <-lines:
				if !ok {
					return nil
				}
				line = l
			}
			if line == "quit" || line == "q" {
				return nil
			}
			action, err := parseAction(strings.Fields(line))
			if err != nil {
				fmt.Fprintln(a.out, err)
				continue
			}

			next, err := a.manager.Act(ctx, playRoom, c.Name, action)
			switch {
			case game.IsEngineError(err):
				// The seat may have timed out while we waited for input
				fmt.Fprintln(a.out, err)
				if next, err = a.manager.State(ctx, playRoom); err != nil {
					return err
				}
			case errors.Is(err, context.Canceled):
				return nil
			case err != nil:
				return err
			}
			s = next
		}

		fmt.Fprint(a.out, a.render.State(s.View(c.Name, game.VisibilityOwner)))
	}

	n, err := a.store.Chips(ctx, c.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%s finishes with %d chips\n", c.Name, n)
	return nil
}

// readLines delivers normalized input lines until in is exhausted. The
// reader goroutine is left blocked if the session ends first.
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- strings.ToLower(strings.TrimSpace(sc.Text()))
		}
	}()
	return lines
}
