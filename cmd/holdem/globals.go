package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-rooms/internal/config"
	"github.com/lox/holdem-rooms/internal/display"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/room"
	"github.com/lox/holdem-rooms/internal/store"
)

// Globals are the flags shared by every command
type Globals struct {
	Config    string `short:"c" default:"holdem.hcl" help:"Path to the HCL config file" type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error); overrides the config"`
	Store     string `help:"Store driver (memory, file, sqlite, postgres); overrides the config"`
	StorePath string `help:"Path for the file and sqlite stores"`
	DSN       string `help:"Postgres connection string" env:"HOLDEM_DSN"`
	NoColor   bool   `help:"Disable colored output"`

	Stdout io.Writer `kong:"-"`
	Stdin  io.Reader `kong:"-"`
}

// app is everything a command needs, built from Globals
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   store.Store
	manager *room.Manager
	render  *display.Renderer
	out     io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

func (g *Globals) stdin() io.Reader {
	if g.Stdin != nil {
		return g.Stdin
	}
	return os.Stdin
}

// loadConfig reads the config file and applies flag overrides
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Store != "" && g.Store != cfg.Store.Driver {
		cfg.Store.Driver = g.Store
		cfg.Store.Path = config.DefaultPath(g.Store)
	}
	if g.StorePath != "" {
		cfg.Store.Path = g.StorePath
	}
	if g.DSN != "" {
		cfg.Store.DSN = g.DSN
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// open builds the app; overrides are applied to the loaded config first
func (g *Globals) open(ctx context.Context, override func(*config.Config)) (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}

	logger := newLogger(cfg.Log.Level)
	timeout, err := cfg.Game.Timeout()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.StoreConfig(), logger)
	if err != nil {
		return nil, err
	}

	engine := game.NewEngine(logger)
	manager := room.NewManager(st, engine, nil, logger, room.Options{
		DefaultChips:  cfg.Game.DefaultChips,
		Automated:     cfg.Game.IsBot,
		ActionTimeout: timeout,
		Seed:          cfg.Game.Seed,
	})

	out := g.stdout()
	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		manager: manager,
		render:  display.New(out, !g.NoColor),
		out:     out,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("Closing store", "error", err)
	}
}

// parseAction reads an action from words such as "raise 200" or "call"
func parseAction(args []string) (game.Action, error) {
	if len(args) == 0 {
		return game.Action{}, fmt.Errorf("%w: no action given", game.ErrUnknownAction)
	}
	amount := 0
	kind, err := game.ParseActionKind(args[0])
	if err != nil {
		return game.Action{}, err
	}
	switch {
	case kind == game.KindRaise && len(args) != 2:
		return game.Action{}, fmt.Errorf("raise needs an amount, e.g. \"raise 200\"")
	case kind != game.KindRaise && len(args) != 1:
		return game.Action{}, fmt.Errorf("%s takes no amount", kind)
	case kind == game.KindRaise:
		amount, err = strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			return game.Action{}, fmt.Errorf("invalid raise amount %q", args[1])
		}
	}
	return game.ParseAction(kind.String(), amount)
}
