// Package config loads holdem configuration from HCL.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/holdem-rooms/internal/store"
)

// Config represents the complete configuration
type Config struct {
	Log   *LogSettings   `hcl:"log,block"`
	Store *StoreSettings `hcl:"store,block"`
	Game  *GameSettings  `hcl:"game,block"`
}

// LogSettings controls logging output
type LogSettings struct {
	Level string `hcl:"level,optional"`
}

// StoreSettings selects the persistence backend
type StoreSettings struct {
	Driver string `hcl:"driver,optional"`
	Path   string `hcl:"path,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// GameSettings controls how hands are run
type GameSettings struct {
	DefaultChips int    `hcl:"default_chips,optional"`
	BotPrefix    string `hcl:"bot_prefix,optional"`
	// ActionTimeout is a Go duration such as "30s"; empty disables it.
	ActionTimeout string `hcl:"action_timeout,optional"`
	Seed          int64  `hcl:"seed,optional"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	// Blocks are optional in the file
	if c.Log == nil {
		c.Log = &LogSettings{}
	}
	if c.Store == nil {
		c.Store = &StoreSettings{}
	}
	if c.Game == nil {
		c.Game = &GameSettings{}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = store.DriverFile
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultPath(c.Store.Driver)
	}
	if c.Game.DefaultChips == 0 {
		c.Game.DefaultChips = 1000
	}
	if c.Game.BotPrefix == "" {
		c.Game.BotPrefix = "bot-"
	}
}

// DefaultPath is where a driver keeps its data when no path is set
func DefaultPath(driver string) string {
	switch driver {
	case store.DriverFile:
		return "database.json"
	case store.DriverSQLite:
		return "holdem.db"
	default:
		return ""
	}
}

// Load reads an HCL file, falling back to defaults when it does not exist.
// A .env file in the working directory is loaded first, and DATABASE_URL in
// the environment switches the store to postgres.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			parser := hclparse.NewParser()
			file, diags := parser.ParseHCLFile(filename)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
			}
			if diags := gohcl.DecodeBody(file.Body, nil, &c); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	c.applyEnv(os.Getenv)
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	dsn := strings.TrimSpace(getenv("DATABASE_URL"))
	if dsn == "" {
		return
	}
	if c.Store == nil {
		c.Store = &StoreSettings{}
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		c.Store.Driver = store.DriverPostgres
		c.Store.DSN = dsn
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverFile, store.DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store %s: path is required", c.Store.Driver)
		}
	case store.DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store postgres: dsn is required")
		}
	default:
		return fmt.Errorf("invalid store driver %q", c.Store.Driver)
	}

	if c.Game.DefaultChips <= 0 {
		return fmt.Errorf("default chips must be positive, got %d", c.Game.DefaultChips)
	}
	if _, err := c.Game.Timeout(); err != nil {
		return err
	}
	return nil
}

// StoreConfig returns the settings in the form store.Open takes
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver: c.Store.Driver,
		Path:   c.Store.Path,
		DSN:    c.Store.DSN,
	}
}

// Timeout parses the action timeout; zero means disabled
func (g GameSettings) Timeout() (time.Duration, error) {
	if g.ActionTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(g.ActionTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid action timeout %q", g.ActionTimeout)
	}
	return d, nil
}

// IsBot reports whether name is played by the automated policy
func (g GameSettings) IsBot(name string) bool {
	return g.BotPrefix != "" && strings.HasPrefix(name, g.BotPrefix)
}
