package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Start   StartCmd         `cmd:"" help:"Deal a new hand in a room"`
	Act     ActCmd           `cmd:"" help:"Act for a player in a room"`
	Show    ShowCmd          `cmd:"" help:"Show a room's hand as a player sees it"`
	Chips   ChipsCmd         `cmd:"" help:"Show or set a player's chip balance"`
	Export  ExportCmd        `cmd:"" help:"Write a settled hand as PHH"`
	Play    PlayCmd          `cmd:"" help:"Play hands against bots in the terminal"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem"),
		kong.Description("No-limit hold'em rooms backed by a store"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
