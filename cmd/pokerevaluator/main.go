package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Evaluate EvaluateCmd      `cmd:"" default:"withargs" help:"Evaluate poker hands interactively (default)"`
	Init     InitCmd          `cmd:"" help:"Write a starter prompt template and configuration file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerevaluator"),
		kong.Description("Interactive poker hand evaluator backed by a language model"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
