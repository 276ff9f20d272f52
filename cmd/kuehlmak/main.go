// Package main provides the kuehlmak CLI: corpus, anneal, eval, rank,
// stats, and init subcommands over the internal/kuehlmak evaluator and
// internal/anneal optimizer (spec.md section 6, "CLI surface").
//
// Grounded on the teacher's cmd/keycraft/main.go for the overall
// appFlagsMap + urfave/cli/v2 shape, narrowed to this spec's six
// subcommands and their flags.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// appFlagsMap centralizes flag definitions shared across subcommands.
var appFlagsMap = map[string]cli.Flag{
	"corpus": &cli.StringFlag{
		Name:    "corpus",
		Aliases: []string{"c"},
		Usage:   "path to a text corpus file",
	},
	"layout": &cli.StringFlag{
		Name:    "layout",
		Aliases: []string{"l"},
		Usage:   "path to a layout text file",
	},
	"config": &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"f"},
		Usage:   "path to a TOML run configuration",
	},
	"board": &cli.StringFlag{
		Name:  "board",
		Usage: "keyboard geometry: ortho, colstag, hex, hexstag, ansi, angle, iso",
		Value: "ortho",
	},
	"steps": &cli.IntFlag{
		Name:  "steps",
		Usage: "annealing steps per worker",
		Value: 200000,
	},
	"workers": &cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"j"},
		Usage:   "concurrent worker count (jobs); 0 defaults to the detected CPU count",
		Value:   0,
	},
	"number": &cli.IntFlag{
		Name:    "number",
		Aliases: []string{"n"},
		Usage:   "number of independent layouts to anneal; 0 defaults to --workers (one per worker)",
		Value:   0,
	},
	"progress": &cli.BoolFlag{
		Name:    "progress",
		Aliases: []string{"p"},
		Usage:   "print each worker's current score as it anneals, not just its final result",
	},
	"seed": &cli.Uint64Flag{
		Name:  "seed",
		Usage: "base RNG seed",
		Value: 1,
	},
	"shuffle": &cli.BoolFlag{
		Name:  "shuffle",
		Usage: "randomize the initial layout before annealing",
	},
	"db": &cli.StringFlag{
		Name:  "db",
		Usage: "directory for the discovered-layout database",
		Value: "db",
	},
	"extra": &cli.BoolFlag{
		Name:  "extra",
		Usage: "print the write_extra per-category n-gram dump",
	},
	"rows": &cli.IntFlag{
		Name:  "rows",
		Usage: "number of n-gram rows to show",
		Value: 10,
	},
	"log": &cli.StringFlag{
		Name:  "log",
		Usage: "path to a JSONL trajectory log; empty disables logging",
	},
	"pins": &cli.StringFlag{
		Name:  "pins",
		Usage: "glyphs to pin in place against the initial layout; mutually exclusive with --free",
	},
	"pins-file": &cli.StringFlag{
		Name:  "pins-file",
		Usage: "file containing glyphs to pin in place, same meaning as --pins",
	},
	"free": &cli.StringFlag{
		Name:  "free",
		Usage: "glyphs allowed to move; every other key is pinned. Mutually exclusive with --pins/--pins-file",
	},
}

func flagsSlice(keys ...string) []cli.Flag {
	flags := make([]cli.Flag, 0, len(keys))
	for _, k := range keys {
		if f, ok := appFlagsMap[k]; ok {
			flags = append(flags, f)
		}
	}
	return flags
}

func main() {
	app := &cli.App{
		Name:  "kuehlmak",
		Usage: "Evaluate and anneal keyboard layouts against a text corpus",
		Commands: []*cli.Command{
			corpusCommand,
			initCommand,
			evalCommand,
			annealCommand,
			rankCommand,
			statsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
