package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
	"github.com/kuehlmak/kuehlmak/internal/scoreio"
)

var evalCommand = &cli.Command{
	Name:   "eval",
	Usage:  "Evaluate a single layout against a corpus and print its score report",
	Flags:  flagsSlice("corpus", "layout", "config", "board", "extra"),
	Action: evalAction,
}

func evalAction(c *cli.Context) error {
	layout, err := loadLayoutFromFlags(c)
	if err != nil {
		return err
	}

	stats, err := loadCorpusFromFlags(c)
	if err != nil {
		return err
	}

	model, err := buildModelFromFlags(c, layout, stats)
	if err != nil {
		return err
	}

	scores, err := kuehlmak.EvalLayout(model, layout, stats, 1.0, c.Bool("extra"))
	if err != nil {
		return fmt.Errorf("evaluating layout: %w", err)
	}

	return scoreio.WriteReport(os.Stdout, scores, c.Bool("extra"))
}
