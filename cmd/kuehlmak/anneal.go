package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/kuehlmak/kuehlmak/internal/anneal"
	"github.com/kuehlmak/kuehlmak/internal/scoreio"
)

var annealCommand = &cli.Command{
	Name:   "anneal",
	Usage:  "Run a parallel simulated-annealing search for a better layout",
	Flags:  flagsSlice("corpus", "layout", "config", "board", "steps", "workers", "number", "progress", "seed", "shuffle", "db", "log", "pins", "pins-file", "free"),
	Action: annealAction,
}

func annealAction(c *cli.Context) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := anneal.PoolConfig{
		Workers: c.Int("workers"),
		Runs:    c.Int("number"),
		Steps:   c.Int("steps"),
		Shuffle: c.Bool("shuffle"),
	}
	showProgress := c.Bool("progress")

	var logger *anneal.Logger
	if logPath := c.String("log"); logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("creating trajectory log %s: %w", logPath, err)
		}
		defer f.Close()
		logger = anneal.NewLogger(f)
	}

	progress, g := anneal.RunPool(ctx, model, stats, layout, cfg, c.Uint64("seed"), logger)

	dbDir := c.String("db")
	for p := range progress {
		if !p.Final {
			if showProgress {
				fmt.Printf("worker %d: step %d total=%.4f\n", p.WorkerID, p.Step.Iteration, p.Step.Scores.GrandTotal())
			}
			continue
		}
		fmt.Printf("worker %d finished: total=%.4f\n", p.WorkerID, p.BestScore.GrandTotal())
		if err := scoreio.AppendDB(dbDir, p.Best, p.BestScore); err != nil {
			fmt.Fprintf(os.Stderr, "db append failed for worker %d: %v\n", p.WorkerID, err)
		}
	}

	return g.Wait()
}
