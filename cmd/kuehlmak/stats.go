package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kuehlmak/kuehlmak/internal/scoreio"
)

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "Estimate population size and per-score quartile statistics for a popularity-weighted layout DB",
	Flags: append(flagsSlice("corpus", "config", "board", "db"),
		&cli.StringFlag{
			Name:    "scores",
			Aliases: []string{"s"},
			Usage:   "comma-separated score names to report quartiles for, each optionally '+'-prefixed",
			Value:   "total",
		},
	),
	Action: statsAction,
}

// statsAction scans --db for popularity-marked layouts and reports a
// population-size estimate plus popularity-weighted quartile statistics
// per requested score name. Grounded on the original kuehlmak CLI's
// stats_command (original_source/src/main.rs:462-585), including its
// birthday-problem population estimator.
func statsAction(c *cli.Context) error {
	stats, err := loadCorpusFromFlags(c)
	if err != nil {
		return err
	}

	dbDir := c.String("db")
	entries, ignored, err := scoreio.ScanDB(dbDir)
	if err != nil {
		return err
	}
	if len(ignored) > 0 {
		fmt.Printf("ignoring %s\n", strings.Join(ignored, ", "))
	}
	if len(entries) == 0 {
		fmt.Println("No layouts found.")
		return nil
	}

	model, err := buildModelFromFlags(c, entries[0].Layout, stats)
	if err != nil {
		return err
	}

	ranked, err := scoreio.Rank(model, stats, entries, nil)
	if err != nil {
		return err
	}

	sampleSize := 0
	for _, r := range ranked {
		sampleSize += r.Popularity
	}

	buckets := scoreio.EstimatePopulation(ranked)
	expected := buckets[0].Unique*2 + buckets[1].Estimate + buckets[2].Estimate
	fmt.Println()
	fmt.Printf("Unique/total layouts found: %d/%d, >%d unique layouts expected\n", len(ranked), sampleSize, expected)
	fmt.Println()

	names := strings.Split(c.String("scores"), ",")
	fmt.Printf("%12s: %-10s %-10s %6s %6s %6s %6s %6s %6s\n",
		"Score", "Popular", "Min", "Lower", "Median", "Upper", "Max", "IQR", "Range")
	fmt.Println(strings.Repeat("-", 80))
	for _, name := range names {
		q, err := scoreio.QuartilesFor(ranked, name)
		if err != nil {
			return err
		}
		fmt.Printf("%12s: %6.1fx%-3d %6.1fx%-3d %6.1f %6.1f %6.1f %6.1f %6.1f %6.1f\n",
			name, q.MostPopularValue, q.MostPopularCount, q.Min, q.MinCount,
			q.Lower, q.Median, q.Upper, q.Max, q.IQR(), q.Range())
	}
	fmt.Println()
	return nil
}
