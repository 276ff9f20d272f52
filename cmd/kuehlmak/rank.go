package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kuehlmak/kuehlmak/internal/scoreio"
)

// rankTableComponents are the columns shown in the quick-overview table
// printed before rank's per-layout detailed reports.
var rankTableComponents = []string{"effort", "travel", "imbalance", "constraints", "strokes"}

var rankCommand = &cli.Command{
	Name:  "rank",
	Usage: "Rank a directory of popularity-weighted layouts by one or more score criteria",
	Flags: append(flagsSlice("corpus", "config", "board", "db"),
		&cli.StringFlag{
			Name:    "scores",
			Aliases: []string{"s"},
			Usage:   "comma-separated score names to rank by, each optionally '+'-prefixed to reverse direction (descending instead of ascending)",
			Value:   "total",
		},
		&cli.IntFlag{
			Name:    "number",
			Aliases: []string{"n"},
			Usage:   "print only the top N ranked layouts; 0 means all",
		},
		&cli.StringFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			Usage:   "write the top N ranked layouts to <prefix><NNN>.kbl",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "overwrite existing --prefix output files instead of skipping them",
		},
	),
	Action: rankAction,
}

// rankAction scans --db for popularity-marked layouts, ranks them by
// --scores, and prints the top --number entries, optionally saving them
// under --prefix. Grounded on the original kuehlmak CLI's rank_command
// (original_source/src/main.rs:318-433): directory scan, cumulative
// multi-criteria ranking with tie handling, and --prefix/--force output.
func rankAction(c *cli.Context) error {
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

	names := strings.Split(c.String("scores"), ",")
	ranked, err := scoreio.Rank(model, stats, entries, names)
	if err != nil {
		return err
	}

	n := c.Int("number")
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	width := len(fmt.Sprintf("%d", n))

	overview := make([]scoreio.RankedLayout, n)
	for i, r := range ranked[:n] {
		overview[i] = scoreio.RankedLayout{Name: filepath.Base(r.Path), Layout: r.Layout, Scores: r.Scores}
	}
	scoreio.RenderRankingTable(os.Stdout, overview, rankTableComponents)
	fmt.Println()

	prefix := c.String("prefix")
	force := c.Bool("force")

	for i, r := range ranked[:n] {
		fmt.Printf("=== %dx ", r.Popularity)
		for _, name := range names {
			fmt.Printf("%s=%d ", name, r.ComponentRanks[name])
		}
		fmt.Println("===")
		if err := scoreio.WriteReport(os.Stdout, r.Scores, false); err != nil {
			return err
		}
		fmt.Println()

		if prefix == "" {
			continue
		}
		path := fmt.Sprintf("%s%0*d.kbl", prefix, width, i+1)
		if !force {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(os.Stderr, "layout file %q exists; use --force to overwrite it\n", path)
				continue
			}
		}
		if err := os.WriteFile(path, []byte(r.Layout.String()+"\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", path, err)
		}
	}
	return nil
}
