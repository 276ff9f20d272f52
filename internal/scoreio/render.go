package scoreio

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// RankedLayout pairs a named layout with its evaluated Scores, the unit
// the rank CLI subcommand renders.
type RankedLayout struct {
	Name   string
	Layout *kuehlmak.Layout
	Scores *kuehlmak.Scores
}

// RenderRankingTable prints a sorted (best GrandTotal first) table of
// ranked layouts to w, one column per named component plus grand total.
// Grounded on the teacher's buildTable/renderTableTerminal
// (cmd/keycraft/ranking_render.go), narrowed to this spec's fixed
// component set and terminal-only rendering.
func RenderRankingTable(w io.Writer, ranked []RankedLayout, components []string) {
	sorted := append([]RankedLayout(nil), ranked...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Scores.GrandTotal() < sorted[j].Scores.GrandTotal()
	})

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Box.PaddingLeft = ""
	tw.Style().Box.PaddingRight = ""
	tw.Style().Title.Align = text.AlignCenter
	tw.SetTitle("Layout Ranking")

	colConfigs := []table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Name", Align: text.AlignLeft},
		{Name: "Total", Align: text.AlignRight},
	}
	header := table.Row{"#", "Name", "Total"}
	for _, name := range components {
		colConfigs = append(colConfigs, table.ColumnConfig{Name: name, Align: text.AlignRight, AlignHeader: text.AlignRight})
		header = append(header, name)
	}
	tw.SetColumnConfigs(colConfigs)
	tw.AppendHeader(header)

	for i, rl := range sorted {
		row := table.Row{i + 1, rl.Name, fmt.Sprintf("%.4f", rl.Scores.GrandTotal())}
		for _, name := range components {
			row = append(row, fmt.Sprintf("%.4f", componentByName(rl.Scores, name)))
		}
		tw.AppendRow(row)
	}

	tw.Render()
}

// componentByName extracts a single named component value from Scores
// for table display. It covers effort, travel, imbalance, total,
// constraints and strokes; any other name, including the Left/Right
// bigram and trigram categories, yields 0.
func componentByName(s *kuehlmak.Scores, name string) float64 {
	switch name {
	case "effort":
		return s.Effort
	case "travel":
		return s.Travel
	case "imbalance":
		return s.Imbalance
	case "total":
		return s.Total
	case "constraints":
		return s.Constraints
	case "strokes":
		return float64(s.Strokes)
	default:
		return 0
	}
}
