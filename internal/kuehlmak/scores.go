package kuehlmak

import (
	"fmt"
	"math"
	"strings"
)

// NgramCount pairs an n-gram string with its accumulated occurrence count,
// used by the optional verbose per-category lists (spec.md section 3).
type NgramCount struct {
	Ngram string
	Count uint64
}

// Scores is a per-evaluation record, owned by its caller and never shared
// across evaluations (spec.md section 3, Scores).
type Scores struct {
	Layout *Layout

	Heatmap       [NumKeys]uint64
	BigramCounts  [numBigramTypes][2]uint64
	TrigramCounts [numTrigramTypes][2]uint64
	FingerTravel  [numFingers]float64

	// Pair-valued aggregates, indexed [Left, Right].
	URolls    [2]float64
	WLSBs     [2]float64
	DURolls   [2]float64
	DWLSBs    [2]float64
	Redirects [2]float64
	Contorts  [2]float64

	Effort      float64
	Travel      float64
	Imbalance   float64
	Total       float64
	Constraints float64
	HandRuns    [2]float64
	Strokes     uint64

	// Verbose per-category n-gram lists, populated only when eval_layout's
	// extra flag is set.
	Verbose map[string][]NgramCount
}

// NewScores allocates a zeroed Scores record bound to a layout.
func NewScores(layout *Layout) *Scores {
	return &Scores{Layout: layout}
}

// GrandTotal returns total + constraints (spec.md 4.4 step 13, "total()").
func (s *Scores) GrandTotal() float64 {
	return s.Total + s.Constraints
}

// hypotLike reduces a left/right pair-valued aggregate to a single scalar:
// sqrt(2*(L^2+R^2)). This both sums magnitude and penalizes extreme
// imbalance between the two hands (spec.md 4.4, final paragraph).
func hypotLike(pair [2]float64) float64 {
	l, r := pair[0], pair[1]
	return math.Sqrt(2 * (l*l + r*r))
}

// Write renders the compact human-readable score block: 6 text rows
// showing heatmap, n-gram counts, travel, effort, and imbalance (spec.md
// 4.8), grounded on the teacher's Analyser/Scorer text dumps
// (internal/keycraft/analyser.go, scorer.go).
func (s *Scores) Write() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "total=%.4f effort=%.4f travel=%.4f imbalance=%.4f constraints=%.4f strokes=%d\n",
		s.GrandTotal(), s.Effort, s.Travel, s.Imbalance, s.Constraints, s.Strokes)

	fmt.Fprintf(&sb, "heatmap: ")
	for i := uint8(0); i < NumKeys-1; i++ {
		fmt.Fprintf(&sb, "%d ", s.Heatmap[i])
		if i%10 == 9 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "bigrams: ")
	for t := BigramType(0); int(t) < numBigramTypes; t++ {
		fmt.Fprintf(&sb, "%s=%d/%d ", t, s.BigramCounts[t][0], s.BigramCounts[t][1])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "trigrams: ")
	for t := TrigramType(0); int(t) < numTrigramTypes; t++ {
		fmt.Fprintf(&sb, "%s=%d/%d ", t, s.TrigramCounts[t][0], s.TrigramCounts[t][1])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "travel: ")
	for f := Finger(0); int(f) < numFingers; f++ {
		fmt.Fprintf(&sb, "%s=%.1f ", f, s.FingerTravel[f])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "urolls=%.2f wlsbs=%.2f d_urolls=%.2f d_wlsbs=%.2f redirects=%.2f contorts=%.2f hand_runs=%.2f/%.2f\n",
		hypotLike(s.URolls), hypotLike(s.WLSBs), hypotLike(s.DURolls), hypotLike(s.DWLSBs),
		hypotLike(s.Redirects), hypotLike(s.Contorts), s.HandRuns[0], s.HandRuns[1])

	return sb.String()
}

// WriteExtra renders the optional per-category n-gram breakdown (spec.md
// 4.8); empty when Verbose wasn't populated.
func (s *Scores) WriteExtra() string {
	if len(s.Verbose) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, category := range sortedKeys(s.Verbose) {
		list := s.Verbose[category]
		fmt.Fprintf(&sb, "[%s]\n", category)
		for _, nc := range list {
			fmt.Fprintf(&sb, "  %-6s %d\n", nc.Ngram, nc.Count)
		}
	}
	return sb.String()
}

func sortedKeys(m map[string][]NgramCount) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
