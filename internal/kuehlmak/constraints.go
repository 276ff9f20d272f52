package kuehlmak

import "sort"

// EvaluateConstraints computes the configured penalty set for a layout
// (spec.md 4.5). All penalties are normalized to roughly [0,1] before being
// weighted; an unconfigured constraint contributes 0.
//
// Grounded on the teacher's TargetLoads/constraints parsing
// (internal/keycraft/targets.go) for the idea of a bundle of independently
// weighted, independently toggled penalty terms, reworked around this
// spec's specific penalty formulas.
func EvaluateConstraints(model *Model, layout *Layout) (float64, error) {
	cfg := model.Params.Constraints
	var total float64

	if cfg.ReferenceLayout != nil {
		total += referencePenalty(layout, cfg.ReferenceLayout, cfg.Threshold, cfg.RefWeight, model)
	}
	if len(cfg.TopKeys) > 0 {
		total += rowKeysetPenalty(layout, 0, cfg.TopKeys, cfg.RowWeight)
	}
	if len(cfg.MidKeys) > 0 {
		total += rowKeysetPenalty(layout, 1, cfg.MidKeys, cfg.RowWeight)
	}
	if len(cfg.BotKeys) > 0 {
		total += rowKeysetPenalty(layout, 2, cfg.BotKeys, cfg.RowWeight)
	}
	if len(cfg.HomingKeys) > 0 {
		total += homingPenalty(layout, cfg.HomingKeys, cfg.HomingWeight)
	}
	if cfg.ZXCV {
		total += zxcvPenalty(layout, cfg.ZXCVWeight)
	}
	if cfg.NonAlpha {
		total += nonAlphaPenalty(layout, cfg.NonAlphaWeight)
	}
	if len(cfg.ForcedKeys) > 0 {
		total += forcedKeysPenalty(layout, cfg.ForcedKeys)
	}

	return total, nil
}

// referencePenalty implements layout_distance (spec.md 4.5): matches
// primary glyphs in sorted order, credits 4 (same key), 2 (same finger), 1
// (same hand), normalizes to [0,1] as (120-credit)/120, then applies a
// threshold hinge.
func referencePenalty(a, ref *Layout, threshold, weight float64, model *Model) float64 {
	aGlyphs := sortedRunes(a.Primary[:NumKeys-1])
	refGlyphs := sortedRunes(ref.Primary[:NumKeys-1])

	var credit float64
	for i := range aGlyphs {
		g := aGlyphs[i]
		if i >= len(refGlyphs) || refGlyphs[i] != g {
			continue
		}
		ai, aok := a.IndexOf(g)
		ri, rok := ref.IndexOf(g)
		if !aok || !rok {
			continue
		}
		switch {
		case ai == ri:
			credit += 4
		case model.KeyProps[ai].Finger == model.KeyProps[ri].Finger:
			credit += 2
		case model.KeyProps[ai].Hand == model.KeyProps[ri].Hand:
			credit += 1
		}
	}

	dist := (120 - credit) / 120
	if dist < threshold {
		return 0
	}
	return (dist - threshold) * (1 - threshold) * weight
}

func sortedRunes(rs []rune) []rune {
	out := append([]rune(nil), rs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// rowKeysetPenalty implements the per-row keyset penalty (spec.md 4.5):
// penalty = 1 - |row ∩ keys| / 10.
func rowKeysetPenalty(l *Layout, row int, keys map[rune]bool, weight float64) float64 {
	var matched int
	for col := range 10 {
		idx := row*10 + col
		if keys[l.Primary[idx]] {
			matched++
		}
	}
	return (1 - float64(matched)/10) * weight
}

// homingRowStart is the key index of the first homing-row (middle row)
// slot; homing keys sit on the home row at the index (3,6) or middle (2,7)
// finger slots (spec.md GLOSSARY, "Home position / homing keys").
const homingRowStart = 10

// homingPenalty implements the homing-key constraint (spec.md 4.5): for
// index-finger and middle-finger homing candidates, pick whichever column
// set places more of the homing glyphs correctly; any homing glyph placed
// elsewhere adds a penalty unit.
func homingPenalty(l *Layout, homingKeys []rune, weight float64) float64 {
	indexCols := []int{3, 6}
	middleCols := []int{2, 7}

	scoreFor := func(cols []int) (best, wrong int) {
		allowed := make(map[uint8]bool, len(cols))
		for _, c := range cols {
			allowed[uint8(homingRowStart+c)] = true
		}
		for _, r := range homingKeys {
			idx, ok := l.IndexOf(r)
			if !ok {
				continue
			}
			if allowed[idx] {
				best++
			} else {
				wrong++
			}
		}
		return
	}

	bi, wi := scoreFor(indexCols)
	bm, wm := scoreFor(middleCols)

	best, wrong := bi, wi
	if bm > bi {
		best, wrong = bm, wm
	}

	return float64(2-best+wrong) / 3 * weight
}

// zxcvPenalty implements the zxcv constraint (spec.md 4.5): penalize when
// z,x,c,v aren't on the left-hand bottom row, bonus when all four appear
// there in order.
func zxcvPenalty(l *Layout, weight float64) float64 {
	const row = 2
	positions := make(map[rune]int, 4)
	for col := range 5 {
		idx := row*10 + col
		positions[l.Primary[idx]] = col
	}

	letters := []rune{'z', 'x', 'c', 'v'}
	var present int
	cols := make([]int, 0, 4)
	for _, r := range letters {
		if col, ok := positions[r]; ok {
			present++
			cols = append(cols, col)
		}
	}

	penalty := float64(4-present) / 4
	if present == 4 && sort.IntsAreSorted(cols) {
		penalty -= 1.0 / 4
	}
	return penalty * weight
}

// nonAlphaPenalty implements the nonalpha constraint (spec.md 4.5):
// alphabetic glyphs shouldn't sit at Colemak's "non-alpha" slots -- index 9
// of the top row, and the last three of the bottom row.
func nonAlphaPenalty(l *Layout, weight float64) float64 {
	slots := []uint8{9, 27, 28, 29}
	var violations int
	for _, idx := range slots {
		if isAlpha(l.Primary[idx]) {
			violations++
		}
	}
	return float64(violations) / float64(len(slots)) * weight
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// forcedKeysPenalty implements the forced-key constraint (spec.md 4.5):
// each violated (char, index) constraint contributes 1/N; zero violations
// yield a small negative bonus -1/N.
func forcedKeysPenalty(l *Layout, forced map[rune]uint8) float64 {
	n := len(forced)
	if n == 0 {
		return 0
	}
	var violations int
	for r, want := range forced {
		got, ok := l.IndexOf(r)
		if !ok || got != want {
			violations++
		}
	}
	if violations == 0 {
		return -1.0 / float64(n)
	}
	return float64(violations) / float64(n)
}
