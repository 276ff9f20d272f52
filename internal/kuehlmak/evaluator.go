package kuehlmak

import (
	"fmt"
	"math"
)

// spaceRune is the hard-coded space symbol always considered part of the
// token_keymap, mapped to the thumb/space key (spec.md 4.4 step 1).
const spaceRune = ' '

// EvalLayout computes a Scores record for a (layout, text_stats) pair at a
// given precision, optionally retaining the per-category n-gram lists used
// by reporting (spec.md 4.4, "Evaluator — public contract").
//
// Grounded on the teacher's Scorer.Score (internal/keycraft/scorer.go) for
// overall shape -- build a key map, walk n-grams in frequency order up to a
// coverage cutoff, accumulate per-category counts -- reworked around this
// spec's bigram/trigram classifier tables and travel-correction formulas
// instead of the teacher's Analyser categories.
func EvalLayout(model *Model, layout *Layout, stats TextStats, precision float64, extra bool) (*Scores, error) {
	if precision < 0 || precision > 1 {
		return nil, fmt.Errorf("precision must be in [0,1], got %f", precision)
	}

	scores := NewScores(layout)

	tokenKeymap := make(map[uint32]uint8, NumKeys*2)
	registerGlyph := func(r rune, idx uint8) {
		count, token, ok := stats.GetSymbol(r)
		if !ok {
			return
		}
		tokenKeymap[token] = idx
		scores.Heatmap[idx] += count
	}
	for idx := uint8(0); idx < NumKeys-1; idx++ {
		registerGlyph(layout.Primary[idx], idx)
		if layout.Secondary[idx] != layout.Primary[idx] {
			registerGlyph(layout.Secondary[idx], idx)
		}
	}
	registerGlyph(spaceRune, ThumbIndex)

	for _, h := range scores.Heatmap {
		scores.Strokes += h
	}

	travelUncorrected := [numFingers]float64{}
	for k := uint8(0); k < NumKeys; k++ {
		f := model.KeyProps[k].Finger
		travelUncorrected[f] += float64(scores.Heatmap[k]) * model.KeyProps[k].DAbs
	}

	scores.FingerTravel = travelUncorrected

	if extra {
		scores.Verbose = map[string][]NgramCount{}
	}

	totalBigrams := stats.TotalBigrams()
	var countedBigrams uint64
	bigramCutoff := uint64(precision * float64(totalBigrams))

	stats.IterBigrams(func(ngram Ngram, count uint64, _ uint32) bool {
		if countedBigrams > bigramCutoff {
			return false
		}
		k0, ok0 := tokenKeymap[ngram[0]]
		k1, ok1 := tokenKeymap[ngram[1]]
		if !ok0 || !ok1 || k0 == ThumbIndex || k1 == ThumbIndex {
			return true
		}
		if model.KeyProps[k1].Hand == AnyHand {
			return true
		}

		bt := model.BigramTypes[k0][k1]
		hand := handIndex(model.KeyProps[k1].Hand)
		scores.BigramCounts[bt][hand] += count
		countedBigrams += count

		if extra {
			key := bt.String()
			ngram := string([]rune{layout.Primary[k0], layout.Primary[k1]})
			scores.Verbose[key] = append(scores.Verbose[key], NgramCount{Ngram: ngram, Count: count})
		}

		if bt == SFB || bt == SameKey {
			dRel := model.KeyProps[k0].DRel[k1]
			dAbs := model.KeyProps[k1].DAbs
			landing := model.KeyProps[k1].Finger
			scores.FingerTravel[landing] += float64(count) * (4*dRel - dAbs)
		}
		return true
	})

	if countedBigrams > 0 && totalBigrams > 0 {
		ratio := float64(totalBigrams) / float64(countedBigrams)
		for t := BigramType(0); int(t) < numBigramTypes; t++ {
			scores.BigramCounts[t][0] = uint64(float64(scores.BigramCounts[t][0]) * ratio)
			scores.BigramCounts[t][1] = uint64(float64(scores.BigramCounts[t][1]) * ratio)
		}
	}

	// The coverage-cutoff walk only ever corrects a fraction of the
	// precision-scaled total, so its effect on FingerTravel is extrapolated
	// by re-applying the just-computed correction scaled by (1-precision)
	// on top of itself -- at precision 1.0 this is a no-op (the full corpus
	// was already walked); at lower precision the correction is amplified
	// rather than damped, since the walk saw proportionally less of it.
	// Matches the ground-truth evaluator's finger_travel lerp exactly
	// (original_source/src/eval.rs: the "Correct travel estimate" blocks).
	bigramTravel := scores.FingerTravel
	for f := range bigramTravel {
		scores.FingerTravel[f] += (bigramTravel[f] - travelUncorrected[f]) * (1 - precision)
	}
	afterBigramLerp := scores.FingerTravel

	totalTrigrams := stats.TotalTrigrams()
	var countedTrigrams uint64
	trigramCutoff := uint64(precision * float64(totalTrigrams))

	stats.IterTrigrams(func(ngram Ngram, count uint64, _ uint32) bool {
		if countedTrigrams > trigramCutoff {
			return false
		}
		k0, ok0 := tokenKeymap[ngram[0]]
		k1, ok1 := tokenKeymap[ngram[1]]
		k2, ok2 := tokenKeymap[ngram[2]]
		if !ok0 || !ok1 || !ok2 || k0 == ThumbIndex || k1 == ThumbIndex || k2 == ThumbIndex {
			return true
		}
		if model.KeyProps[k2].Hand == AnyHand {
			return true
		}

		tt := model.TrigramTypes[k0][k1][k2]
		hand := handIndex(model.KeyProps[k2].Hand)
		scores.TrigramCounts[tt][hand] += count
		countedTrigrams += count

		if extra {
			key := "tri:" + tt.String()
			ngram := string([]rune{layout.Primary[k0], layout.Primary[k1], layout.Primary[k2]})
			scores.Verbose[key] = append(scores.Verbose[key], NgramCount{Ngram: ngram, Count: count})
		}

		switch tt {
		case DSameKey, ShdSameKey, DSFB, ShdSFB:
			dRel := model.KeyProps[k0].DRel[k2]
			dAbs := model.KeyProps[k2].DAbs
			landing := model.KeyProps[k2].Finger
			scores.FingerTravel[landing] += float64(count) * (2*dRel - dAbs)
		}
		return true
	})

	if countedTrigrams > 0 && totalTrigrams > 0 {
		ratio := float64(totalTrigrams) / float64(countedTrigrams)
		for t := TrigramType(0); int(t) < numTrigramTypes; t++ {
			scores.TrigramCounts[t][0] = uint64(float64(scores.TrigramCounts[t][0]) * ratio)
			scores.TrigramCounts[t][1] = uint64(float64(scores.TrigramCounts[t][1]) * ratio)
		}
	}

	// Same extrapolation as the bigram stage, applied against the travel
	// snapshot taken after the bigram lerp (eval.rs re-captures orig_finger_
	// travel between the two correction passes, so the two lerps compound).
	trigramTravel := scores.FingerTravel
	for f := range trigramTravel {
		scores.FingerTravel[f] += (trigramTravel[f] - afterBigramLerp[f]) * (1 - precision)
	}

	for h := range 2 {
		scores.URolls[h] = float64(scores.BigramCounts[URoll][h]) +
			0.5*float64(scores.BigramCounts[LSB2][h]) + (2.0/3.0)*float64(scores.BigramCounts[LSB3][h])
		scores.WLSBs[h] = float64(scores.BigramCounts[LSB1][h]) +
			0.5*float64(scores.BigramCounts[LSB2][h]) + (1.0/3.0)*float64(scores.BigramCounts[LSB3][h])
		scores.DURolls[h] = float64(scores.TrigramCounts[DURoll][h]) +
			0.5*float64(scores.TrigramCounts[DLSB2][h]) + (2.0/3.0)*float64(scores.TrigramCounts[DLSB3][h])
		scores.DWLSBs[h] = float64(scores.TrigramCounts[DLSB1][h]) +
			0.5*float64(scores.TrigramCounts[DLSB2][h]) + (1.0/3.0)*float64(scores.TrigramCounts[DLSB3][h])
		scores.Redirects[h] = float64(scores.TrigramCounts[Redirect][h]) + float64(scores.TrigramCounts[ShdSameKey][h])
		scores.Contorts[h] = float64(scores.TrigramCounts[Contort][h]) + float64(scores.TrigramCounts[ShdSFB][h])
	}

	var fingerCostSumSq float64
	for f := range numFingers {
		var fingerCost float64
		for _, k := range model.FingerKeys[f] {
			fingerCost += float64(scores.Heatmap[k]) * float64(model.KeyProps[k].Cost)
		}
		fingerCostSumSq += fingerCost * fingerCost
	}
	if scores.Strokes > 0 {
		scores.Effort = math.Sqrt(float64(numFingers)*fingerCostSumSq) / float64(scores.Strokes)
	}

	var travelWeightedSumSq, normInv float64
	for f := range numFingers {
		weight := float64(model.Params.FingerWeights[f])
		if Finger(f) == Th {
			weight = 255
		}
		if weight == 0 {
			weight = 1
		}
		t := scores.FingerTravel[f] * weight
		travelWeightedSumSq += t * t
		normInv += 1 / (weight * weight)
	}
	if scores.Strokes > 0 {
		scores.Travel = math.Sqrt(normInv*travelWeightedSumSq) / float64(scores.Strokes)
	}

	var handTotal [2]uint64
	for k := uint8(0); k < NumKeys-1; k++ {
		handTotal[handIndex(model.KeyProps[k].Hand)] += scores.Heatmap[k]
	}
	l, r := float64(handTotal[0]), float64(handTotal[1])
	maxLR, minLR := math.Max(l, r), math.Min(l, r)
	if maxLR == 0 {
		scores.Imbalance = 0
	} else {
		ratio := math.Max(0.001, minLR/maxLR)
		scores.Imbalance = 1/ratio - 1
	}

	for h := range 2 {
		var sameHand uint64
		for t := BigramType(0); int(t) < numBigramTypes; t++ {
			if t == Alternate {
				continue
			}
			sameHand += scores.BigramCounts[t][h]
		}
		denom := float64(handTotal[h]) - float64(sameHand)
		if denom > 0 {
			scores.HandRuns[h] = float64(handTotal[h]) / denom
		}
	}

	scores.Total = computeTotal(model.Params, scores)

	constraints, err := EvaluateConstraints(model, layout)
	if err != nil {
		return nil, err
	}
	scores.Constraints = constraints

	return scores, nil
}

func handIndex(h Hand) int {
	if h == Right {
		return 1
	}
	return 0
}

// componentValue extracts the named scalar from a computed Scores record,
// used by computeTotal's weighted-sum loop (spec.md 4.4 step 12).
func componentValue(name string, s *Scores) float64 {
	switch name {
	case "effort":
		return s.Effort
	case "travel":
		return s.Travel
	case "imbalance":
		return s.Imbalance
	case "urolls":
		return hypotLike(s.URolls)
	case "wlsbs":
		return hypotLike(s.WLSBs)
	case "d_urolls":
		return hypotLike(s.DURolls)
	case "d_wlsbs":
		return hypotLike(s.DWLSBs)
	case "redirects":
		return hypotLike(s.Redirects)
	case "contorts":
		return hypotLike(s.Contorts)
	case "handruns":
		return hypotLike(s.HandRuns)
	default:
		return 0
	}
}

// ScoreNames lists every named score component the rank/stats subcommands
// can sort or report on: the weighted-total components (spec.md 4.4 step
// 12) plus the three aggregate fields that sit outside that weighting
// (grounded on the original kuehlmak CLI's KuehlmakScores::get_score_names,
// original_source/src/main.rs rank_command/stats_command).
func ScoreNames() []string {
	names := make([]string, 0, len(componentNames)+3)
	names = append(names, componentNames...)
	return append(names, "total", "constraints", "strokes")
}

// NamedScore returns the scalar value of one of ScoreNames's names from a
// computed Scores record, and whether the name was recognized.
func NamedScore(s *Scores, name string) (float64, bool) {
	switch name {
	case "total":
		return s.GrandTotal(), true
	case "constraints":
		return s.Constraints, true
	case "strokes":
		return float64(s.Strokes), true
	}
	for _, n := range componentNames {
		if n == name {
			return componentValue(name, s), true
		}
	}
	return 0, false
}

// computeTotal applies the piecewise-linear hinge-around-target formula to
// every configured component and sums the contributions (spec.md 4.4 step
// 12).
func computeTotal(params Params, s *Scores) float64 {
	var total float64
	for _, name := range componentNames {
		w, ok := params.Weights[name]
		if !ok {
			continue
		}
		sVal := normalizeComponent(params, name, componentValue(name, s))
		if !w.HasTarget || params.Factor <= 0 {
			total += w.Weight * sVal
			continue
		}
		phi := params.Factor
		if w.Weight < 0 {
			phi = 1 / phi
		}
		if sVal <= w.Target {
			total += (sVal / phi) * w.Weight
		} else {
			total += (sVal*phi + w.Target*(1/phi-phi)) * w.Weight
		}
	}
	return total
}
