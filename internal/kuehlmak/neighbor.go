package kuehlmak

import "math/rand/v2"

// maxPinnedRetries bounds the resampling loop Neighbor uses to avoid
// picking a pinned key as a swap operand; a layout with nearly every key
// pinned falls back to a true no-op move rather than spinning forever.
const maxPinnedRetries = 20

// Neighbor returns a mutated copy of layout for the annealer to evaluate
// (spec.md 4.6). With probability 8/9 it swaps two random key positions;
// with probability 1/9 it swaps two random fingers' worth of keys, which
// gives the walk occasional larger moves and keeps it ergodic over the
// full 30! permutation space. Keys listed in m.Pinned (spec.md 4.6,
// "Pin/free key selection") never participate in either move kind.
//
// Grounded on the teacher's BLS perturbation selection
// (internal/keycraft/bls.go, selectRandomSwap/applyColumnSwap) for the
// overall "pick a move kind, then pick its operands" shape, narrowed to
// this spec's fixed two move kinds and probabilities.
func (m *Model) Neighbor(rng *rand.Rand, layout *Layout) *Layout {
	out := layout.Clone()
	if rng.IntN(9) == 0 {
		swapFingers(rng, out, &m.Pinned)
	} else {
		swapKeys(rng, out, &m.Pinned)
	}
	return out
}

// swapKeys swaps two distinct, uniformly chosen key positions among the 30
// non-thumb keys, retrying until both operands are unpinned.
func swapKeys(rng *rand.Rand, l *Layout, pinned *[NumKeys]bool) {
	for attempt := 0; attempt < maxPinnedRetries; attempt++ {
		i := uint8(rng.IntN(NumKeys - 1))
		j := uint8(rng.IntN(NumKeys - 2))
		if j >= i {
			j++
		}
		if pinned[i] || pinned[j] {
			continue
		}
		l.Swap(i, j)
		return
	}
}

// swapFingers picks two distinct fingers (excluding Th) and swaps the keys
// they own position-for-position. When the two fingers own different
// numbers of keys (an index finger owns 6, every other finger 3), a random
// aligned window of the smaller finger's length is chosen from the larger
// finger's key list so every swap is between two concrete keys. If any key
// in the chosen window is pinned, the whole move is retried against a
// fresh pair of fingers/window rather than partially applied.
func swapFingers(rng *rand.Rand, l *Layout, pinned *[NumKeys]bool) {
	fingers := []Finger{Lp, Lr, Lm, Li, Ri, Rm, Rr, Rp}

	for attempt := 0; attempt < maxPinnedRetries; attempt++ {
		f0 := fingers[rng.IntN(len(fingers))]
		f1idx := rng.IntN(len(fingers) - 1)
		f1 := fingers[f1idx]
		if fingers[f1idx] == f0 {
			f1 = fingers[len(fingers)-1]
		}

		keys0 := keysForFingerDefault(f0)
		keys1 := keysForFingerDefault(f1)

		n := len(keys0)
		if len(keys1) < n {
			n = len(keys1)
		}
		if n == 0 {
			return
		}

		start0, start1 := 0, 0
		if len(keys0) > n {
			start0 = rng.IntN(len(keys0) - n + 1)
		}
		if len(keys1) > n {
			start1 = rng.IntN(len(keys1) - n + 1)
		}

		blocked := false
		for i := range n {
			if pinned[keys0[start0+i]] || pinned[keys1[start1+i]] {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		for i := range n {
			l.Swap(keys0[start0+i], keys1[start1+i])
		}
		return
	}
}

// keysForFingerDefault lists the row-positions (top/home/bottom of each of
// its columns: 3 keys, or 6 for an index finger) owned by a finger under
// the default (non-remapped) column assignment, used to
// pick an aligned swap window regardless of the active board type.
func keysForFingerDefault(f Finger) []uint8 {
	var keys []uint8
	for col, ff := range fingerForColDefault {
		if ff == f {
			for row := range uint8(3) {
				keys = append(keys, row*10+uint8(col))
			}
		}
	}
	return keys
}
