package kuehlmak

import "math"

// KeyProps holds the immutable, precomputed physical properties of a single
// key slot, as specified by spec.md section 3 (KeyProps). Once built by
// NewKeyPropsTable it is never mutated; Evaluator and the classifier tables
// only read from it.
type KeyProps struct {
	Hand    Hand
	Finger  Finger
	Stretch bool
	DAbs    float64     // Euclidean home-distance, x weighted 1.5x
	DRel    [NumKeys]float64 // distance to every other key; -1 where finger differs
	Cost    int         // key_cost[k] * finger weight
}

// xyForKey returns the (x, y) layout-unit coordinates of a key, with x
// already measured relative to that finger's home column and weighted
// 1.5x per spec.md 4.2.
func xyForKey(kt KeyboardType, idx uint8, fingerWeights map[Finger]float64) (x, y float64) {
	geom := geometryTables[kt]
	if idx == ThumbIndex {
		return 0, 0
	}
	row, col := idx/10, idx%10
	hand := handForCol(col)

	// home_column_x: the column assigned to this finger on the home row.
	homeCol := homeColumnFor(fingerForCol(kt, row, col))

	var offset float64
	if hand == Left {
		offset = geom.rowOffsets[row].left
	} else {
		offset = geom.rowOffsets[row].right
	}

	x = (float64(col) - float64(homeCol) + offset) * 1.5
	y = float64(row) - 1
	return x, y
}

// homeColumnFor returns the column index on the home row owned by a finger.
// An index finger owns two columns; its home column is the outer one (3 on
// the left, 6 on the right).
func homeColumnFor(f Finger) uint8 {
	if f.HandOf() == Right {
		for col := len(fingerForColDefault) - 1; col >= 0; col-- {
			if fingerForColDefault[col] == f {
				return uint8(col)
			}
		}
	}
	for col, ff := range fingerForColDefault {
		if ff == f {
			return uint8(col)
		}
	}
	return 0
}

// NewKeyPropsTable builds the per-key KeyProps for a keyboard type and a set
// of per-finger weights (low = light/easy, high = heavy/penalized), per
// spec.md 4.2.
func NewKeyPropsTable(kt KeyboardType, fingerWeights [numFingers]int) [NumKeys]KeyProps {
	var table [NumKeys]KeyProps
	geom := geometryTables[kt]
	stretch := stretchKeys(kt)

	fw := make(map[Finger]float64, numFingers)
	for f, w := range fingerWeights {
		fw[Finger(f)] = float64(w)
	}

	xs := make([]float64, NumKeys)
	ys := make([]float64, NumKeys)
	fingers := make([]Finger, NumKeys)
	hands := make([]Hand, NumKeys)

	for idx := uint8(0); idx < NumKeys; idx++ {
		if idx == ThumbIndex {
			fingers[idx] = Th
			hands[idx] = AnyHand
		} else {
			row, col := idx/10, idx%10
			fingers[idx] = fingerForCol(kt, row, col)
			hands[idx] = handForCol(col)
		}
		x, y := xyForKey(kt, idx, fw)
		xs[idx], ys[idx] = x, y
	}

	for idx := uint8(0); idx < NumKeys; idx++ {
		kp := KeyProps{
			Hand:    hands[idx],
			Finger:  fingers[idx],
			Stretch: stretch[idx],
		}
		kp.DAbs = math.Hypot(xs[idx], ys[idx])

		for j := uint8(0); j < NumKeys; j++ {
			if fingers[j] != fingers[idx] {
				kp.DRel[j] = -1
				continue
			}
			dx := xs[idx] - xs[j]
			dy := ys[idx] - ys[j]
			kp.DRel[j] = math.Hypot(dx, dy)
		}

		weight := fw[fingers[idx]]
		if weight == 0 {
			weight = 1
		}
		kp.Cost = int(float64(geom.keyCost[idx]) * weight)

		table[idx] = kp
	}

	return table
}

// DefaultFingerWeights are the per-finger load-penalty multipliers from
// spec.md 4.3 / 9 ("per-finger weights... pinky heaviest"), used unless a
// Params overrides them.
var DefaultFingerWeights = [numFingers]int{
	Lp: 6, Lr: 4, Lm: 2, Li: 2, Th: 1, Ri: 2, Rm: 2, Rr: 4, Rp: 6,
}
