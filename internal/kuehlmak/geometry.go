// Package kuehlmak implements the Kuehlmak-style ergonomic model for a fixed
// 3x10 alphanumeric keyboard block plus a thumb/space key: key geometry,
// finger/hand assignment, bigram/trigram classification, the scoring
// Evaluator, the constraint evaluator, and the neighbor generator used by
// the annealing optimiser in internal/anneal.
//
// Key indices run row-major over the 3x10 block (0..29); index 30 is the
// thumb/space key. This mirrors the teacher's 42-slot addressing scheme
// (internal/keycraft/layout.go), narrowed to the fixed grid this spec
// targets instead of a split ergonomic board.
package kuehlmak

import (
	"fmt"
	"strings"
)

// NumKeys is the number of addressable key slots: 3 rows of 10 plus the
// thumb/space key at index ThumbIndex.
const NumKeys = 31

// ThumbIndex is the reserved index for the thumb/space key.
const ThumbIndex = 30

// KeyboardType selects the physical geometry used to derive per-key
// distances, costs, and finger assignments.
type KeyboardType uint8

const (
	Ortho KeyboardType = iota
	ColStag
	Hex
	HexStag
	ANSI
	Angle
	ISO
)

var keyboardTypeNames = map[KeyboardType]string{
	Ortho:   "ortho",
	ColStag: "colstag",
	Hex:     "hex",
	HexStag: "hexstag",
	ANSI:    "ansi",
	Angle:   "angle",
	ISO:     "iso",
}

func (kt KeyboardType) String() string {
	if s, ok := keyboardTypeNames[kt]; ok {
		return s
	}
	return "unknown"
}

// ParseKeyboardType parses a keyboard type name (case-insensitive).
func ParseKeyboardType(s string) (KeyboardType, error) {
	for kt, name := range keyboardTypeNames {
		if strings.EqualFold(name, s) {
			return kt, nil
		}
	}
	return 0, fmt.Errorf("invalid keyboard type %q", s)
}

// Hand identifies which hand owns a key.
type Hand uint8

const (
	Left Hand = iota
	Right
	AnyHand
)

// Finger is the ordered finger enumeration. Order is semantically
// meaningful: direction of motion across the keyboard is determined by
// comparing finger ordinals (spec.md section 3, Finger).
type Finger uint8

const (
	Lp Finger = iota
	Lr
	Lm
	Li
	Th
	Ri
	Rm
	Rr
	Rp
	numFingers = 9
)

var fingerNames = [numFingers]string{"Lp", "Lr", "Lm", "Li", "Th", "Ri", "Rm", "Rr", "Rp"}

func (f Finger) String() string {
	if int(f) < len(fingerNames) {
		return fingerNames[f]
	}
	return "?"
}

// HandOf returns the hand that owns a finger. Th (thumb) is AnyHand since
// the thumb/space key is shared.
func (f Finger) HandOf() Hand {
	switch {
	case f < Th:
		return Left
	case f > Th:
		return Right
	default:
		return AnyHand
	}
}

// rowOffsets[row] gives the horizontal shift, in key-widths, applied to the
// left and right halves of that row. Row index 3 is the thumb row.
type rowOffset struct {
	left, right float64
}

// geometryTable bundles the static per-KeyboardType tables described in
// spec.md section 4.1.
type geometryTable struct {
	rowOffsets [4]rowOffset
	keyCost    [NumKeys]int
	symmetric  bool // true if left/right halves mirror (spec.md 4.1)
}

// baseKeyCostRows is the geometric-position cost shared by most board types:
// home row is cheapest, top/bottom rows cost more, outer columns (pinky)
// cost more than inner ones, and the thumb key is cheap.
var baseKeyCostRows = [3][10]int{
	{6, 4, 3, 3, 5, 5, 3, 3, 4, 6}, // top row
	{3, 2, 1, 1, 3, 3, 1, 1, 2, 3}, // home row
	{7, 5, 4, 4, 6, 6, 4, 4, 5, 7}, // bottom row
}

func buildKeyCost(stretchExtra int, stretchCols map[int]bool) [NumKeys]int {
	var cost [NumKeys]int
	for row := range 3 {
		for col := range 10 {
			idx := row*10 + col
			c := baseKeyCostRows[row][col]
			if stretchCols[col] {
				c += stretchExtra
			}
			cost[idx] = c
		}
	}
	cost[ThumbIndex] = 1
	return cost
}

// defaultStretchCols marks the inner index-finger columns (4 left, 5 right)
// as stretch-prone: they are the lateral stretch away from the index
// fingers' "home" columns 3 and 6, which are not marked.
var defaultStretchCols = map[int]bool{4: true, 5: true}

var geometryTables = map[KeyboardType]geometryTable{
	Ortho: {
		rowOffsets: [4]rowOffset{{0, 0}, {0, 0}, {0, 0}, {0, 0}},
		keyCost:    buildKeyCost(1, defaultStretchCols),
		symmetric:  true,
	},
	ColStag: {
		rowOffsets: [4]rowOffset{{0.25, -0.25}, {0, 0}, {-0.25, 0.25}, {0, 0}},
		keyCost:    buildKeyCost(1, defaultStretchCols),
		symmetric:  true,
	},
	Hex: {
		rowOffsets: [4]rowOffset{{0.5, -0.5}, {0, 0}, {0, 0}, {0, 0}},
		keyCost:    buildKeyCost(2, defaultStretchCols),
		symmetric:  true,
	},
	HexStag: {
		rowOffsets: [4]rowOffset{{0.5, -0.5}, {0, 0}, {-0.25, 0.25}, {0, 0}},
		keyCost:    buildKeyCost(2, defaultStretchCols),
		symmetric:  true,
	},
	ANSI: {
		rowOffsets: [4]rowOffset{{0.25, -0.25}, {0, 0}, {-0.5, 0.25}, {0, 0}},
		keyCost:    buildKeyCost(1, defaultStretchCols),
		symmetric:  false,
	},
	Angle: {
		rowOffsets: [4]rowOffset{{0.25, -0.25}, {0, 0}, {-0.5, 0.25}, {0, 0}},
		keyCost:    buildKeyCost(1, defaultStretchCols),
		symmetric:  false,
	},
	ISO: {
		rowOffsets: [4]rowOffset{{0.25, -0.25}, {0, 0}, {-0.5, 0.5}, {0, 0}},
		keyCost:    buildKeyCost(1, defaultStretchCols),
		symmetric:  false,
	},
}

// fingerForColDefault is the standard 3x10 column-to-finger map shared by
// the home row of every keyboard type, and by every row of Ortho/ColStag.
var fingerForColDefault = [10]Finger{Lp, Lr, Lm, Li, Li, Ri, Ri, Rm, Rr, Rp}

// fingerForColHexRow0 remaps the top row for Hex/HexStag boards: the hex
// stagger pulls the top row half a key inward, so the outermost pinky
// column becomes a ring-finger stretch and the next column takes over the
// pinky's home slot. Mirrored across both hands to preserve the type's
// overall left/right symmetry (spec.md 4.1).
var fingerForColHexRow0 = [10]Finger{Lr, Lp, Lm, Li, Li, Ri, Ri, Rm, Rp, Rr}

// fingerForColAngleRow2Left remaps only the LEFT hand's bottom row for
// Angle/ANSI/ISO boards, mirroring the teacher's angleModKeyToFinger table
// (internal/keycraft/layout.go) which leaves the right half of that row
// unchanged -- this is exactly the row-2 asymmetry spec.md 4.1 calls out
// for these three types.
var fingerForColAngleRow2Left = [5]Finger{Lp, Lm, Li, Li, Li}

// stretchKeys returns the set of key indices classified as stretch keys for
// a given keyboard type: columns 4/5 (inner lateral stretch) on every row,
// plus any key whose finger assignment differs from the default map (a
// remapped key is, by construction, reached at an angle).
func stretchKeys(kt KeyboardType) map[uint8]bool {
	out := make(map[uint8]bool, 8)
	for row := range uint8(3) {
		for _, col := range []uint8{4, 5} {
			out[row*10+col] = true
		}
	}
	for idx := uint8(0); idx < 30; idx++ {
		row, col := idx/10, idx%10
		if fingerForCol(kt, row, col) != fingerForColDefault[col] {
			out[idx] = true
		}
	}
	return out
}

// fingerForCol resolves the finger assigned to (row, col) for a keyboard
// type, applying the Hex row-0 and Angle-family row-2 remaps described in
// spec.md 4.1.
func fingerForCol(kt KeyboardType, row, col uint8) Finger {
	if row == 0 && (kt == Hex || kt == HexStag) {
		return fingerForColHexRow0[col]
	}
	if row == 2 && (kt == Angle || kt == ANSI || kt == ISO) && col < 5 {
		return fingerForColAngleRow2Left[col]
	}
	return fingerForColDefault[col]
}

// handForCol returns the hand owning a column: 0-4 left, 5-9 right.
func handForCol(col uint8) Hand {
	if col < 5 {
		return Left
	}
	return Right
}
