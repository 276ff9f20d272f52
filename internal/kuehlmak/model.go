package kuehlmak

import "fmt"

// Weights holds the scalar multiplier, and optional target/curvature pair,
// for one named score component (spec.md section 3, Params; section 4.4
// step 12). A Target of 0 with HasTarget false means "no target": the
// contribution is simply Weight*score.
type Weights struct {
	Weight    float64
	Target    float64
	HasTarget bool
}

// componentNames enumerates the score components eligible for a Weights
// entry and a total-score contribution (spec.md 4.4 step 12).
var componentNames = []string{
	"effort", "travel", "imbalance",
	"urolls", "wlsbs", "d_urolls", "d_wlsbs",
	"redirects", "contorts", "handruns",
}

// DefaultWeights returns the standard weight set, grounded on the teacher's
// DefaultMetrics (internal/keycraft/weights.go): effort and travel dominate,
// imbalance and the awkward-pair categories act as smaller penalties, and
// the positive roll categories ("urolls"/"d_urolls") are rewarded with a
// negative weight so that more of them lowers the total.
func DefaultWeights() map[string]Weights {
	return map[string]Weights{
		"effort":    {Weight: 1.0},
		"travel":    {Weight: 1.0},
		"imbalance": {Weight: 0.5},
		"urolls":    {Weight: -0.3},
		"wlsbs":     {Weight: 0.6},
		"d_urolls":  {Weight: -0.1},
		"d_wlsbs":   {Weight: 0.3},
		"redirects": {Weight: 0.8},
		"contorts":  {Weight: 1.2},
		"handruns":  {Weight: 0.05},
	}
}

// DefaultFactor is the global curvature factor applied to every targeted component
// (spec.md 4.4 step 12): controls how steeply the hinge penalizes scores on
// the far side of their target.
const DefaultFactor = 1.6

// ConstraintConfig configures the constraint evaluator (spec.md 4.5).
type ConstraintConfig struct {
	// ReferenceLayout and Threshold configure the reference-layout penalty.
	// ReferenceLayout is nil when unconfigured.
	ReferenceLayout *Layout
	Threshold       float64
	RefWeight       float64

	// TopKeys/MidKeys/BotKeys are the required glyph sets for each row's
	// keyset penalty; nil/empty means unconfigured (penalty 0).
	TopKeys, MidKeys, BotKeys map[rune]bool
	RowWeight                 float64

	// HomingKeys lists the glyphs that must sit on a homing position.
	HomingKeys []rune
	HomingWeight float64

	// ZXCV and NonAlpha toggle their respective penalties.
	ZXCV         bool
	ZXCVWeight   float64
	NonAlpha     bool
	NonAlphaWeight float64

	// ForcedKeys maps a glyph to the key index it must occupy.
	ForcedKeys map[rune]uint8
}

// Params is the full evaluator configuration (spec.md section 3, Params).
type Params struct {
	BoardType      KeyboardType
	SpaceThumbHand Hand
	FingerWeights  [numFingers]int
	Weights        map[string]Weights
	Factor         float64
	Constraints    ConstraintConfig

	// PinnedKeys lists key indices the neighbor generator must never move,
	// resolved up front from a glyph set against an initial layout (spec.md
	// section 4.6, "Pin/free key selection"). Nil/empty means every key is
	// free to move.
	PinnedKeys map[uint8]bool

	// Normalize enables robust score normalisation: each component with an
	// entry in ReferenceStats is rescaled to (value-Median)/IQR before the
	// hinge/target weighting is applied, so components on very different
	// natural scales (e.g. Effort vs. Redirects) contribute comparably to
	// Total regardless of the corpus used to tune Weights. Off by default.
	Normalize      bool
	ReferenceStats map[string]ComponentStats
}

// ComponentStats is one component's robust location/scale statistics,
// computed across a reference set of layouts by ComputeReferenceStats.
type ComponentStats struct {
	Median float64
	IQR    float64
}

// NewDefaultParams returns a Params using DefaultFingerWeights, default
// component weights, DefaultFactor, and no constraints configured.
func NewDefaultParams(boardType KeyboardType) Params {
	return Params{
		BoardType:      boardType,
		SpaceThumbHand: AnyHand,
		FingerWeights:  DefaultFingerWeights,
		Weights:        DefaultWeights(),
		Factor:         DefaultFactor,
	}
}

// Model is the immutable precomputed state shared across evaluations
// (spec.md section 3, KuehlmakModel): built once from Params, then only
// ever read.
type Model struct {
	Params Params

	KeyProps     [NumKeys]KeyProps
	BigramTypes  [NumKeys][NumKeys]BigramType
	TrigramTypes *[NumKeys][NumKeys][NumKeys]TrigramType

	// KeyCostRanking lists the 30 non-thumb key indices sorted by
	// ascending Cost.
	KeyCostRanking [NumKeys - 1]uint8

	// FingerKeys lists, for each finger, the key indices it owns, in
	// ascending index order; right-hand lists are not mirrored against the
	// left-hand ones.
	FingerKeys [numFingers][]uint8

	// Pinned mirrors Params.PinnedKeys as a dense array for fast lookup
	// from the neighbor generator's hot path.
	Pinned [NumKeys]bool
}

// NewModel builds a Model from Params. This is the only place the
// classifier tables and key-property table are constructed; the result
// must never be mutated afterward (spec.md 9, "Globally shared immutable
// state").
func NewModel(params Params) (*Model, error) {
	if params.Factor <= 0 {
		params.Factor = DefaultFactor
	}
	if _, ok := keyboardTypeNames[params.BoardType]; !ok {
		return nil, fmt.Errorf("invalid board type %v", params.BoardType)
	}

	m := &Model{Params: params}
	m.KeyProps = NewKeyPropsTable(params.BoardType, params.FingerWeights)
	m.BigramTypes = NewBigramTypeTable(&m.KeyProps)
	m.TrigramTypes = NewTrigramTypeTable(&m.KeyProps, &m.BigramTypes)

	ranking := make([]uint8, 0, NumKeys-1)
	for i := uint8(0); i < NumKeys-1; i++ {
		ranking = append(ranking, i)
	}
	sortByCost(ranking, &m.KeyProps)
	copy(m.KeyCostRanking[:], ranking)

	for f := range numFingers {
		var keys []uint8
		for i := uint8(0); i < NumKeys; i++ {
			if int(m.KeyProps[i].Finger) == f {
				keys = append(keys, i)
			}
		}
		m.FingerKeys[f] = keys
	}

	for idx := range m.Pinned {
		m.Pinned[idx] = params.PinnedKeys[uint8(idx)]
	}

	return m, nil
}

// sortByCost sorts key indices by ascending KeyProps.Cost (insertion sort;
// 30 elements, called once per Model construction).
func sortByCost(keys []uint8, props *[NumKeys]KeyProps) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && props[keys[j-1]].Cost > props[keys[j]].Cost; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

// IsSymmetrical reports whether the board type mirrors left/right halves
// (spec.md 4.1).
func (m *Model) IsSymmetrical() bool {
	return geometryTables[m.Params.BoardType].symmetric
}
