package kuehlmak

// BigramType classifies a same- or cross-hand bigram, per spec.md section 3.
// Order matches spec.md's enumeration and Scores.bigram_counts[9][2].
type BigramType uint8

const (
	Alternate BigramType = iota
	DRoll
	URoll
	SameKey
	LSB3
	LSB2
	LSB1
	Scissor
	SFB
	numBigramTypes = 9
)

var bigramTypeNames = [numBigramTypes]string{
	"Alternate", "DRoll", "URoll", "SameKey", "LSB3", "LSB2", "LSB1", "Scissor", "SFB",
}

func (t BigramType) String() string { return bigramTypeNames[t] }

// isBad reports whether a bigram type counts as one of the "bad" patterns
// consulted by the trigram Contort rule (spec.md 4.3): anything that is not
// a roll and not a hand alternation.
func (t BigramType) isBad() bool {
	switch t {
	case SameKey, LSB1, LSB2, LSB3, Scissor, SFB:
		return true
	default:
		return false
	}
}

// TrigramType classifies a same-hand-disjointed or same-hand trigram, per
// spec.md section 3. Order matches Scores.trigram_counts[14][2].
type TrigramType uint8

const (
	NoTrigram TrigramType = iota
	DSameKey
	ShdSameKey
	DSFB
	ShdSFB
	DDRoll
	DURoll
	DLSB3
	DLSB2
	DLSB1
	DScissor
	RRoll
	Redirect
	Contort
	numTrigramTypes = 14
)

var trigramTypeNames = [numTrigramTypes]string{
	"None", "dSameKey", "shdSameKey", "dSFB", "shdSFB", "dDRoll", "dURoll",
	"dLSB3", "dLSB2", "dLSB1", "dScissor", "RRoll", "Redirect", "Contort",
}

func (t TrigramType) String() string { return trigramTypeNames[t] }

// dVariant maps a same-hand BigramType to its disjointed ("d") trigram
// counterpart, used for A-B-A (hands differ in the middle) trigrams.
func dVariant(bt BigramType) TrigramType {
	switch bt {
	case SameKey:
		return DSameKey
	case SFB:
		return DSFB
	case DRoll:
		return DDRoll
	case URoll:
		return DURoll
	case LSB3:
		return DLSB3
	case LSB2:
		return DLSB2
	case LSB1:
		return DLSB1
	case Scissor:
		return DScissor
	default:
		return NoTrigram
	}
}

// fingerDistFromTh returns the ordinal distance of a finger from the thumb,
// used to resolve DRoll/URoll direction (spec.md 4.3: "direction: away from
// ring finger, or when involving index/thumb the one whose finger is
// further from Th wins").
func fingerDistFromTh(f Finger) int {
	d := int(f) - int(Th)
	if d < 0 {
		return -d
	}
	return d
}

// scissorFingerPairs lists the finger pairs that form an awkward same-hand
// transition when one lands a row above the other (spec.md 4.1's
// "scissor-pair list"), grounded on the teacher's initFScissors/
// initHScissors finger-pair tables (internal/keycraft/layout.go).
var scissorFingerPairs = map[[2]Finger]bool{
	{Lm, Lp}: true, {Lp, Lm}: true,
	{Lm, Lr}: true, {Lr, Lm}: true,
	{Lm, Li}: true, {Li, Lm}: true,
	{Lr, Lp}: true, {Lp, Lr}: true,
	{Lr, Li}: true, {Li, Lr}: true,
	{Rm, Ri}: true, {Ri, Rm}: true,
	{Rm, Rr}: true, {Rr, Rm}: true,
	{Rm, Rp}: true, {Rp, Rm}: true,
	{Rr, Rp}: true, {Rp, Rr}: true,
	{Rr, Ri}: true, {Ri, Rr}: true,
}

// isScissorPair reports whether two keys on the same hand, in rows 1 apart
// or 2 apart, form a listed scissor transition.
func isScissorPair(row0, row1 uint8, f0, f1 Finger) bool {
	rowDist := int(row0) - int(row1)
	if rowDist < 0 {
		rowDist = -rowDist
	}
	if rowDist == 0 {
		return false
	}
	return scissorFingerPairs[[2]Finger{f0, f1}]
}

// classifyBigram classifies the ordered key pair (i, j) per spec.md 4.3.
func classifyBigram(i, j uint8, props *[NumKeys]KeyProps) BigramType {
	pi, pj := props[i], props[j]
	if pi.Hand != pj.Hand || pi.Hand == AnyHand || pj.Hand == AnyHand {
		return Alternate
	}
	if i == j {
		return SameKey
	}
	if pi.Finger == pj.Finger {
		return SFB
	}

	fingerDist := int(pi.Finger) - int(pj.Finger)
	if fingerDist < 0 {
		fingerDist = -fingerDist
	}

	if (pi.Stretch || pj.Stretch) && i != ThumbIndex && j != ThumbIndex {
		scissor := j < uint8(NumKeys) && i < uint8(NumKeys) &&
			isScissorPair(i/10, j/10, pi.Finger, pj.Finger)
		promote := (pi.Stretch && pj.Stretch) || scissor
		switch {
		case promote || fingerDist == 1:
			return LSB1
		case fingerDist == 2:
			return LSB2
		default:
			return LSB3
		}
	}

	if i < ThumbIndex && j < ThumbIndex && isScissorPair(i/10, j/10, pi.Finger, pj.Finger) {
		return Scissor
	}

	// Direction: rolling away from the thumb, toward the weaker/pinky side
	// (distance-from-Th increasing) is DRoll; rolling toward index/thumb is
	// URoll.
	if fingerDistFromTh(pj.Finger) > fingerDistFromTh(pi.Finger) {
		return DRoll
	}
	return URoll
}

// NewBigramTypeTable builds the 31x31 bigram classifier table once per
// Model (spec.md 4.3).
func NewBigramTypeTable(props *[NumKeys]KeyProps) [NumKeys][NumKeys]BigramType {
	var table [NumKeys][NumKeys]BigramType
	for i := uint8(0); i < NumKeys; i++ {
		for j := uint8(0); j < NumKeys; j++ {
			table[i][j] = classifyBigram(i, j, props)
		}
	}
	return table
}

// NewTrigramTypeTable builds the 31x31x31 trigram classifier table once per
// Model (spec.md 4.3), using the precomputed bigram table to classify the
// outer and consecutive bigrams of each triple.
func NewTrigramTypeTable(props *[NumKeys]KeyProps, bigrams *[NumKeys][NumKeys]BigramType) *[NumKeys][NumKeys][NumKeys]TrigramType {
	table := new([NumKeys][NumKeys][NumKeys]TrigramType)

	for i := uint8(0); i < NumKeys; i++ {
		for j := uint8(0); j < NumKeys; j++ {
			for k := uint8(0); k < NumKeys; k++ {
				table[i][j][k] = classifyTrigram(i, j, k, props, bigrams)
			}
		}
	}
	return table
}

func classifyTrigram(i, j, k uint8, props *[NumKeys]KeyProps, bigrams *[NumKeys][NumKeys]BigramType) TrigramType {
	h0, h1, h2 := props[i].Hand, props[j].Hand, props[k].Hand

	// A-B-A: hands differ only in the middle key.
	if h0 == h2 && h1 != h0 && h0 != AnyHand {
		return dVariant(bigrams[i][k])
	}

	// Cross-hand configurations other than A-B-A never classify.
	if !(h0 == h1 && h1 == h2 && h0 != AnyHand) {
		return NoTrigram
	}

	f0, f1, f2 := props[i].Finger, props[j].Finger, props[k].Finger

	if i == k && f0 != f1 {
		return ShdSameKey
	}
	if f0 == f2 && f0 != f1 {
		return ShdSFB
	}

	bg01 := bigrams[i][j]
	bg12 := bigrams[j][k]

	if bg01.isBad() && bg12.isBad() {
		return Contort
	}

	if f0 != f2 {
		if bigrams[i][k] == Scissor {
			return Contort
		}
	}

	dir01 := int(f1) - int(f0)
	dir12 := int(f2) - int(f1)
	if (dir01 > 0) != (dir12 > 0) {
		return Redirect
	}

	if !bg01.isBad() && !bg12.isBad() && bg01 != Alternate && bg12 != Alternate {
		if (bg01 == DRoll && bg12 == DRoll) || (bg01 == URoll && bg12 == URoll) {
			return RRoll
		}
	}

	return NoTrigram
}
