package kuehlmak

import "testing"

func testModel(t *testing.T, kt KeyboardType) *Model {
	t.Helper()
	m, err := NewModel(NewDefaultParams(kt))
	if err != nil {
		t.Fatalf("NewModel(%v): %v", kt, err)
	}
	return m
}

// Every (i,j) pair must classify to a defined BigramType; the table must be
// fully populated for all NumKeys^2 entries (spec.md section 8, "classifier
// coverage").
func TestBigramTypeTableCoverage(t *testing.T) {
	m := testModel(t, Ortho)
	for i := uint8(0); i < NumKeys; i++ {
		for j := uint8(0); j < NumKeys; j++ {
			bt := m.BigramTypes[i][j]
			if int(bt) >= numBigramTypes {
				t.Fatalf("BigramTypes[%d][%d] = %v out of range", i, j, bt)
			}
		}
	}
}

// Trigram closure: every classified trigram type must be reachable from some
// (i,j,k) triple over at least one board type (spec.md section 8, "trigram
// closure").
func TestTrigramTypeTableClosure(t *testing.T) {
	seen := make(map[TrigramType]bool)
	for _, kt := range []KeyboardType{Ortho, ANSI, Hex} {
		m := testModel(t, kt)
		for i := uint8(0); i < NumKeys; i++ {
			for j := uint8(0); j < NumKeys; j++ {
				for k := uint8(0); k < NumKeys; k++ {
					seen[m.TrigramTypes[i][j][k]] = true
				}
			}
		}
	}
	for tt := TrigramType(0); int(tt) < numTrigramTypes; tt++ {
		if !seen[tt] {
			t.Errorf("TrigramType %v (%s) never produced across Ortho/ANSI/Hex", tt, tt)
		}
	}
}

// classifyBigram(i,i) must always be SameKey for every non-thumb key,
// regardless of board; the thumb key always classifies as Alternate.
func TestSameKeyIsAlwaysSameKey(t *testing.T) {
	for _, kt := range []KeyboardType{Ortho, ColStag, Hex, HexStag, ANSI, Angle, ISO} {
		m := testModel(t, kt)
		for i := uint8(0); i < NumKeys-1; i++ {
			if got := m.BigramTypes[i][i]; got != SameKey {
				t.Errorf("%v: BigramTypes[%d][%d] = %v, want SameKey", kt, i, i, got)
			}
		}
	}
}

// Scissor-pair symmetry: if (f0,f1) is listed as a scissor pair so is
// (f1,f0) (spec.md section 8, "scissor symmetry").
func TestScissorFingerPairsSymmetric(t *testing.T) {
	for pair := range scissorFingerPairs {
		rev := [2]Finger{pair[1], pair[0]}
		if !scissorFingerPairs[rev] {
			t.Errorf("scissorFingerPairs has %v but not its reverse %v", pair, rev)
		}
	}
}

// A hand-crossing bigram is always Alternate, regardless of finger/stretch.
func TestCrossHandAlwaysAlternate(t *testing.T) {
	m := testModel(t, Ortho)
	for i := uint8(0); i < NumKeys-1; i++ {
		for j := uint8(0); j < NumKeys-1; j++ {
			if m.KeyProps[i].Hand == m.KeyProps[j].Hand {
				continue
			}
			if got := m.BigramTypes[i][j]; got != Alternate {
				t.Errorf("cross-hand (%d,%d) classified as %v, want Alternate", i, j, got)
			}
		}
	}
}
