package kuehlmak

import (
	"math/rand/v2"
	"testing"
)

// Neighbor must always return a permutation of the original glyph set,
// whichever move kind (key-swap or finger-swap) it picks (spec.md section 8,
// "neighbor preserves permutation").
func TestNeighborPreservesPermutation(t *testing.T) {
	m := testModel(t, Ortho)
	lay, err := ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		next := m.Neighbor(rng, lay)
		assertPermutation(t, lay, next)
		lay = next
	}
}

func assertPermutation(t *testing.T, before, after *Layout) {
	t.Helper()
	b := before.PrimaryGlyphs()
	a := after.PrimaryGlyphs()

	bSet := make(map[rune]int, len(b))
	aSet := make(map[rune]int, len(a))
	for _, r := range b {
		bSet[r]++
	}
	for _, r := range a {
		aSet[r]++
	}
	if len(bSet) != len(aSet) {
		t.Fatalf("neighbor changed glyph set size: %d vs %d", len(bSet), len(aSet))
	}
	for r, n := range bSet {
		if aSet[r] != n {
			t.Fatalf("neighbor is not a permutation: glyph %q count %d before, %d after", r, n, aSet[r])
		}
	}
}

func TestNeighborNeverMovesPinnedKeys(t *testing.T) {
	params := NewDefaultParams(Ortho)
	params.PinnedKeys = map[uint8]bool{0: true, 1: true, 2: true}
	m, err := NewModel(params)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	lay, err := ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	want := [3]rune{lay.Primary[0], lay.Primary[1], lay.Primary[2]}

	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		lay = m.Neighbor(rng, lay)
		got := [3]rune{lay.Primary[0], lay.Primary[1], lay.Primary[2]}
		if got != want {
			t.Fatalf("pinned keys moved: got %v, want %v", got, want)
		}
	}
}

func TestSwapFingersStaysWithinOwnedKeys(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 9))
	keys := keysForFingerDefault(Lr)
	if len(keys) != 3 {
		t.Fatalf("keysForFingerDefault(Lr) = %v, want 3 keys", keys)
	}

	lay, err := ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	var unpinned [NumKeys]bool
	for i := 0; i < 50; i++ {
		before := *lay
		swapFingers(rng, lay, &unpinned)
		moved := map[Finger]bool{}
		for k := uint8(0); k < NumKeys-1; k++ {
			if lay.Primary[k] != before.Primary[k] {
				moved[fingerForColDefault[k%10]] = true
			}
		}
		if len(moved) != 2 {
			t.Fatalf("swapFingers moved keys of fingers %v, want exactly two", moved)
		}
	}
}
