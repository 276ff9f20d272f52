package kuehlmak

import "testing"

// fakeStats is a minimal, hand-rolled TextStats for evaluator tests: symbols
// are interned in insertion order, and IterBigrams/IterTrigrams replay
// exactly the slices given to it (already assumed sorted by the caller).
type fakeStats struct {
	symbolToken map[rune]uint32
	symbolCount map[rune]uint64
	bigrams     []fakeNgram
	trigrams    []fakeNgram
	totalBi     uint64
	totalTri    uint64
}

type fakeNgram struct {
	tokens Ngram
	count  uint64
}

func newFakeStats() *fakeStats {
	return &fakeStats{
		symbolToken: map[rune]uint32{},
		symbolCount: map[rune]uint64{},
	}
}

func (s *fakeStats) addUnigram(r rune, count uint64) {
	if _, ok := s.symbolToken[r]; !ok {
		s.symbolToken[r] = uint32(len(s.symbolToken))
	}
	s.symbolCount[r] += count
}

func (s *fakeStats) addBigram(a, b rune, count uint64) {
	s.addUnigram(a, 0)
	s.addUnigram(b, 0)
	s.bigrams = append(s.bigrams, fakeNgram{Ngram{s.symbolToken[a], s.symbolToken[b], 0}, count})
	s.totalBi += count
}

func (s *fakeStats) addTrigram(a, b, c rune, count uint64) {
	s.addUnigram(a, 0)
	s.addUnigram(b, 0)
	s.addUnigram(c, 0)
	s.trigrams = append(s.trigrams, fakeNgram{Ngram{s.symbolToken[a], s.symbolToken[b], s.symbolToken[c]}, count})
	s.totalTri += count
}

func (s *fakeStats) TotalBigrams() uint64  { return s.totalBi }
func (s *fakeStats) TotalTrigrams() uint64 { return s.totalTri }
func (s *fakeStats) TokenBase() uint32     { return uint32(len(s.symbolToken)) }

func (s *fakeStats) GetSymbol(r rune) (uint64, uint32, bool) {
	tok, ok := s.symbolToken[r]
	return s.symbolCount[r], tok, ok
}

func (s *fakeStats) TokenToNgram(token uint32) Ngram { return Ngram{token, 0, 0} }

func (s *fakeStats) IterBigrams(yield func(Ngram, uint64, uint32) bool) {
	for i, b := range s.bigrams {
		if !yield(b.tokens, b.count, uint32(i)) {
			return
		}
	}
}

func (s *fakeStats) IterTrigrams(yield func(Ngram, uint64, uint32) bool) {
	for i, tr := range s.trigrams {
		if !yield(tr.tokens, tr.count, uint32(i)) {
			return
		}
	}
}

func sampleStats() *fakeStats {
	s := newFakeStats()
	s.addUnigram(' ', 500)
	freqs := []struct {
		r rune
		n uint64
	}{
		{'e', 1000}, {'t', 900}, {'a', 800}, {'o', 700}, {'i', 600},
		{'n', 500}, {'s', 400}, {'h', 300}, {'r', 200}, {'d', 100},
	}
	for _, f := range freqs {
		s.addUnigram(f.r, f.n)
	}
	s.addBigram('t', 'h', 300)
	s.addBigram('h', 'e', 250)
	s.addBigram('i', 'n', 200)
	s.addBigram('e', 'r', 150)
	s.addBigram('a', 'n', 100)
	s.addTrigram('t', 'h', 'e', 200)
	s.addTrigram('i', 'n', 'g', 0) // zero count: must not appear uncounted
	s.addTrigram('a', 'n', 'd', 120)
	return s
}

func TestEvalLayoutDeterministic(t *testing.T) {
	lay, err := ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	m := testModel(t, Ortho)
	stats := sampleStats()

	s1, err := EvalLayout(m, lay, stats, 1.0, false)
	if err != nil {
		t.Fatalf("EvalLayout: %v", err)
	}
	s2, err := EvalLayout(m, lay, stats, 1.0, false)
	if err != nil {
		t.Fatalf("EvalLayout: %v", err)
	}
	if s1.GrandTotal() != s2.GrandTotal() {
		t.Fatalf("non-deterministic: %.6f != %.6f", s1.GrandTotal(), s2.GrandTotal())
	}
	if s1.Effort != s2.Effort || s1.Travel != s2.Travel {
		t.Fatalf("non-deterministic component values")
	}
}

func TestEvalLayoutRejectsOutOfRangePrecision(t *testing.T) {
	lay, _ := ParseLayout(qwertyText)
	m := testModel(t, Ortho)
	stats := sampleStats()
	if _, err := EvalLayout(m, lay, stats, -0.1, false); err == nil {
		t.Fatal("expected error for precision < 0")
	}
	if _, err := EvalLayout(m, lay, stats, 1.1, false); err == nil {
		t.Fatal("expected error for precision > 1")
	}
}

// Precision bounds: at precision=0 the walk stops after the first bigram
// and trigram ("th", "the"), neither of which needs a travel correction on
// QWERTY, so travel equals the uncorrected value; the precision=1.0 run is
// only checked to evaluate without error (spec.md section 8, "precision
// monotonicity").
func TestFingerTravelPrecisionBounds(t *testing.T) {
	lay, _ := ParseLayout(qwertyText)
	m := testModel(t, Ortho)
	stats := sampleStats()

	zero, err := EvalLayout(m, lay, stats, 0.0, false)
	if err != nil {
		t.Fatalf("EvalLayout(0): %v", err)
	}
	full, err := EvalLayout(m, lay, stats, 1.0, false)
	if err != nil {
		t.Fatalf("EvalLayout(1): %v", err)
	}

	var uncorrected [numFingers]float64
	for k := uint8(0); k < NumKeys; k++ {
		f := m.KeyProps[k].Finger
		uncorrected[f] += float64(zero.Heatmap[k]) * m.KeyProps[k].DAbs
	}
	for f := range numFingers {
		if zero.FingerTravel[f] != uncorrected[f] {
			t.Errorf("finger %d: precision=0 travel %.6f != uncorrected %.6f", f, zero.FingerTravel[f], uncorrected[f])
		}
	}
	_ = full
}

// Mirror symmetry: a layout and its left/right-swapped mirror must produce
// equal Effort/Travel/Imbalance on a symmetric board, since the Ortho
// geometry table mirrors exactly (spec.md section 8, "mirror symmetry").
func TestMirrorSymmetry(t *testing.T) {
	lay, _ := ParseLayout(qwertyText)
	mirror := mirrorLayout(lay)

	m := testModel(t, Ortho)
	stats := sampleStats()

	s1, err := EvalLayout(m, lay, stats, 1.0, false)
	if err != nil {
		t.Fatalf("EvalLayout: %v", err)
	}
	s2, err := EvalLayout(m, mirror, stats, 1.0, false)
	if err != nil {
		t.Fatalf("EvalLayout(mirror): %v", err)
	}

	const eps = 1e-9
	if abs(s1.Effort-s2.Effort) > eps {
		t.Errorf("effort not mirror-symmetric: %.9f vs %.9f", s1.Effort, s2.Effort)
	}
	if abs(s1.Imbalance-s2.Imbalance) > eps {
		t.Errorf("imbalance not mirror-symmetric: %.9f vs %.9f", s1.Imbalance, s2.Imbalance)
	}
	if abs(s1.Travel-s2.Travel) > eps {
		t.Errorf("travel not mirror-symmetric: %.9f vs %.9f", s1.Travel, s2.Travel)
	}
}

// mirrorLayout swaps column c with column 9-c in every row, producing the
// left/right mirror image of a layout on the symmetric 3x10 grid.
func mirrorLayout(l *Layout) *Layout {
	out := l.Clone()
	for row := range uint8(3) {
		for col := uint8(0); col < 5; col++ {
			i := row*10 + col
			j := row*10 + (9 - col)
			out.Swap(i, j)
		}
	}
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Constraint idempotence: with no constraints configured, EvaluateConstraints
// is always exactly 0 (spec.md section 8, "constraint idempotence").
func TestConstraintIdempotenceWhenUnconfigured(t *testing.T) {
	lay, _ := ParseLayout(qwertyText)
	m := testModel(t, Ortho)
	got, err := EvaluateConstraints(m, lay)
	if err != nil {
		t.Fatalf("EvaluateConstraints: %v", err)
	}
	if got != 0 {
		t.Fatalf("EvaluateConstraints with no constraints configured = %v, want 0", got)
	}
}
