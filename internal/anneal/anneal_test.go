package anneal

import (
	"context"
	"testing"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

const qwertyText = `q w e r t y u i o p
a s d f g h j k l ;
z x c v b n m , . /`

// fakeStats is a minimal TextStats built from a fixed English-ish frequency
// table, enough to drive real EvalLayout calls in these tests without
// depending on internal/corpus (which imports this module's sibling
// package and would create an import cycle from a _test.go file here).
type fakeStats struct {
	symbolToken map[rune]uint32
	symbolCount map[rune]uint64
	bigrams     []kuehlmak.Ngram
	bigramCnt   []uint64
	trigrams    []kuehlmak.Ngram
	trigramCnt  []uint64
	totalBi     uint64
	totalTri    uint64
}

func newFakeStats() *fakeStats {
	s := &fakeStats{symbolToken: map[rune]uint32{}, symbolCount: map[rune]uint64{}}
	letters := "etaoinshrdlcumwfgypbvkjxqz "
	for i, r := range letters {
		s.symbolToken[r] = uint32(i)
		s.symbolCount[r] = uint64(len(letters) - i)
	}
	add2 := func(a, b rune, n uint64) {
		s.bigrams = append(s.bigrams, kuehlmak.Ngram{s.symbolToken[a], s.symbolToken[b], 0})
		s.bigramCnt = append(s.bigramCnt, n)
		s.totalBi += n
	}
	add3 := func(a, b, c rune, n uint64) {
		s.trigrams = append(s.trigrams, kuehlmak.Ngram{s.symbolToken[a], s.symbolToken[b], s.symbolToken[c]})
		s.trigramCnt = append(s.trigramCnt, n)
		s.totalTri += n
	}
	add2('t', 'h', 300)
	add2('h', 'e', 250)
	add2('i', 'n', 200)
	add2('e', 'r', 150)
	add3('t', 'h', 'e', 200)
	add3('a', 'n', 'd', 120)
	return s
}

func (s *fakeStats) TotalBigrams() uint64  { return s.totalBi }
func (s *fakeStats) TotalTrigrams() uint64 { return s.totalTri }
func (s *fakeStats) TokenBase() uint32     { return uint32(len(s.symbolToken)) }

func (s *fakeStats) GetSymbol(r rune) (uint64, uint32, bool) {
	tok, ok := s.symbolToken[r]
	return s.symbolCount[r], tok, ok
}

func (s *fakeStats) TokenToNgram(token uint32) kuehlmak.Ngram { return kuehlmak.Ngram{token, 0, 0} }

func (s *fakeStats) IterBigrams(yield func(kuehlmak.Ngram, uint64, uint32) bool) {
	for i, ng := range s.bigrams {
		if !yield(ng, s.bigramCnt[i], uint32(i)) {
			return
		}
	}
}

func (s *fakeStats) IterTrigrams(yield func(kuehlmak.Ngram, uint64, uint32) bool) {
	for i, ng := range s.trigrams {
		if !yield(ng, s.trigramCnt[i], uint32(i)) {
			return
		}
	}
}

func testModel(t *testing.T) *kuehlmak.Model {
	t.Helper()
	m, err := kuehlmak.NewModel(kuehlmak.NewDefaultParams(kuehlmak.Ortho))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestAnnealTerminatesAfterSteps(t *testing.T) {
	lay, err := kuehlmak.ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	m := testModel(t)
	a, err := New(m, newFakeStats(), lay, false, 5, 42)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	count := 0
	for {
		_, ok, err := a.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
		if count > 1000 {
			t.Fatal("Next did not terminate after the step budget")
		}
	}
	if count != 5 {
		t.Fatalf("consumed %d steps, want 5", count)
	}
}

func TestAnnealBestNeverWorseThanFinalCurrent(t *testing.T) {
	lay, err := kuehlmak.ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	m := testModel(t)
	a, err := New(m, newFakeStats(), lay, true, 30, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var last kuehlmak.Scores
	for {
		step, ok, err := a.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		last = *step.Scores
	}
	_, best := a.Best()
	if best.GrandTotal() > last.GrandTotal()+1e-9 {
		t.Fatalf("best GrandTotal %.6f is worse than final current %.6f", best.GrandTotal(), last.GrandTotal())
	}
}

func TestAcceptProbabilityBounds(t *testing.T) {
	if p := acceptProbability(-5, 1.0); p != 1 {
		t.Errorf("acceptProbability(negative delta) = %v, want 1 (always improves)", p)
	}
	if p := acceptProbability(5, 1.0); p <= 0 || p >= 1 {
		t.Errorf("acceptProbability(positive delta) = %v, want in (0,1)", p)
	}
	if p := acceptProbability(5, 1000); p >= 0.01 {
		t.Errorf("acceptProbability at high beta should be near zero, got %v", p)
	}
}

func TestRunPoolStreamsFinalPerWorker(t *testing.T) {
	lay, err := kuehlmak.ParseLayout(qwertyText)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	m := testModel(t)
	stats := newFakeStats()

	cfg := PoolConfig{Workers: 2, Steps: 3, Shuffle: false}
	progress, g := RunPool(context.Background(), m, stats, lay, cfg, 1, nil)

	finals := 0
	for p := range progress {
		if p.Final {
			finals++
			if p.Best == nil || p.BestScore == nil {
				t.Errorf("final progress message missing Best/BestScore for worker %d", p.WorkerID)
			}
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("RunPool worker error: %v", err)
	}
	if finals != cfg.Workers {
		t.Fatalf("got %d final messages, want %d (one per worker)", finals, cfg.Workers)
	}
}
