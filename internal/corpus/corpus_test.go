package corpus

import (
	"path/filepath"
	"testing"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

func TestFinalizeRanksByDescendingFrequency(t *testing.T) {
	c := New("test")
	c.AddText("eeee ttt aa o")
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	count, tokenE, ok := c.GetSymbol('e')
	if !ok || count != 4 {
		t.Fatalf("GetSymbol('e') = %d, %v, want 4, true", count, ok)
	}
	_, tokenT, _ := c.GetSymbol('t')
	_, tokenA, _ := c.GetSymbol('a')
	_, tokenO, _ := c.GetSymbol('o')

	if !(tokenE < tokenT && tokenT < tokenA && tokenA < tokenO) {
		t.Fatalf("tokens not ranked by descending frequency: e=%d t=%d a=%d o=%d", tokenE, tokenT, tokenA, tokenO)
	}
}

func TestTokenToNgramRoundTrip(t *testing.T) {
	c := New("test")
	c.AddText("the quick brown fox jumps over the lazy dog")
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	c.IterBigrams(func(ngram kuehlmak.Ngram, count uint64, token uint32) bool {
		got := c.TokenToNgram(token)
		if got[0] != ngram[0] || got[1] != ngram[1] {
			t.Errorf("TokenToNgram(%d) = %v, want %v", token, got, ngram)
		}
		return true
	})

	c.IterTrigrams(func(ngram kuehlmak.Ngram, count uint64, token uint32) bool {
		got := c.TokenToNgram(token)
		if got != ngram {
			t.Errorf("TokenToNgram(%d) = %v, want %v", token, got, ngram)
		}
		return true
	})
}

func TestIterBigramsDescendingOrder(t *testing.T) {
	c := New("test")
	c.AddText("th th th th he he an")
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var prev uint64 = ^uint64(0)
	c.IterBigrams(func(_ kuehlmak.Ngram, count uint64, _ uint32) bool {
		if count > prev {
			t.Fatalf("IterBigrams not descending: %d after %d", count, prev)
		}
		prev = count
		return true
	})
}

func TestWhitespaceBreaksNgramContinuity(t *testing.T) {
	c := New("test")
	c.AddText("ab cd")
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	_, tokB, _ := c.GetSymbol('b')
	_, tokC, _ := c.GetSymbol('c')
	found := false
	c.IterBigrams(func(ngram kuehlmak.Ngram, _ uint64, _ uint32) bool {
		if ngram[0] == tokB && ngram[1] == tokC {
			found = true
			return false
		}
		return true
	})
	if found {
		t.Fatal("whitespace did not break bigram continuity: found bigram spanning the space")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c := New("orig")
	c.AddText("hello world hello there")
	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := c.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if err := loaded.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize original: %v", err)
	}

	if loaded.TotalBigrams() != c.TotalBigrams() {
		t.Errorf("TotalBigrams after round trip = %d, want %d", loaded.TotalBigrams(), c.TotalBigrams())
	}
	if loaded.TotalTrigrams() != c.TotalTrigrams() {
		t.Errorf("TotalTrigrams after round trip = %d, want %d", loaded.TotalTrigrams(), c.TotalTrigrams())
	}
	if loaded.TokenBase() != c.TokenBase() {
		t.Errorf("TokenBase after round trip = %d, want %d", loaded.TokenBase(), c.TokenBase())
	}
}

func TestFilterDropsBelowMinCount(t *testing.T) {
	c := New("test")
	c.AddText("aa aa aa bb")
	filtered := c.Filter(func(r rune) bool { return true }, 2)
	if err := filtered.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if filtered.TotalBigrams() == 0 {
		t.Fatal("expected at least the 'aa' bigram to survive filtering")
	}
	var sawBB bool
	filtered.IterBigrams(func(ngram kuehlmak.Ngram, count uint64, _ uint32) bool {
		if count < 2 {
			sawBB = true
		}
		return true
	})
	if sawBB {
		t.Fatal("Filter retained a bigram below minCount")
	}
}
