package kuehlmak

import "sync"

// Scorer memoizes EvalLayout results keyed by the full layout value, so an
// annealing run that revisits (or nearly revisits, via a reverted swap) a
// layout doesn't re-walk the corpus. Grounded on the teacher's
// Scorer/ScorerStats (internal/keycraft/scorer.go), which caches analyser
// results behind a hit/miss counter for exactly the same reason: annealing
// proposes far more candidates than it keeps, and many candidates repeat.
type Scorer struct {
	model     *Model
	stats     TextStats
	precision float64
	extra     bool

	mu    sync.Mutex
	cache map[Layout]*Scores

	hits, misses uint64
}

// NewScorer builds a Scorer bound to one model/stats/precision/extra
// configuration. Eval and Stats are safe for concurrent use: the cache and
// its counters are guarded by a mutex, so one Scorer can be shared.
func NewScorer(model *Model, stats TextStats, precision float64, extra bool) *Scorer {
	return &Scorer{
		model:     model,
		stats:     stats,
		precision: precision,
		extra:     extra,
		cache:     make(map[Layout]*Scores),
	}
}

// Eval returns the cached Scores for layout if present, otherwise computes,
// caches, and returns them.
func (s *Scorer) Eval(layout *Layout) (*Scores, error) {
	s.mu.Lock()
	if cached, ok := s.cache[*layout]; ok {
		s.hits++
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	scores, err := EvalLayout(s.model, layout, s.stats, s.precision, s.extra)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[*layout] = scores
	s.misses++
	s.mu.Unlock()
	return scores, nil
}

// Stats returns the cache hit/miss counters and current cache size.
func (s *Scorer) Stats() (hits, misses uint64, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses, len(s.cache)
}
