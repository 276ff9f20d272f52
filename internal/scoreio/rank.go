package scoreio

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// RankEntry pairs a DB layout with its full-precision evaluation and the
// cumulative rank Rank computed against a set of score criteria.
type RankEntry struct {
	DBEntry
	Scores *kuehlmak.Scores

	Rank           int
	ComponentRanks map[string]int
}

// scoreValue resolves one criterion name (stripped of its optional '+'
// prefix) against an entry: either the synthetic "popularity" field, or a
// kuehlmak.NamedScore lookup.
func scoreValue(r *RankEntry, rawName string) (float64, bool) {
	if rawName == "popularity" {
		return float64(r.Popularity), true
	}
	return kuehlmak.NamedScore(r.Scores, rawName)
}

// Rank evaluates every entry against model/stats at full precision and
// computes a cumulative multi-criteria rank across names: comma-separated
// score names (or rather, names passed pre-split), each optionally
// '+'-prefixed to sort descending (best-is-highest) instead of the default
// ascending (best-is-lowest).
//
// Entries tied on a criterion share that criterion's rank; the next
// distinct value's rank jumps by the summed popularity of the tied group,
// not merely their count, so a handful of rarely-rediscovered outliers
// can't outrank a single frequently-rediscovered layout. Grounded on the
// original kuehlmak CLI's rank_command (original_source/src/main.rs).
func Rank(model *kuehlmak.Model, stats kuehlmak.TextStats, entries []DBEntry, names []string) ([]RankEntry, error) {
	ranked := make([]RankEntry, len(entries))
	for i, e := range entries {
		scores, err := kuehlmak.EvalLayout(model, e.Layout, stats, 1.0, false)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", e.Path, err)
		}
		ranked[i] = RankEntry{DBEntry: e, Scores: scores, ComponentRanks: map[string]int{}}
	}
	if len(ranked) == 0 {
		return ranked, nil
	}

	for _, name := range names {
		raw := strings.TrimPrefix(name, "+")
		if _, ok := scoreValue(&ranked[0], raw); !ok {
			return nil, fmt.Errorf("unknown score name %q (valid names: %s, popularity)", raw, strings.Join(kuehlmak.ScoreNames(), ", "))
		}

		sorted := make([]*RankEntry, len(ranked))
		for i := range ranked {
			sorted[i] = &ranked[i]
		}
		sort.SliceStable(sorted, func(i, j int) bool {
			vi, _ := scoreValue(sorted[i], raw)
			vj, _ := scoreValue(sorted[j], raw)
			return vi < vj
		})
		if strings.HasPrefix(name, "+") {
			for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}

		r := 0
		inc := sorted[0].Popularity
		prev, _ := scoreValue(sorted[0], raw)
		for _, entry := range sorted[1:] {
			v, _ := scoreValue(entry, raw)
			if prev != v {
				r += inc
				inc = 0
				prev = v
			}
			inc += entry.Popularity
			entry.ComponentRanks[name] = r
			entry.Rank += r
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })
	return ranked, nil
}

// estimatePopulationSize implements the original kuehlmak CLI's
// birthday-problem-style population estimator (original_source/src/
// main.rs estimate_population_size): given u unique outcomes observed
// across k draws with replacement, binary-searches for the population
// size n whose expected number of unique draws equals u.
func estimatePopulationSize(u, k int) int {
	if u >= k {
		return math.MaxInt
	}
	unique := func(n float64, k int) float64 {
		return n * (1 - math.Pow((n-1)/n, float64(k)))
	}

	n, m := u, u
	for unique(float64(m), k) < float64(u) {
		if m == math.MaxInt {
			return m
		}
		if m >= math.MaxInt/2 {
			m = math.MaxInt
		} else {
			m *= 2
		}
	}
	for n+1 < m {
		mid := (n + m) / 2
		if unique(float64(mid), k) < float64(u) {
			n = mid
		} else {
			m = mid
		}
	}
	return n
}

// PopulationBucket is one of the three popularity bands Stats splits a DB
// into: the most-popular quarter, the middle half, and the long unpopular
// tail.
type PopulationBucket struct {
	Popularity int
	Unique     int
	Estimate   int
}

// EstimatePopulation splits entries (already evaluated, any order) into
// the top-popularity quarter, middle half, and bottom-popularity quarter
// by cumulative index position, and estimates each band's total
// population size. The annealer heavily favors some solutions over
// others, so a single population estimate across the whole DB would be
// meaningless; splitting by popularity band approximates three
// differently-likely sub-populations instead (original_source/src/
// main.rs stats_command).
func EstimatePopulation(ranked []RankEntry) [3]PopulationBucket {
	byPopularity := append([]RankEntry(nil), ranked...)
	sort.SliceStable(byPopularity, func(i, j int) bool {
		return byPopularity[i].Popularity < byPopularity[j].Popularity
	})

	var buckets [3]PopulationBucket
	n := len(byPopularity)
	for i, e := range byPopularity {
		q := (i*2 + n/2) / n
		buckets[q].Popularity += e.Popularity
		buckets[q].Unique++
	}
	for i := range buckets {
		k := buckets[i].Popularity
		if buckets[i].Unique >= k {
			k = buckets[i].Unique + 1
		}
		buckets[i].Estimate = estimatePopulationSize(buckets[i].Unique, k)
	}
	return buckets
}

// ScoreQuartiles is the popularity-weighted five-number summary (plus the
// single most-popular layout's value) Stats reports for one score name.
type ScoreQuartiles struct {
	Name             string
	MostPopularValue float64
	MostPopularCount int
	MinCount         int
	Min, Lower, Median, Upper, Max float64
}

// IQR returns Upper-Lower.
func (q ScoreQuartiles) IQR() float64 { return math.Abs(q.Upper - q.Lower) }

// Range returns Max-Min.
func (q ScoreQuartiles) Range() float64 { return math.Abs(q.Max - q.Min) }

// QuartilesFor computes the popularity-weighted quartiles of one score
// name across ranked: entries are walked in sorted order by that score,
// accumulating popularity (not mere count) to locate the 0/25/50/75/100
// percentile marks of total popularity, matching the original kuehlmak
// CLI's stats_command.
func QuartilesFor(ranked []RankEntry, name string) (ScoreQuartiles, error) {
	raw := strings.TrimPrefix(name, "+")
	if len(ranked) == 0 {
		return ScoreQuartiles{}, fmt.Errorf("no layouts to compute quartiles for")
	}
	if _, ok := scoreValue(&ranked[0], raw); !ok {
		return ScoreQuartiles{}, fmt.Errorf("unknown score name %q (valid names: %s, popularity)", raw, strings.Join(kuehlmak.ScoreNames(), ", "))
	}

	sorted := make([]*RankEntry, len(ranked))
	for i := range ranked {
		sorted[i] = &ranked[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, _ := scoreValue(sorted[i], raw)
		vj, _ := scoreValue(sorted[j], raw)
		return vi < vj
	})
	if strings.HasPrefix(name, "+") {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}

	sampleSize := 0
	for _, e := range sorted {
		sampleSize += e.Popularity
	}
	if sampleSize == 0 {
		return ScoreQuartiles{}, fmt.Errorf("total popularity is zero")
	}

	var quartiles [5]float64
	firstVal, _ := scoreValue(sorted[0], raw)
	quartiles[0] = firstVal
	minCount := sorted[0].Popularity

	c := 0
	var maxPop int
	var maxPopScore float64
	for _, e := range sorted {
		v, _ := scoreValue(e, raw)
		p := e.Popularity
		q0 := c * 4 / sampleSize
		c += p
		q1 := c * 4 / sampleSize
		for q := q0; q < q1 && q+1 < 5; q++ {
			quartiles[q+1] = v
		}
		if p > maxPop {
			maxPop = p
			maxPopScore = v
		}
	}

	return ScoreQuartiles{
		Name:             name,
		MostPopularValue: maxPopScore,
		MostPopularCount: maxPop,
		MinCount:         minCount,
		Min:              quartiles[0],
		Lower:            quartiles[1],
		Median:           quartiles[2],
		Upper:            quartiles[3],
		Max:              quartiles[4],
	}, nil
}
