// Package anneal implements the restartable, pull-driven simulated
// annealing loop that drives the layout search (spec.md 4.7). Anneal
// exposes the classic accept(min(1, exp(-delta*beta))) formula with a
// precision schedule that rises as temperature falls; a batch-mode
// alternative built on github.com/MaxHalford/eaopt's simulated-annealing
// model is also exposed for one-shot, non-interactive runs, grounded on
// the teacher's SplitLayout.Optimise (internal/keycraft/optimisation.go).
package anneal

import (
	"fmt"
	"math"
	stdrand "math/rand"
	"math/rand/v2"

	"github.com/MaxHalford/eaopt"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// Step is one evaluated point in the annealing trajectory, handed back to
// the pull-driven caller.
type Step struct {
	Iteration int
	Layout    *kuehlmak.Layout
	Scores    *kuehlmak.Scores
	Accepted  bool
	Best      bool
}

// Anneal is a restartable iterator over a simulated-annealing run: the
// caller decides when to stop consuming by simply not calling Next again
// (spec.md 4.7, "pull-driven").
type Anneal struct {
	model *kuehlmak.Model
	stats kuehlmak.TextStats
	rng   *rand.Rand

	steps     int
	iteration int

	current       *kuehlmak.Layout
	currentScores *kuehlmak.Scores

	best       *kuehlmak.Layout
	bestScores *kuehlmak.Scores
}

// New constructs an Anneal run. If shuffle is true the initial layout is
// randomized before the first evaluation (spec.md 4.7, "On construction").
// seed makes the run reproducible (spec.md 9, "RNG").
func New(model *kuehlmak.Model, stats kuehlmak.TextStats, initial *kuehlmak.Layout, shuffle bool, steps int, seed uint64) (*Anneal, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	layout := initial.Clone()
	if shuffle {
		shuffleLayout(rng, layout)
	}

	scores, err := kuehlmak.EvalLayout(model, layout, stats, 0.1, false)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation: %w", err)
	}

	return &Anneal{
		model:         model,
		stats:         stats,
		rng:           rng,
		steps:         steps,
		current:       layout,
		currentScores: scores,
		best:          layout.Clone(),
		bestScores:    scores,
	}, nil
}

// shuffleLayout performs a Fisher-Yates shuffle over the 30 non-thumb
// primary/secondary glyph pairs.
func shuffleLayout(rng *rand.Rand, l *kuehlmak.Layout) {
	for i := kuehlmak.NumKeys - 2; i > 0; i-- {
		j := rng.IntN(i + 1)
		l.Swap(uint8(i), uint8(j))
	}
}

// Next proposes one neighbor, evaluates it at the step's precision, and
// accepts or rejects it under the cooling schedule. It returns false once
// the run has consumed its step budget (spec.md 4.7, "Terminates after
// steps iterations").
func (a *Anneal) Next() (Step, bool, error) {
	if a.iteration >= a.steps {
		return Step{}, false, nil
	}

	t := float64(a.iteration) / float64(a.steps)
	precision := t // rises linearly from ~0 to 1.0 as the run progresses
	beta := betaSchedule(t)

	candidate := a.model.Neighbor(a.rng, a.current)
	candScores, err := kuehlmak.EvalLayout(a.model, candidate, a.stats, precision, false)
	if err != nil {
		return Step{}, false, err
	}

	delta := candScores.GrandTotal() - a.currentScores.GrandTotal()
	accept := delta <= 0 || a.rng.Float64() < acceptProbability(delta, beta)

	if accept {
		a.current = candidate
		a.currentScores = candScores
	}

	isBest := a.currentScores.GrandTotal() < a.bestScores.GrandTotal()
	if isBest {
		a.best = a.current.Clone()
		a.bestScores = a.currentScores
	}

	step := Step{
		Iteration: a.iteration,
		Layout:    a.current,
		Scores:    a.currentScores,
		Accepted:  accept,
		Best:      isBest,
	}
	a.iteration++
	return step, true, nil
}

// acceptProbability implements spec.md 4.7's classic simulated-annealing
// acceptance rule: min(1, exp(-delta*beta)).
func acceptProbability(delta, beta float64) float64 {
	p := math.Exp(-delta * beta)
	if p > 1 {
		return 1
	}
	return p
}

// betaSchedule returns the inverse temperature at progress fraction t in
// [0,1); beta rises as t approaches 1 so later moves are accepted only
// when they improve the score.
func betaSchedule(t float64) float64 {
	const betaMin, betaMax = 0.5, 40.0
	return betaMin + (betaMax-betaMin)*t
}

// Best returns the best-seen layout and its scores so far.
func (a *Anneal) Best() (*kuehlmak.Layout, *kuehlmak.Scores) {
	return a.best, a.bestScores
}

// ---- batch mode: github.com/MaxHalford/eaopt simulated annealing ----

// genome adapts a Layout/Model/TextStats triple to eaopt.Genome, grounded
// on the teacher's SplitLayout Evaluate/Mutate/Crossover/Clone
// (internal/keycraft/optimisation.go). scorer is shared (by pointer) across
// every genome in a population, so mutations that revisit a layout already
// seen by a sibling or ancestor genome skip the corpus walk (grounded on
// the teacher's Scorer cache, internal/keycraft/scorer.go).
type genome struct {
	layout *kuehlmak.Layout
	model  *kuehlmak.Model
	stats  kuehlmak.TextStats
	scorer *kuehlmak.Scorer
}

func (g *genome) Evaluate() (float64, error) {
	scores, err := g.scorer.Eval(g.layout)
	if err != nil {
		return 0, err
	}
	return scores.GrandTotal(), nil
}

func (g *genome) Mutate(rng *stdrand.Rand) {
	seed := uint64(rng.Int63())
	r := rand.New(rand.NewPCG(seed, seed))
	g.layout = g.model.Neighbor(r, g.layout)
}

func (g *genome) Crossover(_ eaopt.Genome, _ *stdrand.Rand) {}

func (g *genome) Clone() eaopt.Genome {
	return &genome{layout: g.layout.Clone(), model: g.model, stats: g.stats, scorer: g.scorer}
}

// AcceptFunc selects the simulated-annealing acceptance policy, mirroring
// the teacher's getAcceptFunc (internal/keycraft/optimisation.go) but
// defaulting to the classic min(1, exp(-delta*beta)) rule this spec calls
// for.
func AcceptFunc(betaMax float64) func(gen, maxGen uint, e0, e1 float64) float64 {
	return func(gen, maxGen uint, e0, e1 float64) float64 {
		t := float64(gen) / float64(maxGen)
		beta := betaMax * t
		delta := e1 - e0
		return acceptProbability(delta, beta)
	}
}

// BatchOptimize runs a fixed number of eaopt-driven simulated-annealing
// generations to completion and returns the best layout found. Use this
// for one-shot, non-interactive runs; use Anneal/Next for a run whose
// progress must be observed or interrupted step by step.
func BatchOptimize(model *kuehlmak.Model, stats kuehlmak.TextStats, initial *kuehlmak.Layout, generations uint, onImprove func(gen uint, fitness float64)) (*kuehlmak.Layout, error) {
	cfg := eaopt.NewDefaultGAConfig()
	cfg.NGenerations = generations
	cfg.Model = eaopt.ModSimulatedAnnealing{Accept: AcceptFunc(40.0)}

	best := eaoptMaxFloat()
	if onImprove != nil {
		cfg.Callback = func(ga *eaopt.GA) {
			fit := ga.HallOfFame[0].Fitness
			if fit >= best {
				return
			}
			best = fit
			onImprove(ga.Generations, fit)
		}
	}

	ga, err := cfg.NewGA()
	if err != nil {
		return nil, fmt.Errorf("configuring annealer: %w", err)
	}

	scorer := kuehlmak.NewScorer(model, stats, 0.5, false)
	newGenome := func(rng *stdrand.Rand) eaopt.Genome {
		return &genome{layout: initial.Clone(), model: model, stats: stats, scorer: scorer}
	}
	if err := ga.Minimize(newGenome); err != nil {
		return nil, fmt.Errorf("annealing: %w", err)
	}

	result := ga.HallOfFame[0].Genome.(*genome)
	return result.layout, nil
}

func eaoptMaxFloat() float64 {
	return math.MaxFloat64
}
