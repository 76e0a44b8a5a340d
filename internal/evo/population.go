package evo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bitgen/internal/genotype"
	"bitgen/internal/random"
)

var (
	ErrEmptyPopulation    = errors.New("population is empty")
	ErrDegenerateFitness  = errors.New("degenerate fitness distribution")
	ErrInvalidScore       = errors.New("fitness function returned a non-finite score")
	// ErrUndefinedDiversity is returned for populations too small for the
	// diversity divisor.
	ErrUndefinedDiversity = errors.New("diversity undefined for fewer than 3 individuals")
)

// Population is an ordered set of individuals sharing one layout. Rank based
// access goes through a sort permutation that is valid only after Evaluate
// or Sort; roulette selection additionally needs InitializePartialSums.
type Population struct {
	layout      *genotype.Layout
	individuals []*Individual
	order       []int
	sorted      bool
	partialSums []float64
	logger      *zap.Logger
}

func NewPopulation(layout *genotype.Layout, logger *zap.Logger) *Population {
	if layout == nil {
		panic("evo.NewPopulation: nil layout")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Population{layout: layout, logger: logger}
}

func (p *Population) Layout() *genotype.Layout {
	return p.layout
}

func (p *Population) Len() int {
	return len(p.individuals)
}

// Resize grows the population with independently randomized individuals or
// truncates it. Either way the sort order is invalidated.
func (p *Population) Resize(n int, src random.Source) {
	if n < 0 {
		panic(fmt.Sprintf("evo.Population.Resize: negative size %d", n))
	}
	for len(p.individuals) < n {
		ind := NewIndividual(p.layout)
		if src != nil {
			ind.Randomize(src)
		}
		p.individuals = append(p.individuals, ind)
	}
	p.individuals = p.individuals[:n]
	p.invalidate()
}

// At returns the individual in storage position i, ignoring rank.
func (p *Population) At(i int) *Individual {
	return p.individuals[i]
}

// Individual returns the individual at rank i; rank 0 has the lowest score.
func (p *Population) Individual(rank int) *Individual {
	p.mustBeSorted("Individual")
	return p.individuals[p.order[rank]]
}

// Sorted reports whether rank based access is currently valid.
func (p *Population) Sorted() bool {
	return p.sorted
}

func (p *Population) invalidate() {
	p.sorted = false
	p.partialSums = p.partialSums[:0]
}

func (p *Population) mustBeSorted(op string) {
	if !p.sorted {
		panic(fmt.Sprintf("evo.Population.%s: population not sorted", op))
	}
	if len(p.individuals) == 0 {
		panic(fmt.Sprintf("evo.Population.%s: %v", op, ErrEmptyPopulation))
	}
}

// Sort orders the permutation by ascending score. Ties keep storage order.
func (p *Population) Sort() {
	p.order = p.order[:0]
	for i := range p.individuals {
		p.order = append(p.order, i)
	}
	sort.SliceStable(p.order, func(a, b int) bool {
		return p.individuals[p.order[a]].Less(p.individuals[p.order[b]])
	})
	p.sorted = true
	p.partialSums = p.partialSums[:0]
}

// Evaluate scores every individual, sorts, and derives fitness. With
// workers > 1 the fitness calls run concurrently; each call only writes its
// own individual, so the result does not depend on scheduling.
func (p *Population) Evaluate(ctx context.Context, fn FitnessFunc, userData any, workers int) error {
	if len(p.individuals) == 0 {
		return ErrEmptyPopulation
	}
	p.invalidate()

	if workers <= 1 {
		for _, ind := range p.individuals {
			if err := ctx.Err(); err != nil {
				return err
			}
			ind.score = fn(ind, userData)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, ind := range p.individuals {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				ind.score = fn(ind, userData)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	for i, ind := range p.individuals {
		if math.IsNaN(ind.score) || math.IsInf(ind.score, 0) {
			return fmt.Errorf("%w: individual %d scored %v", ErrInvalidScore, i, ind.score)
		}
	}
	p.Sort()
	return p.normalize()
}

// normalize inverts scores so the best individual gets the largest share:
// fitness_i = (best + worst - score_i) / sum. Identical scores get a uniform
// share instead of dividing by a possibly zero sum.
func (p *Population) normalize() error {
	n := len(p.individuals)
	best := p.Individual(0).score
	worst := p.Individual(n - 1).score
	if best == worst {
		for _, ind := range p.individuals {
			ind.fitness = 1 / float64(n)
		}
		return nil
	}

	sum := 0.0
	for _, ind := range p.individuals {
		ind.fitness = best + worst - ind.score
		sum += ind.fitness
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return fmt.Errorf("%w: inverted score sum %v (best=%v worst=%v)", ErrDegenerateFitness, sum, best, worst)
	}
	for _, ind := range p.individuals {
		ind.fitness /= sum
	}
	return nil
}

// ScoreStats summarizes raw scores across the population.
type ScoreStats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Stats computes score statistics. StdDev is the sample standard deviation
// and is zero for fewer than two individuals.
func (p *Population) Stats() (ScoreStats, error) {
	n := len(p.individuals)
	if n == 0 {
		return ScoreStats{}, ErrEmptyPopulation
	}
	scores := make([]float64, n)
	for i, ind := range p.individuals {
		scores[i] = ind.score
	}
	out := ScoreStats{
		Min:  floats.Min(scores),
		Max:  floats.Max(scores),
		Mean: stat.Mean(scores, nil),
	}
	if n > 1 {
		out.StdDev = stat.StdDev(scores, nil)
	}
	return out, nil
}

// Diversity returns the summed pairwise Hamming distance divided by
// bits * ((n*(n-1))>>2). The divisor is a quarter of n*(n-1), not the pair
// count, so values can exceed 1; existing thresholds depend on this scaling.
// Below 3 individuals the divisor is zero and ErrUndefinedDiversity is
// returned.
func (p *Population) Diversity() (float64, error) {
	n := len(p.individuals)
	if n == 0 {
		return 0, ErrEmptyPopulation
	}
	divisor := float64(p.layout.BitsRequired()) * float64((n*(n-1))>>2)
	if divisor == 0 {
		return 0, ErrUndefinedDiversity
	}
	var distance uint64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d, err := p.individuals[i].HammingDistance(&p.individuals[j].Chromosome)
			if err != nil {
				return 0, err
			}
			distance += uint64(d)
		}
	}
	return float64(distance) / divisor, nil
}

// DistinctGenotypes counts individuals with different bit content.
func (p *Population) DistinctGenotypes() int {
	seen := make(map[uint64]struct{}, len(p.individuals))
	for _, ind := range p.individuals {
		seen[ind.Bits().Fingerprint()] = struct{}{}
	}
	return len(seen)
}
