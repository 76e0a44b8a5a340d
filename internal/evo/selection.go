package evo

import (
	"fmt"
	"sort"

	"bitgen/internal/random"
)

// RankSelect returns the best individual.
func (p *Population) RankSelect() *Individual {
	return p.Individual(0)
}

// UniformSelect returns an individual chosen uniformly at random.
func (p *Population) UniformSelect(src random.Source) *Individual {
	p.mustBeSorted("UniformSelect")
	return p.individuals[p.order[src.IntRange(0, len(p.order)-1)]]
}

// InitializePartialSums prepares roulette wheel selection: cumulative
// fitness in rank order, scaled so the last entry is 1. When total fitness
// is not positive every individual gets an equal slice instead, and the
// return value reports that fallback.
func (p *Population) InitializePartialSums() (uniform bool) {
	p.mustBeSorted("InitializePartialSums")
	n := len(p.order)
	p.partialSums = p.partialSums[:0]
	sum := 0.0
	for rank := 0; rank < n; rank++ {
		sum += p.Individual(rank).fitness
		p.partialSums = append(p.partialSums, sum)
	}
	if !(sum > 0) {
		for i := range p.partialSums {
			p.partialSums[i] = float64(i+1) / float64(n)
		}
		return true
	}
	for i := range p.partialSums {
		p.partialSums[i] /= sum
	}
	return false
}

// RouletteWheelSelect picks an individual with probability proportional to
// its fitness by binary searching the partial sums for the first entry above
// a uniform cutoff in [0, 1).
func (p *Population) RouletteWheelSelect(src random.Source) *Individual {
	p.mustBeSorted("RouletteWheelSelect")
	if len(p.partialSums) != len(p.order) {
		panic("evo.Population.RouletteWheelSelect: partial sums not initialized")
	}
	cutoff := src.Float64()
	rank := sort.Search(len(p.partialSums), func(i int) bool {
		return p.partialSums[i] > cutoff
	})
	if rank == len(p.partialSums) {
		rank--
	}
	return p.Individual(rank)
}

// TournamentSelect draws size individuals uniformly with replacement and
// returns the fittest. A tournament at least as large as the population
// holds every individual, so the best one wins outright.
func (p *Population) TournamentSelect(size int, src random.Source) *Individual {
	p.mustBeSorted("TournamentSelect")
	if size <= 0 {
		panic(fmt.Sprintf("evo.Population.TournamentSelect: tournament size must be > 0, got %d", size))
	}
	if size >= len(p.order) {
		return p.Individual(0)
	}
	var winner *Individual
	for i := 0; i < size; i++ {
		candidate := p.UniformSelect(src)
		if winner == nil || candidate.fitness > winner.fitness {
			winner = candidate
		}
	}
	return winner
}

// Select dispatches to the selection algorithm named by kind.
func (p *Population) Select(kind SelectorKind, tournamentSize int, src random.Source) *Individual {
	switch kind {
	case SelectRank:
		return p.RankSelect()
	case SelectUniform:
		return p.UniformSelect(src)
	case SelectRouletteWheel, SelectorDefault:
		return p.RouletteWheelSelect(src)
	case SelectTournament:
		return p.TournamentSelect(tournamentSize, src)
	default:
		panic(fmt.Sprintf("evo.Population.Select: %v", kind))
	}
}

// without fills dst with every individual of p except excluded, keeping rank
// order and evaluation. dst shares the individuals and must not be mutated.
func (p *Population) without(excluded *Individual, dst *Population) {
	p.mustBeSorted("without")
	dst.layout = p.layout
	dst.individuals = dst.individuals[:0]
	dst.order = dst.order[:0]
	for rank := range p.order {
		ind := p.Individual(rank)
		if ind == excluded {
			continue
		}
		dst.order = append(dst.order, len(dst.individuals))
		dst.individuals = append(dst.individuals, ind)
	}
	dst.sorted = true
	dst.partialSums = dst.partialSums[:0]
}
