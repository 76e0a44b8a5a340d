package evo

import (
	"bitgen/internal/genotype"
)

// Individual is a chromosome with its evaluation. Score comes from the
// fitness function and is better when lower; fitness is the normalized,
// higher-is-better share derived from the whole population's scores and is
// only meaningful within one evaluation.
type Individual struct {
	genotype.Chromosome
	score   float64
	fitness float64
}

// FitnessFunc scores an individual; lower scores are better. userData is the
// engine's Config.UserData, passed through untouched.
type FitnessFunc func(ind *Individual, userData any) float64

func NewIndividual(layout *genotype.Layout) *Individual {
	return &Individual{Chromosome: *genotype.NewChromosome(layout)}
}

func (i *Individual) Score() float64 {
	return i.score
}

func (i *Individual) Fitness() float64 {
	return i.fitness
}

// Less orders individuals by ascending score.
func (i *Individual) Less(other *Individual) bool {
	return i.score < other.score
}

// CopyFrom copies src's bits and evaluation into i.
func (i *Individual) CopyFrom(src *Individual) {
	i.Chromosome.CopyFrom(&src.Chromosome)
	i.score = src.score
	i.fitness = src.fitness
}

// Clone returns a deep copy sharing only the layout.
func (i *Individual) Clone() *Individual {
	out := NewIndividual(i.Layout())
	out.CopyFrom(i)
	return out
}
