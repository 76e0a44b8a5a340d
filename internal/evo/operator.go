package evo

import (
	"bitgen/internal/genotype"
	"bitgen/internal/random"
)

// Mutator perturbs a chromosome in place at the given rate and returns how
// many primitive edits it made.
type Mutator interface {
	Name() string
	Mutate(c *genotype.Chromosome, rate float64, src random.Source) int
}

// FlipMutator flips round(bits*rate) random bits, picked with replacement.
type FlipMutator struct{}

func (FlipMutator) Name() string {
	return "flip"
}

func (FlipMutator) Mutate(c *genotype.Chromosome, rate float64, src random.Source) int {
	return genotype.FlipMutate(c, rate, src)
}
