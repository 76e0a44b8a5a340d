package scape

import (
	"fmt"
	"strconv"
	"strings"

	"bitgen/internal/genotype"
	"bitgen/internal/random"
)

const (
	defaultIntegerGenes = 8
	integerGeneBits     = 12
	integerRange        = 1000
)

// IntegerTarget decodes byte-aligned integer genes into [0, 1000) with
// modulo wrapping and scores the summed distance to per-gene targets.
type IntegerTarget struct {
	layout  *genotype.Layout
	targets []uint64
}

func newIntegerTarget(p Params) (Scape, error) {
	n, err := sizeOrDefault(p, defaultIntegerGenes)
	if err != nil {
		return nil, err
	}
	src := random.New(p.Seed)
	targets := make([]uint64, n)
	for i := range targets {
		targets[i] = uint64(src.IntRange(0, integerRange-1))
	}
	s, err := NewIntegerTarget(targets)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func NewIntegerTarget(targets []uint64) (*IntegerTarget, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: integer target needs genes", ErrInvalidParams)
	}
	s := &IntegerTarget{layout: genotype.NewLayout(), targets: append([]uint64(nil), targets...)}
	for _, target := range targets {
		if target >= integerRange {
			return nil, fmt.Errorf("%w: target %d outside [0,%d)", ErrInvalidParams, target, integerRange)
		}
		s.layout.AddByteAlignedGene(integerGeneBits)
	}
	return s, nil
}

func (*IntegerTarget) Name() string { return "integer_target" }

func (s *IntegerTarget) Layout() *genotype.Layout { return s.layout }

func (s *IntegerTarget) Values(c *genotype.Chromosome) []uint64 {
	out := make([]uint64, len(s.targets))
	for i := range out {
		out[i] = c.DecodeUint64(i, 0, integerRange)
	}
	return out
}

func (s *IntegerTarget) Score(c *genotype.Chromosome) float64 {
	sum := 0.0
	for i, v := range s.Values(c) {
		if v > s.targets[i] {
			sum += float64(v - s.targets[i])
		} else {
			sum += float64(s.targets[i] - v)
		}
	}
	return sum
}

func (s *IntegerTarget) Describe(c *genotype.Chromosome) string {
	values := s.Values(c)
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatUint(v, 10) + "->" + strconv.FormatUint(s.targets[i], 10)
	}
	return strings.Join(parts, " ")
}
