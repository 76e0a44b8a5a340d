package scape

import (
	"strconv"
	"strings"

	"bitgen/internal/genotype"
)

const (
	defaultSphereGenes = 8
	sphereGeneBits     = 24
	sphereBound        = 5.12
)

// Sphere decodes float genes from [-5.12, 5.12] and scores the sum of their
// squares. The optimum is all zeros.
type Sphere struct {
	layout *genotype.Layout
}

func newSphere(p Params) (Scape, error) {
	genes, err := sizeOrDefault(p, defaultSphereGenes)
	if err != nil {
		return nil, err
	}
	layout := genotype.NewLayout()
	for i := 0; i < genes; i++ {
		layout.AddGene(sphereGeneBits)
	}
	return &Sphere{layout: layout}, nil
}

func (*Sphere) Name() string { return "sphere" }

func (s *Sphere) Layout() *genotype.Layout { return s.layout }

func (s *Sphere) Values(c *genotype.Chromosome) []float64 {
	out := make([]float64, s.layout.WideGeneCount())
	for i := range out {
		out[i] = c.DecodeFloat64(i, -sphereBound, sphereBound)
	}
	return out
}

func (s *Sphere) Score(c *genotype.Chromosome) float64 {
	sum := 0.0
	for _, x := range s.Values(c) {
		sum += x * x
	}
	return sum
}

func (s *Sphere) Describe(c *genotype.Chromosome) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range s.Values(c) {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(x, 'f', 4, 64))
	}
	b.WriteByte(']')
	return b.String()
}
