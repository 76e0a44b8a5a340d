package scape

import (
	"fmt"

	"bitgen/internal/bitvec"
	"bitgen/internal/genotype"
	"bitgen/internal/random"
)

const (
	defaultTargetBits = 256
	defaultOneMaxBits = 128
)

// TargetBits scores a chromosome by its Hamming distance to a fixed
// pattern. The genome is boolean genes only.
type TargetBits struct {
	layout *genotype.Layout
	target *bitvec.Vector
}

func newTargetBits(p Params) (Scape, error) {
	if p.Target != "" {
		target, err := bitvec.Parse(p.Target)
		if err != nil {
			return nil, fmt.Errorf("%w: target: %v", ErrInvalidParams, err)
		}
		if p.Size != 0 && p.Size != target.Len() {
			return nil, fmt.Errorf("%w: size %d does not match %d-bit target", ErrInvalidParams, p.Size, target.Len())
		}
		if target.Len() == 0 {
			return nil, fmt.Errorf("%w: empty target", ErrInvalidParams)
		}
		return NewTargetBits(target), nil
	}
	size, err := sizeOrDefault(p, defaultTargetBits)
	if err != nil {
		return nil, err
	}
	target := bitvec.New(size)
	random.New(p.Seed).Read(target.Bytes())
	return NewTargetBits(target), nil
}

// NewTargetBits copies target.
func NewTargetBits(target *bitvec.Vector) *TargetBits {
	layout := genotype.NewLayout()
	layout.AddBooleanGenes(target.Len())
	return &TargetBits{layout: layout, target: target.Clone()}
}

func (*TargetBits) Name() string { return "target_bits" }

func (s *TargetBits) Layout() *genotype.Layout { return s.layout }

func (s *TargetBits) Target() *bitvec.Vector { return s.target }

func (s *TargetBits) Score(c *genotype.Chromosome) float64 {
	d, err := c.Bits().HammingDistance(s.target)
	if err != nil {
		panic(fmt.Sprintf("scape.TargetBits.Score: %v", err))
	}
	return float64(d)
}

func (s *TargetBits) Describe(c *genotype.Chromosome) string {
	return fmt.Sprintf("%s (distance %d)", c.Hex(), int(s.Score(c)))
}

// OneMax counts unset bits.
type OneMax struct {
	layout *genotype.Layout
}

func newOneMax(p Params) (Scape, error) {
	size, err := sizeOrDefault(p, defaultOneMaxBits)
	if err != nil {
		return nil, err
	}
	layout := genotype.NewLayout()
	layout.AddBooleanGenes(size)
	return &OneMax{layout: layout}, nil
}

func (*OneMax) Name() string { return "one_max" }

func (s *OneMax) Layout() *genotype.Layout { return s.layout }

func (*OneMax) Score(c *genotype.Chromosome) float64 {
	return float64(c.Len() - c.Bits().CountSetBits())
}

func (*OneMax) Describe(c *genotype.Chromosome) string {
	return fmt.Sprintf("%d/%d bits set", c.Bits().CountSetBits(), c.Len())
}
