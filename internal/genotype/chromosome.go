package genotype

import (
	"errors"
	"fmt"

	"bitgen/internal/bitvec"
	"bitgen/internal/random"
)

var ErrBitCountMismatch = errors.New("chromosome bit count mismatch")

// Chromosome is one bit string laid out according to a Layout. Its length is
// always the layout's BitsRequired.
type Chromosome struct {
	bits   bitvec.Vector
	layout *Layout
}

// NewChromosome returns an all-zero chromosome for layout.
func NewChromosome(layout *Layout) *Chromosome {
	if layout == nil {
		panic("genotype.NewChromosome: nil layout")
	}
	c := &Chromosome{layout: layout}
	c.bits.SetBitCount(layout.BitsRequired())
	return c
}

func (c *Chromosome) Layout() *Layout {
	return c.layout
}

// Bits exposes the underlying bit vector. Changing its length breaks the
// chromosome.
func (c *Chromosome) Bits() *bitvec.Vector {
	return &c.bits
}

func (c *Chromosome) Len() int {
	return c.bits.Len()
}

// Randomize overwrites every bit with output from src.
func (c *Chromosome) Randomize(src random.Source) {
	src.Read(c.bits.Bytes())
}

// SetBits copies raw bits into the chromosome. The vector must be exactly
// BitsRequired long.
func (c *Chromosome) SetBits(v *bitvec.Vector) error {
	if v.Len() != c.layout.BitsRequired() {
		return fmt.Errorf("%w: got %d bits, layout requires %d", ErrBitCountMismatch, v.Len(), c.layout.BitsRequired())
	}
	c.bits.CopyFrom(v)
	return nil
}

// CopyFrom makes c a bit-for-bit copy of src. Both must share a layout size.
func (c *Chromosome) CopyFrom(src *Chromosome) {
	if src.Len() != c.layout.BitsRequired() {
		panic(fmt.Sprintf("genotype.CopyFrom: source has %d bits, layout requires %d", src.Len(), c.layout.BitsRequired()))
	}
	c.bits.CopyFrom(&src.bits)
}

// HammingDistance counts the bits that differ between c and other.
func (c *Chromosome) HammingDistance(other *Chromosome) (int, error) {
	return c.bits.HammingDistance(&other.bits)
}

func (c *Chromosome) String() string {
	return c.bits.String()
}

func (c *Chromosome) Hex() string {
	return c.bits.Hex()
}

// DecodeBool reads boolean gene i.
func (c *Chromosome) DecodeBool(i int) bool {
	return c.bits.Get(c.booleanBit("DecodeBool", i))
}

// EncodeBool writes boolean gene i.
func (c *Chromosome) EncodeBool(i int, value bool) {
	c.bits.Put(c.booleanBit("EncodeBool", i), value)
}

func (c *Chromosome) booleanBit(op string, i int) int {
	first := c.layout.FirstBooleanGeneIndex()
	if i < first || i >= c.layout.GeneCount() {
		panic(fmt.Sprintf("genotype.%s: gene %d is not a boolean gene [%d,%d)", op, i, first, c.layout.GeneCount()))
	}
	return c.layout.FirstBooleanBitIndex() + (i - first)
}

// DecodeUint64 reads gene i as a Gray coded integer wrapped into [lo, hi).
func (c *Chromosome) DecodeUint64(i int, lo, hi uint64) uint64 {
	return DecodeInt(c, i, lo, hi, GrayCoding)
}

// EncodeUint64 stores value Gray coded into gene i.
func (c *Chromosome) EncodeUint64(i int, value uint64) {
	EncodeInt(c, i, value, GrayCoding)
}

// DecodeFloat64 reads gene i as a Gray coded value scaled onto [lo, hi].
func (c *Chromosome) DecodeFloat64(i int, lo, hi float64) float64 {
	return DecodeFloat(c, i, lo, hi, GrayCoding)
}

// EncodeFloat64 stores value, scaled from [lo, hi], Gray coded into gene i.
func (c *Chromosome) EncodeFloat64(i int, value, lo, hi float64) {
	EncodeFloat(c, i, value, lo, hi, GrayCoding)
}

// RawGene returns the bytes backing a byte-aligned wide gene. The slice
// aliases the chromosome.
func (c *Chromosome) RawGene(i int) []byte {
	if c.layout.IsBoolean(i) {
		panic(fmt.Sprintf("genotype.RawGene: gene %d is a boolean gene", i))
	}
	start, width := c.layout.GeneStart(i), c.layout.GeneWidth(i)
	if start%8 != 0 || width%8 != 0 {
		panic(fmt.Sprintf("genotype.RawGene: gene %d is not byte aligned (start=%d width=%d)", i, start, width))
	}
	return c.bits.Bytes()[start/8 : (start+width)/8]
}
