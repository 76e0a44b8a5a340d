package genotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitgen/internal/random"
)

// mixedLayout has unaligned wide genes, an aligned one and a boolean tail.
func mixedLayout() *Layout {
	l := NewLayout()
	l.AddGene(3)
	l.AddGene(5)
	l.AddByteAlignedGene(8)
	l.AddGene(13)
	l.AddGene(1)
	l.AddBooleanGenes(6)
	return l
}

func filled(l *Layout, value bool) *Chromosome {
	c := NewChromosome(l)
	for i := 0; i < c.Len(); i++ {
		c.Bits().Put(i, value)
	}
	return c
}

// requireWholeGenes fails if any gene of c mixes bits from the zero and one
// parents.
func requireWholeGenes(t *testing.T, c *Chromosome) {
	t.Helper()
	l := c.Layout()
	for g := 0; g < l.GeneCount(); g++ {
		start, width := l.GeneStart(g), l.GeneWidth(g)
		first := c.Bits().Get(start)
		for b := start + 1; b < start+width; b++ {
			require.Equalf(t, first, c.Bits().Get(b), "gene %d split at bit %d: %s", g, b, c)
		}
	}
}

func TestCrossoverPreservesLength(t *testing.T) {
	src := random.New(11)
	l := mixedLayout()
	p1, p2 := filled(l, false), filled(l, true)

	for _, ignore := range []bool{true, false} {
		off := NewChromosome(l)
		UniformCrossover(p1, p2, off, src, ignore)
		assert.Equal(t, l.BitsRequired(), off.Len())
		for k := 0; k <= 4; k++ {
			KPointCrossover(k, p1, p2, off, src, ignore)
			assert.Equal(t, l.BitsRequired(), off.Len())
		}
	}
}

func TestCrossoverRespectingBoundariesKeepsGenesWhole(t *testing.T) {
	src := random.New(3)
	l := mixedLayout()
	p1, p2 := filled(l, false), filled(l, true)
	off := NewChromosome(l)

	for trial := 0; trial < 200; trial++ {
		UniformCrossover(p1, p2, off, src, false)
		requireWholeGenes(t, off)
		for k := 1; k <= 3; k++ {
			KPointCrossover(k, p1, p2, off, src, false)
			requireWholeGenes(t, off)
		}
	}
}

func TestUniformCrossoverDrawsFromBothParents(t *testing.T) {
	src := random.New(5)
	l := NewLayout()
	l.AddBooleanGenes(256)
	p1, p2 := filled(l, false), filled(l, true)
	off := NewChromosome(l)

	for _, ignore := range []bool{true, false} {
		UniformCrossover(p1, p2, off, src, ignore)
		ones := off.Bits().CountSetBits()
		assert.Greater(t, ones, 64)
		assert.Less(t, ones, 192)
	}
}

func TestCrossoverOfIdenticalParentsCopiesThem(t *testing.T) {
	src := random.New(9)
	l := mixedLayout()
	p := NewChromosome(l)
	p.Randomize(src)
	off := NewChromosome(l)

	UniformCrossover(p, p, off, src, true)
	assert.True(t, off.Bits().Equal(p.Bits()))
	KPointCrossover(3, p, p, off, src, false)
	assert.True(t, off.Bits().Equal(p.Bits()))
}

func TestKPointCrossoverZeroPointsCopiesFirstParent(t *testing.T) {
	src := random.New(1)
	l := mixedLayout()
	p1, p2 := filled(l, false), filled(l, true)
	off := filled(l, true)

	KPointCrossover(0, p1, p2, off, src, true)
	assert.Zero(t, off.Bits().CountSetBits())
}

func TestKPointCrossoverAlternatesChunks(t *testing.T) {
	src := random.New(21)
	l := NewLayout()
	l.AddBooleanGenes(100)
	p1, p2 := filled(l, false), filled(l, true)
	off := NewChromosome(l)

	for trial := 0; trial < 100; trial++ {
		KPointCrossover(2, p1, p2, off, src, true)
		// Offspring reads 0...0 1...1 0...0 with any run possibly empty, so
		// there are at most two transitions and the first bit comes from
		// parent1 unless the first cut is at zero.
		transitions := 0
		for i := 1; i < off.Len(); i++ {
			if off.Bits().Get(i) != off.Bits().Get(i-1) {
				transitions++
			}
		}
		require.LessOrEqual(t, transitions, 2, off.String())
		if transitions == 2 {
			require.False(t, off.Bits().Get(0))
		}
	}
}

func TestCrossoverPanicsOnLengthMismatch(t *testing.T) {
	src := random.New(1)
	a := NewChromosome(intLayout(8))
	b := NewChromosome(intLayout(9))
	assert.Panics(t, func() { UniformCrossover(a, b, NewChromosome(intLayout(8)), src, true) })
	assert.Panics(t, func() { KPointCrossover(1, a, a, NewChromosome(intLayout(9)), src, true) })
	assert.Panics(t, func() { KPointCrossover(-1, a, a, NewChromosome(intLayout(8)), src, true) })
}

func TestFlipMutateFlipsRoundedCount(t *testing.T) {
	src := random.New(17)
	l := NewLayout()
	l.AddGene(40)
	l.AddBooleanGenes(60)
	c := NewChromosome(l)
	before := NewChromosome(l)

	for _, tc := range []struct {
		rate  float64
		flips int
	}{
		{rate: 0, flips: 0},
		{rate: -1, flips: 0},
		{rate: 0.004, flips: 0},
		{rate: 0.005, flips: 1},
		{rate: 0.05, flips: 5},
		{rate: 1, flips: 100},
	} {
		before.CopyFrom(c)
		got := FlipMutate(c, tc.rate, src)
		require.Equal(t, tc.flips, got, "rate %v", tc.rate)

		dist, err := c.HammingDistance(before)
		require.NoError(t, err)
		// Repeated picks can cancel, but each flip changes parity.
		assert.LessOrEqual(t, dist, got)
		assert.Equal(t, got%2, dist%2)
	}
}

func TestChromosomeBooleanAndRawGenes(t *testing.T) {
	l := NewLayout()
	l.AddGene(3)
	l.AddByteAlignedGene(12)
	l.AddBooleanGenes(4)
	c := NewChromosome(l)
	require.Equal(t, 8+16+4, c.Len())

	c.EncodeBool(4, true)
	assert.True(t, c.DecodeBool(4))
	assert.False(t, c.DecodeBool(3))
	assert.True(t, c.Bits().Get(8+16+2))
	assert.Panics(t, func() { c.DecodeBool(1) })

	raw := c.RawGene(1)
	require.Len(t, raw, 2)
	raw[0] = 0xff
	assert.Equal(t, uint64(0xff), RawInt[uint64](c, 1, BinaryCoding))
	assert.Panics(t, func() { c.RawGene(0) })
}

func TestChromosomeSetBitsChecksLength(t *testing.T) {
	c := NewChromosome(intLayout(10))
	other := NewChromosome(intLayout(11))
	require.ErrorIs(t, c.SetBits(other.Bits()), ErrBitCountMismatch)

	src := NewChromosome(intLayout(10))
	src.EncodeUint64(0, 513)
	require.NoError(t, c.SetBits(src.Bits()))
	assert.Equal(t, src.String(), c.String())
}
