package genotype

import (
	"fmt"

	"bitgen/internal/random"
)

const equalChance = 0.5

func prepareOffspring(op string, parent1, parent2, offspring *Chromosome) int {
	bitCount := parent1.Len()
	if parent2.Len() != bitCount {
		panic(fmt.Sprintf("genotype.%s: parent lengths differ (%d != %d)", op, bitCount, parent2.Len()))
	}
	if offspring.layout.BitsRequired() != bitCount {
		panic(fmt.Sprintf("genotype.%s: offspring layout requires %d bits, parents have %d", op, offspring.layout.BitsRequired(), bitCount))
	}
	offspring.bits.Resize(bitCount)
	return bitCount
}

// UniformCrossover fills offspring with bits drawn from either parent with
// equal chance.
//
// Ignoring gene boundaries, each offspring byte takes the bits of parent1
// where a random mask byte is set and of parent2 elsewhere. Respecting them,
// every gene is copied whole from a parent chosen by a fair coin.
func UniformCrossover(parent1, parent2, offspring *Chromosome, src random.Source, ignoreGeneBoundaries bool) {
	prepareOffspring("UniformCrossover", parent1, parent2, offspring)

	if ignoreGeneBoundaries {
		a, b := parent1.bits.Bytes(), parent2.bits.Bytes()
		out := offspring.bits.Bytes()
		for i := range out {
			mask := src.Byte()
			out[i] = mask&a[i] | ^mask&b[i]
		}
		return
	}

	layout := parent1.layout
	for i := 0; i < layout.WideGeneCount(); i++ {
		donor := parent2
		if src.CoinFlip(equalChance) {
			donor = parent1
		}
		start := layout.GeneStart(i)
		donor.bits.CopyTo(&offspring.bits, start, start, layout.GeneWidth(i))
	}
	first := layout.FirstBooleanBitIndex()
	for i := 0; i < layout.BooleanGeneCount(); i++ {
		donor := parent2
		if src.CoinFlip(equalChance) {
			donor = parent1
		}
		offspring.bits.Put(first+i, donor.bits.Get(first+i))
	}
}

// KPointCrossover cuts the parents at k random points and fills offspring
// with the k+1 resulting chunks, alternating parent1, parent2, parent1, ...
// Cut points are drawn in increasing order over bit indices, or over gene
// indices when gene boundaries are respected. The final chunk always runs to
// the end; a cut at the end leaves later chunks empty.
func KPointCrossover(k int, parent1, parent2, offspring *Chromosome, src random.Source, ignoreGeneBoundaries bool) {
	if k < 0 {
		panic(fmt.Sprintf("genotype.KPointCrossover: negative point count %d", k))
	}
	bitCount := prepareOffspring("KPointCrossover", parent1, parent2, offspring)

	if ignoreGeneBoundaries {
		left := 0
		for i := 0; i <= k; i++ {
			right := bitCount
			if i < k {
				right = src.IntRange(left, bitCount)
			}
			donor := parent1
			if i%2 == 1 {
				donor = parent2
			}
			if right > left {
				donor.bits.CopyTo(&offspring.bits, left, left, right-left)
			}
			left = right
		}
		return
	}

	layout := parent1.layout
	geneCount := layout.GeneCount()
	geneEnd := func(gene int) int {
		if gene >= geneCount {
			return layout.BitsRequired()
		}
		return layout.GeneStart(gene)
	}

	left := 0
	for i := 0; i <= k; i++ {
		right := geneCount
		if i < k {
			right = src.IntRange(left, geneCount)
		}
		donor := parent1
		if i%2 == 1 {
			donor = parent2
		}
		if right > left {
			start := layout.GeneStart(left)
			donor.bits.CopyTo(&offspring.bits, start, start, geneEnd(right)-start)
		}
		left = right
	}
}
