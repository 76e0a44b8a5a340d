package genotype

import (
	"math"

	"bitgen/internal/random"
)

// FlipMutate flips round(Len*rate) bits picked uniformly with replacement,
// so the same bit may flip more than once. This approximates, but is not the
// same as, flipping every bit independently with probability rate. It
// returns the number of flips performed.
func FlipMutate(c *Chromosome, rate float64, src random.Source) int {
	bitCount := c.Len()
	if bitCount == 0 || !(rate > 0) {
		return 0
	}
	flips := int(math.Round(float64(bitCount) * rate))
	for i := 0; i < flips; i++ {
		c.bits.Flip(src.IntRange(0, bitCount-1))
	}
	return flips
}
