package genotype

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Coding selects how integer gene bits are interpreted.
type Coding int

const (
	// GrayCoding stores the reflected binary Gray code of the value, so a
	// single flipped bit tends to move the value to a neighbour.
	GrayCoding Coding = iota
	// BinaryCoding stores the value as plain binary.
	BinaryCoding
)

func (c Coding) String() string {
	switch c {
	case GrayCoding:
		return "gray"
	case BinaryCoding:
		return "binary"
	default:
		return fmt.Sprintf("coding(%d)", int(c))
	}
}

// EncodeGray converts a binary value to its Gray code.
func EncodeGray[T constraints.Unsigned](value T) T {
	return value ^ (value >> 1)
}

// DecodeGray converts a Gray code back to binary.
func DecodeGray[T constraints.Unsigned](gray T) T {
	value := gray
	for gray >>= 1; gray != 0; gray >>= 1 {
		value ^= gray
	}
	return value
}

func intBits[T constraints.Unsigned]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

func geneSpan[T constraints.Unsigned](c *Chromosome, op string, gene int) (int, int) {
	start, width := c.layout.GeneStart(gene), c.layout.GeneWidth(gene)
	if width > intBits[T]() {
		panic(fmt.Sprintf("genotype.%s: gene %d is %d bits wide, target type holds %d", op, gene, width, intBits[T]()))
	}
	return start, width
}

// RawInt reads gene bits as an integer without range scaling.
func RawInt[T constraints.Unsigned](c *Chromosome, gene int, coding Coding) T {
	start, width := geneSpan[T](c, "RawInt", gene)
	value := T(c.bits.Uint64(start, width))
	if coding == GrayCoding {
		value = DecodeGray(value)
	}
	return value
}

// DecodeInt reads gene bits as an integer and wraps it into [lo, hi) with
// value%(hi-lo)+lo. The wrap is not uniform unless hi-lo divides 2^width;
// pick widths well above log2(hi-lo) when that matters. lo == hi returns lo
// without reading the chromosome.
func DecodeInt[T constraints.Unsigned](c *Chromosome, gene int, lo, hi T, coding Coding) T {
	if lo == hi {
		return lo
	}
	value := RawInt[T](c, gene, coding)
	return value%(hi-lo) + lo
}

// EncodeInt writes value into gene bits. Bits above the gene width are
// dropped.
func EncodeInt[T constraints.Unsigned](c *Chromosome, gene int, value T, coding Coding) {
	start, width := geneSpan[T](c, "EncodeInt", gene)
	if coding == GrayCoding {
		value = EncodeGray(value)
	}
	c.bits.SetUint64(uint64(value), start, width)
}

// DecodeFloat maps the gene's integer value linearly from [0, 2^width-1]
// onto [lo, hi].
func DecodeFloat[F constraints.Float](c *Chromosome, gene int, lo, hi F, coding Coding) F {
	raw := RawInt[uint64](c, gene, coding)
	return ScaleToFloat(raw, c.layout.GeneWidth(gene), lo, hi)
}

// EncodeFloat maps value from [lo, hi] onto the gene's integer range and
// stores it. Values past hi saturate at the largest representable integer;
// values below lo store zero.
func EncodeFloat[F constraints.Float](c *Chromosome, gene int, value, lo, hi F, coding Coding) {
	raw := ScaleFromFloat(value, c.layout.GeneWidth(gene), lo, hi)
	EncodeInt(c, gene, raw, coding)
}

func scaleMax(width int) uint64 {
	if width <= 0 || width > 64 {
		panic(fmt.Sprintf("genotype.scaleMax: width %d out of range [1,64]", width))
	}
	return math.MaxUint64 >> (64 - width)
}

// ScaleToFloat converts a width-bit integer to a float in [lo, hi].
func ScaleToFloat[F constraints.Float](raw uint64, width int, lo, hi F) F {
	factor := F(raw) / F(scaleMax(width))
	return factor*(hi-lo) + lo
}

// ScaleFromFloat converts a float in [lo, hi] to a width-bit integer.
func ScaleFromFloat[F constraints.Float](value F, width int, lo, hi F) uint64 {
	localMax := scaleMax(width)
	factor := float64((value - lo) / (hi - lo))
	switch {
	case factor >= 1:
		return localMax
	case !(factor > 0):
		return 0
	}
	scaled := factor * float64(localMax)
	if scaled >= float64(localMax) {
		return localMax
	}
	return uint64(scaled)
}
