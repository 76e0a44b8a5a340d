// Package genotype describes how genes map onto chromosome bits and
// implements the bit-level genetic operators over chromosomes.
package genotype

import "fmt"

// Layout records where each gene lives in a chromosome. Wide genes are laid
// out back to back in the order they were added; boolean genes always follow
// the last wide gene, one bit each, and carry no per-gene metadata.
//
// A Layout should be fully built before chromosomes are created from it.
type Layout struct {
	starts          []int
	widths          []int
	firstBooleanBit int
	booleanCount    int
}

// NewLayout returns an empty layout.
func NewLayout() *Layout {
	return &Layout{}
}

// AddGene appends a wide gene of the given bit width and returns its index.
func (l *Layout) AddGene(width int) int {
	return l.addGene(width, false)
}

// AddByteAlignedGene appends a wide gene whose start and width are both
// rounded up to byte boundaries, and returns its index.
func (l *Layout) AddByteAlignedGene(width int) int {
	return l.addGene(width, true)
}

func (l *Layout) addGene(width int, byteAlign bool) int {
	if width <= 0 {
		panic(fmt.Sprintf("genotype.AddGene: width must be > 0, got %d", width))
	}
	start := 0
	if n := len(l.starts); n > 0 {
		start = l.starts[n-1] + l.widths[n-1]
	}
	if byteAlign {
		if gap := width % 8; gap != 0 {
			width += 8 - gap
		}
		if gap := start % 8; gap != 0 {
			start += 8 - gap
		}
	}
	l.starts = append(l.starts, start)
	l.widths = append(l.widths, width)
	l.firstBooleanBit = start + width
	return len(l.starts) - 1
}

// AddBooleanGenes appends count boolean genes.
func (l *Layout) AddBooleanGenes(count int) {
	if count < 0 {
		panic(fmt.Sprintf("genotype.AddBooleanGenes: negative count %d", count))
	}
	l.booleanCount += count
}

// SetBooleanGeneCount replaces the number of boolean genes.
func (l *Layout) SetBooleanGeneCount(count int) {
	if count < 0 {
		panic(fmt.Sprintf("genotype.SetBooleanGeneCount: negative count %d", count))
	}
	l.booleanCount = count
}

func (l *Layout) BooleanGeneCount() int {
	return l.booleanCount
}

// WideGeneCount is also the index of the first boolean gene.
func (l *Layout) WideGeneCount() int {
	return len(l.starts)
}

func (l *Layout) FirstBooleanGeneIndex() int {
	return len(l.starts)
}

func (l *Layout) FirstBooleanBitIndex() int {
	return l.firstBooleanBit
}

// GeneCount returns the number of wide and boolean genes.
func (l *Layout) GeneCount() int {
	return len(l.starts) + l.booleanCount
}

// IsBoolean reports whether gene i is a boolean gene.
func (l *Layout) IsBoolean(i int) bool {
	l.checkGene("IsBoolean", i)
	return i >= len(l.starts)
}

// GeneStart returns the first bit index of gene i.
func (l *Layout) GeneStart(i int) int {
	l.checkGene("GeneStart", i)
	if i >= len(l.starts) {
		return l.firstBooleanBit + (i - len(l.starts))
	}
	return l.starts[i]
}

// GeneWidth returns the bit width of gene i; boolean genes are one bit.
func (l *Layout) GeneWidth(i int) int {
	l.checkGene("GeneWidth", i)
	if i >= len(l.widths) {
		return 1
	}
	return l.widths[i]
}

// BitsRequired returns the chromosome length needed to hold every gene.
func (l *Layout) BitsRequired() int {
	if len(l.starts) == 0 {
		return l.booleanCount
	}
	n := len(l.starts)
	return l.starts[n-1] + l.widths[n-1] + l.booleanCount
}

func (l *Layout) checkGene(op string, i int) {
	if i < 0 || i >= l.GeneCount() {
		panic(fmt.Sprintf("genotype.%s: gene %d out of range [0,%d)", op, i, l.GeneCount()))
	}
}
