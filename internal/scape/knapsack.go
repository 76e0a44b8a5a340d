package scape

import (
	"fmt"

	"bitgen/internal/genotype"
	"bitgen/internal/random"
)

const (
	defaultKnapsackItems = 32
	maxItemWeight        = 30
	maxItemValue         = 50
	overweightPenalty    = maxItemValue
)

type Item struct {
	Weight int
	Value  int
}

// Knapsack packs items flagged by boolean genes. The score is the value left
// out plus a fixed penalty per unit of overweight; it is never negative.
type Knapsack struct {
	layout     *genotype.Layout
	items      []Item
	capacity   int
	totalValue int
}

func newKnapsack(p Params) (Scape, error) {
	n, err := sizeOrDefault(p, defaultKnapsackItems)
	if err != nil {
		return nil, err
	}
	src := random.New(p.Seed)
	items := make([]Item, n)
	totalWeight := 0
	for i := range items {
		items[i] = Item{
			Weight: src.IntRange(1, maxItemWeight),
			Value:  src.IntRange(1, maxItemValue),
		}
		totalWeight += items[i].Weight
	}
	k, err := NewKnapsack(items, totalWeight/2)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func NewKnapsack(items []Item, capacity int) (*Knapsack, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: knapsack needs items", ErrInvalidParams)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidParams, capacity)
	}
	k := &Knapsack{
		layout:   genotype.NewLayout(),
		items:    append([]Item(nil), items...),
		capacity: capacity,
	}
	for _, item := range items {
		if item.Weight < 0 || item.Value < 0 {
			return nil, fmt.Errorf("%w: negative item %+v", ErrInvalidParams, item)
		}
		k.totalValue += item.Value
	}
	k.layout.AddBooleanGenes(len(items))
	return k, nil
}

func (*Knapsack) Name() string { return "knapsack" }

func (k *Knapsack) Layout() *genotype.Layout { return k.layout }

func (k *Knapsack) Capacity() int { return k.capacity }

// Pack returns the weight and value of the items selected by c.
func (k *Knapsack) Pack(c *genotype.Chromosome) (weight, value int) {
	first := k.layout.FirstBooleanGeneIndex()
	for i, item := range k.items {
		if c.DecodeBool(first + i) {
			weight += item.Weight
			value += item.Value
		}
	}
	return weight, value
}

func (k *Knapsack) Score(c *genotype.Chromosome) float64 {
	weight, value := k.Pack(c)
	score := float64(k.totalValue - value)
	if over := weight - k.capacity; over > 0 {
		score += float64(over * overweightPenalty)
	}
	return score
}

func (k *Knapsack) Describe(c *genotype.Chromosome) string {
	weight, value := k.Pack(c)
	return fmt.Sprintf("value %d/%d, weight %d/%d", value, k.totalValue, weight, k.capacity)
}
