// Package scape holds benchmark problems: a gene layout plus a score where
// lower is better.
package scape

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"bitgen/internal/evo"
	"bitgen/internal/genotype"
	"bitgen/internal/scapeid"
)

var (
	ErrUnknownProblem = errors.New("unknown problem")
	ErrInvalidParams  = errors.New("invalid problem parameters")
)

// Scape is a problem instance. Score must be safe for concurrent use.
type Scape interface {
	Name() string
	Layout() *genotype.Layout
	Score(c *genotype.Chromosome) float64
	// Describe renders the decoded genes of c for humans.
	Describe(c *genotype.Chromosome) string
}

// Params sizes a problem instance. Zero values pick per-problem defaults.
type Params struct {
	// Size is the bit count, gene count or item count, depending on the
	// problem.
	Size int `yaml:"size" json:"size"`
	// Seed drives any random instance data such as targets or item weights.
	Seed int64 `yaml:"seed" json:"seed"`
	// Target optionally fixes the target_bits pattern, in binary text.
	Target string `yaml:"target" json:"target,omitempty"`
}

// Factory builds a problem instance.
type Factory func(Params) (Scape, error)

type entry struct {
	description string
	factory     Factory
}

var registry = struct {
	mu sync.RWMutex
	m  map[string]entry
}{
	m: map[string]entry{
		"target_bits":    {"minimize Hamming distance to a target bit pattern", newTargetBits},
		"one_max":        {"minimize the number of unset bits", newOneMax},
		"sphere":         {"minimize the sum of squares of float genes in [-5.12, 5.12]", newSphere},
		"knapsack":       {"0/1 knapsack: minimize value left behind plus overweight penalty", newKnapsack},
		"integer_target": {"minimize the distance of modulo-decoded integer genes to targets", newIntegerTarget},
	},
}

// Register adds a problem under name; the name is normalized first.
func Register(name, description string, factory Factory) error {
	key := scapeid.Normalize(name)
	if key == "" || factory == nil {
		return fmt.Errorf("%w: name and factory are required", ErrInvalidParams)
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.m[key]; exists {
		return fmt.Errorf("problem %s already registered", key)
	}
	registry.m[key] = entry{description: description, factory: factory}
	return nil
}

// Lookup returns the factory for a problem name or alias.
func Lookup(name string) (Factory, error) {
	key := scapeid.Normalize(name)
	registry.mu.RLock()
	e, ok := registry.m[key]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProblem, name)
	}
	return e.factory, nil
}

// New builds the named problem.
func New(name string, p Params) (Scape, error) {
	factory, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return factory(p)
}

func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Description(name string) string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.m[scapeid.Normalize(name)].description
}

// Fitness adapts a problem to the engine's fitness callback.
func Fitness(s Scape) evo.FitnessFunc {
	return func(ind *evo.Individual, _ any) float64 {
		return s.Score(&ind.Chromosome)
	}
}

func sizeOrDefault(p Params, def int) (int, error) {
	if p.Size < 0 {
		return 0, fmt.Errorf("%w: size must be >= 0, got %d", ErrInvalidParams, p.Size)
	}
	if p.Size == 0 {
		return def, nil
	}
	return p.Size, nil
}
