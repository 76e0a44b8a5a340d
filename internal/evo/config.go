package evo

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bitgen/internal/genotype"
	"bitgen/internal/random"
)

var ErrInvalidConfig = errors.New("invalid engine config")

const (
	defaultMutationRate      = 0.05
	defaultCrossoverRate     = 0.9
	defaultTournamentSize    = 2
	defaultKPoints           = 3
	defaultSelfAdaptiveFloor = 0.25
	defaultSelfAdaptiveRate  = 0.20
	defaultProportionalBits  = 1
)

// Config holds every engine parameter. Zero valued operator kinds, tournament
// size and schedule parameters are replaced by their defaults in NewEngine;
// rates are taken as given, so start from DefaultConfig for the classic
// settings.
type Config struct {
	Layout   *genotype.Layout
	Fitness  FitnessFunc
	UserData any

	PopulationSize int
	// TotalGenerations feeds the deterministic schedule and bounds Run. Step
	// can be called past it.
	TotalGenerations int

	MutationRate float64
	Schedule     Schedule
	// SelfAdaptiveFloor is the diversity below which SelfAdaptiveRate
	// replaces MutationRate.
	SelfAdaptiveFloor float64
	SelfAdaptiveRate  float64
	// ProportionalBits is the expected number of flipped bits per mutation
	// under the proportional schedule.
	ProportionalBits float64

	CrossoverRate float64
	Crossover     CrossoverKind
	// CrossoverPoints is k for k-point crossover.
	CrossoverPoints       int
	RespectGeneBoundaries bool

	// Mutator names a registered mutator; empty means "flip".
	Mutator string

	Selector       SelectorKind
	TournamentSize int

	EliteCount               int
	MutatedEliteCount        int
	MutatedEliteMutationRate float64
	AllowSameParentCouples   bool

	// Workers > 1 evaluates fitness concurrently.
	Workers int
	Seed    int64
	// Source overrides the Seed derived random source.
	Source random.Source

	// TargetScore stops Run once the best score is at or below it.
	TargetScore *float64
	Observer    func(GenerationStats)
	Logger      *zap.Logger
}

// DefaultConfig returns the classic operator settings. Layout, Fitness and
// PopulationSize still need to be set.
func DefaultConfig() Config {
	return Config{
		MutationRate:      defaultMutationRate,
		Schedule:          ScheduleConstant,
		SelfAdaptiveFloor: defaultSelfAdaptiveFloor,
		SelfAdaptiveRate:  defaultSelfAdaptiveRate,
		ProportionalBits:  defaultProportionalBits,
		CrossoverRate:     defaultCrossoverRate,
		Crossover:         CrossoverTwoPoint,
		CrossoverPoints:   defaultKPoints,
		Mutator:           DefaultMutator,
		Selector:          SelectRouletteWheel,
		TournamentSize:    defaultTournamentSize,
		Workers:           1,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func probability(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return invalid("%s must be in [0, 1], got %v", name, v)
	}
	return nil
}

// normalized validates cfg and fills defaults.
func (cfg Config) normalized() (Config, error) {
	if cfg.Layout == nil {
		return cfg, invalid("layout is required")
	}
	if cfg.Layout.BitsRequired() == 0 {
		return cfg, invalid("layout has no genes")
	}
	if cfg.Fitness == nil {
		return cfg, invalid("fitness function is required")
	}
	if cfg.PopulationSize <= 0 {
		return cfg, invalid("population size must be > 0")
	}
	if cfg.TotalGenerations < 0 {
		return cfg, invalid("total generations must be >= 0")
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"mutation rate", cfg.MutationRate},
		{"crossover rate", cfg.CrossoverRate},
		{"mutated elite mutation rate", cfg.MutatedEliteMutationRate},
		{"self-adaptive rate", cfg.SelfAdaptiveRate},
	} {
		if err := probability(p.name, p.value); err != nil {
			return cfg, err
		}
	}
	if cfg.EliteCount < 0 || cfg.MutatedEliteCount < 0 {
		return cfg, invalid("elite counts must be >= 0")
	}
	if cfg.EliteCount+cfg.MutatedEliteCount > cfg.PopulationSize {
		return cfg, invalid("elite count %d + mutated elite count %d exceeds population size %d",
			cfg.EliteCount, cfg.MutatedEliteCount, cfg.PopulationSize)
	}
	breeds := cfg.EliteCount+cfg.MutatedEliteCount < cfg.PopulationSize
	if breeds && !cfg.AllowSameParentCouples && cfg.PopulationSize < 2 {
		return cfg, invalid("distinct parent couples need a population of at least 2")
	}
	if cfg.CrossoverPoints < 0 {
		return cfg, invalid("crossover points must be >= 0")
	}
	if cfg.SelfAdaptiveFloor < 0 {
		return cfg, invalid("self-adaptive floor must be >= 0")
	}
	if cfg.ProportionalBits < 0 {
		return cfg, invalid("proportional bits must be >= 0")
	}

	if cfg.Crossover == CrossoverDefault {
		cfg.Crossover = CrossoverTwoPoint
	}
	if _, ok := crossoverNames[cfg.Crossover]; !ok {
		return cfg, fmt.Errorf("%w: %v", ErrUnknownCrossover, cfg.Crossover)
	}
	if cfg.Crossover == CrossoverKPoint && cfg.CrossoverPoints <= 0 {
		cfg.CrossoverPoints = defaultKPoints
	}
	if cfg.Selector == SelectorDefault {
		cfg.Selector = SelectRouletteWheel
	}
	if _, ok := selectorNames[cfg.Selector]; !ok {
		return cfg, fmt.Errorf("%w: %v", ErrUnknownSelector, cfg.Selector)
	}
	if cfg.TournamentSize < 0 {
		return cfg, invalid("tournament size must be >= 0")
	}
	if cfg.TournamentSize == 0 {
		cfg.TournamentSize = defaultTournamentSize
	}
	if cfg.Schedule == ScheduleDefault {
		cfg.Schedule = ScheduleConstant
	}
	if _, ok := scheduleNames[cfg.Schedule]; !ok {
		return cfg, fmt.Errorf("%w: %v", ErrUnknownSchedule, cfg.Schedule)
	}
	if cfg.SelfAdaptiveFloor == 0 {
		cfg.SelfAdaptiveFloor = defaultSelfAdaptiveFloor
	}
	if cfg.SelfAdaptiveRate == 0 {
		cfg.SelfAdaptiveRate = defaultSelfAdaptiveRate
	}
	if cfg.ProportionalBits == 0 {
		cfg.ProportionalBits = defaultProportionalBits
	}
	if cfg.Mutator == "" {
		cfg.Mutator = DefaultMutator
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg, nil
}
