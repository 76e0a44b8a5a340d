package evo

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bitgen/internal/bitvec"
	"bitgen/internal/genotype"
	"bitgen/internal/random"
)

var (
	ErrNotInitialized = errors.New("engine not initialized")
	ErrNotEvaluated   = errors.New("population not evaluated")
)

// GenerationStats summarizes one evaluated generation.
type GenerationStats struct {
	Generation        int     `json:"generation"`
	MinScore          float64 `json:"min_score"`
	MaxScore          float64 `json:"max_score"`
	MeanScore         float64 `json:"mean_score"`
	StdDevScore       float64 `json:"stddev_score"`
	Diversity         float64 `json:"diversity"`
	DistinctGenotypes int     `json:"distinct_genotypes"`
	MutationRate      float64 `json:"mutation_rate"`
	Evaluations       int     `json:"evaluations"`
}

type RunResult struct {
	History []GenerationStats
	// Best is a copy of the best individual of the last generation.
	Best *Individual
}

// Engine runs a generational GA over two population buffers that swap
// roles every generation.
type Engine struct {
	cfg     Config
	src     random.Source
	mutator Mutator
	logger  *zap.Logger

	current  *Population
	previous *Population
	// scratch holds the previous generation minus the first parent when
	// couples must be distinct.
	scratch *Population

	generation  int
	evaluations int
	initialized bool
	evaluated   bool
	last        GenerationStats
}

func NewEngine(cfg Config) (*Engine, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	mutator, err := ResolveMutator(cfg.Mutator)
	if err != nil {
		return nil, err
	}
	src := cfg.Source
	if src == nil {
		src = random.New(cfg.Seed)
	}
	return &Engine{
		cfg:      cfg,
		src:      src,
		mutator:  mutator,
		logger:   cfg.Logger,
		current:  NewPopulation(cfg.Layout, cfg.Logger),
		previous: NewPopulation(cfg.Layout, cfg.Logger),
		scratch:  NewPopulation(cfg.Layout, cfg.Logger),
	}, nil
}

// Config returns the engine configuration with defaults filled in.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Layout() *genotype.Layout {
	return e.cfg.Layout
}

// Initialize resets the generation counter, builds a fresh population and
// evaluates it as generation 0. Individuals are seeded from initial in order,
// up to the population size; the rest are random.
func (e *Engine) Initialize(ctx context.Context, initial ...*bitvec.Vector) error {
	n := e.cfg.PopulationSize
	e.initialized = false
	e.evaluated = false
	e.current.Resize(0, nil)
	seeded := 0
	for i, bits := range initial {
		if seeded == n {
			break
		}
		ind := NewIndividual(e.cfg.Layout)
		if err := ind.SetBits(bits); err != nil {
			return fmt.Errorf("initial individual %d: %w", i, err)
		}
		e.current.individuals = append(e.current.individuals, ind)
		seeded++
	}
	e.current.Resize(n, e.src)
	e.previous.Resize(n, nil)

	e.generation = 0
	e.evaluations = 0
	e.last = GenerationStats{}
	if err := e.evaluate(ctx, 0); err != nil {
		return err
	}
	e.initialized = true

	e.logger.Info("engine initialized",
		zap.Int("population_size", n),
		zap.Int("bits", e.cfg.Layout.BitsRequired()),
		zap.Int("seeded", seeded),
		zap.String("crossover", e.cfg.Crossover.String()),
		zap.String("selector", e.cfg.Selector.String()),
		zap.String("schedule", e.cfg.Schedule.String()),
	)
	return nil
}

// Step breeds the next generation from the current one and evaluates it.
// The generation counter counts completed Steps. After a failed evaluation
// the engine must be initialized again.
func (e *Engine) Step(ctx context.Context) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if !e.evaluated {
		return ErrNotEvaluated
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rate := e.CurrentMutationRate()
	e.breed(rate)
	e.generation++
	return e.evaluate(ctx, rate)
}

// evaluate scores the current population and records its statistics. rate
// is the mutation rate its offspring were bred with.
func (e *Engine) evaluate(ctx context.Context, rate float64) error {
	if err := e.current.Evaluate(ctx, e.cfg.Fitness, e.cfg.UserData, e.cfg.Workers); err != nil {
		e.evaluated = false
		return fmt.Errorf("evaluate generation %d: %w", e.generation, err)
	}
	e.evaluations += e.current.Len()
	e.evaluated = true

	stats, err := e.collectStats(rate)
	if err != nil {
		return err
	}
	e.last = stats
	e.logger.Debug("generation evaluated",
		zap.Int("generation", stats.Generation),
		zap.Float64("min_score", stats.MinScore),
		zap.Float64("mean_score", stats.MeanScore),
		zap.Float64("mutation_rate", stats.MutationRate),
		zap.Float64("diversity", stats.Diversity),
	)
	if e.cfg.Observer != nil {
		e.cfg.Observer(stats)
	}
	return nil
}

// Run initializes the engine and steps until TotalGenerations generations
// are bred, the context ends, or the best score reaches TargetScore. The
// history starts with the initial population as generation 0.
func (e *Engine) Run(ctx context.Context, initial ...*bitvec.Vector) (RunResult, error) {
	if e.cfg.TotalGenerations <= 0 {
		return RunResult{}, invalid("run needs total generations > 0")
	}
	if err := e.Initialize(ctx, initial...); err != nil {
		return RunResult{}, err
	}

	history := make([]GenerationStats, 0, e.cfg.TotalGenerations+1)
	history = append(history, e.last)
	for !e.targetReached() && e.generation < e.cfg.TotalGenerations {
		if err := e.Step(ctx); err != nil {
			return RunResult{}, err
		}
		history = append(history, e.last)
	}

	best, err := e.Best()
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{History: history, Best: best.Clone()}, nil
}

func (e *Engine) targetReached() bool {
	if e.cfg.TargetScore == nil || e.last.MinScore > *e.cfg.TargetScore {
		return false
	}
	e.logger.Info("target score reached",
		zap.Int("generation", e.generation),
		zap.Float64("score", e.last.MinScore),
	)
	return true
}

func (e *Engine) breed(rate float64) {
	e.current, e.previous = e.previous, e.current
	prev, next := e.previous, e.current

	if e.usesRoulette() && prev.InitializePartialSums() {
		e.logger.Warn("fitness sum not positive, roulette wheel falls back to uniform",
			zap.Int("generation", e.generation))
	}

	i := 0
	for rank := 0; rank < e.cfg.EliteCount; rank++ {
		next.At(i).CopyFrom(prev.Individual(rank))
		i++
	}
	for rank := e.cfg.EliteCount; rank < e.cfg.EliteCount+e.cfg.MutatedEliteCount; rank++ {
		ind := next.At(i)
		ind.CopyFrom(prev.Individual(rank))
		e.mutator.Mutate(&ind.Chromosome, e.cfg.MutatedEliteMutationRate, e.src)
		i++
	}
	for ; i < next.Len(); i++ {
		offspring := next.At(i)
		first, second := e.selectParents(prev)
		if e.src.CoinFlip(e.cfg.CrossoverRate) {
			e.crossover(first, second, offspring)
		} else {
			offspring.CopyFrom(first)
		}
		e.mutator.Mutate(&offspring.Chromosome, rate, e.src)
	}
	next.invalidate()
}

func (e *Engine) usesRoulette() bool {
	return e.cfg.Selector == SelectRouletteWheel
}

func (e *Engine) selectParents(pop *Population) (*Individual, *Individual) {
	first := pop.Select(e.cfg.Selector, e.cfg.TournamentSize, e.src)
	if e.cfg.AllowSameParentCouples {
		return first, pop.Select(e.cfg.Selector, e.cfg.TournamentSize, e.src)
	}
	pop.without(first, e.scratch)
	if e.usesRoulette() {
		e.scratch.InitializePartialSums()
	}
	return first, e.scratch.Select(e.cfg.Selector, e.cfg.TournamentSize, e.src)
}

func (e *Engine) crossover(first, second, offspring *Individual) {
	ignore := !e.cfg.RespectGeneBoundaries
	p1, p2, off := &first.Chromosome, &second.Chromosome, &offspring.Chromosome
	switch e.cfg.Crossover {
	case CrossoverOnePoint:
		genotype.KPointCrossover(1, p1, p2, off, e.src, ignore)
	case CrossoverTwoPoint:
		genotype.KPointCrossover(2, p1, p2, off, e.src, ignore)
	case CrossoverKPoint:
		genotype.KPointCrossover(e.cfg.CrossoverPoints, p1, p2, off, e.src, ignore)
	case CrossoverUniform:
		genotype.UniformCrossover(p1, p2, off, e.src, ignore)
	default:
		panic(fmt.Sprintf("evo.Engine.crossover: %v", e.cfg.Crossover))
	}
}

// Generation returns the number of completed Steps.
func (e *Engine) Generation() int {
	return e.generation
}

// Evaluations returns the number of fitness calls since Initialize.
func (e *Engine) Evaluations() int {
	return e.evaluations
}

// CurrentMutationRate returns the rate the configured schedule gives the
// offspring of the next Step. The schedule sees the generation they are bred
// from, so the first Step uses generation 0.
func (e *Engine) CurrentMutationRate() float64 {
	return mutationRate(e.cfg, e.generation, e.cfg.Layout.BitsRequired(), e.current.Diversity)
}

// Population exposes the current population. It must not be resized.
func (e *Engine) Population() *Population {
	return e.current
}

func (e *Engine) Best() (*Individual, error) {
	return e.Individual(0)
}

// Individual returns the current individual at rank; rank 0 is the best.
func (e *Engine) Individual(rank int) (*Individual, error) {
	if !e.evaluated {
		return nil, ErrNotEvaluated
	}
	if rank < 0 || rank >= e.current.Len() {
		panic(fmt.Sprintf("evo.Engine.Individual: rank %d out of range [0,%d)", rank, e.current.Len()))
	}
	return e.current.Individual(rank), nil
}

// Stats returns the statistics of the last evaluated generation.
func (e *Engine) Stats() (GenerationStats, error) {
	if !e.evaluated {
		return GenerationStats{}, ErrNotEvaluated
	}
	return e.last, nil
}

func (e *Engine) collectStats(rate float64) (GenerationStats, error) {
	scores, err := e.current.Stats()
	if err != nil {
		return GenerationStats{}, err
	}
	diversity, err := e.current.Diversity()
	if err != nil && !errors.Is(err, ErrUndefinedDiversity) {
		return GenerationStats{}, err
	}
	return GenerationStats{
		Generation:        e.generation,
		MinScore:          scores.Min,
		MaxScore:          scores.Max,
		MeanScore:         scores.Mean,
		StdDevScore:       scores.StdDev,
		Diversity:         diversity,
		DistinctGenotypes: e.current.DistinctGenotypes(),
		MutationRate:      rate,
		Evaluations:       e.evaluations,
	}, nil
}
