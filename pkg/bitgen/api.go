// Package bitgen is the embedding API for the bit-string genetic algorithm
// engine and its run history.
package bitgen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bitgen/internal/bitvec"
	"bitgen/internal/evo"
	"bitgen/internal/genotype"
	"bitgen/internal/model"
	"bitgen/internal/random"
	"bitgen/internal/scape"
	"bitgen/internal/stats"
	"bitgen/internal/storage"
)

const (
	defaultProblem     = "target_bits"
	defaultPopulation  = 100
	defaultGenerations = 200
	defaultDBPath      = "bitgen.db"
	defaultRunsLimit   = 20
	defaultExportsDir  = "exports"
)

type (
	Vector          = bitvec.Vector
	Layout          = genotype.Layout
	Chromosome      = genotype.Chromosome
	Coding          = genotype.Coding
	Individual      = evo.Individual
	Population      = evo.Population
	FitnessFunc     = evo.FitnessFunc
	Config          = evo.Config
	Engine          = evo.Engine
	GenerationStats = evo.GenerationStats
	RunResult       = evo.RunResult
	CrossoverKind   = evo.CrossoverKind
	SelectorKind    = evo.SelectorKind
	Schedule        = evo.Schedule
	Mutator         = evo.Mutator
	RandomSource    = random.Source
	Problem         = scape.Scape
	ProblemParams   = scape.Params
	RunRecord       = model.RunRecord
)

var (
	NewVector      = bitvec.New
	ParseVector    = bitvec.Parse
	ParseHex       = bitvec.ParseHex
	NewLayout      = genotype.NewLayout
	NewChromosome  = genotype.NewChromosome
	NewEngine      = evo.NewEngine
	DefaultConfig  = evo.DefaultConfig
	NewRandom      = random.New
	NewProblem     = scape.New
	ProblemFitness = scape.Fitness
)

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *zap.Logger
}

// Client runs named problems and records their history in a store.
type Client struct {
	store  storage.Store
	logger *zap.Logger

	initOnce sync.Once
	initErr  error
}

type RunRequest struct {
	Problem     string
	ProblemSize int
	Target      string
	Population  int
	Generations int
	Seed        int64
	Workers     int

	// Zero rates keep the engine defaults.
	MutationRate  float64
	CrossoverRate float64
	Crossover     string
	Selector      string
	Schedule      string
	Mutator       string

	// Zero values keep the engine defaults.
	CrossoverPoints   int
	ProportionalBits  float64
	SelfAdaptiveFloor float64
	SelfAdaptiveRate  float64

	TournamentSize    int
	EliteCount        int
	MutatedEliteCount int
	// MutatedEliteRate defaults to the mutation rate when nil.
	MutatedEliteRate  *float64
	RespectBoundaries bool
	AllowSameParents  bool
	TargetScore       *float64

	// Observer sees every generation as it completes.
	Observer func(GenerationStats)
}

type RunSummary struct {
	RunID           string
	Problem         string
	Generations     int
	Evaluations     int
	BestScore       float64
	BestChromosome  string
	BestDescription string
	History         []GenerationStats
	Duration        time.Duration
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type ProblemItem struct {
	Name        string
	Description string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// Run builds an engine for req.Problem, runs it to completion and records
// the result.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	if req.Problem == "" {
		req.Problem = defaultProblem
	}
	if req.Population <= 0 {
		req.Population = defaultPopulation
	}
	if req.Generations <= 0 {
		req.Generations = defaultGenerations
	}

	problem, err := scape.New(req.Problem, scape.Params{Size: req.ProblemSize, Seed: req.Seed, Target: req.Target})
	if err != nil {
		return RunSummary{}, err
	}
	cfg, err := engineConfig(req, problem)
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	cfg.Logger = c.logger.With(zap.String("run_id", runID), zap.String("problem", problem.Name()))
	engine, err := evo.NewEngine(cfg)
	if err != nil {
		return RunSummary{}, err
	}

	started := time.Now().UTC()
	result, err := engine.Run(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("run %s: %w", problem.Name(), err)
	}
	elapsed := time.Since(started)

	best := result.Best
	record := model.RunRecord{
		VersionedRecord: storage.Versioned(),
		ID:              runID,
		Problem:         problem.Name(),
		Seed:            req.Seed,
		CreatedAt:       started,
		DurationMillis:  elapsed.Milliseconds(),
		PopulationSize:  cfg.PopulationSize,
		BitsRequired:    cfg.Layout.BitsRequired(),
		Generations:     engine.Generation(),
		Evaluations:     engine.Evaluations(),
		Crossover:       engine.Config().Crossover.String(),
		Selector:        engine.Config().Selector.String(),
		Schedule:        engine.Config().Schedule.String(),
		BestScore:       best.Score(),
		BestChromosome:  best.Hex(),
		BestDescription: problem.Describe(&best.Chromosome),
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run %s: %w", runID, err)
	}
	if err := c.store.SaveGenerationStats(ctx, runID, toModelStats(result.History)); err != nil {
		return RunSummary{}, fmt.Errorf("save generation stats %s: %w", runID, err)
	}

	return RunSummary{
		RunID:           runID,
		Problem:         record.Problem,
		Generations:     record.Generations,
		Evaluations:     record.Evaluations,
		BestScore:       record.BestScore,
		BestChromosome:  record.BestChromosome,
		BestDescription: record.BestDescription,
		History:         result.History,
		Duration:        elapsed,
	}, nil
}

func engineConfig(req RunRequest, problem scape.Scape) (evo.Config, error) {
	cfg := evo.DefaultConfig()
	cfg.Layout = problem.Layout()
	cfg.Fitness = scape.Fitness(problem)
	cfg.PopulationSize = req.Population
	cfg.TotalGenerations = req.Generations
	cfg.Seed = req.Seed
	cfg.Workers = req.Workers
	cfg.TargetScore = req.TargetScore
	cfg.Observer = req.Observer
	cfg.RespectGeneBoundaries = req.RespectBoundaries
	cfg.AllowSameParentCouples = req.AllowSameParents
	cfg.EliteCount = req.EliteCount
	cfg.MutatedEliteCount = req.MutatedEliteCount
	if req.MutationRate != 0 {
		cfg.MutationRate = req.MutationRate
	}
	cfg.MutatedEliteMutationRate = cfg.MutationRate
	if req.MutatedEliteRate != nil {
		cfg.MutatedEliteMutationRate = *req.MutatedEliteRate
	}
	if req.CrossoverRate != 0 {
		cfg.CrossoverRate = req.CrossoverRate
	}
	if req.CrossoverPoints != 0 {
		cfg.CrossoverPoints = req.CrossoverPoints
	}
	if req.ProportionalBits != 0 {
		cfg.ProportionalBits = req.ProportionalBits
	}
	if req.SelfAdaptiveFloor != 0 {
		cfg.SelfAdaptiveFloor = req.SelfAdaptiveFloor
	}
	if req.SelfAdaptiveRate != 0 {
		cfg.SelfAdaptiveRate = req.SelfAdaptiveRate
	}
	if req.TournamentSize != 0 {
		cfg.TournamentSize = req.TournamentSize
	}
	if req.Mutator != "" {
		cfg.Mutator = req.Mutator
	}

	var err error
	if req.Crossover != "" {
		if cfg.Crossover, err = evo.ParseCrossover(req.Crossover); err != nil {
			return cfg, err
		}
	}
	if req.Selector != "" {
		if cfg.Selector, err = evo.ParseSelector(req.Selector); err != nil {
			return cfg, err
		}
	}
	if req.Schedule != "" {
		if cfg.Schedule, err = evo.ParseSchedule(req.Schedule); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func toModelStats(history []evo.GenerationStats) []model.GenerationStats {
	out := make([]model.GenerationStats, 0, len(history))
	for _, h := range history {
		out = append(out, model.GenerationStats{
			Generation:        h.Generation,
			MinScore:          h.MinScore,
			MaxScore:          h.MaxScore,
			MeanScore:         h.MeanScore,
			StdDevScore:       h.StdDevScore,
			Diversity:         h.Diversity,
			DistinctGenotypes: h.DistinctGenotypes,
			MutationRate:      h.MutationRate,
			Evaluations:       h.Evaluations,
		})
	}
	return out
}

// Runs lists recorded runs newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	return c.store.ListRuns(ctx, limit)
}

func (c *Client) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return RunRecord{}, err
	}
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return RunRecord{}, err
	}
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", storage.ErrRunNotFound, runID)
	}
	return run, nil
}

// History returns the per-generation statistics of one run.
func (c *Client) History(ctx context.Context, req HistoryRequest) ([]model.GenerationStats, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetGenerationStats(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrRunNotFound, runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

// Export writes a recorded run and its history under OutDir.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if err := c.Init(ctx); err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = defaultExportsDir
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	run, err := c.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	history, _, err := c.store.GetGenerationStats(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}

	dir, err := stats.ExportRun(req.OutDir, run, history)
	if err != nil {
		return ExportSummary{}, fmt.Errorf("export run %s: %w", runID, err)
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(dir)}, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if !latest {
		if runID == "" {
			return "", errors.New("run id or latest is required")
		}
		return runID, nil
	}
	runs, err := c.store.ListRuns(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: no runs recorded", storage.ErrRunNotFound)
	}
	return runs[0].ID, nil
}

func Problems() []ProblemItem {
	names := scape.Names()
	out := make([]ProblemItem, 0, len(names))
	for _, name := range names {
		out = append(out, ProblemItem{Name: name, Description: scape.Description(name)})
	}
	return out
}

// Decode renders a hex chromosome of bitCount bits in binary form. A
// bitCount of zero takes every hex digit.
func Decode(hex string, bitCount int) (string, error) {
	v, err := bitvec.ParseHex(hex, bitCount)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}
