package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"bitgen/pkg/bitgen"
)

// runConfig is the YAML form of a run. Flags set on the command line win
// over values loaded from a file.
type runConfig struct {
	Problem     string `yaml:"problem"`
	ProblemSize int    `yaml:"problem_size"`
	Target      string `yaml:"target"`
	Population  int    `yaml:"population"`
	Generations int    `yaml:"generations"`
	Seed        int64  `yaml:"seed"`
	Workers     int    `yaml:"workers"`

	MutationRate  float64 `yaml:"mutation_rate"`
	CrossoverRate float64 `yaml:"crossover_rate"`
	Crossover     string  `yaml:"crossover"`
	Selector      string  `yaml:"selector"`
	Schedule      string  `yaml:"schedule"`
	Mutator       string  `yaml:"mutator"`

	CrossoverPoints   int     `yaml:"crossover_points"`
	ProportionalBits  float64 `yaml:"proportional_bits"`
	SelfAdaptiveFloor float64 `yaml:"self_adaptive_floor"`
	SelfAdaptiveRate  float64 `yaml:"self_adaptive_rate"`

	TournamentSize        int      `yaml:"tournament_size"`
	EliteCount            int      `yaml:"elite_count"`
	MutatedEliteCount     int      `yaml:"mutated_elite_count"`
	MutatedEliteRate      *float64 `yaml:"mutated_elite_rate"`
	RespectGeneBoundaries bool     `yaml:"respect_gene_boundaries"`
	AllowSameParents      bool     `yaml:"allow_same_parents"`
	TargetScore           *float64 `yaml:"target_score"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Problem:     "target_bits",
		Population:  100,
		Generations: 200,
		Seed:        1,
		Workers:     1,
	}
}

func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse run config %s: %w", path, err)
	}
	return cfg, nil
}

func (c runConfig) request() bitgen.RunRequest {
	return bitgen.RunRequest{
		Problem:           c.Problem,
		ProblemSize:       c.ProblemSize,
		Target:            c.Target,
		Population:        c.Population,
		Generations:       c.Generations,
		Seed:              c.Seed,
		Workers:           c.Workers,
		MutationRate:      c.MutationRate,
		CrossoverRate:     c.CrossoverRate,
		Crossover:         c.Crossover,
		Selector:          c.Selector,
		Schedule:          c.Schedule,
		Mutator:           c.Mutator,
		CrossoverPoints:   c.CrossoverPoints,
		ProportionalBits:  c.ProportionalBits,
		SelfAdaptiveFloor: c.SelfAdaptiveFloor,
		SelfAdaptiveRate:  c.SelfAdaptiveRate,
		TournamentSize:    c.TournamentSize,
		EliteCount:        c.EliteCount,
		MutatedEliteCount: c.MutatedEliteCount,
		MutatedEliteRate:  c.MutatedEliteRate,
		RespectBoundaries: c.RespectGeneBoundaries,
		AllowSameParents:  c.AllowSameParents,
		TargetScore:       c.TargetScore,
	}
}

// runFlags mirrors runConfig for the command line.
type runFlags struct {
	configPath       string
	values           runConfig
	target           float64
	mutatedEliteRate float64
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	d := defaultRunConfig()
	fs.StringVar(&f.configPath, "config", "", "YAML run config")
	fs.StringVar(&f.values.Problem, "problem", d.Problem, "problem name")
	fs.IntVar(&f.values.ProblemSize, "size", 0, "problem size (bits, genes or items; 0 = problem default)")
	fs.StringVar(&f.values.Target, "target", "", "target_bits pattern in binary")
	fs.IntVar(&f.values.Population, "population", d.Population, "population size")
	fs.IntVar(&f.values.Generations, "generations", d.Generations, "generations to run")
	fs.Int64Var(&f.values.Seed, "seed", d.Seed, "random seed")
	fs.IntVar(&f.values.Workers, "workers", d.Workers, "concurrent fitness evaluations")
	fs.Float64Var(&f.values.MutationRate, "mutation-rate", 0, "per-bit mutation rate (0 = default)")
	fs.Float64Var(&f.values.CrossoverRate, "crossover-rate", 0, "crossover rate (0 = default)")
	fs.StringVar(&f.values.Crossover, "crossover", "", "one_point|two_point|k_point|uniform")
	fs.StringVar(&f.values.Selector, "selector", "", "rank|uniform|roulette_wheel|tournament")
	fs.StringVar(&f.values.Schedule, "schedule", "", "constant|deterministic|self_adaptive|proportional")
	fs.StringVar(&f.values.Mutator, "mutator", "", "registered mutator name")
	fs.IntVar(&f.values.CrossoverPoints, "crossover-points", 0, "k for k_point crossover (0 = default)")
	fs.Float64Var(&f.values.ProportionalBits, "proportional-bits", 0, "bits flipped per mutation under the proportional schedule (0 = default)")
	fs.Float64Var(&f.values.SelfAdaptiveFloor, "self-adaptive-floor", 0, "diversity floor of the self_adaptive schedule (0 = default)")
	fs.Float64Var(&f.values.SelfAdaptiveRate, "self-adaptive-rate", 0, "rate used below the self_adaptive floor (0 = default)")
	fs.IntVar(&f.values.TournamentSize, "tournament-size", 0, "tournament size (0 = default)")
	fs.IntVar(&f.values.EliteCount, "elite", 0, "elites copied unchanged")
	fs.IntVar(&f.values.MutatedEliteCount, "mutated-elite", 0, "elites copied with mutation")
	fs.Float64Var(&f.mutatedEliteRate, "mutated-elite-rate", 0, "mutation rate of mutated elites (default: mutation rate)")
	fs.BoolVar(&f.values.RespectGeneBoundaries, "respect-genes", false, "keep crossover points on gene boundaries")
	fs.BoolVar(&f.values.AllowSameParents, "allow-same-parents", false, "allow an individual to mate with itself")
	fs.Float64Var(&f.target, "target-score", 0, "stop once the best score is at or below this")
}

// resolve loads the config file, if any, and applies every flag the user
// set explicitly on top of it.
func (f *runFlags) resolve(fs *pflag.FlagSet) (runConfig, error) {
	cfg := f.values
	if f.configPath != "" {
		loaded, err := loadRunConfig(f.configPath)
		if err != nil {
			return runConfig{}, err
		}
		cfg = loaded
		overlay := map[string]func(){
			"problem":             func() { cfg.Problem = f.values.Problem },
			"size":                func() { cfg.ProblemSize = f.values.ProblemSize },
			"target":              func() { cfg.Target = f.values.Target },
			"population":          func() { cfg.Population = f.values.Population },
			"generations":         func() { cfg.Generations = f.values.Generations },
			"seed":                func() { cfg.Seed = f.values.Seed },
			"workers":             func() { cfg.Workers = f.values.Workers },
			"mutation-rate":       func() { cfg.MutationRate = f.values.MutationRate },
			"crossover-rate":      func() { cfg.CrossoverRate = f.values.CrossoverRate },
			"crossover":           func() { cfg.Crossover = f.values.Crossover },
			"selector":            func() { cfg.Selector = f.values.Selector },
			"schedule":            func() { cfg.Schedule = f.values.Schedule },
			"mutator":             func() { cfg.Mutator = f.values.Mutator },
			"crossover-points":    func() { cfg.CrossoverPoints = f.values.CrossoverPoints },
			"proportional-bits":   func() { cfg.ProportionalBits = f.values.ProportionalBits },
			"self-adaptive-floor": func() { cfg.SelfAdaptiveFloor = f.values.SelfAdaptiveFloor },
			"self-adaptive-rate":  func() { cfg.SelfAdaptiveRate = f.values.SelfAdaptiveRate },
			"tournament-size":     func() { cfg.TournamentSize = f.values.TournamentSize },
			"elite":               func() { cfg.EliteCount = f.values.EliteCount },
			"mutated-elite":       func() { cfg.MutatedEliteCount = f.values.MutatedEliteCount },
			"respect-genes":       func() { cfg.RespectGeneBoundaries = f.values.RespectGeneBoundaries },
			"allow-same-parents":  func() { cfg.AllowSameParents = f.values.AllowSameParents },
		}
		fs.Visit(func(fl *pflag.Flag) {
			if apply, ok := overlay[fl.Name]; ok {
				apply()
			}
		})
	}
	if fs.Changed("target-score") {
		target := f.target
		cfg.TargetScore = &target
	}
	if fs.Changed("mutated-elite-rate") {
		rate := f.mutatedEliteRate
		cfg.MutatedEliteRate = &rate
	}
	return cfg, nil
}
