package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarizes one finished engine run.
type RunRecord struct {
	VersionedRecord
	ID              string    `json:"id"`
	Problem         string    `json:"problem"`
	Seed            int64     `json:"seed"`
	CreatedAt       time.Time `json:"created_at"`
	DurationMillis  int64     `json:"duration_ms"`
	PopulationSize  int       `json:"population_size"`
	BitsRequired    int       `json:"bits_required"`
	Generations     int       `json:"generations"`
	Evaluations     int       `json:"evaluations"`
	Crossover       string    `json:"crossover"`
	Selector        string    `json:"selector"`
	Schedule        string    `json:"schedule"`
	BestScore       float64   `json:"best_score"`
	BestChromosome  string    `json:"best_chromosome"`
	BestDescription string    `json:"best_description,omitempty"`
}

// GenerationStats is the persisted form of one generation's statistics.
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
