package storage

import (
	"context"
	"errors"

	"bitgen/internal/model"
)

var ErrRunNotFound = errors.New("run not found")

// Store persists run history for reporting. It never holds live engine
// state.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns runs newest first; limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveGenerationStats(ctx context.Context, runID string, stats []model.GenerationStats) error
	GetGenerationStats(ctx context.Context, runID string) ([]model.GenerationStats, bool, error)
}
