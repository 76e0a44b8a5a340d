package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitgen/internal/model"
)

func TestDecodeRunFixture(t *testing.T) {
	run, err := DecodeRun(readFixture(t, "run_v1.json"))
	require.NoError(t, err)
	assert.Equal(t, "run-fixture-1", run.ID)
	assert.Equal(t, "one_max", run.Problem)
	assert.Equal(t, "ffff", run.BestChromosome)
	assert.Equal(t, 16.0, run.BestScore)
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.True(t, run.CreatedAt.Equal(want), "unexpected created_at: %s", run.CreatedAt)
}

func TestDecodeRunRejectsOldSchema(t *testing.T) {
	_, err := DecodeRun(readFixture(t, "run_v0.json"))
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestRunRoundTrip(t *testing.T) {
	in := model.RunRecord{
		VersionedRecord: Versioned(),
		ID:              "r1",
		Problem:         "sphere",
		Seed:            -3,
		CreatedAt:       time.Date(2026, 5, 6, 7, 8, 9, 10, time.UTC),
		PopulationSize:  20,
		BitsRequired:    192,
		Generations:     4,
		BestScore:       -0.25,
		BestChromosome:  "00ff",
	}
	data, err := EncodeRun(in)
	require.NoError(t, err)
	out, err := DecodeRun(data)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestGenerationStatsRoundTrip(t *testing.T) {
	in := []model.GenerationStats{
		{Generation: 0, MinScore: 1, MaxScore: 4, MeanScore: 2.5, Diversity: 0.5, DistinctGenotypes: 3, Evaluations: 10},
		{Generation: 1, MinScore: 2, MaxScore: 5, MeanScore: 3, MutationRate: 0.01, Evaluations: 20},
	}
	data, err := EncodeGenerationStats(in)
	require.NoError(t, err)
	out, err := DecodeGenerationStats(data)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestDecodeRunMalformed(t *testing.T) {
	_, err := DecodeRun([]byte("{"))
	require.Error(t, err)
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(fixturePath(name))
	require.NoError(t, err, "read fixture")
	return data
}
