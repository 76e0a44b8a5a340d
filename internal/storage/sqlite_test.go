//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitgen/internal/model"
)

func openSQLiteStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()

	store := NewSQLiteStore(path)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSQLiteStoreRunsAndStatsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openSQLiteStore(t, filepath.Join(t.TempDir(), "bitgen.db"))

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		run := testRun(id, base.Add(time.Duration(i)*time.Minute))
		run.BestScore = float64(i)
		require.NoError(t, store.SaveRun(ctx, run))
	}

	got, ok, err := store.GetRun(ctx, "r2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, got.BestScore)

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r2"}, runIDs(runs))

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stats := []model.GenerationStats{{Generation: 0, MaxScore: 2, Evaluations: 10}}
	require.NoError(t, store.SaveGenerationStats(ctx, "r1", stats))
	loaded, ok, err := store.GetGenerationStats(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stats, loaded)

	_, ok, err = store.GetGenerationStats(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreOrdersSubSecondTimestamps(t *testing.T) {
	ctx := context.Background()
	store := openSQLiteStore(t, filepath.Join(t.TempDir(), "bitgen.db"))

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, testRun("whole", base)))
	require.NoError(t, store.SaveRun(ctx, testRun("fraction", base.Add(500*time.Millisecond))))
	require.NoError(t, store.SaveRun(ctx, testRun("nano", base.Add(time.Nanosecond))))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"fraction", "nano", "whole"}, runIDs(runs))
}

func TestSQLiteStoreUpsertsRuns(t *testing.T) {
	ctx := context.Background()
	store := openSQLiteStore(t, filepath.Join(t.TempDir(), "bitgen.db"))

	run := testRun("same", time.Unix(10, 0).UTC())
	require.NoError(t, store.SaveRun(ctx, run))
	run.BestScore = 42
	require.NoError(t, store.SaveRun(ctx, run))

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 42.0, all[0].BestScore)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "bitgen.db")

	first := NewSQLiteStore(dbPath)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.SaveRun(ctx, testRun("persist", time.Now().UTC())))
	require.NoError(t, first.Close())

	second := openSQLiteStore(t, dbPath)
	_, ok, err := second.GetRun(ctx, "persist")
	require.NoError(t, err)
	assert.True(t, ok, "expected reopened run")
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "bitgen.db"))
	_, err := store.ListRuns(context.Background(), 0)
	require.ErrorIs(t, err, errNotInitialized)
}
