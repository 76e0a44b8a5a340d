package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreMemory(t *testing.T) {
	for _, kind := range []string{"", "memory"} {
		store, err := NewStore(kind, "")
		require.NoError(t, err, "kind %q", kind)
		assert.IsType(t, &MemoryStore{}, store)
		require.NoError(t, CloseIfSupported(store))
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("unknown", "")
	require.Error(t, err)
}

func TestCloseIfSupportedNilStore(t *testing.T) {
	require.NoError(t, CloseIfSupported(nil))
}

func TestMemoryStoreInitResets(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.SaveRun(ctx, testRun("r", time.Unix(1, 0))))
	require.NoError(t, store.Init(ctx))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDefaultStoreKindIsBuildable(t *testing.T) {
	store, err := NewStore(DefaultStoreKind(), filepath.Join(t.TempDir(), "bitgen.db"))
	require.NoError(t, err, "default store %q", DefaultStoreKind())
	require.NoError(t, store.Init(context.Background()))
	require.NoError(t, CloseIfSupported(store))
}
