package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCLI(t *testing.T) (*cli, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	c := &cli{out: &out, logger: zap.NewNop()}
	t.Cleanup(func() {
		_ = c.close()
	})
	return c, &out
}

var runIDPattern = regexp.MustCompile(`run_id=([0-9a-f-]+)`)

func TestRunThenRunsAndHistory(t *testing.T) {
	ctx := context.Background()
	c, out := newTestCLI(t)

	err := c.execute(ctx, []string{
		"run", "--store", "memory",
		"--problem", "one_max", "--size", "24",
		"--population", "12", "--generations", "5", "--seed", "3",
		"--show-history",
	})
	require.NoError(t, err)
	text := out.String()
	match := runIDPattern.FindStringSubmatch(text)
	require.NotNil(t, match, "run output has no run id:\n%s", text)
	runID := match[1]
	// Generation 0 plus five bred generations.
	assert.Equal(t, 6, strings.Count(text, "generation="), text)
	assert.Contains(t, text, "evaluations=72")
	assert.Contains(t, text, "best_chromosome=")

	out.Reset()
	require.NoError(t, c.execute(ctx, []string{"runs", "--store", "memory"}))
	assert.Contains(t, out.String(), "run_id="+runID)
	assert.Contains(t, out.String(), "problem=one_max")

	out.Reset()
	require.NoError(t, c.execute(ctx, []string{"history", "--store", "memory", "--run-id", runID, "--limit", "2"}))
	assert.Equal(t, 2, strings.Count(out.String(), "generation="), out.String())

	out.Reset()
	require.NoError(t, c.execute(ctx, []string{"history", "--store", "memory", "--latest"}))
	assert.True(t, strings.HasPrefix(out.String(), "generation=0 "), out.String())

	out.Reset()
	exportDir := t.TempDir()
	require.NoError(t, c.execute(ctx, []string{"export", "--store", "memory", "--latest", "--out", exportDir}))
	_, err = os.Stat(filepath.Join(exportDir, runID, "generation_stats.csv"))
	require.NoError(t, err, out.String())
}

func TestRunPassesOperatorFlags(t *testing.T) {
	c, out := newTestCLI(t)
	err := c.execute(context.Background(), []string{
		"run", "--store", "memory",
		"--problem", "one_max", "--size", "16",
		"--population", "10", "--generations", "3",
		"--crossover", "k_point", "--crossover-points", "4",
		"--schedule", "proportional", "--proportional-bits", "2",
		"--elite", "1", "--mutated-elite", "2", "--mutated-elite-rate", "0.2",
		"--show-history",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "mutation_rate=0.1250")
}

func TestRunsEmptyStore(t *testing.T) {
	c, out := newTestCLI(t)
	require.NoError(t, c.execute(context.Background(), []string{"runs", "--store", "memory"}))
	assert.Equal(t, "no runs found", strings.TrimSpace(out.String()))
}

func TestHistoryRequiresRunSelection(t *testing.T) {
	c, _ := newTestCLI(t)
	require.Error(t, c.execute(context.Background(), []string{"history", "--store", "memory"}))
	require.Error(t, c.execute(context.Background(), []string{"history", "--store", "memory", "--run-id", "x", "--latest"}))
}

func TestProblemsCommand(t *testing.T) {
	c, out := newTestCLI(t)
	require.NoError(t, c.execute(context.Background(), []string{"problems"}))
	for _, name := range []string{"target_bits", "one_max", "sphere", "knapsack", "integer_target"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestDecodeCommand(t *testing.T) {
	c, out := newTestCLI(t)
	require.NoError(t, c.execute(context.Background(), []string{"decode", "--hex", "0x1f", "--bits", "6"}))
	assert.Equal(t, "011111", strings.TrimSpace(out.String()))

	for _, empty := range []string{"", "0x"} {
		out.Reset()
		require.NoError(t, c.execute(context.Background(), []string{"decode", "--hex", empty}), "hex %q", empty)
		assert.Equal(t, "\n", out.String())
	}

	require.Error(t, c.execute(context.Background(), []string{"decode"}), "missing --hex")
}

func TestRunRejectsUnknownProblem(t *testing.T) {
	c, _ := newTestCLI(t)
	err := c.execute(context.Background(), []string{"run", "--store", "memory", "--problem", "xor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown problem")
}

func TestUnknownCommand(t *testing.T) {
	c, _ := newTestCLI(t)
	require.Error(t, c.execute(context.Background(), []string{"benchmark"}))
}

func TestInvalidLogLevel(t *testing.T) {
	var out bytes.Buffer
	c := &cli{out: &out}
	t.Cleanup(func() { _ = c.close() })
	require.Error(t, c.execute(context.Background(), []string{"problems", "--log-level", "loud"}))
}
