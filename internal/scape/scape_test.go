package scape

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitgen/internal/bitvec"
	"bitgen/internal/evo"
	"bitgen/internal/genotype"
)

func TestNamesAndLookup(t *testing.T) {
	want := []string{"integer_target", "knapsack", "one_max", "sphere", "target_bits"}
	require.Equal(t, want, Names())
	for _, name := range want {
		s, err := New(name, Params{Seed: 1})
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
		assert.NotZero(t, s.Layout().BitsRequired(), "%s has an empty layout", name)
		assert.NotEmpty(t, Description(name), "%s has no description", name)
	}
	_, err := Lookup("OneMax")
	require.NoError(t, err, "alias lookup")
	_, err = Lookup("travelling_salesman")
	require.ErrorIs(t, err, ErrUnknownProblem)
	_, err = New("sphere", Params{Size: -1})
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	require.Error(t, Register("one-max", "dup", newOneMax))
	require.ErrorIs(t, Register("", "none", newOneMax), ErrInvalidParams)
}

func TestTargetBitsScoresHammingDistance(t *testing.T) {
	s, err := New("target_bits", Params{Target: "1010"})
	require.NoError(t, err)
	c := genotype.NewChromosome(s.Layout())
	assert.Equal(t, 2.0, s.Score(c))

	target, err := bitvec.Parse("1010")
	require.NoError(t, err)
	require.NoError(t, c.SetBits(target))
	assert.Zero(t, s.Score(c))

	_, err = New("target_bits", Params{Target: "10x"})
	require.ErrorIs(t, err, ErrInvalidParams, "bad target")
	_, err = New("target_bits", Params{Target: "101", Size: 4})
	require.ErrorIs(t, err, ErrInvalidParams, "size mismatch")
}

func TestTargetBitsSeedIsDeterministic(t *testing.T) {
	target := func(seed int64) *bitvec.Vector {
		s, err := New("target_bits", Params{Size: 100, Seed: seed})
		require.NoError(t, err)
		return s.(*TargetBits).Target()
	}
	assert.True(t, target(5).Equal(target(5)), "same seed produced different targets")
	assert.False(t, target(5).Equal(target(6)), "different seeds produced the same target")
}

func TestOneMax(t *testing.T) {
	s, err := New("one_max", Params{Size: 10})
	require.NoError(t, err)
	c := genotype.NewChromosome(s.Layout())
	assert.Equal(t, 10.0, s.Score(c))
	c.EncodeBool(3, true)
	assert.Equal(t, 9.0, s.Score(c))
}

func TestSphereOptimumNearZero(t *testing.T) {
	s, err := New("sphere", Params{Size: 3})
	require.NoError(t, err)
	sphere := s.(*Sphere)
	c := genotype.NewChromosome(s.Layout())
	for i := 0; i < 3; i++ {
		c.EncodeFloat64(i, 0, -sphereBound, sphereBound)
	}
	assert.LessOrEqual(t, s.Score(c), 1e-9)
	c.EncodeFloat64(1, sphereBound, -sphereBound, sphereBound)
	assert.InDelta(t, sphereBound*sphereBound, s.Score(c), 1e-6)
	assert.Len(t, sphere.Values(c), 3)
	assert.True(t, strings.HasPrefix(s.Describe(c), "["), "unexpected description: %s", s.Describe(c))
}

func TestKnapsackPenalizesOverweight(t *testing.T) {
	k, err := NewKnapsack([]Item{{Weight: 5, Value: 10}, {Weight: 4, Value: 7}, {Weight: 3, Value: 1}}, 8)
	require.NoError(t, err)
	c := genotype.NewChromosome(k.Layout())
	assert.Equal(t, 18.0, k.Score(c), "empty knapsack")
	c.EncodeBool(0, true)
	c.EncodeBool(2, true)
	assert.Equal(t, 7.0, k.Score(c), "feasible packing")
	c.EncodeBool(1, true)
	// weight 12 exceeds 8 by 4.
	assert.Equal(t, float64(4*overweightPenalty), k.Score(c), "overweight packing")

	_, err = NewKnapsack(nil, 3)
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestIntegerTargetUsesByteAlignedModuloGenes(t *testing.T) {
	s, err := NewIntegerTarget([]uint64{10, 999})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		assert.Zero(t, s.Layout().GeneStart(i)%8, "gene %d start", i)
		assert.Zero(t, s.Layout().GeneWidth(i)%8, "gene %d width", i)
	}
	c := genotype.NewChromosome(s.Layout())
	c.EncodeUint64(0, 1010)
	c.EncodeUint64(1, 999)
	assert.Equal(t, []uint64{10, 999}, s.Values(c))
	assert.Zero(t, s.Score(c))
	assert.Equal(t, "10->10 999->999", s.Describe(c))

	_, err = NewIntegerTarget([]uint64{1000})
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestProblemsImproveUnderEngine(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, Params{Seed: 3})
			require.NoError(t, err)
			cfg := evo.DefaultConfig()
			cfg.Layout = s.Layout()
			cfg.Fitness = Fitness(s)
			cfg.PopulationSize = 40
			cfg.TotalGenerations = 40
			cfg.EliteCount = 1
			cfg.Selector = evo.SelectTournament
			cfg.TournamentSize = 3
			cfg.Seed = 3
			engine, err := evo.NewEngine(cfg)
			require.NoError(t, err)
			result, err := engine.Run(context.Background())
			require.NoError(t, err)

			require.Len(t, result.History, cfg.TotalGenerations+1)
			first, last := result.History[0], result.History[len(result.History)-1]
			assert.LessOrEqual(t, last.MinScore, first.MinScore, "best score got worse")
			assert.Equal(t, last.MinScore, s.Score(&result.Best.Chromosome))
		})
	}
}
