package evo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedDiversity(d float64) func() (float64, error) {
	return func() (float64, error) { return d, nil }
}

func TestMutationRateSchedules(t *testing.T) {
	base := DefaultConfig()
	base.MutationRate = 0.03
	base.TotalGenerations = 10

	with := func(s Schedule, edit func(*Config)) Config {
		cfg := base
		cfg.Schedule = s
		if edit != nil {
			edit(&cfg)
		}
		return cfg
	}
	failing := func() (float64, error) { return 0, errors.New("no population") }

	cases := []struct {
		name      string
		cfg       Config
		gen       int
		bits      int
		diversity func() (float64, error)
		want      float64
	}{
		{"constant", with(ScheduleConstant, nil), 4, 100, nil, 0.03},
		{"deterministic start", with(ScheduleDeterministic, nil), 0, 10, nil, 0.5},
		{"deterministic end", with(ScheduleDeterministic, nil), 9, 10, nil, 0.1},
		{"deterministic middle", with(ScheduleDeterministic, nil), 3, 11, nil, 1 / (2 + 9.0/9*3)},
		{"deterministic past budget", with(ScheduleDeterministic, nil), 10, 10, nil, 0.03},
		{"deterministic single generation", with(ScheduleDeterministic, func(c *Config) { c.TotalGenerations = 1 }), 0, 10, nil, 0.03},
		{"deterministic no budget", with(ScheduleDeterministic, func(c *Config) { c.TotalGenerations = 0 }), 0, 10, nil, 0.03},
		{"self adaptive low diversity", with(ScheduleSelfAdaptive, nil), 0, 10, fixedDiversity(0.1), 0.20},
		{"self adaptive high diversity", with(ScheduleSelfAdaptive, nil), 0, 10, fixedDiversity(0.5), 0.03},
		{"self adaptive custom floor", with(ScheduleSelfAdaptive, func(c *Config) { c.SelfAdaptiveFloor = 0.6; c.SelfAdaptiveRate = 0.4 }), 0, 10, fixedDiversity(0.5), 0.4},
		{"self adaptive without diversity", with(ScheduleSelfAdaptive, nil), 0, 10, failing, 0.03},
		{"proportional", with(ScheduleProportional, nil), 0, 200, nil, 0.005},
		{"proportional several bits", with(ScheduleProportional, func(c *Config) { c.ProportionalBits = 4 }), 0, 200, nil, 0.02},
		{"proportional capped", with(ScheduleProportional, func(c *Config) { c.ProportionalBits = 500 }), 0, 200, nil, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, mutationRate(tc.cfg, tc.gen, tc.bits, tc.diversity), 1e-12)
		})
	}
}
