package evo

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownCrossover = errors.New("unknown crossover")
	ErrUnknownSelector  = errors.New("unknown selector")
	ErrUnknownSchedule  = errors.New("unknown mutation schedule")
)

// CrossoverKind selects the crossover operator. The zero value means the
// default, two-point crossover.
type CrossoverKind int

const (
	CrossoverDefault CrossoverKind = iota
	CrossoverOnePoint
	CrossoverTwoPoint
	CrossoverKPoint
	CrossoverUniform
)

var crossoverNames = map[CrossoverKind]string{
	CrossoverOnePoint: "one_point",
	CrossoverTwoPoint: "two_point",
	CrossoverKPoint:   "k_point",
	CrossoverUniform:  "uniform",
}

func (k CrossoverKind) String() string {
	return kindString(crossoverNames, k, "crossover")
}

func (k CrossoverKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CrossoverKind) UnmarshalText(text []byte) error {
	parsed, err := ParseCrossover(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func ParseCrossover(name string) (CrossoverKind, error) {
	return parseKind(crossoverNames, name, ErrUnknownCrossover)
}

func CrossoverNames() []string {
	return kindNames(crossoverNames)
}

// SelectorKind selects how parents are drawn. The zero value means the
// default, roulette wheel selection.
type SelectorKind int

const (
	SelectorDefault SelectorKind = iota
	SelectRank
	SelectUniform
	SelectRouletteWheel
	SelectTournament
)

var selectorNames = map[SelectorKind]string{
	SelectRank:          "rank",
	SelectUniform:       "uniform",
	SelectRouletteWheel: "roulette_wheel",
	SelectTournament:    "tournament",
}

func (k SelectorKind) String() string {
	return kindString(selectorNames, k, "selector")
}

func (k SelectorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SelectorKind) UnmarshalText(text []byte) error {
	parsed, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func ParseSelector(name string) (SelectorKind, error) {
	return parseKind(selectorNames, name, ErrUnknownSelector)
}

func SelectorNames() []string {
	return kindNames(selectorNames)
}

// Schedule selects how the per-generation mutation rate is derived. The zero
// value means the default, a constant rate.
type Schedule int

const (
	ScheduleDefault Schedule = iota
	ScheduleConstant
	ScheduleDeterministic
	ScheduleSelfAdaptive
	ScheduleProportional
)

var scheduleNames = map[Schedule]string{
	ScheduleConstant:      "constant",
	ScheduleDeterministic: "deterministic",
	ScheduleSelfAdaptive:  "self_adaptive",
	ScheduleProportional:  "proportional",
}

func (s Schedule) String() string {
	return kindString(scheduleNames, s, "schedule")
}

func (s Schedule) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Schedule) UnmarshalText(text []byte) error {
	parsed, err := ParseSchedule(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseSchedule(name string) (Schedule, error) {
	return parseKind(scheduleNames, name, ErrUnknownSchedule)
}

func ScheduleNames() []string {
	return kindNames(scheduleNames)
}

func kindString[K ~int](names map[K]string, k K, label string) string {
	if name, ok := names[k]; ok {
		return name
	}
	if k == 0 {
		return "default"
	}
	return fmt.Sprintf("%s(%d)", label, int(k))
}

// parseKind accepts the canonical names plus "default", which maps to the
// zero value.
func parseKind[K ~int](names map[K]string, name string, unknown error) (K, error) {
	var zero K
	if name == "" || name == "default" {
		return zero, nil
	}
	for k, candidate := range names {
		if candidate == name {
			return k, nil
		}
	}
	return zero, fmt.Errorf("%w: %q (want one of %v)", unknown, name, kindNames(names))
}

func kindNames[K ~int](names map[K]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
