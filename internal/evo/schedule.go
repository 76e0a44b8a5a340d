package evo

// mutationRate derives the rate for a generation. diversity is only called
// by the self-adaptive schedule.
func mutationRate(cfg Config, generation, bits int, diversity func() (float64, error)) float64 {
	switch cfg.Schedule {
	case ScheduleDeterministic:
		// 1/(2 + (n-2)/(T-1) * t) falls from 1/2 at t=0 to 1/n at t=T-1.
		total := cfg.TotalGenerations
		if total <= 1 || bits < 2 || generation >= total {
			return cfg.MutationRate
		}
		n := float64(bits)
		return 1 / (2 + (n-2)/float64(total-1)*float64(generation))
	case ScheduleSelfAdaptive:
		d, err := diversity()
		if err == nil && d < cfg.SelfAdaptiveFloor {
			return cfg.SelfAdaptiveRate
		}
		return cfg.MutationRate
	case ScheduleProportional:
		if bits == 0 {
			return 0
		}
		rate := cfg.ProportionalBits / float64(bits)
		if rate > 1 {
			return 1
		}
		return rate
	default:
		return cfg.MutationRate
	}
}
