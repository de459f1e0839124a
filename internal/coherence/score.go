package coherence

// Params bundles the tunable constants of the coherence model. The zero
// value is unusable; start from DefaultParams.
type Params struct {
	// Sigma is the coupling ceiling applied to every score.
	Sigma float64 `json:"sigma"`
}

// DefaultParams returns the published calibration.
func DefaultParams() Params {
	return Params{Sigma: Sigma}
}

// AgentScore derives one agent's coherence from its trust level and
// cooperation tendency, weighted equally. Inputs are clamped to [0,1];
// the result lands in [MinScore, 1].
func (p Params) AgentScore(trust, tendency float64) float64 {
	t := clamp(trust, 0, 1)
	c := clamp(tendency, 0, 1)
	return clamp(p.Sigma*(0.5*t+0.5*c), MinScore, 1)
}

// PopulationScore aggregates per-agent scores into the population signal S*.
// Alignment is the mean agent score; spread in either trust or tendency
// drags the aggregate down, so a polarized population scores well below a
// uniform one with the same mean.
func (p Params) PopulationScore(scores, trusts, tendencies []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	alignment := Mean(scores)
	spreadT := Variance(trusts)
	spreadC := Variance(tendencies)
	return clamp(p.Sigma*alignment*(1-spreadT)*(1-spreadC), 0, 1)
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the population variance of xs, or 0 for fewer than two
// values.
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
