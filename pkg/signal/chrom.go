package signal

// NewChrom returns the chrominance strategy. Each channel is divided by its
// window mean, projected onto two chrominance axes that cancel specular
// reflections, and the axes are combined weighted by their spread.
func NewChrom(opts ...Option) Strategy {
	return newStrategy(ChromName, chromWaveform, opts)
}

func chromWaveform(window []Sample) []float64 {
	r := unitMean(channel(window, Red))
	g := unitMean(channel(window, Green))
	b := unitMean(channel(window, Blue))

	xs := make([]float64, len(window))
	ys := make([]float64, len(window))
	for i := range window {
		xs[i] = 3*r[i] - 2*g[i]
		ys[i] = 1.5*r[i] + g[i] - 1.5*b[i]
	}

	alpha := 0.0
	if sy := stddev(ys); sy > 0 {
		alpha = stddev(xs) / sy
	}

	s := make([]float64, len(window))
	for i := range window {
		s[i] = xs[i] - alpha*ys[i]
	}
	return Normalize(s)
}

// unitMean divides values by their mean. A zero mean channel stays zero.
func unitMean(values []float64) []float64 {
	out := make([]float64, len(values))
	m := mean(values)
	if m == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / m
	}
	return out
}
