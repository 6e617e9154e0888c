package signal

// NewGreen returns the green channel strategy: the waveform is the
// normalized mean green value, which carries most of the blood volume
// signal in skin.
func NewGreen(opts ...Option) Strategy {
	return newStrategy(GreenName, greenWaveform, opts)
}

func greenWaveform(window []Sample) []float64 {
	return Normalize(channel(window, Green))
}
