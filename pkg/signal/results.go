package signal

// Summary is what a strategy reports once its session is over.
type Summary struct {
	Strategy   string
	FrameRate  float64
	WindowSize int
	Samples    int
	Windows    int
	// Waveform has one value per sample: the mean of every normalized
	// window value that covered that sample.
	Waveform []float64
	// Estimates holds one pulse rate per window that had at least two
	// peaks, in beats per minute.
	Estimates []float64
	// PulseRate is the median of Estimates, zero when there are none.
	PulseRate float64
}

const (
	minPulseRate = 40
	maxPulseRate = 240
	peakLevel    = 0.5
)

func aggregate(name string, samples []Sample, frameRate float64, windowSize int, derive func([]Sample) []float64) Summary {
	n := len(samples)
	size := windowSize
	if size > n {
		size = n
	}

	sums := make([]float64, n)
	counts := make([]int, n)
	var estimates []float64
	windows := 0
	for start := 0; start+size <= n; start++ {
		wave := derive(samples[start : start+size])
		for i, v := range wave {
			sums[start+i] += v
			counts[start+i]++
		}
		if bpm, ok := EstimatePulseRate(wave, frameRate); ok {
			estimates = append(estimates, bpm)
		}
		windows++
	}

	waveform := make([]float64, n)
	for i := range sums {
		if counts[i] > 0 {
			waveform[i] = sums[i] / float64(counts[i])
		}
	}

	return Summary{
		Strategy:   name,
		FrameRate:  frameRate,
		WindowSize: windowSize,
		Samples:    n,
		Windows:    windows,
		Waveform:   waveform,
		Estimates:  estimates,
		PulseRate:  median(estimates),
	}
}

// EstimatePulseRate counts local maxima above half height in a normalized
// waveform and converts their mean spacing to beats per minute. Results
// outside a physiological range are rejected.
func EstimatePulseRate(waveform []float64, frameRate float64) (float64, bool) {
	peaks := peaks(waveform)
	if len(peaks) < 2 || frameRate <= 0 {
		return 0, false
	}

	interval := float64(peaks[len(peaks)-1]-peaks[0]) / float64(len(peaks)-1)
	bpm := 60 * frameRate / interval
	if bpm < minPulseRate || bpm > maxPulseRate {
		return 0, false
	}
	return bpm, true
}

func peaks(waveform []float64) []int {
	var out []int
	for i := 1; i+1 < len(waveform); i++ {
		v := waveform[i]
		if v >= peakLevel && v > waveform[i-1] && v >= waveform[i+1] {
			out = append(out, i)
		}
	}
	return out
}
