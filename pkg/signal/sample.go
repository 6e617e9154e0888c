package signal

import "image"

// Sample is the mean red, green and blue value of one extracted frame,
// taken over its non-zero pixels.
type Sample [3]float64

const (
	Red   = 0
	Green = 1
	Blue  = 2
)

// MeanColour averages the pixels of frame that are not pure black. ok is
// false when every pixel is black, which is what a degenerate mask produces.
func MeanColour(frame *image.NRGBA) (s Sample, ok bool) {
	if frame == nil {
		return s, false
	}

	b := frame.Bounds()
	var r, g, bl float64
	n := 0
	for y := 0; y < b.Dy(); y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			if row[x] == 0 && row[x+1] == 0 && row[x+2] == 0 {
				continue
			}
			r += float64(row[x])
			g += float64(row[x+1])
			bl += float64(row[x+2])
			n++
		}
	}
	if n == 0 {
		return s, false
	}
	return Sample{r / float64(n), g / float64(n), bl / float64(n)}, true
}

// buffer is the append only per strategy sample history. Degenerate frames
// repeat the previous sample so the history keeps one entry per processed
// frame. Degenerate frames that arrive before any valid one are back-filled
// with the first valid sample.
type buffer struct {
	samples []Sample
	pending int
}

func (b *buffer) push(s Sample, ok bool) {
	if !ok {
		if len(b.samples) == b.pending {
			b.pending++
			b.samples = append(b.samples, Sample{})
			return
		}
		b.samples = append(b.samples, b.samples[len(b.samples)-1])
		return
	}

	for i := 0; i < b.pending; i++ {
		b.samples[i] = s
	}
	b.pending = 0
	b.samples = append(b.samples, s)
}

func (b *buffer) len() int { return len(b.samples) }

// tail copies out the most recent n samples, or all of them when fewer
// exist.
func (b *buffer) tail(n int) []Sample {
	return b.slice(len(b.samples)-n, len(b.samples))
}

func (b *buffer) slice(from, to int) []Sample {
	if from < 0 {
		from = 0
	}
	if to > len(b.samples) {
		to = len(b.samples)
	}
	out := make([]Sample, to-from)
	copy(out, b.samples[from:to])
	return out
}

func channel(samples []Sample, c int) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s[c]
	}
	return out
}
