// Package signal holds the pulse waveform strategies. A strategy reduces each
// extracted ROI frame to a sample, keeps the session history and derives
// normalized waveforms from windows of it.
package signal

import (
	"image"

	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/xerror"
)

var ErrInsufficientData = xerror.New("insufficient data: no samples have been processed")

// Strategy is one pulse extraction algorithm bound to its own history.
// Implementations are not safe for concurrent use; the tracker drives them
// from a single goroutine.
type Strategy interface {
	Name() string
	// Process appends exactly one sample computed from frame.
	Process(frame *image.NRGBA)
	Len() int
	// Samples copies out the full history.
	Samples() []Sample
	// MeasureReference derives a waveform from the most recent windowSize
	// samples, or from all of them while fewer exist.
	MeasureReference(frameRate float64, windowSize int) ([]float64, error)
	// ShowResults replays the whole history in windows sliding by one
	// sample and aggregates them. Plotting failures are logged only.
	ShowResults(frameRate float64, windowSize int, plot bool) (Summary, error)
}

// Plotter renders a session summary somewhere a person can look at it.
type Plotter interface {
	Plot(Summary) error
}

type Option func(*strategy)

// WithPlotter sets where ShowResults renders when asked to plot.
func WithPlotter(p Plotter) Option {
	return func(s *strategy) { s.plotter = p }
}

// WithSamples seeds the history, as if each sample had been processed.
func WithSamples(samples ...Sample) Option {
	return func(s *strategy) {
		for _, sample := range samples {
			s.buf.push(sample, true)
		}
	}
}

// GreenSamples builds samples carrying only a green mean, which is all the
// green strategy reads.
func GreenSamples(values ...float64) []Sample {
	out := make([]Sample, len(values))
	for i, v := range values {
		out[i] = Sample{0, v, 0}
	}
	return out
}

const (
	GreenName = "green"
	ChromName = "chrom"
)

// Names lists every strategy Resolve knows about.
var Names = []string{GreenName, ChromName}

func Resolve(name string, opts ...Option) (Strategy, error) {
	switch name {
	case GreenName:
		return NewGreen(opts...), nil
	case ChromName:
		return NewChrom(opts...), nil
	default:
		return nil, xerror.Errorf("unknown signal strategy: %s", name)
	}
}

type strategy struct {
	name    string
	buf     buffer
	plotter Plotter
	derive  func([]Sample) []float64
}

func newStrategy(name string, derive func([]Sample) []float64, opts []Option) *strategy {
	s := &strategy{name: name, derive: derive}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *strategy) Name() string { return s.name }

func (s *strategy) Process(frame *image.NRGBA) {
	s.buf.push(MeanColour(frame))
}

func (s *strategy) Len() int { return s.buf.len() }

func (s *strategy) Samples() []Sample { return s.buf.slice(0, s.buf.len()) }

func (s *strategy) MeasureReference(frameRate float64, windowSize int) ([]float64, error) {
	if err := checkArgs(frameRate, windowSize); err != nil {
		return nil, err
	}
	if s.buf.len() == 0 {
		return nil, ErrInsufficientData
	}
	return s.derive(s.buf.tail(windowSize)), nil
}

func (s *strategy) ShowResults(frameRate float64, windowSize int, plot bool) (Summary, error) {
	if err := checkArgs(frameRate, windowSize); err != nil {
		return Summary{}, err
	}
	if s.buf.len() == 0 {
		return Summary{}, ErrInsufficientData
	}

	summary := aggregate(s.name, s.buf.slice(0, s.buf.len()), frameRate, windowSize, s.derive)
	if plot && s.plotter != nil {
		if err := s.plotter.Plot(summary); err != nil {
			log.Warn("unable to plot [%s] results: %v", s.name, err)
		}
	}
	return summary, nil
}

func checkArgs(frameRate float64, windowSize int) error {
	if frameRate <= 0 {
		return xerror.Errorf("frame rate must be positive, got %v", frameRate)
	}
	if windowSize <= 0 {
		return xerror.Errorf("window size must be positive, got %d", windowSize)
	}
	return nil
}

// WindowSize converts a window length in seconds to samples.
func WindowSize(frameRate, seconds float64) int {
	n := int(frameRate*seconds + 0.5)
	if n < 1 {
		return 1
	}
	return n
}
