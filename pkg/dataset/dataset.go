// Package dataset turns a session's per-frame colour means into the rows the
// presentation attack classifier trains on.
package dataset

import (
	"github.com/tauraamui/rppgtracker/pkg/signal"
	"github.com/tauraamui/xerror"
)

// FeatureWindowSeconds is the window length the training rPPG column is
// derived with.
const FeatureWindowSeconds = 1.6

const (
	Train = "train"
	Devel = "devel"
	Test  = "test"
)

// Splits lists every dataset split a clip may be filed under.
var Splits = []string{Train, Devel, Test}

type Label int

const (
	Attack Label = 0
	Real   Label = 1
)

func (l Label) String() string {
	if l == Real {
		return "real"
	}
	return "attack"
}

// Row is one frame: mean red, green and blue scaled to [0, 1] followed by
// the green derived pulse waveform value.
type Row [4]float64

// Clip is one labelled session ready to be stored.
type Clip struct {
	Split     string
	Label     Label
	FrameRate float64
	Rows      []Row
}

// Features builds one row per sample. The pulse column is the overlap
// averaged green waveform, rescaled to [0, 1] over the whole clip.
func Features(samples []signal.Sample, frameRate float64) ([]Row, error) {
	if len(samples) == 0 {
		return nil, signal.ErrInsufficientData
	}

	green := signal.NewGreen(signal.WithSamples(samples...))
	summary, err := green.ShowResults(frameRate, signal.WindowSize(frameRate, FeatureWindowSeconds), false)
	if err != nil {
		return nil, err
	}
	rppg := rescale(summary.Waveform)

	rows := make([]Row, len(samples))
	for i, s := range samples {
		rows[i] = Row{s[signal.Red] / 255, s[signal.Green] / 255, s[signal.Blue] / 255, rppg[i]}
	}
	return rows, nil
}

// NewClip validates the split and label and computes the clip's rows.
func NewClip(split string, label Label, samples []signal.Sample, frameRate float64) (Clip, error) {
	if !validSplit(split) {
		return Clip{}, xerror.Errorf("unknown dataset split: %s", split)
	}
	if label != Attack && label != Real {
		return Clip{}, xerror.Errorf("unknown dataset label: %d", int(label))
	}

	rows, err := Features(samples, frameRate)
	if err != nil {
		return Clip{}, err
	}
	return Clip{Split: split, Label: label, FrameRate: frameRate, Rows: rows}, nil
}

func validSplit(split string) bool {
	for _, s := range Splits {
		if s == split {
			return true
		}
	}
	return false
}

func rescale(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
