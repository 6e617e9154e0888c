package tracker_test

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/tauraamui/rppgtracker/pkg/landmark"
	"github.com/tauraamui/rppgtracker/pkg/signal"
	"github.com/tauraamui/rppgtracker/pkg/telemetry"
)

func skinFrame() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 200, G: 150, B: 120, A: 0xff}), image.Point{}, draw.Src)
	return img
}

type mockConn struct {
	fps       float64
	available int
	reads     int
	readErr   error
	closed    bool
}

func (m *mockConn) UUID() string { return "test-conn" }
func (m *mockConn) FPS() float64 { return m.fps }
func (m *mockConn) IsOpen() bool { return !m.closed }

func (m *mockConn) Close() error {
	m.closed = true
	return nil
}

// Read hands out frames until available is spent, then fails. A negative
// available never runs dry.
func (m *mockConn) Read() (*image.NRGBA, error) {
	if m.available >= 0 && m.reads >= m.available {
		if m.readErr != nil {
			return nil, m.readErr
		}
		return nil, errors.New("end of stream")
	}
	m.reads++
	return skinFrame(), nil
}

type mockSource struct {
	detectCalls int
	// found decides per detection attempt whether a face is present.
	found func(attempt int) bool
}

func (m *mockSource) DetectFace(frame *image.NRGBA) (landmark.Rect, bool) {
	m.detectCalls++
	if m.found == nil || !m.found(m.detectCalls) {
		return landmark.Rect{}, false
	}
	return landmark.Rect{Left: 8, Right: 56, Top: 8, Bottom: 56}, true
}

func (m *mockSource) DetectLandmarks(frame *image.NRGBA, rect landmark.Rect) (landmark.Set, error) {
	return landmark.Template().DetectLandmarks(frame, rect)
}

func never(int) bool  { return false }
func always(int) bool { return true }
func alternate(attempt int) bool {
	return attempt%2 == 1
}

type mockDisplay struct {
	shown   int
	polls   int
	quitAt  int
	quitKey int
	showErr error
}

func (m *mockDisplay) Show(image.Image) error {
	m.shown++
	return m.showErr
}

func (m *mockDisplay) PollKey() int {
	m.polls++
	if m.quitAt > 0 && m.polls == m.quitAt {
		return m.quitKey
	}
	return -1
}

func (m *mockDisplay) Close() error { return nil }

type spyStrategy struct {
	name      string
	frames    []*image.NRGBA
	showCalls int
	order     *[]string
}

func (s *spyStrategy) Name() string { return s.name }

func (s *spyStrategy) Process(frame *image.NRGBA) {
	s.frames = append(s.frames, frame)
}

func (s *spyStrategy) Len() int { return len(s.frames) }

func (s *spyStrategy) Samples() []signal.Sample {
	out := make([]signal.Sample, len(s.frames))
	for i := range s.frames {
		out[i] = signal.Sample{0, float64(i), 0}
	}
	return out
}

func (s *spyStrategy) MeasureReference(frameRate float64, windowSize int) ([]float64, error) {
	if len(s.frames) == 0 {
		return nil, signal.ErrInsufficientData
	}
	return []float64{0, 1, 0, 1}, nil
}

func (s *spyStrategy) ShowResults(frameRate float64, windowSize int, plot bool) (signal.Summary, error) {
	s.showCalls++
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	if len(s.frames) == 0 {
		return signal.Summary{}, signal.ErrInsufficientData
	}
	return signal.Summary{Strategy: s.name, Samples: len(s.frames)}, nil
}

type mockPublisher struct {
	readings []telemetry.Reading
}

func (m *mockPublisher) Publish(r telemetry.Reading) error {
	m.readings = append(m.readings, r)
	return nil
}

func (m *mockPublisher) Close() {}
