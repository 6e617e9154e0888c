// Package tracker runs one rPPG session: it pulls frames from a connection,
// finds the face, extracts every configured ROI and feeds the strategies
// until the frame budget runs out, the source fails or the user quits.
package tracker

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/rppgtracker/pkg/display"
	"github.com/tauraamui/rppgtracker/pkg/landmark"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/rppgtracker/pkg/roi"
	"github.com/tauraamui/rppgtracker/pkg/signal"
	"github.com/tauraamui/rppgtracker/pkg/telemetry"
	"github.com/tauraamui/rppgtracker/pkg/video/videobackend"
	"github.com/tauraamui/rppgtracker/pkg/video/videoclip"
	"github.com/tauraamui/xerror"
)

var ErrAcquisition = xerror.New("unable to acquire frame")

const (
	BudgetElapsed   = "elapsed"
	BudgetProcessed = "processed"
)

// Pair binds a strategy to the extractor whose ROI it consumes.
type Pair struct {
	Extractor roi.Extractor
	Strategy  signal.Strategy
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.Extractor.Name(), p.Strategy.Name())
}

type Settings struct {
	// TimeLimit is the session length in seconds of frames.
	TimeLimit int
	// SkipCount is how many ticks are skipped outright after a miss.
	SkipCount int
	// Budget selects which ticks count toward TimeLimit.
	Budget        string
	WindowSeconds float64
	// LiveInterval takes a live reading every n processed frames, zero
	// disables it.
	LiveInterval int
	QuitKey      int
	Plot         bool
}

// Result is one pair's outcome once the session stopped. Err is set when
// the strategy had nothing to summarise.
type Result struct {
	Pair    string
	Summary signal.Summary
	Err     error
}

type Report struct {
	Session    string
	FrameRate  float64
	WindowSize int
	Budget     int
	Ticks      int
	Processed  int
	Skipped    int
	Misses     int
	Reason     StopReason
	Started    time.Time
	Stopped    time.Time
	Results    []Result
}

// Progress is handed to the progress callback after every tick.
type Progress struct {
	State     State
	Ticks     int
	Processed int
	Counted   int
	Budget    int
	PulseRate float64
}

type Option func(*Session)

func WithDisplay(d display.Display) Option {
	return func(s *Session) { s.display = d }
}

func WithRecorder(w videoclip.Writer) Option {
	return func(s *Session) { s.recorder = w }
}

func WithPublisher(p telemetry.Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

func WithProgress(fn func(Progress)) Option {
	return func(s *Session) { s.progress = fn }
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

type Session struct {
	id        string
	conn      videobackend.Connection
	faces     landmark.Source
	pairs     []Pair
	settings  Settings
	display   display.Display
	recorder  videoclip.Writer
	publisher telemetry.Publisher
	progress  func(Progress)
}

func New(conn videobackend.Connection, faces landmark.Source, pairs []Pair, settings Settings, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		conn:      conn,
		faces:     faces,
		pairs:     pairs,
		settings:  settings,
		display:   display.Headless(),
		publisher: telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Pairs() []Pair { return s.pairs }

// Run drives the session to completion. Every pair's ShowResults is called
// exactly once, in configuration order, after the loop stops, whatever
// stopped it. The returned error is only set for an acquisition failure.
func (s *Session) Run(ctx context.Context) (Report, error) {
	fps := s.conn.FPS()
	if fps <= 0 {
		return Report{}, xerror.Errorf("frame source reports unusable frame rate: %v", fps)
	}
	if len(s.pairs) == 0 {
		return Report{}, xerror.New("session has no extractor/strategy pairs")
	}

	report := Report{
		Session:    s.id,
		FrameRate:  fps,
		WindowSize: signal.WindowSize(fps, s.settings.WindowSeconds),
		Budget:     budget(s.settings.TimeLimit, fps),
		Started:    time.Now(),
	}
	log.Info("Starting session [%s] at %.2f FPS with a budget of %d frames", s.id, fps, report.Budget)

	ls := loopState{state: Acquiring}
	var acquireErr error
	for ls.state != Stopped {
		if err := s.tick(ctx, &ls, &report); err != nil {
			acquireErr = err
		}
		if s.progress != nil {
			s.progress(Progress{
				State: ls.state, Ticks: ls.ticks, Processed: ls.processed,
				Counted: ls.counted, Budget: report.Budget, PulseRate: ls.pulse,
			})
		}
	}

	report.Ticks = ls.ticks
	report.Processed = ls.processed
	report.Skipped = ls.skipped
	report.Misses = ls.misses
	report.Reason = ls.reason
	report.Stopped = time.Now()
	log.Info("Session [%s] stopped: %s after %d ticks, %d processed", s.id, ls.reason, ls.ticks, ls.processed)

	report.Results = s.showResults(fps, report.WindowSize)
	return report, acquireErr
}

func budget(timeLimit int, fps float64) int {
	n := int(float64(timeLimit)*fps + 0.5)
	if n < 1 {
		return 1
	}
	return n
}

func (s *Session) tick(ctx context.Context, ls *loopState, report *Report) error {
	select {
	case <-ctx.Done():
		ls.stop(Cancelled)
		return nil
	default:
	}

	frame, err := s.conn.Read()
	if err != nil {
		log.Error("Unable to read frame from source: %v", err)
		ls.stop(AcquisitionFailed)
		return xerror.Errorf("%w: %v", ErrAcquisition, err)
	}
	if frame == nil || frame.Bounds().Empty() {
		log.Error("Frame source returned an empty frame")
		ls.stop(AcquisitionFailed)
		return xerror.Errorf("%w: empty frame", ErrAcquisition)
	}
	ls.ticks++

	if s.settings.QuitKey > 0 && s.display.PollKey() == s.settings.QuitKey {
		ls.stop(QuitRequested)
		return nil
	}

	if ls.consumeSkip() {
		log.Debug("Skipping frame %d, %d left in backoff", ls.ticks, ls.skip)
		s.count(ls, report.Budget, false)
		return nil
	}

	processed := s.process(frame, ls, report)
	s.count(ls, report.Budget, processed)
	return nil
}

// count advances the budget counter and stops the loop once it is spent.
func (s *Session) count(ls *loopState, budget int, processed bool) {
	if processed || s.settings.Budget != BudgetProcessed {
		ls.counted++
	}
	if ls.counted >= budget {
		ls.stop(BudgetExhausted)
	}
}

func (s *Session) process(frame *image.NRGBA, ls *loopState, report *Report) bool {
	rect, found := s.faces.DetectFace(frame)
	if !found || !rect.Valid() {
		log.Debug("No face found in frame %d, backing off for %d frames", ls.ticks, s.settings.SkipCount)
		ls.backoff(s.settings.SkipCount)
		return false
	}

	points, err := s.faces.DetectLandmarks(frame, rect)
	if err != nil {
		log.Warn("Unable to place landmarks in frame %d: %v", ls.ticks, err)
		ls.backoff(s.settings.SkipCount)
		return false
	}
	face := landmark.Face{Rect: rect, Landmarks: points}

	extracted := map[string]*image.NRGBA{}
	for _, pair := range s.pairs {
		name := pair.Extractor.Name()
		img, ok := extracted[name]
		if !ok {
			img = pair.Extractor.ExtractROI(frame, face)
			extracted[name] = img
		}
		pair.Strategy.Process(img)
	}
	ls.state = Acquiring
	ls.processed++

	if s.settings.LiveInterval > 0 && ls.processed%s.settings.LiveInterval == 0 {
		s.liveReading(ls, report)
	}

	s.render(extracted[s.pairs[0].Extractor.Name()], ls)
	return true
}

func (s *Session) liveReading(ls *loopState, report *Report) {
	first := s.pairs[0]
	waveform, err := first.Strategy.MeasureReference(report.FrameRate, report.WindowSize)
	if err != nil {
		log.Warn("Unable to take live reading for [%s]: %v", first, err)
		return
	}

	ls.pulse, ls.hasPulse = signal.EstimatePulseRate(waveform, report.FrameRate)
	log.Debug("Live reading for [%s] at frame %d: %.1f bpm", first, ls.processed, ls.pulse)

	reading := telemetry.Reading{
		Session:   s.id,
		Strategy:  first.Strategy.Name(),
		Frame:     ls.processed,
		PulseRate: ls.pulse,
		Waveform:  waveform,
		Timestamp: time.Now().Unix(),
	}
	if err := s.publisher.Publish(reading); err != nil {
		log.Warn("Unable to publish live reading: %v", err)
	}
}

func (s *Session) render(roiFrame *image.NRGBA, ls *loopState) {
	if roiFrame == nil || roiFrame.Bounds().Empty() {
		return
	}

	pulse := "pulse: --"
	if ls.hasPulse {
		pulse = fmt.Sprintf("pulse: %.0f bpm", ls.pulse)
	}
	annotated, err := display.Annotate(roiFrame, fmt.Sprintf("frame: %d", ls.processed), pulse)
	if err != nil {
		log.Warn("Unable to annotate frame: %v", err)
		annotated = roiFrame
	}
	if err := s.display.Show(annotated); err != nil {
		log.Warn("Unable to show frame: %v", err)
	}

	if s.recorder != nil {
		if err := s.recorder.Write(roiFrame); err != nil {
			log.Warn("Unable to record ROI frame: %v", err)
		}
	}
}

func (s *Session) showResults(fps float64, windowSize int) []Result {
	results := make([]Result, 0, len(s.pairs))
	for _, pair := range s.pairs {
		summary, err := pair.Strategy.ShowResults(fps, windowSize, s.settings.Plot)
		if err != nil {
			log.Warn("No results for [%s]: %v", pair, err)
		} else {
			log.Info("Results for [%s]: %d samples, pulse %.1f bpm", pair, summary.Samples, summary.PulseRate)
		}
		results = append(results, Result{Pair: pair.String(), Summary: summary, Err: err})
	}
	return results
}
