package tracker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/suite"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/rppgtracker/pkg/roi"
	"github.com/tauraamui/rppgtracker/pkg/signal"
	"github.com/tauraamui/rppgtracker/pkg/tracker"
)

func overloadWarnLog(overload func(string, ...interface{})) func() {
	logWarnRef := log.Warn
	log.Warn = overload
	return func() { log.Warn = logWarnRef }
}

type TrackerTestSuite struct {
	suite.Suite
	warnLogs      []string
	resetWarnLogs func()
}

func (suite *TrackerTestSuite) SetupSuite() {
	logging.CurrentLoggingLevel = logging.SilentLevel
}

func (suite *TrackerTestSuite) TearDownSuite() {
	logging.CurrentLoggingLevel = logging.WarnLevel
}

func (suite *TrackerTestSuite) SetupTest() {
	suite.resetWarnLogs = overloadWarnLog(func(format string, a ...interface{}) {
		suite.warnLogs = append(suite.warnLogs, fmt.Sprintf(format, a...))
	})
}

func (suite *TrackerTestSuite) TearDownTest() {
	suite.warnLogs = nil
	suite.resetWarnLogs()
}

func TestTrackerTestSuite(t *testing.T) {
	suite.Run(t, &TrackerTestSuite{})
}

func spyPair(name string, order *[]string) (tracker.Pair, *spyStrategy) {
	spy := &spyStrategy{name: name, order: order}
	return tracker.Pair{Extractor: roi.CheeksOnly(), Strategy: spy}, spy
}

func (suite *TrackerTestSuite) TestSessionWithoutFaceStopsOnBudget() {
	is := is.New(suite.T())

	conn := &mockConn{fps: 10, available: -1}
	faces := &mockSource{found: never}
	greenPair, green := spyPair("green", nil)
	chromPair, chrom := spyPair("chrom", nil)

	progressCalls := 0
	var last tracker.Progress
	session := tracker.New(conn, faces, []tracker.Pair{greenPair, chromPair}, tracker.Settings{
		TimeLimit: 2, SkipCount: 25, WindowSeconds: 1.5,
	}, tracker.WithProgress(func(p tracker.Progress) {
		progressCalls++
		last = p
	}))

	report, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(report.Reason, tracker.BudgetExhausted)
	is.Equal(report.Budget, 20)
	is.Equal(report.Ticks, 20)
	is.Equal(conn.reads, 20)
	is.Equal(report.Processed, 0)
	is.Equal(faces.detectCalls, 1)
	is.Equal(report.Misses, 1)
	is.Equal(report.Skipped, 19)

	is.Equal(len(green.frames), 0)
	is.Equal(len(chrom.frames), 0)
	is.Equal(green.showCalls, 1)
	is.Equal(chrom.showCalls, 1)
	is.Equal(len(report.Results), 2)
	is.True(errors.Is(report.Results[0].Err, signal.ErrInsufficientData))

	is.Equal(progressCalls, 20)
	is.Equal(last.State, tracker.Stopped)
	is.Equal(last.Counted, 20)
}

func (suite *TrackerTestSuite) TestTwoStrategiesShareProcessedFrameCount() {
	is := is.New(suite.T())

	green := signal.NewGreen()
	chrom := signal.NewChrom()
	pairs := []tracker.Pair{
		{Extractor: roi.CheeksOnly(), Strategy: green},
		{Extractor: roi.CheeksAndNose(), Strategy: chrom},
	}

	session := tracker.New(&mockConn{fps: 10, available: -1}, &mockSource{found: alternate}, pairs, tracker.Settings{
		TimeLimit: 2, SkipCount: 0, WindowSeconds: 0.5,
	})

	report, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(report.Ticks, 20)
	is.Equal(report.Processed, 10)
	is.Equal(green.Len(), report.Processed)
	is.Equal(chrom.Len(), report.Processed)

	is.NoErr(report.Results[0].Err)
	is.NoErr(report.Results[1].Err)
	is.Equal(report.Results[0].Summary.Strategy, signal.GreenName)
	is.Equal(report.Results[1].Summary.Strategy, signal.ChromName)

	before := report.Results[0].Summary
	for i := 0; i < 5; i++ {
		chrom.Process(skinFrame())
	}
	after, err := green.ShowResults(report.FrameRate, report.WindowSize, false)
	is.NoErr(err)
	is.Equal(after, before)
	is.Equal(chrom.Len(), 15)
}

func (suite *TrackerTestSuite) TestAcquisitionFailureStopsSession() {
	is := is.New(suite.T())

	conn := &mockConn{fps: 10, available: 5, readErr: errors.New("device unplugged")}
	pair, spy := spyPair("green", nil)

	session := tracker.New(conn, &mockSource{found: always}, []tracker.Pair{pair}, tracker.Settings{
		TimeLimit: 2, WindowSeconds: 1.5,
	})

	report, err := session.Run(context.Background())
	is.True(errors.Is(err, tracker.ErrAcquisition))
	is.Equal(report.Reason, tracker.AcquisitionFailed)
	is.Equal(report.Ticks, 5)
	is.Equal(len(spy.frames), 5)
	is.Equal(spy.showCalls, 1)
}

func (suite *TrackerTestSuite) TestQuitKeyStopsSession() {
	is := is.New(suite.T())

	disp := &mockDisplay{quitAt: 3, quitKey: 'q'}
	pair, spy := spyPair("green", nil)

	session := tracker.New(&mockConn{fps: 10, available: -1}, &mockSource{found: always}, []tracker.Pair{pair}, tracker.Settings{
		TimeLimit: 60, WindowSeconds: 1.5, QuitKey: 'q',
	}, tracker.WithDisplay(disp))

	report, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(report.Reason, tracker.QuitRequested)
	is.Equal(report.Ticks, 3)
	is.Equal(report.Processed, 2)
	is.Equal(disp.shown, 2)
	is.Equal(spy.showCalls, 1)
}

func (suite *TrackerTestSuite) TestBackoffSkipsDetection() {
	is := is.New(suite.T())

	faces := &mockSource{found: never}
	pair, _ := spyPair("green", nil)

	session := tracker.New(&mockConn{fps: 4, available: -1}, faces, []tracker.Pair{pair}, tracker.Settings{
		TimeLimit: 3, SkipCount: 3, WindowSeconds: 1.5,
	})

	report, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(report.Ticks, 12)
	is.Equal(faces.detectCalls, 3)
	is.Equal(report.Misses, 3)
	is.Equal(report.Skipped, 9)
}

func (suite *TrackerTestSuite) TestProcessedBudgetCountsOnlyFacesFound() {
	is := is.New(suite.T())

	pair, spy := spyPair("green", nil)
	session := tracker.New(&mockConn{fps: 4, available: -1}, &mockSource{found: alternate}, []tracker.Pair{pair}, tracker.Settings{
		TimeLimit: 1, Budget: tracker.BudgetProcessed, WindowSeconds: 1.5,
	})

	report, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(report.Reason, tracker.BudgetExhausted)
	is.Equal(report.Processed, 4)
	is.Equal(report.Ticks, 8)
	is.Equal(len(spy.frames), 4)
}

func (suite *TrackerTestSuite) TestCancelledContextStopsBeforeReading() {
	is := is.New(suite.T())

	conn := &mockConn{fps: 10, available: -1}
	pair, spy := spyPair("green", nil)
	session := tracker.New(conn, &mockSource{found: always}, []tracker.Pair{pair}, tracker.Settings{
		TimeLimit: 2, WindowSeconds: 1.5,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := session.Run(ctx)
	is.NoErr(err)
	is.Equal(report.Reason, tracker.Cancelled)
	is.Equal(report.Ticks, 0)
	is.Equal(conn.reads, 0)
	is.Equal(spy.showCalls, 1)
}

func (suite *TrackerTestSuite) TestResultsFollowConfigurationOrder() {
	is := is.New(suite.T())

	var order []string
	first, _ := spyPair("first", &order)
	second, _ := spyPair("second", &order)
	third, _ := spyPair("third", &order)

	session := tracker.New(&mockConn{fps: 10, available: -1}, &mockSource{found: always}, []tracker.Pair{first, second, third}, tracker.Settings{
		TimeLimit: 1, WindowSeconds: 1.5,
	})

	report, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(order, []string{"first", "second", "third"})
	is.Equal(report.Results[0].Pair, "cheeks_only/first")
	is.Equal(report.Results[2].Pair, "cheeks_only/third")
}

func (suite *TrackerTestSuite) TestPairsOnOneExtractorSeeTheSameImage() {
	is := is.New(suite.T())

	a := &spyStrategy{name: "a"}
	b := &spyStrategy{name: "b"}
	c := &spyStrategy{name: "c"}
	pairs := []tracker.Pair{
		{Extractor: roi.CheeksOnly(), Strategy: a},
		{Extractor: roi.CheeksOnly(), Strategy: b},
		{Extractor: roi.FaceWithoutEyes(), Strategy: c},
	}

	session := tracker.New(&mockConn{fps: 5, available: -1}, &mockSource{found: always}, pairs, tracker.Settings{
		TimeLimit: 1, WindowSeconds: 1.5,
	})

	_, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(len(a.frames), 5)
	for i := range a.frames {
		is.True(a.frames[i] == b.frames[i])
		is.True(a.frames[i] != c.frames[i])
	}
}

func (suite *TrackerTestSuite) TestLiveReadingsArePublished() {
	is := is.New(suite.T())

	publisher := &mockPublisher{}
	pair, _ := spyPair("green", nil)
	session := tracker.New(&mockConn{fps: 10, available: -1}, &mockSource{found: always}, []tracker.Pair{pair}, tracker.Settings{
		TimeLimit: 1, WindowSeconds: 1.5, LiveInterval: 2,
	}, tracker.WithPublisher(publisher), tracker.WithID("session-one"))

	_, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(len(publisher.readings), 5)

	frames := []int{}
	for _, r := range publisher.readings {
		is.Equal(r.Session, "session-one")
		is.Equal(r.Strategy, "green")
		frames = append(frames, r.Frame)
	}
	is.Equal(frames, []int{2, 4, 6, 8, 10})
}

func (suite *TrackerTestSuite) TestDisplayFailureIsOnlyLogged() {
	is := is.New(suite.T())

	disp := &mockDisplay{showErr: errors.New("no display server")}
	pair, spy := spyPair("green", nil)
	session := tracker.New(&mockConn{fps: 2, available: -1}, &mockSource{found: always}, []tracker.Pair{pair}, tracker.Settings{
		TimeLimit: 1, WindowSeconds: 1.5,
	}, tracker.WithDisplay(disp))

	report, err := session.Run(context.Background())
	is.NoErr(err)
	is.Equal(report.Processed, 2)
	is.Equal(len(spy.frames), 2)
	is.Equal(suite.warnLogs, []string{
		"Unable to show frame: no display server",
		"Unable to show frame: no display server",
	})
}

func (suite *TrackerTestSuite) TestUnusableFrameRateIsRejected() {
	is := is.New(suite.T())

	pair, spy := spyPair("green", nil)
	session := tracker.New(&mockConn{fps: 0, available: -1}, &mockSource{found: always}, []tracker.Pair{pair}, tracker.Settings{TimeLimit: 1})

	_, err := session.Run(context.Background())
	is.Equal(err.Error(), "frame source reports unusable frame rate: 0")
	is.Equal(spy.showCalls, 0)
}

func TestStateNames(t *testing.T) {
	is := is.New(t)

	is.Equal(tracker.Acquiring.String(), "ACQUIRING")
	is.Equal(tracker.Backoff.String(), "BACKOFF")
	is.Equal(tracker.Stopped.String(), "STOPPED")
	is.Equal(tracker.BudgetExhausted.String(), "frame budget exhausted")
}
