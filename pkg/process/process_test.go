package process_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/suite"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/rppgtracker/pkg/process"
	"github.com/tauraamui/rppgtracker/pkg/tracker"
)

type ProcessTestSuite struct {
	suite.Suite
}

func (suite *ProcessTestSuite) SetupSuite() {
	logging.CurrentLoggingLevel = logging.SilentLevel
}

func (suite *ProcessTestSuite) TearDownSuite() {
	logging.CurrentLoggingLevel = logging.WarnLevel
}

func TestProcessTestSuite(t *testing.T) {
	suite.Run(t, &ProcessTestSuite{})
}

func (suite *ProcessTestSuite) TestStopCancelsAndWaitReturns() {
	is := is.New(suite.T())

	cancelled := false
	proc := process.New(process.Settings{
		WaitForShutdownMsg: "Stopping test process...",
		Process: func(ctx context.Context) []chan interface{} {
			stopping := make(chan interface{})
			go func() {
				<-ctx.Done()
				cancelled = true
				close(stopping)
			}()
			return []chan interface{}{stopping}
		},
	}).Setup()

	proc.Start()
	proc.Stop()
	proc.Wait()
	is.True(cancelled)

	select {
	case <-proc.Done():
	default:
		is.Fail()
	}
}

func (suite *ProcessTestSuite) TestDoneClosesWhenWorkFinishesByItself() {
	is := is.New(suite.T())

	proc := process.New(process.Settings{
		Process: func(ctx context.Context) []chan interface{} {
			a, b := make(chan interface{}), make(chan interface{})
			close(a)
			go func() { close(b) }()
			return []chan interface{}{a, b}
		},
	})
	proc.Start()

	select {
	case <-proc.Done():
	case <-time.After(time.Second):
		is.Fail()
	}
}

type blockingSession struct {
	ran bool
}

func (s *blockingSession) Run(ctx context.Context) (tracker.Report, error) {
	s.ran = true
	<-ctx.Done()
	return tracker.Report{Session: "blocking", Reason: tracker.Cancelled}, nil
}

type failingSession struct{}

func (failingSession) Run(context.Context) (tracker.Report, error) {
	return tracker.Report{Session: "failing", Reason: tracker.AcquisitionFailed}, tracker.ErrAcquisition
}

func (suite *ProcessTestSuite) TestRunSessionFinishesOnStop() {
	is := is.New(suite.T())

	session := &blockingSession{}
	var finished tracker.Report
	proc := process.New(process.Settings{
		Process: process.RunSession(session, func(r tracker.Report, err error) {
			finished = r
		}),
	})

	proc.Start()
	proc.Stop()
	proc.Wait()

	is.True(session.ran)
	is.Equal(finished.Session, "blocking")
	is.Equal(finished.Reason, tracker.Cancelled)
}

func (suite *ProcessTestSuite) TestRunSessionPassesErrorToFinish() {
	is := is.New(suite.T())

	var finishErr error
	proc := process.New(process.Settings{
		Process: process.RunSession(failingSession{}, func(r tracker.Report, err error) {
			finishErr = err
		}),
	})

	proc.Start()
	<-proc.Done()
	is.True(errors.Is(finishErr, tracker.ErrAcquisition))
}
