package process

import (
	"context"

	"github.com/tauraamui/rppgtracker/pkg/tracker"
)

// Runner is anything that runs a session to completion.
type Runner interface {
	Run(context.Context) (tracker.Report, error)
}

// RunSession runs one session until it stops by itself or the process is
// stopped, then hands the outcome to finish before signalling completion.
func RunSession(session Runner, finish func(tracker.Report, error)) func(context.Context) []chan interface{} {
	return func(cancel context.Context) []chan interface{} {
		stopping := make(chan interface{})
		go func() {
			defer close(stopping)
			report, err := session.Run(cancel)
			if finish != nil {
				finish(report, err)
			}
		}()
		return []chan interface{}{stopping}
	}
}
