package tracker

import "fmt"

type State int

const (
	Acquiring State = iota
	Backoff
	Stopped
)

func (s State) String() string {
	switch s {
	case Acquiring:
		return "ACQUIRING"
	case Backoff:
		return "BACKOFF"
	case Stopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StopReason records which termination condition fired first.
type StopReason int

const (
	NotStopped StopReason = iota
	BudgetExhausted
	AcquisitionFailed
	QuitRequested
	Cancelled
)

func (r StopReason) String() string {
	switch r {
	case NotStopped:
		return "not stopped"
	case BudgetExhausted:
		return "frame budget exhausted"
	case AcquisitionFailed:
		return "acquisition failed"
	case QuitRequested:
		return "quit requested"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// loopState is everything that changes from one tick to the next. It lives
// on the stack of Run and is handed through each tick.
type loopState struct {
	state     State
	skip      int
	ticks     int
	processed int
	skipped   int
	misses    int
	counted   int
	reason    StopReason
	pulse     float64
	hasPulse  bool
}

func (ls *loopState) backoff(n int) {
	ls.misses++
	if n <= 0 {
		ls.state = Acquiring
		return
	}
	ls.state = Backoff
	ls.skip = n
}

// consumeSkip burns one backoff tick, reporting whether the tick was skipped.
func (ls *loopState) consumeSkip() bool {
	if ls.state != Backoff || ls.skip <= 0 {
		return false
	}
	ls.skip--
	ls.skipped++
	if ls.skip == 0 {
		ls.state = Acquiring
	}
	return true
}

func (ls *loopState) stop(reason StopReason) {
	if ls.state == Stopped {
		return
	}
	ls.state = Stopped
	ls.reason = reason
}
