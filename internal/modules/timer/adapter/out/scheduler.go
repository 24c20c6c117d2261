package out

import (
	"time"

	timerout "decktimer/internal/modules/timer/port/out"
	"decktimer/internal/platform/eventloop"
)

// LoopScheduler delivers engine timers onto the event loop goroutine.
type LoopScheduler struct {
	loop *eventloop.Loop
}

func NewLoopScheduler(loop *eventloop.Loop) LoopScheduler {
	return LoopScheduler{loop: loop}
}

func (s LoopScheduler) Every(d time.Duration, fn func()) timerout.Timer {
	return s.loop.Every(d, fn)
}

func (s LoopScheduler) After(d time.Duration, fn func()) timerout.Timer {
	return s.loop.After(d, fn)
}
