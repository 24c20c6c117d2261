package clock

import "time"

// Clock abstracts time to keep the timer engine deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

// Now keeps the monotonic reading so elapsed spans survive wall clock jumps
// within a process.
func (SystemClock) Now() time.Time {
	return time.Now()
}
