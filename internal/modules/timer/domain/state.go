package domain

import (
	"fmt"
	"math"
	"time"
)

type Phase string

const (
	PhaseReset   Phase = "reset"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
)

// State is the mutable timer state. StartedAt is the start of the current
// round shifted forward by every pause, so now-StartedAt excludes paused time.
type State struct {
	Round        int
	Running      bool
	StartedAt    *time.Time
	PausedAt     *time.Time
	RenderFrozen bool
}

func NewState() State {
	return State{Round: 1}
}

func (s State) IsStarted() bool {
	return s.StartedAt != nil
}

func (s State) Phase() Phase {
	switch {
	case s.StartedAt == nil:
		return PhaseReset
	case s.Running:
		return PhaseRunning
	default:
		return PhasePaused
	}
}

// ElapsedSeconds rounds half up. A reset state reports 0; callers check
// IsStarted first.
func (s State) ElapsedSeconds(now time.Time) int {
	if s.StartedAt == nil {
		return 0
	}
	end := now
	if !s.Running {
		end = *s.StartedAt
		if s.PausedAt != nil {
			end = *s.PausedAt
		}
	}
	return roundHalfUp(end.Sub(*s.StartedAt))
}

func (s State) Validate() error {
	if s.Round < 1 {
		return fmt.Errorf("round must be >= 1, got %d", s.Round)
	}
	if s.StartedAt == nil && (s.Running || s.PausedAt != nil) {
		return fmt.Errorf("reset state cannot be running or paused")
	}
	if s.PausedAt != nil && s.Running {
		return fmt.Errorf("running state cannot carry a pause timestamp")
	}
	return nil
}

func roundHalfUp(d time.Duration) int {
	return int(math.Floor(float64(d.Milliseconds())/1000 + 0.5))
}
