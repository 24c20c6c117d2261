package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	timerout "decktimer/internal/modules/timer/port/out"
)

// AlarmCueDuration matches the length of the bundled chime.
const AlarmCueDuration = 5906 * time.Millisecond

// AlarmCue tracks whether the round-complete chime is still sounding.
type AlarmCue struct {
	device    timerout.AlarmDevice
	scheduler timerout.Scheduler
	timeout   timerout.Timer
}

func NewAlarmCue(device timerout.AlarmDevice, scheduler timerout.Scheduler) *AlarmCue {
	if device == nil {
		device = silentDevice{}
	}
	return &AlarmCue{device: device, scheduler: scheduler}
}

func (a *AlarmCue) Active() bool {
	return a.timeout != nil
}

// Play starts the device and re-arms the auto-clear timeout.
func (a *AlarmCue) Play(ctx context.Context) error {
	if err := a.device.Play(ctx); err != nil {
		return fmt.Errorf("play alarm: %w", err)
	}
	a.cancelTimeout()
	var armed timerout.Timer
	armed = a.scheduler.After(AlarmCueDuration, func() {
		if a.timeout == armed {
			a.timeout = nil
		}
	})
	a.timeout = armed
	return nil
}

// Stop silences the device and rewinds it for the next round.
func (a *AlarmCue) Stop(ctx context.Context) error {
	a.cancelTimeout()
	var errs []error
	if err := a.device.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop alarm: %w", err))
	}
	if err := a.device.Rewind(ctx); err != nil {
		errs = append(errs, fmt.Errorf("rewind alarm: %w", err))
	}
	return errors.Join(errs...)
}

func (a *AlarmCue) cancelTimeout() {
	if a.timeout == nil {
		return
	}
	a.timeout.Stop()
	a.timeout = nil
}

type silentDevice struct{}

func (silentDevice) Play(context.Context) error   { return nil }
func (silentDevice) Stop(context.Context) error   { return nil }
func (silentDevice) Rewind(context.Context) error { return nil }
