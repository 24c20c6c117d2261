package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/looplab/fsm"

	renderdto "decktimer/internal/modules/render/dto"
	"decktimer/internal/modules/timer/domain"
	timerout "decktimer/internal/modules/timer/port/out"
	"decktimer/internal/platform/clock"
	apperrors "decktimer/internal/platform/errors"
)

const TickInterval = time.Second

const (
	eventStart = "start"
	eventPause = "pause"
	eventReset = "reset"
)

type Dependencies struct {
	Instance  string
	Clock     clock.Clock
	Store     timerout.SettingsStore
	Renderer  timerout.FrameRenderer
	Display   timerout.Display
	Scheduler timerout.Scheduler
	Alarm     timerout.AlarmDevice
	Logger    hclog.Logger
}

// Engine owns one timer's state. It is not safe for concurrent use: every
// method, and every callback it arms on the scheduler, must run on the same
// goroutine.
type Engine struct {
	instance  string
	clock     clock.Clock
	store     timerout.SettingsStore
	renderer  timerout.FrameRenderer
	display   timerout.Display
	scheduler timerout.Scheduler
	alarm     *AlarmCue
	log       hclog.Logger

	machine *fsm.FSM
	goal    domain.Goal
	state   domain.State
	tick    timerout.Timer
}

func NewEngine(deps Dependencies) *Engine {
	log := deps.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	e := &Engine{
		instance:  deps.Instance,
		clock:     deps.Clock,
		store:     deps.Store,
		renderer:  deps.Renderer,
		display:   deps.Display,
		scheduler: deps.Scheduler,
		alarm:     NewAlarmCue(deps.Alarm, deps.Scheduler),
		log:       log.Named("engine").With("instance", deps.Instance),
		goal:      domain.AttachDefaults,
		state:     domain.NewState(),
	}
	e.machine = fsm.NewFSM(
		string(domain.PhaseReset),
		fsm.Events{
			{Name: eventStart, Src: []string{string(domain.PhaseReset), string(domain.PhasePaused)}, Dst: string(domain.PhaseRunning)},
			{Name: eventPause, Src: []string{string(domain.PhaseRunning)}, Dst: string(domain.PhasePaused)},
			{Name: eventReset, Src: []string{string(domain.PhaseRunning), string(domain.PhasePaused)}, Dst: string(domain.PhaseReset)},
		},
		fsm.Callbacks{
			"enter_" + string(domain.PhaseRunning): func(_ context.Context, _ *fsm.Event) { e.armTick() },
			"leave_" + string(domain.PhaseRunning): func(_ context.Context, _ *fsm.Event) { e.stopTick() },
			"enter_state": func(_ context.Context, ev *fsm.Event) {
				e.log.Debug("phase changed", "from", ev.Src, "to", ev.Dst, "round", e.state.Round)
			},
		},
	)
	return e
}

// Attach rehydrates from the settings store and redraws immediately. Only a
// failed load is returned; redraw, alarm and save failures are logged so the
// timer stays usable.
func (e *Engine) Attach(ctx context.Context) error {
	snap, err := e.store.Load(ctx, e.instance)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		snap = domain.DecodeSettings(nil, domain.AttachDefaults)
	case err != nil:
		return fmt.Errorf("load settings: %w", err)
	}
	e.goal = snap.Goal(domain.AttachDefaults)
	if err := e.goal.Validate(); err != nil {
		e.log.Warn("stored goal rejected, using defaults", "error", err)
		e.goal = domain.AttachDefaults
	}
	e.state = snap.State()
	e.machine.SetState(string(e.state.Phase()))
	e.log.Info("attached", "phase", e.state.Phase(), "round", e.state.Round, "goal_sec", e.goal.TotalSeconds())

	if err := e.Render(ctx, e.clock.Now()); err != nil {
		e.log.Error("attach render failed", "error", err)
	}
	if e.state.Running {
		e.armTick()
	}
	return nil
}

// Detach releases the tick and silences the alarm. State is not persisted.
func (e *Engine) Detach(ctx context.Context) error {
	e.stopTick()
	if e.alarm.Active() {
		return e.alarm.Stop(ctx)
	}
	return nil
}

func (e *Engine) Configure(ctx context.Context, goal domain.Goal) error {
	if goal.TotalSeconds() == e.goal.TotalSeconds() {
		return nil
	}
	e.goal = goal
	e.log.Debug("goal changed", "goal_sec", goal.TotalSeconds())
	return errors.Join(e.Render(ctx, e.clock.Now()), e.persist(ctx))
}

func (e *Engine) Start(ctx context.Context, now time.Time) error {
	if e.state.Running {
		return nil
	}
	if !e.goal.Startable() {
		if err := e.display.ShowAlert(ctx); err != nil {
			return errors.Join(apperrors.ErrInvalidGoal, fmt.Errorf("show alert: %w", err))
		}
		return apperrors.ErrInvalidGoal
	}
	started := now
	if e.state.IsStarted() && e.state.PausedAt != nil {
		started = e.state.StartedAt.Add(now.Sub(*e.state.PausedAt))
	}
	e.state.StartedAt = &started
	e.state.PausedAt = nil
	e.state.Running = true

	renderErr := e.Render(ctx, now)
	e.fire(ctx, eventStart)
	return errors.Join(renderErr, e.persist(ctx))
}

func (e *Engine) Pause(ctx context.Context, now time.Time) error {
	if !e.state.Running {
		return nil
	}
	paused := now
	e.state.PausedAt = &paused
	e.state.Running = false

	renderErr := e.Render(ctx, now)
	e.fire(ctx, eventPause)
	return errors.Join(renderErr, e.persist(ctx))
}

func (e *Engine) Reset(ctx context.Context) error {
	e.state = domain.NewState()
	e.fire(ctx, eventReset)
	e.stopTick()
	var showErr error
	if err := e.display.ShowIdle(ctx); err != nil {
		showErr = fmt.Errorf("show idle: %w", err)
	}
	return errors.Join(showErr, e.persist(ctx))
}

// ShortPress silences a sounding alarm, otherwise toggles start/pause.
func (e *Engine) ShortPress(ctx context.Context, now time.Time) error {
	if e.alarm.Active() {
		return e.alarm.Stop(ctx)
	}
	if e.state.Running {
		return e.Pause(ctx, now)
	}
	return e.Start(ctx, now)
}

func (e *Engine) LongPress(ctx context.Context, _ time.Time) error {
	return e.Reset(ctx)
}

// Freeze holds the last frame on screen; rollovers still draw.
func (e *Engine) Freeze(ctx context.Context, frozen bool) error {
	e.state.RenderFrozen = frozen
	if frozen {
		return nil
	}
	return e.Render(ctx, e.clock.Now())
}

func (e *Engine) Clear(ctx context.Context) error {
	frame, err := e.renderer.DrawClear(ctx)
	if err != nil {
		return fmt.Errorf("draw clear: %w", err)
	}
	if err := e.display.ShowFrame(ctx, frame); err != nil {
		return fmt.Errorf("show frame: %w", err)
	}
	return nil
}

// Render draws the current round, rolling over into the next one when the
// goal has been reached. Only one rollover happens per call even if the
// goal was overshot by several lengths.
func (e *Engine) Render(ctx context.Context, now time.Time) error {
	if !e.state.IsStarted() {
		if err := e.display.ShowIdle(ctx); err != nil {
			return fmt.Errorf("show idle: %w", err)
		}
		return nil
	}
	goalSec := e.goal.TotalSeconds()
	if goalSec == 0 {
		if err := e.display.ShowIdle(ctx); err != nil {
			return fmt.Errorf("show idle: %w", err)
		}
		return nil
	}
	elapsed := e.state.ElapsedSeconds(now)
	if elapsed < goalSec {
		if e.state.RenderFrozen {
			return nil
		}
		return e.draw(ctx, elapsed)
	}

	e.state.Round++
	started := now
	e.state.StartedAt = &started
	e.state.PausedAt = nil
	if !e.state.Running {
		e.state.PausedAt = &started
	}
	e.log.Info("round complete", "round", e.state.Round, "overshoot_sec", elapsed-goalSec)

	drawErr := e.draw(ctx, 0)
	return errors.Join(drawErr, e.alarm.Play(ctx), e.persist(ctx))
}

func (e *Engine) IsStarted() bool {
	return e.state.IsStarted()
}

func (e *Engine) ElapsedSeconds(now time.Time) int {
	return e.state.ElapsedSeconds(now)
}

func (e *Engine) Goal() domain.Goal {
	return e.goal
}

func (e *Engine) State() domain.State {
	return e.state
}

func (e *Engine) Phase() domain.Phase {
	return domain.Phase(e.machine.Current())
}

func (e *Engine) AlarmActive() bool {
	return e.alarm.Active()
}

func (e *Engine) TickActive() bool {
	return e.tick != nil
}

func (e *Engine) draw(ctx context.Context, elapsed int) error {
	frame, err := e.renderer.DrawTimer(ctx, renderdto.TimerFrameInput{
		ElapsedSec: elapsed,
		GoalSec:    e.goal.TotalSeconds(),
		Round:      e.state.Round,
		Running:    e.state.Running,
	})
	if err != nil {
		return fmt.Errorf("draw timer: %w", err)
	}
	if err := e.display.ShowFrame(ctx, frame); err != nil {
		return fmt.Errorf("show frame: %w", err)
	}
	return nil
}

func (e *Engine) persist(ctx context.Context) error {
	if err := e.store.Save(ctx, e.instance, domain.NewSnapshot(e.goal, e.state)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (e *Engine) fire(ctx context.Context, event string) {
	if !e.machine.Can(event) {
		return
	}
	if err := e.machine.Event(ctx, event); err != nil {
		e.log.Warn("phase transition failed", "event", event, "error", err)
	}
}

func (e *Engine) armTick() {
	if e.tick != nil {
		return
	}
	e.tick = e.scheduler.Every(TickInterval, e.onTick)
}

func (e *Engine) stopTick() {
	if e.tick == nil {
		return
	}
	e.tick.Stop()
	e.tick = nil
}

// onTick ignores ticks that were already queued when the timer left running.
func (e *Engine) onTick() {
	if !e.state.Running || e.tick == nil {
		return
	}
	if err := e.Render(context.Background(), e.clock.Now()); err != nil {
		e.log.Error("tick render failed", "error", err)
	}
}
