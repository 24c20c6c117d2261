package usecase

import (
	"context"
	"fmt"
	"time"

	renderdomain "decktimer/internal/modules/render/domain"
	"decktimer/internal/modules/timer/domain"
	timerdto "decktimer/internal/modules/timer/dto"
	timerin "decktimer/internal/modules/timer/port/in"
	timerout "decktimer/internal/modules/timer/port/out"
	"decktimer/internal/modules/timer/service"
	"decktimer/internal/platform/clock"
	apperrors "decktimer/internal/platform/errors"
)

// Interactor funnels every command through the dispatcher so the engine only
// ever runs on its own goroutine.
type Interactor struct {
	engine   *service.Engine
	loop     timerout.Dispatcher
	clock    clock.Clock
	instance string
	attached bool
}

func NewInteractor(engine *service.Engine, loop timerout.Dispatcher, clk clock.Clock, instance string) timerin.Usecase {
	return &Interactor{engine: engine, loop: loop, clock: clk, instance: instance}
}

func (i *Interactor) Attach(ctx context.Context) (timerdto.StatusOutput, error) {
	return i.run(ctx, func() error {
		if i.attached {
			return nil
		}
		if err := i.engine.Attach(ctx); err != nil {
			return err
		}
		i.attached = true
		return nil
	})
}

func (i *Interactor) Detach(ctx context.Context) error {
	return i.loop.Do(ctx, func() error {
		if !i.attached {
			return nil
		}
		i.attached = false
		return i.engine.Detach(ctx)
	})
}

func (i *Interactor) ShortPress(ctx context.Context, at time.Time) (timerdto.StatusOutput, error) {
	return i.command(ctx, func() error { return i.engine.ShortPress(ctx, at) })
}

func (i *Interactor) LongPress(ctx context.Context, at time.Time) (timerdto.StatusOutput, error) {
	return i.command(ctx, func() error { return i.engine.LongPress(ctx, at) })
}

func (i *Interactor) Start(ctx context.Context, at time.Time) (timerdto.StatusOutput, error) {
	return i.command(ctx, func() error { return i.engine.Start(ctx, at) })
}

func (i *Interactor) Pause(ctx context.Context, at time.Time) (timerdto.StatusOutput, error) {
	return i.command(ctx, func() error { return i.engine.Pause(ctx, at) })
}

func (i *Interactor) Reset(ctx context.Context) (timerdto.StatusOutput, error) {
	return i.command(ctx, func() error { return i.engine.Reset(ctx) })
}

func (i *Interactor) Configure(ctx context.Context, input timerdto.ConfigureInput) (timerdto.StatusOutput, error) {
	goal := domain.Goal{Hours: input.Hours, Minutes: input.Minutes, Seconds: input.Seconds}
	if err := goal.Validate(); err != nil {
		return timerdto.StatusOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return i.command(ctx, func() error { return i.engine.Configure(ctx, goal) })
}

// ApplySettings handles a settings-changed event from the host. Missing goal
// fields count as zero.
func (i *Interactor) ApplySettings(ctx context.Context, raw map[string]any) (timerdto.StatusOutput, error) {
	goal := domain.DecodeSettings(raw, domain.Goal{}).Goal(domain.Goal{})
	return i.Configure(ctx, timerdto.ConfigureInput{Hours: goal.Hours, Minutes: goal.Minutes, Seconds: goal.Seconds})
}

func (i *Interactor) Freeze(ctx context.Context, frozen bool) (timerdto.StatusOutput, error) {
	return i.command(ctx, func() error { return i.engine.Freeze(ctx, frozen) })
}

func (i *Interactor) Clear(ctx context.Context) error {
	_, err := i.command(ctx, func() error { return i.engine.Clear(ctx) })
	return err
}

func (i *Interactor) Status(ctx context.Context) (timerdto.StatusOutput, error) {
	return i.command(ctx, func() error { return nil })
}

func (i *Interactor) command(ctx context.Context, fn func() error) (timerdto.StatusOutput, error) {
	return i.run(ctx, func() error {
		if !i.attached {
			return apperrors.ErrNotAttached
		}
		return fn()
	})
}

// run executes fn on the loop and snapshots the status in the same turn.
func (i *Interactor) run(ctx context.Context, fn func() error) (timerdto.StatusOutput, error) {
	var out timerdto.StatusOutput
	err := i.loop.Do(ctx, func() error {
		err := fn()
		out = i.status()
		return err
	})
	return out, err
}

func (i *Interactor) status() timerdto.StatusOutput {
	goal := i.engine.Goal().TotalSeconds()
	state := i.engine.State()
	out := timerdto.StatusOutput{
		Instance:     i.instance,
		Phase:        string(i.engine.Phase()),
		Round:        state.Round,
		GoalSec:      goal,
		AlarmActive:  i.engine.AlarmActive(),
		RenderFrozen: state.RenderFrozen,
	}
	elapsed := 0
	if state.IsStarted() {
		elapsed = min(state.ElapsedSeconds(i.clock.Now()), goal)
	}
	out.ElapsedSec = elapsed
	out.RemainingText = renderdomain.RemainingText(elapsed, goal)
	return out
}
