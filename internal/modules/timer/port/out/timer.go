package out

import (
	"context"
	"time"

	renderdto "decktimer/internal/modules/render/dto"
	"decktimer/internal/modules/timer/domain"
)

type SettingsStore interface {
	Load(ctx context.Context, instance string) (domain.Snapshot, error)
	Save(ctx context.Context, instance string, snapshot domain.Snapshot) error
}

type Display interface {
	ShowFrame(ctx context.Context, frame renderdto.Frame) error
	ShowIdle(ctx context.Context) error
	ShowAlert(ctx context.Context) error
}

type FrameRenderer interface {
	DrawTimer(ctx context.Context, input renderdto.TimerFrameInput) (renderdto.Frame, error)
	DrawClear(ctx context.Context) (renderdto.Frame, error)
}

type AlarmDevice interface {
	Play(ctx context.Context) error
	Stop(ctx context.Context) error
	Rewind(ctx context.Context) error
}

type Timer interface {
	Stop() bool
}

// Scheduler delivers callbacks on the goroutine that owns the engine.
type Scheduler interface {
	Every(d time.Duration, fn func()) Timer
	After(d time.Duration, fn func()) Timer
}

// Dispatcher serialises commands onto the engine's goroutine.
type Dispatcher interface {
	Do(ctx context.Context, fn func() error) error
}
