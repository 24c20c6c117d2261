package in

import (
	"context"
	"time"

	"decktimer/internal/modules/timer/dto"
)

type Usecase interface {
	Attach(ctx context.Context) (dto.StatusOutput, error)
	Detach(ctx context.Context) error
	ShortPress(ctx context.Context, at time.Time) (dto.StatusOutput, error)
	LongPress(ctx context.Context, at time.Time) (dto.StatusOutput, error)
	Start(ctx context.Context, at time.Time) (dto.StatusOutput, error)
	Pause(ctx context.Context, at time.Time) (dto.StatusOutput, error)
	Reset(ctx context.Context) (dto.StatusOutput, error)
	Configure(ctx context.Context, input dto.ConfigureInput) (dto.StatusOutput, error)
	ApplySettings(ctx context.Context, raw map[string]any) (dto.StatusOutput, error)
	Freeze(ctx context.Context, frozen bool) (dto.StatusOutput, error)
	Clear(ctx context.Context) error
	Status(ctx context.Context) (dto.StatusOutput, error)
}
