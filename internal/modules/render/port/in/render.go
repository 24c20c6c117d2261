package in

import (
	"context"

	"decktimer/internal/modules/render/dto"
)

type Usecase interface {
	DrawTimer(ctx context.Context, input dto.TimerFrameInput) (dto.Frame, error)
	DrawClear(ctx context.Context) (dto.Frame, error)
}
