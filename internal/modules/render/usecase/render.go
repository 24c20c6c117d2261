package usecase

import (
	"context"
	"fmt"

	"decktimer/internal/modules/render/dto"
	renderin "decktimer/internal/modules/render/port/in"
	"decktimer/internal/modules/render/service"
	apperrors "decktimer/internal/platform/errors"
)

type Interactor struct {
	svc *service.FrameRenderer
}

func NewInteractor(svc *service.FrameRenderer) renderin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) DrawTimer(_ context.Context, input dto.TimerFrameInput) (dto.Frame, error) {
	if input.GoalSec <= 0 || input.ElapsedSec < 0 || input.ElapsedSec >= input.GoalSec {
		return dto.Frame{}, fmt.Errorf("%w: elapsed %d outside goal %d", apperrors.ErrInvalidInput, input.ElapsedSec, input.GoalSec)
	}
	if input.Round < 1 {
		return dto.Frame{}, fmt.Errorf("%w: round %d", apperrors.ErrInvalidInput, input.Round)
	}
	return i.svc.DrawTimer(input)
}

func (i *Interactor) DrawClear(_ context.Context) (dto.Frame, error) {
	return i.svc.DrawClear(), nil
}
