package in

import (
	"context"

	"decktimer/internal/modules/render/dto"
	renderin "decktimer/internal/modules/render/port/in"
)

type CLIHandler struct {
	usecase renderin.Usecase
}

func NewCLIHandler(usecase renderin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// RenderPNG draws one key face and encodes it.
func (h CLIHandler) RenderPNG(ctx context.Context, input dto.TimerFrameInput) ([]byte, error) {
	frame, err := h.usecase.DrawTimer(ctx, input)
	if err != nil {
		return nil, err
	}
	return frame.PNG()
}

func (h CLIHandler) RenderClearPNG(ctx context.Context) ([]byte, error) {
	frame, err := h.usecase.DrawClear(ctx)
	if err != nil {
		return nil, err
	}
	return frame.PNG()
}
