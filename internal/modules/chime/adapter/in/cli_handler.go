package in

import (
	"context"

	"decktimer/internal/modules/chime/dto"
	chimein "decktimer/internal/modules/chime/port/in"
)

type CLIHandler struct {
	usecase chimein.Usecase
}

func NewCLIHandler(usecase chimein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Doctor(ctx context.Context) (dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
