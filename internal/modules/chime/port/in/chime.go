package in

import (
	"context"

	"decktimer/internal/modules/chime/dto"
)

type Usecase interface {
	Doctor(ctx context.Context) (dto.DoctorResult, error)
}
