package usecase

import (
	"context"

	"decktimer/internal/modules/chime/dto"
	chimein "decktimer/internal/modules/chime/port/in"
	"decktimer/internal/modules/chime/service"
)

type Interactor struct {
	doctor *service.Doctor
}

func NewInteractor(doctor *service.Doctor) chimein.Usecase {
	return &Interactor{doctor: doctor}
}

func (i *Interactor) Doctor(ctx context.Context) (dto.DoctorResult, error) {
	return i.doctor.Check(ctx), nil
}
