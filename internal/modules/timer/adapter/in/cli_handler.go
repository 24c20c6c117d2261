package in

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"decktimer/internal/modules/timer/dto"
	timerin "decktimer/internal/modules/timer/port/in"
)

// CLIHandler maps one-shot CLI invocations onto the timer usecase. Each call
// attaches first so the command sees the persisted state.
type CLIHandler struct {
	usecase timerin.Usecase
	now     func() time.Time
}

func NewCLIHandler(usecase timerin.Usecase, now func() time.Time) CLIHandler {
	if now == nil {
		now = time.Now
	}
	return CLIHandler{usecase: usecase, now: now}
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Attach(ctx)
}

func (h CLIHandler) Press(ctx context.Context, long bool) (dto.StatusOutput, error) {
	if _, err := h.usecase.Attach(ctx); err != nil {
		return dto.StatusOutput{}, err
	}
	if long {
		return h.usecase.LongPress(ctx, h.now())
	}
	return h.usecase.ShortPress(ctx, h.now())
}

func (h CLIHandler) Start(ctx context.Context) (dto.StatusOutput, error) {
	if _, err := h.usecase.Attach(ctx); err != nil {
		return dto.StatusOutput{}, err
	}
	return h.usecase.Start(ctx, h.now())
}

func (h CLIHandler) Pause(ctx context.Context) (dto.StatusOutput, error) {
	if _, err := h.usecase.Attach(ctx); err != nil {
		return dto.StatusOutput{}, err
	}
	return h.usecase.Pause(ctx, h.now())
}

func (h CLIHandler) Reset(ctx context.Context) (dto.StatusOutput, error) {
	if _, err := h.usecase.Attach(ctx); err != nil {
		return dto.StatusOutput{}, err
	}
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Goal(ctx context.Context, input dto.ConfigureInput) (dto.StatusOutput, error) {
	if _, err := h.usecase.Attach(ctx); err != nil {
		return dto.StatusOutput{}, err
	}
	return h.usecase.Configure(ctx, input)
}

// ApplySettingsJSON accepts the host's settings payload verbatim.
func (h CLIHandler) ApplySettingsJSON(ctx context.Context, payload string) (dto.StatusOutput, error) {
	raw := map[string]any{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return dto.StatusOutput{}, fmt.Errorf("decode settings payload: %w", err)
	}
	if _, err := h.usecase.Attach(ctx); err != nil {
		return dto.StatusOutput{}, err
	}
	return h.usecase.ApplySettings(ctx, raw)
}

func (h CLIHandler) Detach(ctx context.Context) error {
	return h.usecase.Detach(ctx)
}
