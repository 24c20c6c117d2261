package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	renderdto "decktimer/internal/modules/render/dto"
	"decktimer/internal/modules/timer/domain"
	"decktimer/internal/modules/timer/dto"
	timerout "decktimer/internal/modules/timer/port/out"
	"decktimer/internal/modules/timer/service"
	"decktimer/internal/modules/timer/usecase"
	apperrors "decktimer/internal/platform/errors"
	"decktimer/internal/platform/eventloop"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type mapStore struct {
	snapshots map[string]domain.Snapshot
}

func (s *mapStore) Load(_ context.Context, instance string) (domain.Snapshot, error) {
	snap, ok := s.snapshots[instance]
	if !ok {
		return domain.Snapshot{}, apperrors.ErrNotFound
	}
	return snap, nil
}

func (s *mapStore) Save(_ context.Context, instance string, snap domain.Snapshot) error {
	s.snapshots[instance] = snap
	return nil
}

type nopRenderer struct{}

func (nopRenderer) DrawTimer(context.Context, renderdto.TimerFrameInput) (renderdto.Frame, error) {
	return renderdto.Frame{}, nil
}

func (nopRenderer) DrawClear(context.Context) (renderdto.Frame, error) {
	return renderdto.Frame{}, nil
}

type nopDisplay struct{}

func (nopDisplay) ShowFrame(context.Context, renderdto.Frame) error { return nil }
func (nopDisplay) ShowIdle(context.Context) error                   { return nil }
func (nopDisplay) ShowAlert(context.Context) error                  { return nil }

// idleScheduler hands out timers that never fire.
type idleScheduler struct{}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func (idleScheduler) Every(time.Duration, func()) timerout.Timer { return idleTimer{} }
func (idleScheduler) After(time.Duration, func()) timerout.Timer { return idleTimer{} }

type failingAlarm struct{}

func (failingAlarm) Play(context.Context) error   { return errors.New("start ffplay: executable file not found") }
func (failingAlarm) Stop(context.Context) error   { return nil }
func (failingAlarm) Rewind(context.Context) error { return nil }

func newUsecase(t *testing.T, store *mapStore, clk *fixedClock) *usecase.Interactor {
	t.Helper()
	return newUsecaseWithAlarm(t, store, clk, nil)
}

func newUsecaseWithAlarm(t *testing.T, store *mapStore, clk *fixedClock, alarm timerout.AlarmDevice) *usecase.Interactor {
	t.Helper()
	loop := eventloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)
	engine := service.NewEngine(service.Dependencies{
		Instance:  "key",
		Clock:     clk,
		Store:     store,
		Renderer:  nopRenderer{},
		Display:   nopDisplay{},
		Scheduler: idleScheduler{},
		Alarm:     alarm,
	})
	return usecase.NewInteractor(engine, loop, clk, "key").(*usecase.Interactor)
}

func TestCommandsRequireAttach(t *testing.T) {
	t.Parallel()
	uc := newUsecase(t, &mapStore{snapshots: map[string]domain.Snapshot{}}, &fixedClock{now: t0})
	if _, err := uc.Start(context.Background(), t0); !errors.Is(err, apperrors.ErrNotAttached) {
		t.Fatalf("expected ErrNotAttached, got %v", err)
	}
	if err := uc.Detach(context.Background()); err != nil {
		t.Fatalf("detach before attach: %v", err)
	}
}

func TestAttachStartStatusFlow(t *testing.T) {
	t.Parallel()
	clk := &fixedClock{now: t0}
	store := &mapStore{snapshots: map[string]domain.Snapshot{}}
	uc := newUsecase(t, store, clk)
	ctx := context.Background()

	status, err := uc.Attach(ctx)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if status.Phase != string(domain.PhaseReset) || status.GoalSec != 3600 || status.RemainingText != "1:00:00" {
		t.Fatalf("unexpected attach status: %+v", status)
	}

	if _, err := uc.ShortPress(ctx, t0); err != nil {
		t.Fatalf("short press: %v", err)
	}
	clk.now = t0.Add(61 * time.Second)
	status, err = uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	want := dto.StatusOutput{Instance: "key", Phase: "running", Round: 1, GoalSec: 3600, ElapsedSec: 61, RemainingText: "0:58:59"}
	if status != want {
		t.Fatalf("expected %+v, got %+v", want, status)
	}

	if _, err := uc.LongPress(ctx, clk.now); err != nil {
		t.Fatalf("long press: %v", err)
	}
	if snap := store.snapshots["key"]; snap.TimerStartMs != nil || snap.Round != 1 {
		t.Fatalf("long press must persist a reset snapshot: %+v", snap)
	}
}

func TestConfigureRejectsNegativeGoal(t *testing.T) {
	t.Parallel()
	uc := newUsecase(t, &mapStore{snapshots: map[string]domain.Snapshot{}}, &fixedClock{now: t0})
	if _, err := uc.Attach(context.Background()); err != nil {
		t.Fatalf("attach: %v", err)
	}
	_, err := uc.Configure(context.Background(), dto.ConfigureInput{Minutes: -1})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestApplySettingsTreatsMissingFieldsAsZero(t *testing.T) {
	t.Parallel()
	uc := newUsecase(t, &mapStore{snapshots: map[string]domain.Snapshot{}}, &fixedClock{now: t0})
	ctx := context.Background()
	if _, err := uc.Attach(ctx); err != nil {
		t.Fatalf("attach: %v", err)
	}
	status, err := uc.ApplySettings(ctx, map[string]any{"minutes": "2", "seconds": float64(5)})
	if err != nil {
		t.Fatalf("apply settings: %v", err)
	}
	if status.GoalSec != 125 {
		t.Fatalf("expected 125s goal, got %d", status.GoalSec)
	}

	status, err = uc.ApplySettings(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("apply empty settings: %v", err)
	}
	if status.GoalSec != 0 || status.RemainingText != "00:00" {
		t.Fatalf("expected zero goal, got %+v", status)
	}
	if _, err := uc.Start(ctx, t0); !errors.Is(err, apperrors.ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal, got %v", err)
	}
}

func TestStatusClampsElapsedToGoal(t *testing.T) {
	t.Parallel()
	clk := &fixedClock{now: t0}
	started := t0
	store := &mapStore{snapshots: map[string]domain.Snapshot{
		"key": domain.NewSnapshot(domain.Goal{Seconds: 10}, domain.State{Round: 1, Running: true, StartedAt: &started}),
	}}
	uc := newUsecase(t, store, clk)
	if _, err := uc.Attach(context.Background()); err != nil {
		t.Fatalf("attach: %v", err)
	}
	clk.now = t0.Add(25 * time.Second)
	status, err := uc.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.ElapsedSec != 10 || status.RemainingText != "00:00" {
		t.Fatalf("expected clamped status, got %+v", status)
	}
}

func TestAttachSurvivesAlarmFailureDuringRollover(t *testing.T) {
	t.Parallel()
	clk := &fixedClock{now: t0.Add(60 * time.Second)}
	started := t0
	store := &mapStore{snapshots: map[string]domain.Snapshot{
		"key": domain.NewSnapshot(domain.Goal{Seconds: 5}, domain.State{Round: 1, Running: true, StartedAt: &started}),
	}}
	uc := newUsecaseWithAlarm(t, store, clk, failingAlarm{})
	ctx := context.Background()

	status, err := uc.Attach(ctx)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if status.Phase != "running" || status.Round != 2 {
		t.Fatalf("expected rolled over running timer, got %+v", status)
	}
	if _, err := uc.Status(ctx); err != nil {
		t.Fatalf("status after attach: %v", err)
	}
	status, err = uc.ShortPress(ctx, clk.now)
	if err != nil {
		t.Fatalf("press after attach: %v", err)
	}
	if status.Phase != "paused" {
		t.Fatalf("press must pause, got %+v", status)
	}
}

type failingLoadStore struct{ mapStore }

func (*failingLoadStore) Load(context.Context, string) (domain.Snapshot, error) {
	return domain.Snapshot{}, errors.New("database is locked")
}

func TestAttachFailsOnlyWhenSettingsCannotLoad(t *testing.T) {
	t.Parallel()
	clk := &fixedClock{now: t0}
	loop := eventloop.New()
	runCtx, cancel := context.WithCancel(context.Background())
	go loop.Run(runCtx)
	t.Cleanup(cancel)
	engine := service.NewEngine(service.Dependencies{
		Instance:  "key",
		Clock:     clk,
		Store:     &failingLoadStore{},
		Renderer:  nopRenderer{},
		Display:   nopDisplay{},
		Scheduler: idleScheduler{},
	})
	uc := usecase.NewInteractor(engine, loop, clk, "key")
	if _, err := uc.Attach(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if _, err := uc.Status(context.Background()); !errors.Is(err, apperrors.ErrNotAttached) {
		t.Fatalf("failed attach must leave the timer detached, got %v", err)
	}
}
