package service_test

import (
	"context"
	"time"

	renderdto "decktimer/internal/modules/render/dto"
	"decktimer/internal/modules/timer/domain"
	timerout "decktimer/internal/modules/timer/port/out"
	"decktimer/internal/modules/timer/service"
	apperrors "decktimer/internal/platform/errors"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func ms(v int64) time.Time {
	return t0.Add(time.Duration(v) * time.Millisecond)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type memoryStore struct {
	snapshots map[string]domain.Snapshot
	saves     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snapshots: map[string]domain.Snapshot{}}
}

func (s *memoryStore) Load(_ context.Context, instance string) (domain.Snapshot, error) {
	snap, ok := s.snapshots[instance]
	if !ok {
		return domain.Snapshot{}, apperrors.ErrNotFound
	}
	return snap, nil
}

func (s *memoryStore) Save(_ context.Context, instance string, snap domain.Snapshot) error {
	s.snapshots[instance] = snap
	s.saves++
	return nil
}

type recordingRenderer struct {
	inputs []renderdto.TimerFrameInput
	clears int
}

func (r *recordingRenderer) DrawTimer(_ context.Context, input renderdto.TimerFrameInput) (renderdto.Frame, error) {
	r.inputs = append(r.inputs, input)
	return renderdto.Frame{}, nil
}

func (r *recordingRenderer) DrawClear(context.Context) (renderdto.Frame, error) {
	r.clears++
	return renderdto.Frame{}, nil
}

func (r *recordingRenderer) last() renderdto.TimerFrameInput {
	if len(r.inputs) == 0 {
		return renderdto.TimerFrameInput{Round: -1}
	}
	return r.inputs[len(r.inputs)-1]
}

type recordingDisplay struct {
	frames int
	idles  int
	alerts int
}

func (d *recordingDisplay) ShowFrame(context.Context, renderdto.Frame) error {
	d.frames++
	return nil
}

func (d *recordingDisplay) ShowIdle(context.Context) error {
	d.idles++
	return nil
}

func (d *recordingDisplay) ShowAlert(context.Context) error {
	d.alerts++
	return nil
}

type fakeDevice struct {
	plays, stops, rewinds int
	playErr               error
}

func (d *fakeDevice) Play(context.Context) error {
	d.plays++
	return d.playErr
}

func (d *fakeDevice) Stop(context.Context) error {
	d.stops++
	return nil
}

func (d *fakeDevice) Rewind(context.Context) error {
	d.rewinds++
	return nil
}

// manualScheduler never fires on its own; tests fire callbacks explicitly.
type manualScheduler struct {
	repeating []*manualTimer
	oneShots  []*manualTimer
}

type manualTimer struct {
	every   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) Every(d time.Duration, fn func()) timerout.Timer {
	t := &manualTimer{every: d, fn: fn}
	s.repeating = append(s.repeating, t)
	return t
}

func (s *manualScheduler) After(d time.Duration, fn func()) timerout.Timer {
	t := &manualTimer{every: d, fn: fn}
	s.oneShots = append(s.oneShots, t)
	return t
}

func (s *manualScheduler) activeTicks() int {
	n := 0
	for _, t := range s.repeating {
		if !t.stopped {
			n++
		}
	}
	return n
}

// tick fires every live repeating timer once.
func (s *manualScheduler) tick() {
	for _, t := range s.repeating {
		if !t.stopped {
			t.fn()
		}
	}
}

// expire fires the newest live one-shot timer.
func (s *manualScheduler) expire() bool {
	for i := len(s.oneShots) - 1; i >= 0; i-- {
		t := s.oneShots[i]
		if !t.stopped {
			t.stopped = true
			t.fn()
			return true
		}
	}
	return false
}

type harness struct {
	clock     *fakeClock
	store     *memoryStore
	renderer  *recordingRenderer
	display   *recordingDisplay
	scheduler *manualScheduler
	device    *fakeDevice
	engine    *service.Engine
}

func newHarness(goal domain.Goal) *harness {
	h := &harness{
		clock:     &fakeClock{now: t0},
		store:     newMemoryStore(),
		renderer:  &recordingRenderer{},
		display:   &recordingDisplay{},
		scheduler: &manualScheduler{},
		device:    &fakeDevice{},
	}
	h.store.snapshots["key"] = domain.NewSnapshot(goal, domain.NewState())
	h.engine = service.NewEngine(service.Dependencies{
		Instance:  "key",
		Clock:     h.clock,
		Store:     h.store,
		Renderer:  h.renderer,
		Display:   h.display,
		Scheduler: h.scheduler,
		Alarm:     h.device,
	})
	return h
}

func (h *harness) attach() *harness {
	if err := h.engine.Attach(context.Background()); err != nil {
		panic(err)
	}
	h.store.saves = 0
	return h
}
