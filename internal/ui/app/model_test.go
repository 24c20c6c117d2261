package app

import (
	"context"
	"image"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	timerdto "decktimer/internal/modules/timer/dto"
	"decktimer/internal/ui/components"
)

type fakeTimer struct {
	calls     []string
	configure timerdto.ConfigureInput
	frozen    bool
}

func (f *fakeTimer) status(call string) (timerdto.StatusOutput, error) {
	f.calls = append(f.calls, call)
	return timerdto.StatusOutput{Instance: "key", Phase: "running", Round: 2, RemainingText: "04:59", RenderFrozen: f.frozen}, nil
}

func (f *fakeTimer) Attach(context.Context) (timerdto.StatusOutput, error) { return f.status("attach") }
func (f *fakeTimer) ShortPress(context.Context, time.Time) (timerdto.StatusOutput, error) {
	return f.status("short")
}
func (f *fakeTimer) LongPress(context.Context, time.Time) (timerdto.StatusOutput, error) {
	return f.status("long")
}
func (f *fakeTimer) Start(context.Context, time.Time) (timerdto.StatusOutput, error) {
	return f.status("start")
}
func (f *fakeTimer) Pause(context.Context, time.Time) (timerdto.StatusOutput, error) {
	return f.status("pause")
}
func (f *fakeTimer) Reset(context.Context) (timerdto.StatusOutput, error) { return f.status("reset") }
func (f *fakeTimer) Configure(_ context.Context, in timerdto.ConfigureInput) (timerdto.StatusOutput, error) {
	f.configure = in
	return f.status("configure")
}
func (f *fakeTimer) Freeze(_ context.Context, frozen bool) (timerdto.StatusOutput, error) {
	f.frozen = frozen
	return f.status("freeze")
}
func (f *fakeTimer) Clear(context.Context) error {
	f.calls = append(f.calls, "clear")
	return nil
}
func (f *fakeTimer) Status(context.Context) (timerdto.StatusOutput, error) { return f.status("status") }

// drive applies msg and feeds the resulting command's message back once.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func TestKeysDriveTimer(t *testing.T) {
	t.Parallel()
	timer := &fakeTimer{}
	m := NewModel(timer, nil)
	m = drive(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	want := []string{"short", "long", "freeze"}
	if strings.Join(timer.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected calls %v", timer.calls)
	}
	if !m.status.RenderFrozen || m.status.Round != 2 {
		t.Fatalf("status not applied: %+v", m.status)
	}
}

func TestPaletteGoalCommand(t *testing.T) {
	t.Parallel()
	timer := &fakeTimer{}
	m := NewModel(timer, nil)
	m = drive(t, m, components.PaletteSubmitMsg{Input: "goal 0 25 30"})
	if timer.configure != (timerdto.ConfigureInput{Minutes: 25, Seconds: 30}) {
		t.Fatalf("unexpected configure input %+v", timer.configure)
	}

	m = drive(t, m, components.PaletteSubmitMsg{Input: "goal 1 x 0"})
	if m.message != "goal fields must be integers" {
		t.Fatalf("unexpected message %q", m.message)
	}
	m = drive(t, m, components.PaletteSubmitMsg{Input: "launch"})
	if m.message != "unknown command: launch" {
		t.Fatalf("unexpected message %q", m.message)
	}
	drive(t, m, components.PaletteSubmitMsg{Input: "clear"})
	if timer.calls[len(timer.calls)-1] != "clear" {
		t.Fatalf("clear not dispatched: %v", timer.calls)
	}
}

func TestFramesAndIdleSwitchFace(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeTimer{}, nil)
	if !strings.Contains(m.View(), "idle") {
		t.Fatalf("fresh model must show idle key")
	}
	m = drive(t, m, FrameMsg{Image: image.NewRGBA(image.Rect(0, 0, 144, 144))})
	if m.idle || m.face == nil || strings.Contains(m.renderFace(), "idle") {
		t.Fatalf("frame must replace idle face")
	}
	m = drive(t, m, IdleMsg{})
	if !m.idle {
		t.Fatalf("idle message must clear the face")
	}
}

func TestAlertFlashes(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewModel(&fakeTimer{}, func() time.Time { return now })
	m = drive(t, m, AlertMsg{At: now})
	if !m.alerting() {
		t.Fatalf("expected alert flash")
	}
	now = now.Add(3 * time.Second)
	if m.alerting() {
		t.Fatalf("alert flash must expire")
	}
}

func TestProgramDisplayBuffersUntilBound(t *testing.T) {
	t.Parallel()
	d := NewProgramDisplay()
	if err := d.ShowIdle(context.Background()); err != nil {
		t.Fatalf("show idle: %v", err)
	}
	if _, ok := d.pending.(IdleMsg); !ok {
		t.Fatalf("expected pending idle message, got %#v", d.pending)
	}
}
