package service_test

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	renderout "decktimer/internal/modules/render/adapter/out"
	"decktimer/internal/modules/render/domain"
	"decktimer/internal/modules/render/dto"
	"decktimer/internal/modules/render/service"
)

func newRenderer(t *testing.T) *service.FrameRenderer {
	t.Helper()
	faces, err := renderout.NewGoFontFaces()
	if err != nil {
		t.Fatalf("faces: %v", err)
	}
	backgrounds, err := renderout.NewBackgrounds("", "")
	if err != nil {
		t.Fatalf("backgrounds: %v", err)
	}
	return service.NewFrameRenderer(faces, backgrounds)
}

func rgbaAt(t *testing.T, frame dto.Frame, x, y int) color.RGBA {
	t.Helper()
	img, ok := frame.Image.(*image.RGBA)
	if !ok {
		t.Fatalf("expected *image.RGBA, got %T", frame.Image)
	}
	return img.RGBAAt(x, y)
}

func TestDrawTimerIsDeterministic(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)
	input := dto.TimerFrameInput{ElapsedSec: 12, GoalSec: 90, Round: 3, Running: true}
	a, err := r.DrawTimer(input)
	if err != nil {
		t.Fatalf("draw a: %v", err)
	}
	b, err := r.DrawTimer(input)
	if err != nil {
		t.Fatalf("draw b: %v", err)
	}
	if a.Image.Bounds() != image.Rect(0, 0, domain.CanvasSize, domain.CanvasSize) {
		t.Fatalf("unexpected bounds %v", a.Image.Bounds())
	}
	if !bytes.Equal(a.Image.(*image.RGBA).Pix, b.Image.(*image.RGBA).Pix) {
		t.Fatalf("same input produced different pixels")
	}
}

func TestDrawTimerDotsOnlyWhileRunning(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)
	dotY := int(domain.DotY(domain.RemainingFontSize(5)))

	running, err := r.DrawTimer(dto.TimerFrameInput{ElapsedSec: 1, GoalSec: 60, Round: 1, Running: true})
	if err != nil {
		t.Fatalf("draw running: %v", err)
	}
	if got := rgbaAt(t, running, domain.CenterX+domain.DotSpacing, dotY); got != (color.RGBA{R: 0x3d, G: 0x6e, B: 0xe0, A: 0xff}) {
		t.Fatalf("expected bright lead dot right of centre, got %v", got)
	}
	if got := rgbaAt(t, running, domain.CenterX, dotY); got != (color.RGBA{R: 0x16, G: 0x2a, B: 0x52, A: 0xff}) {
		t.Fatalf("expected dark trailing dot at centre, got %v", got)
	}

	paused, err := r.DrawTimer(dto.TimerFrameInput{ElapsedSec: 1, GoalSec: 60, Round: 1, Running: false})
	if err != nil {
		t.Fatalf("draw paused: %v", err)
	}
	if got := rgbaAt(t, paused, domain.CenterX, dotY); got != (color.RGBA{R: 0x1b, G: 0x1b, B: 0x1b, A: 0xff}) {
		t.Fatalf("expected paused background under dot position, got %v", got)
	}
}

func TestDrawTimerBackgroundFollowsRunning(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)
	running, err := r.DrawTimer(dto.TimerFrameInput{ElapsedSec: 0, GoalSec: 10, Round: 1, Running: true})
	if err != nil {
		t.Fatalf("draw running: %v", err)
	}
	paused, err := r.DrawTimer(dto.TimerFrameInput{ElapsedSec: 0, GoalSec: 10, Round: 1, Running: false})
	if err != nil {
		t.Fatalf("draw paused: %v", err)
	}
	if rgbaAt(t, running, domain.CenterX, 135) == rgbaAt(t, paused, domain.CenterX, 135) {
		t.Fatalf("running and paused backgrounds should differ")
	}
}

func TestDrawClearIsSolidBlack(t *testing.T) {
	t.Parallel()
	frame := newRenderer(t).DrawClear()
	img := frame.Image.(*image.RGBA)
	for y := 0; y < domain.CanvasSize; y++ {
		for x := 0; x < domain.CanvasSize; x++ {
			if c := img.RGBAAt(x, y); c != (color.RGBA{A: 0xff}) {
				t.Fatalf("pixel %d,%d not black: %v", x, y, c)
			}
		}
	}
	if _, err := frame.PNG(); err != nil {
		t.Fatalf("encode clear frame: %v", err)
	}
}
