package service

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"decktimer/internal/modules/render/domain"
	"decktimer/internal/modules/render/dto"
	renderout "decktimer/internal/modules/render/port/out"
)

// FrameRenderer draws key faces. It keeps no timer state: the same input
// always yields the same pixels.
type FrameRenderer struct {
	faces       renderout.FaceSource
	backgrounds renderout.BackgroundSource
}

func NewFrameRenderer(faces renderout.FaceSource, backgrounds renderout.BackgroundSource) *FrameRenderer {
	return &FrameRenderer{faces: faces, backgrounds: backgrounds}
}

func (r *FrameRenderer) DrawTimer(input dto.TimerFrameInput) (dto.Frame, error) {
	dc := gg.NewContext(domain.CanvasSize, domain.CanvasSize)
	drawBackground(dc, r.backgrounds.Background(input.Running))

	remainingText := domain.RemainingText(input.ElapsedSec, input.GoalSec)
	remainingSize := domain.RemainingFontSize(len(remainingText))
	remainingY := domain.RemainingY(remainingSize)
	textColor := domain.TextColor(input.Running)

	remainingFace, err := r.faces.Face(remainingSize)
	if err != nil {
		return dto.Frame{}, fmt.Errorf("remaining face: %w", err)
	}
	dc.SetColor(textColor)
	dc.SetFontFace(remainingFace)
	dc.DrawStringAnchored(remainingText, domain.CenterX, remainingY, 0.5, 0.5)

	roundSize := domain.RoundFontSize(input.Round)
	roundFace, err := r.faces.Face(roundSize)
	if err != nil {
		return dto.Frame{}, fmt.Errorf("round face: %w", err)
	}
	dc.SetFontFace(roundFace)
	dc.DrawStringAnchored(fmt.Sprintf("Round %d", input.Round), domain.CenterX, domain.RoundY(remainingSize, roundSize), 0.5, 0.5)

	if input.Running {
		dotY := domain.DotY(remainingSize)
		for _, dot := range domain.Dots(input.ElapsedSec) {
			dc.DrawCircle(float64(domain.CenterX+dot.OffsetX), dotY, domain.DotRadius)
			dc.SetColor(dot.Color)
			dc.Fill()
		}
	}
	return dto.Frame{Image: dc.Image()}, nil
}

func (r *FrameRenderer) DrawClear() dto.Frame {
	dc := gg.NewContext(domain.CanvasSize, domain.CanvasSize)
	dc.SetColor(domain.Clear)
	dc.Clear()
	return dto.Frame{Image: dc.Image()}
}

// drawBackground stretches bg over the whole canvas.
func drawBackground(dc *gg.Context, bg image.Image) {
	if bg == nil {
		return
	}
	b := bg.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	dc.Push()
	dc.Scale(float64(domain.CanvasSize)/float64(b.Dx()), float64(domain.CanvasSize)/float64(b.Dy()))
	dc.DrawImage(bg, -b.Min.X, -b.Min.Y)
	dc.Pop()
}
