package out

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/fogleman/gg"

	// PNG decoder for background overrides.
	_ "image/png"

	"decktimer/internal/modules/render/domain"
	renderout "decktimer/internal/modules/render/port/out"
)

var (
	runningFill = color.RGBA{R: 0x10, G: 0x18, B: 0x2b, A: 0xff}
	pausedFill  = color.RGBA{R: 0x1b, G: 0x1b, B: 0x1b, A: 0xff}
)

type Backgrounds struct {
	running image.Image
	paused  image.Image
}

// NewBackgrounds loads PNG overrides; an empty path keeps the built-in face.
func NewBackgrounds(runningPath, pausedPath string) (renderout.BackgroundSource, error) {
	running, err := loadOr(runningPath, builtin(runningFill, domain.AccentRunning))
	if err != nil {
		return nil, err
	}
	paused, err := loadOr(pausedPath, builtin(pausedFill, domain.AccentPaused))
	if err != nil {
		return nil, err
	}
	return &Backgrounds{running: running, paused: paused}, nil
}

func (b *Backgrounds) Background(running bool) image.Image {
	if running {
		return b.running
	}
	return b.paused
}

func loadOr(path string, fallback image.Image) (image.Image, error) {
	if path == "" {
		return fallback, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode background %s: %w", path, err)
	}
	return img, nil
}

func builtin(fill, ring color.RGBA) image.Image {
	const size = float64(domain.CanvasSize)
	dc := gg.NewContext(domain.CanvasSize, domain.CanvasSize)
	dc.SetColor(color.Black)
	dc.Clear()
	dc.DrawRoundedRectangle(4, 4, size-8, size-8, 18)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetLineWidth(2)
	dc.SetColor(color.RGBA{R: ring.R / 2, G: ring.G / 2, B: ring.B / 2, A: 0xff})
	dc.Stroke()
	return dc.Image()
}
