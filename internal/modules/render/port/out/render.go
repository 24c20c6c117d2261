package out

import (
	"image"

	"golang.org/x/image/font"
)

type FaceSource interface {
	Face(size float64) (font.Face, error)
}

type BackgroundSource interface {
	Background(running bool) image.Image
}
