package out

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	renderout "decktimer/internal/modules/render/port/out"
)

// GoFontFaces serves Go Regular faces, one cached face per pixel size.
type GoFontFaces struct {
	mu    sync.Mutex
	font  *truetype.Font
	faces map[float64]font.Face
}

func NewGoFontFaces() (renderout.FaceSource, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	return &GoFontFaces{font: f, faces: map[float64]font.Face{}}, nil
}

func (s *GoFontFaces) Face(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if face, ok := s.faces[size]; ok {
		return face, nil
	}
	face := truetype.NewFace(s.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	s.faces[size] = face
	return face, nil
}
