package dto

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

type TimerFrameInput struct {
	ElapsedSec int
	GoalSec    int
	Round      int
	Running    bool
}

// Frame is an immutable rendered key face.
type Frame struct {
	Image image.Image
}

func (f Frame) PNG() ([]byte, error) {
	if f.Image == nil {
		return nil, fmt.Errorf("empty frame")
	}
	buf := bytes.Buffer{}
	if err := png.Encode(&buf, f.Image); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
