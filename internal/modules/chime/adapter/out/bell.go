package out

import (
	"context"
	"fmt"
	"io"
)

// BellDevice rings the terminal bell. It has nothing to stop or rewind.
type BellDevice struct {
	out io.Writer
}

func NewBellDevice(out io.Writer) BellDevice {
	return BellDevice{out: out}
}

func (d BellDevice) Play(context.Context) error {
	if d.out == nil {
		return nil
	}
	if _, err := io.WriteString(d.out, "\a"); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	return nil
}

func (BellDevice) Stop(context.Context) error   { return nil }
func (BellDevice) Rewind(context.Context) error { return nil }
