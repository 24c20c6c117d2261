package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	renderdto "decktimer/internal/modules/render/dto"
	timerout "decktimer/internal/modules/timer/port/out"
)

// PNGFileDisplay mirrors the key face into <state>/frames so external tools
// can pick it up. The idle image is represented by a marker file because the
// host owns that artwork.
type PNGFileDisplay struct {
	dir      string
	instance string
	now      func() time.Time
}

func NewPNGFileDisplay(stateDir, instance string) timerout.Display {
	return &PNGFileDisplay{dir: filepath.Join(stateDir, "frames"), instance: instance, now: time.Now}
}

func (d *PNGFileDisplay) ShowFrame(_ context.Context, frame renderdto.Frame) error {
	b, err := frame.PNG()
	if err != nil {
		return err
	}
	if err := d.prepare(); err != nil {
		return err
	}
	tmp := d.file(".png.tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := os.Rename(tmp, d.file(".png")); err != nil {
		return fmt.Errorf("replace frame: %w", err)
	}
	if err := os.Remove(d.file(".idle")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove idle marker: %w", err)
	}
	return nil
}

func (d *PNGFileDisplay) ShowIdle(_ context.Context) error {
	if err := d.prepare(); err != nil {
		return err
	}
	if err := os.Remove(d.file(".png")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove frame: %w", err)
	}
	if err := os.WriteFile(d.file(".idle"), nil, 0o644); err != nil {
		return fmt.Errorf("write idle marker: %w", err)
	}
	return nil
}

func (d *PNGFileDisplay) ShowAlert(_ context.Context) error {
	if err := d.prepare(); err != nil {
		return err
	}
	f, err := os.OpenFile(d.file(".alerts"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open alert log: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, d.now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	return nil
}

func (d *PNGFileDisplay) prepare() error {
	if err := checkInstance(d.instance); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create frames dir: %w", err)
	}
	return nil
}

func (d *PNGFileDisplay) file(suffix string) string {
	return filepath.Join(d.dir, d.instance+suffix)
}
