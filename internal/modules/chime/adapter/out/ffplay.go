package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	hclog "github.com/hashicorp/go-hclog"

	chimeout "decktimer/internal/modules/chime/port/out"
)

// FFPlayDevice plays a sound file through a headless ffplay process. Every
// Play starts from the top, so Rewind has nothing to do.
type FFPlayDevice struct {
	binary string
	sound  string
	log    hclog.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewFFPlayDevice(sound string, log hclog.Logger) *FFPlayDevice {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &FFPlayDevice{binary: "ffplay", sound: sound, log: log.Named("ffplay")}
}

var (
	_ chimeout.Device = (*FFPlayDevice)(nil)
	_ chimeout.Prober = (*FFPlayDevice)(nil)
)

func (d *FFPlayDevice) Play(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()

	cmd := exec.Command(d.binary, d.sound, "-autoexit", "-nodisp", "-hide_banner", "-loglevel", "warning")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffplay: %w", err)
	}
	d.cmd = cmd
	d.log.Debug("playing", "sound", d.sound, "pid", cmd.Process.Pid)
	go d.reap(cmd)
	return nil
}

func (d *FFPlayDevice) Stop(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	return nil
}

func (d *FFPlayDevice) Rewind(context.Context) error { return nil }

func (d *FFPlayDevice) Probe(context.Context) error {
	if _, err := exec.LookPath(d.binary); err != nil {
		return fmt.Errorf("find %s: %w", d.binary, err)
	}
	if d.sound == "" {
		return errors.New("chime sound file is not configured")
	}
	if _, err := os.Stat(d.sound); err != nil {
		return fmt.Errorf("stat chime sound: %w", err)
	}
	return nil
}

// Playing reports whether an ffplay process is still attached.
func (d *FFPlayDevice) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cmd != nil
}

func (d *FFPlayDevice) stopLocked() {
	if d.cmd == nil {
		return
	}
	if err := d.cmd.Process.Signal(syscall.SIGINT); err != nil && !errors.Is(err, os.ErrProcessDone) {
		_ = d.cmd.Process.Kill()
	}
	d.cmd = nil
}

func (d *FFPlayDevice) reap(cmd *exec.Cmd) {
	err := cmd.Wait()
	d.mu.Lock()
	if d.cmd == cmd {
		d.cmd = nil
	}
	d.mu.Unlock()
	if err != nil {
		d.log.Debug("ffplay exited", "error", err)
	}
}
