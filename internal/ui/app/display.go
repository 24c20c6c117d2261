package app

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	renderdto "decktimer/internal/modules/render/dto"
)

// ProgramDisplay forwards engine output to a running Bubble Tea program.
// Output produced before a program is bound is kept and replayed on Bind.
type ProgramDisplay struct {
	mu      sync.Mutex
	program *tea.Program
	pending tea.Msg
}

func NewProgramDisplay() *ProgramDisplay {
	return &ProgramDisplay{}
}

func (d *ProgramDisplay) Bind(program *tea.Program) {
	d.mu.Lock()
	d.program = program
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()
	if pending != nil {
		go program.Send(pending)
	}
}

func (d *ProgramDisplay) ShowFrame(_ context.Context, frame renderdto.Frame) error {
	d.send(FrameMsg{Image: frame.Image})
	return nil
}

func (d *ProgramDisplay) ShowIdle(context.Context) error {
	d.send(IdleMsg{})
	return nil
}

func (d *ProgramDisplay) ShowAlert(context.Context) error {
	d.send(AlertMsg{At: time.Now()})
	return nil
}

func (d *ProgramDisplay) send(msg tea.Msg) {
	d.mu.Lock()
	program := d.program
	if program == nil {
		d.pending = msg
	}
	d.mu.Unlock()
	if program != nil {
		program.Send(msg)
	}
}
