package app

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	timerdto "decktimer/internal/modules/timer/dto"
	"decktimer/internal/ui/components"
	"decktimer/internal/ui/theme"
)

// timerPort is the slice of the timer usecase the TUI drives.
type timerPort interface {
	Attach(ctx context.Context) (timerdto.StatusOutput, error)
	ShortPress(ctx context.Context, at time.Time) (timerdto.StatusOutput, error)
	LongPress(ctx context.Context, at time.Time) (timerdto.StatusOutput, error)
	Start(ctx context.Context, at time.Time) (timerdto.StatusOutput, error)
	Pause(ctx context.Context, at time.Time) (timerdto.StatusOutput, error)
	Reset(ctx context.Context) (timerdto.StatusOutput, error)
	Configure(ctx context.Context, input timerdto.ConfigureInput) (timerdto.StatusOutput, error)
	Freeze(ctx context.Context, frozen bool) (timerdto.StatusOutput, error)
	Clear(ctx context.Context) error
	Status(ctx context.Context) (timerdto.StatusOutput, error)
}

const faceColumns = 48

// ─── messages ────────────────────────────────────────────────────────────────

// FrameMsg carries a freshly rendered key face.
type FrameMsg struct{ Image image.Image }

// IdleMsg asks the view to show the idle key.
type IdleMsg struct{}

// AlertMsg flashes the key after a start was refused.
type AlertMsg struct{ At time.Time }

type statusMsg struct {
	status timerdto.StatusOutput
	err    error
}

type refreshMsg struct{}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Press   key.Binding
	Hold    key.Binding
	Freeze  key.Binding
	Palette key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Press:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "press")),
		Hold:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "long press")),
		Freeze:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "freeze")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Press, k.Hold, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Press, k.Hold, k.Freeze},
		{k.Palette, k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model: one simulated key plus a status line.
// Timer commands run inside tea.Cmds because the display sink feeds frames
// back through Program.Send from the timer's goroutine.
type Model struct {
	timer timerPort
	now   func() time.Time

	face     image.Image
	idle     bool
	alertAt  time.Time
	status   timerdto.StatusOutput
	message  string
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	width    int
	height   int
}

func NewModel(timer timerPort, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	return Model{
		timer:   timer,
		now:     now,
		idle:    true,
		keys:    defaultKeys(),
		help:    help.New(),
		palette: components.NewPalette(),
		message: "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.run(func(ctx context.Context) (timerdto.StatusOutput, error) {
		return m.timer.Attach(ctx)
	}), refreshEvery())
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Frames keep arriving while the palette is open.
	switch msg := msg.(type) {
	case FrameMsg:
		m.face = msg.Image
		m.idle = false
		return m, nil
	case IdleMsg:
		m.face = nil
		m.idle = true
		return m, nil
	case AlertMsg:
		m.alertAt = msg.At
		m.message = "set a goal before starting"
		return m, nil
	case statusMsg:
		if msg.status.Phase != "" {
			m.status = msg.status
		}
		if msg.err != nil {
			m.message = msg.err.Error()
		}
		return m, nil
	case refreshMsg:
		return m, tea.Batch(m.run(m.timer.Status), refreshEvery())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 48))
		m.help.Width = m.width
		return m, nil
	}

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.message = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Press):
			at := m.now()
			return m, m.run(func(ctx context.Context) (timerdto.StatusOutput, error) {
				return m.timer.ShortPress(ctx, at)
			})
		case key.Matches(msg, m.keys.Hold):
			at := m.now()
			return m, m.run(func(ctx context.Context) (timerdto.StatusOutput, error) {
				return m.timer.LongPress(ctx, at)
			})
		case key.Matches(msg, m.keys.Freeze):
			frozen := !m.status.RenderFrozen
			return m, m.run(func(ctx context.Context) (timerdto.StatusOutput, error) {
				return m.timer.Freeze(ctx, frozen)
			})
		}
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.showHelp {
		return m.help.View(m.keys)
	}
	pane := theme.Pane.BorderForeground(theme.PhaseBorder(m.status.Phase))
	if m.alerting() {
		pane = pane.BorderForeground(theme.Red)
	}
	body := pane.Render(m.renderFace())
	if m.palette.Visible() {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.palette.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("decktimer")+theme.Muted.Render("  "+m.status.Instance),
		body,
		m.renderStatusBar(),
	)
}

func (m Model) renderFace() string {
	if m.idle || m.face == nil {
		blank := strings.Repeat(" ", faceColumns)
		lines := make([]string, faceColumns/2)
		for i := range lines {
			lines[i] = blank
		}
		lines[len(lines)/2] = lipgloss.PlaceHorizontal(faceColumns, lipgloss.Center, theme.Muted.Render("idle"))
		return strings.Join(lines, "\n")
	}
	return components.KeyFace(m.face, faceColumns)
}

func (m Model) renderStatusBar() string {
	s := m.status
	phase := s.Phase
	if s.RenderFrozen {
		phase += " (frozen)"
	}
	left := fmt.Sprintf("%s  round %d  %s", s.RemainingText, s.Round, phase)
	if s.AlarmActive {
		left = theme.Alert.Render("● ") + left
	}
	right := theme.Muted.Render(m.message)
	return left + "\n" + right + "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m Model) alerting() bool {
	return !m.alertAt.IsZero() && m.now().Sub(m.alertAt) < 2*time.Second
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	at := m.now()
	switch parts[0] {
	case "goal":
		if len(parts) != 4 {
			m.message = "usage: goal <hours> <minutes> <seconds>"
			return m, nil
		}
		var values [3]int
		for i, raw := range parts[1:] {
			v, err := strconv.Atoi(raw)
			if err != nil {
				m.message = "goal fields must be integers"
				return m, nil
			}
			values[i] = v
		}
		input := timerdto.ConfigureInput{Hours: values[0], Minutes: values[1], Seconds: values[2]}
		return m, m.run(func(ctx context.Context) (timerdto.StatusOutput, error) {
			return m.timer.Configure(ctx, input)
		})
	case "start":
		return m, m.run(func(ctx context.Context) (timerdto.StatusOutput, error) {
			return m.timer.Start(ctx, at)
		})
	case "pause":
		return m, m.run(func(ctx context.Context) (timerdto.StatusOutput, error) {
			return m.timer.Pause(ctx, at)
		})
	case "reset":
		return m, m.run(m.timer.Reset)
	case "freeze", "thaw":
		frozen := parts[0] == "freeze"
		return m, m.run(func(ctx context.Context) (timerdto.StatusOutput, error) {
			return m.timer.Freeze(ctx, frozen)
		})
	case "clear":
		return m, func() tea.Msg {
			return statusMsg{err: m.timer.Clear(context.Background())}
		}
	default:
		m.message = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) run(fn func(ctx context.Context) (timerdto.StatusOutput, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn(context.Background())
		return statusMsg{status: status, err: err}
	}
}

func refreshEvery() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return refreshMsg{} })
}
