package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"decktimer/internal/ui/theme"
)

// PaletteSubmitMsg carries the trimmed command line on enter.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is sent on esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

type timerCommand struct {
	name string
	args string
	help string
}

// Kept in step with Model.executePalette.
var timerCommands = []timerCommand{
	{name: "goal", args: "<h> <m> <s>", help: "set the round goal"},
	{name: "start", help: "start or resume"},
	{name: "pause", help: "pause the round"},
	{name: "reset", help: "back to round one"},
	{name: "freeze", help: "hold the current face"},
	{name: "thaw", help: "resume drawing"},
	{name: "clear", help: "blank the key"},
}

// Palette is the ":" prompt for timer commands.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "goal 0 25 0"
	ti.CharLimit = 32
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open clears the prompt and focuses it.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case tea.KeyEnter:
			line := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case tea.KeyTab:
			// Completes a lone command word; arguments are left alone.
			typed := strings.TrimSpace(p.input.Value())
			if hints := MatchingHints(typed); len(hints) == 1 && !strings.Contains(typed, " ") {
				p.input.SetValue(strings.Fields(hints[0])[0] + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	lines := []string{theme.Title.Render("Timer"), ": " + p.input.View()}
	for _, h := range MatchingHints(p.input.Value()) {
		lines = append(lines, hintStyle.Render("  "+h))
	}
	w := p.width
	if w < 20 {
		w = 40
	}
	return paletteStyle.Width(w - 2).Render(strings.Join(lines, "\n"))
}

// MatchingHints lists usage lines for the commands the first typed word could
// still name. Arguments after the command word are ignored.
func MatchingHints(input string) []string {
	word := ""
	if fields := strings.Fields(strings.ToLower(input)); len(fields) > 0 {
		word = fields[0]
	}
	var hints []string
	for _, c := range timerCommands {
		if !strings.HasPrefix(c.name, word) {
			continue
		}
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		hints = append(hints, usage+"  "+c.help)
	}
	return hints
}
