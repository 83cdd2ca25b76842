package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/sim"
)

var (
	pickTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// picker lists the scene presets and hands the chosen one to a live Model.
type picker struct {
	presets  []string
	cursor   int
	size     int
	settings sim.Settings
	duration float64
	opts     []sim.Option

	live *Model
	err  error
}

func newPicker(settings sim.Settings, size int, duration float64, opts ...sim.Option) picker {
	return picker{
		presets:  scene.ListPresets(),
		size:     size,
		settings: settings,
		duration: duration,
		opts:     opts,
	}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "left", "h":
		if p.size > 2 {
			p.size--
		}
	case "right", "l":
		p.size++
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p picker) start() (tea.Model, tea.Cmd) {
	name := p.presets[p.cursor]
	sc, err := scene.Generate(name, p.size)
	if err != nil {
		p.err = err
		return p, nil
	}
	mgr, err := sim.New(sc, p.settings, p.opts...)
	if err != nil {
		p.err = err
		return p, nil
	}
	live := NewModel(mgr, name, p.duration)
	p.live = &live
	return p, live.Init()
}

func (p picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("BONDSIM") + "\n    " + pickSub.Render("bonded particle soft bodies") + "\n    " + pickSub.Render("───────────────────────────") + "\n\n")
	for i, name := range p.presets {
		desc := scene.Presets[name].Description
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-14s", name)), pickDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", pickInactive.Render(fmt.Sprintf("%-14s", name)), pickInactive.Render(desc)))
		}
	}
	b.WriteString(fmt.Sprintf("\n    size %s\n", pickActive.Render(fmt.Sprintf("%d", p.size))))
	if p.err != nil {
		b.WriteString("\n    " + pickDesc.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickInactive.Render(" navigate  ") + pickKey.Render("h/l") + pickInactive.Render(" size  ") + pickKey.Render("enter") + pickInactive.Render(" start  ") + pickKey.Render("q") + pickInactive.Render(" quit") + "\n")
	return b.String()
}

// Run shows mgr live until the user quits.
func Run(mgr *sim.Manager, sceneName string, duration float64) error {
	_, err := tea.NewProgram(NewModel(mgr, sceneName, duration), tea.WithAltScreen()).Run()
	return err
}

// RunPicker lets the user choose a preset before going live.
func RunPicker(settings sim.Settings, size int, duration float64, opts ...sim.Option) error {
	final, err := tea.NewProgram(newPicker(settings, size, duration, opts...), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if p, ok := final.(picker); ok && p.live != nil {
		p.live.mgr.Close()
	}
	return nil
}
