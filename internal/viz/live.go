package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bondsim/internal/metrics"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/sim"
	"github.com/san-kum/bondsim/internal/storage"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	updatesPerTick  = 4
	snapshotPath    = "snapshot.msgpack"
	recordingPath   = "simulation.gif"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of one simulation. The caller keeps ownership of
// the manager.
type Model struct {
	mgr       *sim.Manager
	initial   *scene.Scene
	sceneName string
	duration  float64

	canvas   *Canvas
	viewport Viewport
	theme    Theme

	running       bool
	showHelp      bool
	energyHistory []float64
	dtHistory     []float64
	status        string
	err           error
	rec           *gifRecorder
}

// NewModel wraps mgr. duration bounds the run in simulated seconds; zero
// runs until quit.
func NewModel(mgr *sim.Manager, sceneName string, duration float64) Model {
	return Model{
		mgr:       mgr,
		initial:   mgr.Scene.Clone(),
		sceneName: sceneName,
		duration:  duration,
		canvas:    NewCanvas(width, height),
		viewport:  DefaultViewport,
		theme:     Themes[0],
		running:   true,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running && !m.finished() {
			m.advance()
		}
		m.draw()
		if m.rec != nil {
			m.rec.capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.mgr.Settings
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.err = nil
		m.energyHistory, m.dtHistory = m.energyHistory[:0], m.dtHistory[:0]
		m.setStatus(m.mgr.Reset(m.initial.Clone()), "reset")
	case "e":
		m.cycleEngine()
	case "g":
		s.UseGrid = !s.UseGrid
		m.status = "grid " + onOff(s.UseGrid)
	case "b":
		s.UseBackup = !s.UseBackup
		m.status = "backup " + onOff(s.UseBackup)
	case "a":
		s.UseAutoDt = !s.UseAutoDt
		m.status = "auto dt " + onOff(s.UseAutoDt)
	case "+", "=":
		s.Dt = math.Min(s.Dt*1.25, s.MaxDt)
		m.status = fmt.Sprintf("dt %.3g", s.Dt)
	case "-", "_":
		s.Dt *= 0.8
		m.status = fmt.Sprintf("dt %.3g", s.Dt)
	case "t":
		m.theme = nextTheme(m.theme.Name)
		m.status = "theme " + m.theme.Name
	case "s":
		m.setStatus(storage.SaveSceneFile(snapshotPath, m.mgr.Scene), "saved "+snapshotPath)
	case "G":
		if m.rec != nil {
			m.setStatus(m.rec.save(recordingPath), fmt.Sprintf("wrote %d frames to %s", len(m.rec.frames), recordingPath))
			m.rec = nil
		} else {
			m.rec = &gifRecorder{}
			m.status = "recording"
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) setStatus(err error, ok string) {
	if err != nil {
		m.status = "error: " + err.Error()
		return
	}
	m.status = ok
}

func (m *Model) cycleEngine() {
	engines := m.mgr.Engines()
	current := m.mgr.Backend().Engine()
	next := engines[0]
	for i, e := range engines {
		if e == current {
			next = engines[(i+1)%len(engines)]
			break
		}
	}
	m.setStatus(m.mgr.SetEngine(next), "engine "+m.mgr.Backend().Name())
}

func (m *Model) finished() bool {
	return m.duration > 0 && m.mgr.TotalSimulationTime >= m.duration
}

func (m *Model) advance() {
	for i := 0; i < updatesPerTick && !m.finished(); i++ {
		if err := m.mgr.Update(); err != nil {
			m.err = err
			m.running = false
			return
		}
	}

	total := metrics.Energy(m.mgr.Scene).Total()
	if !math.IsNaN(total) && !math.IsInf(total, 0) {
		m.energyHistory = pushBounded(m.energyHistory, total)
	}
	m.dtHistory = pushBounded(m.dtHistory, m.mgr.Settings.Dt)
}

func pushBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) draw() {
	DrawScene(m.canvas, m.viewport, m.mgr.Scene)
}

func (m Model) View() string {
	sceneView := canvasStyle.Foreground(m.theme.Scene).Render(m.canvas.String())

	header := lipgloss.NewStyle().Foreground(m.theme.Header).Bold(true).MarginBottom(1)
	label := lipgloss.NewStyle().Foreground(m.theme.Label).Width(12)
	value := lipgloss.NewStyle().Foreground(m.theme.Value)
	warn := lipgloss.NewStyle().Foreground(m.theme.Warning).Bold(true)
	row := func(k, v string) string { return label.Render(k) + value.Render(v) + "\n" }

	mgr := m.mgr
	set := mgr.Settings
	var b strings.Builder
	b.WriteString(header.Render(strings.ToUpper(m.sceneName)) + "\n")

	state := "RUNNING"
	switch {
	case m.err != nil:
		state = "STOPPED"
	case m.finished():
		state = "DONE"
	case !m.running:
		state = "PAUSED"
	}
	b.WriteString(state)
	if m.rec != nil {
		b.WriteString(warn.Render("  ● REC"))
	}
	b.WriteString("\n\n")

	if m.duration > 0 {
		b.WriteString(ProgressBar(mgr.TotalSimulationTime/m.duration, 30) + "\n\n")
	}
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Graph).Render(chart) + "\n\n")
	}

	b.WriteString(row("Time", fmt.Sprintf("%.4fs", mgr.TotalSimulationTime)))
	b.WriteString(row("dt", fmt.Sprintf("%.3g", set.Dt)))
	if len(m.dtHistory) > 1 {
		b.WriteString(label.Render("") + Sparkline(m.dtHistory, 30) + "\n")
	}
	b.WriteString(row("Engine", mgr.Backend().Name()))
	b.WriteString(row("Nodes", fmt.Sprintf("%d", len(mgr.Scene.Nodes))))
	b.WriteString(row("Bonds", fmt.Sprintf("%d (-%d)", len(mgr.Scene.Connections), mgr.BrokenBonds)))
	b.WriteString(row("Recoveries", fmt.Sprintf("%d", mgr.Recoveries)))
	b.WriteString(row("Grid", onOff(set.UseGrid)))
	b.WriteString(row("Backup", onOff(set.UseBackup)))
	b.WriteString(row("Auto dt", onOff(set.UseAutoDt)))
	if n := len(m.energyHistory); n > 0 {
		b.WriteString(row("Energy", fmt.Sprintf("%.4g", m.energyHistory[n-1])))
	}

	if m.err != nil {
		b.WriteString("\n" + warn.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + value.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render("SP:Pause R:Reset E:Engine G:Grid\nB:Backup A:AutoDt +/-:dt ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, sceneView, statsStyle.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space   pause or resume
  r       restart from the initial scene
  e       cycle execution engine
  g       toggle the spatial grid
  b       toggle backups
  a       toggle adaptive dt
  + / -   grow or shrink dt
  t       cycle colour theme
  s       save the scene to ` + snapshotPath + `
  G       start or stop GIF recording
  ?       toggle this help
  q       quit
`

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
