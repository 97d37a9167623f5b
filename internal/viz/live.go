package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/sim"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 38
	historyCapacity = 240
	pointerStep     = 0.03
	bannerTime      = 2 * time.Second
)

type TickMsg time.Time

type resultMsg hand.Result

type trackerDoneMsg struct{}

// Options configures the terminal front-end.
type Options struct {
	Runner   *sim.Runner
	Tracker  hand.Tracker
	Camera   *Camera
	Theme    Theme
	TickRate time.Duration
	Cooldown time.Duration
	Source   string
}

// Model renders the cloud as braille and lets the keyboard stand in for a
// hand. Tracker results and keyboard frames go through the same classifier.
type Model struct {
	runner   *sim.Runner
	tracker  hand.Tracker
	cam      *Camera
	canvas   *Canvas
	theme    Theme
	tickRate time.Duration
	cooldown time.Duration
	source   string

	width, height int
	running       bool
	showHelp      bool
	trackerDone   bool

	// keyboard hand, normalized image coordinates
	kx, ky float64
	kGrasp bool

	banner      string
	bannerUntil time.Time

	radiusHist []float64
	motionHist []float64

	now func() time.Time
}

func NewModel(opts Options) Model {
	if opts.TickRate <= 0 {
		opts.TickRate = time.Second / 60
	}
	if opts.Camera == nil {
		opts.Camera = NewCamera(75, 15)
	}
	if opts.Theme.Name == "" {
		opts.Theme = ThemeCyberpunk
	}
	if opts.Source == "" {
		opts.Source = "keyboard"
	}
	m := Model{
		runner:     opts.Runner,
		tracker:    opts.Tracker,
		cam:        opts.Camera,
		canvas:     NewCanvas(width, height),
		theme:      opts.Theme,
		tickRate:   opts.TickRate,
		cooldown:   opts.Cooldown,
		source:     opts.Source,
		width:      width,
		height:     height,
		running:    true,
		kx:         0.5,
		ky:         0.5,
		radiusHist: make([]float64, 0, historyCapacity),
		motionHist: make([]float64, 0, historyCapacity),
		now:        time.Now,
	}
	m.draw()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func waitForResult(ch <-chan hand.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return trackerDoneMsg{}
		}
		return resultMsg(res)
	}
}

func (m Model) Init() tea.Cmd {
	if m.tracker != nil {
		return tea.Batch(m.tick(), waitForResult(m.tracker.Results()))
	}
	return m.tick()
}

// Update handles input events and advances the cloud.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme)
		case "n":
			m.keyboardHand(true)
			m.keyboardHand(false)
		case "g":
			m.kGrasp = !m.kGrasp
			m.keyboardHand(false)
		case "left", "h":
			m.movePointer(pointerStep, 0)
		case "right", "l":
			m.movePointer(-pointerStep, 0)
		case "up", "k":
			m.movePointer(0, -pointerStep)
		case "down", "j":
			m.movePointer(0, pointerStep)
		case "+", "=":
			m.cam.ZoomIn()
		case "-", "_":
			m.cam.ZoomOut()
		case "[":
			m.cam.TiltBy(-tiltStep)
		case "]":
			m.cam.TiltBy(tiltStep)
		}
		m.draw()

	case tea.WindowSizeMsg:
		w := msg.Width - statsWidth - 4
		h := msg.Height - 2
		if w < 10 {
			w = 10
		}
		if h < 5 {
			h = 5
		}
		m.width, m.height = w, h
		m.canvas = NewCanvas(w, h)
		m.draw()

	case resultMsg:
		m.apply(hand.Result(msg))
		return m, waitForResult(m.tracker.Results())

	case trackerDoneMsg:
		m.trackerDone = true

	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) apply(res hand.Result) {
	u := m.runner.Apply(res)
	if u.Switched {
		m.banner = gesture.Banner(u.Template)
		m.bannerUntil = m.now().Add(bannerTime)
	}
}

func (m *Model) keyboardHand(pinch bool) {
	m.apply(hand.Result{
		Hands: [][]hand.Landmark{hand.Synthesize(m.kx, m.ky, m.kGrasp, pinch)},
		At:    m.now(),
	})
}

func (m *Model) movePointer(dx, dy float64) {
	m.kx = clamp01(m.kx + dx)
	m.ky = clamp01(m.ky + dy)
	m.keyboardHand(false)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (m *Model) step() {
	loop := m.runner.Loop()
	loop.Tick()

	vals := loop.MetricValues()
	m.radiusHist = push(m.radiusHist, vals["radius"])
	m.motionHist = push(m.motionHist, vals["motion"])
	m.draw()
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Model) draw() {
	m.canvas.Clear()
	loop := m.runner.Loop()
	RenderCloud(m.canvas, loop.Store(), loop.Model(), m.cam)
	if st := loop.State(); st.Grasping {
		RenderPointer(m.canvas, float32(st.X), float32(st.Y), loop.Model(), m.cam)
	}
	loop.Store().TakeDirty()
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := lipgloss.NewStyle().Padding(1, 1).Render(m.renderCanvas())

	st := m.runner.Loop().State()
	header := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary)

	var s strings.Builder
	s.WriteString(header.Render(st.Template.Label()) + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	source := m.source
	if m.trackerDone {
		source += " (ended)"
	}
	row("Source", source)
	row("Pointer", fmt.Sprintf("%+.1f, %+.1f", st.X, st.Y))
	row("Grasp", onOff(st.Grasping))
	row("Pinch", onOff(st.Pinching))
	row("Switches", fmt.Sprintf("%d", st.Switches))
	row("Cooldown", ProgressBar(m.cooldownProgress(), 14))

	if len(m.radiusHist) > 1 {
		chart := asciigraph.Plot(m.radiusHist, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Radius"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Motion") + SparklineChart(m.motionHist, 20) + "\n")

	if m.banner != "" && m.now().Before(m.bannerUntil) {
		s.WriteString("\n" + lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).Render(m.banner) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nN:Next G:Grasp ←↑↓→:Move\nSP:Pause T:Theme ?:Help Q:Quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  N        - Pinch (next template)    ║
║  G        - Toggle grasp             ║
║  Arrows   - Move the hand            ║
║  +/-      - Zoom                     ║
║  [/]      - Tilt                     ║
║  Space    - Pause/Resume             ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) cooldownProgress() float64 {
	st := m.runner.Loop().State()
	if st.LastSwitch.IsZero() || m.cooldown <= 0 {
		return 1
	}
	return float64(m.now().Sub(st.LastSwitch)) / float64(m.cooldown)
}

// renderCanvas colors runs of cells that share a terminal color.
func (m Model) renderCanvas() string {
	var b strings.Builder
	for row := 0; row < m.canvas.Height; row++ {
		var run strings.Builder
		var runColor lipgloss.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(runColor).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < m.canvas.Width; col++ {
			var c lipgloss.Color
			if tint, ok := m.canvas.Tint(row, col); ok {
				c = m.theme.Particle(tint)
			}
			if c != runColor {
				flush()
				runColor = c
			}
			run.WriteRune(m.canvas.Grid[row][col])
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// Run starts the terminal front-end and blocks until the user quits.
func Run(opts Options) error {
	_, err := tea.NewProgram(NewModel(opts), tea.WithAltScreen()).Run()
	return err
}
