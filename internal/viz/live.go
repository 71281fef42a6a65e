package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/freefall/internal/analysis"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/export"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/sim"
)

const (
	width       = 100
	height      = 32
	statsWidth  = 46
	chartHeight = 8
	arrowLength = 12
)

type TickMsg time.Time

func tickCmd(rate int) tea.Cmd {
	if rate <= 0 {
		rate = 30
	}
	return tea.Tick(time.Second/time.Duration(rate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// ModelConfig tunes the live view. Zero values fall back to defaults.
type ModelConfig struct {
	Title     string
	FrameRate int
	Theme     string
	Logger    *log.Logger
	Renderer  *lipgloss.Renderer
	// AllowBack enables the key that returns to the preset picker.
	AllowBack bool
}

// tunable is one parameter adjustable from the keyboard with a fixed
// additive step.
type tunable struct {
	label string
	unit  string
	step  float64
	get   func(dynamo.Params) float64
	patch func(float64) params.Patch
}

var tunables = []tunable{
	{"mass", "kg", 0.1,
		func(p dynamo.Params) float64 { return p.Mass },
		func(v float64) params.Patch { return params.Patch{Mass: params.F(v)} }},
	{"drag k", "", 0.01,
		func(p dynamo.Params) float64 { return p.FrictionCoefficient },
		func(v float64) params.Patch { return params.Patch{FrictionCoefficient: params.F(v)} }},
	{"volume", "m³", 0.0005,
		func(p dynamo.Params) float64 { return p.Volume },
		func(v float64) params.Patch { return params.Patch{Volume: params.F(v)} }},
	{"air ρ", "kg/m³", 0.05,
		func(p dynamo.Params) float64 { return p.AirDensity },
		func(v float64) params.Patch { return params.Patch{AirDensity: params.F(v)} }},
	{"height", "m", 5,
		func(p dynamo.Params) float64 { return p.SimulationHeight },
		func(v float64) params.Patch { return params.Patch{SimulationHeight: params.F(v)} }},
	{"gravity", "m/s²", 0.1,
		func(p dynamo.Params) float64 { return p.Gravity },
		func(v float64) params.Patch { return params.Patch{Gravity: params.F(v)} }},
	{"v0", "m/s", 1,
		func(p dynamo.Params) float64 { return p.InitialVelocity },
		func(v float64) params.Patch { return params.Patch{InitialVelocity: params.F(v)} }},
}

var chartTabs = []struct{ name, field, unit string }{
	{"height", "position", "m"},
	{"velocity", "velocity", "m/s"},
	{"accel", "acceleration", "m/s²"},
	{"force", "net_force", "N"},
	{"energy", "energy", "J"},
}

// Model is the Bubble Tea view of one controller. It never steps physics
// itself: ticks feed elapsed wall time into the controller and every frame
// renders the controller's latest snapshot.
type Model struct {
	ctrl     *sim.Controller
	cfg      ModelConfig
	keys     KeyMap
	help     help.Model
	styles   Styles
	canvas   *Canvas
	logger   *log.Logger
	width    int
	height   int
	selected int
	tab      int
	grid     bool
	baseline []dynamo.HistoryPoint
	status   string
	lastTick time.Time
}

func NewModel(ctrl *sim.Controller, cfg ModelConfig) Model {
	if cfg.Title == "" {
		cfg.Title = "freefall"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	keys := DefaultKeyMap()
	keys.Back.SetEnabled(cfg.AllowBack)

	m := Model{
		ctrl:   ctrl,
		cfg:    cfg,
		keys:   keys,
		help:   help.New(),
		styles: NewStyles(cfg.Renderer, GetTheme(cfg.Theme)),
		canvas: NewCanvas(1, 1),
		logger: logger,
		grid:   true,
	}
	m.resize(width, height)
	return m
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.cfg.FrameRate)
}

// Controller returns the controller the view renders.
func (m Model) Controller() *sim.Controller { return m.ctrl }

// Baseline returns the saved comparison run, if any.
func (m Model) Baseline() []dynamo.HistoryPoint { return m.baseline }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		now := time.Time(msg)
		if !m.lastTick.IsZero() {
			m.ctrl.Tick(now.Sub(m.lastTick))
		}
		m.lastTick = now
		return m, tickCmd(m.cfg.FrameRate)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.ctrl.Toggle()
		if m.ctrl.Phase() == sim.Terminated {
			m.status = "landed: press r to reset"
		}
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
	case key.Matches(msg, m.keys.SaveBaseline):
		m.baseline = m.ctrl.Baseline()
		if len(m.baseline) == 0 {
			m.status = "nothing to save yet"
		} else {
			m.status = fmt.Sprintf("baseline saved (%d points)", len(m.baseline))
			m.logger.Debug("baseline saved", "points", len(m.baseline))
		}
	case key.Matches(msg, m.keys.ClearBase):
		m.baseline = nil
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % len(chartTabs)
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + len(chartTabs) - 1) % len(chartTabs)
	case key.Matches(msg, m.keys.Up):
		m.selected = (m.selected + len(tunables) - 1) % len(tunables)
	case key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + 1) % len(tunables)
	case key.Matches(msg, m.keys.Increase):
		m.adjust(1)
	case key.Matches(msg, m.keys.Decrease):
		m.adjust(-1)
	case key.Matches(msg, m.keys.Model):
		next := dynamo.Linear
		if m.ctrl.Params().FrictionModel == dynamo.Linear {
			next = dynamo.Quadratic
		}
		m.apply(params.Patch{FrictionModel: params.Model(next)})
	case key.Matches(msg, m.keys.Grid):
		m.grid = !m.grid
	case key.Matches(msg, m.keys.Theme):
		m.styles = NewStyles(m.cfg.Renderer, m.styles.Theme().Next())
		m.status = "theme: " + m.styles.Theme().Name
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
	}
	return m, nil
}

func (m *Model) adjust(dir float64) {
	t := tunables[m.selected]
	v := t.get(m.ctrl.Params()) + dir*t.step
	// keep float noise out of the readout
	v = math.Round(v/t.step) * t.step
	m.apply(t.patch(v))
}

func (m *Model) apply(patch params.Patch) {
	if err := m.ctrl.SetParams(patch); err != nil {
		m.status = err.Error()
		return
	}
	if patch.SimulationHeight != nil || patch.InitialVelocity != nil {
		if m.ctrl.Phase() != sim.Idle {
			m.status = "applies after reset"
		}
	}
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.help.Width = w

	helpRows := 1
	if m.help.ShowAll {
		helpRows = 5
	}
	cw := max(w-statsWidth-6, 24)
	ch := max(h-chartHeight-helpRows-8, 6)
	m.canvas.Resize(cw, ch)
}

func (m Model) chartWidth() int {
	return max(m.canvas.Width-10, 16)
}

func (m Model) View() string {
	st := m.ctrl.Snapshot()
	m.draw(st)

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Canvas.Render(m.canvas.String()),
		m.viewChart(st),
	)
	main := lipgloss.JoinHorizontal(lipgloss.Top, left, m.styles.Stats.Render(m.viewStats(st)))
	return lipgloss.JoinVertical(lipgloss.Left, main, "", m.help.View(m.keys))
}

func (m Model) phaseLabel(st sim.State) string {
	switch st.Phase {
	case sim.Running:
		return m.styles.Running.Render("● FALLING")
	case sim.Paused:
		return m.styles.Paused.Render("❚❚ PAUSED")
	case sim.Terminated:
		return m.styles.Terminated.Render("■ LANDED")
	}
	return m.styles.Muted.Render("○ READY")
}

func (m Model) viewStats(st sim.State) string {
	s := m.styles
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(s.Label.Render(label) + s.Value.Render(value) + "\n")
	}

	b.WriteString(s.Header.Render(strings.ToUpper(m.cfg.Title)) + "\n")
	b.WriteString(m.phaseLabel(st) + "\n\n")

	row("time", fmt.Sprintf("%.3f s", st.Time))
	row("height", fmt.Sprintf("%.2f m", st.Position))
	row("velocity", fmt.Sprintf("%.3f m/s", st.Velocity))
	row("accel", fmt.Sprintf("%.3f m/s²", st.Acceleration))
	row("gravity", fmt.Sprintf("%.3f N", st.GravityForce))
	row("buoyancy", fmt.Sprintf("%.3f N", st.ArchimedesThrust))
	row("drag", fmt.Sprintf("%.3f N", st.FrictionForce))
	row("net force", fmt.Sprintf("%.3f N", st.NetForce))
	row("energy", fmt.Sprintf("%.1f J (k %.1f)", st.TotalEnergy, st.KineticEnergy))
	if vt, ok := analysis.TerminalVelocity(st.Params); ok {
		row("terminal v", fmt.Sprintf("%.3f m/s", vt))
	}

	fallen := 0.0
	if h := st.Params.SimulationHeight; h > 0 {
		fallen = 1 - st.Position/h
	}
	b.WriteString("\n" + s.ProgressBar(fallen, 30) + "\n")

	b.WriteString("\nPARAMETERS\n")
	for i, t := range tunables {
		line := fmt.Sprintf("%-8s %10.4g %s", t.label, t.get(st.Params), t.unit)
		if i == m.selected {
			b.WriteString(s.Active.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + s.Muted.Render(line) + "\n")
		}
	}
	b.WriteString("  " + s.Muted.Render(fmt.Sprintf("%-8s %10s", "drag law", st.Params.FrictionModel)) + "\n")

	if len(m.baseline) > 0 {
		c := analysis.Compare(st.History, m.baseline)
		b.WriteString("\nBASELINE " + s.Muted.Render("run / saved") + "\n")
		row("impact t", fmt.Sprintf("%.3f / %.3f s", c.ImpactTime[0], c.ImpactTime[1]))
		row("impact v", fmt.Sprintf("%.3f / %.3f", c.ImpactVelocity[0], c.ImpactVelocity[1]))
		row("max Δh", fmt.Sprintf("%.3f m", c.MaxPositionGap))
	}

	if m.status != "" {
		b.WriteString("\n" + s.Warning.Render(m.status))
	}
	return b.String()
}

func (m Model) viewChart(st sim.State) string {
	tabs := make([]string, len(chartTabs))
	for i, t := range chartTabs {
		style := m.styles.Tab
		if i == m.tab {
			style = m.styles.ActiveTab
		}
		tabs[i] = style.Render(t.name)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	tab := chartTabs[m.tab]
	data, colors := chartSeries(st.History, m.baseline, export.Fields[tab.field], m.chartWidth())
	if len(data) == 0 {
		return header + "\n" + m.styles.Muted.Render("  press space to drop")
	}

	caption := fmt.Sprintf("%s [%s]", tab.name, tab.unit)
	if len(data) > 1 {
		caption += "  green: run  yellow: baseline"
	}
	chart := asciigraph.PlotMany(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(m.chartWidth()),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
	if m.grid {
		chart = gridLines(chart)
	}
	return header + "\n" + m.styles.Graph.Render(chart)
}

// gridLines dots the blank plot cells of every other chart row, starting
// with the top row. Rows without a y axis (the caption) are left alone.
func gridLines(chart string) string {
	lines := strings.Split(chart, "\n")
	row := 0
	for i, line := range lines {
		axis := strings.IndexAny(line, "┤┼")
		if axis < 0 {
			continue
		}
		if row%2 == 0 {
			head, plot := line[:axis], line[axis:]
			lines[i] = head + strings.ReplaceAll(plot, " ", "┈")
		}
		row++
	}
	return strings.Join(lines, "\n")
}

// chartSeries samples run and baseline on n evenly spaced times spanning
// the run (or the baseline alone when the run is empty).
func chartSeries(run, base []dynamo.HistoryPoint, field export.Field, n int) ([][]float64, []asciigraph.AnsiColor) {
	ref := run
	if len(ref) < 2 {
		ref = base
	}
	if len(ref) < 2 || n < 2 || field == nil {
		return nil, nil
	}
	t0, t1 := ref[0].Time, ref[len(ref)-1].Time

	var (
		data   [][]float64
		colors []asciigraph.AnsiColor
	)
	add := func(h []dynamo.HistoryPoint, c asciigraph.AnsiColor) {
		if len(h) < 2 {
			return
		}
		s := make([]float64, n)
		for i := range s {
			t := t0 + (t1-t0)*float64(i)/float64(n-1)
			s[i] = field(sampleAt(h, t))
		}
		data = append(data, s)
		colors = append(colors, c)
	}
	add(run, asciigraph.Green)
	add(base, asciigraph.Yellow)
	return data, colors
}

// sampleAt interpolates h at t and holds the end values outside its span.
func sampleAt(h []dynamo.HistoryPoint, t float64) dynamo.HistoryPoint {
	if p, ok := analysis.Interpolate(h, t); ok {
		return p
	}
	if t < h[0].Time {
		return h[0]
	}
	return h[len(h)-1]
}

// draw renders the body, its force arrows, the ground and the baseline
// ghost onto the canvas.
func (m Model) draw(st sim.State) {
	c := m.canvas
	c.Clear()
	pw, ph := c.PixelSize()
	ground := ph - 2
	top := 6

	scale := math.Max(st.Params.SimulationHeight, st.Position)
	if scale <= 0 {
		scale = 1
	}
	screenY := func(pos float64) int {
		pos = math.Max(pos, 0)
		return ground - 3 - int(pos/scale*float64(ground-3-top))
	}

	c.DrawLine(0, ground, pw-1, ground)
	for x := 0; x < pw; x += 6 {
		c.DrawLine(x, ground+1, x+2, ph-1)
	}

	if len(m.baseline) > 0 {
		b := sampleAt(m.baseline, st.Time)
		gx := 2 * pw / 3
		c.Set(gx, screenY(b.Position))
		c.Set(gx-1, screenY(b.Position)+1)
		c.Set(gx+1, screenY(b.Position)+1)
	}

	bx, by := pw/3, screenY(st.Position)
	c.FillRect(bx, by, 2, 2)

	f := math.Max(math.Abs(st.GravityForce), math.Max(math.Abs(st.ArchimedesThrust), math.Abs(st.FrictionForce)))
	if f == 0 {
		return
	}
	arrow := func(x int, force float64) {
		n := int(force / f * arrowLength)
		if n == 0 {
			return
		}
		// positive force points down the screen
		start := by + 3
		if n < 0 {
			start = by - 3
		}
		c.VArrow(x, start, start+n)
	}
	arrow(bx, st.GravityForce)
	arrow(bx-5, -st.ArchimedesThrust)
	arrow(bx+5, st.FrictionForce)
}
