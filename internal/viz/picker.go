package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/experiment"
	"github.com/san-kum/freefall/internal/sim"
)

const (
	stateMenu = iota
	stateSim
)

type pickerKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Integrator key.Binding
	Quit       key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Integrator, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultPickerKeys() pickerKeyMap {
	return pickerKeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "drop")),
		Integrator: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "integrator")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Picker lists the presets and opens a live view on the chosen one. Each
// launch builds a fresh controller from Base.
type Picker struct {
	state       int
	cursor      int
	presets     []string
	integrators []string
	integ       int
	base        config.Config
	view        ModelConfig
	opts        []sim.Option
	keys        pickerKeyMap
	help        help.Model
	styles      Styles
	live        Model
	ticking     bool
	err         error
	width       int
	height      int
}

// NewPicker copies base; the preset and integrator chosen in the menu
// override its fields for every launch.
func NewPicker(base *config.Config, view ModelConfig, opts ...sim.Option) Picker {
	if base == nil {
		base = config.DefaultConfig()
	}
	reg := experiment.NewRegistry()
	p := Picker{
		state:       stateMenu,
		presets:     reg.ListPresets(),
		integrators: reg.ListIntegrators(),
		base:        *base,
		view:        view,
		opts:        opts,
		keys:        defaultPickerKeys(),
		help:        help.New(),
		styles:      NewStyles(view.Renderer, GetTheme(view.Theme)),
	}
	for i, name := range p.integrators {
		if name == base.Integrator {
			p.integ = i
		}
	}
	for i, name := range p.presets {
		if name == base.Preset {
			p.cursor = i
		}
	}
	return p
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.help.Width = msg.Width
		if p.state == stateSim {
			p.live.resize(msg.Width, msg.Height)
		}
		return p, nil

	case TickMsg:
		if p.state != stateSim {
			// let the tick chain die while the menu is shown
			p.ticking = false
			return p, nil
		}

	case tea.KeyMsg:
		if p.state == stateMenu {
			return p.menuKey(msg)
		}
		if key.Matches(msg, p.live.keys.Back) {
			if ctrl := p.live.Controller(); ctrl.Phase() == sim.Running {
				ctrl.Toggle()
			}
			p.state = stateMenu
			return p, nil
		}
	}

	if p.state == stateSim {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}
	return p, nil
}

func (p Picker) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p.err = nil
	switch {
	case key.Matches(msg, p.keys.Quit):
		return p, tea.Quit
	case key.Matches(msg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, p.keys.Down):
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case key.Matches(msg, p.keys.Integrator):
		p.integ = (p.integ + 1) % len(p.integrators)
	case key.Matches(msg, p.keys.Select):
		return p.launch()
	}
	return p, nil
}

func (p Picker) launch() (tea.Model, tea.Cmd) {
	cfg := p.base
	cfg.Preset = p.presets[p.cursor]
	cfg.Integrator = p.integrators[p.integ]

	exp, err := experiment.New(&cfg, p.opts...)
	if err != nil {
		p.err = err
		return p, nil
	}

	view := p.view
	view.Title = cfg.Preset
	view.AllowBack = true
	p.live = NewModel(exp.Controller(), view)
	if p.width > 0 {
		p.live.resize(p.width, p.height)
	}
	p.state = stateSim

	if p.ticking {
		return p, nil
	}
	p.ticking = true
	return p, p.live.Init()
}

func (p Picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	s := p.styles
	t := s.Theme()
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText(p.view.Renderer, "FREEFALL", t.Primary, t.Secondary) + "\n")
	b.WriteString("    " + s.Muted.Render("vertical fall through air") + "\n")
	b.WriteString("    " + s.Muted.Render("─────────────────────────") + "\n\n")

	for i, name := range p.presets {
		desc := ""
		if preset, err := config.GetPreset(name); err == nil {
			desc = preset.Description
		}
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", s.Active.Render("▸"), s.Value.Bold(true).Render(fmt.Sprintf("%-14s", name)), s.Body.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", s.Muted.Render(fmt.Sprintf("%-14s", name)), s.Muted.Render(desc)))
		}
	}

	b.WriteString("\n    " + s.Label.Render("integrator") + s.Value.Render(p.integrators[p.integ]) + "\n")
	if p.err != nil {
		b.WriteString("\n    " + s.Terminated.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + p.help.View(p.keys) + "\n")
	return b.String()
}

// RunProgram runs m full-screen on the local terminal.
func RunProgram(m tea.Model, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...).Run()
	return err
}
