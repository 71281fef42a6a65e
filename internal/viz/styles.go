package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are built per renderer so SSH sessions get their own color
// profile.
type Styles struct {
	theme Theme

	Header     lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Active     lipgloss.Style
	Muted      lipgloss.Style
	Running    lipgloss.Style
	Paused     lipgloss.Style
	Terminated lipgloss.Style
	Warning    lipgloss.Style
	Canvas     lipgloss.Style
	Stats      lipgloss.Style
	Graph      lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	Body       lipgloss.Style
}

func NewStyles(r *lipgloss.Renderer, t Theme) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		theme:      t,
		Header:     r.NewStyle().Foreground(t.Secondary).Bold(true).MarginBottom(1),
		Label:      r.NewStyle().Foreground(t.Muted).Width(12),
		Value:      r.NewStyle().Foreground(t.Text),
		Active:     r.NewStyle().Foreground(t.Primary).Bold(true),
		Muted:      r.NewStyle().Foreground(t.Muted),
		Running:    r.NewStyle().Foreground(t.Success).Bold(true),
		Paused:     r.NewStyle().Foreground(t.Warning).Bold(true),
		Terminated: r.NewStyle().Foreground(t.Error).Bold(true),
		Warning:    r.NewStyle().Foreground(t.Warning),
		Canvas:     r.NewStyle().Padding(0, 1),
		Stats:      r.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(0, 2).Width(46),
		Graph:      r.NewStyle().Foreground(t.Secondary).Padding(1, 0, 0, 0),
		Tab:        r.NewStyle().Foreground(t.Muted).Padding(0, 1),
		ActiveTab:  r.NewStyle().Foreground(t.Text).Background(t.Primary).Bold(true).Padding(0, 1),
		Body:       r.NewStyle().Foreground(t.Accent),
	}
}

func (s Styles) Theme() Theme { return s.theme }

// ProgressBar renders how much of the drop is done.
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if percent > 0.8 {
		return s.Terminated.Render(bar)
	} else if percent > 0.4 {
		return s.Paused.Render(bar)
	}
	return s.Running.Render(bar)
}

// GradientText creates a gradient effect on text using color interpolation
func GradientText(r *lipgloss.Renderer, text string, startColor, endColor lipgloss.Color) string {
	if len(text) == 0 {
		return ""
	}
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	sr, sg, sb := parseHex(string(startColor))
	er, eg, eb := parseHex(string(endColor))

	var result strings.Builder
	n := len(text)

	for i, c := range text {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		red := int(float64(sr) + t*float64(er-sr))
		green := int(float64(sg) + t*float64(eg-sg))
		blue := int(float64(sb) + t*float64(eb-sb))

		style := r.NewStyle().Foreground(lipgloss.Color(hexColor(red, green, blue)))
		result.WriteString(style.Render(string(c)))
	}

	return result.String()
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	return parseHexByte(hex[1:3]), parseHexByte(hex[3:5]), parseHexByte(hex[5:7])
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
