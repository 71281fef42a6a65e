package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/freefall/internal/dynamo"
)

// Series is one polyline of a chart.
type Series struct {
	Label  string
	Color  string
	Points []struct{ X, Y float64 }
}

// Field selects which quantity of a history point is plotted over time.
type Field func(p dynamo.HistoryPoint) float64

var Fields = map[string]Field{
	"position":     func(p dynamo.HistoryPoint) float64 { return p.Position },
	"velocity":     func(p dynamo.HistoryPoint) float64 { return p.Velocity },
	"acceleration": func(p dynamo.HistoryPoint) float64 { return p.Acceleration },
	"net_force":    func(p dynamo.HistoryPoint) float64 { return p.NetForce },
	"friction":     func(p dynamo.HistoryPoint) float64 { return p.FrictionForce },
	"energy":       func(p dynamo.HistoryPoint) float64 { return p.TotalEnergy },
}

// HistorySeries turns h into a time series of field.
func HistorySeries(h []dynamo.HistoryPoint, field Field, label, color string) Series {
	s := Series{Label: label, Color: color, Points: make([]struct{ X, Y float64 }, 0, len(h))}
	for _, p := range h {
		s.Points = append(s.Points, struct{ X, Y float64 }{X: p.Time, Y: field(p)})
	}
	return s
}

// HistoryToSVG charts one field of a run over time, overlaying baseline
// when it is non-empty.
func HistoryToSVG(run, baseline []dynamo.HistoryPoint, fieldName string, width, height int) (string, error) {
	field, ok := Fields[fieldName]
	if !ok {
		return "", fmt.Errorf("unknown field: %s", fieldName)
	}

	series := []Series{HistorySeries(run, field, "run", "#00ff88")}
	if len(baseline) > 0 {
		series = append(series, HistorySeries(baseline, field, "baseline", "#ff8800"))
	}
	return TrajectoryToSVG(series, width, height, fieldName), nil
}

// TrajectoryToSVG draws every series on shared axes scaled to fit.
func TrajectoryToSVG(series []Series, width, height int, title string) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	total := 0
	for _, s := range series {
		for _, p := range s.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			total++
		}
	}
	if total < 2 {
		return ""
	}

	lowY, highY := minY, maxY
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	maxX += rangeX * 0.05
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="16" fill="#cccccc" font-family="monospace" font-size="12">%s [%.3g, %.3g]</text>
`, title, lowY, highY))
	}

	for i, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))
		for j, p := range s.Points {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)

			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		if s.Label != "" {
			sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="11">%s</text>
`, width-90, 16+14*i, s.Color, s.Label))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
