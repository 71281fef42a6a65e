package analysis

import (
	"strings"

	"github.com/san-kum/freefall/internal/dynamo"
)

// PhasePortrait2D holds (x, y) samples for a phase plot.
type PhasePortrait2D struct {
	XLabel, YLabel string
	Points         []struct{ X, Y float64 }
}

// PhasePortraitFromHistory plots velocity (x) against height (y).
func PhasePortraitFromHistory(h []dynamo.HistoryPoint) *PhasePortrait2D {
	if len(h) == 0 {
		return nil
	}

	portrait := &PhasePortrait2D{
		XLabel: "velocity (m/s)",
		YLabel: "height (m)",
		Points: make([]struct{ X, Y float64 }, 0, len(h)),
	}
	for _, p := range h {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: p.Velocity,
			Y: p.Position,
		})
	}
	return portrait
}

// Overlay appends the points of other, for drawing two runs on one grid.
func (p *PhasePortrait2D) Overlay(other *PhasePortrait2D) *PhasePortrait2D {
	if p == nil {
		return other
	}
	if other == nil {
		return p
	}
	merged := &PhasePortrait2D{XLabel: p.XLabel, YLabel: p.YLabel}
	merged.Points = append(append(merged.Points, p.Points...), other.Points...)
	return merged
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

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
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// zero velocity and ground level, where visible
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
