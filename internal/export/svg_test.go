package export

import (
	"strings"
	"testing"

	"github.com/san-kum/freefall/internal/dynamo"
)

func fall(n int, g float64) []dynamo.HistoryPoint {
	h := make([]dynamo.HistoryPoint, n)
	for i := range h {
		t := float64(i+1) * 0.1
		h[i] = dynamo.HistoryPoint{Time: t, Position: 100 - g*t*t/2, Velocity: g * t}
	}
	return h
}

func TestHistoryToSVG(t *testing.T) {
	svg, err := HistoryToSVG(fall(20, 9.81), nil, "velocity", 400, 200)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete svg document")
	}
	if strings.Count(svg, "<path") != 1 {
		t.Errorf("expected one path, got %d", strings.Count(svg, "<path"))
	}
}

func TestHistoryToSVGBaseline(t *testing.T) {
	svg, err := HistoryToSVG(fall(20, 9.81), fall(15, 3.7), "position", 400, 200)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected run and baseline paths, got %d", strings.Count(svg, "<path"))
	}
	if !strings.Contains(svg, ">baseline<") {
		t.Error("missing baseline label")
	}
}

func TestHistoryToSVGErrors(t *testing.T) {
	if _, err := HistoryToSVG(fall(5, 9.81), nil, "jerk", 100, 100); err == nil {
		t.Error("expected error for unknown field")
	}
	if svg := TrajectoryToSVG([]Series{HistorySeries(fall(1, 9.81), Fields["position"], "", "#fff")}, 100, 100, ""); svg != "" {
		t.Error("expected empty output for a single point")
	}
}
