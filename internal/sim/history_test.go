package sim

import (
	"errors"
	"testing"

	"github.com/san-kum/freefall/internal/dynamo"
)

func pointAt(t float64) dynamo.HistoryPoint {
	return dynamo.HistoryPoint{Time: t, Position: 100 - t}
}

func TestHistoryAppend(t *testing.T) {
	h := NewHistory()
	for _, ts := range []float64{0.1, 0.2, 0.3} {
		if err := h.Append(pointAt(ts)); err != nil {
			t.Fatalf("append %f failed: %v", ts, err)
		}
	}

	if h.Len() != 3 {
		t.Errorf("expected 3 points, got %d", h.Len())
	}
	last, ok := h.Last()
	if !ok || last.Time != 0.3 {
		t.Errorf("expected last t=0.3, got %v (ok=%v)", last.Time, ok)
	}
}

func TestHistoryOrderingViolation(t *testing.T) {
	tests := []struct {
		name string
		next float64
	}{
		{"equal time", 0.2},
		{"earlier time", 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory()
			_ = h.Append(pointAt(0.1))
			_ = h.Append(pointAt(0.2))

			err := h.Append(pointAt(tt.next))
			if !errors.Is(err, dynamo.ErrOrderingViolation) {
				t.Fatalf("expected ErrOrderingViolation, got %v", err)
			}
			if h.Len() != 2 {
				t.Errorf("rejected append changed the log: len %d", h.Len())
			}
		})
	}
}

func TestHistoryPointsClipped(t *testing.T) {
	h := NewHistory()
	_ = h.Append(pointAt(0.1))
	_ = h.Append(pointAt(0.2))

	view := h.Points()
	view = append(view, pointAt(99))
	_ = view

	if err := h.Append(pointAt(0.3)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if got := h.Points()[2].Time; got != 0.3 {
		t.Errorf("appending to a view leaked into the log: t=%f", got)
	}
}

func TestHistoryClearKeepsOldViews(t *testing.T) {
	h := NewHistory()
	_ = h.Append(pointAt(0.1))
	_ = h.Append(pointAt(0.2))
	view := h.Points()

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("expected empty log, got %d", h.Len())
	}
	if _, ok := h.Last(); ok {
		t.Error("expected no last point after clear")
	}

	_ = h.Append(pointAt(5))
	if len(view) != 2 || view[0].Time != 0.1 {
		t.Errorf("old view was modified: %+v", view)
	}
}

func TestHistoryCopy(t *testing.T) {
	h := NewHistory()
	_ = h.Append(pointAt(0.1))

	c := h.Copy()
	c[0].Position = -1

	if h.Points()[0].Position == -1 {
		t.Error("copy shares storage with the log")
	}
}
