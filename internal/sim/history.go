package sim

import (
	"fmt"

	"github.com/san-kum/freefall/internal/dynamo"
)

// History is the append-only log of recorded points, ordered by strictly
// increasing time.
type History struct {
	points []dynamo.HistoryPoint
}

func NewHistory() *History {
	return &History{}
}

// Append records p. A point whose time does not follow the last entry is
// refused with ErrOrderingViolation and the log is left unchanged.
func (h *History) Append(p dynamo.HistoryPoint) error {
	if n := len(h.points); n > 0 && !(p.Time > h.points[n-1].Time) {
		return fmt.Errorf("%w: t=%g after t=%g", dynamo.ErrOrderingViolation, p.Time, h.points[n-1].Time)
	}
	h.points = append(h.points, p)
	return nil
}

// Clear drops every point. The backing array is released rather than
// reused, so slices handed out by Points stay intact.
func (h *History) Clear() {
	h.points = nil
}

// Points returns the live sequence. Callers must not modify it; its capacity
// is clipped so appending to it cannot write into the log.
func (h *History) Points() []dynamo.HistoryPoint {
	n := len(h.points)
	return h.points[:n:n]
}

// Copy returns a structural copy independent of the log.
func (h *History) Copy() []dynamo.HistoryPoint {
	return dynamo.CopyHistory(h.points)
}

func (h *History) Len() int { return len(h.points) }

func (h *History) Last() (dynamo.HistoryPoint, bool) {
	if len(h.points) == 0 {
		return dynamo.HistoryPoint{}, false
	}
	return h.points[len(h.points)-1], true
}
