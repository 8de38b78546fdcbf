package panzoom

import (
	"math"

	"missiontimeline/internal/timescale"
)

// Options tunes gesture interpretation.
type Options struct {
	WheelSensitivity float64 // zoom exponent per ctrl-wheel delta unit
	PinchSensitivity float64 // zoom exponent per pinch delta unit
	PxPerHour        float64 // pixel density reached at maximum zoom
}

// DefaultOptions returns the browser-like defaults.
func DefaultOptions() Options {
	return Options{
		WheelSensitivity: 0.002,
		PinchSensitivity: 0.01,
		PxPerHour:        1000,
	}
}

// Bounds limits the transform for a container and domain.
type Bounds struct {
	Width     float64
	Hours     float64
	PxPerHour float64
}

// MaxScale is the zoom at which the domain reaches PxPerHour, never below 1.
func (b Bounds) MaxScale() float64 {
	if b.Width <= 0 || b.Hours <= 0 || b.PxPerHour <= 0 {
		return 1
	}
	return math.Max(1, b.PxPerHour*b.Hours/b.Width)
}

// Clamp forces t into the bounds: K in [1, MaxScale] and X in
// [Width - Width*K, 0], so neither domain edge pans inside the container.
func (b Bounds) Clamp(t timescale.Transform) timescale.Transform {
	k := t.K
	if math.IsNaN(k) || k < 1 {
		k = 1
	}
	if max := b.MaxScale(); k > max {
		k = max
	}
	x := t.X
	if math.IsNaN(x) {
		x = 0
	}
	lo := b.Width - b.Width*k
	if x < lo {
		x = lo
	}
	if x > 0 {
		x = 0
	}
	return timescale.Transform{K: k, X: x}
}

// State is the reducer state.
type State struct {
	Transform timescale.Transform `json:"transform"`
	Dragging  bool                `json:"dragging"`
}

// Outcome describes how a gesture was handled.
type Outcome struct {
	// Captured is false when the gesture belongs to someone else, such as
	// plain wheel scrolling or clicks on bars. A plain wheel with any vertical
	// component is scrolling, even when it also carries a horizontal delta.
	Captured bool `json:"captured"`
	// PreventDefault asks the input layer to suppress native page zoom.
	PreventDefault bool `json:"preventDefault"`
	Changed        bool `json:"changed"`
}

// Reduce returns the state after applying g. It has no side effects.
func Reduce(s State, g Gesture, b Bounds, opts Options) (State, Outcome) {
	next := s
	var out Outcome

	switch g.Kind {
	case Wheel:
		switch {
		case g.Ctrl:
			next.Transform = zoom(s.Transform, g.DeltaY*opts.WheelSensitivity, g.PointerX, b)
			out.Captured, out.PreventDefault = true, true
		case g.Shift:
			delta := g.DeltaX
			if delta == 0 {
				delta = g.DeltaY
			}
			next.Transform = b.Clamp(s.Transform.Translate(-delta))
			out.Captured = true
		case g.DeltaX != 0 && g.DeltaY == 0:
			next.Transform = b.Clamp(s.Transform.Translate(-g.DeltaX))
			out.Captured = true
		}
	case Pinch:
		next.Transform = zoom(s.Transform, g.DeltaY*opts.PinchSensitivity, g.PointerX, b)
		out.Captured, out.PreventDefault = true, true
	case DragStart:
		if !g.Target.Interactive() {
			next.Dragging = true
			out.Captured = true
		}
	case DragMove:
		if s.Dragging {
			next.Transform = b.Clamp(s.Transform.Translate(g.DeltaX))
			out.Captured = true
		}
	case DragEnd:
		if s.Dragging {
			next.Dragging = false
			out.Captured = true
		}
	case DoubleClick:
		// disabled
	}

	out.Changed = next.Transform != s.Transform
	return next, out
}

func zoom(t timescale.Transform, exponent, anchor float64, b Bounds) timescale.Transform {
	k := t.K * math.Pow(2, -exponent)
	k = math.Min(b.MaxScale(), math.Max(1, k))
	return b.Clamp(t.ScaleAt(k, anchor))
}
