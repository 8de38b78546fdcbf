// Package layout places an assignment's events on its bar in pixel space.
//
// Interval events become bands clipped to the bar. Point events become icon
// markers; markers of the same kind that would overlap are merged by a single
// greedy scan, see Cluster. The package also decides whether the bar label
// fits and where it is clipped.
package layout

import (
	"math"
	"time"

	"missiontimeline/internal/mission"
)

// Options holds the geometric thresholds of the layout.
type Options struct {
	MinWidth         float64 // narrowest bar ever drawn
	LabelPadding     float64 // gap between bar edge and label text
	MinLabelWidth    float64 // bar must be wider than this to get a label
	MinLabelHeight   float64 // bar must be at least this tall to get a label
	MinClipWidth     float64 // label clip region must be wider than this
	ClusterThreshold float64 // max distance from a group center to join it
	HitWidth         float64 // width of the invisible pointer target of a marker
	IconSize         float64 // drawn icon size
	EdgeMargin       float64 // icons closer than this to a bar edge are dropped
}

// DefaultOptions returns the thresholds used by the SVG timeline.
func DefaultOptions() Options {
	return Options{
		MinWidth:         4,
		LabelPadding:     6,
		MinLabelWidth:    22,
		MinLabelHeight:   8,
		MinClipWidth:     16,
		ClusterThreshold: 16,
		HitWidth:         22,
		IconSize:         12,
		EdgeMargin:       6,
	}
}

// Rect is an axis aligned rectangle in pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge of r.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge of r.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Band is an on-station window drawn across the bar.
type Band struct {
	EventIndex int     `json:"eventIndex"`
	X1         float64 `json:"x1"`
	X2         float64 `json:"x2"`
}

// Label is the placement decision for the bar text.
type Label struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Clip    Rect    `json:"clip"`
}

// Worm is the complete layout of one assignment bar.
type Worm struct {
	Bar     Rect     `json:"bar"`
	Bands   []Band   `json:"bands"`
	Markers []Marker `json:"markers"`
	Label   Label    `json:"label"`
}

// EffectiveWidth floors width at min so zero-length or heavily zoomed-out
// bars stay visible and clickable. Malformed widths collapse to the floor.
func EffectiveWidth(width, min float64) float64 {
	if math.IsNaN(width) || width < min {
		return min
	}
	return width
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Min(hi, math.Max(lo, x))
}

// Layout positions the events of one assignment on bar. position maps an
// instant to a pixel column; every projected column is clamped into the bar,
// so events outside the assignment range never render outside it.
func Layout(bar Rect, events []mission.Event, position func(time.Time) float64, opts Options) Worm {
	bar.Width = EffectiveWidth(bar.Width, opts.MinWidth)
	lo, hi := bar.X, bar.Right()

	w := Worm{Bar: bar}
	var points []Point
	for i, ev := range events {
		if ev.Type.Interval() {
			if ev.EndTime == nil {
				continue
			}
			x1 := Clamp(position(ev.Time), lo, hi)
			x2 := Clamp(position(*ev.EndTime), lo, hi)
			if x2 < x1 {
				x1, x2 = x2, x1
			}
			if x2 > x1 {
				w.Bands = append(w.Bands, Band{EventIndex: i, X1: x1, X2: x2})
			}
			continue
		}

		x := Clamp(position(ev.Time), lo, hi)
		if x-lo < opts.EdgeMargin || hi-x < opts.EdgeMargin {
			continue
		}
		points = append(points, Point{EventIndex: i, Kind: KindOf(ev.Type), X: x, Count: pointCount(ev)})
	}

	w.Markers = WithHitTarget(Cluster(points, opts.ClusterThreshold), opts.HitWidth)
	w.Label = placeLabel(bar, w.Markers, opts)
	return w
}

func pointCount(ev mission.Event) int {
	if ev.Type == mission.EventStrike {
		return ev.DMPIs()
	}
	return 1
}

// placeLabel clips the label from the left padding to just before the first
// icon, or to the right padding when the bar has no icons.
func placeLabel(bar Rect, markers []Marker, opts Options) Label {
	left := bar.X + opts.LabelPadding
	right := bar.Right() - opts.LabelPadding
	if len(markers) > 0 {
		iconLeft := markers[0].X - opts.IconSize/2 - 2
		if iconLeft < right {
			right = iconLeft
		}
	}
	clipWidth := math.Max(0, right-left)

	l := Label{
		X:    left,
		Clip: Rect{X: left, Y: bar.Y, Width: clipWidth, Height: bar.Height},
	}
	l.Visible = bar.Width > opts.MinLabelWidth &&
		bar.Height >= opts.MinLabelHeight &&
		clipWidth > opts.MinClipWidth
	return l
}
