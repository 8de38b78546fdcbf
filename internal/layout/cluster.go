package layout

import (
	"sort"

	"missiontimeline/internal/mission"
)

// Kind is the icon family of a point event. Both refuel roles share an icon.
type Kind string

const (
	KindRefuel Kind = "refuel"
	KindStrike Kind = "strike"
)

// KindOf returns the icon family of an event type.
func KindOf(t mission.EventType) Kind {
	if t.IsRefuel() {
		return KindRefuel
	}
	return KindStrike
}

// Point is a projected point event before clustering.
type Point struct {
	EventIndex int
	Kind       Kind
	X          float64
	Count      int
}

// Marker is a drawn icon standing for one or more point events.
type Marker struct {
	Kind       Kind    `json:"kind"`
	X          float64 `json:"x"`
	EventIndex int     `json:"eventIndex"` // representative used for hit testing and tooltips
	Members    []int   `json:"members"`
	Count      int     `json:"count"`
	HitX       float64 `json:"hitX"`
	HitWidth   float64 `json:"hitWidth"`

	sum float64
}

// Clustered reports whether m stands for more than one event.
func (m Marker) Clustered() bool { return len(m.Members) > 1 }

// Cluster merges same-kind points whose x lies within threshold of the running
// group center. Points are sorted by kind, x and event index first, so the
// result does not depend on input order. The scan is greedy and single pass:
// two groups can end up closer than threshold to each other when no single
// point bridged them. Markers come back ordered by x.
func Cluster(points []Point, threshold float64) []Marker {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.EventIndex < b.EventIndex
	})

	var out []Marker
	for _, p := range sorted {
		if n := len(out); n > 0 {
			g := &out[n-1]
			if g.Kind == p.Kind && abs(p.X-g.X) <= threshold {
				g.Members = append(g.Members, p.EventIndex)
				g.Count += p.Count
				g.sum += p.X
				g.X = g.sum / float64(len(g.Members))
				continue
			}
		}
		out = append(out, Marker{
			Kind:       p.Kind,
			X:          p.X,
			EventIndex: p.EventIndex,
			Members:    []int{p.EventIndex},
			Count:      p.Count,
			sum:        p.X,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// WithHitTarget returns markers with their pointer target width applied.
func WithHitTarget(markers []Marker, width float64) []Marker {
	for i := range markers {
		markers[i].HitWidth = width
		markers[i].HitX = markers[i].X - width/2
	}
	return markers
}

// HitRect returns the pointer target of m on a bar spanning [y, y+height].
func (m Marker) HitRect(y, height float64) Rect {
	return Rect{X: m.HitX, Y: y, Width: m.HitWidth, Height: height}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
