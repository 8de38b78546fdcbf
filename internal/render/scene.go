package render

import (
	"time"

	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/layout"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/panzoom"
	"missiontimeline/internal/timescale"
	"missiontimeline/internal/virtualize"
)

// Tick is an hour mark in the header.
type Tick struct {
	X       float64   `json:"x"`
	Instant time.Time `json:"instant"`
	Label   string    `json:"label"`
}

// Row is one materialized assignment bar.
type Row struct {
	Index        int                 `json:"index"`
	AssignmentID string              `json:"assignmentId"`
	Label        string              `json:"label"`
	Category     string              `json:"category"`
	Status       flightstatus.Status `json:"status"`
	Color        string              `json:"color"`
	Selected     bool                `json:"selected"`
	Worm         layout.Worm         `json:"worm"`
}

// Scene is everything needed to draw the timeline once. Body coordinates
// start below the header; row i occupies [i*RowHeight, (i+1)*RowHeight).
type Scene struct {
	Prefix       string              `json:"prefix"`
	Width        float64             `json:"width"`
	HeaderHeight float64             `json:"headerHeight"`
	RowHeight    float64             `json:"rowHeight"`
	BodyHeight   float64             `json:"bodyHeight"`
	ScrollTop    float64             `json:"scrollTop"`
	Window       virtualize.Range    `json:"window"`
	Transform    timescale.Transform `json:"transform"`
	Reference    time.Time           `json:"reference"`
	Ticks        []Tick              `json:"ticks"`
	Rows         []Row               `json:"rows"`
}

// Hit is the element under a pointer position.
type Hit struct {
	Target       panzoom.Target `json:"target"`
	AssignmentID string         `json:"assignmentId,omitempty"`
	EventIndex   int            `json:"eventIndex"`
	Row          int            `json:"row"`
	// AnchorX and AnchorY locate the tooltip: centered above the bar or the
	// marker.
	AnchorX float64 `json:"anchorX"`
	AnchorY float64 `json:"anchorY"`
}

func (h Hit) same(o Hit) bool {
	return h.Target == o.Target && h.AssignmentID == o.AssignmentID && h.EventIndex == o.EventIndex
}

// window returns the rows to materialize for the current scroll state.
func (t *Timeline) window() virtualize.Range {
	return virtualize.Window(t.scrollTop, t.viewport, t.opts.RowHeight, len(t.assignments), t.opts.Buffer)
}

// Scene computes the visible scene. It does not change the timeline.
func (t *Timeline) Scene() Scene {
	scale := t.Scale()
	ref := t.ReferenceTime()
	win := t.window()

	s := Scene{
		Prefix:       t.opts.IDPrefix,
		Width:        t.width,
		HeaderHeight: t.opts.HeaderHeight,
		RowHeight:    t.opts.RowHeight,
		BodyHeight:   float64(len(t.assignments)) * t.opts.RowHeight,
		ScrollTop:    t.scrollTop,
		Window:       win,
		Transform:    scale.Transform(),
		Reference:    ref,
	}
	for _, mark := range timescale.HourMarks(t.day.Start, t.day.End) {
		s.Ticks = append(s.Ticks, Tick{
			X:       scale.PositionOf(mark),
			Instant: mark,
			Label:   timescale.FormatHHMMSS(mark),
		})
	}

	markers := 0
	for i := win.Start; i < win.End; i++ {
		row := t.row(i, scale, ref)
		markers += len(row.Worm.Markers)
		s.Rows = append(s.Rows, row)
	}
	t.log.Debug("scene built",
		"rows", len(t.assignments),
		"window_start", win.Start,
		"window_end", win.End,
		"markers", markers)
	return s
}

func (t *Timeline) row(i int, scale timescale.Scale, ref time.Time) Row {
	a := t.assignments[i]
	x1 := scale.PositionOf(a.Start)
	x2 := scale.PositionOf(a.End)
	bar := layout.Rect{
		X:      x1,
		Y:      float64(i)*t.opts.RowHeight + t.opts.BarInset,
		Width:  x2 - x1,
		Height: t.opts.RowHeight - 2*t.opts.BarInset,
	}
	status := flightstatus.Evaluate(a, ref)
	return Row{
		Index:        i,
		AssignmentID: a.AssignmentID,
		Label:        barLabel(a),
		Category:     t.index.CategoryName(a.CategoryID),
		Status:       status,
		Color:        t.opts.Colors.Palette.Color(status),
		Selected:     a.AssignmentID != "" && a.AssignmentID == t.selected,
		Worm:         layout.Layout(bar, a.Events, scale.PositionOf, t.opts.Layout),
	}
}

func barLabel(a mission.Assignment) string {
	callsign := a.Callsign
	if callsign == "" {
		callsign = mission.UnknownCallsign
	}
	if a.MissionNumber == "" {
		return callsign
	}
	return callsign + " · " + a.MissionNumber
}

// HitTest resolves a pointer position given in container x and body y.
// Markers take precedence over the bar they sit on; rows outside the
// materialized window are never hit.
func (t *Timeline) HitTest(x, y float64) Hit {
	miss := Hit{Target: panzoom.Background, EventIndex: NoEvent, Row: -1}
	if y < 0 || t.opts.RowHeight <= 0 {
		return miss
	}
	i := int(y / t.opts.RowHeight)
	if !t.window().Contains(i) {
		return miss
	}

	r := t.row(i, t.Scale(), t.ReferenceTime())
	bar := r.Worm.Bar
	if y < bar.Y || y > bar.Bottom() {
		return miss
	}
	anchorY := bar.Y - 10
	for j := len(r.Worm.Markers) - 1; j >= 0; j-- {
		m := r.Worm.Markers[j]
		if m.HitRect(bar.Y, bar.Height).Contains(x, y) {
			return Hit{
				Target:       panzoom.Marker,
				AssignmentID: r.AssignmentID,
				EventIndex:   m.EventIndex,
				Row:          i,
				AnchorX:      m.X,
				AnchorY:      anchorY,
			}
		}
	}
	if bar.Contains(x, y) {
		return Hit{
			Target:       panzoom.Bar,
			AssignmentID: r.AssignmentID,
			EventIndex:   NoEvent,
			Row:          i,
			AnchorX:      bar.X + bar.Width/2,
			AnchorY:      anchorY,
		}
	}
	return miss
}
