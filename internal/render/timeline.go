// Package render turns a day of assignments into a virtualized, zoomable
// timeline scene and draws it as SVG.
//
// A Timeline holds the view state that belongs to the renderer: container
// size, scroll position fed in by the scroll owner, the selected assignment
// and the pan/zoom controller. Scene computes what is visible without side
// effects. Pointer input is resolved with HitTest and reported through
// Callbacks.
package render

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/panzoom"
	"missiontimeline/internal/timescale"
)

// NoEvent is the event index of a tooltip that describes the whole bar.
const NoEvent = -1

// TooltipRequest asks the host to show a tooltip anchored at X, Y in
// container coordinates.
type TooltipRequest struct {
	AssignmentID string  `json:"assignmentId"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	EventIndex   int     `json:"eventIndex"`
}

// Callbacks are the outbound notifications of a Timeline. Nil funcs are
// skipped.
type Callbacks struct {
	// OnSelectAssignment receives the selected id, or "" when the selection
	// was cleared by clicking the background.
	OnSelectAssignment func(id string)
	OnTooltipShow      func(TooltipRequest)
	OnTooltipHide      func()
}

// Timeline is the renderer for one day of assignments. It is not safe for
// concurrent use.
type Timeline struct {
	opts Options
	cb   Callbacks
	log  *slog.Logger

	day         mission.Day
	assignments []mission.Assignment
	index       *mission.Index

	width     float64
	viewport  float64
	scrollTop float64
	ref       time.Time
	selected  string
	hovered   Hit

	ctrl *panzoom.Controller
}

// New returns an empty timeline.
func New(opts Options, cb Callbacks) *Timeline {
	if opts.IDPrefix == "" {
		opts.IDPrefix = "tl" + uuid.NewString()[:8]
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultOptions().RowHeight
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	width := opts.Width
	if width <= 0 {
		width = timescale.DefaultWidth
	}
	return &Timeline{
		opts:     opts,
		cb:       cb,
		log:      logger.With("component", "timeline", "prefix", opts.IDPrefix),
		width:    width,
		viewport: opts.Viewport,
		hovered:  Hit{Target: panzoom.Background, EventIndex: NoEvent},
		ctrl:     panzoom.NewController(width, 0, opts.Zoom),
	}
}

// SetData replaces the displayed assignments. Events are stored in canonical
// order, so event indices reported by callbacks refer to Assignment(id).Events.
// Changing the data resets pan/zoom and scroll.
func (t *Timeline) SetData(day mission.Day, assignments []mission.Assignment, index *mission.Index) {
	t.day = day
	t.assignments = make([]mission.Assignment, len(assignments))
	for i, a := range assignments {
		t.assignments[i] = a.Normalized()
	}
	if index == nil {
		index = mission.NewIndex(t.assignments, nil)
	}
	t.index = index
	t.scrollTop = 0
	t.hovered = Hit{Target: panzoom.Background, EventIndex: NoEvent}
	t.ctrl.SetDomain(t.Scale().Hours())
	t.log.Debug("timeline data set", "day", day.DayID, "assignments", len(assignments))
}

// Day returns the displayed day.
func (t *Timeline) Day() mission.Day { return t.day }

// Assignments returns the displayed assignments in row order.
func (t *Timeline) Assignments() []mission.Assignment { return t.assignments }

// Assignment returns the displayed record for id.
func (t *Timeline) Assignment(id string) (mission.Assignment, bool) {
	for _, a := range t.assignments {
		if a.AssignmentID == id {
			return a, true
		}
	}
	return mission.Assignment{}, false
}

// SetReferenceTime pins the instant statuses are evaluated at. The zero time
// restores the default derived from the clock and the day.
func (t *Timeline) SetReferenceTime(ref time.Time) { t.ref = ref }

// ReferenceTime returns the instant statuses are evaluated at.
func (t *Timeline) ReferenceTime() time.Time {
	if !t.ref.IsZero() {
		return t.ref
	}
	return flightstatus.ReferenceTime(t.day, t.assignments, t.opts.Now())
}

// SetScroll records the scroll offset and viewport height reported by the
// scroll container.
func (t *Timeline) SetScroll(scrollTop, viewportHeight float64) {
	if scrollTop < 0 {
		scrollTop = 0
	}
	t.scrollTop = scrollTop
	t.viewport = viewportHeight
}

// Scroll returns the last reported scroll offset and viewport height.
func (t *Timeline) Scroll() (scrollTop, viewportHeight float64) {
	return t.scrollTop, t.viewport
}

// Resize records a new container width. Non-positive widths, as reported
// before the first layout pass, fall back to timescale.DefaultWidth.
func (t *Timeline) Resize(width float64) {
	if width <= 0 {
		width = timescale.DefaultWidth
	}
	t.width = width
	t.ctrl.Resize(width)
}

// Width returns the container width.
func (t *Timeline) Width() float64 { return t.width }

// Controller returns the pan/zoom controller.
func (t *Timeline) Controller() *panzoom.Controller { return t.ctrl }

// Scale returns the current time scale including pan and zoom.
func (t *Timeline) Scale() timescale.Scale {
	return timescale.New(t.day.Start, t.day.End, t.width, t.ctrl.Transform())
}

// Select marks id as selected without notifying the host.
func (t *Timeline) Select(id string) { t.selected = id }

// ClearSelection drops the selection. Hosts call it on Escape.
func (t *Timeline) ClearSelection() { t.selected = "" }

// Selected returns the selected assignment id, "" when none.
func (t *Timeline) Selected() string { return t.selected }

// Gesture forwards a gesture to the pan/zoom controller. A drag-start without
// a target is resolved against the scene, so drags beginning on bars or
// markers are left to click handling.
func (t *Timeline) Gesture(g panzoom.Gesture) panzoom.Outcome {
	if g.Kind == panzoom.DragStart && g.Target == "" {
		g.Target = t.HitTest(g.PointerX, g.PointerY).Target
	}
	out := t.ctrl.Apply(g)
	t.log.Debug("gesture", "kind", g.Kind, "target", g.Target,
		"captured", out.Captured, "changed", out.Changed,
		"k", t.ctrl.Transform().K, "x", t.ctrl.Transform().X)
	return out
}

// Click selects the assignment under the pointer, or clears the selection
// when the background was clicked.
func (t *Timeline) Click(x, y float64) Hit {
	hit := t.HitTest(x, y)
	if hit.Target == panzoom.Background {
		t.selected = ""
	} else {
		t.selected = hit.AssignmentID
	}
	if t.cb.OnSelectAssignment != nil {
		t.cb.OnSelectAssignment(t.selected)
	}
	return hit
}

// Hover shows or hides the tooltip for the element under the pointer.
// Repeated moves over the same element do not re-notify.
func (t *Timeline) Hover(x, y float64) Hit {
	hit := t.HitTest(x, y)
	if hit.same(t.hovered) {
		return hit
	}
	if hit.Target == panzoom.Background {
		t.Leave()
		return hit
	}
	t.hovered = hit
	if t.cb.OnTooltipShow != nil {
		t.cb.OnTooltipShow(TooltipRequest{
			AssignmentID: hit.AssignmentID,
			X:            hit.AnchorX,
			Y:            hit.AnchorY,
			EventIndex:   hit.EventIndex,
		})
	}
	return hit
}

// Leave hides the tooltip when the pointer leaves the timeline.
func (t *Timeline) Leave() {
	if t.hovered.Target == panzoom.Background {
		return
	}
	t.hovered = Hit{Target: panzoom.Background, EventIndex: NoEvent}
	if t.cb.OnTooltipHide != nil {
		t.cb.OnTooltipHide()
	}
}
