// Package panzoom turns normalized pointer gestures into the horizontal
// zoom/pan transform of the timeline.
//
// Input binding lives elsewhere: a Source delivers Gesture values, Reduce
// computes the next State, and a Controller owns that state and notifies
// observers. Replaying the same gestures from the same State always yields
// the same transform.
package panzoom

// Kind is the type of a normalized gesture.
type Kind string

const (
	Wheel       Kind = "wheel"
	DragStart   Kind = "drag-start"
	DragMove    Kind = "drag-move"
	DragEnd     Kind = "drag-end"
	DoubleClick Kind = "double-click"
	Pinch       Kind = "pinch"
)

// Target is what the pointer was over when the gesture began.
type Target string

const (
	Background Target = "background"
	Bar        Target = "bar"
	Marker     Target = "marker"
)

// Interactive reports whether t handles its own clicks, which disables drag
// panning from it.
func (t Target) Interactive() bool {
	return t == Bar || t == Marker
}

// Gesture is one input event in container pixel coordinates.
type Gesture struct {
	Kind     Kind    `json:"kind"`
	DeltaX   float64 `json:"deltaX"`
	DeltaY   float64 `json:"deltaY"`
	Ctrl     bool    `json:"ctrl"`
	Shift    bool    `json:"shift"`
	Target   Target  `json:"target"`
	PointerX float64 `json:"pointerX"`
	PointerY float64 `json:"pointerY"`
}

// Source delivers gestures to a subscriber until the returned func is called.
type Source interface {
	Subscribe(fn func(Gesture)) (unsubscribe func())
}

// Feed is a Source driven by explicit Emit calls. Terminal and HTTP front ends
// translate their own input into gestures and emit them here.
type Feed struct {
	next int
	subs map[int]func(Gesture)
}

// Subscribe registers fn for every later Emit.
func (f *Feed) Subscribe(fn func(Gesture)) func() {
	if f.subs == nil {
		f.subs = make(map[int]func(Gesture))
	}
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() { delete(f.subs, id) }
}

// Emit delivers g to all subscribers in subscription order.
func (f *Feed) Emit(g Gesture) {
	for id := 0; id < f.next; id++ {
		if fn, ok := f.subs[id]; ok {
			fn(g)
		}
	}
}

// Len returns the number of live subscriptions.
func (f *Feed) Len() int {
	return len(f.subs)
}
