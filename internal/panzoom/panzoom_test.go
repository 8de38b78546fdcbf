package panzoom_test

import (
	"math"
	"math/rand"
	"testing"

	"missiontimeline/internal/panzoom"
	"missiontimeline/internal/timescale"
)

const eps = 1e-9

func newController() *panzoom.Controller {
	return panzoom.NewController(800, 12, panzoom.DefaultOptions())
}

func TestPlainWheelIsNotCaptured(t *testing.T) {
	c := newController()
	out := c.Apply(panzoom.Gesture{Kind: panzoom.Wheel, DeltaY: 120, PointerX: 300})
	if out.Captured || out.PreventDefault || out.Changed {
		t.Fatalf("plain wheel must pass through, got %+v", out)
	}
	if c.Transform() != timescale.Identity {
		t.Fatalf("plain wheel changed transform to %+v", c.Transform())
	}
}

func TestCtrlWheelZoomsAroundPointer(t *testing.T) {
	c := newController()
	out := c.Apply(panzoom.Gesture{Kind: panzoom.Wheel, Ctrl: true, DeltaY: -500, PointerX: 400})
	if !out.Captured || !out.PreventDefault || !out.Changed {
		t.Fatalf("ctrl-wheel should be captured and prevent default, got %+v", out)
	}
	got := c.Transform()
	if math.Abs(got.K-2) > eps || math.Abs(got.X+400) > eps {
		t.Fatalf("expected k=2 x=-400, got %+v", got)
	}
	if base := got.Invert(400); math.Abs(base-400) > eps {
		t.Fatalf("anchor moved: base under pointer is %f", base)
	}
}

func TestPinchZooms(t *testing.T) {
	c := newController()
	c.Apply(panzoom.Gesture{Kind: panzoom.Pinch, DeltaY: -100, PointerX: 0})
	if got := c.Transform(); math.Abs(got.K-2) > eps || got.X != 0 {
		t.Fatalf("expected k=2 anchored at 0, got %+v", got)
	}
}

func TestDoubleClickIsIgnored(t *testing.T) {
	c := newController()
	out := c.Apply(panzoom.Gesture{Kind: panzoom.DoubleClick, PointerX: 200})
	if out.Captured || c.Transform() != timescale.Identity {
		t.Fatalf("double click must not zoom: %+v %+v", out, c.Transform())
	}
}

func TestHorizontalWheelPans(t *testing.T) {
	c := newController()
	c.Apply(panzoom.Gesture{Kind: panzoom.Wheel, Ctrl: true, DeltaY: -500, PointerX: 400})

	out := c.Apply(panzoom.Gesture{Kind: panzoom.Wheel, DeltaX: 100})
	if !out.Captured || out.PreventDefault {
		t.Fatalf("horizontal wheel should pan without preventing default, got %+v", out)
	}
	if got := c.Transform(); math.Abs(got.X+500) > eps || math.Abs(got.K-2) > eps {
		t.Fatalf("expected x=-500 k=2, got %+v", got)
	}

	c.Apply(panzoom.Gesture{Kind: panzoom.Wheel, Shift: true, DeltaY: -200})
	if got := c.Transform(); math.Abs(got.X+300) > eps {
		t.Fatalf("shift-wheel should pan by -deltaY, got %+v", got)
	}
}

func TestDiagonalWheelScrolls(t *testing.T) {
	c := newController()
	c.SetTransform(timescale.Transform{K: 2, X: -400})

	out := c.Apply(panzoom.Gesture{Kind: panzoom.Wheel, DeltaX: 30, DeltaY: 120})
	if out.Captured || out.Changed {
		t.Fatalf("a plain wheel with a vertical delta belongs to scrolling, got %+v", out)
	}
	if got := c.Transform(); got.X != -400 || got.K != 2 {
		t.Fatalf("diagonal wheel should not pan, got %+v", got)
	}
}

func TestPanIsClampedAtIdentity(t *testing.T) {
	c := newController()
	for _, dx := range []float64{-300, 300} {
		c.Apply(panzoom.Gesture{Kind: panzoom.Wheel, DeltaX: dx})
		if c.Transform() != timescale.Identity {
			t.Fatalf("unzoomed view must not pan, got %+v", c.Transform())
		}
	}
}

func TestDragPansOnlyFromBackground(t *testing.T) {
	c := newController()
	c.SetTransform(timescale.Transform{K: 4, X: -1000})

	for _, target := range []panzoom.Target{panzoom.Bar, panzoom.Marker} {
		if out := c.Apply(panzoom.Gesture{Kind: panzoom.DragStart, Target: target}); out.Captured {
			t.Fatalf("drag on %s must not be captured", target)
		}
		c.Apply(panzoom.Gesture{Kind: panzoom.DragMove, DeltaX: 50})
		if got := c.Transform(); got.X != -1000 {
			t.Fatalf("drag from %s panned to %+v", target, got)
		}
	}

	c.Apply(panzoom.Gesture{Kind: panzoom.DragStart, Target: panzoom.Background})
	c.Apply(panzoom.Gesture{Kind: panzoom.DragMove, DeltaX: 50})
	c.Apply(panzoom.Gesture{Kind: panzoom.DragMove, DeltaX: 25})
	if !c.Dragging() {
		t.Fatalf("expected drag in progress")
	}
	c.Apply(panzoom.Gesture{Kind: panzoom.DragEnd})
	if got := c.Transform(); got.X != -925 {
		t.Fatalf("expected x=-925 after drag, got %+v", got)
	}
	if c.Dragging() {
		t.Fatalf("drag should have ended")
	}
}

func randomGesture(rng *rand.Rand) panzoom.Gesture {
	g := panzoom.Gesture{
		DeltaX:   rng.NormFloat64() * 300,
		DeltaY:   rng.NormFloat64() * 300,
		PointerX: rng.Float64() * 800,
	}
	switch rng.Intn(6) {
	case 0:
		g.Kind, g.Ctrl = panzoom.Wheel, true
	case 1:
		g.Kind, g.Shift = panzoom.Wheel, true
	case 2:
		g.Kind = panzoom.Pinch
	case 3:
		g.Kind, g.Target = panzoom.DragStart, panzoom.Background
	case 4:
		g.Kind = panzoom.DragMove
	default:
		g.Kind = panzoom.Wheel
	}
	return g
}

func TestTransformStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := newController()
	max := c.Bounds().MaxScale()
	if max != 15 {
		t.Fatalf("expected max scale 15, got %f", max)
	}
	for i := 0; i < 5000; i++ {
		c.Apply(randomGesture(rng))
		tr := c.Transform()
		if tr.K < 1 || tr.K > max+eps {
			t.Fatalf("step %d: scale %f outside [1, %f]", i, tr.K, max)
		}
		if tr.X > 0 || tr.X < 800-800*tr.K-eps {
			t.Fatalf("step %d: translate %f outside [%f, 0]", i, tr.X, 800-800*tr.K)
		}
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	gestures := make([]panzoom.Gesture, 300)
	for i := range gestures {
		gestures[i] = randomGesture(rng)
	}
	a, b := newController(), newController()
	for _, g := range gestures {
		a.Apply(g)
	}
	for _, g := range gestures {
		b.Apply(g)
	}
	if a.Transform() != b.Transform() {
		t.Fatalf("replay diverged: %+v vs %+v", a.Transform(), b.Transform())
	}
}

func TestMaxScaleNeverBelowOne(t *testing.T) {
	b := panzoom.Bounds{Width: 800, Hours: 0.1, PxPerHour: 1000}
	if got := b.MaxScale(); got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
	if got := (panzoom.Bounds{}).MaxScale(); got != 1 {
		t.Fatalf("expected 1 for empty bounds, got %f", got)
	}
}

func TestResizeKeepsLeftEdgeInstant(t *testing.T) {
	c := newController()
	c.SetTransform(timescale.Transform{K: 2, X: -400})
	before := c.Transform().Invert(0) / 800

	c.Resize(400)
	tr := c.Transform()
	if math.Abs(tr.X+200) > eps || tr.K != 2 {
		t.Fatalf("expected k=2 x=-200, got %+v", tr)
	}
	if after := tr.Invert(0) / 400; math.Abs(after-before) > eps {
		t.Fatalf("left edge moved from %f to %f of the domain", before, after)
	}

	c.Resize(0)
	if got := c.Bounds().Width; got != timescale.DefaultWidth {
		t.Fatalf("zero width should fall back to default, got %f", got)
	}
}

func TestSetDomainResets(t *testing.T) {
	c := newController()
	c.SetTransform(timescale.Transform{K: 3, X: -100})
	c.SetDomain(24)
	if c.Transform() != timescale.Identity {
		t.Fatalf("expected identity after domain change, got %+v", c.Transform())
	}
	if got := c.Bounds().MaxScale(); got != 30 {
		t.Fatalf("expected max scale 30, got %f", got)
	}
}

func TestObserversAndSources(t *testing.T) {
	c := newController()
	var seen []timescale.Transform
	release := c.OnChange(func(tr timescale.Transform) { seen = append(seen, tr) })

	var feed panzoom.Feed
	detach := c.Attach(&feed)
	if feed.Len() != 1 {
		t.Fatalf("expected one subscription, got %d", feed.Len())
	}

	feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, Ctrl: true, DeltaY: -500, PointerX: 0})
	if len(seen) != 1 || math.Abs(seen[0].K-2) > eps {
		t.Fatalf("observer not notified: %+v", seen)
	}

	detach()
	feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, Ctrl: true, DeltaY: -500, PointerX: 0})
	if feed.Len() != 0 || math.Abs(c.Transform().K-2) > eps {
		t.Fatalf("detached controller still receives gestures: %+v", c.Transform())
	}

	release()
	c.Reset()
	if len(seen) != 1 {
		t.Fatalf("released observer still notified: %+v", seen)
	}
}
