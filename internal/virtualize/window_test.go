package virtualize

import (
	"math"
	"math/rand"
	"testing"
)

func TestWindowMatchesFormula(t *testing.T) {
	cases := []struct {
		name                string
		scrollTop, viewport float64
		rowHeight           float64
		n, buffer           int
		want                Range
	}{
		{"top", 0, 400, 40, 1000, 5, Range{0, 15}},
		{"middle", 4000, 400, 40, 1000, 5, Range{95, 115}},
		{"unaligned", 4010, 400, 40, 1000, 5, Range{95, 116}},
		{"near end", 39800, 400, 40, 1000, 5, Range{990, 1000}},
		{"short list", 0, 400, 40, 3, 5, Range{0, 3}},
		{"scrolled past end", 90000, 400, 40, 10, 5, Range{10, 10}},
		{"no buffer", 80, 80, 40, 100, 0, Range{2, 4}},
	}
	for _, c := range cases {
		got := Window(c.scrollTop, c.viewport, c.rowHeight, c.n, c.buffer)
		if got != c.want {
			t.Fatalf("%s: expected %+v, got %+v", c.name, c.want, got)
		}
	}
}

func TestWindowDegradesOnBadInput(t *testing.T) {
	if got := Window(0, 400, 0, 100, 5); got.Len() != 0 {
		t.Fatalf("zero row height should give empty window, got %+v", got)
	}
	if got := Window(-50, 400, 40, 100, 5); got.Start != 0 {
		t.Fatalf("negative scroll should clamp to top, got %+v", got)
	}
	if got := Window(0, 400, 40, 0, 5); got.Len() != 0 {
		t.Fatalf("empty list should give empty window, got %+v", got)
	}
}

// The rendered row count never depends on the total row count, and every row
// overlapping the viewport is always materialized.
func TestWindowBoundAndCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		rowHeight := float64(8 + rng.Intn(60))
		viewport := float64(rng.Intn(1200))
		n := rng.Intn(100000)
		buffer := rng.Intn(8)
		scrollTop := rng.Float64() * float64(n) * rowHeight

		r := Window(scrollTop, viewport, rowHeight, n, buffer)
		if r.Len() > Bound(viewport, rowHeight, buffer) {
			t.Fatalf("window %+v exceeds bound %d (vh=%f rh=%f b=%d)", r, Bound(viewport, rowHeight, buffer), viewport, rowHeight, buffer)
		}

		first := int(math.Floor(scrollTop / rowHeight))
		last := int(math.Ceil((scrollTop+viewport)/rowHeight)) - 1
		for row := first; row <= last && row < n; row++ {
			if !r.Contains(row) {
				t.Fatalf("visible row %d missing from %+v (scrollTop=%f vh=%f rh=%f)", row, r, scrollTop, viewport, rowHeight)
			}
		}
	}
}

func TestAlignedWindowStaysWithinViewportPlusBuffers(t *testing.T) {
	for n := 1; n < 5000; n += 137 {
		for row := 0; row < n; row += 11 {
			r := Window(float64(row*40), 400, 40, n, DefaultBuffer)
			if r.Len() > 10+2*DefaultBuffer {
				t.Fatalf("aligned window %+v larger than %d", r, 10+2*DefaultBuffer)
			}
		}
	}
}
