// Package virtualize computes which rows of a fixed-row-height list need to be
// materialized for a given scroll position.
package virtualize

import "math"

// DefaultBuffer is the number of extra rows kept above and below the viewport.
const DefaultBuffer = 5

// Range is the half-open row interval [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of rows in r.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether row i is materialized.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// Window returns the rows to materialize for a viewport of viewportHeight
// pixels scrolled to scrollTop over n rows of rowHeight pixels each.
// It only reads the scroll state; the scroll container owns it.
func Window(scrollTop, viewportHeight, rowHeight float64, n, buffer int) Range {
	if n <= 0 || rowHeight <= 0 || math.IsNaN(rowHeight) {
		return Range{}
	}
	if scrollTop < 0 || math.IsNaN(scrollTop) {
		scrollTop = 0
	}
	if viewportHeight < 0 || math.IsNaN(viewportHeight) {
		viewportHeight = 0
	}
	if buffer < 0 {
		buffer = 0
	}

	start := int(math.Floor(scrollTop/rowHeight)) - buffer
	if start < 0 {
		start = 0
	}
	end := int(math.Ceil((scrollTop+viewportHeight)/rowHeight)) + buffer
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return Range{Start: start, End: end}
}

// Bound is the most rows Window can return for the viewport, whatever n is.
// The extra row covers a row straddling each viewport edge when scrollTop is
// not a multiple of rowHeight.
func Bound(viewportHeight, rowHeight float64, buffer int) int {
	if rowHeight <= 0 {
		return 0
	}
	return int(math.Ceil(viewportHeight/rowHeight)) + 2*buffer + 1
}
