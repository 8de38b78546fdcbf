// Package timescale maps instants of a day window onto horizontal pixels.
//
// A Scale is the composition of a base linear map [dayStart, dayEnd] -> [0, width]
// with a pan/zoom Transform, so that
//
//	pixelX = transform.X + transform.K * base(instant)
//
// Both parts are affine, which keeps the composed map exactly invertible.
package timescale

import (
	"math"
	"time"
)

// DefaultWidth is used whenever a container reports a non-positive width,
// typically before its first layout pass.
const DefaultWidth = 800.0

// fallbackPixelsPerMinute drives the base map when the domain is empty.
const fallbackPixelsPerMinute = 1.0

// Transform is a horizontal zoom (K) followed by a translation (X).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
}

// Identity is the transform of an un-zoomed, un-panned view.
var Identity = Transform{K: 1, X: 0}

// Apply maps a base coordinate through the transform.
func (t Transform) Apply(x float64) float64 {
	return t.X + t.K*x
}

// Invert maps a transformed coordinate back to base space.
func (t Transform) Invert(px float64) float64 {
	k := t.K
	if k == 0 {
		k = 1
	}
	return (px - t.X) / k
}

// Translate returns t shifted by dx pixels.
func (t Transform) Translate(dx float64) Transform {
	return Transform{K: t.K, X: t.X + dx}
}

// ScaleAt returns t rescaled to k while keeping the base point under px fixed.
func (t Transform) ScaleAt(k, px float64) Transform {
	base := t.Invert(px)
	return Transform{K: k, X: px - k*base}
}

// Scale converts between instants and pixels for one day window.
type Scale struct {
	start      time.Time
	end        time.Time
	width      float64
	transform  Transform
	degenerate bool
}

// New builds a scale for the window [start, end] drawn across width pixels.
// An empty or reversed window falls back to a fixed pixels-per-minute map and a
// non-positive width falls back to DefaultWidth.
func New(start, end time.Time, width float64, t Transform) Scale {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		width = DefaultWidth
	}
	if t.K <= 0 || math.IsNaN(t.K) {
		t = Identity
	}
	return Scale{
		start:      start,
		end:        end,
		width:      width,
		transform:  t,
		degenerate: !end.After(start),
	}
}

// WithTransform returns a copy of s using transform t.
func (s Scale) WithTransform(t Transform) Scale {
	return New(s.start, s.end, s.width, t)
}

// Start returns the domain start.
func (s Scale) Start() time.Time { return s.start }

// End returns the domain end.
func (s Scale) End() time.Time { return s.end }

// Width returns the pixel width of the base range.
func (s Scale) Width() float64 { return s.width }

// Transform returns the pan/zoom part of the scale.
func (s Scale) Transform() Transform { return s.transform }

// Hours returns the domain length in hours, zero for a degenerate domain.
func (s Scale) Hours() float64 {
	if s.degenerate {
		return 0
	}
	return s.end.Sub(s.start).Hours()
}

// Base maps an instant onto the un-transformed range [0, width].
func (s Scale) Base(t time.Time) float64 {
	offset := float64(t.Sub(s.start))
	if s.degenerate {
		return offset / float64(time.Minute) * fallbackPixelsPerMinute
	}
	return offset / float64(s.end.Sub(s.start)) * s.width
}

// BaseInverse maps a base coordinate back to an instant.
func (s Scale) BaseInverse(x float64) time.Time {
	var ns float64
	if s.degenerate {
		ns = x / fallbackPixelsPerMinute * float64(time.Minute)
	} else {
		ns = x / s.width * float64(s.end.Sub(s.start))
	}
	return s.start.Add(time.Duration(math.Round(ns)))
}

// PositionOf returns the pixel column of instant t.
func (s Scale) PositionOf(t time.Time) float64 {
	return s.transform.Apply(s.Base(t))
}

// InstantOf returns the instant drawn at pixel column px.
func (s Scale) InstantOf(px float64) time.Time {
	return s.BaseInverse(s.transform.Invert(px))
}
