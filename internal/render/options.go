package render

import (
	"log/slog"
	"time"

	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/layout"
	"missiontimeline/internal/panzoom"
	"missiontimeline/internal/virtualize"
)

// MarkerStyle controls how an event icon is drawn.
type MarkerStyle struct {
	Shape       string  // "circle", "square", "diamond" or "triangle"
	FillColor   string  // icon fill
	StrokeColor string  // icon border
	StrokeWidth float64 // border width in pixels
}

// Colors holds every color the timeline draws with.
type Colors struct {
	Background       string
	HeaderBackground string
	Gridline         string
	TickText         string
	Selection        string
	Band             string
	Label            string
	Palette          flightstatus.Palette
}

// Options configures a Timeline.
type Options struct {
	RowHeight    float64 // height of one assignment row
	HeaderHeight float64 // height of the sticky tick header
	BarInset     float64 // vertical gap between row edge and bar
	CornerRadius float64 // bar corner radius
	Buffer       int     // rows materialized beyond the viewport
	Width        float64 // initial container width
	Viewport     float64 // initial viewport height

	FontFamily   string
	FontSize     float64
	TickFontSize float64

	Layout  layout.Options
	Zoom    panzoom.Options
	Colors  Colors
	Markers map[layout.Kind]MarkerStyle

	// IDPrefix scopes clip-path and pattern ids. A random prefix is used when
	// empty so several timelines can share one document.
	IDPrefix string

	// Now supplies the wall clock for the default reference time.
	Now func() time.Time

	Logger *slog.Logger
}

// DefaultOptions returns the dark timeline theme.
func DefaultOptions() Options {
	return Options{
		RowHeight:    40,
		HeaderHeight: 30,
		BarInset:     4,
		CornerRadius: 6,
		Buffer:       virtualize.DefaultBuffer,
		Width:        1200,
		Viewport:     600,
		FontFamily:   "Arial, sans-serif",
		FontSize:     11,
		TickFontSize: 11,
		Layout:       layout.DefaultOptions(),
		Zoom:         panzoom.DefaultOptions(),
		Colors: Colors{
			Background:       "#1e1e1e",
			HeaderBackground: "#1e1e1e",
			Gridline:         "#333333",
			TickText:         "#999999",
			Selection:        "#ffffff",
			Band:             "#FACC15",
			Label:            "#ffffff",
			Palette:          flightstatus.DefaultPalette(),
		},
		Markers: map[layout.Kind]MarkerStyle{
			layout.KindRefuel: {Shape: "circle", FillColor: "#22C55E", StrokeColor: "#0f172a", StrokeWidth: 1},
			layout.KindStrike: {Shape: "triangle", FillColor: "#EF4444", StrokeColor: "#0f172a", StrokeWidth: 1},
		},
		Now: time.Now,
	}
}

func (o Options) markerStyle(k layout.Kind) MarkerStyle {
	if s, ok := o.Markers[k]; ok {
		return s
	}
	return MarkerStyle{Shape: "circle", FillColor: "#4285f4", StrokeColor: "#333333", StrokeWidth: 1}
}
