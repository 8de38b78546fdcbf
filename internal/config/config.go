// Package config holds the YAML configuration of the timeline tools.
//
// Every section is optional. Load starts from Default and overlays whatever
// the file sets, so a config file only needs the keys it changes:
//
//	layout:
//	  width: 1600
//	  row_height: 32
//	colors:
//	  in_air: "#22C55E"
//	display_zone: "Europe/Berlin"
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/layout"
	"missiontimeline/internal/panzoom"
	"missiontimeline/internal/render"
)

// MarkerStyle configures one event icon kind.
type MarkerStyle struct {
	Shape       string  `yaml:"shape"`        // Marker shape: "circle", "triangle", "square", or "diamond"
	FillColor   string  `yaml:"fill_color"`   // Fill color of the marker (hex color code)
	StrokeColor string  `yaml:"stroke_color"` // Border/stroke color of the marker (hex color code)
	StrokeWidth float64 `yaml:"stroke_width"` // Width of the marker border in pixels
}

// Layout sizes the drawing surface.
type Layout struct {
	Width          float64 `yaml:"width"`           // Container width in pixels
	ViewportHeight float64 `yaml:"viewport_height"` // Visible body height in pixels
	RowHeight      float64 `yaml:"row_height"`      // Height of one assignment row
	HeaderHeight   float64 `yaml:"header_height"`   // Height of the sticky hour header
	BarInset       float64 `yaml:"bar_inset"`       // Gap between row edge and bar
}

// Zoom tunes the pan/zoom controller.
type Zoom struct {
	PxPerHour        float64 `yaml:"px_per_hour"`       // Pixel density reached at maximum zoom
	WheelSensitivity float64 `yaml:"wheel_sensitivity"` // Zoom exponent per ctrl-wheel delta unit
	PinchSensitivity float64 `yaml:"pinch_sensitivity"` // Zoom exponent per pinch delta unit
}

// Worm tunes assignment bars and their labels.
type Worm struct {
	MinWidth       float64 `yaml:"min_width"`        // Narrowest bar ever drawn
	LabelPadding   float64 `yaml:"label_padding"`    // Gap between bar edge and label text
	MinLabelWidth  float64 `yaml:"min_label_width"`  // Bars narrower than this get no label
	MinLabelHeight float64 `yaml:"min_label_height"` // Bars lower than this get no label
	MinClipWidth   float64 `yaml:"min_clip_width"`   // Labels whose clip region is narrower are hidden
	CornerRadius   float64 `yaml:"corner_radius"`    // Bar corner radius
}

// Events tunes event markers on bars.
type Events struct {
	ClusterThreshold float64 `yaml:"cluster_threshold"` // Max pixel distance to join a marker cluster
	HitWidth         float64 `yaml:"hit_width"`         // Width of the invisible pointer target
	EdgeMargin       float64 `yaml:"edge_margin"`       // Markers this close to a bar edge are dropped
	IconSize         float64 `yaml:"icon_size"`         // Drawn icon size in pixels
}

// Colors holds every configurable color.
type Colors struct {
	Background       string            `yaml:"background"`        // Body background
	HeaderBackground string            `yaml:"header_background"` // Sticky header background
	Gridline         string            `yaml:"gridline"`          // Hour gridlines
	TickText         string            `yaml:"tick_text"`         // Hour labels
	Ground           string            `yaml:"ground"`            // Bars of sorties on the ground
	InAir            string            `yaml:"in_air"`            // Bars of airborne sorties
	Selection        string            `yaml:"selection"`         // Outline of the selected bar
	Band             string            `yaml:"band"`              // On-station band tint
	Label            string            `yaml:"label"`             // Bar label text
	Categories       map[string]string `yaml:"categories"`        // Category name to chip color
}

// Font configures text rendering.
type Font struct {
	Family   string  `yaml:"family"`    // Font family for all text elements
	Size     float64 `yaml:"size"`      // Bar label size in pixels
	TickSize float64 `yaml:"tick_size"` // Hour label size in pixels
}

// Server configures the HTTP viewer.
type Server struct {
	BindAddress    string        `yaml:"bind_address"`    // host:port to listen on
	RequestTimeout time.Duration `yaml:"request_timeout"` // Per request deadline, e.g. "15s"
	SessionTTL     time.Duration `yaml:"session_ttl"`     // Idle sessions are dropped after this long; 0 keeps them
}

// Markers configures the icon of each event kind.
type Markers struct {
	Refuel MarkerStyle `yaml:"refuel"`
	Strike MarkerStyle `yaml:"strike"`
}

// Virtualize tunes row virtualization.
type Virtualize struct {
	BufferRows int `yaml:"buffer_rows"` // Rows materialized beyond the viewport on each side
}

// Config is the complete configuration.
type Config struct {
	Layout      Layout     `yaml:"layout"`
	Zoom        Zoom       `yaml:"zoom"`
	Worm        Worm       `yaml:"worm"`
	Events      Events     `yaml:"events"`
	Markers     Markers    `yaml:"markers"`
	Virtualize  Virtualize `yaml:"virtualize"`
	Colors      Colors     `yaml:"colors"`
	Font        Font       `yaml:"font"`
	Server      Server     `yaml:"server"`
	DisplayZone string     `yaml:"display_zone"` // IANA zone for times written without an offset
}

// Default returns the configuration the tools use without a config file.
func Default() Config {
	ro := render.DefaultOptions()
	refuel := ro.Markers[layout.KindRefuel]
	strike := ro.Markers[layout.KindStrike]

	var c Config
	c.Layout = Layout{
		Width:          ro.Width,
		ViewportHeight: ro.Viewport,
		RowHeight:      ro.RowHeight,
		HeaderHeight:   ro.HeaderHeight,
		BarInset:       ro.BarInset,
	}
	c.Zoom = Zoom{
		PxPerHour:        ro.Zoom.PxPerHour,
		WheelSensitivity: ro.Zoom.WheelSensitivity,
		PinchSensitivity: ro.Zoom.PinchSensitivity,
	}
	c.Worm = Worm{
		MinWidth:       ro.Layout.MinWidth,
		LabelPadding:   ro.Layout.LabelPadding,
		MinLabelWidth:  ro.Layout.MinLabelWidth,
		MinLabelHeight: ro.Layout.MinLabelHeight,
		MinClipWidth:   ro.Layout.MinClipWidth,
		CornerRadius:   ro.CornerRadius,
	}
	c.Events = Events{
		ClusterThreshold: ro.Layout.ClusterThreshold,
		HitWidth:         ro.Layout.HitWidth,
		EdgeMargin:       ro.Layout.EdgeMargin,
		IconSize:         ro.Layout.IconSize,
	}
	c.Markers.Refuel = MarkerStyle(refuel)
	c.Markers.Strike = MarkerStyle(strike)
	c.Virtualize.BufferRows = ro.Buffer
	c.Colors = Colors{
		Background:       ro.Colors.Background,
		HeaderBackground: ro.Colors.HeaderBackground,
		Gridline:         ro.Colors.Gridline,
		TickText:         ro.Colors.TickText,
		Ground:           ro.Colors.Palette.Ground,
		InAir:            ro.Colors.Palette.InAir,
		Selection:        ro.Colors.Selection,
		Band:             ro.Colors.Band,
		Label:            ro.Colors.Label,
		Categories: map[string]string{
			"Tanker": "#5B9BD5",
			"Strike": "#E07B39",
			"CAP":    "#4CAF7D",
		},
	}
	c.Font = Font{Family: ro.FontFamily, Size: ro.FontSize, TickSize: ro.TickFontSize}
	c.Server = Server{BindAddress: "127.0.0.1:8080", RequestTimeout: 15 * time.Second, SessionTTL: 30 * time.Minute}
	c.DisplayZone = "UTC"
	return c
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

var markerShapes = map[string]bool{"circle": true, "square": true, "diamond": true, "triangle": true}

// Validate reports every setting that cannot be rendered.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", name, v))
		}
	}
	positive("layout.width", c.Layout.Width)
	positive("layout.viewport_height", c.Layout.ViewportHeight)
	positive("layout.row_height", c.Layout.RowHeight)
	positive("zoom.px_per_hour", c.Zoom.PxPerHour)
	positive("zoom.wheel_sensitivity", c.Zoom.WheelSensitivity)
	positive("zoom.pinch_sensitivity", c.Zoom.PinchSensitivity)
	positive("worm.min_width", c.Worm.MinWidth)
	positive("font.size", c.Font.Size)

	if c.Layout.HeaderHeight < 0 {
		errs = append(errs, fmt.Errorf("layout.header_height must not be negative, got %g", c.Layout.HeaderHeight))
	}
	if 2*c.Layout.BarInset >= c.Layout.RowHeight {
		errs = append(errs, fmt.Errorf("layout.bar_inset %g leaves no room in a %g row", c.Layout.BarInset, c.Layout.RowHeight))
	}
	if c.Events.ClusterThreshold < 0 {
		errs = append(errs, fmt.Errorf("events.cluster_threshold must not be negative, got %g", c.Events.ClusterThreshold))
	}
	if c.Virtualize.BufferRows < 0 {
		errs = append(errs, fmt.Errorf("virtualize.buffer_rows must not be negative, got %d", c.Virtualize.BufferRows))
	}
	if c.Server.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("server.session_ttl must not be negative, got %s", c.Server.SessionTTL))
	}
	for name, m := range map[string]MarkerStyle{"refuel": c.Markers.Refuel, "strike": c.Markers.Strike} {
		if !markerShapes[strings.ToLower(m.Shape)] {
			errs = append(errs, fmt.Errorf("markers.%s.shape %q is not one of circle, square, diamond, triangle", name, m.Shape))
		}
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves DisplayZone; empty means UTC.
func (c Config) Location() (*time.Location, error) {
	if c.DisplayZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.DisplayZone)
	if err != nil {
		return nil, fmt.Errorf("display_zone %q: %w", c.DisplayZone, err)
	}
	return loc, nil
}

// CategoryColor returns the configured chip color of a category name, or
// fallback when none is set.
func (c Config) CategoryColor(name, fallback string) string {
	if color, ok := c.Colors.Categories[name]; ok && color != "" {
		return color
	}
	return fallback
}

// RenderOptions maps the config onto renderer options.
func (c Config) RenderOptions() render.Options {
	ro := render.DefaultOptions()
	ro.Width = c.Layout.Width
	ro.Viewport = c.Layout.ViewportHeight
	ro.RowHeight = c.Layout.RowHeight
	ro.HeaderHeight = c.Layout.HeaderHeight
	ro.BarInset = c.Layout.BarInset
	ro.CornerRadius = c.Worm.CornerRadius
	ro.Buffer = c.Virtualize.BufferRows
	ro.FontFamily = c.Font.Family
	ro.FontSize = c.Font.Size
	ro.TickFontSize = c.Font.TickSize
	ro.Layout = layout.Options{
		MinWidth:         c.Worm.MinWidth,
		LabelPadding:     c.Worm.LabelPadding,
		MinLabelWidth:    c.Worm.MinLabelWidth,
		MinLabelHeight:   c.Worm.MinLabelHeight,
		MinClipWidth:     c.Worm.MinClipWidth,
		ClusterThreshold: c.Events.ClusterThreshold,
		HitWidth:         c.Events.HitWidth,
		IconSize:         c.Events.IconSize,
		EdgeMargin:       c.Events.EdgeMargin,
	}
	ro.Zoom = panzoom.Options{
		WheelSensitivity: c.Zoom.WheelSensitivity,
		PinchSensitivity: c.Zoom.PinchSensitivity,
		PxPerHour:        c.Zoom.PxPerHour,
	}
	ro.Colors = render.Colors{
		Background:       c.Colors.Background,
		HeaderBackground: c.Colors.HeaderBackground,
		Gridline:         c.Colors.Gridline,
		TickText:         c.Colors.TickText,
		Selection:        c.Colors.Selection,
		Band:             c.Colors.Band,
		Label:            c.Colors.Label,
		Palette:          flightstatus.Palette{Ground: c.Colors.Ground, InAir: c.Colors.InAir},
	}
	ro.Markers = map[layout.Kind]render.MarkerStyle{
		layout.KindRefuel: render.MarkerStyle(c.Markers.Refuel),
		layout.KindStrike: render.MarkerStyle(c.Markers.Strike),
	}
	return ro
}
