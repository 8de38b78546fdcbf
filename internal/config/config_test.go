package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"missiontimeline/internal/layout"
	"missiontimeline/internal/render"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if c.Layout.RowHeight != 40 || c.Events.ClusterThreshold != 16 || c.Virtualize.BufferRows != 5 {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.BindAddress != "127.0.0.1:8080" || c.Server.RequestTimeout != 15*time.Second || c.Server.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected server defaults %+v", c.Server)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
layout:
  width: 1600
  row_height: 32
colors:
  in_air: "#22C55E"
markers:
  strike:
    shape: diamond
server:
  request_timeout: 2s
  session_ttl: 5m
display_zone: "Europe/Berlin"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Layout.Width != 1600 || c.Layout.RowHeight != 32 {
		t.Fatalf("layout not applied: %+v", c.Layout)
	}
	if c.Layout.HeaderHeight != 30 {
		t.Fatalf("unset keys should keep defaults, got header %g", c.Layout.HeaderHeight)
	}
	if c.Markers.Strike.Shape != "diamond" || c.Markers.Strike.FillColor != "#EF4444" {
		t.Fatalf("marker overlay wrong: %+v", c.Markers.Strike)
	}
	if c.Server.RequestTimeout != 2*time.Second || c.Server.SessionTTL != 5*time.Minute {
		t.Fatalf("expected 2s timeout and 5m ttl, got %+v", c.Server)
	}
	loc, err := c.Location()
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %v (%v)", loc, err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || !strings.Contains(err.Error(), "error reading config file") {
		t.Fatalf("expected read error, got %v", err)
	}
	if _, err := Load(writeConfig(t, "layout: [1, 2")); err == nil || !strings.Contains(err.Error(), "error parsing config file") {
		t.Fatalf("expected parse error, got %v", err)
	}
	_, err := Load(writeConfig(t, `
layout:
  row_height: 0
markers:
  refuel:
    shape: star
server:
  session_ttl: -1m
display_zone: "Nowhere/Land"
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"layout.row_height", "markers.refuel.shape", "server.session_ttl", "display_zone"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("validation error should mention %s: %v", want, err)
		}
	}
}

func TestRenderOptions(t *testing.T) {
	c := Default()
	c.Layout.RowHeight = 24
	c.Events.ClusterThreshold = 30
	c.Colors.Ground = "#000000"
	c.Markers.Refuel.Shape = "square"

	ro := c.RenderOptions()
	if ro.RowHeight != 24 || ro.Layout.ClusterThreshold != 30 {
		t.Fatalf("sizes not mapped: %+v", ro)
	}
	if ro.Colors.Palette.Ground != "#000000" || ro.Colors.Palette.InAir != "#3B82F6" {
		t.Fatalf("palette not mapped: %+v", ro.Colors.Palette)
	}
	if ro.Markers[layout.KindRefuel].Shape != "square" {
		t.Fatalf("marker not mapped: %+v", ro.Markers)
	}

	def := render.DefaultOptions()
	back := Default().RenderOptions()
	if back.Layout != def.Layout || back.Zoom != def.Zoom || back.Colors != def.Colors {
		t.Fatalf("default config should map to default render options")
	}
}

func TestCategoryColor(t *testing.T) {
	c := Default()
	if got := c.CategoryColor("Tanker", "#fff"); got != "#5B9BD5" {
		t.Fatalf("unexpected tanker color %s", got)
	}
	if got := c.CategoryColor("Recon", "#fff"); got != "#fff" {
		t.Fatalf("unknown category should use fallback, got %s", got)
	}
}
