package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// clipArena hands out document-unique clip-path ids for one render. The
// prefix keeps ids from colliding with other timelines in the same page.
type clipArena struct {
	prefix string
	next   int
}

func (a *clipArena) id() string {
	id := fmt.Sprintf("%s-c%d", a.prefix, a.next)
	a.next++
	return id
}

// SVG renders the current scene as a standalone SVG document.
func (t *Timeline) SVG() string {
	return generateSVG(t.Scene(), t.opts)
}

// WriteSVG renders the current scene to w.
func (t *Timeline) WriteSVG(w io.Writer) error {
	_, err := io.WriteString(w, t.SVG())
	if err != nil {
		return fmt.Errorf("error writing SVG: %w", err)
	}
	return nil
}

// generateSVG draws the body first and the tick header last, so the header
// stays on top at the current scroll offset.
func generateSVG(s Scene, opts Options) string {
	hatchID := s.Prefix + "-hatch"
	arena := &clipArena{prefix: s.Prefix}
	totalHeight := s.HeaderHeight + s.BodyHeight

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%s" height="%s" xmlns="http://www.w3.org/2000/svg" data-k="%s" data-x="%s">
<defs>
<style>
.worm-label { font-family: %s; font-size: %spx; fill: %s; pointer-events: none; user-select: none; }
.tick-text { font-family: %s; font-size: %spx; fill: %s; user-select: none; }
.worm { cursor: pointer; }
</style>
<pattern id="%s" width="6" height="6" patternUnits="userSpaceOnUse" patternTransform="rotate(45)">
<rect width="6" height="6" fill="%s" fill-opacity="0.2"/>
<line x1="0" y1="0" x2="0" y2="6" stroke="%s" stroke-width="2" stroke-opacity="0.7"/>
</pattern>
</defs>
`, num(s.Width), num(totalHeight), num(s.Transform.K), num(s.Transform.X),
		opts.FontFamily, num(opts.FontSize), opts.Colors.Label,
		opts.FontFamily, num(opts.TickFontSize), opts.Colors.TickText,
		hatchID, opts.Colors.Band, opts.Colors.Band))

	svg.WriteString(fmt.Sprintf(`<g class="body" transform="translate(0,%s)">`, num(s.HeaderHeight)))
	svg.WriteString(fmt.Sprintf(`<rect data-background="true" width="%s" height="%s" fill="%s"/>`,
		num(s.Width), num(s.BodyHeight), opts.Colors.Background))
	for _, tick := range s.Ticks {
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`,
			num(tick.X), num(tick.X), num(s.BodyHeight), opts.Colors.Gridline))
	}
	for _, row := range s.Rows {
		drawWorm(&svg, row, opts, arena, hatchID)
	}
	svg.WriteString(`</g>`)

	svg.WriteString(fmt.Sprintf(`<g class="header" transform="translate(0,%s)">`, num(s.ScrollTop)))
	svg.WriteString(fmt.Sprintf(`<rect width="%s" height="%s" fill="%s"/>`,
		num(s.Width), num(s.HeaderHeight), opts.Colors.HeaderBackground))
	svg.WriteString(fmt.Sprintf(`<line x1="0" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`,
		num(s.HeaderHeight), num(s.Width), num(s.HeaderHeight), opts.Colors.Gridline))
	for _, tick := range s.Ticks {
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`,
			num(tick.X), num(tick.X), num(s.HeaderHeight), opts.Colors.Gridline))
		svg.WriteString(fmt.Sprintf(`<text class="tick-text" x="%s" y="20" text-anchor="middle">%s</text>`,
			num(tick.X), escapeXML(tick.Label)))
	}
	svg.WriteString(`</g>`)

	svg.WriteString("</svg>")
	return svg.String()
}

// drawWorm draws one assignment bar with its on-station bands, label and
// event markers.
func drawWorm(svg *strings.Builder, row Row, opts Options, arena *clipArena, hatchID string) {
	w := row.Worm
	bar := w.Bar
	id := escapeXML(row.AssignmentID)

	svg.WriteString(fmt.Sprintf(`<g class="worm" data-worm="true" data-assignment="%s" data-status="%s">`,
		id, escapeXML(string(row.Status))))

	var barClip, labelClip string
	if len(w.Bands) > 0 || w.Label.Visible {
		svg.WriteString(`<defs>`)
		if len(w.Bands) > 0 {
			barClip = arena.id()
			svg.WriteString(fmt.Sprintf(`<clipPath id="%s"><rect x="%s" y="%s" width="%s" height="%s" rx="%s"/></clipPath>`,
				barClip, num(bar.X), num(bar.Y), num(bar.Width), num(bar.Height), num(opts.CornerRadius)))
		}
		if w.Label.Visible {
			labelClip = arena.id()
			c := w.Label.Clip
			svg.WriteString(fmt.Sprintf(`<clipPath id="%s"><rect x="%s" y="%s" width="%s" height="%s"/></clipPath>`,
				labelClip, num(c.X), num(c.Y), num(c.Width), num(c.Height)))
		}
		svg.WriteString(`</defs>`)
	}

	stroke, strokeWidth := "none", 0.0
	if row.Selected {
		stroke, strokeWidth = opts.Colors.Selection, 2
	}
	svg.WriteString(fmt.Sprintf(`<rect data-worm="true" data-assignment="%s" x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
		id, num(bar.X), num(bar.Y), num(bar.Width), num(bar.Height), num(opts.CornerRadius),
		row.Color, stroke, num(strokeWidth)))

	if barClip != "" {
		svg.WriteString(fmt.Sprintf(`<g clip-path="url(#%s)">`, barClip))
		for _, band := range w.Bands {
			svg.WriteString(fmt.Sprintf(`<rect data-event="%d" x="%s" y="%s" width="%s" height="%s" fill="url(#%s)"/>`,
				band.EventIndex, num(band.X1), num(bar.Y), num(band.X2-band.X1), num(bar.Height), hatchID))
		}
		svg.WriteString(`</g>`)
	}

	if labelClip != "" {
		svg.WriteString(fmt.Sprintf(`<text class="worm-label" x="%s" y="%s" dy="0.35em" clip-path="url(#%s)">%s</text>`,
			num(w.Label.X), num(bar.Y+bar.Height/2), labelClip, escapeXML(row.Label)))
	}

	cy := bar.Y + bar.Height/2
	for _, m := range w.Markers {
		svg.WriteString(fmt.Sprintf(`<g class="marker marker-%s" data-event="%d" data-members="%s">`,
			m.Kind, m.EventIndex, joinInts(m.Members)))
		drawEventMarker(svg, m.X, cy, opts.Layout.IconSize/2, opts.markerStyle(m.Kind))
		if m.Count > 1 {
			svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle" font-family="%s" font-size="9" font-weight="bold" fill="#ffffff">%d</text>`,
				num(m.X), num(cy+3), opts.FontFamily, m.Count))
		}
		hit := m.HitRect(bar.Y, bar.Height)
		svg.WriteString(fmt.Sprintf(`<rect data-worm="true" data-event="%d" x="%s" y="%s" width="%s" height="%s" fill="transparent"/>`,
			m.EventIndex, num(hit.X), num(hit.Y), num(hit.Width), num(hit.Height)))
		svg.WriteString(`</g>`)
	}

	svg.WriteString(`</g>`)
}

// drawEventMarker draws an icon of the given shape centered on (x, y).
func drawEventMarker(svg *strings.Builder, x, y, size float64, style MarkerStyle) {
	fillColor := style.FillColor
	strokeColor := style.StrokeColor
	strokeWidth := num(style.StrokeWidth)

	switch strings.ToLower(style.Shape) {
	case "square":
		svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(x-size), num(y-size), num(size*2), num(size*2), fillColor, strokeColor, strokeWidth))

	case "diamond":
		svg.WriteString(fmt.Sprintf(`<polygon points="%s,%s %s,%s %s,%s %s,%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(x), num(y-size),
			num(x+size), num(y),
			num(x), num(y+size),
			num(x-size), num(y),
			fillColor, strokeColor, strokeWidth))

	case "triangle":
		svg.WriteString(fmt.Sprintf(`<polygon points="%s,%s %s,%s %s,%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(x), num(y-size),
			num(x-size), num(y+size),
			num(x+size), num(y+size),
			fillColor, strokeColor, strokeWidth))

	default:
		svg.WriteString(fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(x), num(y), num(size), fillColor, strokeColor, strokeWidth))
	}
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
