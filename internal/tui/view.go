package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"missiontimeline/internal/briefing"
	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/layout"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/render"
	"missiontimeline/internal/timescale"
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellBar
	cellBand
	cellLabel
	cellRefuel
	cellStrike
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
)

var statusOrder = []flightstatus.Status{
	flightstatus.Pending,
	flightstatus.Takeoff,
	flightstatus.Enroute,
	flightstatus.OnStation,
	flightstatus.RTB,
	flightstatus.Complete,
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	scene := m.tl.Scene()
	byIndex := make(map[int]render.Row, len(scene.Rows))
	for _, r := range scene.Rows {
		byIndex[r.Index] = r
	}

	lines := []string{m.renderHeader(scene)}
	for i := 0; i < m.bodyRows(); i++ {
		row, ok := byIndex[m.top+i]
		if !ok {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, m.renderRow(row))
	}
	if m.drawerOpen {
		title := titleStyle.Render(m.drawerTitle) + dimStyle.Render(fmt.Sprintf("  %3.f%%", m.drawer.ScrollPercent()*100))
		lines = append(lines, title, m.drawer.View())
	}
	lines = append(lines, m.renderStatus(scene), m.renderFooter())
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader(scene render.Scene) string {
	width := m.timelineWidth()
	header := []rune(strings.Repeat(" ", width))
	for _, tick := range scene.Ticks {
		c := int(math.Floor(tick.X))
		if c < 0 || c >= width {
			continue
		}
		header[c] = '│'
		for j, r := range tick.Instant.Format("15") {
			if c+1+j < width {
				header[c+1+j] = r
			}
		}
	}
	gutter := truncate.StringWithTail(m.opts.Day.Label, gutterWidth-1, "…")
	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.opts.Config.Colors.TickText))
	return titleStyle.Render(pad(gutter, gutterWidth)) + tickStyle.Render(string(header))
}

func (m *Model) renderRow(row render.Row) string {
	a, _ := m.tl.Assignment(row.AssignmentID)
	chipColor := m.opts.Config.CategoryColor(row.Category, briefing.CategoryColor(row.Category))
	chip := lipgloss.NewStyle().Foreground(lipgloss.Color(chipColor)).Render("▌")

	label := truncate.StringWithTail(mission.ShortCallsign(a.Callsign)+" "+a.MissionNumber, gutterWidth-2, "…")
	label = pad(label, gutterWidth-1)
	if row.Index == m.cursor {
		label = cursorStyle.Render(label)
	}
	return chip + label + m.renderCells(row)
}

// renderCells paints one row of the timeline, one rune per cell, and styles
// runs of equal cells together.
func (m *Model) renderCells(row render.Row) string {
	width := m.timelineWidth()
	runes := []rune(strings.Repeat(" ", width))
	kinds := make([]cellKind, width)
	fill := func(from, to float64, r rune, k cellKind) {
		c0 := max(0, int(math.Floor(from)))
		c1 := min(width, int(math.Ceil(to)))
		for c := c0; c < c1; c++ {
			runes[c], kinds[c] = r, k
		}
	}

	w := row.Worm
	fill(w.Bar.X, w.Bar.Right(), ' ', cellBar)
	for _, band := range w.Bands {
		fill(band.X1, band.X2, '░', cellBand)
	}
	if w.Label.Visible {
		c := int(math.Floor(w.Label.X))
		limit := min(width, int(math.Floor(w.Label.Clip.Right())))
		for _, r := range row.Label {
			if c >= limit {
				break
			}
			if c >= 0 {
				runes[c], kinds[c] = r, cellLabel
			}
			c++
		}
	}
	for _, mk := range w.Markers {
		c := int(math.Floor(mk.X))
		if c < 0 || c >= width {
			continue
		}
		r, k := '●', cellRefuel
		if mk.Kind == layout.KindStrike {
			r, k = '▲', cellStrike
		}
		if mk.Count > 1 {
			r = '+'
			if mk.Count < 10 {
				r = rune('0' + mk.Count)
			}
		}
		runes[c], kinds[c] = r, k
	}

	styles := m.cellStyles(row)
	var b strings.Builder
	for start := 0; start < width; {
		end := start + 1
		for end < width && kinds[end] == kinds[start] {
			end++
		}
		b.WriteString(styles[kinds[start]].Render(string(runes[start:end])))
		start = end
	}
	return b.String()
}

func (m *Model) cellStyles(row render.Row) map[cellKind]lipgloss.Style {
	colors := m.opts.Config.Colors
	bar := lipgloss.NewStyle().Background(lipgloss.Color(row.Color))
	if row.Selected {
		bar = bar.Bold(true).Underline(true)
	}
	ro := m.opts.Config.Markers
	return map[cellKind]lipgloss.Style{
		cellEmpty:  lipgloss.NewStyle(),
		cellBar:    bar,
		cellBand:   bar.Foreground(lipgloss.Color(colors.Band)),
		cellLabel:  bar.Foreground(lipgloss.Color(colors.Label)),
		cellRefuel: bar.Foreground(lipgloss.Color(ro.Refuel.FillColor)),
		cellStrike: bar.Foreground(lipgloss.Color(ro.Strike.FillColor)),
	}
}

func (m *Model) renderStatus(scene render.Scene) string {
	counts := flightstatus.Count(m.tl.Assignments(), scene.Reference)
	var parts []string
	for _, s := range statusOrder {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", s, n))
		}
	}
	status := fmt.Sprintf(" ref %sZ  zoom %.1fx  %d sorties  %s",
		timescale.FormatHHMMSS(scene.Reference), scene.Transform.K, len(m.tl.Assignments()), strings.Join(parts, " · "))
	return dimStyle.Render(truncate.StringWithTail(status, uint(max(0, m.width)), "…"))
}

func (m *Model) renderFooter() string {
	if len(m.tooltip) > 0 {
		return truncate.StringWithTail(" "+strings.Join(m.tooltip, " │ "), uint(max(0, m.width)), "…")
	}
	var help []string
	for _, b := range keys.ShortHelp() {
		h := b.Help()
		help = append(help, h.Key+":"+h.Desc)
	}
	return helpStyle.Render(truncate.StringWithTail(" "+strings.Join(help, " "), uint(max(0, m.width)), "…"))
}

func (m *Model) timelineWidth() int {
	return max(1, m.width-gutterWidth)
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
