// Package tui is a terminal viewer for one day of the schedule. It drives the
// same renderer as the SVG and HTTP front ends, with one terminal cell per
// pixel and one line per row.
//
// Mouse input is translated into gestures and emitted on a panzoom.Feed the
// timeline's controller is attached to; plain wheel scrolls rows, ctrl-wheel
// zooms, shift-wheel and horizontal wheel pan, and a left drag on empty space
// pans.
package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"missiontimeline/internal/briefing"
	"missiontimeline/internal/config"
	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/layout"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/panzoom"
	"missiontimeline/internal/render"
	"missiontimeline/internal/timescale"
)

const (
	gutterWidth    = 16  // row label column
	panStep        = 4   // cells per pan key or wheel notch
	wheelZoomDelta = 100 // ctrl-wheel delta per notch
	drawerHeight   = 12  // drawer lines including its title
	cellsPerHour   = 60  // maximum zoom: one cell per minute
)

// Options configures a Model.
type Options struct {
	Config      config.Config
	Day         mission.Day
	Assignments []mission.Assignment
	Categories  []mission.Category
	Index       *mission.Index
	// Reference pins the status instant; zero derives it from Now.
	Reference time.Time
	Now       func() time.Time
	Logger    *slog.Logger
}

// Model is the bubbletea model of the viewer.
type Model struct {
	opts    Options
	log     *slog.Logger
	palette flightstatus.Palette

	tl      *render.Timeline
	feed    *panzoom.Feed
	detach  func()
	release func()

	width, height int
	top           int
	cursor        int

	drawer      viewport.Model
	drawerOpen  bool
	drawerTitle string
	tooltip     []string

	dragging  bool
	dragMoved bool
	dragX     int
	quitting  bool
}

// New builds the viewer over the given rows.
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ro := opts.Config.RenderOptions()
	ro.RowHeight = 1
	ro.HeaderHeight = 1
	ro.BarInset = 0
	ro.Width = 80 - gutterWidth
	ro.Viewport = 20
	ro.Layout = layout.Options{
		MinWidth:         1,
		LabelPadding:     1,
		MinLabelWidth:    4,
		MinLabelHeight:   1,
		MinClipWidth:     3,
		ClusterThreshold: 1.5,
		HitWidth:         1,
		IconSize:         1,
		EdgeMargin:       0,
	}
	ro.Zoom.PxPerHour = cellsPerHour
	ro.Now = opts.Now
	ro.Logger = logger

	m := &Model{
		opts:    opts,
		log:     logger.With("component", "tui"),
		palette: ro.Colors.Palette,
		feed:    &panzoom.Feed{},
		drawer:  viewport.New(0, 0),
	}
	m.tl = render.New(ro, render.Callbacks{
		OnSelectAssignment: m.onSelect,
		OnTooltipShow: func(req render.TooltipRequest) {
			if a, ok := m.tl.Assignment(req.AssignmentID); ok {
				m.tooltip = briefing.Tooltip(a, req.EventIndex, opts.Index, m.tl.ReferenceTime())
			}
		},
		OnTooltipHide: func() { m.tooltip = nil },
	})
	m.tl.SetData(opts.Day, opts.Assignments, opts.Index)
	if !opts.Reference.IsZero() {
		m.tl.SetReferenceTime(opts.Reference)
	}
	m.detach = m.tl.Controller().Attach(m.feed)
	m.release = m.tl.Controller().OnChange(func(t timescale.Transform) {
		m.log.Debug("transform", "k", t.K, "x", t.X)
	})
	return m
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(m *Model) error {
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}

// Close releases the gesture source and the transform observer.
func (m *Model) Close() {
	if m.detach != nil {
		m.detach()
		m.detach = nil
	}
	if m.release != nil {
		m.release()
		m.release = nil
	}
}

// Timeline exposes the renderer, mostly for tests.
func (m *Model) Timeline() *render.Timeline { return m.tl }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, keys.Left):
		m.feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, DeltaX: -panStep})
	case key.Matches(msg, keys.Right):
		m.feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, DeltaX: panStep})
	case key.Matches(msg, keys.ZoomIn):
		m.feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, Ctrl: true, DeltaY: -wheelZoomDelta, PointerX: m.tl.Width() / 2})
	case key.Matches(msg, keys.ZoomOut):
		m.feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, Ctrl: true, DeltaY: wheelZoomDelta, PointerX: m.tl.Width() / 2})
	case key.Matches(msg, keys.Reset):
		m.tl.Controller().Reset()
	case key.Matches(msg, keys.Enter):
		if m.drawerOpen && m.drawerTitle != "Tankers" {
			m.closeDrawer()
		} else {
			m.openDetails()
		}
	case key.Matches(msg, keys.Tankers):
		if m.drawerOpen && m.drawerTitle == "Tankers" {
			m.closeDrawer()
		} else {
			m.openTankers()
		}
	case key.Matches(msg, keys.Esc):
		m.tl.ClearSelection()
		m.tl.Leave()
		m.closeDrawer()
	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDown):
		if m.drawerOpen {
			var cmd tea.Cmd
			m.drawer, cmd = m.drawer.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y, inBody := m.pointer(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		sign := 1.0
		if msg.Button == tea.MouseButtonWheelUp {
			sign = -1
		}
		switch {
		case msg.Ctrl:
			m.feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, Ctrl: true, DeltaY: sign * wheelZoomDelta, PointerX: x, PointerY: y})
		case msg.Shift:
			m.feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, Shift: true, DeltaY: sign * panStep, PointerX: x, PointerY: y})
		default:
			m.scrollBy(int(sign))
		}
	case msg.Button == tea.MouseButtonWheelLeft || msg.Button == tea.MouseButtonWheelRight:
		delta := float64(panStep)
		if msg.Button == tea.MouseButtonWheelLeft {
			delta = -delta
		}
		m.feed.Emit(panzoom.Gesture{Kind: panzoom.Wheel, DeltaX: delta, PointerX: x, PointerY: y})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !inBody {
			return
		}
		m.dragging, m.dragMoved, m.dragX = true, false, msg.X
		m.feed.Emit(panzoom.Gesture{
			Kind:     panzoom.DragStart,
			Target:   m.tl.HitTest(x, y).Target,
			PointerX: x,
			PointerY: y,
		})
	case msg.Action == tea.MouseActionMotion && m.dragging:
		if dx := msg.X - m.dragX; dx != 0 {
			m.dragMoved, m.dragX = true, msg.X
			m.feed.Emit(panzoom.Gesture{Kind: panzoom.DragMove, DeltaX: float64(dx), PointerX: x, PointerY: y})
		}
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		m.feed.Emit(panzoom.Gesture{Kind: panzoom.DragEnd, PointerX: x, PointerY: y})
		if !m.dragMoved && inBody {
			m.tl.Click(x, y)
		}
	case msg.Action == tea.MouseActionMotion:
		if inBody {
			m.tl.Hover(x, y)
		} else {
			m.tl.Leave()
		}
	}
}

// pointer maps a terminal cell to container x and body y at the cell center.
func (m *Model) pointer(col, line int) (x, y float64, inBody bool) {
	x = float64(col-gutterWidth) + 0.5
	y = float64(m.top+line-1) + 0.5
	inBody = col >= gutterWidth && line >= 1 && line-1 < m.bodyRows()
	return x, y, inBody
}

func (m *Model) onSelect(id string) {
	if id == "" {
		if m.drawerOpen && m.drawerTitle != "Tankers" {
			m.closeDrawer()
		}
		return
	}
	for i, a := range m.tl.Assignments() {
		if a.AssignmentID == id {
			m.cursor = i
			break
		}
	}
	if m.drawerOpen && m.drawerTitle != "Tankers" {
		m.openDetails()
	}
}

func (m *Model) moveCursor(d int) {
	rows := m.tl.Assignments()
	if len(rows) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+d, 0, len(rows)-1)
	m.tl.Select(rows[m.cursor].AssignmentID)
	m.ensureVisible()
	if m.drawerOpen && m.drawerTitle != "Tankers" {
		m.openDetails()
	}
}

func (m *Model) openDetails() {
	rows := m.tl.Assignments()
	if len(rows) == 0 {
		return
	}
	a := rows[m.cursor]
	m.tl.Select(a.AssignmentID)
	d := briefing.Build(a, m.opts.Index, m.tl.ReferenceTime(), m.palette)
	m.setDrawer(a.Callsign, d.Text())
}

func (m *Model) openTankers() {
	var board briefing.TankerBoard
	if m.opts.Reference.IsZero() {
		board = briefing.Tankers(m.opts.Day, m.opts.Assignments, m.opts.Categories, m.opts.Index, m.opts.Now())
	} else {
		board = briefing.TankersAt(m.opts.Day, m.opts.Assignments, m.opts.Categories, m.opts.Index, m.opts.Reference)
	}
	m.setDrawer("Tankers", board.Text())
}

func (m *Model) setDrawer(title, text string) {
	m.drawerTitle = title
	m.drawer.SetContent(wordwrap.String(text, max(10, m.width-2)))
	m.drawer.GotoTop()
	m.drawerOpen = true
	m.resize()
}

func (m *Model) closeDrawer() {
	if !m.drawerOpen {
		return
	}
	m.drawerOpen = false
	m.resize()
}

// bodyRows is the number of assignment lines that fit between the header and
// the footer.
func (m *Model) bodyRows() int {
	n := m.height - 3
	if m.drawerOpen {
		n -= drawerHeight
	}
	return max(1, n)
}

func (m *Model) resize() {
	if m.width > 0 {
		m.tl.Resize(float64(max(1, m.width-gutterWidth)))
	}
	m.drawer.Width = m.width
	m.drawer.Height = drawerHeight - 1
	m.ensureVisible()
}

func (m *Model) scrollBy(d int) {
	m.top += d
	m.clampTop()
	m.syncScroll()
}

func (m *Model) ensureVisible() {
	body := m.bodyRows()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+body {
		m.top = m.cursor - body + 1
	}
	m.clampTop()
	m.syncScroll()
}

func (m *Model) clampTop() {
	m.top = clamp(m.top, 0, max(0, len(m.tl.Assignments())-m.bodyRows()))
}

func (m *Model) syncScroll() {
	m.tl.SetScroll(float64(m.top), float64(m.bodyRows()))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
