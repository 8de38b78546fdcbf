package server

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"missiontimeline/internal/dataset"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/render"
)

// ErrSessionNotFound is returned for unknown or deleted session ids.
var ErrSessionNotFound = errors.New("session not found")

// View selects what a session shows.
type View struct {
	Day      string `json:"day"`
	Category string `json:"category"`
	Search   string `json:"search"`
}

// Notification is an outbound timeline callback recorded for the client.
type Notification struct {
	Type         string   `json:"type"` // "select", "tooltip-show" or "tooltip-hide"
	AssignmentID string   `json:"assignmentId,omitempty"`
	X            float64  `json:"x,omitempty"`
	Y            float64  `json:"y,omitempty"`
	EventIndex   int      `json:"eventIndex"`
	Lines        []string `json:"lines,omitempty"`
}

// session is one viewer's timeline. Every access holds mu, which keeps the
// timeline single-writer although HTTP handlers run concurrently. touched is
// owned by the store and read without mu.
type session struct {
	mu       sync.Mutex
	id       string
	view     View
	timeline *render.Timeline
	pending  []Notification
	touched  atomic.Int64 // unix nanoseconds of the last access
}

func (s *session) touch(t time.Time) { s.touched.Store(t.UnixNano()) }

func (s *session) lastTouched() time.Time { return time.Unix(0, s.touched.Load()).UTC() }

// drain returns and clears the notifications recorded since the last call.
func (s *session) drain() []Notification {
	out := s.pending
	s.pending = nil
	return out
}

// store owns all sessions. Sessions idle for longer than ttl are dropped,
// lazily on access and by sweep; a zero ttl keeps them until deleted.
type store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func newStore(ttl time.Duration, now func() time.Time) *store {
	return &store{sessions: make(map[string]*session), ttl: ttl, now: now}
}

func (st *store) expired(s *session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.lastTouched()) > st.ttl
}

// get returns the session and marks it used.
func (st *store) get(id string) (*session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	s, ok := st.sessions[id]
	if ok && st.expired(s, now) {
		delete(st.sessions, id)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch(now)
	return s, nil
}

func (st *store) put(s *session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.sweepLocked(now)
	s.touch(now)
	st.sessions[s.id] = s
}

func (st *store) delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(st.sessions, id)
	return nil
}

// sweep drops every expired session and returns how many it dropped.
func (st *store) sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked(st.now())
}

func (st *store) sweepLocked(now time.Time) int {
	n := 0
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *store) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// newSession builds a timeline whose callbacks record notifications with
// tooltip text already resolved.
func (srv *Server) newSession(view View, width, viewport float64) (*session, error) {
	s := &session{id: uuid.NewString()}
	s.touch(srv.now())

	opts := srv.render
	opts.IDPrefix = "tl" + s.id[:8]
	opts.Now = srv.now
	opts.Logger = srv.log.With("session", s.id)
	if width > 0 {
		opts.Width = width
	}
	if viewport > 0 {
		opts.Viewport = viewport
	}

	s.timeline = render.New(opts, render.Callbacks{
		OnSelectAssignment: func(id string) {
			s.pending = append(s.pending, Notification{Type: "select", AssignmentID: id, EventIndex: render.NoEvent})
		},
		OnTooltipShow: func(req render.TooltipRequest) {
			n := Notification{
				Type:         "tooltip-show",
				AssignmentID: req.AssignmentID,
				X:            req.X,
				Y:            req.Y,
				EventIndex:   req.EventIndex,
			}
			if a, ok := s.timeline.Assignment(req.AssignmentID); ok {
				n.Lines = srv.tooltip(a, req.EventIndex, s.timeline.ReferenceTime())
			}
			s.pending = append(s.pending, n)
		},
		OnTooltipHide: func() {
			s.pending = append(s.pending, Notification{Type: "tooltip-hide", EventIndex: render.NoEvent})
		},
	})
	if err := srv.applyView(s, view); err != nil {
		return nil, err
	}
	return s, nil
}

// applyView resolves view against the dataset and feeds the filtered rows to
// the timeline, which resets pan/zoom and scroll.
func (srv *Server) applyView(s *session, view View) error {
	day, err := srv.resolveDay(view.Day)
	if err != nil {
		return err
	}
	categoryID, ok := srv.data.CategoryID(view.Category)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownCategory, view.Category)
	}
	rows := dataset.Filter(srv.data.Assignments, day.DayID, categoryID, view.Search)
	s.timeline.SetData(day, rows, srv.data.Index)
	s.view = View{Day: day.DayID, Category: categoryID, Search: view.Search}
	return nil
}

func (srv *Server) resolveDay(id string) (mission.Day, error) {
	if id == "" {
		return srv.data.DefaultDay()
	}
	return srv.data.Day(id)
}
