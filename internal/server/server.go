// Package server exposes the schedule and interactive timeline sessions over
// HTTP. A session owns one renderer; clients push gestures, scroll and pointer
// input and pull the scene or its SVG.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"missiontimeline/internal/briefing"
	"missiontimeline/internal/config"
	"missiontimeline/internal/dataset"
	"missiontimeline/internal/flightstatus"
	"missiontimeline/internal/mission"
	"missiontimeline/internal/panzoom"
	"missiontimeline/internal/render"
	"missiontimeline/internal/timescale"
)

var errUnknownCategory = errors.New("unknown category")

// Server serves one loaded dataset.
type Server struct {
	data     *dataset.Dataset
	render   render.Options
	palette  flightstatus.Palette
	log      *slog.Logger
	now      func() time.Time
	sessions *store
	ttl      time.Duration
	handler  http.Handler
	httpSrv  *http.Server
}

// Options configures a Server.
type Options struct {
	Dataset *dataset.Dataset
	Config  config.Config
	Logger  *slog.Logger
	// Now is the wall clock for default reference times; time.Now when nil.
	Now func() time.Time
}

// New builds the server and its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ro := opts.Config.RenderOptions()
	s := &Server{
		data:     opts.Dataset,
		render:   ro,
		palette:  ro.Colors.Palette,
		log:      logger.With("component", "server"),
		now:      now,
		sessions: newStore(opts.Config.Server.SessionTTL, now),
		ttl:      opts.Config.Server.SessionTTL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/days", s.handleDays)
	mux.HandleFunc("GET /v1/categories", s.handleCategories)
	mux.HandleFunc("GET /v1/assignments", s.handleAssignments)
	mux.HandleFunc("GET /v1/assignments/{id}/briefing", s.handleBriefing)
	mux.HandleFunc("GET /v1/panel", s.handlePanel)
	mux.HandleFunc("GET /v1/tankers", s.handleTankers)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("PUT /v1/sessions/{id}/view", s.handleView)
	mux.HandleFunc("POST /v1/sessions/{id}/gestures", s.handleGestures)
	mux.HandleFunc("POST /v1/sessions/{id}/scroll", s.handleScroll)
	mux.HandleFunc("POST /v1/sessions/{id}/resize", s.handleResize)
	mux.HandleFunc("POST /v1/sessions/{id}/pointer", s.handlePointer)
	mux.HandleFunc("GET /v1/sessions/{id}/scene", s.handleScene)
	mux.HandleFunc("GET /v1/sessions/{id}/timeline.svg", s.handleSVG)

	var h http.Handler = mux
	if timeout := opts.Config.Server.RequestTimeout; timeout > 0 {
		h = http.TimeoutHandler(h, timeout, `{"error":"request timeout"}`)
	}
	s.handler = s.logRequests(h)
	s.httpSrv = &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// ServeTCP listens on bind until ctx is done.
func (s *Server) ServeTCP(ctx context.Context, bind string) error {
	if bind == "" {
		return errors.New("bind required")
	}
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	s.log.Info("listening", "addr", ln.Addr().String())
	go s.shutdownOnContext(ctx)
	go s.expireSessions(ctx)
	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdownOnContext(ctx context.Context) {
	<-ctx.Done()
	timeout, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = s.httpSrv.Shutdown(timeout)
}

// expireSessions sweeps idle sessions until ctx is done.
func (s *Server) expireSessions(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(max(s.ttl/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.sweep(); n > 0 {
				s.log.Info("sessions expired", "count", n, "remaining", s.sessions.len())
			}
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.code, "elapsed", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"assignments": len(s.data.Assignments),
		"sessions":    s.sessions.len(),
	})
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Days)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Categories)
}

// filtered applies the day, category and q query parameters.
func (s *Server) filtered(r *http.Request) (mission.Day, []mission.Assignment, error) {
	q := r.URL.Query()
	day, err := s.resolveDay(q.Get("day"))
	if err != nil {
		return mission.Day{}, nil, err
	}
	categoryID, ok := s.data.CategoryID(q.Get("category"))
	if !ok {
		return mission.Day{}, nil, errUnknownCategory
	}
	return day, dataset.Filter(s.data.Assignments, day.DayID, categoryID, q.Get("q")), nil
}

// referenceTime reads the at query parameter, or derives the default
// reference time for rows.
func (s *Server) referenceTime(r *http.Request, day mission.Day, rows []mission.Assignment) (time.Time, error) {
	if at := r.URL.Query().Get("at"); at != "" {
		return time.Parse(time.RFC3339, at)
	}
	return flightstatus.ReferenceTime(day, rows, s.now()), nil
}

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.filtered(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []mission.Assignment{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	a, ok := s.data.Index.Assignment(r.PathValue("id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "assignment not found")
		return
	}
	day, err := s.data.Day(a.DayID)
	if err != nil {
		day = mission.Day{DayID: a.DayID, Start: a.Start, End: a.End}
	}
	ref, err := s.referenceTime(r, day, dataset.Filter(s.data.Assignments, a.DayID, "", ""))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid at: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, briefing.Build(a.Normalized(), s.data.Index, ref, s.palette))
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	day, rows, err := s.filtered(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ref, err := s.referenceTime(r, day, rows)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid at: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reference": ref,
		"counts":    flightstatus.Count(rows, ref),
		"rows":      briefing.Panel(rows, s.data.Index, ref, s.palette),
	})
}

func (s *Server) handleTankers(w http.ResponseWriter, r *http.Request) {
	day, err := s.resolveDay(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, err)
		return
	}
	at := r.URL.Query().Get("at")
	if at == "" {
		writeJSON(w, http.StatusOK, briefing.Tankers(day, s.data.Assignments, s.data.Categories, s.data.Index, s.now()))
		return
	}
	ref, err := time.Parse(time.RFC3339, at)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid at: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, briefing.TankersAt(day, s.data.Assignments, s.data.Categories, s.data.Index, ref))
}

// sessionState is the JSON view of a session.
type sessionState struct {
	ID            string              `json:"id"`
	View          View                `json:"view"`
	Width         float64             `json:"width"`
	ScrollTop     float64             `json:"scrollTop"`
	Viewport      float64             `json:"viewportHeight"`
	Transform     timescale.Transform `json:"transform"`
	Selected      string              `json:"selected"`
	Reference     time.Time           `json:"reference"`
	Rows          int                 `json:"rows"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	Notifications []Notification      `json:"notifications,omitempty"`
	Outcomes      []panzoom.Outcome   `json:"outcomes,omitempty"`
	Hit           *render.Hit         `json:"hit,omitempty"`
}

func (s *Server) state(sess *session) sessionState {
	t := sess.timeline
	scrollTop, viewport := t.Scroll()
	return sessionState{
		ID:        sess.id,
		View:      sess.view,
		Width:     t.Width(),
		ScrollTop: scrollTop,
		Viewport:  viewport,
		Transform: t.Controller().Transform(),
		Selected:  t.Selected(),
		Reference: t.ReferenceTime(),
		Rows:      len(t.Assignments()),
		UpdatedAt: sess.lastTouched(),
	}
}

type createSessionRequest struct {
	View
	Width          float64 `json:"width"`
	ViewportHeight float64 `json:"viewportHeight"`
	At             string  `json:"at"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	sess, err := s.newSession(req.View, req.Width, req.ViewportHeight)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.At != "" {
		at, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid at: "+err.Error())
			return
		}
		sess.timeline.SetReferenceTime(at)
	}
	s.sessions.put(sess)
	s.log.Info("session created", "session", sess.id, "day", sess.view.Day, "rows", len(sess.timeline.Assignments()))
	writeJSON(w, http.StatusCreated, s.state(sess))
}

// withSession runs fn with the session of the request locked.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session)) {
	sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		writeJSON(w, http.StatusOK, s.state(sess))
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var view View
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.withSession(w, r, func(sess *session) {
		if err := s.applyView(sess, view); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.state(sess))
	})
}

func (s *Server) handleGestures(w http.ResponseWriter, r *http.Request) {
	var gestures []panzoom.Gesture
	if err := json.NewDecoder(r.Body).Decode(&gestures); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.withSession(w, r, func(sess *session) {
		outcomes := make([]panzoom.Outcome, 0, len(gestures))
		for _, g := range gestures {
			outcomes = append(outcomes, sess.timeline.Gesture(g))
		}
		st := s.state(sess)
		st.Outcomes = outcomes
		writeJSON(w, http.StatusOK, st)
	})
}

type scrollRequest struct {
	ScrollTop      float64 `json:"scrollTop"`
	ViewportHeight float64 `json:"viewportHeight"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.withSession(w, r, func(sess *session) {
		viewport := req.ViewportHeight
		if viewport <= 0 {
			_, viewport = sess.timeline.Scroll()
		}
		sess.timeline.SetScroll(req.ScrollTop, viewport)
		writeJSON(w, http.StatusOK, s.state(sess))
	})
}

type resizeRequest struct {
	Width float64 `json:"width"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.withSession(w, r, func(sess *session) {
		sess.timeline.Resize(req.Width)
		writeJSON(w, http.StatusOK, s.state(sess))
	})
}

type pointerRequest struct {
	Action string  `json:"action"` // "click", "hover", "leave" or "escape"
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.withSession(w, r, func(sess *session) {
		var hit *render.Hit
		switch req.Action {
		case "click":
			h := sess.timeline.Click(req.X, req.Y)
			hit = &h
		case "hover":
			h := sess.timeline.Hover(req.X, req.Y)
			hit = &h
		case "leave":
			sess.timeline.Leave()
		case "escape":
			sess.timeline.ClearSelection()
		default:
			writeErr(w, http.StatusBadRequest, "unknown pointer action "+req.Action)
			return
		}
		st := s.state(sess)
		st.Hit = hit
		st.Notifications = sess.drain()
		writeJSON(w, http.StatusOK, st)
	})
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		writeJSON(w, http.StatusOK, sess.timeline.Scene())
	})
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := sess.timeline.WriteSVG(w); err != nil {
			s.log.Warn("svg write failed", "session", sess.id, "err", err)
		}
	})
}

func (s *Server) tooltip(a mission.Assignment, eventIndex int, ref time.Time) []string {
	return briefing.Tooltip(a, eventIndex, s.data.Index, ref)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dataset.ErrUnknownDay), errors.Is(err, errUnknownCategory):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
