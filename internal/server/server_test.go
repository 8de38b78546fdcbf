package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"missiontimeline/internal/config"
	"missiontimeline/internal/dataset"
	"missiontimeline/internal/panzoom"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ds, err := dataset.Load("../dataset/testdata/schedule.yaml", nil)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	s := New(Options{
		Dataset: ds,
		Config:  config.Default(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     func() time.Time { return now },
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return res.StatusCode
}

func TestScheduleRoutes(t *testing.T) {
	ts := newTestServer(t)

	var health map[string]any
	if code := do(t, http.MethodGet, ts.URL+"/healthz", nil, &health); code != http.StatusOK || health["status"] != "ok" {
		t.Fatalf("health: %d %v", code, health)
	}

	var days []map[string]any
	if code := do(t, http.MethodGet, ts.URL+"/v1/days", nil, &days); code != http.StatusOK || len(days) != 2 {
		t.Fatalf("days: %d %v", code, days)
	}

	var rows []map[string]any
	if code := do(t, http.MethodGet, ts.URL+"/v1/assignments?day=d1&category=strike", nil, &rows); code != http.StatusOK || len(rows) != 2 {
		t.Fatalf("assignments: %d %v", code, rows)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/assignments?day=d9", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown day should be 400, got %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/assignments?category=bomber", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown category should be 400, got %d", code)
	}
	if code := do(t, http.MethodPost, ts.URL+"/v1/days", nil, nil); code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", code)
	}
}

func TestBriefingAndTankers(t *testing.T) {
	ts := newTestServer(t)

	var details struct {
		Callsign     string `json:"callsign"`
		FlightStatus string `json:"flightStatus"`
		Fields       []struct {
			Label string `json:"label"`
			Value string `json:"value"`
		} `json:"fields"`
	}
	code := do(t, http.MethodGet, ts.URL+"/v1/assignments/a-201/briefing?at=2025-03-14T08:50:00Z", nil, &details)
	if code != http.StatusOK || details.Callsign != "VIPER11" || details.FlightStatus != "On Station" {
		t.Fatalf("briefing: %d %+v", code, details)
	}
	if len(details.Fields) != 3 || details.Fields[2].Value != "SHELL21" {
		t.Fatalf("unexpected fields %+v", details.Fields)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/assignments/nope/briefing", nil, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/assignments/a-201/briefing?at=noon", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", code)
	}

	var pinned struct {
		Reference time.Time  `json:"reference"`
		Tankers   []struct{} `json:"tankers"`
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/tankers?day=d1&at=2025-03-14T23:00:00Z", nil, &pinned); code != http.StatusOK {
		t.Fatalf("pinned tankers: %d", code)
	}
	if !pinned.Reference.Equal(time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)) || len(pinned.Tankers) != 0 {
		t.Fatalf("at outside the day should be used as is: %+v", pinned)
	}

	var board struct {
		Tankers []struct {
			Callsign string `json:"callsign"`
			Offloads []struct {
				Receiver string `json:"receiver"`
			} `json:"offloads"`
		} `json:"tankers"`
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/tankers?day=d1", nil, &board); code != http.StatusOK {
		t.Fatalf("tankers: %d", code)
	}
	if len(board.Tankers) != 1 || board.Tankers[0].Callsign != "SHELL21" || len(board.Tankers[0].Offloads) != 2 {
		t.Fatalf("unexpected board %+v", board)
	}
	if got := board.Tankers[0].Offloads[1].Receiver; got != "EAGLE31" {
		t.Fatalf("expected second offload to EAGLE31, got %s", got)
	}

	var panel struct {
		Rows []struct {
			ShortCallsign string `json:"shortCallsign"`
		} `json:"rows"`
		Counts map[string]int `json:"counts"`
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/panel?day=d1", nil, &panel); code != http.StatusOK || len(panel.Rows) != 5 {
		t.Fatalf("panel: %d %+v", code, panel)
	}
	if panel.Rows[0].ShortCallsign != "SL21" {
		t.Fatalf("unexpected first panel row %+v", panel.Rows[0])
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var st sessionState
	code := do(t, http.MethodPost, ts.URL+"/v1/sessions", createSessionRequest{
		View:           View{Day: "d1"},
		Width:          1200,
		ViewportHeight: 600,
	}, &st)
	if code != http.StatusCreated || st.ID == "" || st.Rows != 5 {
		t.Fatalf("create: %d %+v", code, st)
	}
	base := ts.URL + "/v1/sessions/" + st.ID

	// 100px per hour: SHELL21 spans x 100..700 in row 0, refuels at x 300.
	var clicked sessionState
	do(t, http.MethodPost, base+"/pointer", pointerRequest{Action: "click", X: 150, Y: 20}, &clicked)
	if clicked.Selected != "a-101" || clicked.Hit == nil || clicked.Hit.Target != panzoom.Bar {
		t.Fatalf("click should select a-101: %+v", clicked)
	}
	if len(clicked.Notifications) != 1 || clicked.Notifications[0].Type != "select" {
		t.Fatalf("expected one select notification, got %+v", clicked.Notifications)
	}

	var hovered sessionState
	do(t, http.MethodPost, base+"/pointer", pointerRequest{Action: "hover", X: 300, Y: 20}, &hovered)
	if len(hovered.Notifications) != 1 {
		t.Fatalf("expected one tooltip notification, got %+v", hovered.Notifications)
	}
	n := hovered.Notifications[0]
	want := []string{"Fuel Offload", "090000Z", "VIPER11 • 12k lbs", "7001 SHELL21"}
	if n.Type != "tooltip-show" || n.EventIndex != 0 || !reflect.DeepEqual(n.Lines, want) {
		t.Fatalf("unexpected tooltip %+v", n)
	}

	var left sessionState
	do(t, http.MethodPost, base+"/pointer", pointerRequest{Action: "leave"}, &left)
	if len(left.Notifications) != 1 || left.Notifications[0].Type != "tooltip-hide" {
		t.Fatalf("expected tooltip-hide, got %+v", left.Notifications)
	}

	var escaped sessionState
	do(t, http.MethodPost, base+"/pointer", pointerRequest{Action: "escape"}, &escaped)
	if escaped.Selected != "" || len(escaped.Notifications) != 0 {
		t.Fatalf("escape should clear silently: %+v", escaped)
	}

	var zoomed sessionState
	do(t, http.MethodPost, base+"/gestures", []panzoom.Gesture{
		{Kind: panzoom.Wheel, DeltaY: -100, Ctrl: true, PointerX: 600},
		{Kind: panzoom.Wheel, DeltaY: 40},
	}, &zoomed)
	if zoomed.Transform.K <= 1 || len(zoomed.Outcomes) != 2 {
		t.Fatalf("ctrl-wheel should zoom: %+v", zoomed)
	}
	if !zoomed.Outcomes[0].Captured || zoomed.Outcomes[1].Captured {
		t.Fatalf("only the ctrl-wheel should be captured: %+v", zoomed.Outcomes)
	}

	var viewed sessionState
	do(t, http.MethodPut, base+"/view", View{Day: "d1", Category: "CAP"}, &viewed)
	if viewed.Rows != 2 || viewed.Transform.K != 1 || viewed.View.Category != "cat-3" {
		t.Fatalf("view change should filter and reset zoom: %+v", viewed)
	}
	if code := do(t, http.MethodPut, base+"/view", View{Day: "d9"}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown day should be 400, got %d", code)
	}

	var scrolled sessionState
	do(t, http.MethodPost, base+"/scroll", scrollRequest{ScrollTop: 40}, &scrolled)
	if scrolled.ScrollTop != 40 || scrolled.Viewport != 600 {
		t.Fatalf("unexpected scroll state %+v", scrolled)
	}

	var resized sessionState
	do(t, http.MethodPost, base+"/resize", resizeRequest{Width: 0}, &resized)
	if resized.Width != 800 {
		t.Fatalf("zero width should fall back to 800, got %g", resized.Width)
	}

	if code := do(t, http.MethodDelete, base, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete: %d", code)
	}
	if code := do(t, http.MethodGet, base, nil, nil); code != http.StatusNotFound {
		t.Fatalf("deleted session should be 404, got %d", code)
	}
}

func TestSessionSVGAndScene(t *testing.T) {
	ts := newTestServer(t)

	var st sessionState
	if code := do(t, http.MethodPost, ts.URL+"/v1/sessions", nil, &st); code != http.StatusCreated {
		t.Fatalf("create with empty body: %d", code)
	}
	if st.View.Day != "d1" {
		t.Fatalf("default day should be d1, got %q", st.View.Day)
	}
	base := ts.URL + "/v1/sessions/" + st.ID

	res, err := http.Get(base + "/timeline.svg")
	if err != nil {
		t.Fatalf("svg: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.Header.Get("Content-Type") != "image/svg+xml" || !strings.Contains(string(body), `data-assignment="a-101"`) {
		t.Fatalf("unexpected svg response %s:\n%s", res.Header.Get("Content-Type"), body)
	}
	if !strings.Contains(string(body), `id="tl`+st.ID[:8]) {
		t.Fatalf("svg ids should use the session prefix")
	}

	var scene struct {
		Rows []struct {
			AssignmentID string `json:"assignmentId"`
		} `json:"rows"`
	}
	if code := do(t, http.MethodGet, base+"/scene", nil, &scene); code != http.StatusOK || len(scene.Rows) != 5 {
		t.Fatalf("scene: %d %+v", code, scene)
	}

	if code := do(t, http.MethodPost, base+"/pointer", pointerRequest{Action: "wave"}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown action should be 400, got %d", code)
	}
	if code := do(t, http.MethodPost, base+"/gestures", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("missing body should be 400, got %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/sessions/nope/scene", nil, nil); code != http.StatusNotFound {
		t.Fatalf("unknown session should be 404, got %d", code)
	}
}

func TestIdleSessionsExpire(t *testing.T) {
	ds, err := dataset.Load("../dataset/testdata/schedule.yaml", nil)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	cfg := config.Default()
	cfg.Server.SessionTTL = 10 * time.Minute

	var mu sync.Mutex
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}
	s := New(Options{
		Dataset: ds,
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		},
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	var idle, active sessionState
	do(t, http.MethodPost, ts.URL+"/v1/sessions", nil, &idle)
	do(t, http.MethodPost, ts.URL+"/v1/sessions", nil, &active)

	advance(6 * time.Minute)
	if code := do(t, http.MethodGet, ts.URL+"/v1/sessions/"+active.ID, nil, nil); code != http.StatusOK {
		t.Fatalf("active session should survive, got %d", code)
	}

	advance(6 * time.Minute)
	if code := do(t, http.MethodGet, ts.URL+"/v1/sessions/"+idle.ID+"/scene", nil, nil); code != http.StatusNotFound {
		t.Fatalf("idle session should expire, got %d", code)
	}
	if code := do(t, http.MethodGet, ts.URL+"/v1/sessions/"+active.ID, nil, nil); code != http.StatusOK {
		t.Fatalf("touched session should still be alive, got %d", code)
	}

	do(t, http.MethodPost, ts.URL+"/v1/sessions", nil, nil)
	advance(11 * time.Minute)
	if n := s.sessions.sweep(); n != 2 {
		t.Fatalf("sweep should drop the two idle sessions, dropped %d", n)
	}
	if n := s.sessions.len(); n != 0 {
		t.Fatalf("expected no sessions left, got %d", n)
	}
}
