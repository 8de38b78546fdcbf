package mission_test

import (
	"testing"
	"time"

	"missiontimeline/internal/mission"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-03-14 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func TestSortEventsUsesPriorityOnTies(t *testing.T) {
	events := []mission.Event{
		{Type: mission.EventStrike, Time: at("09:00")},
		{Type: mission.EventRefuelReceiver, Time: at("09:00")},
		{Type: mission.EventOnStation, Time: at("09:00"), EndTime: ptr(at("09:30"))},
		{Type: mission.EventRefuelTanker, Time: at("08:30")},
	}
	got := mission.SortEvents(events)
	want := []mission.EventType{
		mission.EventRefuelTanker,
		mission.EventOnStation,
		mission.EventRefuelReceiver,
		mission.EventStrike,
	}
	for i, w := range want {
		if got[i].Type != w {
			t.Fatalf("position %d: expected %s, got %s (%+v)", i, w, got[i].Type, got)
		}
	}
	if events[0].Type != mission.EventStrike {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestSortEventsKeepsInsertionOrderForSameTypeAndTime(t *testing.T) {
	events := []mission.Event{
		{Type: mission.EventStrike, Time: at("09:00"), DMPICount: ptr(1)},
		{Type: mission.EventStrike, Time: at("09:00"), DMPICount: ptr(2)},
	}
	got := mission.SortEvents(events)
	if got[0].DMPIs() != 1 || got[1].DMPIs() != 2 {
		t.Fatalf("expected stable order, got %+v", got)
	}
}

func TestNormalizedSwapsReversedWindow(t *testing.T) {
	a := mission.Assignment{
		Start: at("08:00"),
		End:   at("10:00"),
		Events: []mission.Event{
			{Type: mission.EventOnStation, Time: at("09:20"), EndTime: ptr(at("08:40"))},
		},
	}
	n := a.Normalized()
	if !n.Events[0].Time.Equal(at("08:40")) || !n.Events[0].End().Equal(at("09:20")) {
		t.Fatalf("expected swapped window, got %+v", n.Events[0])
	}
	if !a.Events[0].Time.Equal(at("09:20")) {
		t.Fatalf("original assignment must stay untouched")
	}
}

func TestOnStationWindowsSkipsOpenIntervals(t *testing.T) {
	a := mission.Assignment{
		Events: []mission.Event{
			{Type: mission.EventOnStation, Time: at("09:40"), EndTime: ptr(at("09:50"))},
			{Type: mission.EventOnStation, Time: at("08:40")},
			{Type: mission.EventStrike, Time: at("09:00")},
			{Type: mission.EventOnStation, Time: at("08:45"), EndTime: ptr(at("09:10"))},
		},
	}
	got := a.OnStationWindows()
	if len(got) != 2 {
		t.Fatalf("expected two windows, got %d", len(got))
	}
	if !got[0].Time.Equal(at("08:45")) {
		t.Fatalf("expected windows sorted by start, got %+v", got)
	}
}

func TestDurationOfMalformedRangeIsZero(t *testing.T) {
	a := mission.Assignment{Start: at("10:00"), End: at("09:00")}
	if a.Duration() != 0 {
		t.Fatalf("expected zero duration, got %s", a.Duration())
	}
	d := mission.Day{Start: at("06:00"), End: at("06:00")}
	if d.Duration() != 0 {
		t.Fatalf("expected zero day duration, got %s", d.Duration())
	}
}

func TestIndexResolvesDanglingLinksToUnknown(t *testing.T) {
	ix := mission.NewIndex([]mission.Assignment{{AssignmentID: "a1", Callsign: "TEXACO02"}},
		[]mission.Category{{CategoryID: "cat-1", Name: mission.CategoryTanker}})
	if got := ix.Callsign("a1"); got != "TEXACO02" {
		t.Fatalf("expected TEXACO02, got %q", got)
	}
	if got := ix.Callsign("missing"); got != mission.UnknownCallsign {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if got := ix.Callsign(""); got != mission.UnknownCallsign {
		t.Fatalf("expected placeholder for empty id, got %q", got)
	}
	if got := ix.CategoryName("cat-9"); got != "Unknown" {
		t.Fatalf("expected Unknown category, got %q", got)
	}
	var nilIndex *mission.Index
	if got := nilIndex.Callsign("a1"); got != mission.UnknownCallsign {
		t.Fatalf("nil index should resolve to placeholder, got %q", got)
	}
}

func TestShortCallsign(t *testing.T) {
	cases := map[string]string{
		"FALCON01": "FN01",
		"TEXACO02": "TO02",
		"hawk01":   "HK01",
		"VIPER-1":  "VIPE",
		"AB":       "AB",
	}
	for in, want := range cases {
		if got := mission.ShortCallsign(in); got != want {
			t.Fatalf("ShortCallsign(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatFuelLbs(t *testing.T) {
	cases := map[int]string{
		142000: "142k",
		1499:   "1k",
		1500:   "2k",
		950:    "950",
		-5000:  "-5000",
	}
	for in, want := range cases {
		if got := mission.FormatFuelLbs(in); got != want {
			t.Fatalf("FormatFuelLbs(%d) = %q, want %q", in, got, want)
		}
	}
}
